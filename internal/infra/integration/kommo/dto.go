package kommo

type CreateLeadInput struct {
	Name         string
	ContactName  string
	ContactEmail string
	Price        int
	Tags         []string
}

type contactsResponse struct {
	Embedded struct {
		Contacts []struct {
			ID int `json:"id"`
		} `json:"contacts"`
	} `json:"_embedded"`
}

type leadsResponse struct {
	Embedded struct {
		Leads []struct {
			ID int `json:"id"`
		} `json:"leads"`
	} `json:"_embedded"`
}
