package mail

type LeadCreatedEmailData struct {
	Name                string
	Email               string
	Status              string
	EstimatedSaleAmount string
	EstimatedCommission string
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	To       string
}
