// Package seed fills the leads table with random but valid leads.
package seed

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

var (
	emailDomains = []string{"example.com", "gmail.com", "yahoo.com", "outlook.com", "company.com"}

	firstNames = []string{
		"John", "Mary", "Robert", "Linda", "William", "Patricia", "David", "Jennifer",
		"Michael", "Elizabeth", "Joseph", "Susan", "Charles", "Jessica", "Thomas", "Sarah",
		"Daniel", "Karen", "Matthew", "Nancy", "James", "Lisa", "Christopher", "Betty",
		"George", "Dorothy", "Ronald", "Sandra", "Ashley", "Richard", "Kimberly",
	}

	lastNames = []string{
		"Smith", "Johnson", "Brown", "Taylor", "Miller", "Anderson", "Wilson", "Moore",
		"Martin", "Jackson", "Thompson", "White", "Harris", "Clark", "Lewis", "Young",
		"Walker", "Hall", "Allen", "Green", "Davis", "Evans", "King", "Scott",
	}
)

// Repository is what the seeder writes through.
type Repository interface {
	Create(ctx context.Context, lead *entity.Lead) error
	DeleteAll(ctx context.Context) error
}

type Generator struct {
	rng *rand.Rand
}

func NewGenerator(seed uint64) *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Lead returns one random lead with a sale amount between 1000 and 10999.
func (g *Generator) Lead() *entity.Lead {
	first := firstNames[g.rng.IntN(len(firstNames))]
	last := lastNames[g.rng.IntN(len(lastNames))]
	domain := emailDomains[g.rng.IntN(len(emailDomains))]

	email := fmt.Sprintf("%s.%s%d@%s", strings.ToLower(first), strings.ToLower(last), g.rng.IntN(1000), domain)
	status := entity.LeadStatuses[g.rng.IntN(len(entity.LeadStatuses))]
	amount := float64(g.rng.IntN(10000) + 1000)

	return entity.NewLead(first+" "+last, email, status, amount)
}

func (g *Generator) Leads(count int) []*entity.Lead {
	leads := make([]*entity.Lead, 0, count)
	for i := 0; i < count; i++ {
		leads = append(leads, g.Lead())
	}
	return leads
}

type Options struct {
	Count int
	Keep  bool
}

// Run clears the table unless opts.Keep is set, then inserts opts.Count leads.
// It returns the leads that were stored.
func Run(ctx context.Context, repo Repository, gen *Generator, opts Options) ([]*entity.Lead, error) {
	if opts.Count < 0 {
		return nil, fmt.Errorf("count must not be negative, got %d", opts.Count)
	}

	if !opts.Keep {
		if err := repo.DeleteAll(ctx); err != nil {
			return nil, err
		}
	}

	leads := gen.Leads(opts.Count)
	for i, lead := range leads {
		if err := repo.Create(ctx, lead); err != nil {
			return leads[:i], fmt.Errorf("insert lead %d of %d: %w", i+1, opts.Count, err)
		}
	}
	return leads, nil
}
