package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/infra/integration/kommo"
)

// Pushes one sample lead to Kommo through the same client the worker uses.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}

	token := os.Getenv("KOMMO_API_TOKEN")
	if token == "" {
		log.Fatal("KOMMO_API_TOKEN must be set")
	}

	client := kommo.NewClient(token, os.Getenv("KOMMO_BASE_URL"), nil)
	lead := entity.NewLead("Joao Teste da Silva", "joao.teste@email.com", entity.LeadStatusProspect, 1990)

	fmt.Println("Creating lead in Kommo...")
	fmt.Printf("   Name:       %s\n", lead.Name)
	fmt.Printf("   Email:      %s\n", lead.Email)
	fmt.Printf("   Status:     %s\n", lead.Status)
	fmt.Printf("   Sale:       %.2f\n", lead.EstimatedSaleAmount)
	fmt.Printf("   Commission: %.2f\n\n", lead.EstimatedCommission)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	leadID, err := client.SyncLead(ctx, *lead)
	if err != nil {
		log.Fatalf("kommo sync failed: %v", err)
	}

	accountID := os.Getenv("KOMMO_ACCOUNT_ID")
	if accountID == "" {
		accountID = "liguemedicina"
	}

	fmt.Printf("Lead created in Kommo\n")
	fmt.Printf(" ID: #%d\n", leadID)
	fmt.Printf(" Link: https://%s.kommo.com/leads/detail/%d\n", accountID, leadID)
}
