// Command seed registers a tenant and installs its standard chart of accounts.
//
//	go run ./cmd/seed -name "Pulpería La Esquina" [-id pulperia-1]
//
// The tenant's API key is printed once and cannot be recovered afterwards.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/sjperalta/fintera-ledger/internal/config"
	"github.com/sjperalta/fintera-ledger/internal/database"
	"github.com/sjperalta/fintera-ledger/internal/repository"
	"github.com/sjperalta/fintera-ledger/internal/services"
	"github.com/sjperalta/fintera-ledger/pkg/logger"
)

func main() {
	name := flag.String("name", "", "business name (required)")
	id := flag.String("id", "", "tenant id (defaults to a random uuid)")
	chartOnly := flag.Bool("chart-only", false, "seed the chart of an existing tenant without creating it")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.Setup(cfg.Environment, cfg.LogLevel)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	repos := repository.NewRepositories(db)
	// No worker: audit rows are written before the process exits
	svcs := services.NewServices(repos, nil, nil, cfg)
	ctx := context.Background()

	tenantID := *id
	if !*chartOnly {
		if *name == "" {
			flag.Usage()
			os.Exit(2)
		}
		tenant, apiKey, err := svcs.Auth.CreateTenant(ctx, tenantID, *name)
		if err != nil {
			log.Fatalf("Failed to create tenant: %v", err)
		}
		tenantID = tenant.ID
		fmt.Printf("Tenant:  %s (%s)\nAPI key: %s\n", tenant.ID, tenant.Name, apiKey)
	} else if tenantID == "" {
		log.Fatal("-id is required with -chart-only")
	}

	result, err := svcs.Chart.Seed(ctx, tenantID)
	if err != nil {
		log.Fatalf("Failed to seed chart: %v", err)
	}
	if result.AlreadySeeded {
		fmt.Println("Chart already seeded")
		return
	}
	fmt.Printf("Chart seeded: %d accounts\n", result.Created)
}
