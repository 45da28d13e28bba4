package main

import (
	"log"

	"github.com/joho/godotenv"

	"geneexplorer/adapters/excel"
	"geneexplorer/adapters/mygene"
	"geneexplorer/app"
	"geneexplorer/internal/config"
	"geneexplorer/internal/metrics"
	"geneexplorer/ui"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	m := metrics.New()

	// The caches live inside the services and are owned here, at the
	// composition root, not in hidden globals.
	reader := excel.NewWorkbookReader(appConfig.Data.WorkbookPath)
	expressionService, err := app.NewExpressionService(
		reader,
		appConfig.Data.PrimarySheet,
		appConfig.Data.ValuesSheet,
		appConfig.Cache.GeneCacheSize,
		m,
	)
	if err != nil {
		log.Fatalf("Failed to initialize expression service: %v", err)
	}

	gateway := mygene.NewClient(
		appConfig.Papers.MyGeneBaseURL,
		appConfig.Papers.EutilsBaseURL,
		appConfig.Papers.MaxPapers,
	)
	papersService := app.NewPapersService(gateway, appConfig.Papers.WaitBudget, appConfig.Papers.FetchTimeout, m)

	server, err := ui.NewServer(expressionService, papersService, m)
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	log.Printf("Starting Gene Explorer on port %s (workbook: %s)", appConfig.Server.Port, appConfig.Data.WorkbookPath)
	log.Fatal(server.Start(":" + appConfig.Server.Port))
}
