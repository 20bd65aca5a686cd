package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dermatologica/assistant/internal/adapters/cache"
	"github.com/dermatologica/assistant/internal/adapters/database"
	"github.com/dermatologica/assistant/internal/application/services"
	"github.com/dermatologica/assistant/internal/infrastructure/clients/gemini"
	"github.com/dermatologica/assistant/internal/infrastructure/clients/sqlite"
	"github.com/dermatologica/assistant/internal/infrastructure/observability"
	"github.com/dermatologica/assistant/pkg/config"
	apperrors "github.com/dermatologica/assistant/pkg/errors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, os.Getenv("APP_ENV"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up telemetry export")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Warn().Err(err).Msg("telemetry shutdown failed")
				}
			}()
		}
	}

	dbClient := sqlite.NewClient(&cfg.Database)
	defer dbClient.Close()

	kv := database.NewKV(dbClient)
	if err := kv.Init(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to open the local store")
	}

	geminiClient, err := gemini.NewClient(&cfg.Gemini)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize the Gemini client")
	}
	defer geminiClient.Close()

	icons := services.NewIconService(geminiClient, cache.NewMemoryAdapter())
	workspace := services.NewWorkspaceService(
		database.NewHistoryAdapter(kv),
		database.NewSavedFormulaAdapter(kv),
		database.NewProductAdapter(kv),
		database.NewPrescriptionAdapter(kv),
		database.NewSettingsAdapter(kv),
		geminiClient,
		services.NewAssembler(),
		icons,
	)

	if err := workspace.Load(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to load stored data")
	}

	runREPL(ctx, workspace)
}

func runREPL(ctx context.Context, workspace *services.WorkspaceService) {
	fmt.Println("formulary assistant. Type a condition to search, or: history, products, import <file>, export <file>, quit")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		cmd, arg, _ := strings.Cut(line, " ")
		switch cmd {
		case "quit", "exit":
			return
		case "history":
			for _, item := range workspace.History() {
				fmt.Printf("%s  %s  (%d formulas)\n", item.ID, item.Disease, len(item.Response.Formulas))
			}
		case "products":
			for _, p := range workspace.Products() {
				fmt.Printf("%s  %s\n", p.ID, p.Name)
			}
		case "import":
			importProducts(ctx, workspace, strings.TrimSpace(arg))
		case "export":
			exportProducts(workspace, strings.TrimSpace(arg))
		default:
			search(ctx, workspace, line)
		}
	}
}

func search(ctx context.Context, workspace *services.WorkspaceService, condition string) {
	item, err := workspace.Search(ctx, services.SearchRequest{Disease: condition})
	if err != nil {
		fmt.Println(userMessage(err))
		return
	}
	fmt.Println(item.Response.Summary)
	for _, f := range item.Response.Formulas {
		fmt.Printf("\n%s (%s)\n", f.Name, f.ID)
		for _, ing := range f.Ingredients {
			fmt.Printf("  - %s\n", ing)
		}
		fmt.Printf("  %s\n", f.Instructions)
	}
	for _, src := range item.Sources {
		fmt.Printf("source: %s (%s)\n", src.Title, src.URI)
	}
}

func importProducts(ctx context.Context, workspace *services.WorkspaceService, path string) {
	f, err := os.Open(path)
	if err != nil {
		fmt.Printf("could not open %s: %v\n", path, err)
		return
	}
	defer f.Close()

	report, err := workspace.ImportProductsCSV(ctx, f)
	if err != nil {
		fmt.Println(userMessage(err))
		return
	}
	fmt.Printf("imported %d products, skipped %d duplicates\n", report.Added, report.Skipped)
}

func exportProducts(workspace *services.WorkspaceService, path string) {
	f, err := os.Create(path)
	if err != nil {
		fmt.Printf("could not create %s: %v\n", path, err)
		return
	}
	defer f.Close()

	if err := workspace.ExportProductsCSV(f); err != nil {
		fmt.Println(userMessage(err))
	}
}

// userMessage maps error kinds to the transient notifications the user
// sees; no failure is fatal to the session.
func userMessage(err error) string {
	switch {
	case apperrors.IsType(err, apperrors.ErrorTypeEmptyResponse):
		return "The assistant returned an empty response. Please try again."
	case apperrors.IsType(err, apperrors.ErrorTypeMalformedResponse):
		return "The assistant returned an invalid format. Please try again."
	case apperrors.IsType(err, apperrors.ErrorTypeTransport):
		return "Could not reach the suggestion service: " + err.Error()
	case apperrors.IsType(err, apperrors.ErrorTypeStorageUnavailable),
		apperrors.IsType(err, apperrors.ErrorTypeStorageWrite):
		return "Could not access the local database: " + err.Error()
	default:
		return err.Error()
	}
}
