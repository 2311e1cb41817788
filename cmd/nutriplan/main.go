package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"nutriplan/internal/app"
	"nutriplan/internal/config"
	"nutriplan/internal/logger"
	"nutriplan/internal/planner"
	"nutriplan/internal/storage"
)

func main() {
	ctx := context.Background()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLog.Sync()

	application, err := app.New(ctx, cfg, appLog)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer application.Close()

	switch os.Args[1] {
	case "history-cleanup":
		cleanupCmd := flag.NewFlagSet("history-cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", cfg.HistoryRetentionDays, "Keep served recipes for the last N days")
		cleanupCmd.Parse(os.Args[2:])

		affected, err := application.CleanupHistory(ctx, *days)
		if err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
		fmt.Printf("Successfully removed %d old recipe history records.\n", affected)
	case "metrics-cleanup":
		cleanupCmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", cfg.MetricsRetentionDays, "Keep records for the last N days")
		cleanupCmd.Parse(os.Args[2:])

		affected, err := application.CleanupMetrics(ctx, *days)
		if err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
		fmt.Printf("Successfully removed %d old metric records.\n", affected)
	case "import-users":
		importCmd := flag.NewFlagSet("import-users", flag.ExitOnError)
		file := importCmd.String("file", "users.json", "JSON array of users to upsert")
		importCmd.Parse(os.Args[2:])

		res, err := application.ImportUsers(ctx, *file)
		if err != nil {
			log.Fatalf("Import failed: %v", err)
		}
		fmt.Printf("Imported %d users (%d with derived targets).\n", res.Imported, res.Derived)
	case "generate":
		genCmd := flag.NewFlagSet("generate", flag.ExitOnError)
		userID := genCmd.String("user", "", "User ID to generate a plan for")
		nutritionistID := genCmd.String("nutritionist", "", "Nutritionist to notify")
		days := genCmd.Int("days", 1, "Number of days (1-7)")
		pages := genCmd.Int("pages", 0, "Catalog pages per meal (0 uses the default)")
		outDir := genCmd.String("out", "", "Directory to archive the plan JSON in")
		genCmd.Parse(os.Args[2:])

		if *userID == "" {
			log.Fatal("-user is required")
		}

		out, err := application.Plans.Generate(ctx, planner.GenerateInput{
			UserID:          *userID,
			NutritionistID:  *nutritionistID,
			NumberOfDays:    *days,
			MaxPagesPerMeal: *pages,
			MultiDay:        *days > 1,
		})
		if err != nil {
			log.Fatalf("Generation failed: %v", err)
		}

		if *outDir != "" {
			archive, err := storage.NewPlanArchive(*outDir)
			if err != nil {
				log.Fatalf("Failed to open plan archive: %v", err)
			}
			if err := archive.RemoveStaleVersions(out.Plan.UserID); err != nil {
				log.Fatalf("Failed to remove archived plans: %v", err)
			}
			if err := archive.Save(out.Plan); err != nil {
				log.Fatalf("Failed to archive plan: %v", err)
			}
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			log.Fatalf("Failed to encode plan: %v", err)
		}
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: nutriplan <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  generate           Generate a meal plan for a user and print it")
	fmt.Println("  import-users       Upsert users from a JSON file, deriving missing targets")
	fmt.Println("  history-cleanup    Remove old served-recipe history")
	fmt.Println("  metrics-cleanup    Remove old metric records")
}
