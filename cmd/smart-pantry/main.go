package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"smart-pantry/internal/app"
	"smart-pantry/internal/clipper"
	"smart-pantry/internal/config"
	"smart-pantry/internal/database"
	"smart-pantry/internal/llm"
	"smart-pantry/internal/logging"
	"smart-pantry/internal/metrics"
	"smart-pantry/internal/search"
	"smart-pantry/internal/session"
	"smart-pantry/internal/storage"
	"smart-pantry/internal/tui"
)

// localNamespace is the single profile the CLI works on.
const localNamespace = "local"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	if err := run(os.Args[1], os.Args[2:]); err != nil {
		tui.Fail(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func run(command string, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.NewFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	defer logger.Sync()

	// Execution metrics always live in SQLite, whatever the document backend.
	db, err := database.NewDB(cfg.DatabasePath, logger)
	if err != nil {
		return err
	}
	defer db.Close()
	usage := metrics.NewStore(db.SQL)

	if command == "metrics-cleanup" {
		return cleanupMetrics(ctx, usage, args)
	}

	var backend storage.Backend
	switch cfg.StorageBackend {
	case config.BackendFile:
		backend, err = storage.NewFileBackend(cfg.DocumentsPath, localNamespace)
		if err != nil {
			return err
		}
	default:
		backend = storage.NewSQLBackend(db.SQL, localNamespace)
	}
	store := storage.NewDocumentStore(backend, logger)

	deps, closeDeps, err := buildDeps(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeDeps()
	deps.Recorder = metrics.NewRecorder(usage, nil, logger)
	deps.Namespace = localNamespace

	a := app.Open(ctx, store, deps)

	switch command {
	case "scan":
		return scan(ctx, a, args)
	case "search":
		return searchRecipes(ctx, a, args)
	case "import":
		if len(args) != 1 {
			return fmt.Errorf("usage: smart-pantry import <url>")
		}
		saved, err := a.ImportRecipe(ctx, args[0])
		if err != nil {
			return err
		}
		tui.OK(os.Stdout, "Saved "+saved.Title)
		return nil
	case "pantry":
		fmt.Println(tui.RenderPantry(a.Snapshot().Inventory))
		return nil
	case "plan":
		fmt.Println(tui.RenderPlan(a.Snapshot().MealPlan, a.MissingIngredients()))
		return nil
	case "missing":
		return missing(ctx, a, args)
	case "shopping":
		return tui.RunShopping(ctx, a)
	case "login":
		return login(ctx, a, args)
	case "logout":
		if err := a.Logout(ctx); err != nil {
			return err
		}
		tui.OK(os.Stdout, "Signed out and cleared local data")
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

// buildDeps creates the collaborator clients. The returned func releases them.
func buildDeps(ctx context.Context, cfg *config.Config, logger *zap.Logger) (app.Deps, func(), error) {
	geminiClient, err := llm.NewGeminiClient(ctx, cfg)
	if err != nil {
		return app.Deps{}, nil, err
	}

	var structured llm.StructuredGenerator = geminiClient
	var textGen llm.TextGenerator = geminiClient
	if cfg.RecipeProvider == config.ProviderGroq {
		groq := llm.NewGroqClient(cfg)
		structured, textGen = groq, groq
	}

	deps := app.Deps{
		Scanner:  search.NewScanner(geminiClient, logger),
		Searcher: search.NewSearcher(llm.NewGroundedClient(cfg), structured, logger),
		Importer: clipper.NewClipper(textGen),
		Log:      logger,
	}
	return deps, func() { geminiClient.Close() }, nil
}

func scan(ctx context.Context, a *app.App, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: smart-pantry scan <image>")
	}
	image, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}
	items, err := a.ScanPantry(ctx, image, "")
	if err != nil {
		return err
	}
	tui.OK(os.Stdout, fmt.Sprintf("Added %d items to the pantry", len(items)))
	fmt.Println(tui.RenderPantry(items))
	return nil
}

func searchRecipes(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	strict := fs.Bool("strict", false, "Only use ingredients from the pantry")
	maxTime := fs.Int("time", 0, "Maximum cook time in minutes")
	maxIngredients := fs.Int("max", 0, "Maximum number of ingredients")
	units := fs.String("units", "metric", "Measurement system: metric or standard")
	restrictions := fs.String("restrict", "", "Dietary restrictions, e.g. vegetarian")
	save := fs.Bool("save", false, "Save every recipe found")
	fs.Parse(args)

	res, err := a.SearchRecipes(ctx, search.Request{
		Query:              strings.Join(fs.Args(), " "),
		Restrictions:       *restrictions,
		StrictMode:         *strict,
		MaxCookTimeMinutes: *maxTime,
		MaxIngredients:     *maxIngredients,
		Measurement:        search.ParseMeasurement(*units),
	})
	if err != nil {
		return err
	}
	fmt.Println(tui.RenderRecipes(res, a.Snapshot().Inventory))

	if *save {
		for _, r := range res.Recipes {
			if _, err := a.SaveRecipe(ctx, r); err != nil {
				tui.Fail(os.Stdout, fmt.Sprintf("%s: %v", r.Title, err))
				continue
			}
			tui.OK(os.Stdout, "Saved "+r.Title)
		}
	}
	return nil
}

func missing(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("missing", flag.ExitOnError)
	add := fs.Bool("add", false, "Add the missing ingredients to the shopping list")
	fs.Parse(args)

	fmt.Println(tui.RenderMissing(a.MissingIngredients()))
	if !*add {
		return nil
	}
	n, err := a.AddPlanMissingToShopping(ctx)
	if err != nil {
		return err
	}
	tui.OK(os.Stdout, fmt.Sprintf("Added %d items to the shopping list", n))
	return nil
}

func login(ctx context.Context, a *app.App, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: smart-pantry login <email>")
	}
	u, err := session.NewEmailUser(args[0])
	if err != nil {
		return err
	}
	if err := a.Login(ctx, u); err != nil {
		return err
	}
	tui.OK(os.Stdout, "Signed in as "+u.Email)
	return nil
}

func cleanupMetrics(ctx context.Context, usage *metrics.Store, args []string) error {
	fs := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
	days := fs.Int("days", 30, "Keep records for the last N days")
	fs.Parse(args)

	affected, err := usage.Cleanup(ctx, *days)
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}
	fmt.Printf("Successfully removed %d old metric records.\n", affected)
	return nil
}

func printUsage() {
	fmt.Println("Usage: smart-pantry <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  scan <image>             Detect pantry items in a photo")
	fmt.Println("  search [flags] [query]   Find recipes; without a query, cook from the pantry")
	fmt.Println("  import <url>             Save a recipe from a web page")
	fmt.Println("  pantry                   Show the inventory")
	fmt.Println("  plan                     Show the weekly meal plan")
	fmt.Println("  missing [-add]           Ingredients the plan needs that the pantry lacks")
	fmt.Println("  shopping                 Interactive shopping list")
	fmt.Println("  login <email>            Sign in")
	fmt.Println("  logout                   Sign out and clear local data")
	fmt.Println("  metrics-cleanup          Remove old metric records")
}
