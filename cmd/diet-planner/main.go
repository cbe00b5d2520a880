package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"smart-diet-planner/internal/auth"
	"smart-diet-planner/internal/client"
	"smart-diet-planner/internal/config"
	"smart-diet-planner/internal/database"
	"smart-diet-planner/internal/llm"
	"smart-diet-planner/internal/logger"
	"smart-diet-planner/internal/mealplan"
	"smart-diet-planner/internal/metrics"
	"smart-diet-planner/internal/planner"
	"smart-diet-planner/internal/render"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fatalf("Failed to load configuration: %v", err)
	}
	if err := logger.Init(cfg.LogLevel, cfg.LogFormat); err != nil {
		fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	switch os.Args[1] {
	case "plan":
		err = runPlan(ctx, cfg, os.Args[2:])
	case "token":
		err = runToken(cfg, os.Args[2:])
	case "usage":
		err = runUsage(ctx, cfg, os.Args[2:])
	case "metrics-cleanup":
		err = runCleanup(ctx, cfg, os.Args[2:])
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		logger.Sync()
		fatalf("%s failed: %v", os.Args[1], err)
	}
}

func runPlan(ctx context.Context, cfg *config.Config, args []string) error {
	defaults := mealplan.DefaultConstraints()

	fs := flag.NewFlagSet("plan", flag.ExitOnError)
	diet := fs.String("diet", string(defaults.DietType), "Diet type (Non-Vegetarian, Strict Vegetarian, Vegan)")
	kcal := fs.Float64("kcal", float64(defaults.CalorieTarget), "Daily calorie target")
	budget := fs.Float64("budget", float64(defaults.DailyBudget), "Maximum daily budget in INR")
	cuisine := fs.String("cuisine", defaults.CuisinePreference, "Cuisine preference")
	allergies := fs.String("allergies", "", "Comma separated allergies or foods to avoid")
	useAPI := fs.Bool("api", false, "Submit through the HTTP API at PLANNER_API_URL instead of calling the model directly")
	apiURL := fs.String("url", cfg.PlannerAPIURL, "HTTP API base URL (with -api)")
	_ = fs.Parse(args)

	submitter, cleanup, err := newSubmitter(ctx, cfg, *useAPI, *apiURL)
	if err != nil {
		return err
	}
	defer cleanup()

	animated := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	ctrl := client.NewController(submitter,
		client.WithSettleDelay(0),
		client.WithObserver(client.NewProgressPrinter(os.Stderr, animated)),
	)
	_ = ctrl.Update(func(d *mealplan.Constraints) {
		d.DietType = mealplan.ParseDietType(*diet)
		d.CalorieTarget = mealplan.Number(*kcal)
		d.DailyBudget = mealplan.Number(*budget)
		d.CuisinePreference = *cuisine
		d.Allergies = *allergies
	})

	state, err := ctrl.Submit(ctx)
	if err != nil {
		return err
	}
	if state.Phase != client.PhaseSucceeded {
		return fmt.Errorf("no plan generated")
	}

	return render.Text(os.Stdout, render.BuildView(state.Plan, ctrl.Draft()))
}

// newSubmitter returns the HTTP client when useAPI is set, otherwise an
// in-process planner recording usage to the local database.
func newSubmitter(ctx context.Context, cfg *config.Config, useAPI bool, apiURL string) (client.Submitter, func(), error) {
	if useAPI {
		var token string
		if cfg.APITokenSecret != "" {
			t, err := auth.NewTokenManager(cfg.APITokenSecret).Generate("diet-planner-cli", time.Hour)
			if err != nil {
				return nil, nil, err
			}
			token = t
		}
		return client.NewAPIClient(apiURL, token), func() {}, nil
	}

	if err := cfg.RequireLLMCredentials(); err != nil {
		return nil, nil, err
	}

	gen, err := llm.New(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	opts := []planner.Option{}
	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		logger.L().Warn("usage will not be recorded", zap.Error(err))
	} else {
		opts = append(opts, planner.WithRecorder(metrics.NewStore(db.SQL)))
	}

	cleanup := func() {
		_ = gen.Close()
		if db != nil {
			_ = db.Close()
		}
	}
	return client.LocalSubmitter{Generator: planner.NewPlanner(gen, opts...)}, cleanup, nil
}

func runToken(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("token", flag.ExitOnError)
	subject := fs.String("subject", "diet-planner-client", "Token subject")
	ttl := fs.Duration("ttl", 30*24*time.Hour, "Token lifetime")
	_ = fs.Parse(args)

	if cfg.APITokenSecret == "" {
		return fmt.Errorf("API_TOKEN_SECRET environment variable not set")
	}

	token, err := auth.NewTokenManager(cfg.APITokenSecret).Generate(*subject, *ttl)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func runUsage(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("usage", flag.ExitOnError)
	days := fs.Int("days", 7, "Number of days to report")
	_ = fs.Parse(args)

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	usage, err := metrics.NewStore(db.SQL).GetDailyUsage(ctx, *days)
	if err != nil {
		return err
	}
	if len(usage) == 0 {
		fmt.Println("No usage recorded yet.")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tPROMPT\tCOMPLETION\tCALLS\tFAILED")
	for _, u := range usage {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\n", u.Date, u.TotalPrompt, u.TotalCompletion, u.TotalExecution, u.Failures)
	}
	return tw.Flush()
}

func runCleanup(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
	days := fs.Int("days", 30, "Keep records for the last N days")
	_ = fs.Parse(args)

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	affected, err := metrics.NewStore(db.SQL).Cleanup(ctx, *days)
	if err != nil {
		return err
	}
	fmt.Printf("Successfully removed %d old metric records.\n", affected)
	return nil
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func printUsage() {
	fmt.Println("Usage: diet-planner <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  plan               Generate a 7-day plan (-diet -kcal -budget -cuisine -allergies [-api])")
	fmt.Println("  token              Mint a bearer token for the HTTP API")
	fmt.Println("  usage              Show daily token usage")
	fmt.Println("  metrics-cleanup    Remove old metric records")
}
