package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"meal-planner/internal/cli"
	"meal-planner/internal/config"
	"meal-planner/internal/model"
	"meal-planner/internal/repository"
	"meal-planner/internal/service"
)

type app struct {
	user        *model.User
	userRepo    *repository.UserRepository
	categorySvc *service.CategoryService
	recipeSvc   *service.RecipeService
	planSvc     *service.MealPlanService
	cfg         config.Config
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if cfg.LogFile != "" {
		logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatalf("open log file: %v", err)
		}
		defer logFile.Close()
		log.SetOutput(logFile)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	if err := repository.SeedCategories(ctx, db); err != nil {
		log.Fatalf("seed categories: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	recipeRepo := repository.NewRecipeRepository(db)
	ingredientRepo := repository.NewIngredientRepository(db)
	planRepo := repository.NewMealPlanRepository(db)

	user, err := userRepo.GetOrCreate(ctx, cfg.Username)
	if err != nil {
		log.Fatalf("user: %v", err)
	}

	var rng *rand.Rand
	if cfg.Seed != 0 {
		rng = rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))
	}

	a := &app{
		user:        user,
		userRepo:    userRepo,
		categorySvc: service.NewCategoryService(categoryRepo),
		recipeSvc:   service.NewRecipeService(recipeRepo, categoryRepo, userRepo, ingredientRepo),
		planSvc:     service.NewMealPlanService(recipeRepo, planRepo, ingredientRepo, service.NewGenerator(rng), cfg.ExcludedCategories),
		cfg:         cfg,
	}

	command := "menu"
	args := os.Args[1:]
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}

	if err := a.run(ctx, command, args); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Println("Shutdown complete.")
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "menu":
		return cli.NewShell(os.Stdin, os.Stdout, a.user, a.userRepo, a.categorySvc, a.recipeSvc, a.planSvc).Run(ctx)
	case "plan":
		return a.runPlan(ctx, args)
	case "shopping":
		if len(args) != 1 {
			return fmt.Errorf("usage: mealplanner shopping <recipe-id,...>")
		}
		ids, err := parseIDList(args[0])
		if err != nil {
			return err
		}
		items, err := a.recipeSvc.ShoppingList(ctx, ids)
		if err != nil {
			return err
		}
		cli.WriteShoppingList(os.Stdout, items)
		return nil
	case "autoplan":
		return a.runAutoplan(ctx)
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

func (a *app) runPlan(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printUsage()
		return fmt.Errorf("missing plan subcommand")
	}

	switch args[0] {
	case "generate":
		id, plan, err := a.planSvc.GenerateAndSave(ctx, a.user.ID, time.Now())
		if err != nil {
			return err
		}
		cli.WriteWeeklyPlan(os.Stdout, plan)
		fmt.Printf("\nMeal plan saved successfully with ID: %d\n", id)
		return nil
	case "list":
		plans, err := a.planSvc.List(ctx)
		if err != nil {
			return err
		}
		cli.WritePlanViews(os.Stdout, plans)
		return nil
	case "delete":
		id, err := planIDArg(args)
		if err != nil {
			return err
		}
		if err := a.planSvc.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Printf("Meal plan %d deleted successfully!\n", id)
		return nil
	case "shopping":
		id, err := planIDArg(args)
		if err != nil {
			return err
		}
		items, err := a.planSvc.ShoppingList(ctx, id)
		if err != nil {
			return err
		}
		cli.WriteShoppingList(os.Stdout, items)
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown plan subcommand: %s", args[0])
	}
}

// runAutoplan saves a new plan every week until ctx is cancelled.
func (a *app) runAutoplan(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := service.NewSchedulerService(time.Local)
	entryID, err := scheduler.ScheduleWeekly(a.cfg.AutoplanSchedule, func() {
		jobCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		id, _, err := a.planSvc.GenerateAndSave(jobCtx, a.user.ID, time.Now())
		if err != nil {
			log.Printf("autoplan: %v", err)
			return
		}
		log.Printf("[info] autoplan saved meal plan id=%d", id)
	})
	if err != nil {
		return fmt.Errorf("schedule autoplan: %w", err)
	}

	scheduler.Start()
	defer scheduler.Stop()
	log.Printf("[info] autoplan scheduled %q, next run %s", a.cfg.AutoplanSchedule, scheduler.Next(entryID).Format(time.RFC1123))

	<-ctx.Done()
	return ctx.Err()
}

func planIDArg(args []string) (uint, error) {
	if len(args) != 2 {
		return 0, fmt.Errorf("usage: mealplanner plan %s <plan-id>", args[0])
	}
	return parseID(args[1])
}

func parseIDList(raw string) ([]uint, error) {
	var ids []uint
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := parseID(part)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no recipe ids given")
	}
	return ids, nil
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return uint(id), nil
}

func printUsage() {
	fmt.Println("Usage: mealplanner <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  menu                      Interactive recipe and meal plan menu (default)")
	fmt.Println("  plan generate             Generate and save a weekly meal plan")
	fmt.Println("  plan list                 List saved meal plans, newest first")
	fmt.Println("  plan delete <id>          Delete a saved meal plan")
	fmt.Println("  plan shopping <id>        Shopping list for every meal of a saved plan")
	fmt.Println("  shopping <id,...>         Shopping list for the given recipe ids")
	fmt.Println("  autoplan                  Save a new plan every week (MEALPLANNER_AUTOPLAN)")
}
