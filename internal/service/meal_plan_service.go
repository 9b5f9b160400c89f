package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"meal-planner/internal/model"
	"meal-planner/internal/repository"
)

// ErrPlanNotFound is returned for an unknown meal plan id.
var ErrPlanNotFound = errors.New("meal plan not found")

// PersistenceError wraps a store failure while writing a plan. The transaction has been rolled back.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s meal plan: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// PlanEntry is one stored slot of a plan, labelled for display.
type PlanEntry struct {
	Day        string
	MealType   string
	Category   string
	RecipeID   uint
	RecipeName string
}

// PlanView is a stored plan header with its entries.
type PlanView struct {
	ID        uint
	UserID    uint
	StartDate time.Time
	EndDate   time.Time
	CreatedAt time.Time
	Entries   []PlanEntry
}

// MealPlanService generates weekly plans and manages the stored ones.
type MealPlanService struct {
	recipeRepo     *repository.RecipeRepository
	planRepo       *repository.MealPlanRepository
	ingredientRepo *repository.IngredientRepository
	generator      *Generator
	excluded       []string
}

func NewMealPlanService(recipeRepo *repository.RecipeRepository, planRepo *repository.MealPlanRepository, ingredientRepo *repository.IngredientRepository, generator *Generator, excluded []string) *MealPlanService {
	if generator == nil {
		generator = NewGenerator(nil)
	}
	return &MealPlanService{
		recipeRepo:     recipeRepo,
		planRepo:       planRepo,
		ingredientRepo: ingredientRepo,
		generator:      generator,
		excluded:       excluded,
	}
}

// Generate builds a plan from every recipe outside the excluded categories. Nothing is stored.
func (s *MealPlanService) Generate(ctx context.Context) (*WeeklyPlan, error) {
	recipes, err := s.recipeRepo.ListExcludingCategories(ctx, s.excluded)
	if err != nil {
		return nil, err
	}
	return s.generator.Generate(recipes)
}

// Save stores plan for userID as a week starting on the calendar day of now.
func (s *MealPlanService) Save(ctx context.Context, userID uint, plan *WeeklyPlan, now time.Time) (uint, error) {
	if plan == nil || plan.Slots() == 0 {
		return 0, fmt.Errorf("meal plan is empty")
	}

	year, month, day := now.Date()
	start := time.Date(year, month, day, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, len(WeekDays)-1)

	header := model.MealPlan{
		UserID:    userID,
		StartDate: datatypes.Date(start),
		EndDate:   datatypes.Date(end),
		CreatedAt: now,
		Recipes:   make([]model.MealPlanRecipe, 0, plan.Slots()),
	}
	for dayIndex, dayPlan := range plan.Days {
		for mealIndex, meal := range dayPlan.Meals {
			header.Recipes = append(header.Recipes, model.MealPlanRecipe{
				RecipeID:  meal.Recipe.ID,
				Day:       dayPlan.Day,
				DayIndex:  dayIndex,
				MealType:  meal.MealType,
				MealIndex: mealIndex,
			})
		}
	}

	if err := s.planRepo.Create(ctx, &header); err != nil {
		return 0, &PersistenceError{Op: "create", Err: err}
	}

	log.Printf("[info] meal plan created id=%d user=%d slots=%d", header.ID, userID, len(header.Recipes))
	return header.ID, nil
}

// GenerateAndSave generates a plan and stores it. A failed generation stores nothing.
func (s *MealPlanService) GenerateAndSave(ctx context.Context, userID uint, now time.Time) (uint, *WeeklyPlan, error) {
	plan, err := s.Generate(ctx)
	if err != nil {
		return 0, nil, err
	}
	id, err := s.Save(ctx, userID, plan, now)
	if err != nil {
		return 0, nil, err
	}
	return id, plan, nil
}

// List returns every stored plan, newest first.
func (s *MealPlanService) List(ctx context.Context) ([]PlanView, error) {
	plans, err := s.planRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]PlanView, 0, len(plans))
	for _, plan := range plans {
		views = append(views, toPlanView(plan))
	}
	return views, nil
}

func (s *MealPlanService) Get(ctx context.Context, id uint) (*PlanView, error) {
	plan, err := s.planRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("find meal plan: %w", err)
	}
	view := toPlanView(*plan)
	return &view, nil
}

// Delete removes a plan and its entries. An unknown id yields ErrPlanNotFound.
func (s *MealPlanService) Delete(ctx context.Context, id uint) error {
	found, err := s.planRepo.Delete(ctx, id)
	if err != nil {
		return &PersistenceError{Op: "delete", Err: err}
	}
	if !found {
		return ErrPlanNotFound
	}
	log.Printf("[info] meal plan deleted id=%d", id)
	return nil
}

// ShoppingList aggregates the ingredients of every slot of a stored plan.
func (s *MealPlanService) ShoppingList(ctx context.Context, id uint) ([]model.ShoppingItem, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.ingredientRepo.PlanShoppingList(ctx, id)
}

func toPlanView(plan model.MealPlan) PlanView {
	view := PlanView{
		ID:        plan.ID,
		UserID:    plan.UserID,
		StartDate: time.Time(plan.StartDate),
		EndDate:   time.Time(plan.EndDate),
		CreatedAt: plan.CreatedAt,
		Entries:   make([]PlanEntry, 0, len(plan.Recipes)),
	}
	for _, link := range plan.Recipes {
		view.Entries = append(view.Entries, PlanEntry{
			Day:        link.Day,
			MealType:   link.MealType,
			Category:   link.Recipe.Category.Name,
			RecipeID:   link.RecipeID,
			RecipeName: link.Recipe.Name,
		})
	}
	return view
}
