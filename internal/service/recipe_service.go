package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"meal-planner/internal/model"
	"meal-planner/internal/repository"
)

// ErrRecipeNotFound is returned for an unknown recipe id.
var ErrRecipeNotFound = errors.New("recipe not found")

// ErrIngredientNotFound is returned for an unknown ingredient id or link.
var ErrIngredientNotFound = errors.New("ingredient not found")

// RecipeInput represents data required to create a recipe.
type RecipeInput struct {
	Name         string `validate:"required,max=200"`
	PrepTime     int    `validate:"gte=0"`
	CookTime     int    `validate:"gte=0"`
	Servings     int    `validate:"gte=1"`
	Instructions string
	CategoryID   uint                 `validate:"required"`
	UserID       uint                 `validate:"required"`
	Ingredients  []IngredientQuantity `validate:"dive"`
}

// IngredientQuantity links an existing ingredient to a recipe being created.
type IngredientQuantity struct {
	IngredientID uint    `validate:"required"`
	Quantity     float64 `validate:"gt=0"`
}

// IngredientInput represents a new ingredient.
type IngredientInput struct {
	Name          string `validate:"required,max=100"`
	UnitOfMeasure string `validate:"required,max=20"`
}

// RecipeUpdate carries the fields to change. Nil fields keep their current value.
type RecipeUpdate struct {
	Name         *string
	PrepTime     *int
	CookTime     *int
	Servings     *int
	Instructions *string
	CategoryID   *uint
	UserID       *uint
}

// RecipeService wraps recipe catalog business logic.
type RecipeService struct {
	recipeRepo     *repository.RecipeRepository
	categoryRepo   *repository.CategoryRepository
	userRepo       *repository.UserRepository
	ingredientRepo *repository.IngredientRepository
	validate       *validator.Validate
}

func NewRecipeService(recipeRepo *repository.RecipeRepository, categoryRepo *repository.CategoryRepository, userRepo *repository.UserRepository, ingredientRepo *repository.IngredientRepository) *RecipeService {
	return &RecipeService{
		recipeRepo:     recipeRepo,
		categoryRepo:   categoryRepo,
		userRepo:       userRepo,
		ingredientRepo: ingredientRepo,
		validate:       validator.New(),
	}
}

func (s *RecipeService) List(ctx context.Context) ([]model.Recipe, error) {
	return s.recipeRepo.ListAll(ctx)
}

func (s *RecipeService) ListByUser(ctx context.Context, userID uint) ([]model.Recipe, error) {
	return s.recipeRepo.ListByUser(ctx, userID)
}

func (s *RecipeService) Get(ctx context.Context, id uint) (*model.Recipe, error) {
	recipe, err := s.recipeRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("find recipe: %w", err)
	}
	return recipe, nil
}

func (s *RecipeService) Create(ctx context.Context, input RecipeInput) (*model.Recipe, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Instructions = strings.TrimSpace(input.Instructions)
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("invalid recipe: %w", err)
	}
	if err := s.checkOwnership(ctx, input.CategoryID, input.UserID); err != nil {
		return nil, err
	}

	recipe := model.Recipe{
		Name:         input.Name,
		PrepTime:     input.PrepTime,
		CookTime:     input.CookTime,
		Servings:     input.Servings,
		Instructions: input.Instructions,
		CategoryID:   input.CategoryID,
		UserID:       input.UserID,
	}
	for _, item := range input.Ingredients {
		recipe.Ingredients = append(recipe.Ingredients, model.RecipeIngredient{
			IngredientID: item.IngredientID,
			Quantity:     item.Quantity,
		})
	}

	if err := s.recipeRepo.Create(ctx, &recipe); err != nil {
		return nil, err
	}
	log.Printf("[info] recipe created id=%d user=%d category=%d", recipe.ID, recipe.UserID, recipe.CategoryID)
	return &recipe, nil
}

// Update applies the non-nil fields of update to the recipe.
func (s *RecipeService) Update(ctx context.Context, id uint, update RecipeUpdate) (*model.Recipe, error) {
	recipe, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	input := RecipeInput{
		Name:         recipe.Name,
		PrepTime:     recipe.PrepTime,
		CookTime:     recipe.CookTime,
		Servings:     recipe.Servings,
		Instructions: recipe.Instructions,
		CategoryID:   recipe.CategoryID,
		UserID:       recipe.UserID,
	}
	if update.Name != nil {
		input.Name = strings.TrimSpace(*update.Name)
	}
	if update.PrepTime != nil {
		input.PrepTime = *update.PrepTime
	}
	if update.CookTime != nil {
		input.CookTime = *update.CookTime
	}
	if update.Servings != nil {
		input.Servings = *update.Servings
	}
	if update.Instructions != nil {
		input.Instructions = strings.TrimSpace(*update.Instructions)
	}
	if update.CategoryID != nil {
		input.CategoryID = *update.CategoryID
	}
	if update.UserID != nil {
		input.UserID = *update.UserID
	}

	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("invalid recipe: %w", err)
	}
	if err := s.checkOwnership(ctx, input.CategoryID, input.UserID); err != nil {
		return nil, err
	}

	recipe.Name = input.Name
	recipe.PrepTime = input.PrepTime
	recipe.CookTime = input.CookTime
	recipe.Servings = input.Servings
	recipe.Instructions = input.Instructions
	recipe.CategoryID = input.CategoryID
	recipe.UserID = input.UserID
	if err := s.recipeRepo.Update(ctx, recipe); err != nil {
		return nil, err
	}

	log.Printf("[info] recipe updated id=%d", recipe.ID)
	return s.Get(ctx, id)
}

// Delete removes a recipe with its ingredient links. A recipe used by a saved plan is kept.
func (s *RecipeService) Delete(ctx context.Context, id uint) error {
	found, err := s.recipeRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return ErrRecipeNotFound
	}
	log.Printf("[info] recipe deleted id=%d", id)
	return nil
}

func (s *RecipeService) AddIngredient(ctx context.Context, recipeID, ingredientID uint, quantity float64) (*model.RecipeIngredient, error) {
	if err := s.validate.Struct(IngredientQuantity{IngredientID: ingredientID, Quantity: quantity}); err != nil {
		return nil, fmt.Errorf("invalid quantity: %w", err)
	}
	if _, err := s.Get(ctx, recipeID); err != nil {
		return nil, err
	}
	if _, err := s.ingredientRepo.FindByID(ctx, ingredientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIngredientNotFound
		}
		return nil, fmt.Errorf("find ingredient: %w", err)
	}
	return s.recipeRepo.AddIngredient(ctx, recipeID, ingredientID, quantity)
}

func (s *RecipeService) RemoveIngredient(ctx context.Context, recipeID, ingredientID uint) error {
	found, err := s.recipeRepo.RemoveIngredient(ctx, recipeID, ingredientID)
	if err != nil {
		return err
	}
	if !found {
		return ErrIngredientNotFound
	}
	return nil
}

func (s *RecipeService) CreateIngredient(ctx context.Context, input IngredientInput) (*model.Ingredient, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.UnitOfMeasure = strings.TrimSpace(input.UnitOfMeasure)
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("invalid ingredient: %w", err)
	}
	ingredient := model.Ingredient{Name: input.Name, UnitOfMeasure: input.UnitOfMeasure}
	if err := s.ingredientRepo.Create(ctx, &ingredient); err != nil {
		return nil, err
	}
	return &ingredient, nil
}

func (s *RecipeService) ListIngredients(ctx context.Context) ([]model.Ingredient, error) {
	return s.ingredientRepo.ListAll(ctx)
}

// ShoppingList sums the ingredients of the selected recipes. Repeated ids count once.
func (s *RecipeService) ShoppingList(ctx context.Context, recipeIDs []uint) ([]model.ShoppingItem, error) {
	seen := make(map[uint]bool, len(recipeIDs))
	unique := make([]uint, 0, len(recipeIDs))
	for _, id := range recipeIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}
	return s.ingredientRepo.ShoppingList(ctx, unique)
}

func (s *RecipeService) checkOwnership(ctx context.Context, categoryID, userID uint) error {
	if _, err := s.categoryRepo.GetByID(ctx, categoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("category %d does not exist", categoryID)
		}
		return fmt.Errorf("find category: %w", err)
	}
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user %d does not exist", userID)
		}
		return fmt.Errorf("find user: %w", err)
	}
	return nil
}
