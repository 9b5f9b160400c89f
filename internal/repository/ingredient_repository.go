package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"meal-planner/internal/model"
)

// IngredientRepository handles ingredients and shopping list aggregation.
type IngredientRepository struct {
	db *gorm.DB
}

func NewIngredientRepository(db *gorm.DB) *IngredientRepository {
	return &IngredientRepository{db: db}
}

func (r *IngredientRepository) Create(ctx context.Context, ingredient *model.Ingredient) error {
	if err := r.db.WithContext(ctx).Create(ingredient).Error; err != nil {
		return fmt.Errorf("create ingredient: %w", err)
	}
	return nil
}

func (r *IngredientRepository) ListAll(ctx context.Context) ([]model.Ingredient, error) {
	var ingredients []model.Ingredient
	if err := r.db.WithContext(ctx).Order("name ASC, id ASC").Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

func (r *IngredientRepository) FindByID(ctx context.Context, id uint) (*model.Ingredient, error) {
	var ingredient model.Ingredient
	if err := r.db.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		return nil, err
	}
	return &ingredient, nil
}

// ShoppingList sums ingredient quantities over the given recipes, each recipe counted once.
func (r *IngredientRepository) ShoppingList(ctx context.Context, recipeIDs []uint) ([]model.ShoppingItem, error) {
	if len(recipeIDs) == 0 {
		return nil, nil
	}
	var items []model.ShoppingItem
	if err := r.db.WithContext(ctx).
		Table("recipe_ingredients").
		Select("ingredients.name AS name, ingredients.unit_of_measure AS unit_of_measure, SUM(recipe_ingredients.quantity) AS total_quantity").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Where("recipe_ingredients.recipe_id IN ?", recipeIDs).
		Group("ingredients.name, ingredients.unit_of_measure").
		Order("ingredients.name ASC, ingredients.unit_of_measure ASC").
		Scan(&items).Error; err != nil {
		return nil, fmt.Errorf("aggregate shopping list: %w", err)
	}
	return items, nil
}

// PlanShoppingList sums ingredient quantities over every slot of a meal plan.
// A recipe assigned to several slots is counted once per slot.
func (r *IngredientRepository) PlanShoppingList(ctx context.Context, planID uint) ([]model.ShoppingItem, error) {
	var items []model.ShoppingItem
	if err := r.db.WithContext(ctx).
		Table("meal_plan_recipes").
		Select("ingredients.name AS name, ingredients.unit_of_measure AS unit_of_measure, SUM(recipe_ingredients.quantity) AS total_quantity").
		Joins("JOIN recipe_ingredients ON recipe_ingredients.recipe_id = meal_plan_recipes.recipe_id").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Where("meal_plan_recipes.plan_id = ?", planID).
		Group("ingredients.name, ingredients.unit_of_measure").
		Order("ingredients.name ASC, ingredients.unit_of_measure ASC").
		Scan(&items).Error; err != nil {
		return nil, fmt.Errorf("aggregate plan shopping list: %w", err)
	}
	return items, nil
}
