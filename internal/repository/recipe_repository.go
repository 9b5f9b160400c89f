package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"meal-planner/internal/model"
)

// ErrRecipeInUse is returned when deleting a recipe that a saved meal plan still references.
var ErrRecipeInUse = errors.New("recipe is used by a saved meal plan")

// RecipeRepository handles CRUD for recipes and their ingredient links.
type RecipeRepository struct {
	db *gorm.DB
}

func NewRecipeRepository(db *gorm.DB) *RecipeRepository {
	return &RecipeRepository{db: db}
}

// Create inserts the recipe and its ingredient links in one transaction.
func (r *RecipeRepository) Create(ctx context.Context, recipe *model.Recipe) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		links := recipe.Ingredients
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return fmt.Errorf("create recipe: %w", err)
		}
		for i := range links {
			links[i].RecipeID = recipe.ID
		}
		if len(links) > 0 {
			if err := tx.Omit(clause.Associations).Create(&links).Error; err != nil {
				return fmt.Errorf("create recipe ingredients: %w", err)
			}
		}
		recipe.Ingredients = links
		return nil
	})
	return err
}

func (r *RecipeRepository) ListAll(ctx context.Context) ([]model.Recipe, error) {
	var recipes []model.Recipe
	if err := r.db.WithContext(ctx).Preload("Category").Preload("User").
		Order("id ASC").
		Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

func (r *RecipeRepository) ListByUser(ctx context.Context, userID uint) ([]model.Recipe, error) {
	var recipes []model.Recipe
	if err := r.db.WithContext(ctx).Preload("Category").Preload("User").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

// FindByID loads a recipe with category, creator and ingredients.
func (r *RecipeRepository) FindByID(ctx context.Context, id uint) (*model.Recipe, error) {
	var recipe model.Recipe
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("User").
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Ingredients.Ingredient").
		First(&recipe, id).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

// ListExcludingCategories returns every recipe whose category is not in names.
func (r *RecipeRepository) ListExcludingCategories(ctx context.Context, names []string) ([]model.RecipeSummary, error) {
	var summaries []model.RecipeSummary
	query := r.db.WithContext(ctx).
		Table("recipes").
		Select("recipes.id AS id, recipes.name AS name, categories.name AS category").
		Joins("JOIN categories ON categories.id = recipes.category_id")
	if len(names) > 0 {
		query = query.Where("categories.name NOT IN ?", names)
	}
	if err := query.Order("recipes.id ASC").Scan(&summaries).Error; err != nil {
		return nil, fmt.Errorf("list eligible recipes: %w", err)
	}
	return summaries, nil
}

// Update writes the scalar columns of recipe, including zero values.
func (r *RecipeRepository) Update(ctx context.Context, recipe *model.Recipe) error {
	updates := map[string]interface{}{
		"name":         recipe.Name,
		"prep_time":    recipe.PrepTime,
		"cook_time":    recipe.CookTime,
		"servings":     recipe.Servings,
		"instructions": recipe.Instructions,
		"category_id":  recipe.CategoryID,
		"user_id":      recipe.UserID,
	}
	if err := r.db.WithContext(ctx).Model(&model.Recipe{ID: recipe.ID}).Updates(updates).Error; err != nil {
		return fmt.Errorf("update recipe: %w", err)
	}
	return nil
}

// Delete removes a recipe and its ingredient links. It reports whether the recipe existed.
func (r *RecipeRepository) Delete(ctx context.Context, id uint) (bool, error) {
	var found bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var refs int64
		if err := tx.Model(&model.MealPlanRecipe{}).Where("recipe_id = ?", id).Count(&refs).Error; err != nil {
			return fmt.Errorf("count plan references: %w", err)
		}
		if refs > 0 {
			return ErrRecipeInUse
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&model.RecipeIngredient{}).Error; err != nil {
			return fmt.Errorf("delete recipe ingredients: %w", err)
		}
		res := tx.Delete(&model.Recipe{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete recipe: %w", res.Error)
		}
		found = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

func (r *RecipeRepository) AddIngredient(ctx context.Context, recipeID, ingredientID uint, quantity float64) (*model.RecipeIngredient, error) {
	link := model.RecipeIngredient{RecipeID: recipeID, IngredientID: ingredientID, Quantity: quantity}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&link).Error; err != nil {
		return nil, fmt.Errorf("add recipe ingredient: %w", err)
	}
	return &link, nil
}

// RemoveIngredient unlinks an ingredient from a recipe. It reports whether a link existed.
func (r *RecipeRepository) RemoveIngredient(ctx context.Context, recipeID, ingredientID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("recipe_id = ? AND ingredient_id = ?", recipeID, ingredientID).
		Delete(&model.RecipeIngredient{})
	if res.Error != nil {
		return false, fmt.Errorf("remove recipe ingredient: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
