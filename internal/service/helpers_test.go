package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"meal-planner/internal/model"
	"meal-planner/internal/repository"
)

type fixture struct {
	db             *gorm.DB
	user           *model.User
	categories     map[string]uint
	userRepo       *repository.UserRepository
	categoryRepo   *repository.CategoryRepository
	recipeRepo     *repository.RecipeRepository
	ingredientRepo *repository.IngredientRepository
	planRepo       *repository.MealPlanRepository
	recipes        *RecipeService
	plans          *MealPlanService
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	db, err := repository.NewDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	require.NoError(t, repository.SeedCategories(ctx, db))

	f := &fixture{
		db:             db,
		categories:     make(map[string]uint),
		userRepo:       repository.NewUserRepository(db),
		categoryRepo:   repository.NewCategoryRepository(db),
		recipeRepo:     repository.NewRecipeRepository(db),
		ingredientRepo: repository.NewIngredientRepository(db),
		planRepo:       repository.NewMealPlanRepository(db),
	}

	f.user, err = f.userRepo.GetOrCreate(ctx, "chef")
	require.NoError(t, err)

	categories, err := f.categoryRepo.ListAll(ctx)
	require.NoError(t, err)
	for _, c := range categories {
		f.categories[c.Name] = c.ID
	}

	f.recipes = NewRecipeService(f.recipeRepo, f.categoryRepo, f.userRepo, f.ingredientRepo)
	f.plans = NewMealPlanService(f.recipeRepo, f.planRepo, f.ingredientRepo, seededGenerator(11), []string{model.CategoryAppetizer, model.CategoryDessert})
	return f
}

func (f *fixture) addRecipe(t *testing.T, category, name string, ingredients ...IngredientQuantity) *model.Recipe {
	t.Helper()
	recipe, err := f.recipes.Create(context.Background(), RecipeInput{
		Name:         name,
		PrepTime:     10,
		CookTime:     20,
		Servings:     2,
		Instructions: "Cook it.",
		CategoryID:   f.categories[category],
		UserID:       f.user.ID,
		Ingredients:  ingredients,
	})
	require.NoError(t, err)
	return recipe
}

func (f *fixture) addIngredient(t *testing.T, name, unit string) *model.Ingredient {
	t.Helper()
	ingredient, err := f.recipes.CreateIngredient(context.Background(), IngredientInput{Name: name, UnitOfMeasure: unit})
	require.NoError(t, err)
	return ingredient
}

// seedWeek adds one recipe per meal type.
func (f *fixture) seedWeek(t *testing.T) {
	t.Helper()
	f.addRecipe(t, model.CategoryBreakfast, "Oatmeal")
	f.addRecipe(t, model.CategoryLunch, "Salad")
	f.addRecipe(t, model.CategoryDinner, "Soup")
}
