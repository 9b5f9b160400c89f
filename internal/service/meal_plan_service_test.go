package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meal-planner/internal/model"
)

var monday = time.Date(2024, time.March, 4, 15, 30, 0, 0, time.UTC)

func countRows(t *testing.T, f *fixture, value interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(value).Count(&n).Error)
	return n
}

func TestGenerateAndSaveRoundTrip(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	f.addRecipe(t, model.CategoryBreakfast, "Oatmeal")
	f.addRecipe(t, model.CategoryBreakfast, "Pancakes")
	f.addRecipe(t, model.CategoryLunch, "Salad")
	f.addRecipe(t, model.CategoryDinner, "Soup")
	f.addRecipe(t, model.CategoryDinner, "Curry")
	f.addRecipe(t, model.CategoryDessert, "Cake")

	id, plan, err := f.plans.GenerateAndSave(ctx, f.user.ID, monday)
	require.NoError(t, err)
	require.NotZero(t, id)
	require.Equal(t, 21, plan.Slots())

	view, err := f.plans.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, f.user.ID, view.UserID)
	assert.Equal(t, "2024-03-04", view.StartDate.Format("2006-01-02"))
	assert.Equal(t, "2024-03-10", view.EndDate.Format("2006-01-02"))
	assert.True(t, view.CreatedAt.Equal(monday), "created at %s", view.CreatedAt)

	require.Len(t, view.Entries, 21)
	assert.Equal(t, "Monday", view.Entries[0].Day)
	assert.Equal(t, model.CategoryBreakfast, view.Entries[0].MealType)
	assert.Equal(t, "Sunday", view.Entries[20].Day)
	assert.Equal(t, model.CategoryDinner, view.Entries[20].MealType)

	for i, entry := range view.Entries {
		assert.Equal(t, WeekDays[i/3], entry.Day)
		assert.Equal(t, entry.MealType, entry.Category)
		assert.NotEqual(t, "Cake", entry.RecipeName)

		generated, ok := plan.Recipe(entry.Day, entry.MealType)
		require.True(t, ok)
		assert.Equal(t, generated.ID, entry.RecipeID)
		assert.Equal(t, generated.Name, entry.RecipeName)
	}
}

func TestGenerateAndSaveInsufficientStoresNothing(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	f.addRecipe(t, model.CategoryBreakfast, "Oatmeal")
	f.addRecipe(t, model.CategoryDinner, "Soup")
	f.addRecipe(t, model.CategoryDessert, "Cake")

	id, plan, err := f.plans.GenerateAndSave(ctx, f.user.ID, monday)
	require.Error(t, err)
	assert.Zero(t, id)
	assert.Nil(t, plan)

	var insufficient *InsufficientCategoryRecipesError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, model.CategoryLunch, insufficient.Category)

	count, err := f.planRepo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestGenerateIgnoresExcludedCategories(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	f.seedWeek(t)
	f.addRecipe(t, model.CategoryAppetizer, "Olives")

	plan, err := f.plans.Generate(ctx)
	require.NoError(t, err)
	for _, day := range plan.Days {
		for _, meal := range day.Meals {
			assert.NotEqual(t, "Olives", meal.Recipe.Name)
		}
	}
}

func TestSaveRollsBackOnFailedLink(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	f.seedWeek(t)

	plan, err := f.plans.Generate(ctx)
	require.NoError(t, err)
	last := len(plan.Days) - 1
	plan.Days[last].Meals[2].Recipe.ID = 9999

	id, err := f.plans.Save(ctx, f.user.ID, plan, monday)
	require.Error(t, err)
	assert.Zero(t, id)

	var persistence *PersistenceError
	require.True(t, errors.As(err, &persistence))
	assert.Equal(t, "create", persistence.Op)

	assert.Zero(t, countRows(t, f, &model.MealPlan{}))
	assert.Zero(t, countRows(t, f, &model.MealPlanRecipe{}))
}

func TestSaveRejectsEmptyPlan(t *testing.T) {
	f := setupFixture(t)

	_, err := f.plans.Save(context.Background(), f.user.ID, &WeeklyPlan{}, monday)
	assert.Error(t, err)
	assert.Zero(t, countRows(t, f, &model.MealPlan{}))
}

func TestDeletePlan(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	f.seedWeek(t)

	keep, _, err := f.plans.GenerateAndSave(ctx, f.user.ID, monday)
	require.NoError(t, err)
	drop, _, err := f.plans.GenerateAndSave(ctx, f.user.ID, monday.Add(time.Hour))
	require.NoError(t, err)

	require.NoError(t, f.plans.Delete(ctx, drop))

	_, err = f.plans.Get(ctx, drop)
	assert.ErrorIs(t, err, ErrPlanNotFound)
	assert.ErrorIs(t, f.plans.Delete(ctx, drop), ErrPlanNotFound)

	_, err = f.plans.Get(ctx, keep)
	assert.NoError(t, err)
	assert.Equal(t, int64(21), countRows(t, f, &model.MealPlanRecipe{}))
}

func TestDeleteUnknownPlan(t *testing.T) {
	f := setupFixture(t)

	err := f.plans.Delete(context.Background(), 42)
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestListPlansNewestFirst(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	f.seedWeek(t)

	older, _, err := f.plans.GenerateAndSave(ctx, f.user.ID, monday)
	require.NoError(t, err)
	newer, _, err := f.plans.GenerateAndSave(ctx, f.user.ID, monday.AddDate(0, 0, 7))
	require.NoError(t, err)
	sameTime, _, err := f.plans.GenerateAndSave(ctx, f.user.ID, monday.AddDate(0, 0, 7))
	require.NoError(t, err)

	views, err := f.plans.List(ctx)
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, []uint{sameTime, newer, older}, []uint{views[0].ID, views[1].ID, views[2].ID})
	for _, view := range views {
		assert.Len(t, view.Entries, 21)
	}
	assert.Equal(t, "2024-03-11", views[0].StartDate.Format("2006-01-02"))
}

func TestListPlansEmpty(t *testing.T) {
	f := setupFixture(t)

	views, err := f.plans.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestPlanShoppingListCountsEverySlot(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	eggs := f.addIngredient(t, "Eggs", "pcs")
	tomato := f.addIngredient(t, "Tomato", "pcs")

	f.addRecipe(t, model.CategoryBreakfast, "Omelette", IngredientQuantity{IngredientID: eggs.ID, Quantity: 2})
	f.addRecipe(t, model.CategoryLunch, "Salad", IngredientQuantity{IngredientID: tomato.ID, Quantity: 1})
	f.addRecipe(t, model.CategoryDinner, "Soup", IngredientQuantity{IngredientID: tomato.ID, Quantity: 2.5})

	id, _, err := f.plans.GenerateAndSave(ctx, f.user.ID, monday)
	require.NoError(t, err)

	items, err := f.plans.ShoppingList(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []model.ShoppingItem{
		{Name: "Eggs", UnitOfMeasure: "pcs", TotalQuantity: 14},
		{Name: "Tomato", UnitOfMeasure: "pcs", TotalQuantity: 24.5},
	}, items)

	_, err = f.plans.ShoppingList(ctx, id+100)
	assert.ErrorIs(t, err, ErrPlanNotFound)
}
