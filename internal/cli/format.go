package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"meal-planner/internal/model"
	"meal-planner/internal/service"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02 15:04:05"
	separator       = "------------------------------"
	planSeparator   = "=================================================="
)

// WriteWeeklyPlan prints a freshly generated plan day by day.
func WriteWeeklyPlan(w io.Writer, plan *service.WeeklyPlan) {
	var b strings.Builder
	b.WriteString("Weekly Meal Plan:\n")
	for _, day := range plan.Days {
		b.WriteString(fmt.Sprintf("\n%s:\n", day.Day))
		for _, meal := range day.Meals {
			b.WriteString(fmt.Sprintf("  %s: %s (Category: %s)\n", meal.MealType, normalizeTitle(meal.Recipe.Name), meal.Recipe.Category))
		}
	}
	fmt.Fprint(w, b.String())
}

// WritePlanViews prints stored plans with their entries.
func WritePlanViews(w io.Writer, plans []service.PlanView) {
	if len(plans) == 0 {
		fmt.Fprintln(w, "No meal plans found.")
		return
	}
	var b strings.Builder
	for i, plan := range plans {
		b.WriteString(fmt.Sprintf("Meal Plan %d (ID %d):\n", i+1, plan.ID))
		b.WriteString("  " + planHeader(plan) + "\n")
		b.WriteString(separator + "\n")
		for _, entry := range plan.Entries {
			b.WriteString(fmt.Sprintf("  %-9s %-9s %s: %s\n", entry.Day, entry.MealType, entry.Category, normalizeTitle(entry.RecipeName)))
		}
		b.WriteString(planSeparator + "\n")
	}
	fmt.Fprint(w, b.String())
}

// WriteShoppingList prints aggregated ingredient totals.
func WriteShoppingList(w io.Writer, items []model.ShoppingItem) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No ingredients found for the selected recipes.")
		return
	}
	var b strings.Builder
	b.WriteString("Shopping List:\n")
	for _, item := range items {
		b.WriteString(fmt.Sprintf("- %s: %s %s\n", item.Name, formatQuantity(item.TotalQuantity), item.UnitOfMeasure))
	}
	fmt.Fprint(w, b.String())
}

func planHeader(plan service.PlanView) string {
	return fmt.Sprintf("Start Date: %s | End Date: %s | Created At: %s",
		plan.StartDate.Format(dateLayout), plan.EndDate.Format(dateLayout), plan.CreatedAt.Format(timestampLayout))
}

func formatRecipeLine(idx int, recipe model.Recipe) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%d. %s (Category: %s, Created by: %s)\n", idx, normalizeTitle(recipe.Name), recipe.Category.Name, recipe.User.Username))
	b.WriteString(fmt.Sprintf("   Prep Time: %d mins | Cook Time: %d mins | Servings: %d\n", recipe.PrepTime, recipe.CookTime, recipe.Servings))
	b.WriteString(separator + "\n")
	return b.String()
}

func formatRecipeDetail(recipe model.Recipe) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Recipe: %s (Category: %s, Created by: %s)\n", normalizeTitle(recipe.Name), recipe.Category.Name, recipe.User.Username))
	b.WriteString(fmt.Sprintf("Prep Time: %d mins | Cook Time: %d mins | Servings: %d\n", recipe.PrepTime, recipe.CookTime, recipe.Servings))
	b.WriteString("\nIngredients:\n")
	if len(recipe.Ingredients) == 0 {
		b.WriteString("No ingredients found for this recipe.\n")
	}
	for _, link := range recipe.Ingredients {
		b.WriteString(formatIngredientLink(link) + "\n")
	}
	b.WriteString("\nInstructions:\n")
	b.WriteString(recipe.Instructions + "\n")
	b.WriteString(strings.Repeat("-", 50) + "\n")
	return b.String()
}

func formatIngredientLink(link model.RecipeIngredient) string {
	return fmt.Sprintf("- %s: %s %s", link.Ingredient.Name, formatQuantity(link.Quantity), link.Ingredient.UnitOfMeasure)
}

func formatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}

func normalizeTitle(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	runes := []rune(value)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
