package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"meal-planner/internal/model"
	"meal-planner/internal/repository"
	"meal-planner/internal/service"
)

const (
	menuViewRecipes   = "1"
	menuAddRecipe     = "2"
	menuUpdateRecipe  = "3"
	menuDeleteRecipe  = "4"
	menuShoppingList  = "5"
	menuGeneratePlan  = "6"
	menuViewPlans     = "7"
	menuDeletePlan    = "8"
	menuBack          = "b"
	invalidChoiceText = "Invalid choice. Please try again."
	maxInputLine      = 1 << 20
)

// errEndOfInput unwinds nested prompts when stdin is closed.
var errEndOfInput = errors.New("end of input")

// Shell is the interactive recipe and meal plan menu.
type Shell struct {
	in          *bufio.Scanner
	out         io.Writer
	user        *model.User
	userRepo    *repository.UserRepository
	categorySvc *service.CategoryService
	recipeSvc   *service.RecipeService
	planSvc     *service.MealPlanService
	now         func() time.Time
}

func NewShell(in io.Reader, out io.Writer, user *model.User, userRepo *repository.UserRepository, categorySvc *service.CategoryService, recipeSvc *service.RecipeService, planSvc *service.MealPlanService) *Shell {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxInputLine)
	return &Shell{
		in:          scanner,
		out:         out,
		user:        user,
		userRepo:    userRepo,
		categorySvc: categorySvc,
		recipeSvc:   recipeSvc,
		planSvc:     planSvc,
		now:         time.Now,
	}
}

// Run shows the main menu until the user quits, input ends or ctx is cancelled.
func (s *Shell) Run(ctx context.Context) error {
	log.Printf("[info] shell started user=%s", s.user.Username)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.printMenu()
		choice, err := s.prompt("\nEnter your choice: ")
		if err != nil {
			if errors.Is(err, errEndOfInput) {
				return nil
			}
			return err
		}

		switch strings.ToLower(choice) {
		case menuViewRecipes:
			err = s.viewRecipes(ctx)
		case menuAddRecipe:
			err = s.addRecipe(ctx)
		case menuUpdateRecipe:
			err = s.updateRecipe(ctx)
		case menuDeleteRecipe:
			err = s.deleteRecipe(ctx)
		case menuShoppingList:
			err = s.shoppingList(ctx)
		case menuGeneratePlan:
			err = s.generatePlan(ctx)
		case menuViewPlans:
			err = s.viewPlans(ctx)
		case menuDeletePlan:
			err = s.deletePlan(ctx)
		case menuBack, "q", "exit":
			s.println("Goodbye!")
			return nil
		default:
			s.println(invalidChoiceText)
			continue
		}

		if err == nil {
			continue
		}
		if errors.Is(err, errEndOfInput) {
			return nil
		}
		if s.in.Err() != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		log.Printf("menu option %s: %v", choice, err)
		s.printf("Error: %v\n", err)
	}
}

func (s *Shell) printMenu() {
	s.println("\nRecipe Management System")
	s.println("1. View Recipes")
	s.println("2. Add Recipe")
	s.println("3. Update Recipe")
	s.println("4. Delete Recipe")
	s.println("5. Generate Shopping List")
	s.println("6. Generate Weekly Meal Plan")
	s.println("7. View Meal Plans")
	s.println("8. Delete Meal Plan")
	s.println("b. Exit")
}

func (s *Shell) viewRecipes(ctx context.Context) error {
	for {
		s.println("\nView Recipes:")
		s.println("1. View all recipes")
		s.println("2. View recipes by user")
		s.println("b. Go back")
		choice, err := s.prompt("Enter your choice: ")
		if err != nil {
			return err
		}

		var recipes []model.Recipe
		switch {
		case isBackInput(choice):
			return nil
		case choice == "1":
			recipes, err = s.recipeSvc.List(ctx)
		case choice == "2":
			user, ok, pickErr := s.pickUser(ctx, "Select a user, or 'b' to go back: ", false)
			if pickErr != nil {
				return pickErr
			}
			if !ok {
				continue
			}
			recipes, err = s.recipeSvc.ListByUser(ctx, user.ID)
		default:
			s.println(invalidChoiceText)
			continue
		}
		if err != nil {
			return err
		}
		if err := s.browseRecipes(ctx, recipes); err != nil {
			return err
		}
	}
}

func (s *Shell) browseRecipes(ctx context.Context, recipes []model.Recipe) error {
	if len(recipes) == 0 {
		s.println("No recipes found.")
		return nil
	}
	s.printRecipes(recipes)
	idx, ok, err := s.pickIndex("Enter the number of the recipe to view details, or 'b' to go back: ", len(recipes))
	if err != nil || !ok {
		return err
	}
	recipe, err := s.recipeSvc.Get(ctx, recipes[idx].ID)
	if err != nil {
		return err
	}
	s.printf("\n%s", formatRecipeDetail(*recipe))
	return nil
}

func (s *Shell) addRecipe(ctx context.Context) error {
	s.println("\nAdd a new recipe")
	category, ok, err := s.pickCategory(ctx, "Select a category: ", false)
	if err != nil || !ok {
		return err
	}
	user, ok, err := s.pickUser(ctx, "Select a user, or 'b' to go back: ", false)
	if err != nil || !ok {
		return err
	}

	input := service.RecipeInput{CategoryID: category.ID, UserID: user.ID}
	if input.Name, err = s.promptRequired("Enter recipe name: "); err != nil {
		return err
	}
	if input.PrepTime, err = s.promptInt("Enter prep time (minutes): ", 0); err != nil {
		return err
	}
	if input.CookTime, err = s.promptInt("Enter cook time (minutes): ", 0); err != nil {
		return err
	}
	if input.Servings, err = s.promptInt("Enter number of servings: ", 1); err != nil {
		return err
	}
	if input.Instructions, err = s.prompt("Enter cooking instructions: "); err != nil {
		return err
	}

	for {
		add, err := s.promptConfirm("Add an ingredient? (y/n): ")
		if err != nil {
			return err
		}
		if !add {
			break
		}
		item, ok, err := s.pickIngredientQuantity(ctx)
		if err != nil {
			return err
		}
		if ok {
			input.Ingredients = append(input.Ingredients, item)
		}
	}

	recipe, err := s.recipeSvc.Create(ctx, input)
	if err != nil {
		return err
	}
	s.printf("Recipe '%s' added successfully with %d ingredient(s)!\n", normalizeTitle(recipe.Name), len(recipe.Ingredients))
	return nil
}

func (s *Shell) updateRecipe(ctx context.Context) error {
	recipe, ok, err := s.pickRecipe(ctx, "Enter the number of the recipe to update, or 'b' to go back: ")
	if err != nil || !ok {
		return err
	}

	s.printf("\nUpdating '%s'. Press Enter to keep the current value.\n", normalizeTitle(recipe.Name))
	var update service.RecipeUpdate
	if name, err := s.prompt(fmt.Sprintf("Name [%s]: ", recipe.Name)); err != nil {
		return err
	} else if name != "" {
		update.Name = &name
	}
	if update.PrepTime, err = s.promptOptionalInt(fmt.Sprintf("Prep time [%d]: ", recipe.PrepTime), 0); err != nil {
		return err
	}
	if update.CookTime, err = s.promptOptionalInt(fmt.Sprintf("Cook time [%d]: ", recipe.CookTime), 0); err != nil {
		return err
	}
	if update.Servings, err = s.promptOptionalInt(fmt.Sprintf("Servings [%d]: ", recipe.Servings), 1); err != nil {
		return err
	}
	if instructions, err := s.prompt("Instructions [keep current]: "); err != nil {
		return err
	} else if instructions != "" {
		update.Instructions = &instructions
	}
	if category, ok, err := s.pickCategory(ctx, fmt.Sprintf("Category [%s], number or Enter to keep: ", recipe.Category.Name), true); err != nil {
		return err
	} else if ok {
		update.CategoryID = &category.ID
	}
	if user, ok, err := s.pickUser(ctx, fmt.Sprintf("User [%s], number or Enter to keep: ", recipe.User.Username), true); err != nil {
		return err
	} else if ok {
		update.UserID = &user.ID
	}

	updated, err := s.recipeSvc.Update(ctx, recipe.ID, update)
	if err != nil {
		return err
	}
	s.printf("Recipe '%s' updated successfully!\n", normalizeTitle(updated.Name))
	return s.manageIngredients(ctx, updated.ID)
}

func (s *Shell) manageIngredients(ctx context.Context, recipeID uint) error {
	for {
		recipe, err := s.recipeSvc.Get(ctx, recipeID)
		if err != nil {
			return err
		}
		s.println("\nCurrent ingredients:")
		if len(recipe.Ingredients) == 0 {
			s.println("No ingredients found for this recipe.")
		}
		for i, link := range recipe.Ingredients {
			s.printf("%d. %s\n", i+1, strings.TrimPrefix(formatIngredientLink(link), "- "))
		}
		s.println("\n1. Add ingredient")
		s.println("2. Remove ingredient")
		s.println("b. Done")
		choice, err := s.prompt("Enter your choice: ")
		if err != nil {
			return err
		}

		switch {
		case isBackInput(choice):
			return nil
		case choice == "1":
			item, ok, err := s.pickIngredientQuantity(ctx)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			if _, err := s.recipeSvc.AddIngredient(ctx, recipeID, item.IngredientID, item.Quantity); err != nil {
				return err
			}
			s.println("Ingredient added.")
		case choice == "2":
			if len(recipe.Ingredients) == 0 {
				continue
			}
			idx, ok, err := s.pickIndex("Enter the number of the ingredient to remove, or 'b' to go back: ", len(recipe.Ingredients))
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			if err := s.recipeSvc.RemoveIngredient(ctx, recipeID, recipe.Ingredients[idx].IngredientID); err != nil {
				return err
			}
			s.println("Ingredient removed.")
		default:
			s.println(invalidChoiceText)
		}
	}
}

func (s *Shell) deleteRecipe(ctx context.Context) error {
	recipe, ok, err := s.pickRecipe(ctx, "Enter the number of the recipe to delete, or 'b' to go back: ")
	if err != nil || !ok {
		return err
	}
	confirmed, err := s.promptConfirm(fmt.Sprintf("Are you sure you want to delete '%s'? (y/n): ", normalizeTitle(recipe.Name)))
	if err != nil {
		return err
	}
	if !confirmed {
		s.println("Deletion cancelled.")
		return nil
	}

	if err := s.recipeSvc.Delete(ctx, recipe.ID); err != nil {
		if errors.Is(err, repository.ErrRecipeInUse) {
			s.println("This recipe is part of a saved meal plan. Delete the plan first.")
			return nil
		}
		return err
	}
	s.printf("Recipe '%s' deleted successfully!\n", normalizeTitle(recipe.Name))
	return nil
}

func (s *Shell) shoppingList(ctx context.Context) error {
	recipes, err := s.recipeSvc.List(ctx)
	if err != nil {
		return err
	}
	if len(recipes) == 0 {
		s.println("No recipes found.")
		return nil
	}
	s.printRecipes(recipes)

	for {
		raw, err := s.prompt("Enter the numbers of the recipes, separated by commas, or 'b' to go back: ")
		if err != nil {
			return err
		}
		if isBackInput(raw) {
			return nil
		}
		var ids []uint
		for _, idx := range parseIndexList(raw, len(recipes)) {
			ids = append(ids, recipes[idx].ID)
		}
		if len(ids) == 0 {
			s.println("No valid recipes selected.")
			continue
		}
		items, err := s.recipeSvc.ShoppingList(ctx, ids)
		if err != nil {
			return err
		}
		s.println("")
		WriteShoppingList(s.out, items)
		return nil
	}
}

func (s *Shell) generatePlan(ctx context.Context) error {
	id, plan, err := s.planSvc.GenerateAndSave(ctx, s.user.ID, s.now())
	if err != nil {
		var insufficient *service.InsufficientCategoryRecipesError
		if errors.As(err, &insufficient) {
			s.printf("Insufficient recipes for %s. Please add more recipes.\n", insufficient.Category)
			return nil
		}
		return err
	}
	s.println("")
	WriteWeeklyPlan(s.out, plan)
	s.printf("\nMeal plan saved successfully with ID: %d\n", id)
	return nil
}

func (s *Shell) viewPlans(ctx context.Context) error {
	plans, err := s.planSvc.List(ctx)
	if err != nil {
		return err
	}
	s.println("")
	WritePlanViews(s.out, plans)
	if len(plans) == 0 {
		return nil
	}

	idx, ok, err := s.pickIndex("Enter the number of a plan for its shopping list, or 'b' to go back: ", len(plans))
	if err != nil || !ok {
		return err
	}
	items, err := s.planSvc.ShoppingList(ctx, plans[idx].ID)
	if err != nil {
		return err
	}
	s.println("")
	WriteShoppingList(s.out, items)
	return nil
}

func (s *Shell) deletePlan(ctx context.Context) error {
	plans, err := s.planSvc.List(ctx)
	if err != nil {
		return err
	}
	if len(plans) == 0 {
		s.println("No meal plans found.")
		return nil
	}
	for i, plan := range plans {
		s.printf("%d. Meal Plan ID %d | %s\n", i+1, plan.ID, planHeader(plan))
	}

	idx, ok, err := s.pickIndex("Enter the number of the meal plan to delete, or 'b' to go back: ", len(plans))
	if err != nil || !ok {
		return err
	}
	if err := s.planSvc.Delete(ctx, plans[idx].ID); err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			s.println("Meal plan not found.")
			return nil
		}
		return err
	}
	s.println("Meal plan deleted successfully!")
	return nil
}

func (s *Shell) pickRecipe(ctx context.Context, label string) (*model.Recipe, bool, error) {
	recipes, err := s.recipeSvc.List(ctx)
	if err != nil {
		return nil, false, err
	}
	if len(recipes) == 0 {
		s.println("No recipes found.")
		return nil, false, nil
	}
	s.printRecipes(recipes)
	idx, ok, err := s.pickIndex(label, len(recipes))
	if err != nil || !ok {
		return nil, false, err
	}
	recipe, err := s.recipeSvc.Get(ctx, recipes[idx].ID)
	if err != nil {
		return nil, false, err
	}
	return recipe, true, nil
}

// pickCategory lists the categories and reads a choice. With keep set, an empty line keeps the current one.
func (s *Shell) pickCategory(ctx context.Context, label string, keep bool) (*model.Category, bool, error) {
	categories, err := s.categorySvc.List(ctx)
	if err != nil {
		return nil, false, err
	}
	s.println("\nCategories:")
	for i, category := range categories {
		s.printf("%d. %s\n", i+1, category.Name)
	}
	idx, ok, err := s.choose(label, len(categories), keep)
	if err != nil || !ok {
		return nil, false, err
	}
	return &categories[idx], true, nil
}

func (s *Shell) pickUser(ctx context.Context, label string, keep bool) (*model.User, bool, error) {
	users, err := s.userRepo.ListAll(ctx)
	if err != nil {
		return nil, false, err
	}
	s.println("\nUsers:")
	for i, user := range users {
		s.printf("%d. %s\n", i+1, user.Username)
	}
	idx, ok, err := s.choose(label, len(users), keep)
	if err != nil || !ok {
		return nil, false, err
	}
	return &users[idx], true, nil
}

// pickIngredientQuantity chooses an existing ingredient or creates one, then asks for a quantity.
func (s *Shell) pickIngredientQuantity(ctx context.Context) (service.IngredientQuantity, bool, error) {
	ingredients, err := s.recipeSvc.ListIngredients(ctx)
	if err != nil {
		return service.IngredientQuantity{}, false, err
	}
	s.println("\nIngredients:")
	for i, ingredient := range ingredients {
		s.printf("%d. %s (%s)\n", i+1, ingredient.Name, ingredient.UnitOfMeasure)
	}
	s.println("c. Create a new ingredient")

	var ingredientID uint
	for ingredientID == 0 {
		choice, err := s.prompt("Select an ingredient, 'c' to create one, or 'b' to go back: ")
		if err != nil {
			return service.IngredientQuantity{}, false, err
		}
		switch {
		case isBackInput(choice):
			return service.IngredientQuantity{}, false, nil
		case strings.EqualFold(choice, "c"):
			created, err := s.createIngredient(ctx)
			if err != nil {
				return service.IngredientQuantity{}, false, err
			}
			ingredientID = created.ID
		default:
			idx, ok := parseIndex(choice, len(ingredients))
			if !ok {
				s.println(invalidChoiceText)
				continue
			}
			ingredientID = ingredients[idx].ID
		}
	}

	for {
		raw, err := s.prompt("Enter quantity: ")
		if err != nil {
			return service.IngredientQuantity{}, false, err
		}
		quantity, err := strconv.ParseFloat(raw, 64)
		if err != nil || quantity <= 0 {
			s.println("Quantity must be a positive number.")
			continue
		}
		return service.IngredientQuantity{IngredientID: ingredientID, Quantity: quantity}, true, nil
	}
}

func (s *Shell) createIngredient(ctx context.Context) (*model.Ingredient, error) {
	name, err := s.promptRequired("Enter ingredient name: ")
	if err != nil {
		return nil, err
	}
	unit, err := s.promptRequired("Enter unit of measure: ")
	if err != nil {
		return nil, err
	}
	ingredient, err := s.recipeSvc.CreateIngredient(ctx, service.IngredientInput{Name: name, UnitOfMeasure: unit})
	if err != nil {
		return nil, err
	}
	s.printf("Ingredient '%s' created.\n", ingredient.Name)
	return ingredient, nil
}

func (s *Shell) printRecipes(recipes []model.Recipe) {
	s.println("\nRecipes:")
	for i, recipe := range recipes {
		s.printf("%s", formatRecipeLine(i+1, recipe))
	}
}

// pickIndex reads a 1-based choice until it is valid. ok is false when the user goes back.
func (s *Shell) pickIndex(label string, n int) (int, bool, error) {
	return s.choose(label, n, false)
}

// choose is pickIndex where an empty line also means back when emptyKeeps is set.
func (s *Shell) choose(label string, n int, emptyKeeps bool) (int, bool, error) {
	for {
		choice, err := s.prompt(label)
		if err != nil {
			return 0, false, err
		}
		if isBackInput(choice) || (emptyKeeps && choice == "") {
			return 0, false, nil
		}
		if idx, ok := parseIndex(choice, n); ok {
			return idx, true, nil
		}
		s.println(invalidChoiceText)
	}
}

func (s *Shell) promptRequired(label string) (string, error) {
	for {
		value, err := s.prompt(label)
		if err != nil {
			return "", err
		}
		if value != "" {
			return value, nil
		}
		s.println("A value is required.")
	}
}

func (s *Shell) promptInt(label string, min int) (int, error) {
	for {
		raw, err := s.prompt(label)
		if err != nil {
			return 0, err
		}
		value, err := strconv.Atoi(raw)
		if err != nil || value < min {
			s.printf("Please enter a whole number of at least %d.\n", min)
			continue
		}
		return value, nil
	}
}

// promptOptionalInt returns nil when the user keeps the current value.
func (s *Shell) promptOptionalInt(label string, min int) (*int, error) {
	for {
		raw, err := s.prompt(label)
		if err != nil {
			return nil, err
		}
		if raw == "" {
			return nil, nil
		}
		value, err := strconv.Atoi(raw)
		if err != nil || value < min {
			s.printf("Please enter a whole number of at least %d.\n", min)
			continue
		}
		return &value, nil
	}
}

func (s *Shell) promptConfirm(label string) (bool, error) {
	for {
		raw, err := s.prompt(label)
		if err != nil {
			return false, err
		}
		switch {
		case isConfirmInput(raw):
			return true, nil
		case isDeclineInput(raw):
			return false, nil
		}
		s.println("Please answer 'y' or 'n'.")
	}
}

func (s *Shell) prompt(label string) (string, error) {
	s.printf("%s", label)
	if !s.in.Scan() {
		s.println("")
		if err := s.in.Err(); err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return "", errEndOfInput
	}
	return strings.TrimSpace(s.in.Text()), nil
}

func (s *Shell) println(text string) {
	fmt.Fprintln(s.out, text)
}

func (s *Shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func parseIndex(raw string, n int) (int, bool) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value < 1 || value > n {
		return 0, false
	}
	return value - 1, true
}

// parseIndexList keeps the valid 1-based entries of a comma separated list.
func parseIndexList(raw string, n int) []int {
	var out []int
	for _, part := range strings.Split(raw, ",") {
		if idx, ok := parseIndex(part, n); ok {
			out = append(out, idx)
		}
	}
	return out
}

func isBackInput(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	return lower == "b" || lower == "back"
}

func isConfirmInput(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	return lower == "y" || lower == "yes"
}

func isDeclineInput(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	return lower == "n" || lower == "no"
}
