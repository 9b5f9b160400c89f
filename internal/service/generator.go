package service

import (
	"fmt"
	"math/rand/v2"

	"meal-planner/internal/model"
)

// WeekDays are the days of a generated plan, in order.
var WeekDays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// MealTypes are the daily slots of a plan. Each one is filled from the category of the same name.
var MealTypes = []string{model.CategoryBreakfast, model.CategoryLunch, model.CategoryDinner}

// InsufficientCategoryRecipesError reports a required category without any eligible recipe.
type InsufficientCategoryRecipesError struct {
	Category string
}

func (e *InsufficientCategoryRecipesError) Error() string {
	return fmt.Sprintf("insufficient recipes for %s", e.Category)
}

// MealAssignment is one filled slot of a day.
type MealAssignment struct {
	MealType string
	Recipe   model.RecipeSummary
}

// DayPlan holds the three meals of one day.
type DayPlan struct {
	Day   string
	Meals []MealAssignment
}

// WeeklyPlan maps every day to a recipe per meal type.
type WeeklyPlan struct {
	Days []DayPlan
}

// Recipe returns the recipe assigned to the given slot.
func (p *WeeklyPlan) Recipe(day, mealType string) (model.RecipeSummary, bool) {
	for _, d := range p.Days {
		if d.Day != day {
			continue
		}
		for _, meal := range d.Meals {
			if meal.MealType == mealType {
				return meal.Recipe, true
			}
		}
	}
	return model.RecipeSummary{}, false
}

// Slots returns the number of filled slots.
func (p *WeeklyPlan) Slots() int {
	n := 0
	for _, d := range p.Days {
		n += len(d.Meals)
	}
	return n
}

// Generator assigns recipes to the slots of a week.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator returns a generator drawing from rng. A nil rng gets a randomly seeded source.
func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Generator{rng: rng}
}

// Generate buckets recipes by category and fills each meal type from a shuffled
// queue of its bucket. A queue is reshuffled from the full bucket once it runs dry,
// so no recipe repeats within a meal type before the whole bucket has been used.
func (g *Generator) Generate(recipes []model.RecipeSummary) (*WeeklyPlan, error) {
	buckets := make(map[string][]model.RecipeSummary)
	for _, recipe := range recipes {
		buckets[recipe.Category] = append(buckets[recipe.Category], recipe)
	}

	queues := make(map[string]*recipeQueue, len(MealTypes))
	for _, mealType := range MealTypes {
		bucket := buckets[mealType]
		if len(bucket) == 0 {
			return nil, &InsufficientCategoryRecipesError{Category: mealType}
		}
		queues[mealType] = newRecipeQueue(bucket, g.rng)
	}

	plan := &WeeklyPlan{Days: make([]DayPlan, 0, len(WeekDays))}
	for _, day := range WeekDays {
		dayPlan := DayPlan{Day: day, Meals: make([]MealAssignment, 0, len(MealTypes))}
		for _, mealType := range MealTypes {
			dayPlan.Meals = append(dayPlan.Meals, MealAssignment{
				MealType: mealType,
				Recipe:   queues[mealType].next(),
			})
		}
		plan.Days = append(plan.Days, dayPlan)
	}
	return plan, nil
}

// recipeQueue hands out a category bucket in random order, one cycle at a time.
type recipeQueue struct {
	rng     *rand.Rand
	bucket  []model.RecipeSummary
	pending []model.RecipeSummary
}

func newRecipeQueue(bucket []model.RecipeSummary, rng *rand.Rand) *recipeQueue {
	q := &recipeQueue{rng: rng, bucket: bucket}
	q.refill()
	return q
}

func (q *recipeQueue) refill() {
	q.pending = append(q.pending[:0], q.bucket...)
	q.rng.Shuffle(len(q.pending), func(i, j int) {
		q.pending[i], q.pending[j] = q.pending[j], q.pending[i]
	})
}

func (q *recipeQueue) next() model.RecipeSummary {
	if len(q.pending) == 0 {
		q.refill()
	}
	last := len(q.pending) - 1
	recipe := q.pending[last]
	q.pending = q.pending[:last]
	return recipe
}
