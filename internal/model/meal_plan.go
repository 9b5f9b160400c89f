package model

import (
	"time"

	"gorm.io/datatypes"
)

// MealPlan is the header of a generated week of meals.
type MealPlan struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"index"`
	User      User
	StartDate datatypes.Date
	EndDate   datatypes.Date
	CreatedAt time.Time        `gorm:"index"`
	Recipes   []MealPlanRecipe `gorm:"foreignKey:PlanID"`
}

// MealPlanRecipe assigns one recipe to a (day, meal type) slot of a plan.
type MealPlanRecipe struct {
	ID        uint `gorm:"primaryKey"`
	PlanID    uint `gorm:"index"`
	RecipeID  uint `gorm:"index"`
	Recipe    Recipe
	Day       string
	DayIndex  int
	MealType  string
	MealIndex int
}
