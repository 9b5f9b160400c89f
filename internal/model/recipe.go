package model

import "time"

// Recipe is a single dish in the catalog.
type Recipe struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"not null"`
	PrepTime     int    // minutes
	CookTime     int    // minutes
	Servings     int
	Instructions string `gorm:"type:text"`
	CategoryID   uint   `gorm:"index"`
	Category     Category
	UserID       uint `gorm:"index"`
	User         User
	Ingredients  []RecipeIngredient `gorm:"foreignKey:RecipeID"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RecipeSummary is the projection the meal plan generator works on.
type RecipeSummary struct {
	ID       uint
	Name     string
	Category string
}
