package model

// Default category names. Breakfast, Lunch and Dinner double as meal types.
const (
	CategoryBreakfast = "Breakfast"
	CategoryLunch     = "Lunch"
	CategoryDinner    = "Dinner"
	CategoryAppetizer = "Appetizer"
	CategoryDessert   = "Dessert"
)

// DefaultCategories are seeded into an empty catalog.
var DefaultCategories = []string{
	CategoryBreakfast,
	CategoryLunch,
	CategoryDinner,
	CategoryAppetizer,
	CategoryDessert,
}

// Category groups recipes (breakfast, dessert, etc.).
type Category struct {
	ID      uint     `gorm:"primaryKey"`
	Name    string   `gorm:"uniqueIndex;not null"`
	Recipes []Recipe `gorm:"foreignKey:CategoryID"`
}
