package model

// Ingredient is a shoppable item measured in a fixed unit.
type Ingredient struct {
	ID            uint   `gorm:"primaryKey"`
	Name          string `gorm:"not null;index:idx_ingredient_name_unit,unique"`
	UnitOfMeasure string `gorm:"not null;index:idx_ingredient_name_unit,unique"`
}

// RecipeIngredient links an ingredient and its quantity to a recipe.
type RecipeIngredient struct {
	ID           uint `gorm:"primaryKey"`
	RecipeID     uint `gorm:"index"`
	IngredientID uint `gorm:"index"`
	Ingredient   Ingredient
	Quantity     float64
}

// ShoppingItem is one aggregated line of a shopping list.
type ShoppingItem struct {
	Name          string
	UnitOfMeasure string
	TotalQuantity float64
}
