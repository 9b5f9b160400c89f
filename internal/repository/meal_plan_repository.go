package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"meal-planner/internal/model"
)

// MealPlanRepository persists meal plan headers together with their slot links.
type MealPlanRepository struct {
	db *gorm.DB
}

func NewMealPlanRepository(db *gorm.DB) *MealPlanRepository {
	return &MealPlanRepository{db: db}
}

// Create inserts the plan header and one link per slot in a single transaction.
// On failure nothing is written and plan.ID is left at zero.
func (r *MealPlanRepository) Create(ctx context.Context, plan *model.MealPlan) error {
	links := plan.Recipes
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(plan).Error; err != nil {
			return fmt.Errorf("create meal plan: %w", err)
		}
		for i := range links {
			links[i].PlanID = plan.ID
		}
		if len(links) > 0 {
			if err := tx.Omit(clause.Associations).Create(&links).Error; err != nil {
				return fmt.Errorf("create meal plan recipes: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		plan.ID = 0
		for i := range links {
			links[i].ID = 0
			links[i].PlanID = 0
		}
		return err
	}
	plan.Recipes = links
	return nil
}

// List returns every plan, newest first, with slots in day and meal order.
func (r *MealPlanRepository) List(ctx context.Context) ([]model.MealPlan, error) {
	var plans []model.MealPlan
	if err := r.withSlots(r.db.WithContext(ctx)).
		Order("created_at DESC, id DESC").
		Find(&plans).Error; err != nil {
		return nil, fmt.Errorf("list meal plans: %w", err)
	}
	return plans, nil
}

func (r *MealPlanRepository) FindByID(ctx context.Context, id uint) (*model.MealPlan, error) {
	var plan model.MealPlan
	if err := r.withSlots(r.db.WithContext(ctx)).First(&plan, id).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

// Delete removes the plan's links and then the header as one unit.
// It reports whether the plan existed.
func (r *MealPlanRepository) Delete(ctx context.Context, id uint) (bool, error) {
	var found bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("plan_id = ?", id).Delete(&model.MealPlanRecipe{}).Error; err != nil {
			return fmt.Errorf("delete meal plan recipes: %w", err)
		}
		res := tx.Delete(&model.MealPlan{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete meal plan: %w", res.Error)
		}
		found = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

func (r *MealPlanRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.MealPlan{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *MealPlanRepository) withSlots(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Recipes", func(db *gorm.DB) *gorm.DB { return db.Order("day_index ASC, meal_index ASC") }).
		Preload("Recipes.Recipe.Category")
}
