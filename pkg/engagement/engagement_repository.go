package engagement

import (
	"RecipeBox-Backend/entities"
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type (
	EngagementRepository interface {
		BookmarkRecipe(ctx context.Context, userID, recipeID string) error
		RemoveBookmark(ctx context.Context, userID, recipeID string) error
		CountBookmarks(ctx context.Context, recipeID string) (int64, error)
		RateRecipe(ctx context.Context, userID, recipeID string, stars int) error
		AverageStars(ctx context.Context, recipeID string) (float64, error)
	}

	engagementRepository struct {
		db *gorm.DB
	}
)

func NewEngagementRepository(db *gorm.DB) EngagementRepository {
	return &engagementRepository{db: db}
}

func (r *engagementRepository) BookmarkRecipe(ctx context.Context, userID, recipeID string) error {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return err
	}
	recipeUUID, err := uuid.Parse(recipeID)
	if err != nil {
		return err
	}

	// Bookmarking twice is a no-op.
	var existing entities.RecipeBookmark
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userUUID, recipeUUID).
		First(&existing).Error; err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	bookmark := entities.RecipeBookmark{
		ID:        uuid.New(),
		UserID:    userUUID,
		RecipeID:  recipeUUID,
		CreatedAt: time.Now(),
	}
	return r.db.WithContext(ctx).Create(&bookmark).Error
}

func (r *engagementRepository) RemoveBookmark(ctx context.Context, userID, recipeID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&entities.RecipeBookmark{}).Error
}

func (r *engagementRepository) CountBookmarks(ctx context.Context, recipeID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.RecipeBookmark{}).
		Where("recipe_id = ?", recipeID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// RateRecipe is a conflict-aware upsert on (user, recipe): rating again
// replaces the previous rating, and two concurrent first ratings both land
// without a constraint error.
func (r *engagementRepository) RateRecipe(ctx context.Context, userID, recipeID string, stars int) error {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return err
	}
	recipeUUID, err := uuid.Parse(recipeID)
	if err != nil {
		return err
	}

	rating := entities.RecipeRating{
		ID:        uuid.New(),
		UserID:    userUUID,
		RecipeID:  recipeUUID,
		Stars:     stars,
		CreatedAt: time.Now(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "recipe_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"stars": stars}),
	}).Create(&rating).Error
}

func (r *engagementRepository) AverageStars(ctx context.Context, recipeID string) (float64, error) {
	var avg *float64
	if err := r.db.WithContext(ctx).
		Model(&entities.RecipeRating{}).
		Where("recipe_id = ?", recipeID).
		Select("avg(stars)").
		Scan(&avg).Error; err != nil {
		return 0, err
	}
	if avg == nil {
		return 0, nil
	}
	return *avg, nil
}
