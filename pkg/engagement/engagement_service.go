package engagement

import (
	"RecipeBox-Backend/domain"
	"RecipeBox-Backend/pkg/recipe"
	"context"
	"errors"

	"gorm.io/gorm"
)

type (
	EngagementService interface {
		BookmarkRecipe(ctx context.Context, req domain.BookmarkRecipeRequest, userID string) error
		RemoveBookmark(ctx context.Context, req domain.BookmarkRecipeRequest, userID string) error
		RateRecipe(ctx context.Context, req domain.RateRecipeRequest, userID string) error
		GetRecipeMetrics(ctx context.Context, recipeID string) (domain.RecipeMetrics, error)
	}

	engagementService struct {
		engagementRepository EngagementRepository
		recipeRepository     recipe.RecipeRepository
	}
)

func NewEngagementService(engagementRepository EngagementRepository, recipeRepository recipe.RecipeRepository) EngagementService {
	return &engagementService{
		engagementRepository: engagementRepository,
		recipeRepository:     recipeRepository,
	}
}

func (s *engagementService) BookmarkRecipe(ctx context.Context, req domain.BookmarkRecipeRequest, userID string) error {
	if _, err := s.recipeRepository.GetRecipeGraph(ctx, req.RecipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFound
		}
		return err
	}
	return s.engagementRepository.BookmarkRecipe(ctx, userID, req.RecipeID)
}

func (s *engagementService) RemoveBookmark(ctx context.Context, req domain.BookmarkRecipeRequest, userID string) error {
	if _, err := s.recipeRepository.GetRecipeGraph(ctx, req.RecipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFound
		}
		return err
	}
	return s.engagementRepository.RemoveBookmark(ctx, userID, req.RecipeID)
}

func (s *engagementService) RateRecipe(ctx context.Context, req domain.RateRecipeRequest, userID string) error {
	if req.Stars < 1 || req.Stars > 5 {
		return domain.ErrInvalidStars
	}
	if _, err := s.recipeRepository.GetRecipeGraph(ctx, req.RecipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFound
		}
		return err
	}
	return s.engagementRepository.RateRecipe(ctx, userID, req.RecipeID, req.Stars)
}

func (s *engagementService) GetRecipeMetrics(ctx context.Context, recipeID string) (domain.RecipeMetrics, error) {
	bookmarks, err := s.engagementRepository.CountBookmarks(ctx, recipeID)
	if err != nil {
		return domain.RecipeMetrics{}, err
	}
	stars, err := s.engagementRepository.AverageStars(ctx, recipeID)
	if err != nil {
		return domain.RecipeMetrics{}, err
	}
	return domain.RecipeMetrics{Bookmarks: bookmarks, Stars: stars}, nil
}
