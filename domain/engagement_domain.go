package domain

import (
	"errors"
)

var (
	MessageSuccessBookmark       = "recipe bookmarked successfully"
	MessageSuccessRemoveBookmark = "bookmark removed successfully"
	MessageSuccessRateRecipe     = "recipe rated successfully"

	MessageFailedBookmark       = "failed to bookmark recipe"
	MessageFailedRemoveBookmark = "failed to remove bookmark"
	MessageFailedRateRecipe     = "failed to rate recipe"

	ErrInvalidStars = errors.New("stars must be between 1 and 5")
)

type (
	BookmarkRecipeRequest struct {
		RecipeID string `json:"recipe_id" validate:"required,uuid"`
	}

	RateRecipeRequest struct {
		RecipeID string `json:"recipe_id" validate:"required,uuid"`
		Stars    int    `json:"stars" validate:"required,min=1,max=5"`
	}

	RecipeMetrics struct {
		Bookmarks int64   `json:"bookmarks"`
		Stars     float64 `json:"stars"`
	}
)
