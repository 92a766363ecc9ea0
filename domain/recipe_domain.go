package domain

import (
	"errors"
	"mime/multipart"
	"time"
)

// DefaultGroupName is the group every recipe carries; it is the only group
// allowed to be empty.
const DefaultGroupName = "Default"

var (
	MessageSuccessCreateRecipe = "recipe created successfully"
	MessageSuccessGetRecipe    = "success get recipe detail"
	MessageSuccessGetRecipes   = "success get recipes"
	MessageSuccessDeleteRecipe = "recipe deleted successfully"

	MessageFailedCreateRecipe = "failed to create recipe"
	MessageFailedGetRecipe    = "failed to get recipe detail"
	MessageFailedGetRecipes   = "failed to get recipes"
	MessageFailedDeleteRecipe = "failed to delete recipe"

	ErrMissingTitle        = errors.New("recipe title is required")
	ErrUnknownCategory     = errors.New("unknown recipe category")
	ErrMissingImage        = errors.New("recipe main image is required")
	ErrEmptyGroup          = errors.New("ingredient group has no ingredients")
	ErrNoIngredients       = errors.New("recipe has no ingredients")
	ErrInvalidStepSequence = errors.New("instruction steps must be numbered 1..N without gaps")
	ErrEmptyTagSet         = errors.New("recipe must carry at least one tag")
	ErrRecipeNotFound      = errors.New("recipe not found")
	ErrStorageUnavailable  = errors.New("image storage unavailable")
)

type (
	IngredientEntry struct {
		Name   string `json:"name" validate:"required"`
		Amount string `json:"amount"`
	}

	InstructionStepRequest struct {
		Step int    `json:"step" validate:"required,min=1"`
		Text string `json:"text" validate:"required"`
	}

	// CreateRecipeRequest is the JSON part of the multipart submission; the
	// main image and per-step images arrive as separate form files.
	CreateRecipeRequest struct {
		Title                  string                       `json:"title" validate:"required"`
		Category               string                       `json:"category" validate:"required"`
		AdditionalInstructions string                       `json:"additional_instructions"`
		Groups                 map[string][]IngredientEntry `json:"groups" validate:"required"`
		Steps                  []InstructionStepRequest     `json:"steps" validate:"required,dive"`
		Tags                   []string                     `json:"tags" validate:"required"`
	}

	CreateRecipeSubmission struct {
		CreateRecipeRequest
		MainImage *multipart.FileHeader
		// StepImages is keyed by step number.
		StepImages map[int]*multipart.FileHeader
	}

	CreateRecipeResponse struct {
		RecipeID string `json:"recipe_id"`
	}

	InstructionView struct {
		Step  int    `json:"step"`
		Text  string `json:"text"`
		Image string `json:"image,omitempty"`
	}

	RecipeView struct {
		ID                     string                       `json:"id"`
		Title                  string                       `json:"title"`
		Category               string                       `json:"category"`
		Author                 string                       `json:"author"`
		MainImage              string                       `json:"main_image"`
		Groups                 map[string][]IngredientEntry `json:"groups"`
		Instructions           []InstructionView            `json:"instructions"`
		Tags                   []string                     `json:"tags"`
		AdditionalInstructions string                       `json:"additional_instructions,omitempty"`
		Bookmarks              int64                        `json:"bookmarks"`
		Stars                  float64                      `json:"stars"`
		CreatedAt              time.Time                    `json:"created_at"`
	}

	RecipeSummary struct {
		ID        string    `json:"id"`
		Title     string    `json:"title"`
		Category  string    `json:"category"`
		Author    string    `json:"author"`
		MainImage string    `json:"main_image"`
		CreatedAt time.Time `json:"created_at"`
	}
)
