package recipe

import (
	"RecipeBox-Backend/domain"
	"RecipeBox-Backend/entities"
	"RecipeBox-Backend/internal/utils/storage"
	"RecipeBox-Backend/pkg/category"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	RecipeService interface {
		CreateRecipe(ctx context.Context, req domain.CreateRecipeSubmission, userID string) (domain.CreateRecipeResponse, error)
		GetRecipe(ctx context.Context, recipeID string) (domain.RecipeView, error)
		GetRecipes(ctx context.Context, page, limit int) ([]domain.RecipeSummary, int64, error)
		DeleteRecipe(ctx context.Context, recipeID string, userID string) error
	}

	// MetricsProvider supplies the read-only engagement numbers merged into
	// the recipe view.
	MetricsProvider interface {
		CountBookmarks(ctx context.Context, recipeID string) (int64, error)
		AverageStars(ctx context.Context, recipeID string) (float64, error)
	}

	recipeService struct {
		recipeRepository   RecipeRepository
		categoryRepository category.CategoryRepository
		metrics            MetricsProvider
		s3                 storage.AwsS3
	}
)

func NewRecipeService(recipeRepository RecipeRepository, categoryRepository category.CategoryRepository, metrics MetricsProvider, s3 storage.AwsS3) RecipeService {
	return &recipeService{
		recipeRepository:   recipeRepository,
		categoryRepository: categoryRepository,
		metrics:            metrics,
		s3:                 s3,
	}
}

// CreateRecipe validates the submission, uploads its images, and persists
// the whole recipe graph in one transaction. If the transaction fails every
// object uploaded for it is deleted again, so a failed submission leaves
// neither rows nor stored images behind.
func (s *recipeService) CreateRecipe(ctx context.Context, req domain.CreateRecipeSubmission, userID string) (domain.CreateRecipeResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.CreateRecipeResponse{}, domain.ErrParseUUID
	}

	if strings.TrimSpace(req.Title) == "" {
		return domain.CreateRecipeResponse{}, domain.ErrMissingTitle
	}

	categoryRow, err := s.categoryRepository.GetCategoryByName(ctx, req.Category)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.CreateRecipeResponse{}, domain.ErrUnknownCategory
		}
		return domain.CreateRecipeResponse{}, err
	}

	if req.MainImage == nil {
		return domain.CreateRecipeResponse{}, domain.ErrMissingImage
	}

	groups, err := buildGroupWrites(req.Groups)
	if err != nil {
		return domain.CreateRecipeResponse{}, err
	}

	steps, err := orderSteps(req.Steps)
	if err != nil {
		return domain.CreateRecipeResponse{}, err
	}

	tags := dedupeTags(req.Tags)
	if len(tags) == 0 {
		return domain.CreateRecipeResponse{}, domain.ErrEmptyTagSet
	}

	recipeID := uuid.New()
	var uploadedKeys []string

	mainKey, err := s.s3.UploadFile(
		fmt.Sprintf("recipe-%s", recipeID.String()),
		req.MainImage,
		"recipes",
		storage.AllowImage...,
	)
	if err != nil {
		return domain.CreateRecipeResponse{}, storageFailure(err)
	}
	uploadedKeys = append(uploadedKeys, mainKey)

	stepWrites := make([]StepWrite, 0, len(steps))
	for _, step := range steps {
		write := StepWrite{Step: step.Step, Text: step.Text}
		if image := req.StepImages[step.Step]; image != nil {
			key, uploadErr := s.s3.UploadFile(
				fmt.Sprintf("recipe-%s-step-%d", recipeID.String(), step.Step),
				image,
				"recipes",
				storage.AllowImage...,
			)
			if uploadErr != nil {
				s.releaseUploads(uploadedKeys)
				return domain.CreateRecipeResponse{}, storageFailure(uploadErr)
			}
			uploadedKeys = append(uploadedKeys, key)
			write.ImageURL = s.s3.GetPublicLinkKey(key)
		}
		stepWrites = append(stepWrites, write)
	}

	recipe := &entities.Recipe{
		ID:                     recipeID,
		UserID:                 userUUID,
		Title:                  strings.TrimSpace(req.Title),
		CategoryID:             categoryRow.ID,
		ImageURL:               s.s3.GetPublicLinkKey(mainKey),
		AdditionalInstructions: req.AdditionalInstructions,
	}

	if err := s.recipeRepository.CreateRecipeGraph(ctx, recipe, groups, stepWrites, tags); err != nil {
		s.releaseUploads(uploadedKeys)
		return domain.CreateRecipeResponse{}, err
	}

	return domain.CreateRecipeResponse{RecipeID: recipeID.String()}, nil
}

func (s *recipeService) GetRecipe(ctx context.Context, recipeID string) (domain.RecipeView, error) {
	if _, err := uuid.Parse(recipeID); err != nil {
		return domain.RecipeView{}, domain.ErrRecipeNotFound
	}

	graph, err := s.recipeRepository.GetRecipeGraph(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeView{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeView{}, err
	}

	instructions := make([]domain.InstructionView, 0, len(graph.Instructions))
	for _, instruction := range graph.Instructions {
		instructions = append(instructions, domain.InstructionView{
			Step:  instruction.Step,
			Text:  instruction.Description,
			Image: instruction.ImageURL,
		})
	}

	view := domain.RecipeView{
		ID:                     graph.Recipe.ID.String(),
		Title:                  graph.Recipe.Title,
		MainImage:              graph.Recipe.ImageURL,
		Groups:                 graph.Groups,
		Instructions:           instructions,
		Tags:                   graph.Tags,
		AdditionalInstructions: graph.Recipe.AdditionalInstructions,
		CreatedAt:              graph.Recipe.CreatedAt,
	}
	if graph.Recipe.Category != nil {
		view.Category = graph.Recipe.Category.Name
	}
	if graph.Recipe.User != nil {
		view.Author = graph.Recipe.User.Name
	}

	// Missing metrics degrade the view, they do not fail the read.
	if bookmarks, err := s.metrics.CountBookmarks(ctx, recipeID); err != nil {
		log.Errorf("failed to count bookmarks for recipe %s: %v", recipeID, err)
	} else {
		view.Bookmarks = bookmarks
	}
	if stars, err := s.metrics.AverageStars(ctx, recipeID); err != nil {
		log.Errorf("failed to average stars for recipe %s: %v", recipeID, err)
	} else {
		view.Stars = stars
	}

	return view, nil
}

func (s *recipeService) GetRecipes(ctx context.Context, page, limit int) ([]domain.RecipeSummary, int64, error) {
	recipes, count, err := s.recipeRepository.GetRecipes(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	result := make([]domain.RecipeSummary, 0, len(recipes))
	for _, recipe := range recipes {
		summary := domain.RecipeSummary{
			ID:        recipe.ID.String(),
			Title:     recipe.Title,
			MainImage: recipe.ImageURL,
			CreatedAt: recipe.CreatedAt,
		}
		if recipe.Category != nil {
			summary.Category = recipe.Category.Name
		}
		if recipe.User != nil {
			summary.Author = recipe.User.Name
		}
		result = append(result, summary)
	}

	return result, count, nil
}

// DeleteRecipe releases stored images best-effort, then removes all rows in
// one transaction. A failed image delete is logged and does not block the
// row deletion: an orphaned object is recoverable, an orphaned row is not.
func (s *recipeService) DeleteRecipe(ctx context.Context, recipeID string, userID string) error {
	if _, err := uuid.Parse(recipeID); err != nil {
		return domain.ErrRecipeNotFound
	}

	graph, err := s.recipeRepository.GetRecipeGraph(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFound
		}
		return err
	}

	if graph.Recipe.UserID.String() != userID {
		return domain.ErrUserNotAllowed
	}

	s.releaseImage(graph.Recipe.ImageURL)
	for _, instruction := range graph.Instructions {
		if instruction.ImageURL != "" {
			s.releaseImage(instruction.ImageURL)
		}
	}

	if err := s.recipeRepository.DeleteRecipeGraph(ctx, recipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFound
		}
		return err
	}
	return nil
}

func (s *recipeService) releaseImage(link string) {
	objectKey := s.s3.GetObjectKeyFromLink(link)
	if objectKey == "" {
		return
	}
	if err := s.s3.DeleteFile(objectKey); err != nil {
		log.Errorf("failed to delete stored image %s: %v", objectKey, err)
	}
}

func (s *recipeService) releaseUploads(objectKeys []string) {
	for _, objectKey := range objectKeys {
		if err := s.s3.DeleteFile(objectKey); err != nil {
			log.Errorf("failed to delete uploaded image %s after rollback: %v", objectKey, err)
		}
	}
}

func storageFailure(err error) error {
	if errors.Is(err, storage.ErrFileTypeNotAllowed) {
		return err
	}
	log.Errorf("image upload failed: %v", err)
	return domain.ErrStorageUnavailable
}

func buildGroupWrites(groups map[string][]domain.IngredientEntry) ([]GroupWrite, error) {
	totalIngredients := 0
	for name, items := range groups {
		if name != domain.DefaultGroupName && len(items) == 0 {
			return nil, domain.ErrEmptyGroup
		}
		totalIngredients += len(items)
	}
	if totalIngredients == 0 {
		return nil, domain.ErrNoIngredients
	}

	writes := make([]GroupWrite, 0, len(groups)+1)
	if _, ok := groups[domain.DefaultGroupName]; !ok {
		writes = append(writes, GroupWrite{Name: domain.DefaultGroupName})
	}
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		writes = append(writes, GroupWrite{Name: name, Items: groups[name]})
	}
	return writes, nil
}

// orderSteps returns the steps sorted ascending, rejecting any sequence
// that is not exactly 1..N.
func orderSteps(steps []domain.InstructionStepRequest) ([]domain.InstructionStepRequest, error) {
	ordered := make([]domain.InstructionStepRequest, len(steps))
	copy(ordered, steps)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Step < ordered[j].Step })

	for i, step := range ordered {
		if step.Step != i+1 {
			return nil, domain.ErrInvalidStepSequence
		}
	}
	return ordered, nil
}

func dedupeTags(tags []string) []string {
	unique := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		normalized := NormalizeName(tag)
		if normalized == "" || seen[normalized] {
			continue
		}
		seen[normalized] = true
		unique = append(unique, normalized)
	}
	return unique
}
