package recipe

import (
	"RecipeBox-Backend/domain"
	"RecipeBox-Backend/entities"
	"RecipeBox-Backend/internal/utils/storage"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type createCall struct {
	recipe *entities.Recipe
	groups []GroupWrite
	steps  []StepWrite
	tags   []string
}

type fakeRecipeRepository struct {
	createErr error
	created   *createCall

	graph    *RecipeGraph
	graphErr error

	deleted   []string
	deleteErr error
}

func (f *fakeRecipeRepository) CreateRecipeGraph(_ context.Context, recipe *entities.Recipe, groups []GroupWrite, steps []StepWrite, tags []string) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = &createCall{recipe: recipe, groups: groups, steps: steps, tags: tags}
	return nil
}

func (f *fakeRecipeRepository) GetRecipeGraph(_ context.Context, _ string) (*RecipeGraph, error) {
	if f.graphErr != nil {
		return nil, f.graphErr
	}
	return f.graph, nil
}

func (f *fakeRecipeRepository) GetRecipes(_ context.Context, _, _ int) ([]*entities.Recipe, int64, error) {
	return nil, 0, nil
}

func (f *fakeRecipeRepository) DeleteRecipeGraph(_ context.Context, recipeID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, recipeID)
	return nil
}

type fakeCategoryRepository struct {
	known map[string]*entities.Category
}

func (f *fakeCategoryRepository) GetCategoryByName(_ context.Context, name string) (*entities.Category, error) {
	if category, ok := f.known[name]; ok {
		return category, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCategoryRepository) GetCategories(_ context.Context) ([]*entities.Category, error) {
	return nil, nil
}

type fakeS3 struct {
	uploads []string
	deletes []string
}

func (f *fakeS3) UploadFile(fileName string, _ *multipart.FileHeader, dir string, _ ...string) (string, error) {
	key := fmt.Sprintf("%s/%s.jpg", dir, fileName)
	f.uploads = append(f.uploads, key)
	return key, nil
}

func (f *fakeS3) UpdateFile(objectKey string, _ *multipart.FileHeader, _ ...string) (string, error) {
	return objectKey, nil
}

func (f *fakeS3) DeleteFile(objectKey string) error {
	f.deletes = append(f.deletes, objectKey)
	return nil
}

func (f *fakeS3) GetPublicLinkKey(objectKey string) string {
	return "https://cdn.test/" + objectKey
}

func (f *fakeS3) GetObjectKeyFromLink(link string) string {
	const prefix = "https://cdn.test/"
	if len(link) <= len(prefix) || link[:len(prefix)] != prefix {
		return ""
	}
	return link[len(prefix):]
}

type fakeMetrics struct {
	bookmarks    int64
	bookmarksErr error
	stars        float64
	starsErr     error
}

func (f *fakeMetrics) CountBookmarks(_ context.Context, _ string) (int64, error) {
	return f.bookmarks, f.bookmarksErr
}

func (f *fakeMetrics) AverageStars(_ context.Context, _ string) (float64, error) {
	return f.stars, f.starsErr
}

func imageFile(name string) *multipart.FileHeader {
	return &multipart.FileHeader{
		Filename: name,
		Header:   textproto.MIMEHeader{"Content-Type": []string{"image/jpeg"}},
	}
}

func validSubmission() domain.CreateRecipeSubmission {
	return domain.CreateRecipeSubmission{
		CreateRecipeRequest: domain.CreateRecipeRequest{
			Title:    "Chocolate Cake",
			Category: "Dessert",
			Groups: map[string][]domain.IngredientEntry{
				"Default": {
					{Name: "Flour", Amount: "200g"},
					{Name: "Sugar", Amount: "150g"},
				},
				"Frosting": {
					{Name: "Butter", Amount: "100g"},
				},
			},
			Steps: []domain.InstructionStepRequest{
				{Step: 2, Text: "Bake for 40 minutes"},
				{Step: 1, Text: "Mix the dry ingredients"},
			},
			Tags: []string{"Vegan", "vegan", "Baking"},
		},
		MainImage:  imageFile("cake.jpg"),
		StepImages: map[int]*multipart.FileHeader{},
	}
}

func newTestService(repo *fakeRecipeRepository, s3 storage.AwsS3, metrics *fakeMetrics) RecipeService {
	categories := &fakeCategoryRepository{known: map[string]*entities.Category{
		"Dessert": {ID: uuid.New(), Name: "Dessert"},
	}}
	return NewRecipeService(repo, categories, metrics, s3)
}

func TestCreateRecipeValidation(t *testing.T) {
	userID := uuid.New().String()

	tests := []struct {
		name    string
		mutate  func(*domain.CreateRecipeSubmission)
		wantErr error
	}{
		{
			name:    "missing title",
			mutate:  func(s *domain.CreateRecipeSubmission) { s.Title = "   " },
			wantErr: domain.ErrMissingTitle,
		},
		{
			name:    "unknown category",
			mutate:  func(s *domain.CreateRecipeSubmission) { s.Category = "Molecular" },
			wantErr: domain.ErrUnknownCategory,
		},
		{
			name:    "missing main image",
			mutate:  func(s *domain.CreateRecipeSubmission) { s.MainImage = nil },
			wantErr: domain.ErrMissingImage,
		},
		{
			name: "empty non-default group",
			mutate: func(s *domain.CreateRecipeSubmission) {
				s.Groups["Sauce"] = []domain.IngredientEntry{}
			},
			wantErr: domain.ErrEmptyGroup,
		},
		{
			name: "no ingredients at all",
			mutate: func(s *domain.CreateRecipeSubmission) {
				s.Groups = map[string][]domain.IngredientEntry{"Default": {}}
			},
			wantErr: domain.ErrNoIngredients,
		},
		{
			name: "step sequence with a gap",
			mutate: func(s *domain.CreateRecipeSubmission) {
				s.Steps = []domain.InstructionStepRequest{
					{Step: 1, Text: "Mix"},
					{Step: 3, Text: "Bake"},
				}
			},
			wantErr: domain.ErrInvalidStepSequence,
		},
		{
			name: "duplicate step numbers",
			mutate: func(s *domain.CreateRecipeSubmission) {
				s.Steps = []domain.InstructionStepRequest{
					{Step: 1, Text: "Mix"},
					{Step: 1, Text: "Bake"},
				}
			},
			wantErr: domain.ErrInvalidStepSequence,
		},
		{
			name:    "empty tag set",
			mutate:  func(s *domain.CreateRecipeSubmission) { s.Tags = []string{"  ", ""} },
			wantErr: domain.ErrEmptyTagSet,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRecipeRepository{}
			s3 := &fakeS3{}
			service := newTestService(repo, s3, &fakeMetrics{})

			submission := validSubmission()
			tt.mutate(&submission)

			_, err := service.CreateRecipe(context.Background(), submission, userID)
			require.ErrorIs(t, err, tt.wantErr)

			// Validation failures must leave no trace.
			assert.Nil(t, repo.created)
			assert.Empty(t, s3.uploads)
		})
	}
}

func TestCreateRecipePersistsNormalizedGraph(t *testing.T) {
	repo := &fakeRecipeRepository{}
	s3 := &fakeS3{}
	service := newTestService(repo, s3, &fakeMetrics{})

	submission := validSubmission()
	submission.StepImages[2] = imageFile("bake.jpg")

	res, err := service.CreateRecipe(context.Background(), submission, uuid.New().String())
	require.NoError(t, err)
	require.NotNil(t, repo.created)
	assert.Equal(t, repo.created.recipe.ID.String(), res.RecipeID)

	// Main image plus one step image were uploaded.
	require.Len(t, s3.uploads, 2)
	assert.Empty(t, s3.deletes)
	assert.Equal(t, "https://cdn.test/"+s3.uploads[0], repo.created.recipe.ImageURL)

	// Tags deduped case-insensitively and normalized.
	assert.Equal(t, []string{"vegan", "baking"}, repo.created.tags)

	// Steps arrive ordered 1..N with the image reference on step 2.
	require.Len(t, repo.created.steps, 2)
	assert.Equal(t, 1, repo.created.steps[0].Step)
	assert.Empty(t, repo.created.steps[0].ImageURL)
	assert.Equal(t, 2, repo.created.steps[1].Step)
	assert.Equal(t, "https://cdn.test/"+s3.uploads[1], repo.created.steps[1].ImageURL)

	// Both submitted groups arrive.
	names := make([]string, 0, len(repo.created.groups))
	for _, group := range repo.created.groups {
		names = append(names, group.Name)
	}
	assert.ElementsMatch(t, []string{"Default", "Frosting"}, names)
}

func TestCreateRecipeAddsDefaultGroupWhenAbsent(t *testing.T) {
	repo := &fakeRecipeRepository{}
	s3 := &fakeS3{}
	service := newTestService(repo, s3, &fakeMetrics{})

	submission := validSubmission()
	submission.Groups = map[string][]domain.IngredientEntry{
		"Sauce": {{Name: "Tomato", Amount: "3"}},
	}

	_, err := service.CreateRecipe(context.Background(), submission, uuid.New().String())
	require.NoError(t, err)

	names := make([]string, 0, len(repo.created.groups))
	for _, group := range repo.created.groups {
		names = append(names, group.Name)
	}
	assert.ElementsMatch(t, []string{domain.DefaultGroupName, "Sauce"}, names)
}

func TestCreateRecipeRollsBackUploadsOnRepositoryFailure(t *testing.T) {
	repo := &fakeRecipeRepository{createErr: errors.New("deadlock detected")}
	s3 := &fakeS3{}
	service := newTestService(repo, s3, &fakeMetrics{})

	submission := validSubmission()
	submission.StepImages[1] = imageFile("mix.jpg")

	_, err := service.CreateRecipe(context.Background(), submission, uuid.New().String())
	require.Error(t, err)

	// Every uploaded object was deleted again.
	assert.ElementsMatch(t, s3.uploads, s3.deletes)
	assert.Len(t, s3.deletes, 2)
}

func TestCreateRecipeStepImageUploadFailure(t *testing.T) {
	repo := &fakeRecipeRepository{}
	s3 := &fakeS3{}
	// Object names are derived from the recipe id inside the service, so
	// the fake fails every step image upload instead of one exact name.
	failing := &stepFailingS3{fakeS3: s3}
	service := newTestService(repo, failing, &fakeMetrics{})

	submission := validSubmission()
	submission.StepImages[2] = imageFile("bake.jpg")

	_, err := service.CreateRecipe(context.Background(), submission, uuid.New().String())
	require.ErrorIs(t, err, domain.ErrStorageUnavailable)

	// The already-uploaded main image was released, nothing reached the store.
	assert.Nil(t, repo.created)
	assert.ElementsMatch(t, s3.uploads, s3.deletes)
	assert.Len(t, s3.uploads, 1)
}

// stepFailingS3 fails any upload whose object name refers to a step image.
type stepFailingS3 struct {
	*fakeS3
}

func (f *stepFailingS3) UploadFile(fileName string, file *multipart.FileHeader, dir string, allowedTypes ...string) (string, error) {
	if strings.Contains(fileName, "step") {
		return "", errors.New("connection reset by peer")
	}
	return f.fakeS3.UploadFile(fileName, file, dir, allowedTypes...)
}

func TestGetRecipeAssemblesView(t *testing.T) {
	recipeID := uuid.New()
	graph := &RecipeGraph{
		Recipe: &entities.Recipe{
			ID:                     recipeID,
			UserID:                 uuid.New(),
			Title:                  "Chocolate Cake",
			ImageURL:               "https://cdn.test/recipes/cake.jpg",
			AdditionalInstructions: "Serve chilled",
			User:                   &entities.User{Name: "Ana"},
			Category:               &entities.Category{Name: "Dessert"},
			Timestamp:              entities.Timestamp{CreatedAt: time.Now()},
		},
		Groups: map[string][]domain.IngredientEntry{
			"Default": {{Name: "flour", Amount: "200g"}},
		},
		Instructions: []entities.Instruction{
			{Step: 1, Description: "Mix"},
			{Step: 2, Description: "Bake", ImageURL: "https://cdn.test/recipes/bake.jpg"},
		},
		Tags: []string{"vegan"},
	}

	repo := &fakeRecipeRepository{graph: graph}
	service := newTestService(repo, &fakeS3{}, &fakeMetrics{bookmarks: 7, stars: 4.5})

	view, err := service.GetRecipe(context.Background(), recipeID.String())
	require.NoError(t, err)

	assert.Equal(t, "Chocolate Cake", view.Title)
	assert.Equal(t, "Dessert", view.Category)
	assert.Equal(t, "Ana", view.Author)
	assert.Equal(t, []string{"vegan"}, view.Tags)
	assert.Equal(t, "Serve chilled", view.AdditionalInstructions)
	assert.Equal(t, int64(7), view.Bookmarks)
	assert.Equal(t, 4.5, view.Stars)

	require.Len(t, view.Instructions, 2)
	assert.Equal(t, 1, view.Instructions[0].Step)
	assert.Equal(t, "https://cdn.test/recipes/bake.jpg", view.Instructions[1].Image)
	assert.Contains(t, view.Groups, domain.DefaultGroupName)
}

func TestGetRecipeMetricsFailureDegrades(t *testing.T) {
	graph := &RecipeGraph{
		Recipe: &entities.Recipe{ID: uuid.New()},
		Groups: map[string][]domain.IngredientEntry{"Default": {}},
	}
	repo := &fakeRecipeRepository{graph: graph}
	metrics := &fakeMetrics{bookmarksErr: errors.New("timeout"), starsErr: errors.New("timeout")}
	service := newTestService(repo, &fakeS3{}, metrics)

	view, err := service.GetRecipe(context.Background(), graph.Recipe.ID.String())
	require.NoError(t, err)
	assert.Zero(t, view.Bookmarks)
	assert.Zero(t, view.Stars)
}

func TestGetRecipeNotFound(t *testing.T) {
	repo := &fakeRecipeRepository{graphErr: gorm.ErrRecordNotFound}
	service := newTestService(repo, &fakeS3{}, &fakeMetrics{})

	_, err := service.GetRecipe(context.Background(), uuid.New().String())
	require.ErrorIs(t, err, domain.ErrRecipeNotFound)
}

func TestGetRecipeMalformedID(t *testing.T) {
	// A non-uuid id must not reach the store as an invalid cast.
	service := newTestService(&fakeRecipeRepository{}, &fakeS3{}, &fakeMetrics{})

	_, err := service.GetRecipe(context.Background(), "not-a-uuid")
	require.ErrorIs(t, err, domain.ErrRecipeNotFound)
}

func TestDeleteRecipeReleasesImagesAndRows(t *testing.T) {
	owner := uuid.New()
	graph := &RecipeGraph{
		Recipe: &entities.Recipe{
			ID:       uuid.New(),
			UserID:   owner,
			ImageURL: "https://cdn.test/recipes/cake.jpg",
		},
		Instructions: []entities.Instruction{
			{Step: 1, Description: "Mix"},
			{Step: 2, Description: "Bake", ImageURL: "https://cdn.test/recipes/bake.jpg"},
		},
	}
	repo := &fakeRecipeRepository{graph: graph}
	s3 := &fakeS3{}
	service := newTestService(repo, s3, &fakeMetrics{})

	err := service.DeleteRecipe(context.Background(), graph.Recipe.ID.String(), owner.String())
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"recipes/cake.jpg", "recipes/bake.jpg"}, s3.deletes)
	assert.Equal(t, []string{graph.Recipe.ID.String()}, repo.deleted)
}

func TestDeleteRecipeNotOwner(t *testing.T) {
	graph := &RecipeGraph{
		Recipe: &entities.Recipe{ID: uuid.New(), UserID: uuid.New()},
	}
	repo := &fakeRecipeRepository{graph: graph}
	s3 := &fakeS3{}
	service := newTestService(repo, s3, &fakeMetrics{})

	err := service.DeleteRecipe(context.Background(), graph.Recipe.ID.String(), uuid.New().String())
	require.ErrorIs(t, err, domain.ErrUserNotAllowed)
	assert.Empty(t, s3.deletes)
	assert.Empty(t, repo.deleted)
}

func TestDeleteRecipeNotFound(t *testing.T) {
	repo := &fakeRecipeRepository{graphErr: gorm.ErrRecordNotFound}
	service := newTestService(repo, &fakeS3{}, &fakeMetrics{})

	err := service.DeleteRecipe(context.Background(), uuid.New().String(), uuid.New().String())
	require.ErrorIs(t, err, domain.ErrRecipeNotFound)
}

func TestDeleteRecipeMalformedID(t *testing.T) {
	repo := &fakeRecipeRepository{}
	service := newTestService(repo, &fakeS3{}, &fakeMetrics{})

	err := service.DeleteRecipe(context.Background(), "not-a-uuid", uuid.New().String())
	require.ErrorIs(t, err, domain.ErrRecipeNotFound)
	assert.Empty(t, repo.deleted)
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "vegan", NormalizeName("  Vegan "))
	assert.Equal(t, "brown sugar", NormalizeName("Brown Sugar"))
	assert.Equal(t, "", NormalizeName("   "))
}

func TestOrderSteps(t *testing.T) {
	ordered, err := orderSteps([]domain.InstructionStepRequest{
		{Step: 3, Text: "c"},
		{Step: 1, Text: "a"},
		{Step: 2, Text: "b"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, []string{ordered[0].Text, ordered[1].Text, ordered[2].Text})

	_, err = orderSteps([]domain.InstructionStepRequest{{Step: 2, Text: "b"}})
	require.ErrorIs(t, err, domain.ErrInvalidStepSequence)

	_, err = orderSteps([]domain.InstructionStepRequest{{Step: 0, Text: "z"}, {Step: 1, Text: "a"}})
	require.ErrorIs(t, err, domain.ErrInvalidStepSequence)
}
