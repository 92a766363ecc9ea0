package recipe

import (
	"RecipeBox-Backend/domain"
	"RecipeBox-Backend/entities"
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type (
	// GroupWrite is one named ingredient group of a submission, already
	// validated by the service.
	GroupWrite struct {
		Name  string
		Items []domain.IngredientEntry
	}

	// StepWrite is one instruction step; ImageURL is already uploaded (or
	// empty for steps without an image).
	StepWrite struct {
		Step     int
		Text     string
		ImageURL string
	}

	// RecipeGraph is the fully joined read-side shape of one recipe.
	RecipeGraph struct {
		Recipe       *entities.Recipe
		Groups       map[string][]domain.IngredientEntry
		Instructions []entities.Instruction
		Tags         []string
	}

	RecipeRepository interface {
		CreateRecipeGraph(ctx context.Context, recipe *entities.Recipe, groups []GroupWrite, steps []StepWrite, tags []string) error
		GetRecipeGraph(ctx context.Context, recipeID string) (*RecipeGraph, error)
		GetRecipes(ctx context.Context, page, limit int) ([]*entities.Recipe, int64, error)
		DeleteRecipeGraph(ctx context.Context, recipeID string) error
	}

	recipeRepository struct {
		db *gorm.DB
	}
)

func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

// NormalizeName is the canonical form shared vocabulary entities (tags,
// ingredients) are stored and deduplicated under.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// CreateRecipeGraph persists the root row and fans out to groups,
// instructions and tags inside one transaction. Nothing is visible to
// readers until the whole graph committed, and any failure rolls back every
// row, including tag/ingredient rows first introduced by this submission.
func (r *recipeRepository) CreateRecipeGraph(ctx context.Context, recipe *entities.Recipe, groups []GroupWrite, steps []StepWrite, tags []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(recipe).Error; err != nil {
			return err
		}
		if err := r.createGroups(tx, recipe.ID, groups); err != nil {
			return err
		}
		if err := r.createInstructions(tx, recipe.ID, steps); err != nil {
			return err
		}
		return r.linkTags(tx, recipe.ID, tags)
	})
}

// resolveTag finds or creates a tag by normalized name. The insert is
// conflict-aware: losing a race against a concurrent first use of the same
// name leaves the other writer's row in place, and the unconditional
// re-read returns whichever row now holds the name.
func (r *recipeRepository) resolveTag(tx *gorm.DB, name string) (uuid.UUID, error) {
	normalized := NormalizeName(name)

	tag := entities.Tag{ID: uuid.New(), Name: normalized}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&tag).Error; err != nil {
		return uuid.Nil, err
	}

	var existing entities.Tag
	if err := tx.Where("name = ?", normalized).First(&existing).Error; err != nil {
		return uuid.Nil, err
	}
	return existing.ID, nil
}

func (r *recipeRepository) resolveIngredient(tx *gorm.DB, name string) (uuid.UUID, error) {
	normalized := NormalizeName(name)

	ingredient := entities.Ingredient{ID: uuid.New(), Name: normalized}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&ingredient).Error; err != nil {
		return uuid.Nil, err
	}

	var existing entities.Ingredient
	if err := tx.Where("name = ?", normalized).First(&existing).Error; err != nil {
		return uuid.Nil, err
	}
	return existing.ID, nil
}

func (r *recipeRepository) createGroups(tx *gorm.DB, recipeID uuid.UUID, groups []GroupWrite) error {
	totalIngredients := 0
	for _, group := range groups {
		if len(group.Items) == 0 && group.Name != domain.DefaultGroupName {
			return domain.ErrEmptyGroup
		}
		totalIngredients += len(group.Items)
	}
	if totalIngredients == 0 {
		return domain.ErrNoIngredients
	}

	for _, group := range groups {
		groupRow := entities.IngredientGroup{
			ID:       uuid.New(),
			RecipeID: recipeID,
			Name:     group.Name,
		}
		if err := tx.Create(&groupRow).Error; err != nil {
			return err
		}

		for _, item := range group.Items {
			ingredientID, err := r.resolveIngredient(tx, item.Name)
			if err != nil {
				return err
			}
			member := entities.RecipeIngredient{
				RecipeID:     recipeID,
				GroupID:      groupRow.ID,
				IngredientID: ingredientID,
				Amount:       item.Amount,
			}
			if err := tx.Create(&member).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *recipeRepository) createInstructions(tx *gorm.DB, recipeID uuid.UUID, steps []StepWrite) error {
	seen := make(map[int]bool, len(steps))
	for _, step := range steps {
		seen[step.Step] = true
	}
	for n := 1; n <= len(steps); n++ {
		if !seen[n] {
			return domain.ErrInvalidStepSequence
		}
	}

	for _, step := range steps {
		instruction := entities.Instruction{
			RecipeID:    recipeID,
			Step:        step.Step,
			Description: step.Text,
			ImageURL:    step.ImageURL,
		}
		if err := tx.Create(&instruction).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *recipeRepository) linkTags(tx *gorm.DB, recipeID uuid.UUID, tags []string) error {
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
	if len(unique) == 0 {
		return domain.ErrEmptyTagSet
	}

	for _, tag := range unique {
		tagID, err := r.resolveTag(tx, tag)
		if err != nil {
			return err
		}
		link := entities.RecipeTag{RecipeID: recipeID, TagID: tagID}
		if err := tx.Create(&link).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *recipeRepository) GetRecipeGraph(ctx context.Context, recipeID string) (*RecipeGraph, error) {
	var recipe entities.Recipe
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Category").
		Where("id = ?", recipeID).
		First(&recipe).Error; err != nil {
		return nil, err
	}

	var groupRows []entities.IngredientGroup
	if err := r.db.WithContext(ctx).
		Where("recipe_id = ?", recipeID).
		Find(&groupRows).Error; err != nil {
		return nil, err
	}

	type memberRow struct {
		GroupID uuid.UUID
		Name    string
		Amount  string
	}
	var members []memberRow
	if err := r.db.WithContext(ctx).
		Table("recipe_ingredients").
		Select("recipe_ingredients.group_id, ingredients.name, recipe_ingredients.amount").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Where("recipe_ingredients.recipe_id = ?", recipeID).
		Scan(&members).Error; err != nil {
		return nil, err
	}

	groups := make(map[string][]domain.IngredientEntry, len(groupRows))
	groupNames := make(map[uuid.UUID]string, len(groupRows))
	for _, row := range groupRows {
		groups[row.Name] = []domain.IngredientEntry{}
		groupNames[row.ID] = row.Name
	}
	// "Default" stays a key even when all of its members are gone.
	if _, ok := groups[domain.DefaultGroupName]; !ok {
		groups[domain.DefaultGroupName] = []domain.IngredientEntry{}
	}
	for _, member := range members {
		name := groupNames[member.GroupID]
		groups[name] = append(groups[name], domain.IngredientEntry{
			Name:   member.Name,
			Amount: member.Amount,
		})
	}

	var instructions []entities.Instruction
	if err := r.db.WithContext(ctx).
		Where("recipe_id = ?", recipeID).
		Order("step asc").
		Find(&instructions).Error; err != nil {
		return nil, err
	}

	var tags []string
	if err := r.db.WithContext(ctx).
		Table("tags").
		Joins("JOIN recipe_tags ON recipe_tags.tag_id = tags.id").
		Where("recipe_tags.recipe_id = ?", recipeID).
		Pluck("tags.name", &tags).Error; err != nil {
		return nil, err
	}

	return &RecipeGraph{
		Recipe:       &recipe,
		Groups:       groups,
		Instructions: instructions,
		Tags:         tags,
	}, nil
}

func (r *recipeRepository) GetRecipes(ctx context.Context, page, limit int) ([]*entities.Recipe, int64, error) {
	var recipes []*entities.Recipe
	var count int64
	offset := (page - 1) * limit

	if err := r.db.WithContext(ctx).Model(&entities.Recipe{}).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Category").
		Offset(offset).
		Limit(limit).
		Order("created_at desc").
		Find(&recipes).Error; err != nil {
		return nil, 0, err
	}

	return recipes, count, nil
}

// DeleteRecipeGraph removes every dependent row and then the root inside
// one transaction. Released images are the service's concern.
func (r *recipeRepository) DeleteRecipeGraph(ctx context.Context, recipeID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&entities.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&entities.IngredientGroup{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&entities.Instruction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&entities.RecipeTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&entities.RecipeBookmark{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&entities.RecipeRating{}).Error; err != nil {
			return err
		}

		res := tx.Where("id = ?", recipeID).Delete(&entities.Recipe{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
