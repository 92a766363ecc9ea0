package entities

import (
	"github.com/google/uuid"
)

type Recipe struct {
	ID                     uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	UserID                 uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Title                  string    `json:"title"`
	CategoryID             uuid.UUID `gorm:"type:uuid" json:"category_id"`
	ImageURL               string    `json:"image_url"`
	AdditionalInstructions string    `gorm:"type:text" json:"additional_instructions"`

	User     *User     `gorm:"foreignKey:UserID"`
	Category *Category `gorm:"foreignKey:CategoryID"`
	Timestamp
}

type Category struct {
	ID   uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Name string    `gorm:"uniqueIndex;not null" json:"name"`
}

// Tag names are stored lowercased and trimmed; the unique index is what
// makes concurrent find-or-create safe.
type Tag struct {
	ID   uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Name string    `gorm:"uniqueIndex;not null" json:"name"`
}

type RecipeTag struct {
	RecipeID uuid.UUID `gorm:"type:uuid;primaryKey" json:"recipe_id"`
	TagID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"tag_id"`

	Recipe *Recipe `gorm:"foreignKey:RecipeID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Tag    *Tag    `gorm:"foreignKey:TagID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

type IngredientGroup struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	RecipeID uuid.UUID `gorm:"type:uuid;index" json:"recipe_id"`
	Name     string    `json:"name"`

	Recipe *Recipe `gorm:"foreignKey:RecipeID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// Ingredient names are stored lowercased and trimmed, same as tags.
type Ingredient struct {
	ID   uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Name string    `gorm:"uniqueIndex;not null" json:"name"`
}

type RecipeIngredient struct {
	RecipeID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"recipe_id"`
	GroupID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"group_id"`
	IngredientID uuid.UUID `gorm:"type:uuid;primaryKey" json:"ingredient_id"`
	Amount       string    `json:"amount"`

	Recipe     *Recipe          `gorm:"foreignKey:RecipeID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Group      *IngredientGroup `gorm:"foreignKey:GroupID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Ingredient *Ingredient      `gorm:"foreignKey:IngredientID"`
}

// Instruction steps are keyed by (recipe, step); the service guarantees the
// step sequence is exactly 1..N before anything is written.
type Instruction struct {
	RecipeID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"recipe_id"`
	Step        int       `gorm:"primaryKey" json:"step"`
	Description string    `gorm:"type:text" json:"description"`
	ImageURL    string    `json:"image_url,omitempty"`

	Recipe *Recipe `gorm:"foreignKey:RecipeID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
