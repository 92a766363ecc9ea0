package migration

import (
	"RecipeBox-Backend/entities"
	"fmt"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// The catalog is read-only at runtime; submissions against a name outside
// this list are rejected.
var seedCategories = []string{
	"Appetizer",
	"Breakfast",
	"Dessert",
	"Drink",
	"Main Course",
	"Salad",
	"Snack",
	"Soup",
}

func Migrate(db *gorm.DB) error {
	db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\";")

	if err := db.AutoMigrate(&entities.User{}); err != nil {
		log.Fatalf("Error migrating user database: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities.Category{}); err != nil {
		log.Fatalf("Error migrating category database: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities.Tag{}); err != nil {
		log.Fatalf("Error migrating tag database: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities.Ingredient{}); err != nil {
		log.Fatalf("Error migrating ingredient database: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities.Recipe{}); err != nil {
		log.Fatalf("Error migrating recipe database: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities.IngredientGroup{}); err != nil {
		log.Fatalf("Error migrating ingredient group database: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities.RecipeIngredient{}); err != nil {
		log.Fatalf("Error migrating recipe ingredient database: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities.Instruction{}); err != nil {
		log.Fatalf("Error migrating instruction database: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities.RecipeTag{}); err != nil {
		log.Fatalf("Error migrating recipe tag database: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities.RecipeBookmark{}); err != nil {
		log.Fatalf("Error migrating recipe bookmark database: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities.RecipeRating{}); err != nil {
		log.Fatalf("Error migrating recipe rating database: %v", err)
		return err
	}

	if err := seedCategoryCatalog(db); err != nil {
		log.Fatalf("Error seeding category catalog: %v", err)
		return err
	}

	fmt.Println("Database migration complete")
	return nil
}

func seedCategoryCatalog(db *gorm.DB) error {
	for _, name := range seedCategories {
		category := entities.Category{Name: name}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&category).Error; err != nil {
			return err
		}
	}
	return nil
}
