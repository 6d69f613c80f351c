package seed

import (
	"log"

	"Postline/models"

	"gorm.io/gorm"
)

var users = []models.User{
	{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password",
	},
	{
		Username: "bob",
		Email:    "bob@example.com",
		Password: "password",
	},
}

var groups = []models.Group{
	{
		Title:       "Tech",
		Slug:        "tech",
		Description: "Everything about computers",
	},
	{
		Title:       "Travel",
		Slug:        "travel",
		Description: "Notes from the road",
	},
}

var posts = []models.Post{
	{
		Text:     "Lorem ipsum dolor sit amet, consectetur adipiscing elit, sed do eiusmod tempor incididunt ut labore et dolore magna aliqua.",
		HelpText: "First seeded post",
	},
	{
		Text:     "Ut enim ad minim veniam, quis nostrud exercitation ullamco laboris nisi ut aliquip ex ea commodo consequat.",
		HelpText: "Second seeded post",
	},
}

// Load resets the schema and inserts a small dataset for local development.
func Load(db *gorm.DB) {
	err := db.Migrator().DropTable(
		&models.Follow{},
		&models.Comment{},
		&models.Post{},
		&models.Group{},
		&models.ResetPassword{},
		&models.User{},
	)
	if err != nil {
		log.Fatalf("cannot drop tables: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Post{},
		&models.Comment{},
		&models.Follow{},
		&models.ResetPassword{},
	)
	if err != nil {
		log.Fatalf("cannot migrate tables: %v", err)
	}

	for i := range groups {
		if err = db.Create(&groups[i]).Error; err != nil {
			log.Fatalf("cannot seed groups table: %v", err)
		}
	}

	for i := range users {
		if err = db.Create(&users[i]).Error; err != nil {
			log.Fatalf("cannot seed users table: %v", err)
		}
		posts[i].AuthorID = users[i].ID
		posts[i].GroupID = &groups[i].ID

		if err = db.Create(&posts[i]).Error; err != nil {
			log.Fatalf("cannot seed posts table: %v", err)
		}
	}
}
