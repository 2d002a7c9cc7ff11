package model

import "gorm.io/gorm"

// AutoMigrate creates or updates the schema for every model. Lives here
// rather than in package db so the test harness can migrate a throwaway
// database without pulling in the env-configured global connection.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Session{},
		&Group{},
		&Category{},
		&Discussion{},
		&DiscussionGroup{},
		&Message{},
		&MessageRead{},
	)
}
