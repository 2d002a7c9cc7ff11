package db

import (
	"context"

	"github.com/kmcheng/discusshub-backend/db/model"
	"github.com/kmcheng/discusshub-backend/env"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var db *gorm.DB

func init() {
	var err error
	db, err = gorm.Open(postgres.Open(env.DB_CONN), &gorm.Config{})
	if err != nil {
		panic(err)
	}
	if err := model.AutoMigrate(db); err != nil {
		panic(err)
	}
}

func GetDB(ctx context.Context) *gorm.DB {
	return db.WithContext(ctx)
}
