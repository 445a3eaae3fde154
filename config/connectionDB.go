package config

import (
	"fmt"
	"log"

	"github.com/kurromiii/E-Commerce/internal/entity"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func ConnectionDb(dsn string) *gorm.DB {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true, // Disable prepared statements completely
	}), &gorm.Config{
		PrepareStmt: false,
	})
	if err != nil {
		log.Printf("error connect to database %s", err)
		return db
	}

	if err := db.AutoMigrate(
		&entity.User{},
		&entity.VerificationToken{},
		&entity.Address{},
		&entity.AuditLog{},
	); err != nil {
		log.Printf("error migrate database %s", err)
	}

	fmt.Println("success connect to db")
	return db
}
