package main

import (
	"errors"
	"log"
	"os"

	"gorm.io/gorm"

	"github.com/outlawshop/storefront/internal/config"
	"github.com/outlawshop/storefront/internal/hash"
	"github.com/outlawshop/storefront/internal/models"
)

// Seeds an admin account and a starter catalog. Safe to run repeatedly:
// existing rows are left alone.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}

	if err := seedAdmin(db); err != nil {
		log.Fatalf("seed admin: %v", err)
	}
	if err := seedProducts(db); err != nil {
		log.Fatalf("seed products: %v", err)
	}
	log.Println("seed complete")
}

func seedAdmin(db *gorm.DB) error {
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "changeme123"
		log.Println("ADMIN_PASSWORD not set, using default (change it)")
	}

	var existing models.User
	err := db.Where("username = ?", "admin").First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return err
	}
	return db.Create(&models.User{
		Username:     "admin",
		Email:        "admin@outlawshop.local",
		PasswordHash: pwHash,
		Role:         "admin",
		IsActive:     true,
	}).Error
}

func seedProducts(db *gorm.DB) error {
	var n int64
	if err := db.Model(&models.Product{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	products := []models.Product{
		{Title: "Outlaw Classic Tee", Description: "Heavyweight cotton tee with the original logo print.", Price: 29.90, Image: "/img/classic-tee.jpg", Category: "shirts", Stock: 120, Popular: true, IsActive: true},
		{Title: "Desert Rider Hoodie", Description: "Fleece-lined hoodie for cold night rides.", Price: 64.00, Image: "/img/rider-hoodie.jpg", Category: "hoodies", Stock: 45, Popular: true, IsActive: true},
		{Title: "Stagecoach Denim Jacket", Description: "Raw denim jacket with copper hardware.", Price: 119.00, Image: "/img/denim-jacket.jpg", Category: "jackets", Stock: 18, IsActive: true},
		{Title: "Sundown Cap", Description: "Low-profile cap, embroidered sunset patch.", Price: 24.50, Image: "/img/sundown-cap.jpg", Category: "accessories", Stock: 200, IsActive: true},
		{Title: "Frontier Work Boots", Description: "Full-grain leather boots, resoleable welt.", Price: 189.00, Image: "/img/work-boots.jpg", Category: "boots", Stock: 12, Popular: true, IsActive: true},
		{Title: "Maverick Belt", Description: "Vegetable-tanned belt with solid brass buckle.", Price: 49.00, Image: "/img/maverick-belt.jpg", Category: "accessories", Stock: 60, IsActive: true},
	}
	return db.Create(&products).Error
}
