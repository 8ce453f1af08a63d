package main

import (
	"context"
	"errors"
	"log"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"markethub/internal/auth"
	"markethub/internal/config"
	"markethub/internal/db"
	apperrors "markethub/internal/errors"
	"markethub/internal/model"
	"markethub/internal/repository"
)

const (
	adminEmail    = "admin@markethub.local"
	adminPassword = "Admin123"
)

// Seeds an active admin account and a handful of demo products so a fresh
// environment is usable immediately.
func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}, &model.Product{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	ctx := context.Background()
	userRepo := repository.NewUserRepository(gormDB)
	productRepo := repository.NewProductRepository(gormDB)

	adminID, err := seedAdmin(ctx, userRepo)
	if err != nil {
		log.Fatalf("Failed to seed admin user: %v", err)
	}

	created, err := seedProducts(ctx, productRepo, adminID)
	if err != nil {
		log.Fatalf("Failed to seed products: %v", err)
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - Admin user: %s (id=%d)", adminEmail, adminID)
	log.Printf("  - Demo products created: %d", created)
}

// seedAdmin creates the admin account if it does not already exist. The
// account is created active with no confirmation token.
func seedAdmin(ctx context.Context, repo repository.UserRepository) (uint, error) {
	hasher := auth.NewPasswordHasher()
	hash, err := hasher.Hash(adminPassword)
	if err != nil {
		return 0, err
	}

	admin := &model.User{
		Name:         "Administrator",
		Email:        adminEmail,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		IsActive:     true,
	}
	if err := repo.Create(ctx, admin); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateEmail) {
			existing, err := repo.FindByEmail(ctx, adminEmail)
			if err != nil {
				return 0, err
			}
			log.Println("Admin user already exists, skipping")
			return existing.ID, nil
		}
		return 0, err
	}
	return admin.ID, nil
}

func seedProducts(ctx context.Context, repo repository.ProductRepository, ownerID uint) (int, error) {
	existing, err := repo.FindByUserID(ctx, ownerID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}
	if len(existing) > 0 {
		log.Println("Demo products already exist, skipping")
		return 0, nil
	}

	demo := []model.Product{
		{Name: "Mechanical Keyboard", Description: "Tenkeyless, brown switches", Price: decimal.NewFromFloat(89.90), IsAvailable: true, CreatedByUserID: ownerID},
		{Name: "USB-C Dock", Description: "Dual 4K display output", Price: decimal.NewFromFloat(129.00), IsAvailable: true, CreatedByUserID: ownerID},
		{Name: "Laptop Stand", Description: "Aluminium, adjustable height", Price: decimal.NewFromFloat(39.50), IsAvailable: true, CreatedByUserID: ownerID},
	}
	for i := range demo {
		if err := repo.Create(ctx, &demo[i]); err != nil {
			return i, err
		}
	}
	return len(demo), nil
}
