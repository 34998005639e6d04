package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"

	"uniportal/internal/database"
	"uniportal/internal/domain"
	"uniportal/internal/repository"
)

func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "uniportal.db"
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	// AutoMigrate to ensure schema is up to date
	log.Println("Running AutoMigrate...")
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.RefreshSession{},
	); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	ctx := context.Background()
	users := repository.NewUserRepository(db)

	// ================== USERS ==================
	log.Println("Creating users...")

	seedUser(ctx, users, "ADM-00001", "admin@uniportal.edu", "admin123", domain.RoleAdmin, "Portal Administrator")
	seedUser(ctx, users, "STF-00001", "registrar@uniportal.edu", "staff123", domain.RoleStaff, "Registrar Office")

	studentNames := []string{"Aidana Serik", "Marat Bekov", "Dana Alim"}
	for i, name := range studentNames {
		seedUser(ctx, users,
			fmt.Sprintf("STU-%05d", i+1),
			fmt.Sprintf("student%d@uniportal.edu", i+1),
			"student123", domain.RoleStudent, name)
	}

	log.Println("Seed complete.")
	log.Println("  ADM-00001 / admin123")
	log.Println("  STF-00001 / staff123")
	log.Println("  STU-00001..00003 / student123")
}

func seedUser(ctx context.Context, users *repository.UserRepository, loginCode, email, password string, role domain.UserRole, name string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("hash failed:", err)
	}

	u := &domain.User{
		LoginCode:    loginCode,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Name:         name,
	}
	if err := users.Create(ctx, u); err != nil {
		if repository.IsUniqueViolation(err) {
			log.Printf("skip %s: already exists", loginCode)
			return
		}
		log.Fatalf("create %s failed: %v", loginCode, err)
	}
	log.Printf("created %s (%s)", loginCode, role)
}
