package main

import (
	"context"
	"log"

	"golang.org/x/crypto/bcrypt"

	"fleamart/internal/config"
	"fleamart/internal/db"
	"fleamart/internal/model"
	"fleamart/internal/repository"
)

type seedUser struct {
	Name     string
	Password string
}

type seedItem struct {
	SellerName string
	Name       string
	Detail     string
	Image      string
	Status     int
}

var seedUsers = []seedUser{
	{Name: "alice", Password: "alice-password"},
	{Name: "bob", Password: "bob-password"},
	{Name: "carol", Password: "carol-password"},
}

var seedItems = []seedItem{
	{SellerName: "alice", Name: "Wooden Chair", Detail: "Solid oak, barely used", Image: "https://example.com/chair.jpg", Status: model.StatusAvailable},
	{SellerName: "alice", Name: "Desk Lamp", Detail: "Warm white LED", Image: "https://example.com/lamp.jpg", Status: model.StatusReserved},
	{SellerName: "bob", Name: "Mountain Bike", Detail: "26 inch, recently serviced", Image: "https://example.com/bike.jpg", Status: model.StatusAvailable},
}

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}, &model.Item{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	ctx := context.Background()
	userRepo := repository.NewUserRepository(gormDB)
	itemRepo := repository.NewItemRepository(gormDB)

	uids := make(map[string]model.User)
	for _, su := range seedUsers {
		if existing, err := userRepo.FindByName(ctx, su.Name); err == nil {
			log.Printf("User %q already exists, skipping", su.Name)
			uids[su.Name] = *existing
			continue
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(su.Password), 12)
		if err != nil {
			log.Fatalf("Failed to hash password for %q: %v", su.Name, err)
		}

		user := &model.User{Name: su.Name, PasswordHash: string(hashed)}
		if err := userRepo.Create(ctx, user); err != nil {
			log.Fatalf("Failed to create user %q: %v", su.Name, err)
		}
		uids[su.Name] = *user
		log.Printf("Created user %q (%s)", su.Name, user.UID)
	}

	created := 0
	for _, si := range seedItems {
		seller, ok := uids[si.SellerName]
		if !ok {
			log.Fatalf("Seed item %q references unknown seller %q", si.Name, si.SellerName)
		}
		item := &model.Item{
			Seller:   seller.UID,
			Name:     si.Name,
			Detail:   si.Detail,
			Image:    si.Image,
			Status:   si.Status,
			IsActive: true,
		}
		if err := itemRepo.Create(ctx, item); err != nil {
			log.Fatalf("Failed to create item %q: %v", si.Name, err)
		}
		created++
	}

	log.Printf("Seed complete: %d users, %d items", len(uids), created)
}
