package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"foodshare/internal/config"
	"foodshare/internal/db"
	"foodshare/internal/model"
	"foodshare/internal/repository"
)

type seedUser struct {
	Email     string
	Password  string
	FirstName string
	Surname   string
	DOB       string
	Address   string
	Phone     string
	Role      model.Role
}

type seedAdvert struct {
	OwnerEmail string
	Title      string
	Contents   string
	Address    string
	Latitude   string
	Longitude  string
	ExpiryIn   time.Duration
}

var seedUsers = []seedUser{
	{
		Email:     "admin@foodshare.local",
		Password:  "admin-password",
		FirstName: "Ada",
		Surname:   "Mint",
		DOB:       "1985-03-12",
		Address:   "1 Market Street, Newcastle",
		Phone:     "07700900001",
		Role:      model.RoleAdmin,
	},
	{
		Email:     "grace@example.com",
		Password:  "grace-password",
		FirstName: "Grace",
		Surname:   "Hollis",
		DOB:       "1992-07-04",
		Address:   "14 Quayside, Newcastle",
		Phone:     "07700900002",
		Role:      model.RoleUser,
	},
	{
		Email:     "tom@example.com",
		Password:  "tom-password",
		FirstName: "Tom",
		Surname:   "Barker",
		DOB:       "1998-11-21",
		Address:   "7 Osborne Road, Jesmond",
		Phone:     "07700900003",
		Role:      model.RoleUser,
	},
}

var seedAdverts = []seedAdvert{
	{
		OwnerEmail: "grace@example.com",
		Title:      "Surplus garden vegetables",
		Contents:   "Box of courgettes, runner beans and tomatoes from the allotment. Collect any evening.",
		Address:    "14 Quayside, Newcastle",
		Latitude:   "55.000000",
		Longitude:  "1.600000",
		ExpiryIn:   24 * time.Hour,
	},
	{
		OwnerEmail: "grace@example.com",
		Title:      "Homemade bread, two loaves",
		Contents:   "Baked this morning, more than we can eat before the weekend.",
		Address:    "14 Quayside, Newcastle",
		Latitude:   "55.000000",
		Longitude:  "1.600000",
		ExpiryIn:   48 * time.Hour,
	},
	{
		OwnerEmail: "tom@example.com",
		Title:      "Tinned goods clearout",
		Contents:   "Moving out, a dozen tins of soup and beans, all in date.",
		Address:    "7 Osborne Road, Jesmond",
		Latitude:   "55.010000",
		Longitude:  "1.610000",
		ExpiryIn:   -24 * time.Hour,
	},
}

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Advert{},
		&model.Collection{},
		&model.Message{},
	); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	ctx := context.Background()
	userRepo := repository.NewUserRepository(gormDB)
	advertRepo := repository.NewAdvertRepository(gormDB)

	users, err := seedAccounts(ctx, userRepo)
	if err != nil {
		log.Fatalf("Failed to seed users: %v", err)
	}

	adverts, err := seedListings(ctx, advertRepo, users)
	if err != nil {
		log.Fatalf("Failed to seed adverts: %v", err)
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - Users present: %d", len(users))
	log.Printf("  - Adverts created: %d", adverts)
}

// seedAccounts creates the demo users if they do not already exist and
// returns the full set keyed by email.
func seedAccounts(ctx context.Context, repo repository.UserRepository) (map[string]*model.User, error) {
	users := make(map[string]*model.User, len(seedUsers))
	for _, item := range seedUsers {
		existing, err := repo.FindByEmail(ctx, item.Email)
		if err == nil && existing != nil {
			log.Printf("User %s already exists, skipping", item.Email)
			users[item.Email] = existing
			continue
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("check user %s: %w", item.Email, err)
		}

		dob, err := time.Parse("2006-01-02", item.DOB)
		if err != nil {
			return nil, fmt.Errorf("parse dob for %s: %w", item.Email, err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(item.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", item.Email, err)
		}

		user := &model.User{
			Email:        item.Email,
			PasswordHash: string(hash),
			FirstName:    item.FirstName,
			Surname:      item.Surname,
			DOB:          dob,
			Address:      item.Address,
			Phone:        item.Phone,
			Role:         item.Role,
		}
		if err := repo.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("create user %s: %w", item.Email, err)
		}
		log.Printf("Created user %s (%s)", item.Email, item.Role)
		users[item.Email] = user
	}
	return users, nil
}

// seedListings creates the demo adverts. Expired fixtures are inserted as
// available so a first listing exercises the expiry sweep.
func seedListings(ctx context.Context, repo repository.AdvertRepository, users map[string]*model.User) (int, error) {
	created := 0
	for _, item := range seedAdverts {
		owner, ok := users[item.OwnerEmail]
		if !ok {
			return created, fmt.Errorf("advert owner %s not seeded", item.OwnerEmail)
		}

		lat, err := decimal.NewFromString(item.Latitude)
		if err != nil {
			return created, fmt.Errorf("parse latitude for %q: %w", item.Title, err)
		}
		lng, err := decimal.NewFromString(item.Longitude)
		if err != nil {
			return created, fmt.Errorf("parse longitude for %q: %w", item.Title, err)
		}

		advert := &model.Advert{
			Title:     item.Title,
			Contents:  item.Contents,
			Address:   item.Address,
			Latitude:  &lat,
			Longitude: &lng,
			OwnerID:   owner.ID,
			Expiry:    time.Now().Add(item.ExpiryIn),
			Available: true,
		}
		if err := repo.Create(ctx, advert); err != nil {
			return created, fmt.Errorf("create advert %q: %w", item.Title, err)
		}
		log.Printf("Created advert %q for %s", item.Title, item.OwnerEmail)
		created++
	}
	return created, nil
}
