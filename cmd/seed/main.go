package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"skybook/internal/flights"
	"skybook/internal/shared/config"
	"skybook/internal/shared/database"
	"skybook/internal/users"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("🌱 Starting SkyBook Database Seeder...")

	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates all tables in dependency order
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"bookings",
		"flights",
		"users",
	}

	tx := s.db.PostgreSQL.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	for _, table := range tables {
		fmt.Printf("  Truncating table: %s\n", table)
		if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit().Error
}

// SeedAll seeds users and a starter flight schedule
func (s *Seeder) SeedAll() error {
	ctx := context.Background()

	if _, err := s.SeedUsers(); err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	if err := s.SeedFlights(); err != nil {
		return fmt.Errorf("failed to seed flights: %w", err)
	}

	// Clear Redis cache to ensure fresh state
	if s.db.Redis != nil {
		if err := s.db.Redis.FlushDB(ctx).Err(); err != nil {
			log.Printf("Warning: Failed to clear Redis cache: %v", err)
		}
	}

	return nil
}

// SeedUsers creates 3 users: 1 admin and 2 regular users
func (s *Seeder) SeedUsers() (map[string]uuid.UUID, error) {
	fmt.Println("  👤 Seeding users...")

	userIDs := make(map[string]uuid.UUID)

	// Hash password for all users (using "qwerty")
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("qwerty"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	usersData := []struct {
		key      string
		username string
		email    string
		role     users.Role
	}{
		{"admin", "admin", "admin@skybook.dev", users.RoleAdmin},
		{"user1", "alice", "alice@skybook.dev", users.RoleUser},
		{"user2", "bob", "bob@skybook.dev", users.RoleUser},
	}

	for _, userData := range usersData {
		user := users.User{
			ID:        uuid.New(),
			Username:  userData.username,
			Email:     userData.email,
			Password:  string(hashedPassword),
			Role:      userData.role,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}

		if err := s.db.PostgreSQL.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", userData.email, err)
		}

		userIDs[userData.key] = user.ID
		fmt.Printf("    ✅ Created user: %s (%s)\n", user.Username, user.Role)
	}

	return userIDs, nil
}

// SeedFlights creates a small schedule covering both booking modes
func (s *Seeder) SeedFlights() error {
	fmt.Println("  ✈️  Seeding flights...")

	departures := time.Now().Add(48 * time.Hour).Truncate(time.Hour)

	flightsData := []struct {
		number      string
		departure   string
		destination string
		departsAt   time.Time
		maxTickets  int
		price       float64
		withSeats   bool
	}{
		{"SB101", "Amsterdam", "Lisbon", departures, 180, 89.99, true},
		{"SB202", "Berlin", "Oslo", departures.Add(6 * time.Hour), 120, 129.50, true},
		{"SB303", "Paris", "Rome", departures.Add(24 * time.Hour), 60, 74.00, false},
	}

	for _, data := range flightsData {
		flight := flights.Flight{
			ID:               uuid.New(),
			FlightNumber:     data.number,
			Departure:        data.departure,
			Destination:      data.destination,
			DepartsAt:        data.departsAt,
			MaxTickets:       data.maxTickets,
			AvailableTickets: data.maxTickets,
			Price:            data.price,
			CreatedAt:        time.Now(),
			UpdatedAt:        time.Now(),
		}
		if data.withSeats {
			flight.Seats = flights.GenerateSeatMap(data.maxTickets)
			flight.BookedSeats = []string{}
		}

		if err := s.db.PostgreSQL.Create(&flight).Error; err != nil {
			return fmt.Errorf("failed to create flight %s: %w", data.number, err)
		}

		fmt.Printf("    ✅ Created flight: %s %s → %s (%d seats)\n",
			flight.FlightNumber, flight.Departure, flight.Destination, flight.MaxTickets)
	}

	return nil
}
