// Command createadmin seeds the first administrator account. Safe to run
// repeatedly: if the account already exists it is left untouched.
package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"konkan-properties/internal/config"
	"konkan-properties/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using environment")
	}
	cfg := config.Load()
	ctx := context.Background()

	email := getenv("ADMIN_EMAIL", "admin@konkanproperties.com")
	password := getenv("ADMIN_PASSWORD", "admin123")
	name := getenv("ADMIN_NAME", "Super Administrator")
	phone := getenv("ADMIN_PHONE", "+91-9876543210")
	address := getenv("ADMIN_ADDRESS", "Konkan Coast, Maharashtra, India")

	pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("postgres connect: %v", err)
	}
	defer pool.Close()

	users := store.NewUserStore(pool)
	if err := users.Migrate(ctx); err != nil {
		log.Fatalf("postgres migrate: %v", err)
	}

	if existing, err := users.GetUserByEmail(ctx, email); err == nil {
		log.Printf("admin user already exists: %s (admin=%v)", existing.Email, existing.IsAdmin)
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Fatalf("lookup admin: %v", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	user, err := users.CreateUser(ctx, name, email, string(hashed), phone, address)
	if err != nil {
		log.Fatalf("create admin: %v", err)
	}
	if _, err := users.SetAdmin(ctx, user.ID); err != nil {
		log.Fatalf("set admin flag: %v", err)
	}

	log.Printf("admin user created: %s", email)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
