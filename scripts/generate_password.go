//go:build ignore

// Prints a bcrypt hash suitable for seeding an admin account directly in the
// database. The cost follows BCRYPT_COST so the hash matches what the API
// produces.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/your-org/fashion-store/internal/config"
	"github.com/your-org/fashion-store/internal/pkg/auth"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run scripts/generate_password.go <password>")
	}

	password := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading configuration:", err)
	}

	passwords := auth.NewPasswordManager(cfg)
	if err := passwords.ValidatePassword(password); err != nil {
		log.Fatal("Password rejected:", err)
	}

	hash, err := passwords.HashPassword(password)
	if err != nil {
		log.Fatal("Error generating hash:", err)
	}

	if err := passwords.VerifyPassword(password, hash); err != nil {
		log.Fatal("Hash verification failed:", err)
	}

	fmt.Printf("Hash: %s\n", hash)
}
