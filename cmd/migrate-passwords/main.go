// Migration script to hash plaintext passwords left in the account tables
// cmd/migrate-passwords/main.go
package main

import (
	"log"

	"structura-api/config"
	"structura-api/utils"

	"github.com/joho/godotenv"
)

type accountRow struct {
	ID           uint   `gorm:"column:id"`
	Email        string `gorm:"column:email"`
	PasswordHash string `gorm:"column:password_hash"`
}

var tables = []struct {
	name string
	key  string
}{
	{"users", "user_id"},
	{"supervisors", "supervisor_id"},
	{"clients", "client_id"},
}

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Initialize database
	config.InitDB()

	failed := 0
	for _, t := range tables {
		var rows []accountRow
		if err := config.DB.Table(t.name).
			Select(t.key + " AS id, email, password_hash").
			Scan(&rows).Error; err != nil {
			log.Fatalf("Failed to fetch %s: %v", t.name, err)
		}

		for _, row := range rows {
			// Skip if already hashed (bcrypt hashes start with $2)
			if row.PasswordHash == "" || utils.IsHashed(row.PasswordHash) {
				continue
			}

			hashed, err := utils.HashPassword(row.PasswordHash)
			if err != nil {
				log.Printf("Failed to hash password for %s %s: %v\n", t.name, row.Email, err)
				failed++
				continue
			}

			if err := config.DB.Table(t.name).
				Where(t.key+" = ?", row.ID).
				Update("password_hash", hashed).Error; err != nil {
				log.Printf("Failed to update password for %s %s: %v\n", t.name, row.Email, err)
				failed++
				continue
			}

			log.Printf("Hashed password for %s %s\n", t.name, row.Email)
		}
	}

	if failed > 0 {
		log.Fatalf("Password migration finished with %d failures", failed)
	}
	log.Println("Password migration completed!")
}
