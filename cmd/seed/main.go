package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"timelogger-api/config"
	"timelogger-api/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	dsn := cfg.PostgresDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := "demo@example.com"
	password := "password123"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id string
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash)
		VALUES ($1, $2)
		ON CONFLICT (email) DO UPDATE SET updated_at = now()
		RETURNING id
	`, email, hash).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s password=%s\n", id, email, password)

	// A couple of starter projects so the catalog is not empty
	for _, p := range []struct {
		code, name string
	}{
		{"GEN", "General"},
		{"ADMIN", "Administration"},
	} {
		if _, err := db.Exec(`
			INSERT INTO projects (user_id, code, name)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id, code) DO UPDATE SET name = EXCLUDED.name
		`, id, p.code, p.name); err != nil {
			log.Fatalf("failed to seed project %s: %v", p.code, err)
		}
	}
	fmt.Println("seeded starter projects: GEN, ADMIN")
}
