// cmd/migrate/main.go
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/emlakcrm/go-audit-api/internal/config"
	"github.com/emlakcrm/go-audit-api/internal/db"
	"github.com/emlakcrm/go-audit-api/internal/migration"
)

func main() {
	// .env dosyasını yükle
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using environment variables")
	}

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	// Config yükle
	cfg := config.LoadConfig()

	// Database bağlantısı
	database, err := db.Connect(cfg.GetDSN())
	if err != nil {
		fmt.Printf("Database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	runner := migration.NewRunner(database, migration.DefaultConfig())

	if err := runner.Initialize(); err != nil {
		fmt.Printf("Migration init failed: %v\n", err)
		os.Exit(1)
	}

	// Komut çalıştır
	switch command {
	case "status":
		handleStatus(runner)
	case "up":
		handleUp(runner)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`
Migration CLI Tool

USAGE:
    go run cmd/migrate/main.go <command>

COMMANDS:
    status    Show migration status
    up        Apply all pending migrations

EXAMPLES:
    go run cmd/migrate/main.go status
    go run cmd/migrate/main.go up
`)
}

// handleStatus migration durumunu tablo halinde yazdırır
func handleStatus(runner *migration.Runner) {
	status, err := runner.GetStatus()
	if err != nil {
		fmt.Printf("Status check failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\nMigration Status")
	fmt.Println("================")
	fmt.Printf("Current version: %d\n", status.CurrentVersion)
	fmt.Printf("Applied: %d / %d (pending: %d)\n\n", status.AppliedCount, status.TotalCount, status.PendingCount)

	for _, m := range status.Migrations {
		state := "pending"
		appliedAt := "-"
		if m.Applied {
			state = "applied"
			if m.AppliedAt != nil {
				appliedAt = m.AppliedAt.Format("2006-01-02 15:04:05")
			}
		}
		fmt.Printf("  %03d  %-40s  %-8s  %s\n", m.Version, m.Name, state, appliedAt)
	}
	fmt.Println()
}

// handleUp bekleyen migration'ları uygular
func handleUp(runner *migration.Runner) {
	count, err := runner.Up()
	if err != nil {
		fmt.Printf("Migration failed: %v\n", err)
		os.Exit(1)
	}

	if count == 0 {
		fmt.Println("Database is up to date, no pending migrations")
		return
	}

	fmt.Printf("Applied %d migration(s) successfully\n", count)
}
