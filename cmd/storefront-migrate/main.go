// Package main is the entry point for the storefront migration tool.
// It manages the PostgreSQL schema used by the optional order history
// backend. The embedded SQLite store migrates itself at server startup
// and needs no external tooling.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/docedelicia/storefront/internal/config"
	"github.com/docedelicia/storefront/internal/repository/postgres"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "version":
		fmt.Printf("Doce Delícia Migration Tool\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "up":
		runUp(os.Args[2:])

	case "status":
		runStatus(os.Args[2:])

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Doce Delícia Migration Tool

Usage:
  storefront-migrate <command> [arguments]

Commands:
  up          Apply all pending PostgreSQL migrations
  status      Show applied migration versions
  version     Print version information
  help        Show this help message

Examples:
  storefront-migrate up --config configs/config.yaml
  storefront-migrate status`)
}

func connect(configPath string) (*postgres.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	return postgres.NewDB(context.Background(), cfg.Database, logger)
}

func runUp(args []string) {
	fs := flag.NewFlagSet("up", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	_ = fs.Parse(args)

	db, err := connect(*configPath)
	if err != nil {
		fatal(err)
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		fatal(err)
	}
	fmt.Println("migrations applied")
}

func runStatus(args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	_ = fs.Parse(args)

	db, err := connect(*configPath)
	if err != nil {
		fatal(err)
	}
	defer db.Close()

	versions, err := db.AppliedMigrations(context.Background())
	if err != nil {
		fatal(err)
	}
	if len(versions) == 0 {
		fmt.Println("no migrations applied")
		return
	}
	for _, v := range versions {
		fmt.Println(v)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
