// Package main is the entry point for the storefront admin CLI.
// It operates directly on the durable store: promoting users to the
// admin role, inspecting orders and moving them through fulfillment.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rs/zerolog"

	"github.com/docedelicia/storefront/internal/config"
	"github.com/docedelicia/storefront/internal/domain"
	"github.com/docedelicia/storefront/internal/repository"
	"github.com/docedelicia/storefront/internal/repository/sqlite"
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
		fmt.Printf("Doce Delícia Admin CLI\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "user":
		runUserCommand(os.Args[2:])

	case "order":
		runOrderCommand(os.Args[2:])

	case "stats":
		runStatsCommand(os.Args[2:])

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Doce Delícia Admin CLI

Usage:
  storefront-admin <command> [arguments]

Commands:
  user        Manage users (list, promote, demote)
  order       Manage orders (list, set-status)
  stats       Print sales statistics
  version     Print version information
  help        Show this help message

Examples:
  storefront-admin user list
  storefront-admin user promote --email ana@example.com
  storefront-admin order list
  storefront-admin order set-status --id ORD-1700000000000-AB12 --status Preparing
  storefront-admin stats

Use a --config flag after the subcommand to point at a config file.`)
}

// openStore loads configuration and opens the embedded store.
func openStore(configPath string) (*sqlite.DB, repository.Repositories, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, repository.Repositories{}, err
	}

	db, err := sqlite.NewDB(context.Background(), sqlite.Config{
		Path:            cfg.Database.Path,
		JournalMode:     cfg.Database.JournalMode,
		BusyTimeout:     cfg.Database.BusyTimeout,
		CacheSize:       cfg.Database.CacheSize,
		SynchronousMode: cfg.Database.SynchronousMode,
	}, zerolog.Nop())
	if err != nil {
		return nil, repository.Repositories{}, err
	}

	return db, repository.Repositories{
		User:    sqlite.NewUserRepository(db),
		Session: sqlite.NewSessionRepository(db),
		Cart:    sqlite.NewCartRepository(db),
		Order:   sqlite.NewOrderRepository(db),
	}, nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func runUserCommand(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: storefront-admin user <list|promote|demote> [flags]")
		os.Exit(1)
	}
	sub := args[0]

	fs := flag.NewFlagSet("user "+sub, flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	email := fs.String("email", "", "user email")
	_ = fs.Parse(args[1:])

	db, repos, err := openStore(*configPath)
	if err != nil {
		fatal(err)
	}
	defer db.Close()

	ctx := context.Background()

	switch sub {
	case "list":
		users, err := repos.User.List(ctx)
		if err != nil {
			fatal(err)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE\tCREATED")
		for _, u := range users {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				u.ID, u.Name, u.Email, u.Role, u.CreatedAt.Format("2006-01-02 15:04"))
		}
		w.Flush()

	case "promote", "demote":
		if *email == "" {
			fatal(fmt.Errorf("--email is required"))
		}
		user, err := repos.User.GetByEmail(ctx, *email)
		if err != nil {
			fatal(err)
		}
		role := domain.RoleAdmin
		if sub == "demote" {
			role = domain.RoleCustomer
		}
		if user.Role == role {
			fmt.Printf("%s already has role %s\n", user.Email, role)
			return
		}
		user.Role = role
		if err := repos.User.Update(ctx, user); err != nil {
			fatal(err)
		}
		fmt.Printf("%s is now %s\n", user.Email, role)

	default:
		fmt.Fprintf(os.Stderr, "Unknown user subcommand: %s\n", sub)
		os.Exit(1)
	}
}

func runOrderCommand(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: storefront-admin order <list|set-status> [flags]")
		os.Exit(1)
	}
	sub := args[0]

	fs := flag.NewFlagSet("order "+sub, flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	orderID := fs.String("id", "", "order id")
	status := fs.String("status", "", "target status")
	_ = fs.Parse(args[1:])

	db, repos, err := openStore(*configPath)
	if err != nil {
		fatal(err)
	}
	defer db.Close()

	ctx := context.Background()

	switch sub {
	case "list":
		orders, err := repos.Order.ListAll(ctx)
		if err != nil {
			fatal(err)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCUSTOMER\tSTATUS\tTOTAL\tCREATED")
		for _, o := range orders {
			fmt.Fprintf(w, "%s\t%s\t%s\tR$ %.2f\t%s\n",
				o.ID, o.UserName, o.Status, o.Total, o.CreatedAt.Format("2006-01-02 15:04"))
		}
		w.Flush()

	case "set-status":
		if *orderID == "" || *status == "" {
			fatal(fmt.Errorf("--id and --status are required"))
		}
		target := domain.OrderStatus(*status)
		if !target.Valid() {
			fatal(fmt.Errorf("invalid status %q (valid: %v)", *status, domain.AllStatuses))
		}
		if err := repos.Order.UpdateStatus(ctx, *orderID, target); err != nil {
			fatal(err)
		}
		fmt.Printf("%s -> %s\n", *orderID, target)

	default:
		fmt.Fprintf(os.Stderr, "Unknown order subcommand: %s\n", sub)
		os.Exit(1)
	}
}

func runStatsCommand(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	_ = fs.Parse(args)

	db, repos, err := openStore(*configPath)
	if err != nil {
		fatal(err)
	}
	defer db.Close()

	ctx := context.Background()
	counts, err := repos.Order.CountByStatus(ctx)
	if err != nil {
		fatal(err)
	}

	var totalOrders int64
	var totalSales float64
	for status, c := range counts {
		totalOrders += c.Orders
		if status != domain.StatusCancelled {
			totalSales += c.Sales
		}
	}

	fmt.Printf("Orders: %d\n", totalOrders)
	fmt.Printf("Sales (excluding cancelled): R$ %.2f\n", totalSales)
	for _, s := range domain.AllStatuses {
		if c := counts[s]; c.Orders > 0 {
			fmt.Printf("  %-10s %d\n", s, c.Orders)
		}
	}
}
