package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	"credflow/internal/config"
	"credflow/internal/repository/postgres"
	"credflow/internal/service"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const usage = `usage:
  admin create-account -login <login> -password <password>
  admin issue-reset -login <login>`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.LoadAdmin()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}

	passwords := service.NewPasswordService(
		postgres.NewAccountRepo(db),
		postgres.NewResetTokenRepo(db),
		cfg.ResetTokenTTL,
		logger,
	)

	switch os.Args[1] {
	case "create-account":
		err = createAccount(ctx, passwords, os.Args[2:])
	case "issue-reset":
		err = issueReset(ctx, passwords, cfg, os.Args[2:])
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		logger.Fatal("Command failed", zap.String("command", os.Args[1]), zap.Error(err))
	}
}

func createAccount(ctx context.Context, passwords *service.PasswordService, args []string) error {
	fs := flag.NewFlagSet("create-account", flag.ExitOnError)
	login := fs.String("login", "", "account login")
	password := fs.String("password", "", "initial password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := passwords.CreateAccount(ctx, *login, *password); err != nil {
		return err
	}
	fmt.Printf("account %q created\n", *login)
	return nil
}

func issueReset(ctx context.Context, passwords *service.PasswordService, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("issue-reset", flag.ExitOnError)
	login := fs.String("login", "", "account login")
	if err := fs.Parse(args); err != nil {
		return err
	}

	token, err := passwords.IssueResetToken(ctx, *login)
	if err != nil {
		return err
	}
	fmt.Println(cfg.ResetLink(token))
	return nil
}
