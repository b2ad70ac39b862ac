// Package main provisions the first super admin account. Run it once against
// a fresh database, then manage further accounts through the console.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"golang.org/x/term"

	"eventdesk.io/eventdesk/internal/audit"
	"eventdesk.io/eventdesk/internal/config"
	"eventdesk.io/eventdesk/internal/domain"
	"eventdesk.io/eventdesk/internal/pkg/logger"
	"eventdesk.io/eventdesk/internal/repository/mongodb"
	"eventdesk.io/eventdesk/internal/users"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "createsuperadmin error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	email := flag.String("email", "", "email address for the account (required)")
	name := flag.String("name", "", "display name for the account (required)")
	password := flag.String("password", "", "password; prompted interactively when omitted")
	flag.Parse()

	if *email == "" || *name == "" {
		flag.Usage()
		return fmt.Errorf("email and name are required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	pw := *password
	if pw == "" {
		if pw, err = promptPassword(); err != nil {
			return err
		}
	}

	ctx := context.Background()
	store, err := mongodb.Connect(ctx, cfg.Mongo)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	defer store.Close(ctx)

	svc := users.NewService(store.Users, audit.NewTrail(store.Activity))
	u, err := svc.Create(ctx, nil, users.CreateInput{
		Email:    *email,
		Password: pw,
		Name:     *name,
		Role:     domain.RoleSuperAdmin,
	})
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	fmt.Printf("Super admin created: %s (%s)\n", u.Name, u.Email)
	return nil
}

func promptPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if len(pw) == 0 {
		return "", fmt.Errorf("password must not be empty")
	}
	return string(pw), nil
}
