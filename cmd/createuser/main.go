// Command createuser is the admin bootstrap tool: it creates an account
// directly against the database and optionally provisions two-factor,
// printing the otpauth enrollment URI. Connection settings come from the
// usual server flags (-d, -c) and environment variables.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"minventory/internal/logging"
	"minventory/internal/server/auth"
	"minventory/internal/server/config"
	"minventory/internal/server/repositories/repomanager"
	"minventory/internal/server/services"
	"minventory/internal/server/session"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.LoadConfig()
	ctx := context.Background()
	stdin := bufio.NewReader(os.Stdin)

	username, err := prompt(stdin, "Username: ")
	if err != nil {
		return err
	}
	if username == "" {
		return fmt.Errorf("username is required")
	}

	password, err := readPassword()
	if err != nil {
		return err
	}

	repos, err := repomanager.NewPostgresRepositoryManager(cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer repos.Close()
	if err := repos.RunMigrations(ctx); err != nil {
		return err
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	svc := services.NewAuthService(repos.Conn(), repos, session.NewManager(cfg.SessionTTL), cfg, logger)

	user, err := svc.Register(ctx, username, password)
	if err != nil {
		return err
	}
	fmt.Printf("created user %s (%s)\n", user.UserName, user.ID)

	answer, err := prompt(stdin, "Enable two-factor? [y/N]: ")
	if err != nil {
		return err
	}
	if strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes") {
		secret, uri, err := auth.GenerateTOTPSecret(user.UserName)
		if err != nil {
			return err
		}
		if err := repos.Users(repos.Conn()).UpdateTwoFactor(ctx, user.ID, secret, true); err != nil {
			return err
		}
		fmt.Printf("two-factor enabled, enroll with:\n%s\n", uri)
	}
	return nil
}

func prompt(stdin *bufio.Reader, label string) (string, error) {
	fmt.Print(label)
	line, err := stdin.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readPassword prompts twice without echo.
func readPassword() (string, error) {
	fmt.Print("Password: ")
	first, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	fmt.Print("Repeat password: ")
	second, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	if string(first) != string(second) {
		return "", fmt.Errorf("passwords do not match")
	}
	if len(first) == 0 {
		return "", fmt.Errorf("password must not be empty")
	}
	return string(first), nil
}
