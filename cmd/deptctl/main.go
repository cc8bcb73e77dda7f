// Command deptctl performs the administrative edits the web app does not
// expose: schema migration, account creation and role changes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"department-service/internal/app"
	"department-service/internal/authz"
	"department-service/internal/config"
	"department-service/internal/domain/profile"
	"department-service/pkg/logger"

	"github.com/joho/godotenv"
)

const usage = `usage: deptctl <command> [flags]

commands:
  migrate                                        create or update the schema
  create-user -username U -password P [-role R]  add an account and its profile
  set-role -username U -role R                   change a profile's role
`

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "deptctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return errors.New("missing command")
	}

	_ = godotenv.Load(".env")

	cfg, err := config.LoadDatabase()
	if err != nil {
		return err
	}
	log := logger.New(stderr, cfg.Log.Level, cfg.Log.Format)
	ctx = logger.WithContext(ctx, log)

	command, rest := args[0], args[1:]
	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	fs.SetOutput(stderr)
	username := fs.String("username", "", "account username")
	password := fs.String("password", "", "account password")
	roleName := fs.String("role", "", "employee, manager, head or admin (create-user defaults to employee)")

	switch command {
	case "migrate", "create-user", "set-role":
	default:
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
	if err := fs.Parse(rest); err != nil {
		return err
	}
	if command != "migrate" && *username == "" {
		return errors.New("-username is required")
	}
	if command == "set-role" && *roleName == "" {
		return errors.New("-role is required for set-role")
	}

	store, _, err := app.OpenStore(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	svc := app.NewService(store, authz.NewDepartment(), nil, app.Options{})

	switch command {
	case "migrate":
		fmt.Fprintln(stdout, "schema is up to date")
		return nil

	case "create-user":
		role := profile.RoleEmployee
		if *roleName != "" {
			if role, err = profile.ParseRole(*roleName); err != nil {
				return err
			}
		}
		p, err := svc.CreateUser(ctx, app.CreateUserRequest{Username: *username, Password: *password, Role: role})
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "created %s (user %d, profile %d, role %s)\n", p.Username, p.UserID, p.ID, p.Role)
		return nil

	default:
		role, err := profile.ParseRole(*roleName)
		if err != nil {
			return err
		}
		p, err := svc.SetRole(ctx, *username, role)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s is now %s\n", *username, p.Role)
		return nil
	}
}
