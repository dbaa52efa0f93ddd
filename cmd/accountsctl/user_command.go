package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/caasmo/accounts"
	"github.com/caasmo/accounts/config"
	"github.com/caasmo/accounts/crypto"
	"github.com/caasmo/accounts/db"
	"github.com/caasmo/accounts/storage"
)

func userHelp() *CommandHelp {
	return &CommandHelp{
		Usage: "accountsctl [global options] user <subcommand> [arguments]",
		Subcommands: []Subcommand{
			{"list", "List all users ordered by creation"},
			{"create-admin <email:password>", "Create an admin, or promote an existing user"},
			{"set-role <email> <role>", "Set the role to user or admin"},
			{"delete <email>", "Delete a user and its avatar"},
		},
		Examples: []string{
			"accountsctl -config accounts.toml user set-role ann@example.com admin",
		},
	}
}

// userCommand runs one user subcommand against an open store.
type userCommand struct {
	cfg    *config.Config
	store  db.DbApp
	output io.Writer
	// storage is opened on demand by delete.
	openStorage func(ctx context.Context) (storage.Storage, error)
}

func handleUserCommand(ctx context.Context, output io.Writer, configPath string, args []string) error {
	if len(args) == 0 {
		userHelp().Print(output, "accountsctl", "user")
		return ErrMissingCommand
	}

	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}
	store, err := accounts.OpenStore(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOpenStore, err)
	}
	defer store.Close()

	uc := &userCommand{
		cfg:    cfg,
		store:  store,
		output: output,
		openStorage: func(ctx context.Context) (storage.Storage, error) {
			return accounts.OpenStorage(ctx, cfg.Storage)
		},
	}
	return uc.run(ctx, args)
}

func (uc *userCommand) run(ctx context.Context, args []string) error {
	sub, rest := args[0], args[1:]
	want := map[string]int{"list": 0, "create-admin": 1, "set-role": 2, "delete": 1}
	n, ok := want[sub]
	if !ok {
		userHelp().Print(uc.output, "accountsctl", "user")
		return fmt.Errorf("%w: user %s", ErrUnknownCommand, sub)
	}
	if len(rest) < n {
		return fmt.Errorf("%w: user %s", ErrMissingArgument, sub)
	}
	if len(rest) > n {
		return fmt.Errorf("%w: user %s", ErrTooManyArguments, sub)
	}

	switch sub {
	case "list":
		return uc.list(ctx)
	case "create-admin":
		return uc.createAdmin(ctx, rest[0])
	case "set-role":
		return uc.setRole(ctx, rest[0], db.Role(rest[1]))
	default:
		return uc.delete(ctx, rest[0])
	}
}

func (uc *userCommand) list(ctx context.Context) error {
	users, err := uc.store.ListUsers(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(uc.output, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEMAIL\tNAME\tROLE\tCREATED")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Email, u.Name, u.Role, u.Created.Format(time.RFC3339))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return nil
}

func (uc *userCommand) createAdmin(ctx context.Context, spec string) error {
	email, password, err := accounts.ParseAdminSpec(spec)
	if err != nil {
		return err
	}
	hasher, err := crypto.NewHasher(uc.cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}
	u, created, err := accounts.EnsureAdmin(ctx, uc.store, hasher, email, password)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(uc.output, "created admin %s (%s)\n", u.Email, u.ID)
	} else {
		fmt.Fprintf(uc.output, "%s is admin (%s)\n", u.Email, u.ID)
	}
	return nil
}

func (uc *userCommand) setRole(ctx context.Context, email string, role db.Role) error {
	if !role.Valid() {
		return fmt.Errorf("invalid role %q: must be user or admin", role)
	}
	u, err := uc.store.GetUserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("%s: %w", email, err)
	}
	if u.Role != role {
		if u, err = uc.store.UpdateUser(ctx, u.ID, db.UserPatch{Role: &role}); err != nil {
			return fmt.Errorf("%s: %w", email, err)
		}
	}
	fmt.Fprintf(uc.output, "%s role %s\n", u.Email, u.Role)
	return nil
}

// delete removes the account first. A failure to remove the avatar is
// reported but does not restore the account.
func (uc *userCommand) delete(ctx context.Context, email string) error {
	u, err := uc.store.GetUserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("%s: %w", email, err)
	}
	if err := uc.store.DeleteUser(ctx, u.ID); err != nil {
		return fmt.Errorf("%s: %w", email, err)
	}
	fmt.Fprintf(uc.output, "deleted %s (%s)\n", u.Email, u.ID)

	if u.Avatar == "" {
		return nil
	}
	st, err := uc.openStorage(ctx)
	if err != nil {
		return fmt.Errorf("avatar %s: %w", u.Avatar, err)
	}
	if err := st.Delete(ctx, u.Avatar); err != nil {
		return fmt.Errorf("avatar %s: %w", u.Avatar, err)
	}
	return nil
}
