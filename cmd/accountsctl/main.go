package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newGlobalFlags() (*flag.FlagSet, *string, *string) {
	fs := flag.NewFlagSet("accountsctl", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to the TOML config file (defaults only when empty)")
	envPath := fs.String("env", "", "Path to a .env file loaded before reading the config")
	return fs, configPath, envPath
}

func rootHelp(global *flag.FlagSet) *CommandHelp {
	return &CommandHelp{
		Usage:       "accountsctl [global options] <command> [arguments]",
		Description: "Administers an accounts deployment: users in the store and the config file.",
		Subcommands: []Subcommand{
			{"user", "List, promote and delete user accounts"},
			{"config", "Create, print and validate the config file"},
			{"help", "Show help for a command"},
		},
		GlobalOptions: global,
		Examples: []string{
			"accountsctl -config accounts.toml user list",
			"accountsctl -config accounts.toml user create-admin admin@example.com:s3cret",
			"accountsctl config init accounts.toml",
		},
	}
}

func run(ctx context.Context, args []string, output io.Writer) error {
	fs, configPath, envPath := newGlobalFlags()
	fs.SetOutput(output)
	fs.Usage = func() { rootHelp(fs).Print(output, "accountsctl") }

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFlag, err)
	}

	if *envPath != "" {
		if err := godotenv.Load(*envPath); err != nil {
			return fmt.Errorf("%w (%s): %v", ErrLoadEnv, *envPath, err)
		}
	}

	cmdArgs := fs.Args()
	if len(cmdArgs) == 0 {
		fs.Usage()
		return ErrMissingCommand
	}

	command, commandArgs := cmdArgs[0], cmdArgs[1:]
	switch command {
	case "user":
		return handleUserCommand(ctx, output, *configPath, commandArgs)
	case "config":
		return handleConfigCommand(output, *configPath, commandArgs)
	case "help":
		return handleHelpCommand(output, fs, commandArgs)
	default:
		fs.Usage()
		return fmt.Errorf("%w: %s", ErrUnknownCommand, command)
	}
}

func handleHelpCommand(output io.Writer, global *flag.FlagSet, args []string) error {
	if len(args) == 0 {
		rootHelp(global).Print(output, "accountsctl")
		return nil
	}
	switch args[0] {
	case "user":
		userHelp().Print(output, "accountsctl", "user")
	case "config":
		configHelp().Print(output, "accountsctl", "config")
	default:
		return fmt.Errorf("%w: %s", ErrUnknownHelpTopic, args[0])
	}
	return nil
}
