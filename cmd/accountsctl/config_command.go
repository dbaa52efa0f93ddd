package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/caasmo/accounts/config"
)

const redacted = "********"

func configHelp() *CommandHelp {
	return &CommandHelp{
		Usage: "accountsctl [global options] config <subcommand> [arguments]",
		Description: "Config files are TOML. Values from the environment override the file\n" +
			"for secrets, see the ACCOUNTS_* variables.",
		Subcommands: []Subcommand{
			{"init <path>", "Write a default config with a fresh jwt secret"},
			{"dump", "Print the effective config with secrets masked"},
			{"validate", "Load and validate the config"},
		},
		Examples: []string{
			"accountsctl config init accounts.toml",
			"accountsctl -config accounts.toml config dump",
		},
	}
}

func handleConfigCommand(output io.Writer, configPath string, args []string) error {
	if len(args) == 0 {
		configHelp().Print(output, "accountsctl", "config")
		return ErrMissingCommand
	}

	switch args[0] {
	case "init":
		if len(args) < 2 {
			return fmt.Errorf("%w: config init <path>", ErrMissingArgument)
		}
		return initConfig(output, args[1])
	case "dump":
		cfg, err := config.LoadFile(configPath)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
		return dumpConfig(output, cfg)
	case "validate":
		cfg, err := config.LoadFile(configPath)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
		_, err = fmt.Fprintf(output, "config %s is valid\n", source(cfg))
		return err
	default:
		configHelp().Print(output, "accountsctl", "config")
		return fmt.Errorf("%w: config %s", ErrUnknownCommand, args[0])
	}
}

func source(cfg *config.Config) string {
	if cfg.Source == "" {
		return "(defaults)"
	}
	return cfg.Source
}

// initConfig refuses to overwrite an existing file.
func initConfig(output io.Writer, path string) error {
	data, err := config.Marshal(config.NewDefaultConfig())
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrFileExists, path)
		}
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}

	_, err = fmt.Fprintf(output, "wrote %s\n", path)
	return err
}

func dumpConfig(output io.Writer, cfg *config.Config) error {
	data, err := config.Marshal(redactConfig(cfg))
	if err != nil {
		return err
	}
	if _, err := output.Write(data); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return nil
}

// redactConfig returns a copy of cfg with every set secret masked.
func redactConfig(cfg *config.Config) *config.Config {
	c := *cfg
	for _, s := range []*string{
		&c.Jwt.AuthSecret,
		&c.Smtp.Password,
		&c.Storage.S3.SecretKey,
		&c.Store.PostgresDSN,
		&c.Notifier.Discord.WebhookURL,
	} {
		if *s != "" {
			*s = redacted
		}
	}
	return &c
}
