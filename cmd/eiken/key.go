package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/eiken/internal/keystore"
)

func newKeyCommand() *cobra.Command {
	keyCommand := &cobra.Command{
		Use:   "key",
		Short: "Manage the OpenAI API key used for explanations",
	}

	keyCommand.AddCommand(newKeySetCommand())
	keyCommand.AddCommand(newKeyShowCommand())
	keyCommand.AddCommand(newKeyClearCommand())

	return keyCommand
}

func loadKeyStore() (*keystore.FileStore, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return keystore.NewFileStore(cfg.KeyStore.Path), nil
}

func newKeySetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set [api-key]",
		Short: "Store the API key. Reads it from stdin when no argument is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := loadKeyStore()
			if err != nil {
				return err
			}

			var apiKey string
			if len(args) == 1 {
				apiKey = args[0]
			} else {
				_, _ = fmt.Fprint(cmd.OutOrStdout(), "OpenAI API key: ")
				apiKey, err = bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && strings.TrimSpace(apiKey) == "" {
					return fmt.Errorf("failed to read the API key: %w", err)
				}
			}

			if err := keys.SetAPIKey(apiKey); err != nil {
				return fmt.Errorf("keys.SetAPIKey() > %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Saved the API key to %s\n", keys.Path())
			return nil
		},
	}
}

func newKeyShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the stored API key, masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := loadKeyStore()
			if err != nil {
				return err
			}

			apiKey, err := keys.GetAPIKey()
			if errors.Is(err, keystore.ErrNoAPIKey) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No API key is configured.")
				return nil
			}
			if err != nil {
				return fmt.Errorf("keys.GetAPIKey() > %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), keystore.Mask(apiKey))
			return nil
		},
	}
}

func newKeyClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := loadKeyStore()
			if err != nil {
				return err
			}
			if err := keys.Clear(); err != nil {
				return fmt.Errorf("keys.Clear() > %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Removed the API key.")
			return nil
		},
	}
}
