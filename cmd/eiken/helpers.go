package main

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/at-ishikawa/eiken/internal/config"
	"github.com/at-ishikawa/eiken/internal/pdf"
)

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	return loader.Load()
}

// StoreFlag overrides results.store for a single command.
type StoreFlag string

var _ pflag.Value = (*StoreFlag)(nil)

var validStores = []string{config.ResultStoreYAML, config.ResultStoreSQLite, config.ResultStoreMySQL}

func (f *StoreFlag) String() string {
	return string(*f)
}

func (f *StoreFlag) Set(value string) error {
	for _, s := range validStores {
		if value == s {
			*f = StoreFlag(value)
			return nil
		}
	}
	return fmt.Errorf("must be one of: %s", strings.Join(validStores, ", "))
}

func (f *StoreFlag) Type() string {
	return "store"
}

// apply overwrites the configured store when the flag was given.
func (f *StoreFlag) apply(cfg *config.Config) {
	if *f != "" {
		cfg.Results.Store = string(*f)
	}
}

// PaperFlag selects the PDF paper size.
type PaperFlag string

var _ pflag.Value = (*PaperFlag)(nil)

func (f *PaperFlag) String() string {
	return string(*f)
}

func (f *PaperFlag) Set(value string) error {
	switch {
	case strings.EqualFold(value, pdf.PaperA4):
		*f = PaperFlag(pdf.PaperA4)
	case strings.EqualFold(value, pdf.PaperLetter):
		*f = PaperFlag(pdf.PaperLetter)
	default:
		return fmt.Errorf("must be %s or %s", pdf.PaperA4, pdf.PaperLetter)
	}
	return nil
}

func (f *PaperFlag) Type() string {
	return "paper"
}
