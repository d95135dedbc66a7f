package main

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"bibsync/internal/config"
)

func newConfigCommand(configFlag *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage bibsync configuration",
	}
	cmd.AddCommand(newConfigInitCommand(configFlag))
	cmd.AddCommand(newConfigShowCommand(configFlag))
	return cmd
}

func newConfigInitCommand(configFlag *string) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a sample configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := *configFlag
			if path == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return err
				}
				path = defaultPath
			}

			if _, _, exists, err := config.LoadUnvalidated(path); err == nil && exists && !force {
				return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
			}

			if err := config.CreateSample(path); err != nil {
				return err
			}
			cmd.Printf("Wrote sample config to %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}

func newConfigShowCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.LoadUnvalidated(*configFlag)
			if err != nil {
				return err
			}

			// Never echo the API secret.
			if cfg.Zotero.BearerToken != "" {
				cfg.Zotero.BearerToken = "<redacted>"
			}

			encoded, err := toml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}

			if exists {
				cmd.Printf("# %s\n", path)
			} else {
				cmd.Printf("# defaults (no file at %s)\n", path)
			}
			cmd.Print(string(encoded))
			return nil
		},
	}
}
