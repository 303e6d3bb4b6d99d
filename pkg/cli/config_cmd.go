package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"aggcsv/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration profiles",
	}

	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigSetProfileCmd())
	cmd.AddCommand(newConfigUseProfileCmd())

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := LoadUserConfig()
			if err != nil {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "No configuration found at %s\n", ConfigPath())
				return err
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			_, _ = fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func newConfigSetProfileCmd() *cobra.Command {
	var (
		name       string
		separator  string
		banners    []string
		strictJSON bool
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "set-profile",
		Short: "Create or update a configuration profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if name == "" {
				return fmt.Errorf("--name is required")
			}

			check := config.Default()
			if cmd.Flags().Changed("separator") {
				r, err := config.ParseSeparator(separator)
				if err != nil {
					return err
				}
				check.Separator = r
			}
			if cmd.Flags().Changed("log-level") {
				check.LogLevel = logLevel
			}
			if err := check.Validate(); err != nil {
				return err
			}

			cfg, err := LoadUserConfig()
			if err != nil {
				if !errors.Is(err, os.ErrNotExist) {
					return err
				}
				cfg = &UserConfig{
					CurrentProfile: "default",
					Profiles:       map[string]Profile{},
				}
			}

			p := cfg.Profiles[name]
			if cmd.Flags().Changed("separator") {
				p.Separator = separator
			}
			if cmd.Flags().Changed("banner") {
				p.Banners = banners
			}
			if cmd.Flags().Changed("strict-json") {
				p.StrictJSON = strictJSON
			}
			if cmd.Flags().Changed("log-level") {
				p.LogLevel = logLevel
			}
			cfg.Profiles[name] = p

			if err := SaveUserConfig(cfg); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Profile %q saved to %s\n", name, ConfigPath())
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Profile name (required)")
	cmd.Flags().StringVar(&separator, "separator", "", "Field separator")
	cmd.Flags().StringArrayVar(&banners, "banner", nil, "Banner line prefix to drop (repeatable, replaces the list)")
	cmd.Flags().BoolVar(&strictJSON, "strict-json", false, "Treat input as plain JSON")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Log level")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newConfigUseProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use-profile <name>",
		Short: "Set the active configuration profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadUserConfig()
			if err != nil {
				return fmt.Errorf("no config found: %w", err)
			}
			name := args[0]
			if _, ok := cfg.Profiles[name]; !ok {
				return fmt.Errorf("profile %q not found", name)
			}
			cfg.CurrentProfile = name
			if err := SaveUserConfig(cfg); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Active profile set to %q\n", name)
			return nil
		},
	}
}
