package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/piwi3910/marcenapp/internal/gcode"
	"github.com/piwi3910/marcenapp/internal/model"
	"github.com/piwi3910/marcenapp/internal/project"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or create the config file",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective config, environment overrides included",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		view, err := configView(cfg)
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(view); err != nil {
			return err
		}
		return enc.Close()
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default values",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configProfilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the G-code post-processor profiles",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		for _, name := range gcode.ProfileNames() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", name, gcode.GetProfile(name).Description)
		}
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing config file")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configProfilesCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	if !configForce {
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("%s already exists, use --force to overwrite", configPath)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	if err := project.SaveAppConfig(configPath, model.DefaultAppConfig()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", configPath)
	return nil
}

// configView keys the config by its file keys for display.
func configView(c model.AppConfig) (map[string]any, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	var view map[string]any
	if err := json.Unmarshal(data, &view); err != nil {
		return nil, err
	}
	return view, nil
}
