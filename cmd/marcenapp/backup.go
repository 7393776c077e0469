package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/marcenapp/internal/project"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export or restore the config and templates",
}

var backupExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write the config and templates to one backup file",
	Args:  cobra.ExactArgs(1),
	RunE:  runBackupExport,
}

var backupImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Restore the config and templates from a backup file",
	Long: `Replaces the config file and the template store with the contents of
a backup. The current files are overwritten.`,
	Args: cobra.ExactArgs(1),
	RunE: runBackupImport,
}

func init() {
	backupCmd.PersistentFlags().StringVar(&templatesPath, "templates", project.DefaultTemplatePath(), "Template store file")
	backupCmd.AddCommand(backupExportCmd)
	backupCmd.AddCommand(backupImportCmd)
	rootCmd.AddCommand(backupCmd)
}

func runBackupExport(cmd *cobra.Command, args []string) error {
	store, err := project.LoadTemplates(templatesPath)
	if err != nil {
		return err
	}
	if err := project.ExportAllData(args[0], cfg, store); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Backed up config and %d templates to %s\n", len(store.Templates), args[0])
	return nil
}

func runBackupImport(cmd *cobra.Command, args []string) error {
	data, err := project.ImportAllData(args[0])
	if err != nil {
		return err
	}
	if err := project.SaveAppConfig(configPath, data.Config); err != nil {
		return fmt.Errorf("restoring config: %w", err)
	}
	if err := project.SaveTemplates(templatesPath, data.Templates); err != nil {
		return fmt.Errorf("restoring templates: %w", err)
	}
	cfg = data.Config
	fmt.Fprintf(cmd.OutOrStdout(), "Restored backup %s from %s (%d templates)\n",
		data.Version, data.CreatedAt, len(data.Templates.Templates))
	return nil
}
