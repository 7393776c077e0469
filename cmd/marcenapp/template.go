package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/piwi3910/marcenapp/internal/importer"
	"github.com/piwi3910/marcenapp/internal/model"
	"github.com/piwi3910/marcenapp/internal/project"
)

var (
	templatesPath   string
	templateDesc    string
	templateProject string
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Manage reusable part lists",
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved templates",
	Args:  cobra.NoArgs,
	RunE:  runTemplateList,
}

var templateSaveCmd = &cobra.Command{
	Use:   "save <name> <parts-file>",
	Short: "Save a part list as a template",
	Args:  cobra.ExactArgs(2),
	RunE:  runTemplateSave,
}

var templateApplyCmd = &cobra.Command{
	Use:     "apply <name> <project-file>",
	Short:   "Start a new project file from a template",
	Example: `  marcenapp template apply wardrobe-600 client-a.marcen --project-name "Client A wardrobe"`,
	Args:    cobra.ExactArgs(2),
	RunE:    runTemplateApply,
}

var templateDeleteCmd = &cobra.Command{
	Use:   "delete <name-or-id>",
	Short: "Delete a template",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplateDelete,
}

func init() {
	templateCmd.PersistentFlags().StringVar(&templatesPath, "templates", project.DefaultTemplatePath(), "Template store file")
	templateSaveCmd.Flags().StringVar(&templateDesc, "description", "", "Template description")
	templateApplyCmd.Flags().StringVar(&templateProject, "project-name", "", "Name of the new project (default: template name)")

	templateCmd.AddCommand(templateListCmd)
	templateCmd.AddCommand(templateSaveCmd)
	templateCmd.AddCommand(templateApplyCmd)
	templateCmd.AddCommand(templateDeleteCmd)
	rootCmd.AddCommand(templateCmd)
}

func runTemplateList(cmd *cobra.Command, _ []string) error {
	store, err := project.LoadTemplates(templatesPath)
	if err != nil {
		return err
	}
	if len(store.Templates) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No templates")
		return nil
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPARTS\tDESCRIPTION")
	for _, t := range store.Templates {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", t.ID, t.Name, len(t.Parts), t.Description)
	}
	return tw.Flush()
}

func runTemplateSave(cmd *cobra.Command, args []string) error {
	name, path := args[0], args[1]
	store, err := project.LoadTemplates(templatesPath)
	if err != nil {
		return err
	}
	if store.FindByName(name) != nil {
		return fmt.Errorf("template %q already exists", name)
	}

	j, err := loadJob(path, cfg.NestingSettings(), importer.DefaultOptions())
	if err != nil {
		return err
	}
	t := model.NewProjectTemplate(name, templateDesc, j.Parts, j.Settings)
	store.Add(t)
	if err := project.SaveTemplates(templatesPath, store); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved template %s (%s) with %d parts\n", t.Name, t.ID, len(t.Parts))
	return nil
}

func runTemplateApply(cmd *cobra.Command, args []string) error {
	name, out := args[0], args[1]
	store, err := project.LoadTemplates(templatesPath)
	if err != nil {
		return err
	}
	t := findTemplate(&store, name)
	if t == nil {
		return fmt.Errorf("template %q not found", name)
	}

	projectName := templateProject
	if projectName == "" {
		projectName = t.Name
	}
	if err := project.Save(out, t.ToProject(projectName)); err != nil {
		return fmt.Errorf("saving project: %w", err)
	}
	rememberProject(out)
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s from template %s\n", out, t.Name)
	return nil
}

func runTemplateDelete(cmd *cobra.Command, args []string) error {
	store, err := project.LoadTemplates(templatesPath)
	if err != nil {
		return err
	}
	t := findTemplate(&store, args[0])
	if t == nil {
		return fmt.Errorf("template %q not found", args[0])
	}
	name := t.Name
	store.Remove(t.ID)
	if err := project.SaveTemplates(templatesPath, store); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted template %s\n", name)
	return nil
}

// findTemplate looks a template up by ID first, then by name.
func findTemplate(store *model.TemplateStore, key string) *model.ProjectTemplate {
	if t := store.FindByID(key); t != nil {
		return t
	}
	return store.FindByName(key)
}
