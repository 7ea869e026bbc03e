package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ahrav/go-compare/internal/application"
)

func newTemplateCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "template",
		Aliases: []string{"tpl"},
		Short:   "Manage reusable criteria templates",
		Long: `Templates are named snapshots of a criteria configuration. Saving a
template copies the criteria of a stored comparative; applying one replaces a
comparative's criteria with a fresh copy under new IDs. Names are matched
case-insensitively.`,
	}

	cmd.AddCommand(newTemplateListCommand(opts))
	cmd.AddCommand(newTemplateSaveCommand(opts))
	cmd.AddCommand(newTemplateApplyCommand(opts))
	cmd.AddCommand(newTemplateLoadCommand(opts))
	cmd.AddCommand(newTemplateDeleteCommand(opts))
	cmd.AddCommand(newTemplateValidateCommand())

	return cmd
}

func newTemplateListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored template names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, opts, func(ctx context.Context, rt *runtime) error {
				names, err := rt.service.Templates(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(names) == 0 {
					fmt.Fprintln(out, "No templates stored.") //nolint:errcheck
					return nil
				}
				for _, name := range names {
					fmt.Fprintln(out, name) //nolint:errcheck
				}
				return nil
			})
		},
	}
}

func newTemplateSaveCommand(opts *rootOptions) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "save <comparative-id> <name>",
		Short: "Save a stored comparative's criteria as a template",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, func(ctx context.Context, rt *runtime) error {
				t, err := rt.service.SaveTemplate(ctx, args[0], args[1], description)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved template %q with %d criteria\n", t.Name, len(t.Criteria)) //nolint:errcheck
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Template description")
	return cmd
}

func newTemplateApplyCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "apply <comparative-id> <name>",
		Short: "Replace a stored comparative's criteria with a template",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, func(ctx context.Context, rt *runtime) error {
				c, res, err := rt.service.ApplyTemplate(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				printMutation(cmd.OutOrStdout(), c, res)
				return nil
			})
		},
	}
}

func newTemplateLoadCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "load <dir>",
		Short: "Validate and store every *.yaml template in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, func(ctx context.Context, rt *runtime) error {
				names, err := rt.loader.LoadDir(ctx, args[0], rt.templates)
				out := cmd.OutOrStdout()
				for _, name := range names {
					fmt.Fprintf(out, "Loaded %s\n", name) //nolint:errcheck
				}
				return err
			})
		},
	}
}

func newTemplateDeleteCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a stored template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, func(ctx context.Context, rt *runtime) error {
				return rt.templates.Delete(ctx, args[0])
			})
		},
	}
}

func newTemplateValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <template.yaml>...",
		Short: "Check template files without storing them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loader, err := application.NewTemplateLoader()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, path := range args {
				t, err := loader.LoadFromFile(cmd.Context(), path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				fmt.Fprintf(out, "%s: template %q is valid (%d criteria)\n", path, t.Name, len(t.Criteria)) //nolint:errcheck
			}
			return nil
		},
	}
}
