package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"provider-matching-workers/pkg/registry"
)

func newRegistryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect the activity registry the workers validate job input with",
	}

	var path string
	validate := &cobra.Command{
		Use:   "validate",
		Short: "Validate a registry file, or the built-in registry when --path is empty",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := registry.LoadOrDefault(path)
			if err != nil {
				return fmt.Errorf("registry validation failed: %w", err)
			}
			if err := reg.Validate(); err != nil {
				return fmt.Errorf("registry validation failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registry valid: %d activities\n", len(reg.Activities))
			return nil
		},
	}
	validate.Flags().StringVar(&path, "path", "", "registry file to validate")

	var out string
	export := &cobra.Command{
		Use:   "export",
		Short: "Write the built-in registry to a file for editing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if out == "" {
				return printJSON(cmd.OutOrStdout(), registry.Default())
			}
			if err := registry.Default().Save(out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registry written to %s\n", out)
			return nil
		},
	}
	export.Flags().StringVarP(&out, "out", "o", "", "destination file (stdout when empty)")

	cmd.AddCommand(validate, export)
	return cmd
}
