package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/huangang/jokecli/internal/config"
	"github.com/huangang/jokecli/internal/services"
	"github.com/huangang/jokecli/pkg/response"
)

func NewStatsCommand(f *RootFlags, s streams) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Display feedback statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(f, s)
			if err != nil {
				return err
			}
			return a.printStatistics()
		},
	}
}

func NewExportCommand(f *RootFlags, s streams) *cobra.Command {
	return &cobra.Command{
		Use:   "export [path]",
		Short: "Write a snapshot of all feedback to a JSON file",
		Long: `Write all feedback entries and the derived statistics to path. Without a
path a timestamped feedback_export_YYYYMMDD_HHMMSS.json is created next to the
feedback file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(f, s)
			if err != nil {
				return err
			}

			var target string
			if len(args) == 1 {
				target = args[0]
			}
			written, err := a.store.ExportTo(target)
			if err != nil {
				return appError(err)
			}
			response.Info(s.out, "Feedback exported to "+written)
			return nil
		},
	}
}

func NewModelsCommand(f *RootFlags, s streams) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the models the configured provider can serve",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(f, s)
			if err != nil {
				return err
			}
			gateway, err := a.aiService()
			if err != nil {
				return err
			}

			list, err := gateway.ListModels(cmd.Context())
			if err != nil {
				return appError(err)
			}
			if len(list) == 0 {
				response.Info(s.out, "No models available from "+gateway.Provider())
				return nil
			}

			w := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tPROVIDER")
			for _, m := range list {
				fmt.Fprintf(w, "%s\t%s\t%s\n", m.ID, m.Name, m.Provider)
			}
			return w.Flush()
		},
	}
}

func NewCategoriesCommand(catalog *services.PromptCatalog, s streams) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the available joke categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(s.out, "Available categories:")
			for _, c := range catalog.Categories() {
				fmt.Fprintf(s.out, "  - %s\n", c)
			}
			return nil
		},
	}
}

func NewResetCommand(f *RootFlags, s streams) *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all stored feedback",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return response.NewUsageError("Refusing to delete feedback without confirmation",
					"Run 'joke export' first if you want a backup.",
					"Then run 'joke reset --yes'.")
			}

			a, err := bootstrap(f, s)
			if err != nil {
				return err
			}
			if err := a.store.ClearAll(); err != nil {
				return appError(err)
			}
			response.Success(s.out, "All feedback cleared.")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&confirmed, "yes", "y", false, "Confirm deletion of all feedback")
	return cmd
}

func NewConfigCommand(f *RootFlags, s streams) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := f.ConfigPath
			if path == "" {
				path = config.DefaultPath()
			}
			if _, err := os.Stat(path); err == nil && !force {
				return response.NewUsageError("Configuration file already exists: "+path,
					"Pass --force to overwrite it.")
			}

			if err := config.DefaultConfig().Save(path); err != nil {
				return response.New(services.ExitGeneralError, fmt.Sprintf("Failed to write configuration: %v", err))
			}
			response.Info(s.out, "Wrote default configuration to "+path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	cmd.AddCommand(initCmd)
	return cmd
}
