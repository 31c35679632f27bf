package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/huangang/jokecli/internal/services"
	"github.com/huangang/jokecli/pkg/response"
)

type streams struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

// RootFlags holds the global options plus the generation flags of the root command.
type RootFlags struct {
	ConfigPath string
	LogLevel   string
	Profile    string
	Region     string
	Provider   string
	Model      string

	Category   string
	NoFeedback bool
	Stats      bool
}

func (f *RootFlags) BindPersistentFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.ConfigPath, "config", f.ConfigPath, "Configuration file (default ~/.joke_cli/config.yaml or $JOKE_CLI_CONFIG)")
	fs.StringVar(&f.LogLevel, "log-level", f.LogLevel, "Log level (debug,info,warn,error)")
	fs.StringVarP(&f.Profile, "profile", "p", f.Profile, "AWS profile to use for authentication")
	fs.StringVar(&f.Region, "region", f.Region, "AWS region for Bedrock")
	fs.StringVar(&f.Provider, "provider", f.Provider, "Model provider ("+strings.Join(services.Providers, ", ")+")")
	fs.StringVarP(&f.Model, "model", "m", f.Model, "Model identifier to use")
}

func (f *RootFlags) BindFlags(fs *pflag.FlagSet, categories []string) {
	fs.StringVarP(&f.Category, "category", "c", f.Category, "Joke category to generate. Available: "+strings.Join(categories, ", "))
	fs.BoolVar(&f.NoFeedback, "no-feedback", f.NoFeedback, "Skip feedback collection after displaying the joke")
	fs.BoolVarP(&f.Stats, "stats", "s", f.Stats, "Display feedback statistics and exit")
}

func NewRootCommand(s streams) *cobra.Command {
	f := &RootFlags{}
	catalog := services.NewPromptCatalog()

	cmd := &cobra.Command{
		Use:   "joke",
		Short: "Generate jokes using AI models",
		Long: `Generate a joke from an AI model, rate it, and keep track of which
categories land best.

Examples:
  joke                         Generate a random joke
  joke --category programming  Generate a programming joke
  joke --stats                 Show feedback statistics
  joke --no-feedback           Skip feedback collection

Available categories: ` + strings.Join(catalog.Categories(), ", "),
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateRootFlags(cmd, f, catalog); err != nil {
				return err
			}

			a, err := bootstrap(f, s)
			if err != nil {
				return err
			}
			if f.Stats {
				return a.printStatistics()
			}
			return a.generate(cmd.Context(), f)
		},
	}
	cmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")
	cmd.SetIn(s.in)
	cmd.SetOut(s.out)
	cmd.SetErr(s.errOut)
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return response.NewUsageError(err.Error(), fmt.Sprintf("Run '%s --help' for usage.", c.CommandPath()))
	})

	f.BindPersistentFlags(cmd.PersistentFlags())
	f.BindFlags(cmd.Flags(), catalog.Categories())

	cmd.AddCommand(
		NewStatsCommand(f, s),
		NewExportCommand(f, s),
		NewModelsCommand(f, s),
		NewCategoriesCommand(catalog, s),
		NewResetCommand(f, s),
		NewConfigCommand(f, s),
	)
	return cmd
}

func validateRootFlags(cmd *cobra.Command, f *RootFlags, catalog *services.PromptCatalog) error {
	if f.Stats && cmd.Flags().Changed("category") {
		return response.NewUsageError("Cannot specify --category with --stats option",
			"Use either --stats to view statistics OR --category to generate a joke, not both.")
	}
	if f.Stats && f.NoFeedback {
		return response.NewUsageError("Cannot specify --no-feedback with --stats option",
			"The --stats option only displays statistics and doesn't generate jokes.")
	}
	if f.Category != "" && !catalog.IsValid(f.Category) {
		return appError(&services.InvalidCategoryError{Category: f.Category, Valid: catalog.Categories()})
	}
	return nil
}

// appError converts err into the CLI's exit-code carrying error.
func appError(err error) error {
	info := services.DescribeError(err)
	return response.New(info.ExitCode, info.Message, info.Guidance...)
}

func (a *app) generate(ctx context.Context, f *RootFlags) error {
	jokes, err := a.jokeService()
	if err != nil {
		return err
	}

	resp := jokes.Generate(ctx, f.Category, services.GenerateOptions{})
	if !resp.Success {
		info := services.DescribeError(resp.Cause)
		guidance := info.Guidance
		if len(guidance) == 0 {
			guidance = []string{"Try running the command again or use a different category."}
		}
		return response.New(info.ExitCode, resp.ErrorMessage, guidance...)
	}

	fmt.Fprintln(a.out, services.FormatJoke(resp))

	if f.NoFeedback {
		return nil
	}
	rating, ok := services.NewRatingPrompter(a.in, a.out).Ask(ctx)
	if !ok {
		return nil
	}
	if jokes.RecordFeedback(resp, rating.Value, rating.Comment) {
		response.Success(a.out, "Thanks for your feedback!")
	} else {
		response.Warning(a.errOut, "Could not save feedback, but the joke was generated successfully.")
	}
	return nil
}

func (a *app) printStatistics() error {
	report, err := a.reportService().StatisticsReport()
	if err != nil {
		return appError(err)
	}
	fmt.Fprintln(a.out, report)
	return nil
}
