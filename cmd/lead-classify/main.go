package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mikey/lead-qualifier/internal/adapters/cli"
	"github.com/mikey/lead-qualifier/internal/di"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	flags := &di.CLIFlags{}

	root := &cobra.Command{
		Use:   "lead-classify",
		Short: "Classify survey submissions without touching any store",
	}
	root.PersistentFlags().BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	root.PersistentFlags().BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")

	classify := &cobra.Command{
		Use:   "classify",
		Short: "Print tags, score, band, variant and SMS template for one JSON submission",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := di.BuildCLIContainer(flags, cmd.OutOrStdout())
			if err != nil {
				return fmt.Errorf("failed to build dependency container: %w", err)
			}
			return container.Invoke(func(logger *zap.Logger, classifier *cli.Classifier) error {
				defer logger.Sync()

				var in io.Reader = cmd.InOrStdin()
				if flags.InputFile != "" {
					f, err := os.Open(flags.InputFile)
					if err != nil {
						logger.Error("Failed to open input file", zap.Error(err))
						return err
					}
					defer f.Close()
					in = f
				}

				_, err := classifier.Run(in)
				return err
			})
		},
	}
	classify.Flags().StringVar(&flags.InputFile, "file", "", "Input submission file (use stdin if not specified)")

	root.AddCommand(classify)
	return root
}
