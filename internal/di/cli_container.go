package di

import (
	"io"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/lead-qualifier/internal/adapters/cli"
	"github.com/mikey/lead-qualifier/internal/logging"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	InputFile string
	Verbose   bool
	JSONLog   bool
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags, out io.Writer) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register classifier
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) *cli.Classifier {
		return cli.NewClassifier(logger, out, flags.Verbose)
	}); err != nil {
		return nil, err
	}

	return container, nil
}
