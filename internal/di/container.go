package di

import (
	"go.uber.org/dig"

	"github.com/mikey/lead-qualifier/internal/config"
	"github.com/mikey/lead-qualifier/internal/core"
	"github.com/mikey/lead-qualifier/internal/factory"
	"github.com/mikey/lead-qualifier/internal/logging"
	"github.com/mikey/lead-qualifier/internal/ports"
	"github.com/mikey/lead-qualifier/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	if err := registerServices(container); err != nil {
		return nil, err
	}
	return container, nil
}

// registerServices registers everything that depends on *config.Config
func registerServices(container *dig.Container) error {
	// Register logger
	if err := container.Provide(logging.NewAtomicLevel); err != nil {
		return err
	}
	if err := container.Provide(logging.InitLogger); err != nil {
		return err
	}

	// Register factories
	if err := container.Provide(factory.NewStoreFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewNotifierFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewServerFactory); err != nil {
		return err
	}

	// Register text processor
	if err := container.Provide(utils.NewTextProcessor); err != nil {
		return err
	}

	// Register store, exposed as both the entry store and the notification log
	if err := container.Provide(func(f *factory.StoreFactory) (factory.Store, error) {
		return f.CreateStore()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(s factory.Store) core.EntryStore { return s }); err != nil {
		return err
	}
	if err := container.Provide(func(s factory.Store) core.NotificationLog { return s }); err != nil {
		return err
	}

	// Register dispatcher
	if err := container.Provide(func(f *factory.NotifierFactory) (*core.Dispatcher, error) {
		return f.CreateDispatcher()
	}); err != nil {
		return err
	}

	// Register pipeline options
	if err := container.Provide(func(cfg *config.Config) (core.PipelineOptions, error) {
		p, err := cfg.GetPipeline()
		if err != nil {
			return core.PipelineOptions{}, err
		}
		return core.PipelineOptions{
			BaseEntries:  p.BaseEntries,
			BonusEntries: p.BonusEntries,
			Mode:         core.ReconcileMode(p.ReconcileMode),
		}, nil
	}); err != nil {
		return err
	}

	// Register qualification service
	if err := container.Provide(core.NewQualificationService); err != nil {
		return err
	}

	// Register submission server
	if err := container.Provide(func(f *factory.ServerFactory) (ports.SubmissionServer, error) {
		return f.CreateServer()
	}); err != nil {
		return err
	}

	return nil
}

// BuildContainerWithConfig builds a container around an existing configuration
func BuildContainerWithConfig(cfg *config.Config) (*dig.Container, error) {
	container := dig.New()
	if err := container.Provide(func() *config.Config { return cfg }); err != nil {
		return nil, err
	}
	if err := registerServices(container); err != nil {
		return nil, err
	}
	return container, nil
}
