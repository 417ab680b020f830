package factory

import (
	"github.com/mikey/lead-qualifier/internal/adapters/api"
	"github.com/mikey/lead-qualifier/internal/config"
	"github.com/mikey/lead-qualifier/internal/core"
	"github.com/mikey/lead-qualifier/internal/ports"
	"go.uber.org/zap"
)

// ServerFactory creates submission servers based on configuration
type ServerFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *core.QualificationService
}

// NewServerFactory creates a new server factory
func NewServerFactory(cfg *config.Config, logger *zap.Logger, service *core.QualificationService) *ServerFactory {
	return &ServerFactory{
		cfg:     cfg,
		logger:  logger,
		service: service,
	}
}

// CreateServer creates the HTTP submission server
func (f *ServerFactory) CreateServer() (ports.SubmissionServer, error) {
	return api.NewServer(f.service, f.logger, f.cfg.GetServer().ListenAddress), nil
}
