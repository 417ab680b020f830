package factory

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/mikey/lead-qualifier/internal/adapters/email"
	"github.com/mikey/lead-qualifier/internal/adapters/sms"
	"github.com/mikey/lead-qualifier/internal/config"
	"github.com/mikey/lead-qualifier/internal/core"
	"github.com/mikey/lead-qualifier/internal/suppression"
	"go.uber.org/zap"
)

// NotifierFactory creates the outbound gateways and the dispatcher
type NotifierFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewNotifierFactory creates a new notifier factory
func NewNotifierFactory(cfg *config.Config, logger *zap.Logger) *NotifierFactory {
	return &NotifierFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateSMSGateway returns the configured SMS gateway, or nil when SMS is simulated
func (f *NotifierFactory) CreateSMSGateway() (core.SMSGateway, error) {
	smsCfg := f.cfg.GetSMS()

	switch smsCfg.Provider {
	case "", "simulated":
		f.logger.Info("No SMS provider configured, SMS delivery is simulated")
		return nil, nil
	case "sns":
		opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(smsCfg.Region)}
		if smsCfg.AccessKeyID != "" {
			opts = append(opts, awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(smsCfg.AccessKeyID, smsCfg.SecretAccessKey, ""),
			))
		}

		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
		}

		return sms.NewSNSGateway(sns.NewFromConfig(awsCfg), smsCfg.SenderID, smsCfg.SMSType, f.logger), nil
	default:
		return nil, fmt.Errorf("unsupported SMS provider: %s", smsCfg.Provider)
	}
}

// CreateEmailSender returns the SMTP sender, or nil when email is simulated
func (f *NotifierFactory) CreateEmailSender() (core.EmailSender, error) {
	emailCfg, err := f.cfg.GetEmail()
	if err != nil {
		return nil, err
	}
	if emailCfg.SMTPAddress == "" {
		f.logger.Info("No SMTP relay configured, email delivery is simulated")
		return nil, nil
	}
	return email.NewSMTPSender(
		emailCfg.SMTPAddress,
		emailCfg.From,
		emailCfg.Username,
		emailCfg.Password,
		emailCfg.Timeout,
		f.logger,
	), nil
}

// CreateDispatcher wires the gateways into a dispatcher
func (f *NotifierFactory) CreateDispatcher() (*core.Dispatcher, error) {
	dispatchCfg, err := f.cfg.GetDispatch()
	if err != nil {
		return nil, err
	}
	smsGateway, err := f.CreateSMSGateway()
	if err != nil {
		return nil, err
	}
	emailSender, err := f.CreateEmailSender()
	if err != nil {
		return nil, err
	}

	checker := suppression.NewChecker(f.cfg.GetStringSlice("suppression.domains"), f.logger)

	return core.NewDispatcher(
		smsGateway,
		emailSender,
		checker,
		f.logger,
		dispatchCfg.Timeout,
		dispatchCfg.DefaultCountryCode,
	), nil
}
