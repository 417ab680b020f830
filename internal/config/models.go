package config

import (
	"fmt"
	"time"
)

// ServerConfig represents the HTTP server configuration
type ServerConfig struct {
	ListenAddress string
}

// StoreConfig represents the entry store configuration
type StoreConfig struct {
	Type       string
	SQLitePath string
	MySQLDSN   string
}

// PipelineConfig represents the qualification pipeline configuration
type PipelineConfig struct {
	BaseEntries   int
	BonusEntries  int
	ReconcileMode string
}

// DispatchConfig represents the notification dispatcher configuration
type DispatchConfig struct {
	Timeout            time.Duration
	DefaultCountryCode string
}

// SMSConfig represents the SMS gateway configuration
type SMSConfig struct {
	Provider        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	SenderID        string
	SMSType         string
}

// EmailConfig represents the SMTP relay configuration
type EmailConfig struct {
	SMTPAddress string
	From        string
	Username    string
	Password    string
	Timeout     time.Duration
}

// GetServer returns the server configuration
func (c *Config) GetServer() ServerConfig {
	return ServerConfig{
		ListenAddress: c.GetString("server.listen_address"),
	}
}

// GetStore returns the store configuration
func (c *Config) GetStore() StoreConfig {
	return StoreConfig{
		Type:       c.GetString("store.type"),
		SQLitePath: c.GetString("store.sqlite_path"),
		MySQLDSN:   c.GetString("store.mysql_dsn"),
	}
}

// GetPipeline returns the pipeline configuration
func (c *Config) GetPipeline() (PipelineConfig, error) {
	cfg := PipelineConfig{
		BaseEntries:   c.GetInt("pipeline.base_entries"),
		BonusEntries:  c.GetInt("pipeline.bonus_entries"),
		ReconcileMode: c.GetString("pipeline.reconcile_mode"),
	}
	if cfg.BaseEntries < 0 || cfg.BonusEntries < 0 {
		return cfg, fmt.Errorf("entry allotments must not be negative: base=%d bonus=%d", cfg.BaseEntries, cfg.BonusEntries)
	}
	switch cfg.ReconcileMode {
	case "atomic", "read_then_write":
	default:
		return cfg, fmt.Errorf("unsupported reconcile mode: %s", cfg.ReconcileMode)
	}
	return cfg, nil
}

// GetDispatch returns the dispatcher configuration
func (c *Config) GetDispatch() (DispatchConfig, error) {
	timeout, err := c.GetDuration("dispatch.timeout")
	if err != nil {
		return DispatchConfig{}, fmt.Errorf("invalid dispatch timeout: %w", err)
	}
	return DispatchConfig{
		Timeout:            timeout,
		DefaultCountryCode: c.GetString("dispatch.default_country_code"),
	}, nil
}

// GetSMS returns the SMS gateway configuration
func (c *Config) GetSMS() SMSConfig {
	return SMSConfig{
		Provider:        c.GetString("sms.provider"),
		Region:          c.GetString("sms.region"),
		AccessKeyID:     c.GetString("sms.access_key_id"),
		SecretAccessKey: c.GetString("sms.secret_access_key"),
		SenderID:        c.GetString("sms.sender_id"),
		SMSType:         c.GetString("sms.sms_type"),
	}
}

// GetEmail returns the SMTP relay configuration
func (c *Config) GetEmail() (EmailConfig, error) {
	timeout, err := c.GetDuration("email.timeout")
	if err != nil {
		return EmailConfig{}, fmt.Errorf("invalid email timeout: %w", err)
	}
	return EmailConfig{
		SMTPAddress: c.GetString("email.smtp_address"),
		From:        c.GetString("email.from"),
		Username:    c.GetString("email.username"),
		Password:    c.GetString("email.password"),
		Timeout:     timeout,
	}, nil
}
