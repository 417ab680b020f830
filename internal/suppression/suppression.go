package suppression

import (
	"strings"

	"go.uber.org/zap"
)

// Checker reports contacts whose domain must never receive outbound messages
type Checker struct {
	domains []string
	logger  *zap.Logger
}

// NewChecker creates a new suppression checker
func NewChecker(domains []string, logger *zap.Logger) *Checker {
	normalizedDomains := make([]string, 0, len(domains))
	for _, domain := range domains {
		if d := strings.ToLower(strings.TrimSpace(domain)); d != "" {
			normalizedDomains = append(normalizedDomains, d)
		}
	}

	if len(normalizedDomains) > 0 && logger != nil {
		logger.Info("Initialized suppression list", zap.Strings("domains", normalizedDomains))
	}

	return &Checker{
		domains: normalizedDomains,
		logger:  logger,
	}
}

// IsSuppressed checks if the contact's domain is on the suppression list
func (c *Checker) IsSuppressed(email string) bool {
	if len(c.domains) == 0 {
		return false
	}

	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return false
	}
	domain := strings.ToLower(email[at+1:])

	for _, suppressed := range c.domains {
		if suppressed == domain {
			if c.logger != nil {
				c.logger.Debug("Domain is suppressed",
					zap.String("domain", domain),
					zap.String("email", email))
			}
			return true
		}
	}

	return false
}
