package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mikey/lead-qualifier/internal/core"
	"go.uber.org/zap"
)

// Classifier classifies a single JSON submission offline and prints the result
type Classifier struct {
	logger  *zap.Logger
	out     io.Writer
	verbose bool
}

// NewClassifier creates a new CLI classifier
func NewClassifier(logger *zap.Logger, out io.Writer, verbose bool) *Classifier {
	return &Classifier{
		logger:  logger,
		out:     out,
		verbose: verbose,
	}
}

// Run decodes a submission from r, classifies it and prints a summary
func (c *Classifier) Run(r io.Reader) (*core.Classification, error) {
	var sub core.Submission
	if err := json.NewDecoder(r).Decode(&sub); err != nil {
		c.logger.Error("Failed to decode submission", zap.Error(err))
		return nil, fmt.Errorf("failed to decode submission: %w", err)
	}
	c.logger.Debug("Classifying submission", zap.String("email", sub.Email))

	fmt.Fprintf(c.out, "\n=== Submission ===\n")
	fmt.Fprintf(c.out, "Email: %s\n", sub.Email)
	fmt.Fprintf(c.out, "Name: %s\n", sub.Name)
	if c.verbose {
		raw, _ := json.MarshalIndent(sub.Answers, "", "  ")
		fmt.Fprintf(c.out, "\nAnswers:\n%s\n", raw)
	}

	result := core.Classify(&sub)

	tags := result.Tags.Sorted()
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = string(t)
	}

	fmt.Fprintf(c.out, "\n=== Classification ===\n")
	fmt.Fprintf(c.out, "Score: %d\n", result.Score)
	fmt.Fprintf(c.out, "Band: %s\n", result.Band)
	fmt.Fprintf(c.out, "Variant: %s\n", result.Variant)
	fmt.Fprintf(c.out, "SMS template: %s\n", result.SMSTemplate)
	fmt.Fprintf(c.out, "Tags: %s\n", strings.Join(names, ", "))

	return result, nil
}
