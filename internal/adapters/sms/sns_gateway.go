package sms

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"go.uber.org/zap"
)

// Publisher is the subset of the SNS client used for SMS delivery
type Publisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSGateway implements core.SMSGateway using Amazon SNS direct-to-phone publishing
type SNSGateway struct {
	client   Publisher
	senderID string
	smsType  string
	logger   *zap.Logger
}

// NewSNSGateway creates a new SNS gateway
func NewSNSGateway(client Publisher, senderID, smsType string, logger *zap.Logger) *SNSGateway {
	if smsType == "" {
		smsType = "Transactional"
	}
	return &SNSGateway{
		client:   client,
		senderID: senderID,
		smsType:  smsType,
		logger:   logger,
	}
}

// SendSMS publishes a message to an E.164 phone number
func (g *SNSGateway) SendSMS(ctx context.Context, to, body string) (string, error) {
	attrs := map[string]types.MessageAttributeValue{
		"AWS.SNS.SMS.SMSType": {
			DataType:    aws.String("String"),
			StringValue: aws.String(g.smsType),
		},
	}
	if g.senderID != "" {
		attrs["AWS.SNS.SMS.SenderID"] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(g.senderID),
		}
	}

	out, err := g.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber:       aws.String(to),
		Message:           aws.String(body),
		MessageAttributes: attrs,
	})
	if err != nil {
		return "", fmt.Errorf("failed to publish SMS: %w", err)
	}

	id := aws.ToString(out.MessageId)
	g.logger.Debug("Published SMS via SNS", zap.String("message_id", id))
	return id, nil
}
