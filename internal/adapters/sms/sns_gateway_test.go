package sms

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePublisher struct {
	input *sns.PublishInput
	err   error
}

func (p *fakePublisher) Publish(ctx context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	p.input = params
	if p.err != nil {
		return nil, p.err
	}
	return &sns.PublishOutput{MessageId: aws.String("sns-42")}, nil
}

func TestSNSGateway_SendSMS(t *testing.T) {
	pub := &fakePublisher{}
	g := NewSNSGateway(pub, "RAFFLE", "", zap.NewNop())

	id, err := g.SendSMS(context.Background(), "+15551234567", "Hi Ana")
	require.NoError(t, err)

	assert.Equal(t, "sns-42", id)
	require.NotNil(t, pub.input)
	assert.Equal(t, "+15551234567", aws.ToString(pub.input.PhoneNumber))
	assert.Equal(t, "Hi Ana", aws.ToString(pub.input.Message))
	assert.Equal(t, "Transactional", aws.ToString(pub.input.MessageAttributes["AWS.SNS.SMS.SMSType"].StringValue))
	assert.Equal(t, "RAFFLE", aws.ToString(pub.input.MessageAttributes["AWS.SNS.SMS.SenderID"].StringValue))
}

func TestSNSGateway_OmitsEmptySenderID(t *testing.T) {
	pub := &fakePublisher{}
	g := NewSNSGateway(pub, "", "Promotional", zap.NewNop())

	_, err := g.SendSMS(context.Background(), "+15551234567", "Hi")
	require.NoError(t, err)

	assert.NotContains(t, pub.input.MessageAttributes, "AWS.SNS.SMS.SenderID")
	assert.Equal(t, "Promotional", aws.ToString(pub.input.MessageAttributes["AWS.SNS.SMS.SMSType"].StringValue))
}

func TestSNSGateway_WrapsPublishError(t *testing.T) {
	cause := errors.New("throttled")
	g := NewSNSGateway(&fakePublisher{err: cause}, "", "", zap.NewNop())

	_, err := g.SendSMS(context.Background(), "+15551234567", "Hi")
	assert.ErrorIs(t, err, cause)
}
