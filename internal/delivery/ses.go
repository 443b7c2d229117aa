package delivery

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/ignite/partner-console/internal/pkg/logger"
)

// ErrNoContactEmail marks a recipient without a deliverable address.
var ErrNoContactEmail = errors.New("recipient has no contact email")

// SESClient is the subset of the SES v2 client used for delivery.
type SESClient interface {
	SendEmail(ctx context.Context, in *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESDispatcher sends nudges through Amazon SES.
type SESDispatcher struct {
	client    SESClient
	fromEmail string
	fromName  string
	timeout   time.Duration
}

// NewSESClient builds an SES client. Static credentials are used when both
// keys are set; otherwise the default AWS chain applies.
func NewSESClient(ctx context.Context, region, accessKey, secretKey string) (*sesv2.Client, error) {
	if region == "" {
		region = "us-east-1"
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if accessKey != "" && secretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return sesv2.NewFromConfig(cfg), nil
}

// NewSESDispatcher creates an SES-backed dispatcher.
func NewSESDispatcher(client SESClient, fromEmail, fromName string) *SESDispatcher {
	return &SESDispatcher{client: client, fromEmail: fromEmail, fromName: fromName}
}

// SetTimeout bounds each SendEmail call. Zero leaves calls bounded only by
// the dispatch context.
func (d *SESDispatcher) SetTimeout(timeout time.Duration) {
	d.timeout = timeout
}

func (d *SESDispatcher) from() string {
	if d.fromName == "" {
		return d.fromEmail
	}
	return fmt.Sprintf("%s <%s>", d.fromName, d.fromEmail)
}

// Dispatch sends each message once, in order. Per-message failures land in
// the report; only context cancellation aborts the batch.
func (d *SESDispatcher) Dispatch(ctx context.Context, msgs []Outbound) (*Report, error) {
	report := &Report{Channel: "ses"}
	for _, m := range msgs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.add(d.send(ctx, m))
	}
	return report, nil
}

func (d *SESDispatcher) send(ctx context.Context, m Outbound) Result {
	if m.Email == "" {
		return Result{RecipientID: m.RecipientID, Error: ErrNoContactEmail.Error()}
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(d.from()),
		Destination:      &types.Destination{ToAddresses: []string{m.Email}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(m.Subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(m.Body), Charset: aws.String("UTF-8")},
				},
			},
		},
		EmailTags: []types.MessageTag{
			{Name: aws.String("campaign_id"), Value: aws.String(m.CampaignID)},
			{Name: aws.String("retailer_id"), Value: aws.String(m.RecipientID)},
		},
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	out, err := d.client.SendEmail(ctx, input)
	if err != nil {
		log.Printf("[SES] Failed to send to %s: %v", logger.RedactEmail(m.Email), err)
		return Result{RecipientID: m.RecipientID, Error: err.Error()}
	}

	res := Result{RecipientID: m.RecipientID, Success: true, SentAt: time.Now().UTC()}
	if out != nil && out.MessageId != nil {
		res.MessageID = *out.MessageId
	}
	log.Printf("[SES] Sent to %s (id: %s)", logger.RedactEmail(m.Email), res.MessageID)
	return res
}
