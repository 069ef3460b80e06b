package client

import (
	"context"
	"errors"
	"fmt"
	"food-ordering-api/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/rs/zerolog/log"
)

type Mail struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

type Mailer interface {
	Send(ctx context.Context, mail *Mail) error
}

type sesMailerImpl struct {
	client *ses.Client
	sender string
}

func NewSESMailer(ctx context.Context, mailCfg *config.Mail) (Mailer, error) {
	if mailCfg.Sender == "" {
		return nil, errors.New("sender email address is not configured")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(mailCfg.AWSRegion),
	}
	if mailCfg.AWSAccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(mailCfg.AWSAccessKeyID, mailCfg.AWSSecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &sesMailerImpl{
		client: ses.NewFromConfig(awsCfg),
		sender: mailCfg.Sender,
	}, nil
}

func (m *sesMailerImpl) Send(ctx context.Context, mail *Mail) error {
	if mail.To == "" {
		return errors.New("recipient email address is empty")
	}

	body := &types.Body{
		Text: &types.Content{
			Charset: aws.String("UTF-8"),
			Data:    aws.String(mail.TextBody),
		},
	}
	if mail.HTMLBody != "" {
		body.Html = &types.Content{
			Charset: aws.String("UTF-8"),
			Data:    aws.String(mail.HTMLBody),
		}
	}

	input := &ses.SendEmailInput{
		Source: aws.String(m.sender),
		Destination: &types.Destination{
			ToAddresses: []string{mail.To},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Charset: aws.String("UTF-8"),
				Data:    aws.String(mail.Subject),
			},
			Body: body,
		},
	}

	if _, err := m.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("ses send email: %w", err)
	}
	return nil
}

type logMailerImpl struct{}

// NewLogMailer writes outgoing mail to the log instead of delivering it.
func NewLogMailer() Mailer {
	return &logMailerImpl{}
}

func (m *logMailerImpl) Send(ctx context.Context, mail *Mail) error {
	log.Info().
		Str("to", mail.To).
		Str("subject", mail.Subject).
		Str("body", mail.TextBody).
		Msg("mail not delivered, log provider")
	return nil
}
