package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	gonanoid "github.com/matoous/go-nanoid/v2"

	cfg "github.com/tokenpulse/community-api/configs"
)

// ArchiveService stores each curation prompt/response exchange in
// R2-compatible object storage for later inspection. It is optional: when
// the R2 config is absent the service is disabled and every call is a no-op.
type ArchiveService struct {
	config cfg.Config
}

func NewArchiveService(cfg cfg.Config) *ArchiveService {
	return &ArchiveService{config: cfg}
}

func (a *ArchiveService) Enabled() bool {
	return a.config.R2.AccountID != "" && a.config.R2.BucketName != ""
}

func (a *ArchiveService) r2Client(ctx context.Context) (*s3.Client, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(a.config.R2.AccessKey, a.config.R2.SecretKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", a.config.R2.AccountID))
	}), nil
}

type archivedExchange struct {
	Timestamp time.Time `json:"timestamp"`
	Model     string    `json:"model"`
	Prompt    string    `json:"prompt"`
	Response  string    `json:"response"`
}

// ArchiveExchange uploads one exchange as JSON. Failures are the caller's to
// log; archival must never fail a cycle.
func (a *ArchiveService) ArchiveExchange(ctx context.Context, prompt, response string) error {
	if !a.Enabled() {
		return nil
	}

	body, err := json.MarshalIndent(archivedExchange{
		Timestamp: time.Now(),
		Model:     a.config.AnthropicModel,
		Prompt:    prompt,
		Response:  response,
	}, "", "  ")
	if err != nil {
		return err
	}

	suffix, err := gonanoid.New(8)
	if err != nil {
		return err
	}
	key := fmt.Sprintf("exchanges/%s-%s.json", time.Now().Format("2006-01-02T15-04-05"), suffix)

	client, err := a.r2Client(ctx)
	if err != nil {
		return err
	}

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.config.R2.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}
