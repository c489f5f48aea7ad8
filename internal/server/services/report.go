package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/learnprogress/internal/common"
	"github.com/dmitrijs2005/learnprogress/internal/logging"
	sc "github.com/dmitrijs2005/learnprogress/internal/server/config"
	"github.com/dmitrijs2005/learnprogress/internal/server/models"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const reportLinkValidity = 15 * time.Minute

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}

	nowFunc = time.Now
)

// AccountLister is the part of AccountService the report needs.
type AccountLister interface {
	ListAccounts(ctx context.Context) ([]*models.AccountSummary, error)
}

// Report is the exported snapshot.
type Report struct {
	GeneratedAt time.Time                `json:"generatedAt"`
	Accounts    []*models.AccountSummary `json:"accounts"`
}

// ExportedReport locates an uploaded report.
type ExportedReport struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// ReportService uploads account listings to S3-compatible object storage.
type ReportService struct {
	accounts AccountLister
	config   *sc.Config
	log      logging.Logger
}

func NewReportService(accounts AccountLister, config *sc.Config, log logging.Logger) *ReportService {
	return &ReportService{
		accounts: accounts,
		config:   config,
		log:      log.With("module", "reports"),
	}
}

// ReportStorageKey builds the object key for a report generated at d.
func ReportStorageKey(d time.Time) string {
	return fmt.Sprintf("reports/%04d/%02d/%02d/%v.json", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *ReportService) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.config.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// ExportReport uploads the current account listing as JSON and returns its
// key together with a short-lived download link.
func (s *ReportService) ExportReport(ctx context.Context) (*ExportedReport, error) {
	list, err := s.accounts.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}

	now := nowFunc().UTC()
	body, err := json.Marshal(Report{GeneratedAt: now, Accounts: list})
	if err != nil {
		return nil, fmt.Errorf("%w: encode report: %w", common.ErrorInternal, err)
	}

	client, err := s.getClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: storage client: %w", common.ErrorInternal, err)
	}

	bucket := s.config.S3Bucket
	key := ReportStorageKey(now)

	if _, err := putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	}); err != nil {
		return nil, fmt.Errorf("%w: upload report: %w", common.ErrorInternal, err)
	}

	req, err := presignGetObject(newS3PresignClient(client), ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(reportLinkValidity))
	if err != nil {
		return nil, fmt.Errorf("%w: presign report: %w", common.ErrorInternal, err)
	}

	s.log.Info(ctx, "report exported", "key", key, "accounts", len(list))
	return &ExportedReport{Key: key, URL: req.URL}, nil
}
