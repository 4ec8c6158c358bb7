package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/casarom/salesapi/internal/domain"
)

// S3ClientConfig holds configuration for S3Client
type S3ClientConfig struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UsePathStyle    bool
}

// S3Client archives accepted quotes to S3-compatible storage (e.g., RustFS).
// Archiving is best effort: the quote of record lives in Postgres.
type S3Client struct {
	client            *s3.Client
	presignClient     *s3.PresignClient
	bucket            string
	downloadURLExpiry time.Duration
}

// NewS3Client creates a new S3Client with the given configuration
func NewS3Client(ctx context.Context, cfg S3ClientConfig) (*S3Client, error) {
	customResolver := aws.EndpointResolverWithOptionsFunc(
		func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			if cfg.Endpoint != "" {
				return aws.Endpoint{
					URL:               cfg.Endpoint,
					HostnameImmutable: true,
				}, nil
			}
			return aws.Endpoint{}, &aws.EndpointNotFoundError{}
		},
	)

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
		config.WithEndpointResolverWithOptions(customResolver),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
	})

	presignClient := s3.NewPresignClient(client)

	return &S3Client{
		client:            client,
		presignClient:     presignClient,
		bucket:            cfg.Bucket,
		downloadURLExpiry: 1 * time.Hour,
	}, nil
}

type archivedQuoteLine struct {
	LineNumber int            `json:"line_number"`
	SKU        string         `json:"sku"`
	Name       string         `json:"name"`
	Qty        int            `json:"qty"`
	UnitPrice  float64        `json:"unit_price"`
	LineTotal  float64        `json:"line_total"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

type archivedQuote struct {
	QuoteID           string              `json:"quote_id"`
	CustomerRef       string              `json:"customer_ref"`
	ValidUntil        time.Time           `json:"valid_until"`
	ListTotal         float64             `json:"list_total"`
	TransferTotal     float64             `json:"transfer_total"`
	InstallmentsTotal float64             `json:"installments_total"`
	Notes             []string            `json:"notes"`
	CreatedAt         time.Time           `json:"created_at"`
	Lines             []archivedQuoteLine `json:"lines"`
}

// QuoteKey returns the object key under which a quote is archived.
func QuoteKey(quoteID string) string {
	return fmt.Sprintf("quotes/%s.json", quoteID)
}

// ArchiveQuote writes a JSON document of the accepted quote. Overwrites are
// harmless: quotes are immutable, so the document is always the same.
func (c *S3Client) ArchiveQuote(ctx context.Context, quote *domain.Quote) error {
	lines := make([]archivedQuoteLine, len(quote.Lines))
	for i, line := range quote.Lines {
		lines[i] = archivedQuoteLine{
			LineNumber: line.LineNumber,
			SKU:        line.SKU,
			Name:       line.Name,
			Qty:        line.Qty,
			UnitPrice:  line.UnitPrice,
			LineTotal:  line.LineTotal,
			Attributes: line.Attributes,
		}
	}

	doc := archivedQuote{
		QuoteID:           quote.ID,
		CustomerRef:       quote.CustomerRef,
		ValidUntil:        quote.ValidUntil,
		ListTotal:         quote.ListTotal,
		TransferTotal:     quote.TransferTotal,
		InstallmentsTotal: quote.InstallmentsTotal,
		Notes:             quote.Notes,
		CreatedAt:         quote.CreatedAt,
		Lines:             lines,
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode quote %s: %w", quote.ID, err)
	}

	_, err = c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(QuoteKey(quote.ID)),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to archive quote %s: %w", quote.ID, err)
	}

	return nil
}

// GenerateDownloadURL creates a presigned URL for downloading an archived quote
func (c *S3Client) GenerateDownloadURL(ctx context.Context, quoteID string) (string, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(QuoteKey(quoteID)),
	}

	presignedReq, err := c.presignClient.PresignGetObject(ctx, input, func(opts *s3.PresignOptions) {
		opts.Expires = c.downloadURLExpiry
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate download URL: %w", err)
	}

	return presignedReq.URL, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (c *S3Client) EnsureBucket(ctx context.Context) error {
	_, err := c.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(c.bucket),
	})
	if err == nil {
		return nil
	}

	_, err = c.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(c.bucket),
	})
	if err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	return nil
}
