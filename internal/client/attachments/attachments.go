// Package attachments resolves visit attachments to time-limited download
// links. Files live in an S3-compatible bucket; links are presigned locally
// and nothing is uploaded or downloaded by the client.
package attachments

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/fieldvisits/internal/client/models"
)

const DefaultLinkTTL = 15 * time.Minute

var (
	ErrNoAttachment  = errors.New("visit has no attachment")
	ErrNotConfigured = errors.New("attachment storage is not configured")
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

type Config struct {
	Bucket   string
	Region   string
	Endpoint string
	// AccessKey and SecretKey are optional; without them the default AWS
	// credential chain is used.
	AccessKey string
	SecretKey string
	TTL       time.Duration
}

type Linker struct {
	cfg Config

	mu sync.Mutex
	pc *s3.PresignClient
}

func NewLinker(cfg Config) *Linker {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultLinkTTL
	}
	return &Linker{cfg: cfg}
}

// Link returns a URL for the attachment of v. Attachments already stored as
// absolute http(s) URLs are returned unchanged.
func (l *Linker) Link(ctx context.Context, v models.Visit) (string, error) {
	if !v.HasAttachment() {
		return "", ErrNoAttachment
	}

	key := strings.TrimSpace(v.AttachmentFile)
	if strings.HasPrefix(key, "http://") || strings.HasPrefix(key, "https://") {
		return key, nil
	}

	if l.cfg.Bucket == "" {
		return "", ErrNotConfigured
	}

	pc, err := l.presignClient(ctx)
	if err != nil {
		return "", err
	}

	bucket := l.cfg.Bucket
	key = strings.TrimPrefix(key, "/")

	req, err := presignGetObject(pc, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(l.cfg.TTL))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}

func (l *Linker) presignClient(ctx context.Context) (*s3.PresignClient, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.pc != nil {
		return l.pc, nil
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(l.cfg.Region)}
	if l.cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			l.cfg.AccessKey,
			l.cfg.SecretKey,
			"",
		)))
	}

	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if l.cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(l.cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	l.pc = newS3PresignClient(client)
	return l.pc, nil
}
