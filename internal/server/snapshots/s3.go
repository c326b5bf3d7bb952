// Package snapshots exports archived accounts as JSON documents to
// S3-compatible object storage.
package snapshots

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/gophaccount/internal/server/models"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

type Config struct {
	Bucket       string
	Region       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
}

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Exporter writes one object per archived user.
type S3Exporter struct {
	bucket string
	client objectPutter
}

// NewS3Exporter builds an exporter with static credentials. A non-empty
// BaseEndpoint (MinIO and friends) switches to path-style addressing.
func NewS3Exporter(ctx context.Context, cfg Config) (*S3Exporter, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Exporter{bucket: cfg.Bucket, client: client}, nil
}

// ObjectKey is archive/users/YYYY/MM/DD/<user-id>.json, dated by the
// archival time.
func ObjectKey(rec *models.UserRecord) string {
	d := rec.ArchivedAt.UTC()
	return fmt.Sprintf("archive/users/%04d/%02d/%02d/%s.json", d.Year(), d.Month(), d.Day(), rec.User.ID)
}

func (e *S3Exporter) Export(ctx context.Context, rec *models.UserRecord) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}

	key := ObjectKey(rec)
	_, err = e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", e.bucket, key, err)
	}
	return nil
}
