// Package archive keeps source documents and their processing results in an
// S3-compatible bucket.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"

	"github.com/joseph-ayodele/invoice-tracker/internal/common"
	"github.com/joseph-ayodele/invoice-tracker/internal/entity"
)

// PutObjectAPI is the part of *s3.Client the archive uses.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Archive struct {
	client PutObjectAPI
	bucket string
	now    func() time.Time
	logger *slog.Logger
}

func New(client PutObjectAPI, bucket string, logger *slog.Logger) *Archive {
	if logger == nil {
		logger = slog.Default()
	}
	return &Archive{client: client, bucket: bucket, now: time.Now, logger: logger}
}

// NewS3 builds the client from cfg. Static keys win; otherwise the default
// AWS credential chain is used.
func NewS3(ctx context.Context, cfg common.ArchiveConfig, logger *slog.Logger) (*Archive, error) {
	if cfg.Bucket == "" {
		return nil, common.ConfigError("ARCHIVE_BUCKET is not set")
	}
	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	var client *s3.Client
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts := s3.Options{
			Region:      region,
			Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		}
		if cfg.Endpoint != "" {
			opts.BaseEndpoint = aws.String(cfg.Endpoint)
			opts.UsePathStyle = true
		}
		client = s3.New(opts)
	} else {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Endpoint)
				o.UsePathStyle = true
			}
		})
	}
	return New(client, cfg.Bucket, logger), nil
}

// Keys are <yyyy/mm/dd>/<id>/<filename> and <yyyy/mm/dd>/<id>/result.json.
func (a *Archive) keys(id, filename string) (doc, result string) {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" || base == ".." {
		base = "document"
	}
	prefix := path.Join(a.now().UTC().Format("2006/01/02"), id)
	return path.Join(prefix, base), path.Join(prefix, "result.json")
}

// Store uploads the document and, when present, the processed invoice.
// It returns the document key.
func (a *Archive) Store(ctx context.Context, id, filename string, data []byte, processed *entity.ProcessedInvoice) (string, error) {
	docKey, resultKey := a.keys(id, filename)

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(docKey),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(mimetype.Detect(data).String()),
	})
	if err != nil {
		a.logger.Error("archive.put.failed", "key", docKey, "error", err)
		return "", fmt.Errorf("archive put object: %w", err)
	}

	if processed != nil {
		body, err := json.Marshal(processed)
		if err != nil {
			return "", fmt.Errorf("encode result: %w", err)
		}
		_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(a.bucket),
			Key:         aws.String(resultKey),
			Body:        bytes.NewReader(body),
			ContentType: aws.String("application/json"),
		})
		if err != nil {
			a.logger.Error("archive.put.failed", "key", resultKey, "error", err)
			return "", fmt.Errorf("archive put result: %w", err)
		}
	}
	a.logger.Info("archive.put.ok", "bucket", a.bucket, "key", docKey, "bytes", len(data))
	return docKey, nil
}
