// Package s3archive keeps a CSV copy of every spreadsheet backup in S3.
package s3archive

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"sort"

	"assetdb/internal/core/config"
	"assetdb/internal/export"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

type uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

type Archive struct {
	uploader uploader
	bucket   string
	prefix   string
	log      *zap.Logger
}

// New returns nil when no bucket is configured.
func New(ctx context.Context, cfg config.BackupConfig, log *zap.Logger) (*Archive, error) {
	if cfg.S3Bucket == "" {
		return nil, nil
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.S3Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.S3Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return &Archive{
		uploader: manager.NewUploader(s3.NewFromConfig(awsCfg)),
		bucket:   cfg.S3Bucket,
		prefix:   cfg.S3Prefix,
		log:      log,
	}, nil
}

// Archive uploads each table as <prefix><name>/<table>.csv.
func (a *Archive) Archive(ctx context.Context, name string, tables map[string][][]string) error {
	names := make([]string, 0, len(tables))
	for table := range tables {
		names = append(names, table)
	}
	sort.Strings(names)

	for _, table := range names {
		var buf bytes.Buffer
		if err := export.WriteCSV(&buf, tables[table]); err != nil {
			return err
		}

		key := objectKey(a.prefix, name, table)
		_, err := a.uploader.Upload(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(a.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(buf.Bytes()),
			ContentType: aws.String("text/csv; charset=utf-8"),
		})
		if err != nil {
			return fmt.Errorf("failed to upload %s: %w", key, err)
		}
		a.log.Debug("archived backup table", zap.String("bucket", a.bucket), zap.String("key", key))
	}
	return nil
}

func objectKey(prefix, name, table string) string {
	return path.Join(prefix, name, table+".csv")
}
