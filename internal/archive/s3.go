package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/pipeline"
)

// Минимум от клиента S3, который нужен архиву
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archiver складывает результаты запусков JSON-файлами:
// <prefix>/<sector>/<YYYY-MM-DD>/<run_id>.json
type S3Archiver struct {
	client objectPutter
	bucket string
	prefix string
}

func NewS3Archiver(ctx context.Context, bucket, prefix, region string) (*S3Archiver, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	return newS3Archiver(s3.NewFromConfig(cfg), bucket, prefix), nil
}

func newS3Archiver(client objectPutter, bucket, prefix string) *S3Archiver {
	return &S3Archiver{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

// Archive возвращает ключ записанного объекта
func (a *S3Archiver) Archive(ctx context.Context, result pipeline.Result) (string, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode run %s: %w", result.RunID, err)
	}

	key := a.Key(result)

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload run %s to S3: %w", result.RunID, err)
	}

	return key, nil
}

func (a *S3Archiver) Key(result pipeline.Result) string {
	return path.Join(a.prefix, result.Sector.ID, result.StartedAt.UTC().Format("2006-01-02"), result.RunID+".json")
}
