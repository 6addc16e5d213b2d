// Package blobstore stores sealed binary payloads in S3-compatible object
// storage. Payloads arrive already encrypted; the store never sees plaintext.
package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	sc "minventory/internal/server/config"
)

// BlobStore is the storage surface the item service needs for full-size
// image originals.
type BlobStore interface {
	Put(ctx context.Context, key string, sealed []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

type S3Store struct {
	client *s3.Client
	bucket string
}

// NewS3Store builds a store from the server config. Returns nil when no
// bucket is configured; callers treat a nil store as "keep blobs in the DB".
func NewS3Store(ctx context.Context, cfg *sc.Config) (*S3Store, error) {
	if cfg.S3Bucket == "" {
		return nil, nil
	}

	awscfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser, cfg.S3RootPassword, "")))
	if err != nil {
		return nil, fmt.Errorf("s3 config error: %w", err)
	}

	client := s3.NewFromConfig(awscfg, func(o *s3.Options) {
		if cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		}
		o.UsePathStyle = true
	})

	return &S3Store{client: client, bucket: cfg.S3Bucket}, nil
}

// NewStorageKey returns a user-scoped object key for a new blob.
func NewStorageKey(userID string) string {
	return fmt.Sprintf("users/%s/blobs/%s", userID, uuid.NewString())
}

func (s *S3Store) Put(ctx context.Context, key string, sealed []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(sealed),
	})
	if err != nil {
		return fmt.Errorf("s3 put error: %w", err)
	}
	return nil
}

func (s *S3Store) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 get error: %w", err)
	}
	defer out.Body.Close()

	sealed, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3 read error: %w", err)
	}
	return sealed, nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete error: %w", err)
	}
	return nil
}
