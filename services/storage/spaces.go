package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// BlobStore is the document byte store. The core only ever sees storage keys;
// the bytes live in an S3-compatible bucket.
type BlobStore struct {
	s3Client *s3.S3
	bucket   string
	endpoint string
}

// Config holds the S3-compatible storage configuration
type Config struct {
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Endpoint  string
}

// ConfigFromEnv reads the storage configuration from the environment
func ConfigFromEnv() Config {
	return Config{
		AccessKey: os.Getenv("BLOB_ACCESS_KEY"),
		SecretKey: os.Getenv("BLOB_SECRET_KEY"),
		Bucket:    os.Getenv("BLOB_BUCKET"),
		Region:    os.Getenv("BLOB_REGION"),
		Endpoint:  os.Getenv("BLOB_ENDPOINT"),
	}
}

// NewBlobStore creates a blob store against an S3-compatible endpoint
func NewBlobStore(config Config) (*BlobStore, error) {
	sess, err := session.NewSession(&aws.Config{
		Credentials: credentials.NewStaticCredentials(
			config.AccessKey,
			config.SecretKey,
			"",
		),
		Endpoint:         aws.String(config.Endpoint),
		Region:           aws.String(config.Region),
		S3ForcePathStyle: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage session: %w", err)
	}

	return &BlobStore{
		s3Client: s3.New(sess),
		bucket:   config.Bucket,
		endpoint: config.Endpoint,
	}, nil
}

// Put uploads bytes under the given key. Documents hold personal data, so
// objects stay private.
func (b *BlobStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := b.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(key),
		Body:        aws.ReadSeekCloser(bytes.NewReader(data)),
		ACL:         aws.String("private"),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

// Get downloads the bytes stored under a key
func (b *BlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := b.s3Client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", key, err)
	}
	defer result.Body.Close()

	return io.ReadAll(result.Body)
}

// Delete removes the object stored under a key
func (b *BlobStore) Delete(ctx context.Context, key string) error {
	_, err := b.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}
