package gcs

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

type bucketObjects struct {
	client *storage.Client
	bucket string
}

// New connects to bucket. Without credentialsFile the application default
// credentials are used.
func New(ctx context.Context, bucket, prefix, credentialsFile string) (*Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("gcs adapter: bucket is required")
	}

	var client *storage.Client
	var err error
	if credentialsFile != "" {
		client, err = storage.NewClient(ctx, option.WithCredentialsFile(credentialsFile))
	} else {
		client, err = storage.NewClient(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("gcs adapter: failed to create client: %w", err)
	}

	return newStore(&bucketObjects{client: client, bucket: bucket}, prefix), nil
}

func (b *bucketObjects) read(ctx context.Context, name string) ([]byte, error) {
	r, err := b.client.Bucket(b.bucket).Object(name).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, errObjectMissing
	}
	if err != nil {
		return nil, err
	}
	return readAll(r)
}

func (b *bucketObjects) write(ctx context.Context, name string, data []byte) error {
	w := b.client.Bucket(b.bucket).Object(name).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close writer: %w", err)
	}
	return nil
}

func (b *bucketObjects) delete(ctx context.Context, name string) error {
	err := b.client.Bucket(b.bucket).Object(name).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return errObjectMissing
	}
	return err
}

func (b *bucketObjects) close() error {
	return b.client.Close()
}
