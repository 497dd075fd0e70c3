package s3blob

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// minPartSize is the smallest multipart part S3 accepts
const minPartSize int64 = 5 * 1024 * 1024

// Writer uploads objects to the client's bucket
type Writer struct {
	client *Client
}

// NewWriter creates a writer over c
func NewWriter(c *Client) *Writer {
	return &Writer{client: c}
}

// Put uploads data and returns its download URL.
// Payloads larger than one part go through the multipart uploader.
func (w *Writer) Put(ctx context.Context, key string, data io.Reader, contentType string) (string, error) {
	if sized, ok := data.(interface{ Len() int }); ok && int64(sized.Len()) > minPartSize {
		if err := w.PutMultipart(ctx, key, data, contentType, minPartSize); err != nil {
			return "", err
		}
		return w.client.URL(key), nil
	}

	_, err := w.client.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(w.client.bucket),
		Key:         aws.String(key),
		Body:        data,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3blob: put object %s: %w", key, err)
	}
	return w.client.URL(key), nil
}

// PutMultipart uploads data in parts of at least 5 MiB
func (w *Writer) PutMultipart(ctx context.Context, key string, data io.Reader, contentType string, partSize int64) error {
	if partSize < minPartSize {
		partSize = minPartSize
	}

	uploader := manager.NewUploader(w.client.s3, func(u *manager.Uploader) {
		u.PartSize = partSize
	})

	_, err := uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(w.client.bucket),
		Key:         aws.String(key),
		Body:        data,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("s3blob: multipart upload %s: %w", key, err)
	}
	return nil
}
