package storage

import (
	"context"
	"crypto/rand"
	"io"
	"math/big"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"hondealz/internal/config"
)

const randomNameLength = 30

const nameAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// PhotoStore uploads and deletes image objects in the photo bucket.
type PhotoStore struct {
	client        *s3.Client
	uploader      *manager.Uploader
	bucket        string
	publicBaseURL string
}

func NewPhotoStore(cfg *config.S3Config) *PhotoStore {
	return &PhotoStore{
		client:        cfg.Client,
		uploader:      manager.NewUploader(cfg.Client),
		bucket:        cfg.Bucket,
		publicBaseURL: cfg.PublicBaseURL,
	}
}

// RandomObjectName returns a 30-character random name with the extension
// matching the content type. Object names double as unique filenames in the
// database, so collisions surface as unique-constraint errors, not silent
// overwrites.
func RandomObjectName(contentType string) string {
	b := make([]byte, randomNameLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(nameAlphabet))))
		if err != nil {
			panic(err)
		}
		b[i] = nameAlphabet[n.Int64()]
	}
	return string(b) + extensionFor(contentType)
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ""
	}
}

func (p *PhotoStore) Upload(ctx context.Context, key string, body io.Reader, contentType string) error {
	_, err := p.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	return err
}

func (p *PhotoStore) Delete(ctx context.Context, key string) error {
	_, err := p.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	})
	return err
}

func (p *PhotoStore) PublicURL(key string) string {
	return p.publicBaseURL + "/" + key
}
