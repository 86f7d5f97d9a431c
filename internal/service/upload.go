package service

import (
	a "bitwise74/auth-api/aws"
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ImageStore keeps uploaded profile pictures and hands back a URL that stays valid
type ImageStore interface {
	Upload(ctx context.Context, key, contentType string, body []byte) (string, error)
}

type S3ImageStore struct {
	S3        *a.S3Client
	PublicURL string
	uploader  *manager.Uploader
}

func NewS3ImageStore(s *a.S3Client, publicURL string) *S3ImageStore {
	return &S3ImageStore{
		S3:        s,
		PublicURL: strings.TrimSuffix(publicURL, "/"),
		uploader: manager.NewUploader(s.C, func(u *manager.Uploader) {
			u.Concurrency = 2
			u.PartSize = 6 << 20
		}),
	}
}

func (s *S3ImageStore) Upload(ctx context.Context, key, contentType string, body []byte) (string, error) {
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:        s.S3.Bucket,
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(contentType),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image to s3, %w", err)
	}

	return s.PublicURL + "/" + key, nil
}

// avatarKey avoids collisions between users uploading files with the same name
func avatarKey(ext string) string {
	return "avatars/" + uuid.NewString() + ext
}
