package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/at-my-table/backend/config"
)

const maxImageBytes = 10 << 20

// S3ImageMirror downloads an extracted recipe image and re-hosts it in S3,
// so stored rows do not depend on the source site keeping the asset alive.
type S3ImageMirror struct {
	s3Config *config.S3Config
	client   *http.Client
}

// NewS3ImageMirror creates a new S3ImageMirror instance
func NewS3ImageMirror(s3Config *config.S3Config) *S3ImageMirror {
	return &S3ImageMirror{
		s3Config: s3Config,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// MirrorImage downloads the image at imageURL and uploads it to S3,
// returning the public URL.
func (s *S3ImageMirror) MirrorImage(ctx context.Context, imageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build image request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download image, status: %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read image data: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	fileName := fmt.Sprintf("recipe-images/%s%s", uuid.New().String(), extensionFor(contentType))

	_, err = s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(fileName),
		Body:        bytes.NewReader(imageData),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	publicURL := fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, fileName)
	log.Printf("[S3ImageMirror] mirrored image to %s", publicURL)
	return publicURL, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	default:
		// keep whatever extension best matches; MIME subtype is close
		// enough for object keys
		if ext := path.Ext(contentType); ext != "" {
			return ext
		}
		return ".img"
	}
}
