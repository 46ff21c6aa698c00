package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// PosterStore turns an uploaded poster into a public URL.
type PosterStore interface {
	Upload(ctx context.Context, filename, contentType string, body io.Reader, size int64) (string, error)
}

// ObjectPutter is the subset of the S3 client used for uploads.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3PosterStore uploads posters to an S3 bucket.
type S3PosterStore struct {
	client        ObjectPutter
	bucket        string
	region        string
	publicBaseURL string
	now           func() time.Time
}

// NewS3Client loads the default AWS credential chain for region.
func NewS3Client(ctx context.Context, region string) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

// NewS3PosterStore creates a store. publicBaseURL overrides the default
// virtual-hosted bucket URL, e.g. for a CDN in front of the bucket.
func NewS3PosterStore(client ObjectPutter, bucket, region, publicBaseURL string) *S3PosterStore {
	return &S3PosterStore{
		client:        client,
		bucket:        bucket,
		region:        region,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		now:           time.Now,
	}
}

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// PosterKey builds the object key posters/<timestamp>-<uuid>-<name>.
func PosterKey(filename string, now time.Time) string {
	name := unsafeKeyChars.ReplaceAllString(path.Base(filename), "-")
	name = strings.Trim(name, "-")
	if name == "" || name == "." {
		name = "poster"
	}
	return "posters/" + now.UTC().Format("20060102150405") + "-" + uuid.NewString() + "-" + name
}

func (s *S3PosterStore) Upload(ctx context.Context, filename, contentType string, body io.Reader, size int64) (string, error) {
	key := PosterKey(filename, s.now())
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return "", fmt.Errorf("upload poster to s3: %w", err)
	}
	return s.objectURL(key), nil
}

func (s *S3PosterStore) objectURL(key string) string {
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
