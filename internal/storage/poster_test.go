package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPutter struct {
	mock.Mock
}

func (m *mockPutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.PutObjectOutput)
	return out, args.Error(1)
}

func TestPosterKey(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	key := PosterKey("../My Poster (final).png", now)
	assert.True(t, strings.HasPrefix(key, "posters/20260102030405-"), key)
	assert.True(t, strings.HasSuffix(key, "-My-Poster-final-.png"), key)
	assert.NotContains(t, key, "..")

	assert.True(t, strings.HasSuffix(PosterKey("", now), "-poster"))
}

func TestS3PosterStore_Upload(t *testing.T) {
	putter := new(mockPutter)
	store := NewS3PosterStore(putter, "devzoku-posters", "ap-south-1", "")
	store.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	putter.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return aws.ToString(in.Bucket) == "devzoku-posters" &&
			aws.ToString(in.ContentType) == "image/png" &&
			aws.ToInt64(in.ContentLength) == 4 &&
			strings.HasPrefix(aws.ToString(in.Key), "posters/20260102030405-")
	})).Return(&s3.PutObjectOutput{}, nil).Once()

	url, err := store.Upload(context.Background(), "poster.png", "image/png", strings.NewReader("data"), 4)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://devzoku-posters.s3.ap-south-1.amazonaws.com/posters/"), url)
	assert.True(t, strings.HasSuffix(url, "-poster.png"), url)
	putter.AssertExpectations(t)
}

func TestS3PosterStore_PublicBaseURL(t *testing.T) {
	putter := new(mockPutter)
	store := NewS3PosterStore(putter, "bucket", "us-east-1", "https://cdn.devzoku.dev/")
	putter.On("PutObject", mock.Anything, mock.Anything).Return(&s3.PutObjectOutput{}, nil)

	url, err := store.Upload(context.Background(), "a.jpg", "image/jpeg", strings.NewReader("x"), 1)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://cdn.devzoku.dev/posters/"), url)
}

func TestS3PosterStore_UploadError(t *testing.T) {
	putter := new(mockPutter)
	store := NewS3PosterStore(putter, "bucket", "us-east-1", "")
	putter.On("PutObject", mock.Anything, mock.Anything).Return(nil, errors.New("access denied"))

	_, err := store.Upload(context.Background(), "a.jpg", "image/jpeg", strings.NewReader("x"), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}
