package s3infra

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/kusina-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjects struct {
	put     *s3.PutObjectInput
	body    string
	deleted []string
	err     error
}

func (f *fakeObjects) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.put = in
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, f.err
}

func (f *fakeObjects) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, f.err
}

func TestUpload_ReturnsPublicURL(t *testing.T) {
	fo := &fakeObjects{}
	s := newStore(fo, "menu", "http://localhost:4566/menu/")

	url, err := s.Upload(context.Background(), "menu/abc.png", strings.NewReader("png-bytes"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:4566/menu/menu/abc.png", url)
	assert.Equal(t, "menu", aws.ToString(fo.put.Bucket))
	assert.Equal(t, "image/png", aws.ToString(fo.put.ContentType))
	assert.Equal(t, "png-bytes", fo.body)
}

func TestUpload_Error(t *testing.T) {
	s := newStore(&fakeObjects{err: errors.New("denied")}, "menu", "http://x")
	_, err := s.Upload(context.Background(), "k", strings.NewReader(""), "image/png")
	assert.ErrorContains(t, err, "denied")
}

func TestKeyFromURL(t *testing.T) {
	s := newStore(&fakeObjects{}, "menu", "https://menu.s3.ap-southeast-1.amazonaws.com")

	key, ok := s.KeyFromURL(s.URL("menu/a.jpg"))
	assert.True(t, ok)
	assert.Equal(t, "menu/a.jpg", key)

	_, ok = s.KeyFromURL("https://elsewhere.example.com/a.jpg")
	assert.False(t, ok)
}

func TestDelete(t *testing.T) {
	fo := &fakeObjects{}
	s := newStore(fo, "menu", "http://x")
	require.NoError(t, s.Delete(context.Background(), "menu/a.jpg"))
	assert.Equal(t, []string{"menu/a.jpg"}, fo.deleted)
}

func TestRemove_OnlyOwnObjects(t *testing.T) {
	fo := &fakeObjects{}
	s := newStore(fo, "menu", "http://x")
	require.NoError(t, s.Remove(context.Background(), "http://x/menu/a.jpg"))
	require.NoError(t, s.Remove(context.Background(), "https://elsewhere.example.com/b.jpg"))
	assert.Equal(t, []string{"menu/a.jpg"}, fo.deleted)
}

func TestPublicBaseURL(t *testing.T) {
	assert.Equal(t, "https://b.s3.ap-southeast-1.amazonaws.com",
		publicBaseURL(&config.Config{S3BucketName: "b", AWSRegion: "ap-southeast-1"}))
	assert.Equal(t, "http://localhost:4566/b",
		publicBaseURL(&config.Config{S3BucketName: "b", AWSEndpointURL: "http://localhost:4566/"}))
}

func TestImageExtension(t *testing.T) {
	ext, ok := ImageExtension("image/JPEG")
	assert.True(t, ok)
	assert.Equal(t, ".jpg", ext)

	_, ok = ImageExtension("application/pdf")
	assert.False(t, ok)
}
