package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"department-service/internal/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	s3iface.S3API
	puts    []*s3.PutObjectInput
	deletes []string
	err     error
}

func (f *fakeS3) PutObjectWithContext(_ aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.puts = append(f.puts, in)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObjectWithContext(_ aws.Context, in *s3.DeleteObjectInput, _ ...request.Option) (*s3.DeleteObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.deletes = append(f.deletes, aws.StringValue(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestClient_Put(t *testing.T) {
	fake := &fakeS3{}
	c := NewWithAPI(fake, "uploads", time.Minute)

	err := c.Put(context.Background(), "task_uploads/x/report.pdf", strings.NewReader("pdf"), "application/pdf")
	require.NoError(t, err)
	require.Len(t, fake.puts, 1)
	assert.Equal(t, "uploads", aws.StringValue(fake.puts[0].Bucket))
	assert.Equal(t, "application/pdf", aws.StringValue(fake.puts[0].ContentType))

	body, _ := io.ReadAll(fake.puts[0].Body)
	assert.Equal(t, "pdf", string(body))
}

func TestClient_PutError(t *testing.T) {
	c := NewWithAPI(&fakeS3{err: errors.New("boom")}, "uploads", time.Minute)
	err := c.Put(context.Background(), "k", strings.NewReader(""), "")
	assert.ErrorContains(t, err, "failed to upload object")
}

func TestClient_Delete(t *testing.T) {
	fake := &fakeS3{}
	c := NewWithAPI(fake, "uploads", time.Minute)
	require.NoError(t, c.Delete(context.Background(), "k"))
	assert.Equal(t, []string{"k"}, fake.deletes)
}

func TestClient_PresignedURL(t *testing.T) {
	c, err := NewClient(&config.StorageConfig{
		Bucket:          "uploads",
		Endpoint:        "http://localhost:9000",
		Region:          "us-east-1",
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "secret",
	}, 5*time.Minute)
	require.NoError(t, err)

	url, err := c.PresignedURL(context.Background(), "task_uploads/abc/report.pdf")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:9000/uploads/task_uploads/abc/report.pdf?"), url)
	assert.Contains(t, url, "X-Amz-Signature=")
	assert.Contains(t, url, "X-Amz-Expires=300")
}

func TestNewAttachmentKey(t *testing.T) {
	key := NewAttachmentKey("../../etc/report.pdf")
	assert.True(t, strings.HasPrefix(key, AttachmentPrefix+"/"))
	assert.True(t, strings.HasSuffix(key, "/report.pdf"))
	assert.NotEqual(t, key, NewAttachmentKey("report.pdf"))
	assert.NotContains(t, key, "..")
}

func TestBuildObjectKey(t *testing.T) {
	assert.Equal(t, "f.txt", BuildObjectKey("", "f.txt"))
	assert.Equal(t, "a/f.txt", BuildObjectKey("a", "f.txt"))
	assert.Equal(t, "a/f.txt", BuildObjectKey("a/", "f.txt"))
}
