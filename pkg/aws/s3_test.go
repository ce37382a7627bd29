package aws

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	manager.UploadAPIClient // multipart calls are not exercised

	objects map[string][]byte
	put     []*s3.PutObjectInput
}

func newFakeS3() *fakeS3 { return &fakeS3{objects: map[string][]byte{}} }

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.put = append(f.put, in)
	f.objects[sdkaws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	out := &s3.ListObjectsV2Output{}
	modified := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for k, v := range f.objects {
		if strings.HasPrefix(k, sdkaws.ToString(in.Prefix)) {
			out.Contents = append(out.Contents, s3types.Object{
				Key:          sdkaws.String(k),
				Size:         sdkaws.Int64(int64(len(v))),
				LastModified: sdkaws.Time(modified),
			})
		}
	}
	return out, nil
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if _, ok := f.objects[sdkaws.ToString(in.Key)]; !ok {
		return nil, &smithy.GenericAPIError{Code: "NotFound", Message: "not found"}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, sdkaws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

type fakePresigner struct{ err error }

func (p fakePresigner) PresignGetObject(_ context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	if p.err != nil {
		return nil, p.err
	}
	opts := s3.PresignOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &v4.PresignedHTTPRequest{
		URL: "https://" + sdkaws.ToString(in.Bucket) + ".s3.local/" + sdkaws.ToString(in.Key) + "?X-Amz-Expires=" + opts.Expires.String(),
	}, nil
}

func TestS3Bucket_UploadListExistsDelete(t *testing.T) {
	api := newFakeS3()
	b := NewS3BucketWithAPI(api, fakePresigner{}, "exports-bucket")
	ctx := context.Background()

	require.NoError(t, b.Upload(ctx, "exports/a.csv", "text/csv", strings.NewReader("x,y\n")))
	require.Len(t, api.put, 1)
	assert.Equal(t, "exports-bucket", sdkaws.ToString(api.put[0].Bucket))
	assert.Equal(t, "text/csv", sdkaws.ToString(api.put[0].ContentType))

	objs, err := b.List(ctx, "exports/")
	require.NoError(t, err)
	require.Len(t, objs, 1)
	assert.Equal(t, "exports/a.csv", objs[0].Key)
	assert.Equal(t, int64(4), objs[0].Size)

	ok, err := b.Exists(ctx, "exports/a.csv")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, b.Delete(ctx, "exports/a.csv"))
	ok, err = b.Exists(ctx, "exports/a.csv")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestS3Bucket_PresignGet(t *testing.T) {
	b := NewS3BucketWithAPI(newFakeS3(), fakePresigner{}, "bkt")

	url, err := b.PresignGet(context.Background(), "k.xlsx", 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "https://bkt.s3.local/k.xlsx?X-Amz-Expires=15m0s", url)

	b = NewS3BucketWithAPI(newFakeS3(), fakePresigner{err: errors.New("no creds")}, "bkt")
	_, err = b.PresignGet(context.Background(), "k.xlsx", time.Minute)
	assert.Error(t, err)
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(&smithy.GenericAPIError{Code: "NoSuchKey"}))
	assert.False(t, IsNotFound(&smithy.GenericAPIError{Code: "AccessDenied"}))
	assert.False(t, IsNotFound(errors.New("plain")))
}
