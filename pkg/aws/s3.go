package aws

import (
	"context"
	"fmt"
	"io"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the subset of the S3 client used by S3Bucket, including what
// manager.Uploader needs for multipart uploads.
type S3API interface {
	manager.UploadAPIClient
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Presigner signs GET requests.
type S3Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Object describes a stored object.
type S3Object struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// S3Bucket wraps upload, listing, presigning and deletion for one bucket.
type S3Bucket struct {
	client    S3API
	presigner S3Presigner
	uploader  *manager.Uploader
	bucket    string
}

// NewS3Client creates a new S3 client from AWS config. Path-style addressing is
// used when a custom endpoint is configured.
func NewS3Client(cfg sdkaws.Config) *s3.Client {
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = UsesCustomEndpoint(cfg)
	})
}

func NewS3Bucket(cfg sdkaws.Config, bucket string) *S3Bucket {
	client := NewS3Client(cfg)
	return NewS3BucketWithAPI(client, s3.NewPresignClient(client), bucket)
}

func NewS3BucketWithAPI(api S3API, presigner S3Presigner, bucket string) *S3Bucket {
	return &S3Bucket{
		client:    api,
		presigner: presigner,
		uploader:  manager.NewUploader(api),
		bucket:    bucket,
	}
}

// Upload streams body to key.
func (b *S3Bucket) Upload(ctx context.Context, key, contentType string, body io.Reader) error {
	_, err := b.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      sdkaws.String(b.bucket),
		Key:         sdkaws.String(key),
		Body:        body,
		ContentType: sdkaws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("s3 upload %s: %w", key, err)
	}
	return nil
}

// List returns every object under prefix.
func (b *S3Bucket) List(ctx context.Context, prefix string) ([]S3Object, error) {
	var objects []S3Object
	paginator := s3.NewListObjectsV2Paginator(b.client, &s3.ListObjectsV2Input{
		Bucket: sdkaws.String(b.bucket),
		Prefix: sdkaws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3 list %s: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			o := S3Object{Key: sdkaws.ToString(obj.Key), Size: sdkaws.ToInt64(obj.Size)}
			if obj.LastModified != nil {
				o.LastModified = *obj.LastModified
			}
			objects = append(objects, o)
		}
	}
	return objects, nil
}

// Exists reports whether key is present.
func (b *S3Bucket) Exists(ctx context.Context, key string) (bool, error) {
	_, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: sdkaws.String(b.bucket),
		Key:    sdkaws.String(key),
	})
	if err != nil {
		if IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("s3 head %s: %w", key, err)
	}
	return true, nil
}

// Delete removes key.
func (b *S3Bucket) Delete(ctx context.Context, key string) error {
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: sdkaws.String(b.bucket),
		Key:    sdkaws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s: %w", key, err)
	}
	return nil
}

// PresignGet returns a time-limited download URL for key.
func (b *S3Bucket) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	req, err := b.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: sdkaws.String(b.bucket),
		Key:    sdkaws.String(key),
	}, func(o *s3.PresignOptions) {
		o.Expires = expiry
	})
	if err != nil {
		return "", fmt.Errorf("failed to presign get object: %w", err)
	}
	return req.URL, nil
}
