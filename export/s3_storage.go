package export

import (
	"context"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/ShashankBhake/st-shield-backend/models"
	awspkg "github.com/ShashankBhake/st-shield-backend/pkg/aws"
)

const presignExpiry = 15 * time.Minute

// Bucket is the object-store surface S3Storage needs; satisfied by *awspkg.S3Bucket.
type Bucket interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) error
	List(ctx context.Context, prefix string) ([]awspkg.S3Object, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// S3Storage keeps artifacts under a key prefix and serves them via presigned URLs.
type S3Storage struct {
	bucket Bucket
	prefix string
}

func NewS3Storage(bucket Bucket, prefix string) *S3Storage {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &S3Storage{bucket: bucket, prefix: prefix}
}

func (s *S3Storage) Save(ctx context.Context, name, contentType string, r io.Reader) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	return s.bucket.Upload(ctx, s.prefix+name, contentType, r)
}

func (s *S3Storage) List(ctx context.Context) ([]models.ExportArtifact, error) {
	objects, err := s.bucket.List(ctx, s.prefix)
	if err != nil {
		return nil, err
	}

	artifacts := make([]models.ExportArtifact, 0, len(objects))
	for _, o := range objects {
		name := strings.TrimPrefix(o.Key, s.prefix)
		if ValidateName(name) != nil {
			continue
		}
		artifacts = append(artifacts, models.ExportArtifact{Name: name, Size: o.Size, Modified: o.LastModified.UTC()})
	}
	sort.Slice(artifacts, func(i, j int) bool {
		return artifacts[i].Modified.After(artifacts[j].Modified)
	})
	return artifacts, nil
}

func (s *S3Storage) Download(ctx context.Context, name string) (Download, error) {
	if err := s.mustExist(ctx, name); err != nil {
		return Download{}, err
	}
	url, err := s.bucket.PresignGet(ctx, s.prefix+name, presignExpiry)
	if err != nil {
		return Download{}, err
	}
	return Download{URL: url}, nil
}

func (s *S3Storage) Delete(ctx context.Context, name string) error {
	if err := s.mustExist(ctx, name); err != nil {
		return err
	}
	return s.bucket.Delete(ctx, s.prefix+name)
}

func (s *S3Storage) mustExist(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	ok, err := s.bucket.Exists(ctx, s.prefix+name)
	if err != nil {
		return err
	}
	if !ok {
		return ErrArtifactNotFound
	}
	return nil
}
