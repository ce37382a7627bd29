package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/ShashankBhake/st-shield-backend/models"
	"github.com/google/uuid"
)

var (
	ErrInvalidName      = errors.New("invalid export name")
	ErrArtifactNotFound = errors.New("export not found")
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*\.(xlsx|csv)$`)

// Download tells the caller where to fetch an artifact: a local Path to
// stream, or a URL to redirect to.
type Download struct {
	Path string
	URL  string
}

// Storage persists export artifacts.
type Storage interface {
	Save(ctx context.Context, name, contentType string, r io.Reader) error
	List(ctx context.Context) ([]models.ExportArtifact, error)
	Download(ctx context.Context, name string) (Download, error)
	Delete(ctx context.Context, name string) error
}

// ValidateName rejects names with path components or unknown extensions.
func ValidateName(name string) error {
	if name == "" || strings.Contains(name, "..") || filepath.Base(name) != name || !namePattern.MatchString(name) {
		return ErrInvalidName
	}
	return nil
}

// NewName builds policies-<from>-<to>-<created>-<rand>.<format>.
func NewName(from, to, created time.Time, format string) string {
	return fmt.Sprintf("policies-%s-%s-%s-%s.%s",
		from.UTC().Format("20060102"),
		to.UTC().Format("20060102"),
		created.UTC().Format("20060102T150405Z"),
		strings.ReplaceAll(uuid.NewString(), "-", "")[:8],
		format,
	)
}
