package services

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ShashankBhake/st-shield-backend/export"
	"github.com/ShashankBhake/st-shield-backend/logger"
	"github.com/ShashankBhake/st-shield-backend/models"
	"github.com/ShashankBhake/st-shield-backend/observability"
	"github.com/ShashankBhake/st-shield-backend/repository"
	"go.uber.org/zap"
)

const defaultExportWindow = 30 * 24 * time.Hour

// ExportService turns stored policies into downloadable spreadsheets.
type ExportService interface {
	Create(ctx context.Context, req *models.ExportRequest) (*models.ExportResult, error)
	List(ctx context.Context) ([]models.ExportArtifact, error)
	Download(ctx context.Context, name string) (export.Download, error)
	Delete(ctx context.Context, name string) error
}

type exportServiceImpl struct {
	repo    repository.PolicyRepository
	storage export.Storage
	now     func() time.Time
}

func NewExportService(repo repository.PolicyRepository, storage export.Storage) ExportService {
	return &exportServiceImpl{repo: repo, storage: storage, now: time.Now}
}

func (s *exportServiceImpl) Create(ctx context.Context, req *models.ExportRequest) (*models.ExportResult, error) {
	log := logger.FromContext(ctx)

	now := s.now().UTC()
	from, to := req.From, req.To
	if to.IsZero() {
		to = now
	}
	if from.IsZero() {
		from = to.Add(-defaultExportWindow)
	}
	if from.After(to) {
		return nil, newError(KindValidation, http.StatusBadRequest, "from must not be after to", nil)
	}
	format := req.Format
	if format == "" {
		format = models.ExportFormatXLSX
	}

	policies, err := s.repo.ListByTimeRange(ctx, from, to)
	if err != nil {
		log.Error("failed to scan policies for export", zap.Error(err))
		return nil, newError(KindPersistenceError, http.StatusInternalServerError, "Failed to read policies", err)
	}

	var buf bytes.Buffer
	if err := export.Render(&buf, format, policies); err != nil {
		log.Error("failed to render export", zap.String("format", format), zap.Error(err))
		return nil, newError(KindInternal, http.StatusInternalServerError, "Failed to render export", err)
	}

	name := export.NewName(from, to, now, format)
	if err := s.storage.Save(ctx, name, export.ContentType(format), &buf); err != nil {
		log.Error("failed to store export", zap.String("name", name), zap.Error(err))
		return nil, newError(KindInternal, http.StatusInternalServerError, "Failed to store export", err)
	}

	observability.ExportsGenerated.WithLabelValues(format).Inc()
	log.Info("export created",
		zap.String("name", name),
		zap.Int("count", len(policies)),
		zap.Time("from", from),
		zap.Time("to", to),
	)

	result := &models.ExportResult{Name: name, Count: len(policies)}
	if dl, err := s.storage.Download(ctx, name); err == nil {
		result.URL = dl.URL
	}
	return result, nil
}

func (s *exportServiceImpl) List(ctx context.Context) ([]models.ExportArtifact, error) {
	artifacts, err := s.storage.List(ctx)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list exports", zap.Error(err))
		return nil, newError(KindInternal, http.StatusInternalServerError, "Failed to list exports", err)
	}
	return artifacts, nil
}

func (s *exportServiceImpl) Download(ctx context.Context, name string) (export.Download, error) {
	dl, err := s.storage.Download(ctx, name)
	if err != nil {
		return export.Download{}, s.artifactError(ctx, name, err)
	}
	return dl, nil
}

func (s *exportServiceImpl) Delete(ctx context.Context, name string) error {
	if err := s.storage.Delete(ctx, name); err != nil {
		return s.artifactError(ctx, name, err)
	}
	logger.FromContext(ctx).Info("export deleted", zap.String("name", name))
	return nil
}

func (s *exportServiceImpl) artifactError(ctx context.Context, name string, err error) *ServiceError {
	switch {
	case errors.Is(err, export.ErrInvalidName):
		return newError(KindValidation, http.StatusBadRequest, "Invalid export name", err)
	case errors.Is(err, export.ErrArtifactNotFound):
		return newError(KindNotFound, http.StatusNotFound, "Export not found", err)
	}
	logger.FromContext(ctx).Error("export storage failure", zap.String("name", name), zap.Error(err))
	return newError(KindInternal, http.StatusInternalServerError, "Export storage failure", err)
}
