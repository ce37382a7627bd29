package services_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/ShashankBhake/st-shield-backend/export"
	"github.com/ShashankBhake/st-shield-backend/models"
	"github.com/ShashankBhake/st-shield-backend/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newExportService(t *testing.T, repo *memPolicyRepo) services.ExportService {
	storage, err := export.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return services.NewExportService(repo, storage)
}

func seedPolicy(t *testing.T, repo *memPolicyRepo, id string, ts time.Time) {
	require.NoError(t, repo.Create(context.Background(), &models.Policy{
		PolicyID:  id,
		OrderID:   "order_" + id,
		PaymentID: "pay_" + id,
		Amount:    99900,
		Currency:  "INR",
		UserData:  []byte(`{"email":"a@b.c"}`),
		Timestamp: ts,
	}))
}

func TestExportService_CreateListDelete(t *testing.T) {
	repo := newMemPolicyRepo()
	now := time.Now().UTC()
	seedPolicy(t, repo, "SSST1", now.Add(-time.Hour))
	seedPolicy(t, repo, "SSST2", now.Add(-60*24*time.Hour))
	svc := newExportService(t, repo)
	ctx := context.Background()

	res, err := svc.Create(ctx, &models.ExportRequest{Format: models.ExportFormatCSV})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)
	assert.Empty(t, res.URL)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, res.Name, list[0].Name)

	dl, err := svc.Download(ctx, res.Name)
	require.NoError(t, err)
	assert.NotEmpty(t, dl.Path)

	require.NoError(t, svc.Delete(ctx, res.Name))
	_, err = svc.Download(ctx, res.Name)
	assert.Equal(t, http.StatusNotFound, services.AsServiceError(err).StatusCode)
}

func TestExportService_DefaultsToXLSX(t *testing.T) {
	svc := newExportService(t, newMemPolicyRepo())

	res, err := svc.Create(context.Background(), &models.ExportRequest{})

	require.NoError(t, err)
	assert.Contains(t, res.Name, ".xlsx")
	assert.Equal(t, 0, res.Count)
}

func TestExportService_RejectsInvertedRange(t *testing.T) {
	svc := newExportService(t, newMemPolicyRepo())
	now := time.Now()

	_, err := svc.Create(context.Background(), &models.ExportRequest{From: now, To: now.Add(-time.Hour)})

	assert.Equal(t, http.StatusBadRequest, services.AsServiceError(err).StatusCode)
}

func TestExportService_RepoFailure(t *testing.T) {
	repo := newMemPolicyRepo()
	repo.listErr = errBoom
	svc := newExportService(t, repo)

	_, err := svc.Create(context.Background(), &models.ExportRequest{})

	svcErr := services.AsServiceError(err)
	assert.Equal(t, http.StatusInternalServerError, svcErr.StatusCode)
	assert.ErrorIs(t, err, errBoom)
}

func TestExportService_InvalidName(t *testing.T) {
	svc := newExportService(t, newMemPolicyRepo())

	err := svc.Delete(context.Background(), "../etc/passwd")

	assert.Equal(t, http.StatusBadRequest, services.AsServiceError(err).StatusCode)
}
