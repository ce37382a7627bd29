package controllers

import (
	"net/http"

	"github.com/ShashankBhake/st-shield-backend/models"
	"github.com/ShashankBhake/st-shield-backend/services"
	"github.com/gin-gonic/gin"
)

// ExportController serves the admin export endpoints.
type ExportController struct {
	exportService services.ExportService
	debug         bool
}

func NewExportController(svc services.ExportService, debug bool) *ExportController {
	return &ExportController{exportService: svc, debug: debug}
}

// Create handles POST /api/admin/exports
func (ec *ExportController) Create(ctx *gin.Context) {
	var req models.ExportRequest
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
	}

	result, err := ec.exportService.Create(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err, ec.debug)
		return
	}

	ctx.JSON(http.StatusCreated, result)
}

// List handles GET /api/admin/exports
func (ec *ExportController) List(ctx *gin.Context) {
	artifacts, err := ec.exportService.List(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err, ec.debug)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"exports": artifacts})
}

// Download handles GET /api/admin/exports/:name
func (ec *ExportController) Download(ctx *gin.Context) {
	name := ctx.Param("name")
	dl, err := ec.exportService.Download(ctx.Request.Context(), name)
	if err != nil {
		respondError(ctx, err, ec.debug)
		return
	}

	if dl.URL != "" {
		ctx.Redirect(http.StatusFound, dl.URL)
		return
	}
	ctx.FileAttachment(dl.Path, name)
}

// Delete handles DELETE /api/admin/exports/:name
func (ec *ExportController) Delete(ctx *gin.Context) {
	name := ctx.Param("name")
	if err := ec.exportService.Delete(ctx.Request.Context(), name); err != nil {
		respondError(ctx, err, ec.debug)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"deleted": name})
}
