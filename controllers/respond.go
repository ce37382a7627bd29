package controllers

import (
	"github.com/ShashankBhake/st-shield-backend/services"
	"github.com/gin-gonic/gin"
)

// respondError writes {"error": msg}; details are only exposed in development.
func respondError(ctx *gin.Context, err error, debug bool) {
	svcErr := services.AsServiceError(err)
	body := gin.H{"error": svcErr.Message}
	if debug && svcErr.Err != nil {
		body["details"] = svcErr.Err.Error()
	}
	ctx.JSON(svcErr.StatusCode, body)
}
