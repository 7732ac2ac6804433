package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/blackinbot/backend/internal/apperrors"
	"github.com/blackinbot/backend/store"
)

func respondError(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found", "code": apperrors.CodeNotFound})
		return
	}

	appErr := apperrors.From(err)
	if appErr.HTTPCode >= http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(appErr.HTTPCode, gin.H{"error": appErr.Message, "code": appErr.Code})
}
