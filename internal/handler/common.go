package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"authservice/internal/apperror"
	"authservice/internal/middleware"
	"authservice/internal/model"
	"authservice/internal/service"
	"authservice/pkg/response"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto the wire format. Anything outside the
// taxonomy, and any 5xx, is logged and collapsed into a generic 500 so
// internal detail never leaks.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	if appErr, ok := apperror.As(err); ok {
		if appErr.Status < http.StatusInternalServerError {
			c.JSON(appErr.Status, response.Error(appErr.Type, appErr.Msg))
			return
		}
		logger.Error("request failed", "requestId", c.GetString(middleware.CtxRequestID), "error", err)
		c.JSON(http.StatusInternalServerError, response.Error("InternalError", "Internal server error"))
		return
	}

	logger.Error("unexpected error", "requestId", c.GetString(middleware.CtxRequestID), "error", err)
	c.JSON(http.StatusInternalServerError, response.Error("InternalError", "Internal server error"))
}

// respondBindError reports a request-body validation failure.
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, response.FieldErrorBody("ValidationError", err.Error(), "", "body"))
}

// idParam parses the :id path segment. Non-numeric ids are a 400.
func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.FieldErrorBody("ValidationError", "Invalid url param.", "id", "params"))
		return 0, false
	}
	return uint(id), true
}

// actorFrom rebuilds the acting identity from the context the guard filled.
func actorFrom(c *gin.Context) service.Actor {
	actor := service.Actor{ID: c.GetUint(middleware.CtxUserID)}
	if role, ok := c.Get(middleware.CtxUserRole); ok {
		if r, ok := role.(model.Role); ok {
			actor.Role = r
		}
	}
	return actor
}
