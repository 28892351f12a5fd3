package utils

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

type APIResponse struct {
	Status  string      `json:"status"`
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func traceID(c *gin.Context) string {
	id, _ := c.Get("trace_id")
	s, _ := id.(string)
	return s
}

func RespondSuccess(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, APIResponse{
		Status:  "success",
		Code:    http.StatusOK,
		Message: message,
		TraceID: traceID(c),
		Data:    data,
	})
}

// RespondData renders an envelope with an explicit code while still carrying
// a data payload, e.g. 410 Gone with the expired payment status attached.
func RespondData(c *gin.Context, code int, data interface{}, message string) {
	status := "success"
	if code >= http.StatusBadRequest {
		status = "error"
	}
	c.JSON(code, APIResponse{
		Status:  status,
		Code:    code,
		Message: message,
		TraceID: traceID(c),
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, message string) {
	c.JSON(code, APIResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		TraceID: traceID(c),
	})
}

// HandleServiceError maps the service error taxonomy onto HTTP codes.
// Transient gateway failures come back 503 so the caller retries; nothing
// here is swallowed silently.
func HandleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		RespondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		RespondError(c, http.StatusNotFound, "Payment or order not found")
	case errors.Is(err, ErrConflict):
		RespondError(c, http.StatusConflict, "Payment is already in a conflicting terminal state")
	case errors.Is(err, ErrExpired):
		RespondError(c, http.StatusGone, "Payment expired")
	case errors.Is(err, ErrGatewayUnavailable):
		RespondError(c, http.StatusServiceUnavailable, "Payment gateway temporarily unavailable, retry later")
	default:
		log.Printf("unexpected service error: %v", err)
		RespondError(c, http.StatusInternalServerError, "Internal server error")
	}
}
