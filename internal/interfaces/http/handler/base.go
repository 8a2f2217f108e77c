// Package handler holds the gin handlers of the order service API.
package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/orderops/backend/internal/domain/shared"
	csvimport "github.com/orderops/backend/internal/infrastructure/import"
	"github.com/orderops/backend/internal/infrastructure/logger"
	"github.com/orderops/backend/internal/interfaces/http/dto"
	"github.com/orderops/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// MaxUploadFileSize caps a single uploaded file
const MaxUploadFileSize = 20 << 20

// BaseHandler provides common handler utilities
type BaseHandler struct{}

func getRequestID(c *gin.Context) string {
	return middleware.GetRequestID(c)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// HandleError maps service errors to HTTP responses. Domain errors keep their
// code, persistence errors report the underlying message and anything else
// becomes a 500 without leaking details.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		h.Error(c, dto.GetHTTPStatus(code), code, domainErr.Message)
		return
	}

	log := logger.GetGinLogger(c)
	switch {
	case shared.IsPersistenceError(err):
		log.Error("Transaction failed", zap.Error(err))
		h.Error(c, http.StatusInternalServerError, dto.ErrCodePersistence, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		log.Warn("Request canceled", zap.Error(err))
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeCanceled, "Request was canceled")
	default:
		log.Error("Unhandled error", zap.Error(err))
		h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
	}
}

// BindJSON binds the JSON body into req and writes the validation response on
// failure. It returns false when the handler should stop.
func (h *BaseHandler) BindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// BindQuery binds query parameters into req
func (h *BaseHandler) BindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// ParamID parses a positive integer path parameter
func (h *BaseHandler) ParamID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidation, fmt.Sprintf("invalid %s", name))
		return 0, false
	}
	return id, true
}

// FormFiles reads every file uploaded under field into memory
func (h *BaseHandler) FormFiles(c *gin.Context, field string) ([]csvimport.File, bool) {
	form, err := c.MultipartForm()
	if err != nil {
		h.BadRequest(c, "multipart form required")
		return nil, false
	}
	headers := form.File[field]
	if len(headers) == 0 {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidation, fmt.Sprintf("at least one file is required in %q", field))
		return nil, false
	}

	files := make([]csvimport.File, 0, len(headers))
	for _, fh := range headers {
		f, ok := h.readFile(c, fh)
		if !ok {
			return nil, false
		}
		files = append(files, f)
	}
	return files, true
}

// FormFile reads the single file uploaded under field
func (h *BaseHandler) FormFile(c *gin.Context, field string) (csvimport.File, bool) {
	fh, err := c.FormFile(field)
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidation, fmt.Sprintf("file %q is required", field))
		return csvimport.File{}, false
	}
	return h.readFile(c, fh)
}

func (h *BaseHandler) readFile(c *gin.Context, fh *multipart.FileHeader) (csvimport.File, bool) {
	if fh.Size > MaxUploadFileSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge,
			fmt.Sprintf("%s exceeds the %d MiB upload limit", fh.Filename, MaxUploadFileSize>>20))
		return csvimport.File{}, false
	}
	f, err := fh.Open()
	if err != nil {
		h.BadRequest(c, fmt.Sprintf("cannot open %s", fh.Filename))
		return csvimport.File{}, false
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		h.BadRequest(c, fmt.Sprintf("cannot read %s", fh.Filename))
		return csvimport.File{}, false
	}
	return csvimport.File{Name: fh.Filename, Content: content}, true
}
