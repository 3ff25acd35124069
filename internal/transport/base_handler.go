package transport

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/frahmantamala/practice-management/internal"
	"github.com/frahmantamala/practice-management/internal/errorlog"
	"github.com/frahmantamala/practice-management/pkg/logger"
	"github.com/go-chi/chi"
)

const maxBodyBytes = 1 << 20

// ErrorBody is the payload under "error" in every failed response.
type ErrorBody struct {
	Type    internal.ErrorType `json:"type"`
	Code    internal.ErrorCode `json:"code"`
	Message string             `json:"message"`
	Details interface{}        `json:"details,omitempty"`
	ErrorID string             `json:"error_id,omitempty"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
	Errors *errorlog.Service
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger, errs *errorlog.Service) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
	}
	if errs == nil {
		errs = errorlog.NewService(lg, nil)
	}
	return &BaseHandler{Logger: lg, Errors: errs}
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	WriteJSON(w, status, data)
}

func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.L().Error("failed to encode JSON response", "error", err)
	}
}

// WriteAppError writes err with its own status code.
func WriteAppError(w http.ResponseWriter, err *internal.AppError, errorID string) {
	status := err.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}
	WriteJSON(w, status, ErrorResponse{Error: ErrorBody{
		Type:    err.Type,
		Code:    err.Code,
		Message: err.Message,
		Details: err.Details,
		ErrorID: errorID,
	}})
}

func errorTypeFor(status int) internal.ErrorType {
	switch status {
	case http.StatusBadRequest:
		return internal.ErrorTypeValidation
	case http.StatusUnauthorized:
		return internal.ErrorTypeUnauthorized
	case http.StatusForbidden:
		return internal.ErrorTypeForbidden
	case http.StatusNotFound:
		return internal.ErrorTypeNotFound
	case http.StatusConflict:
		return internal.ErrorTypeConflict
	case http.StatusTooManyRequests:
		return internal.ErrorTypeRateLimited
	case http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return internal.ErrorTypeExternal
	}
	if status < 500 {
		return internal.ErrorTypeValidation
	}
	return internal.ErrorTypeInternal
}

// HandleServiceError answers with err's AppError status. Anything else is
// logged through the error service and answered with the status matching its
// user message, carrying the error id.
func (h *BaseHandler) HandleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if appErr, ok := internal.IsAppError(err); ok && appErr.StatusCode > 0 && appErr.StatusCode < 500 {
		logger.From(r.Context()).Info("request rejected",
			"type", appErr.Type, "code", appErr.Code, "status", appErr.StatusCode)
		WriteAppError(w, appErr, "")
		return
	}

	status := errorlog.HTTPStatus(err)
	message := errorlog.UserMessage(err)
	if _, ok := internal.IsAppError(err); ok {
		// A server-side AppError never leaks a client status.
		status, message = http.StatusInternalServerError, errorlog.MsgGeneric
	}
	severity := errorlog.SeverityHigh
	if status < 500 {
		severity = errorlog.SeverityMedium
	}

	id := h.Errors.LogError(r.Context(), err,
		errorlog.WithRequest(r),
		errorlog.WithSeverity(severity))
	code := internal.ErrCodeInternal
	if status != http.StatusInternalServerError {
		code = internal.ErrorCode(strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_")))
	}
	WriteAppError(w, &internal.AppError{
		Type:       errorTypeFor(status),
		Code:       code,
		Message:    message,
		StatusCode: status,
	}, id)
}

// DecodeJSON decodes the request body into dst, rejecting unknown fields.
func (h *BaseHandler) DecodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return internal.NewValidationError("request body is empty", internal.ErrCodeValidationFailed)
		}
		return internal.NewValidationError("invalid request body: "+err.Error(), internal.ErrCodeValidationFailed)
	}
	return nil
}

// DecodeMap decodes a JSON object body for rule-based validation.
func (h *BaseHandler) DecodeMap(r *http.Request) (map[string]any, error) {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.UseNumber()
	var data map[string]any
	if err := dec.Decode(&data); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, internal.NewValidationError("request body is empty", internal.ErrCodeValidationFailed)
		}
		return nil, internal.NewValidationError("invalid request body: "+err.Error(), internal.ErrCodeValidationFailed)
	}
	return data, nil
}

// PathID parses a numeric chi URL parameter.
func (h *BaseHandler) PathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, internal.NewValidationFieldError(name, name+" must be a positive integer", internal.ErrCodeValidationFailed)
	}
	return id, nil
}

// QueryInt reads a non-negative integer query parameter.
func (h *BaseHandler) QueryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, internal.NewValidationFieldError(name, name+" must be a non-negative integer", internal.ErrCodeValidationFailed)
	}
	return n, nil
}

// ExtractTokenFromHeader extracts Bearer token from Authorization header
func (h *BaseHandler) ExtractTokenFromHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ""
	}

	return authHeader[7:]
}
