package errorlog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/frahmantamala/practice-management/internal"
	"gorm.io/gorm"
)

const (
	MsgGeneric      = "An unexpected error occurred. Please try again later."
	MsgValidation   = "The submitted data is invalid. Please check your input."
	MsgUnauthorized = "Please sign in to continue."
	MsgPermission   = "You do not have permission to perform this action."
	MsgNotFound     = "The requested record was not found."
	MsgConflict     = "This record conflicts with existing data."
	MsgRateLimited  = "Too many requests. Please wait and try again."
	MsgTimeout      = "The request took too long. Please try again."
	MsgCanceled     = "The request was cancelled."
	MsgConnection   = "The service is temporarily unavailable. Please try again later."
)

// typeNameMessages is consulted last, for errors outside the AppError taxonomy.
var typeNameMessages = []struct {
	fragments []string
	message   string
	status    int
}{
	{[]string{"validation"}, MsgValidation, http.StatusBadRequest},
	{[]string{"permission", "forbidden"}, MsgPermission, http.StatusForbidden},
	{[]string{"notfound", "doesnotexist"}, MsgNotFound, http.StatusNotFound},
	{[]string{"integrity", "duplicate"}, MsgConflict, http.StatusConflict},
	{[]string{"timeout"}, MsgTimeout, http.StatusGatewayTimeout},
	{[]string{"connection"}, MsgConnection, http.StatusServiceUnavailable},
}

// UserMessage returns text that is safe to show an end user for err.
func UserMessage(err error) string {
	msg, _ := classify(err)
	return msg
}

// HTTPStatus is the response status matching UserMessage(err), so a
// classified message never travels with an unrelated code.
func HTTPStatus(err error) int {
	_, status := classify(err)
	return status
}

func classify(err error) (string, int) {
	if err == nil {
		return "", http.StatusOK
	}

	if appErr, ok := internal.IsAppError(err); ok {
		switch appErr.Type {
		case internal.ErrorTypeValidation:
			if msg := appErr.GetDetailedMessage(); msg != "" {
				return msg, http.StatusBadRequest
			}
			return MsgValidation, http.StatusBadRequest
		case internal.ErrorTypeNotFound:
			return MsgNotFound, http.StatusNotFound
		case internal.ErrorTypeUnauthorized:
			return MsgUnauthorized, http.StatusUnauthorized
		case internal.ErrorTypeForbidden:
			return MsgPermission, http.StatusForbidden
		case internal.ErrorTypeConflict:
			return MsgConflict, http.StatusConflict
		case internal.ErrorTypeRateLimited:
			return MsgRateLimited, http.StatusTooManyRequests
		default:
			return MsgGeneric, http.StatusInternalServerError
		}
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return MsgNotFound, http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return MsgTimeout, http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return MsgCanceled, http.StatusServiceUnavailable
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		name := strings.ToLower(fmt.Sprintf("%T", e))
		for _, m := range typeNameMessages {
			for _, f := range m.fragments {
				if strings.Contains(name, f) {
					return m.message, m.status
				}
			}
		}
	}
	return MsgGeneric, http.StatusInternalServerError
}
