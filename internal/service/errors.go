package service

import (
	"errors"
	"fmt"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/jomsplit/internal/calculator"
	"github.com/mmynk/jomsplit/internal/draft"
	"github.com/mmynk/jomsplit/internal/ledger"
	"github.com/mmynk/jomsplit/internal/ocr"
	"github.com/mmynk/jomsplit/internal/storage"
)

var errAuthRequired = errors.New("authentication required")

// toConnectError maps domain errors to Connect codes. Anything unknown is
// Internal.
func toConnectError(err error) error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return err
	}
	return connect.NewError(codeOf(err), err)
}

func codeOf(err error) connect.Code {
	switch {
	case errors.Is(err, calculator.ErrInvalidInput),
		errors.Is(err, ocr.ErrMalformed),
		errors.Is(err, ledger.ErrSelfFriendship):
		return connect.CodeInvalidArgument
	case errors.Is(err, calculator.ErrItemNotFound),
		errors.Is(err, storage.ErrNotFound),
		errors.Is(err, draft.ErrNotFound):
		return connect.CodeNotFound
	case errors.Is(err, storage.ErrAlreadyExists):
		return connect.CodeAlreadyExists
	case errors.Is(err, draft.ErrForbidden):
		return connect.CodePermissionDenied
	case errors.Is(err, draft.ErrClosed):
		return connect.CodeFailedPrecondition
	case errors.Is(err, errAuthRequired):
		return connect.CodeUnauthenticated
	}
	return connect.CodeInternal
}

// CodeOf is the Connect code err is reported with.
func CodeOf(err error) connect.Code {
	return connect.CodeOf(toConnectError(err))
}

// StatusOf maps the same error classes to HTTP status codes for the REST
// surface.
func StatusOf(err error) int {
	switch CodeOf(err) {
	case connect.CodeInvalidArgument:
		return http.StatusBadRequest
	case connect.CodeUnauthenticated:
		return http.StatusUnauthorized
	case connect.CodePermissionDenied:
		return http.StatusForbidden
	case connect.CodeNotFound:
		return http.StatusNotFound
	case connect.CodeAlreadyExists, connect.CodeFailedPrecondition:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func requireUser(userID string) error {
	if userID == "" {
		return connect.NewError(connect.CodeUnauthenticated, errAuthRequired)
	}
	return nil
}

func invalidArgument(format string, args ...any) error {
	return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf(format, args...))
}
