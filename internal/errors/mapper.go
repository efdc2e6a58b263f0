package errors

import (
	"context"
	"errors"
	"net/http"

	"gorm.io/gorm"
)

// Map converts service/infra errors into an HTTP status and a
// user-facing message. Keeps handlers clean by centralizing error
// mapping, and makes sure generic store failures never leak internal
// identifiers to the client.
func Map(err error) (int, string) {
	switch {
	case err == nil:
		return http.StatusOK, ""

	case errors.Is(err, ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, "request not found"

	case errors.Is(err, ErrDuplicateRequest):
		return http.StatusConflict, "an open request already exists between these profiles"

	case errors.Is(err, ErrInvalidTransition):
		return http.StatusUnprocessableEntity, "this request can no longer be changed that way"

	case errors.Is(err, ErrMissingProfileID):
		return http.StatusUnprocessableEntity, "a required profile id is missing"

	case errors.Is(err, ErrMissingPropertyID):
		return http.StatusUnprocessableEntity, "this housing request has no property attached"

	case errors.Is(err, ErrNotParticipant):
		return http.StatusUnprocessableEntity, "you are not a participant of this request"

	case errors.Is(err, ErrSelfRequest):
		return http.StatusUnprocessableEntity, "cannot send a request to your own profile"

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "request timed out, please try again"

	case errors.Is(err, context.Canceled):
		// 499: client closed request (nginx convention)
		return 499, "request was canceled"

	default:
		return http.StatusInternalServerError, "something went wrong, please try again"
	}
}
