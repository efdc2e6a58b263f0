package errors

import "errors"

// Domain errors for the request lifecycle. Services return these (or
// wrap them); the HTTP layer converts them with Map.
var (
	// ErrNotFound: an operation referenced a request id that does not
	// exist. Surfaced to the caller, never retried automatically.
	ErrNotFound = errors.New("request not found")

	// ErrDuplicateRequest: a pending or accepted request already links
	// the two profiles, in either orientation.
	ErrDuplicateRequest = errors.New("an open request already exists between these profiles")

	// ErrInvalidTransition: the request's current status does not
	// allow the attempted action.
	ErrInvalidTransition = errors.New("request status does not allow this action")

	// ErrMissingProfileID: a required role-specific profile id could
	// not be resolved from the request or the caller-supplied hints.
	ErrMissingProfileID = errors.New("required role-specific profile id is missing")

	// ErrMissingPropertyID: a housing request was approved without a
	// property reference.
	ErrMissingPropertyID = errors.New("housing request has no property id")

	// ErrNotParticipant: the caller's profile ids match neither side
	// of the request.
	ErrNotParticipant = errors.New("caller is not a participant of this request")

	// ErrSelfRequest: requester and recipient are the same profile.
	ErrSelfRequest = errors.New("cannot send a request to your own profile")
)
