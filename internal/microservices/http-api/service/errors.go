package service

import "errors"

// Error kinds. Handlers map them to status codes with errors.Is.
var (
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("conflict")
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
)

// Error is a client-facing failure. Message is safe to return in a response
// body; Kind is one of the sentinels above.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

var (
	ErrAlreadyReviewed = newError(ErrConflict, "You have already reviewed this album")
	ErrAlbumMissing    = newError(ErrValidation, "album does not exist")
	ErrReviewNotFound  = newError(ErrNotFound, "review not found")
	ErrAlbumNotFound   = newError(ErrNotFound, "album not found")
	ErrArtistNotFound  = newError(ErrNotFound, "artist not found")
	ErrArtistMissing   = newError(ErrValidation, "artist does not exist")
	ErrNotReviewOwner  = newError(ErrForbidden, "You can only modify your own reviews")
	ErrAdminOnly       = newError(ErrForbidden, "admin role required")
	ErrLoginRequired   = newError(ErrUnauthenticated, "Authentication credentials were not provided")
	ErrInvalidOrdering = newError(ErrValidation, "ordering must be one of created_at, -created_at, rating, -rating")
)
