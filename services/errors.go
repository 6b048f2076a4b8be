// File: /services/errors.go
package services

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindBadRequest
	KindNotFound
	KindForbidden
	KindUnauthorized
	KindSignature
)

func (k ErrorKind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindUnauthorized:
		return "unauthorized"
	case KindSignature:
		return "invalid_signature"
	default:
		return "internal"
	}
}

// AppError is the error type returned by every service operation. Message is
// safe to show to clients; Err carries the underlying cause for logs.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches sentinel AppErrors by kind and message.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

func BadRequest(msg string) *AppError   { return &AppError{Kind: KindBadRequest, Message: msg} }
func NotFound(msg string) *AppError     { return &AppError{Kind: KindNotFound, Message: msg} }
func Forbidden(msg string) *AppError    { return &AppError{Kind: KindForbidden, Message: msg} }
func Unauthorized(msg string) *AppError { return &AppError{Kind: KindUnauthorized, Message: msg} }

func SignatureError(err error) *AppError {
	return &AppError{Kind: KindSignature, Message: "invalid webhook signature", Err: err}
}

// Internal wraps an unexpected failure. The cause is logged, never returned to clients.
func Internal(msg string, err error) *AppError {
	return &AppError{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf reports the kind of err; errors that are not AppErrors are internal.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

var (
	ErrUserNotFound        = NotFound("user not found")
	ErrEventNotFound       = NotFound("event not found")
	ErrHostNotFound        = NotFound("host not found")
	ErrPaymentNotFound     = NotFound("payment not found")
	ErrReviewNotFound      = NotFound("review not found")
	ErrParticipantNotFound = NotFound("you are not a participant of this event")

	ErrEventFull          = BadRequest("event is already full")
	ErrEventNotOpen       = BadRequest("event is not open for registration")
	ErrEventStarted       = BadRequest("cannot join an event that has already started")
	ErrAlreadyJoined      = BadRequest("you have already joined this event")
	ErrLeaveAfterStart    = BadRequest("cannot leave an event that has already started")
	ErrPaymentConfirmed   = BadRequest("payment already confirmed")
	ErrIntentMismatch     = BadRequest("payment intent does not match this transaction")
	ErrPaymentIncomplete  = BadRequest("payment not completed")
	ErrReservationExpired = BadRequest("reservation expired")
	ErrPaymentSuperseded  = BadRequest("payment was replaced by a newer attempt and has been refunded")
	ErrEnrollmentLeft     = BadRequest("you left this event before paying, payment refunded")
	ErrInvalidRating      = BadRequest("rating must be an integer between 1 and 5")
	ErrAlreadyReviewed    = BadRequest("you have already reviewed this event")
	ErrReviewTooEarly     = BadRequest("cannot review an event that has not happened yet")

	ErrNotPaymentOwner = Forbidden("payment does not belong to this user")
	ErrNotParticipant  = Forbidden("only participants can review this event")
	ErrNotReviewAuthor = Forbidden("you can only modify your own reviews")
	ErrNotEventOwner   = Forbidden("you can only manage your own events")
)
