package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	Validation                  Kind = "validation_error"
	Unauthorized                Kind = "unauthorized"
	Forbidden                   Kind = "forbidden"
	NotFound                    Kind = "not_found"
	LimitReached                Kind = "limit_reached"
	FeatureUnavailable          Kind = "feature_unavailable"
	Conflict                    Kind = "conflict"
	SignatureInvalid            Kind = "signature_invalid"
	GatewayUnreachable          Kind = "gateway_unreachable"
	GatewayReportedFailure      Kind = "gateway_reported_failure"
	PaymentRecordNotFound       Kind = "payment_record_not_found"
	AlreadyOnboarded            Kind = "already_onboarded"
	NoSubscription              Kind = "no_subscription"
	AlreadyCanceled             Kind = "already_canceled"
	NotScheduledForCancellation Kind = "not_scheduled_for_cancellation"
	PaymentNotSuccessful        Kind = "payment_not_successful"
	Internal                    Kind = "internal_error"
)

// Error is a user-facing failure. Message is safe to show; Err is the
// underlying cause and is only logged.
type Error struct {
	Kind    Kind
	Message string
	Err     error

	// set for LimitReached
	Limit   int
	Current int
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func NewLimitReached(resource string, limit, current int) *Error {
	return &Error{
		Kind:    LimitReached,
		Message: fmt.Sprintf("You have reached your plan limit of %d %s. Upgrade your plan to add more.", limit, resource),
		Limit:   limit,
		Current: current,
	}
}

// KindOf returns Internal for anything that is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// As extracts the *Error from a chain.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
