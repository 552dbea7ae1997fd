package domain

import "errors"

var (
	ErrEmptyItems           = errors.New("empty_items")
	ErrEventDateNotFuture   = errors.New("event_date_not_future")
	ErrInvalidEventDate     = errors.New("invalid_event_date")
	ErrInvalidName          = errors.New("invalid_name")
	ErrInvalidEmail         = errors.New("invalid_email")
	ErrInvalidPhone         = errors.New("invalid_phone")
	ErrInvalidItem          = errors.New("invalid_item")
	ErrInvalidPaymentMethod = errors.New("invalid_payment_method")
	ErrInvalidPaymentStatus = errors.New("invalid_payment_status")
	ErrInvalidStatus        = errors.New("invalid_status")
	ErrInvalidID            = errors.New("invalid_id")
	ErrInvalidReference     = errors.New("invalid_reference")
	ErrDuplicateKey         = errors.New("duplicate_key")
	ErrNotFound             = errors.New("not_found")
	ErrConcurrentUpdate     = errors.New("concurrent_update")
)
