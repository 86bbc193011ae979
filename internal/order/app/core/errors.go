package core

import "errors"

var (
	ErrParseCmd = errors.New("cannot parse arguments")
	ErrHelp     = errors.New("")

	ErrDBConn   = errors.New("db connection failure")
	ErrRMQConn  = errors.New("rabbitmq connection failure")
	ErrMBConn   = errors.New("message broker connection failure")
	ErrMBCh     = errors.New("message broker channel failure")
	ErrMBClosed = errors.New("message broker closed")

	ErrItemNotFound  = errors.New("menu item not found")
	ErrOutOfStock    = errors.New("not enough quantity for menu item")
	ErrOrderNotFound = errors.New("order not found")
	ErrStorage       = errors.New("storage failure")

	ErrValidation        = errors.New("validation failed")
	ErrFieldIsEmpty      = validation("field is empty")
	ErrInvalidStatus     = validation("unknown order status")
	ErrInvalidTransition = validation("status transition not allowed")
	ErrDuplicateItem     = validation("menu item name already exists")

	ErrUnauthorized          = errors.New("missing or invalid access token")
	ErrForbidden             = errors.New("forbidden: admins only")
	ErrMaxConcurrentExceeded = errors.New("too many orders, try again later")
	ErrRateLimited           = errors.New("rate limit exceeded")
)

// validationError lets every input rule match errors.Is(err, ErrValidation).
type validationError struct{ msg string }

func validation(msg string) error { return &validationError{msg: msg} }

func (e *validationError) Error() string        { return e.msg }
func (e *validationError) Is(target error) bool { return target == ErrValidation }
