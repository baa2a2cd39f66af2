package errs

import "errors"

// Domain-specific sentinel errors for the usecase layers
var (
	// Gift catalog errors
	ErrGiftNotFound = errors.New("gift not found")

	// Reservation errors
	ErrGiftAlreadyReserved = errors.New("gift already reserved by another user")
	ErrGiftNotReserved     = errors.New("gift is not reserved")
	ErrNotGiftHolder       = errors.New("gift is reserved by someone else")

	// Validation errors
	ErrDomainValidation = errors.New("domain validation error")

	// Operation errors
	ErrDatabaseOperationFailed = errors.New("database operation failed")
)
