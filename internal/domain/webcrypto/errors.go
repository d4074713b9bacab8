package webcrypto

import "errors"

var (
	// ErrNotSupported is returned for algorithms or parameters the platform does not implement.
	ErrNotSupported = errors.New("NotSupportedError")
	// ErrSyntax is returned for malformed parameters or key usages.
	ErrSyntax = errors.New("SyntaxError")
	// ErrInvalidAccess is returned when a key is used for an operation it does not permit.
	ErrInvalidAccess = errors.New("InvalidAccessError")
	// ErrData is returned when imported key material is malformed.
	ErrData = errors.New("DataError")
	// ErrOperation is returned when the underlying primitive fails.
	ErrOperation = errors.New("OperationError")
)
