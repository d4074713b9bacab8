// Package webcrypto defines the WebCrypto-style subtle API the test vector
// trials are written against: algorithm and hash identifiers, algorithm
// parameter records, the opaque CryptoKey handle, the JSON Web Key export
// format and the SubtleCrypto contract itself.
//
// Error values mirror the DOMException names a browser would reject with, so
// a caller can tell a malformed request (ErrSyntax, ErrNotSupported) from a
// key misuse (ErrInvalidAccess), bad key material (ErrData) or a failed
// primitive (ErrOperation) with errors.Is.
package webcrypto
