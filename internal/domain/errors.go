// Package domain holds SafeMail's core types, repository ports, and the
// tagged error taxonomy every fallible operation returns.
package domain

import "fmt"

// Category tags an Error with the HTTP status class it maps to.
type Category string

const (
	CategoryDatabase     Category = "database"
	CategoryUser         Category = "user"
	CategorySession      Category = "session"
	CategoryCryptography Category = "cryptography"
	CategoryStamp        Category = "stamp"
	CategoryValidation   Category = "validation"
)

// Error is the single error type returned by every repository and service
// call. Intermediate layers re-categorize only when they have strictly more
// information (e.g. a unique-constraint violation on user insert becomes
// UserAlreadyExists instead of a bare database error).
type Error struct {
	Category Category
	Code     string
	Message  string
	cause    error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

func newErr(cat Category, code, msg string) *Error {
	return &Error{Category: cat, Code: code, Message: msg}
}

// Database errors. ErrDatabase wraps an underlying driver/store error
// without exposing its detail to callers outside this package.
func ErrDatabase(cause error) *Error {
	return &Error{Category: CategoryDatabase, Code: "database", Message: "Database error", cause: cause}
}

// User errors.
func ErrUserNotFound() *Error {
	return newErr(CategoryUser, "user_not_found", "User not found")
}
func ErrUserAlreadyExists() *Error {
	return newErr(CategoryUser, "user_already_exists", "User already exists")
}
func ErrInvalidCredentials() *Error {
	return newErr(CategoryUser, "invalid_credentials", "Invalid username or password")
}
func ErrInvalidUsername() *Error {
	return newErr(CategoryUser, "invalid_username", "Username is invalid")
}
func ErrInvalidPassword() *Error {
	return newErr(CategoryUser, "invalid_password", "Password is invalid")
}
func ErrInvalidPublicKey() *Error {
	return newErr(CategoryUser, "invalid_public_key", "Public key is invalid")
}

// Session errors.
func ErrSessionNotFound() *Error {
	return newErr(CategorySession, "session_not_found", "Non-expired session not found")
}

// Cryptography errors.
func ErrInvalidSignature() *Error {
	return newErr(CategoryCryptography, "invalid_signature", "Invalid signature")
}

// Stamp errors.
func ErrInvalidStamp() *Error {
	return newErr(CategoryStamp, "invalid_stamp", "Invalid stamp")
}
func ErrInvalidTimePeriod() *Error {
	return newErr(CategoryStamp, "invalid_time_period", "Out of time period")
}
func ErrInvalidProofOfWork() *Error {
	return newErr(CategoryStamp, "invalid_proof_of_work", "Invalid proof of work")
}
func ErrStampRequestNotFound() *Error {
	return newErr(CategoryStamp, "stamp_request_not_found", "Stamp request not found")
}
func ErrStampRequestExpired() *Error {
	return newErr(CategoryStamp, "stamp_request_expired", "Stamp request expired")
}

// ErrValidation wraps a human-readable validation failure.
func ErrValidation(format string, args ...interface{}) *Error {
	return newErr(CategoryValidation, "validation", fmt.Sprintf(format, args...))
}
