package storage

import (
	"errors"
	"fmt"
)

// ErrorCode represents different types of page cache errors
type ErrorCode int

const (
	// Generic errors
	ErrCodeUnknown ErrorCode = iota
	ErrCodeInternal

	// Page errors
	ErrCodeInvalidPageID
	ErrCodePageNotResident
	ErrCodePageTooLarge

	// Buffer pool errors
	ErrCodeNoFreePages
	ErrCodeInvalidPin

	// Backing store errors
	ErrCodeDiskReadFailed
	ErrCodeDiskWriteFailed

	// Configuration errors
	ErrCodeInvalidConfig
)

// StorageError represents a page cache error with context
type StorageError struct {
	Code    ErrorCode
	Message string
	Op      string // Operation that failed
	Err     error  // Underlying error (if any)
}

// Error implements the error interface
func (e *StorageError) Error() string {
	if e.Op != "" {
		if e.Err != nil {
			return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
		}
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is checks if the error matches a specific error code
func (e *StorageError) Is(target error) bool {
	if t, ok := target.(*StorageError); ok {
		return e.Code == t.Code
	}
	return false
}

// NewStorageError creates a new storage error
func NewStorageError(code ErrorCode, op, message string, err error) *StorageError {
	return &StorageError{
		Code:    code,
		Message: message,
		Op:      op,
		Err:     err,
	}
}

// Sentinels for errors.Is. Matching is by code only.
var (
	ErrPoolExhausted   = &StorageError{Code: ErrCodeNoFreePages, Message: "no evictable frame"}
	ErrPageNotResident = &StorageError{Code: ErrCodePageNotResident, Message: "page not resident"}
	ErrInvalidPin      = &StorageError{Code: ErrCodeInvalidPin, Message: "page is not pinned"}
	ErrWriteFailed     = &StorageError{Code: ErrCodeDiskWriteFailed, Message: "backing store write failed"}
	ErrReadFailed      = &StorageError{Code: ErrCodeDiskReadFailed, Message: "backing store read failed"}
	ErrPageTooLarge    = &StorageError{Code: ErrCodePageTooLarge, Message: "payload exceeds page slot"}
)

// Helper functions for common errors

func ErrNoFreePages(op string) *StorageError {
	return NewStorageError(
		ErrCodeNoFreePages,
		op,
		"no free or evictable frame in buffer pool",
		nil,
	)
}

func ErrNotResident(op string, pageID PageID) *StorageError {
	return NewStorageError(
		ErrCodePageNotResident,
		op,
		fmt.Sprintf("page %d is not resident", pageID),
		nil,
	)
}

func ErrPageNotPinned(op string, pageID PageID) *StorageError {
	return NewStorageError(
		ErrCodeInvalidPin,
		op,
		fmt.Sprintf("page %d has pin count 0", pageID),
		nil,
	)
}

func ErrInvalidPageID(op string) *StorageError {
	return NewStorageError(
		ErrCodeInvalidPageID,
		op,
		"invalid page id",
		nil,
	)
}

func ErrPayloadTooLarge(op string, pageID PageID, size, limit int) *StorageError {
	return NewStorageError(
		ErrCodePageTooLarge,
		op,
		fmt.Sprintf("page %d payload is %d bytes, slot holds %d", pageID, size, limit),
		nil,
	)
}

func ErrDiskRead(op string, pageID PageID, err error) *StorageError {
	return NewStorageError(
		ErrCodeDiskReadFailed,
		op,
		fmt.Sprintf("failed to read page %d", pageID),
		err,
	)
}

func ErrDiskWrite(op string, pageID PageID, err error) *StorageError {
	return NewStorageError(
		ErrCodeDiskWriteFailed,
		op,
		fmt.Sprintf("failed to write page %d", pageID),
		err,
	)
}

func ErrInvalidConfig(message string) *StorageError {
	return NewStorageError(
		ErrCodeInvalidConfig,
		"Validate",
		message,
		nil,
	)
}

// IsErrorCode checks if an error (or anything it wraps) has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var se *StorageError
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrCodeUnknown
func GetErrorCode(err error) ErrorCode {
	var se *StorageError
	if errors.As(err, &se) {
		return se.Code
	}
	return ErrCodeUnknown
}
