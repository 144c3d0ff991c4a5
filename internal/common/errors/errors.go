// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidJobInput ErrorCode = "INVALID_JOB_INPUT"

	ErrCodeProviderNotFound         ErrorCode = "PROVIDER_NOT_FOUND"
	ErrCodeProviderStoreUnavailable ErrorCode = "PROVIDER_STORE_UNAVAILABLE"

	ErrCodeMergeWritebackFailed ErrorCode = "MERGE_WRITEBACK_FAILED"
	ErrCodeDedupPassInProgress  ErrorCode = "DEDUP_PASS_IN_PROGRESS"

	ErrCodeMatchingFailed ErrorCode = "MATCHING_FAILED"

	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout         ErrorCode = "TIMEOUT_ERROR"
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// AsStandardError finds a StandardError anywhere in err's chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewInvalidJobInputError rejects job variables that fail parsing or schema validation.
func NewInvalidJobInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidJobInput,
		Message:   "Job variables failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewProviderNotFoundError(providerID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderNotFound,
		Message:   "Provider not found",
		Details:   fmt.Sprintf("providerId: %s", providerID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewProviderStoreUnavailableError wraps a failing store read or write. Retryable.
func NewProviderStoreUnavailableError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderStoreUnavailable,
		Message:   "Provider store unavailable",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewMergeWritebackFailedError reports a merge whose survivor could not be saved.
func NewMergeWritebackFailedError(primaryID string, errs []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMergeWritebackFailed,
		Message:   "Merged provider could not be written back",
		Details:   fmt.Sprintf("primaryId: %s, errors: %s", primaryID, strings.Join(errs, "; ")),
		Retryable: true,
		Metadata:  map[string]interface{}{"primaryId": primaryID},
		Timestamp: time.Now().UTC(),
	}
}

func NewDedupPassInProgressError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDedupPassInProgress,
		Message:   "Another deduplication pass or merge is running",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewMatchingFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMatchingFailed,
		Message:   "Provider matching failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeExternalService,
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTimeout,
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to the codes caught by boundary
// events in the process models.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidJobInput:          "INVALID_JOB_INPUT",
	ErrCodeProviderNotFound:         "PROVIDER_NOT_FOUND",
	ErrCodeProviderStoreUnavailable: "PROVIDER_STORE_UNAVAILABLE",
	ErrCodeMergeWritebackFailed:     "MERGE_WRITEBACK_FAILED",
	ErrCodeDedupPassInProgress:      "DEDUP_PASS_IN_PROGRESS",
	ErrCodeMatchingFailed:           "MATCHING_FAILED",
	ErrCodeExternalService:          "EXTERNAL_SERVICE_ERROR",
	ErrCodeTimeout:                  "TIMEOUT_ERROR",
	ErrCodeInternal:                 "INTERNAL_ERROR",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeProviderStoreUnavailable,
		ErrCodeExternalService:
		return 3

	case ErrCodeMergeWritebackFailed,
		ErrCodeDedupPassInProgress,
		ErrCodeTimeout:
		return 2

	default:
		return 0 // business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "PROVIDER"):
		return "STORAGE"
	case strings.Contains(codeStr, "MERGE") || strings.Contains(codeStr, "DEDUP"):
		return "DEDUPLICATION"
	case strings.Contains(codeStr, "MATCHING"):
		return "MATCHING"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	case strings.Contains(codeStr, "TIMEOUT") || strings.Contains(codeStr, "EXTERNAL"):
		return "INFRASTRUCTURE"
	default:
		return "OTHER"
	}
}
