package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeRateLimited        ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
)

// Court routing codes.
const (
	ErrCodeInvalidIdentifier ErrorCode = "COURT_001"
)

// Harvest codes.
const (
	ErrCodeCourtUnreachable     ErrorCode = "HARVEST_001"
	ErrCodeRecordNotFound       ErrorCode = "HARVEST_002"
	ErrCodeMissingJudicialUnit  ErrorCode = "HARVEST_003"
	ErrCodeHarvestTechnical     ErrorCode = "HARVEST_004"
	ErrCodeHarvestQueueDisabled ErrorCode = "HARVEST_005"
)

// Store codes.
const (
	ErrCodePersistenceConflict ErrorCode = "STORE_001"
	ErrCodeAdjudicatorNotFound ErrorCode = "STORE_002"
)

// Classification codes.
const (
	ErrCodeRuleTableInvalid ErrorCode = "CLASSIFY_001"
)

// Adherence codes.
const (
	ErrCodeInsufficientHistory ErrorCode = "ADHERENCE_001"
	ErrCodeEmbeddingFailed     ErrorCode = "ADHERENCE_002"
	ErrCodeEmptyDocument       ErrorCode = "ADHERENCE_003"
)

// Text-generation codes.
const (
	ErrCodeLLMUnavailable ErrorCode = "LLM_001"
	ErrCodeLLMEmptyReply  ErrorCode = "LLM_002"
)

// Document codes.
const (
	ErrCodeUnsupportedDocument ErrorCode = "DOC_001"
	ErrCodeArchiveFailed       ErrorCode = "DOC_002"
)

// Short aliases used at call sites.
const (
	CodeOK      = ErrorCode("OK")
	CodeUnknown = ErrorCode("UNKNOWN")

	CodeInternal           = ErrCodeInternal
	CodeInvalidParam       = ErrCodeBadRequest
	CodeNotFound           = ErrCodeNotFound
	CodeConflict           = ErrCodeConflict
	CodeRateLimited        = ErrCodeRateLimited
	CodeServiceUnavailable = ErrCodeServiceUnavailable
	CodeValidation         = ErrCodeValidation
	CodeDatabaseError      = ErrCodeDatabaseError

	CodeInvalidIdentifier   = ErrCodeInvalidIdentifier
	CodeCourtUnreachable    = ErrCodeCourtUnreachable
	CodeRecordNotFound      = ErrCodeRecordNotFound
	CodeMissingJudicialUnit = ErrCodeMissingJudicialUnit
	CodeHarvestTechnical    = ErrCodeHarvestTechnical
	CodePersistenceConflict = ErrCodePersistenceConflict
	CodeAdjudicatorNotFound = ErrCodeAdjudicatorNotFound
	CodeInsufficientHistory = ErrCodeInsufficientHistory
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeRateLimited:        http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,

	ErrCodeInvalidIdentifier: http.StatusBadRequest,

	ErrCodeCourtUnreachable:     http.StatusBadGateway,
	ErrCodeRecordNotFound:       http.StatusNotFound,
	ErrCodeMissingJudicialUnit:  http.StatusUnprocessableEntity,
	ErrCodeHarvestTechnical:     http.StatusBadGateway,
	ErrCodeHarvestQueueDisabled: http.StatusServiceUnavailable,

	ErrCodePersistenceConflict: http.StatusConflict,
	ErrCodeAdjudicatorNotFound: http.StatusNotFound,

	ErrCodeRuleTableInvalid: http.StatusInternalServerError,

	ErrCodeInsufficientHistory: http.StatusUnprocessableEntity,
	ErrCodeEmbeddingFailed:     http.StatusBadGateway,
	ErrCodeEmptyDocument:       http.StatusBadRequest,

	ErrCodeLLMUnavailable: http.StatusBadGateway,
	ErrCodeLLMEmptyReply:  http.StatusBadGateway,

	ErrCodeUnsupportedDocument: http.StatusUnsupportedMediaType,
	ErrCodeArchiveFailed:       http.StatusInternalServerError,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeRateLimited:        "rate limit exceeded",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization error",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",

	ErrCodeInvalidIdentifier: "case identifier has fewer than 20 digits",

	ErrCodeCourtUnreachable:     "court rejected the connection",
	ErrCodeRecordNotFound:       "reference case not found",
	ErrCodeMissingJudicialUnit:  "reference case has no adjudicating body",
	ErrCodeHarvestTechnical:     "technical failure while harvesting",
	ErrCodeHarvestQueueDisabled: "asynchronous harvesting is disabled",

	ErrCodePersistenceConflict: "concurrent write conflict",
	ErrCodeAdjudicatorNotFound: "adjudicator not found",

	ErrCodeRuleTableInvalid: "invalid classification rule table",

	ErrCodeInsufficientHistory: "adjudicator has too few records",
	ErrCodeEmbeddingFailed:     "embedding model failed",
	ErrCodeEmptyDocument:       "document has no text",

	ErrCodeLLMUnavailable: "text-generation service unavailable",
	ErrCodeLLMEmptyReply:  "text-generation service returned no text",

	ErrCodeUnsupportedDocument: "unsupported document type",
	ErrCodeArchiveFailed:       "failed to archive document",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 1 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

//Personal.AI order the ending
