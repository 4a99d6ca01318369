package delivery

import "fmt"

// Input error codes. These abort an export before any descriptor is generated.
const (
	CodeMissingRequiredField       = "MISSING_REQUIRED_FIELD"
	CodeUnknownPhotoID             = "UNKNOWN_PHOTO_ID"
	CodeInvalidFolderName          = "INVALID_FOLDER_NAME"
	CodeUnsupportedStandardVersion = "UNSUPPORTED_STANDARD_VERSION"
	CodeInvalidOutputFormat        = "INVALID_OUTPUT_FORMAT"
	CodeInvalidDeliveryFilename    = "INVALID_DELIVERY_FILENAME"
)

// ValidationError is an input error. Use errors.As to recover the code.
type ValidationError struct {
	Code    string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newValidationError(code, field, format string, args ...any) *ValidationError {
	return &ValidationError{Code: code, Field: field, Message: fmt.Sprintf(format, args...)}
}
