package domain

import "errors"

var (
	// ErrProductNotFound is returned when no product database knows the barcode
	ErrProductNotFound = errors.New("product not found")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrInvalidBarcode is returned when a barcode is empty or malformed
	ErrInvalidBarcode = errors.New("invalid barcode")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when cache service is unavailable
	ErrCacheUnavailable = errors.New("cache service unavailable")

	// ErrProductAPIFailure is returned when an upstream product database request fails
	ErrProductAPIFailure = errors.New("product database request failed")

	// ErrDocumentNotFound is returned by a DocumentStore for a missing key
	ErrDocumentNotFound = errors.New("document not found")

	// ErrStorageFailure is returned when the document store cannot be read or written
	ErrStorageFailure = errors.New("storage request failed")

	// ErrUserExists is returned when registering a taken username
	ErrUserExists = errors.New("username already exists")

	// ErrUserNotFound is returned when a user has no stored credentials
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCredentials is returned for a failed login or reset attempt
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrInvalidToken is returned when a session token cannot be verified
	ErrInvalidToken = errors.New("invalid token")

	// ErrProfileIncomplete is returned when an analysis needs profile fields the user has not filled in
	ErrProfileIncomplete = errors.New("profile is incomplete")

	// ErrNoBarcode is returned when no barcode symbol is found in an image
	ErrNoBarcode = errors.New("could not detect a barcode in the image")

	// ErrNoText is returned when OCR finds no text on a label image
	ErrNoText = errors.New("no text found in the image")

	// ErrUnsupportedImage is returned for uploads that are not png, jpeg or gif
	ErrUnsupportedImage = errors.New("unsupported image format")

	// ErrAnalysisFailed is returned when the generative model call fails
	ErrAnalysisFailed = errors.New("analysis failed")

	// ErrHistoryEntryNotFound is returned when a barcode is not in the user's history
	ErrHistoryEntryNotFound = errors.New("product not found in history")
)

// ValidationError carries a message meant for the end user.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError with the given user message
func NewValidationError(message string) error {
	return &ValidationError{Message: message}
}

// IsValidationError reports whether err wraps a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
