package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidType          ErrorCode = 107
	ErrCodeInvalidPeriod        ErrorCode = 108
	ErrCodeMissingParameter     ErrorCode = 109
	ErrCodeInvalidDateRange     ErrorCode = 110

	// Data-shape errors (200-299)
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeMissingReferenceRow   ErrorCode = 201
	ErrCodeAmbiguousReferenceRow ErrorCode = 202
	ErrCodeZeroCandleRange       ErrorCode = 203
	ErrCodeZeroMovingAverage     ErrorCode = 204
	ErrCodeInvalidPriceRow       ErrorCode = 205

	// Feature errors (300-399)
	ErrCodeFeatureNotFound      ErrorCode = 300
	ErrCodeFeatureAlreadyExists ErrorCode = 301
	ErrCodeFeatureCalculation   ErrorCode = 302

	// Storage errors (400-499)
	ErrCodeFileReadFailed  ErrorCode = 400
	ErrCodeFileWriteFailed ErrorCode = 401
	ErrCodeSchemaMismatch  ErrorCode = 402
	ErrCodeQueryFailed     ErrorCode = 403

	// Unsupported configuration (500-599)
	ErrCodeUnsupportedPivotType ErrorCode = 500
	ErrCodeUnsupportedFormat    ErrorCode = 501
	ErrCodeInvalidInterval      ErrorCode = 502
	ErrCodeInvalidProvider      ErrorCode = 503

	// Market data errors (700-799)
	ErrCodeMarketDataFetchFailed ErrorCode = 700
	ErrCodeMarketDataWriteFailed ErrorCode = 701
	ErrCodeMarketDataParseFailed ErrorCode = 702
)

// IsInvalidInput reports whether the code belongs to the data-shape category.
func (c ErrorCode) IsInvalidInput() bool {
	return c >= 200 && c < 300
}

// IsUnsupported reports whether the code belongs to the unsupported-configuration category.
func (c ErrorCode) IsUnsupported() bool {
	return c >= 500 && c < 600
}
