package errors

// ValidationError creates a new validation error (bad user input)
func ValidationError(message string) *FontSweepError {
	return &FontSweepError{
		Category: CategoryValidation,
		Severity: SeverityWarning,
		Message:  message,
	}
}

// ConfigError wraps a configuration loading/parsing failure
func ConfigError(err error, message string) *FontSweepError {
	return &FontSweepError{
		Category: CategoryConfig,
		Severity: SeverityFatal,
		Message:  message,
		Cause:    err,
	}
}

// DocumentError wraps a host document access failure
func DocumentError(err error, message string) *FontSweepError {
	return &FontSweepError{
		Category: CategoryDocument,
		Severity: SeverityError,
		Message:  message,
		Cause:    err,
	}
}

// FontLoadError wraps a font load failure; retryable since hosts may
// succeed on a later attempt
func FontLoadError(err error, message string) *FontSweepError {
	return &FontSweepError{
		Category:  CategoryFontLoad,
		Severity:  SeverityError,
		Message:   message,
		Cause:     err,
		Retryable: true,
	}
}

// TransportError wraps a messaging-layer failure; retryable
func TransportError(err error, message string) *FontSweepError {
	return &FontSweepError{
		Category:  CategoryTransport,
		Severity:  SeverityError,
		Message:   message,
		Cause:     err,
		Retryable: true,
	}
}

// StyleError creates a style-operation failure
func StyleError(message string) *FontSweepError {
	return &FontSweepError{
		Category: CategoryStyle,
		Severity: SeverityError,
		Message:  message,
	}
}
