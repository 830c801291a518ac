package validation

const (
	// Password requirements
	MinPasswordLength = 8
	MaxPasswordLength = 72

	// String lengths
	MaxNameLength        = 255
	MaxDescriptionLength = 5000
	MaxReasonLength      = 1000
	MaxAltTextLength     = 255
)
