package errors

import (
	"math"
	"strings"
	"unicode"
)

// Limits applied to untrusted input arriving over the API, LSP or MCP.
const (
	MaxNodeIDLength   = 256
	MaxDocumentLength = 1 << 20
	MaxCoordinate     = 1e9
)

// ValidateNodeID rejects ids that no parse pass could have produced:
// empty strings, control characters and overlong values.
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "node id cannot be empty")
	}
	if len(id) > MaxNodeIDLength {
		return New(ErrCodeInvalidInput, "node id too long (max %d characters)", MaxNodeIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "node id contains whitespace or control characters")
		}
	}
	return nil
}

// ValidateCoordinate requires a finite value of reasonable magnitude.
func ValidateCoordinate(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidInput, "%s must be a finite number", name)
	}
	if math.Abs(v) > MaxCoordinate {
		return New(ErrCodeInvalidInput, "%s out of range (max magnitude %g)", name, MaxCoordinate)
	}
	return nil
}

// ValidateDocument bounds the size of a diagram text and rejects NUL bytes.
// Any other content is accepted; the parser is lenient by construction.
func ValidateDocument(text string) error {
	if len(text) > MaxDocumentLength {
		return New(ErrCodeInvalidInput, "document too large (max %d bytes)", MaxDocumentLength)
	}
	if strings.ContainsRune(text, '\x00') {
		return New(ErrCodeInvalidInput, "document contains null bytes")
	}
	return nil
}
