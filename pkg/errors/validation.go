package errors

import (
	"strings"
	"unicode"
)

// maxIDLength bounds node identifiers; edge ids embed two of them.
const maxIDLength = 256

// ValidateNodeID validates a node identifier for use inside canonical edge ids.
//
// Edge ids have the form edge_{source}:{output}_{target}:{input}, so a node id
// containing ':' would make the id ambiguous to parse. The rules:
//   - No empty ids
//   - No control characters
//   - No ':' separator
//   - Maximum length of 256 characters
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidNodeID, "node id cannot be empty")
	}

	if len(id) > maxIDLength {
		return New(ErrCodeInvalidNodeID, "node id too long (max %d characters)", maxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidNodeID, "node id %q contains control characters", id)
		}
	}

	if strings.Contains(id, ":") {
		return New(ErrCodeInvalidNodeID, "node id %q contains reserved separator %q", id, ":")
	}

	return nil
}

// ValidatePortCount rejects negative port counts.
func ValidatePortCount(id string, inputs, outputs int) error {
	if inputs < 0 || outputs < 0 {
		return New(ErrCodeInvalidPort, "node %q has negative port count (inputs=%d, outputs=%d)", id, inputs, outputs)
	}
	return nil
}
