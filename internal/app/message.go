package app

import (
	"github.com/couchcryptid/raincast/internal/domain"
)

// Message renders err as the one-line explanation shown to the operator.
func Message(err error) string {
	switch domain.FailureOf(err) {
	case domain.FailureArtifact:
		return "could not load model artifacts: " + err.Error()
	case domain.FailureInput:
		return "could not read input: " + err.Error()
	case domain.FailureType:
		return "a non-numeric value reached a numeric column: " + err.Error()
	default:
		return "scoring failed: " + err.Error()
	}
}
