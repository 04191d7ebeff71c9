package batch

import (
	"fmt"
	"strings"
)

// FailurePolicy decides what a single failed image does to its batch.
type FailurePolicy string

const (
	// AllOrNothing drops the whole batch on the first failure.
	AllOrNothing FailurePolicy = "all-or-nothing"
	// Partial archives whatever succeeded, failing only when nothing did.
	Partial FailurePolicy = "partial"
)

func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch FailurePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", AllOrNothing:
		return AllOrNothing, nil
	case Partial:
		return Partial, nil
	default:
		return "", fmt.Errorf("unknown failure policy %q", s)
	}
}
