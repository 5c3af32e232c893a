package testutil

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

var nameCounter atomic.Int64

// MakeID generates a unique ID for test entities.
func MakeID() string {
	return uuid.New().String()
}

// MakeFundName generates a unique fund name with the given prefix, so tests
// never collide on the fund name unique constraint.
func MakeFundName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, nameCounter.Add(1))
}
