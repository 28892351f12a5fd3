package utils

import (
	"fmt"
	"math/rand"
	"time"
)

// NewOrderNumber builds a human-readable order number from a UTC timestamp
// plus a random suffix, e.g. "JM-20260828143055-4821". Collisions are
// unlikely but not impossible; the insert path treats a unique violation as
// ErrDuplicateOrderNumber and regenerates.
func NewOrderNumber() string {
	return fmt.Sprintf("JM-%s-%04d",
		time.Now().UTC().Format("20060102150405"),
		rand.Intn(10000))
}
