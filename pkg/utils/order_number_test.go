package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewOrderNumber_Format(t *testing.T) {
	pattern := regexp.MustCompile(`^JM-\d{14}-\d{4}$`)

	for i := 0; i < 10; i++ {
		number := NewOrderNumber()
		require.True(t, pattern.MatchString(number), "unexpected order number %q", number)
	}
}
