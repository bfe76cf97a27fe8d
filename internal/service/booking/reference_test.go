package booking

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBookingRef_Format(t *testing.T) {
	before := time.Now().UnixMilli()
	ref := newBookingRef()
	after := time.Now().UnixMilli()

	require.True(t, strings.HasPrefix(ref, "BLW"))

	rest := strings.TrimPrefix(ref, "BLW")
	require.Len(t, rest, 13+5)

	millis, err := strconv.ParseInt(rest[:13], 10, 64)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, millis, before)
	assert.LessOrEqual(t, millis, after)

	for _, ch := range rest[13:] {
		assert.Contains(t, base36, string(ch))
	}
}

func TestNewBookingRef_Distinct(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		ref := newBookingRef()
		assert.False(t, seen[ref], "duplicate reference %s", ref)
		seen[ref] = true
	}
}
