package booking

import (
	"math/rand/v2"
	"strconv"
	"time"
)

const refPrefix = "BLW"

const base36 = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// newBookingRef mints the human-facing booking reference: prefix, epoch
// millis, and 5 random base36 characters. Practically unique, but not a
// secret. Anyone holding the reference can look up the booking.
func newBookingRef() string {
	var suffix [5]byte
	for i := range suffix {
		suffix[i] = base36[rand.IntN(len(base36))]
	}
	return refPrefix + strconv.FormatInt(time.Now().UnixMilli(), 10) + string(suffix[:])
}
