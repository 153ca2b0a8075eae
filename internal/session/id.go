package session

import (
	"math/rand/v2"
	"strconv"
	"time"
)

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewID returns a session identifier of the form sess_<unix-ms>_<9 base36>.
func NewID(now time.Time) string {
	suffix := make([]byte, 9)
	for i := range suffix {
		suffix[i] = idAlphabet[rand.IntN(len(idAlphabet))]
	}
	return "sess_" + strconv.FormatInt(now.UnixMilli(), 10) + "_" + string(suffix)
}
