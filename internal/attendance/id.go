package attendance

import (
	"crypto/rand"
	"math/big"
)

const (
	idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	idLength   = 7
)

// newID returns a short random base-36 id. Collisions are possible; callers
// that need uniqueness check against their collection.
func newID() string {
	buf := make([]byte, idLength)
	max := big.NewInt(int64(len(idAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic("attendance: crypto/rand unavailable: " + err.Error())
		}
		buf[i] = idAlphabet[n.Int64()]
	}
	return string(buf)
}
