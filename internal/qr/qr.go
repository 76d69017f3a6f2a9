// Package qr renders and parses the scannable codes handed to users.
package qr

import (
	"errors"
	"strings"

	"github.com/skip2/go-qrcode"

	"absensi/internal/attendance"
)

// DefaultSize is the PNG edge length in pixels.
const DefaultSize = 256

var ErrMalformed = errors.New("malformed attendance code")

// Encode renders code as a PNG.
func Encode(code string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultSize
	}
	return qrcode.Encode(code, qrcode.Medium, size)
}

// Code is a parsed "<ORG>-<ROLE>-<id>" value. The org may itself contain
// dashes; role and id never do.
type Code struct {
	Org  string
	Role attendance.Role
	ID   string
}

// Parse splits a scanned code into its parts.
func Parse(raw string) (Code, error) {
	idSep := strings.LastIndex(raw, "-")
	if idSep <= 0 || idSep == len(raw)-1 {
		return Code{}, ErrMalformed
	}
	rest, id := raw[:idSep], raw[idSep+1:]
	roleSep := strings.LastIndex(rest, "-")
	if roleSep <= 0 {
		return Code{}, ErrMalformed
	}
	role := attendance.Role(strings.ToLower(rest[roleSep+1:]))
	if !role.Valid() {
		return Code{}, ErrMalformed
	}
	return Code{Org: rest[:roleSep], Role: role, ID: id}, nil
}

// String re-assembles the code.
func (c Code) String() string {
	return attendance.QRCodeFor(c.Org, c.Role, c.ID)
}
