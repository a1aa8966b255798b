package api

import (
	"crypto/rand"
	"math/big"
	"regexp"
)

const (
	idLength = 24
	charset  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	sessionIDPrefix = "evs_"
)

var sessionIDPattern = regexp.MustCompile(`^evs_[a-zA-Z0-9]{24}$`)

// NewSessionID generates a new stream session ID with the "evs_" prefix
// followed by 24 cryptographically random alphanumeric characters.
func NewSessionID() string {
	return sessionIDPrefix + randomAlphanumeric(idLength)
}

// ValidateSessionID checks whether the given string is a valid session ID.
func ValidateSessionID(id string) bool {
	return sessionIDPattern.MatchString(id)
}

func randomAlphanumeric(n int) string {
	max := big.NewInt(int64(len(charset)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic("crypto/rand failed: " + err.Error())
		}
		b[i] = charset[idx.Int64()]
	}
	return string(b)
}
