package core

import (
	"crypto/subtle"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// ErrHashLikePassword is returned by Encode for a cleartext password that Match would read as a hash.
var ErrHashLikePassword = errors.New("password must not look like a bcrypt hash")

// Passwords encodes and checks stored credentials.
// With Hash disabled passwords are stored and compared in cleartext, which keeps
// existing data readable but is a known weakness: enable auth.hashPasswords in production.
// A stored value shaped like a bcrypt hash is always checked as a hash, so such values
// are refused as cleartext passwords.
type Passwords struct {
	Hash bool
}

// Encode returns the value to store for pwd.
func (p Passwords) Encode(pwd string) (string, error) {
	if !p.Hash {
		if isBcryptHash(pwd) {
			return "", ErrHashLikePassword
		}
		return pwd, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Match reports whether given matches the stored value.
// Stored bcrypt hashes are always checked as hashes, so turning hashing off does not lock anyone out.
func (p Passwords) Match(stored, given string) bool {
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}

func isBcryptHash(s string) bool {
	if len(s) != 60 {
		return false
	}
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}
