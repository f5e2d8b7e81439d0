package service

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"

	"reviewhub/internal/http-api/models"
)

// confirmation codes are 24 hex characters, enough to not be guessable and
// short enough to retype from a mail client
const confirmationCodeLen = 24

// ConfirmationCodes derives signup confirmation codes. A code is a keyed
// blake2b digest over the user's persisted identity and role, so issuance is
// deterministic: the same state always reproduces the same code (repeat
// signups stay idempotent), while any change to username, email or role
// yields a different one.
type ConfirmationCodes struct {
	key []byte
}

func NewConfirmationCodes(secret string) *ConfirmationCodes {
	key := []byte(secret)
	if len(key) > blake2b.Size {
		sum := blake2b.Sum256(key)
		key = sum[:]
	}
	return &ConfirmationCodes{key: key}
}

// Issue derives the confirmation code for the user's current state. The code
// is opaque to callers and carries no reusable secret material.
func (c *ConfirmationCodes) Issue(user *models.User) string {
	h, _ := blake2b.New256(c.key) // key length is bounded in the constructor
	h.Write([]byte(user.Username))
	h.Write([]byte{0})
	h.Write([]byte(user.Email))
	h.Write([]byte{0})
	h.Write([]byte(user.Role))
	return hex.EncodeToString(h.Sum(nil))[:confirmationCodeLen]
}

// Verify compares the supplied code against the last issued value stored on
// the user. A user who never signed up has no stored code and never matches.
func (c *ConfirmationCodes) Verify(user *models.User, code string) bool {
	return user.ConfirmationCode != "" && user.ConfirmationCode == code
}
