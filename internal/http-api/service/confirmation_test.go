package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"reviewhub/internal/http-api/models"
)

func TestConfirmationCodes_Deterministic(t *testing.T) {
	codes := NewConfirmationCodes("test-secret")
	user := &models.User{Username: "bookworm", Email: "bookworm@example.com", Role: models.RoleUser}

	first := codes.Issue(user)
	second := codes.Issue(user)

	assert.Equal(t, first, second)
	assert.Len(t, first, confirmationCodeLen)
}

func TestConfirmationCodes_ChangesWithState(t *testing.T) {
	codes := NewConfirmationCodes("test-secret")
	user := &models.User{Username: "bookworm", Email: "bookworm@example.com", Role: models.RoleUser}
	base := codes.Issue(user)

	promoted := *user
	promoted.Role = models.RoleModerator
	assert.NotEqual(t, base, codes.Issue(&promoted))

	renamed := *user
	renamed.Email = "other@example.com"
	assert.NotEqual(t, base, codes.Issue(&renamed))
}

func TestConfirmationCodes_DifferentSecrets(t *testing.T) {
	user := &models.User{Username: "bookworm", Email: "bookworm@example.com", Role: models.RoleUser}
	a := NewConfirmationCodes("secret-a").Issue(user)
	b := NewConfirmationCodes("secret-b").Issue(user)
	assert.NotEqual(t, a, b)
}

func TestConfirmationCodes_Verify(t *testing.T) {
	codes := NewConfirmationCodes("test-secret")
	user := &models.User{Username: "bookworm", Email: "bookworm@example.com", Role: models.RoleUser}
	user.ConfirmationCode = codes.Issue(user)

	assert.True(t, codes.Verify(user, user.ConfirmationCode))
	assert.False(t, codes.Verify(user, "wrong-code"))

	// Never signed up: nothing stored, nothing matches.
	fresh := &models.User{Username: "ghost"}
	assert.False(t, codes.Verify(fresh, ""))
}

func TestConfirmationCodes_StoredCodeSurvivesStateChange(t *testing.T) {
	// Re-deriving after a profile change yields a new value, but the stored
	// code is what verification checks against until a new signup replaces it.
	codes := NewConfirmationCodes("test-secret")
	user := &models.User{Username: "bookworm", Email: "bookworm@example.com", Role: models.RoleUser}
	user.ConfirmationCode = codes.Issue(user)

	user.Role = models.RoleModerator
	assert.True(t, codes.Verify(user, user.ConfirmationCode))
	assert.False(t, codes.Verify(user, codes.Issue(user)))
}
