package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"quiz-room-service/internal/domain"
)

func TestLoginAndVerify(t *testing.T) {
	m := NewManager("pw", "secret", time.Hour)

	token, err := m.Login("pw")
	require.NoError(t, err)
	assert.NoError(t, m.Verify(token))

	_, err = m.Login("wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidPassword)
}

func TestVerifyRejectsForeignAndExpiredTokens(t *testing.T) {
	m := NewManager("pw", "secret", time.Hour)
	other := NewManager("pw", "other-secret", time.Hour)

	foreign, err := other.Login("pw")
	require.NoError(t, err)
	assert.Error(t, m.Verify(foreign))

	expired := NewManager("pw", "secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.Login("pw")
	require.NoError(t, err)
	assert.Error(t, m.Verify(old))
}

func TestEmptyPasswordDisablesLogin(t *testing.T) {
	m := NewManager("", "secret", time.Hour)
	_, err := m.Login("")
	assert.ErrorIs(t, err, domain.ErrInvalidPassword)
}
