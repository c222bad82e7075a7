package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const botToken = "123456:ABC-DEF"

// signWidget подписывает данные так же, как Telegram Login Widget
func signWidget(d *TelegramAuthData) {
	check := fmt.Sprintf("auth_date=%d\nfirst_name=%s\nid=%d\nusername=%s", d.AuthDate, d.FirstName, d.ID, d.Username)
	secret := sha256.Sum256([]byte(botToken))
	mac := hmac.New(sha256.New, secret[:])
	mac.Write([]byte(check))
	d.Hash = hex.EncodeToString(mac.Sum(nil))
}

func TestAuthenticateWithTelegram(t *testing.T) {
	s := NewAuthService("secret", time.Hour, 42, botToken)

	data := &TelegramAuthData{ID: 42, FirstName: "Org", Username: "org", AuthDate: time.Now().Unix()}
	signWidget(data)
	token, err := s.AuthenticateWithTelegram(data)
	require.NoError(t, err)
	id, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	tampered := *data
	tampered.Username = "mallory"
	_, err = s.AuthenticateWithTelegram(&tampered)
	assert.ErrorIs(t, err, ErrForbidden)

	stale := &TelegramAuthData{ID: 42, FirstName: "Org", Username: "org", AuthDate: time.Now().Add(-48 * time.Hour).Unix()}
	signWidget(stale)
	_, err = s.AuthenticateWithTelegram(stale)
	assert.ErrorIs(t, err, ErrForbidden)

	stranger := &TelegramAuthData{ID: 7, FirstName: "X", Username: "x", AuthDate: time.Now().Unix()}
	signWidget(stranger)
	_, err = s.AuthenticateWithTelegram(stranger)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAuthService_RoundTrip(t *testing.T) {
	s := NewAuthService("secret", time.Hour, 42, botToken)

	token, err := s.IssueToken(42)
	require.NoError(t, err)

	id, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestAuthService_Rejects(t *testing.T) {
	s := NewAuthService("secret", time.Hour, 42, botToken)

	_, err := s.IssueToken(7)
	assert.ErrorIs(t, err, ErrForbidden)

	other, err := NewAuthService("other", time.Hour, 42, botToken).IssueToken(42)
	require.NoError(t, err)
	_, err = s.ValidateToken(other)
	assert.ErrorIs(t, err, ErrForbidden)

	expired, err := NewAuthService("secret", -time.Minute, 42, botToken).IssueToken(42)
	require.NoError(t, err)
	_, err = s.ValidateToken(expired)
	assert.ErrorIs(t, err, ErrForbidden)

	wrongRole := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"telegram_id": 42,
		"role":        "participant",
		"exp":         time.Now().Add(time.Hour).Unix(),
	})
	signed, err := wrongRole.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = s.ValidateToken(signed)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, KindForbidden, KindOf(err))
}
