package csrf

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"strings"
	"time"
)

const (
	CookieName = "hds_csrf"
	HeaderName = "X-CSRF-Token"

	nonceSize = 16
)

var (
	ErrMalformedToken = errors.New("csrf: malformed token")
	ErrBadSignature   = errors.New("csrf: signature mismatch")
	ErrExpiredToken   = errors.New("csrf: token expired")
)

// Token is an issued CSRF token and the moment it stops being accepted.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// Manager issues and verifies stateless HMAC-signed tokens of the form
// base64url(nonce || expiry) "." hex(hmac-sha256(payload)).
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

func (m *Manager) Issue() (Token, error) {
	payload := make([]byte, nonceSize+8)
	if _, err := rand.Read(payload[:nonceSize]); err != nil {
		return Token{}, err
	}

	expiresAt := m.now().Add(m.ttl).UTC().Truncate(time.Second)
	binary.BigEndian.PutUint64(payload[nonceSize:], uint64(expiresAt.Unix()))

	encoded := base64.RawURLEncoding.EncodeToString(payload)
	return Token{
		Value:     encoded + "." + m.sign(encoded),
		ExpiresAt: expiresAt,
	}, nil
}

func (m *Manager) Verify(token string) error {
	encoded, signature, ok := strings.Cut(token, ".")
	if !ok || encoded == "" || signature == "" {
		return ErrMalformedToken
	}

	payload, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil || len(payload) != nonceSize+8 {
		return ErrMalformedToken
	}

	if !hmac.Equal([]byte(signature), []byte(m.sign(encoded))) {
		return ErrBadSignature
	}

	expiresAt := time.Unix(int64(binary.BigEndian.Uint64(payload[nonceSize:])), 0)
	if !m.now().Before(expiresAt) {
		return ErrExpiredToken
	}

	return nil
}

// VerifyDoubleSubmit requires the header token to match the cookie token and be valid.
func (m *Manager) VerifyDoubleSubmit(headerToken, cookieToken string) error {
	if headerToken == "" || cookieToken == "" {
		return ErrMalformedToken
	}
	if !hmac.Equal([]byte(headerToken), []byte(cookieToken)) {
		return ErrBadSignature
	}
	return m.Verify(headerToken)
}

func (m *Manager) sign(encoded string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(encoded))
	return hex.EncodeToString(mac.Sum(nil))
}
