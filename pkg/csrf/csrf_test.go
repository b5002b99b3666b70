package csrf

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	m := NewManager("top-secret", time.Hour)

	token, err := m.Issue()
	require.NoError(t, err)
	assert.NoError(t, m.Verify(token.Value))
	assert.NoError(t, m.VerifyDoubleSubmit(token.Value, token.Value))
}

func TestVerify_RejectsTamperedAndForeignTokens(t *testing.T) {
	m := NewManager("top-secret", time.Hour)
	other := NewManager("another-secret", time.Hour)

	token, err := other.Issue()
	require.NoError(t, err)
	assert.ErrorIs(t, m.Verify(token.Value), ErrBadSignature)

	own, err := m.Issue()
	require.NoError(t, err)
	tampered := strings.Replace(own.Value, own.Value[:4], "AAAA", 1)
	assert.Error(t, m.Verify(tampered))

	assert.ErrorIs(t, m.Verify("no-dot"), ErrMalformedToken)
	assert.ErrorIs(t, m.Verify("!!!.abc"), ErrMalformedToken)
}

func TestVerify_Expired(t *testing.T) {
	m := NewManager("top-secret", time.Minute)
	issuedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issuedAt }

	token, err := m.Issue()
	require.NoError(t, err)

	m.now = func() time.Time { return issuedAt.Add(2 * time.Minute) }
	assert.ErrorIs(t, m.Verify(token.Value), ErrExpiredToken)
}

func TestVerifyDoubleSubmit_Mismatch(t *testing.T) {
	m := NewManager("top-secret", time.Hour)
	a, _ := m.Issue()
	b, _ := m.Issue()

	assert.ErrorIs(t, m.VerifyDoubleSubmit(a.Value, b.Value), ErrBadSignature)
	assert.ErrorIs(t, m.VerifyDoubleSubmit("", a.Value), ErrMalformedToken)
}
