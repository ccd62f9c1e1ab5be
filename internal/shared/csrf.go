package shared

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

// CSRFManager issues and validates double-submit tokens bound to a session.
type CSRFManager struct {
	secret []byte
}

// NewCSRFManager builds a CSRFManager with the given secret.
func NewCSRFManager(secret string) *CSRFManager {
	return &CSRFManager{secret: []byte(secret)}
}

// Issue returns a fresh token tied to the session id.
func (m *CSRFManager) Issue(sessionID string) string {
	nonce := make([]byte, 16)
	_, _ = rand.Read(nonce)
	encodedNonce := base64.RawURLEncoding.EncodeToString(nonce)
	return encodedNonce + "." + m.sign(sessionID, encodedNonce)
}

// Validate checks a submitted token against the session id.
func (m *CSRFManager) Validate(sessionID, token string) error {
	if token == "" {
		return ErrCSRFTokenMissing
	}
	parts := strings.SplitN(token, ".", 2)
	if len(parts) != 2 {
		return ErrCSRFTokenMismatch
	}
	expected := m.sign(sessionID, parts[0])
	if !hmac.Equal([]byte(expected), []byte(parts[1])) {
		return ErrCSRFTokenMismatch
	}
	return nil
}

func (m *CSRFManager) sign(sessionID, nonce string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(sessionID))
	mac.Write([]byte{0})
	mac.Write([]byte(nonce))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
