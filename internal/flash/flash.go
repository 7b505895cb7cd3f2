package flash

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"

	"github.com/gin-gonic/gin"
)

const cookieName = "gallery_flash"

// Store sets and reads one-shot status messages via a signed cookie.
type Store struct {
	secret []byte
}

// NewStore builds a flash store signing with the given secret key.
func NewStore(secret string) *Store {
	return &Store{secret: []byte(secret)}
}

// Set queues a message for the next rendered page.
func (s *Store) Set(c *gin.Context, message string) {
	c.SetCookie(cookieName, s.encode(message), 300, "/", "", false, true)
}

// Take returns the pending message, if any, and clears it. Messages with a
// bad signature are dropped.
func (s *Store) Take(c *gin.Context) (string, bool) {
	raw, err := c.Cookie(cookieName)
	if err != nil {
		return "", false
	}
	c.SetCookie(cookieName, "", -1, "/", "", false, true)

	message, ok := s.decode(raw)
	return message, ok
}

func (s *Store) encode(message string) string {
	payload := base64.RawURLEncoding.EncodeToString([]byte(message))
	return payload + "." + s.sign(payload)
}

func (s *Store) decode(raw string) (string, bool) {
	payload, signature, found := strings.Cut(raw, ".")
	if !found {
		return "", false
	}
	if !hmac.Equal([]byte(signature), []byte(s.sign(payload))) {
		return "", false
	}
	decoded, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return "", false
	}
	return string(decoded), true
}

func (s *Store) sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
