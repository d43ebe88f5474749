package httpapi

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"
)

const flashCookie = "ats_flash"

// Flash is a one-shot message rendered on the next page load. The cookie is
// HMAC-signed so a client cannot inject arbitrary banner text.
type Flash struct {
	Kind    string // "success" or "error"
	Message string
}

type flashCodec struct {
	secret []byte
}

func newFlashCodec(secret string) flashCodec {
	return flashCodec{secret: []byte(secret)}
}

func (c flashCodec) set(w http.ResponseWriter, kind, message string) {
	payload := base64.RawURLEncoding.EncodeToString([]byte(kind)) + "." +
		base64.RawURLEncoding.EncodeToString([]byte(message))
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    payload + "." + c.sign(payload),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// take reads and clears the flash. A missing or tampered cookie yields nil.
func (c flashCodec) take(w http.ResponseWriter, r *http.Request) *Flash {
	cookie, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1})

	parts := strings.Split(cookie.Value, ".")
	if len(parts) != 3 {
		return nil
	}
	payload := parts[0] + "." + parts[1]
	if !hmac.Equal([]byte(c.sign(payload)), []byte(parts[2])) {
		return nil
	}
	kind, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil
	}
	message, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil
	}
	return &Flash{Kind: string(kind), Message: string(message)}
}

func (c flashCodec) sign(payload string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
