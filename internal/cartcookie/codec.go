package cartcookie

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"
)

var ErrInvalid = errors.New("invalid cart cookie")

const maxAge = 30 * 24 * time.Hour

// Codec signs the commerce cart ID into a cookie so clients cannot swap carts
type Codec struct {
	Secret     []byte
	CookieName string
	Secure     bool
}

func New(secret []byte, name string, secure bool) *Codec {
	return &Codec{Secret: secret, CookieName: name, Secure: secure}
}

// Encode returns cartID.base64(hmac(cartID)).
// Platform cart IDs may contain dots, so the signature is split off at the last one.
func (c *Codec) Encode(cartID string) string {
	return cartID + "." + sign(c.Secret, cartID)
}

func (c *Codec) Decode(v string) (string, error) {
	i := strings.LastIndex(v, ".")
	if i <= 0 || i == len(v)-1 {
		return "", ErrInvalid
	}
	id, sig := v[:i], v[i+1:]
	if !verify(c.Secret, id, sig) {
		return "", ErrInvalid
	}
	return id, nil
}

// GetCartID reads the cart ID from the request. A tampered cookie is cleared.
func (c *Codec) GetCartID(w http.ResponseWriter, r *http.Request) (string, bool) {
	cookie, err := r.Cookie(c.CookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	id, err := c.Decode(cookie.Value)
	if err != nil {
		c.Clear(w)
		return "", false
	}
	return id, true
}

func (c *Codec) Set(w http.ResponseWriter, cartID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.CookieName,
		Value:    c.Encode(cartID),
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   c.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c *Codec) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   c.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func sign(secret []byte, payload string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func verify(secret []byte, payload, sig string) bool {
	return hmac.Equal([]byte(sign(secret, payload)), []byte(sig))
}
