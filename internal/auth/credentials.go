package auth

import (
	"encoding/base64"
	"net/http"
	"strings"
	"unicode/utf8"
)

// Credentials are extracted from a request but not yet verified against
// the user store.
type Credentials struct {
	UserID string // email
	Token  string // api token; set on the header path only

	// FromHeader records which path produced the credentials. Header
	// credentials must match both email and token; cookie credentials
	// match by email alone, since the cookie signature already proved
	// integrity.
	FromHeader bool
}

// ResolveCredentials determines the unauthenticated userid for a
// request: from an "Authorization: Token <base64>" header if one is
// present, otherwise from the signed auth cookie. Returns nil when no
// usable credentials exist. Pure function of request state.
func ResolveCredentials(r *http.Request, cookies *CookieAuthenticator) *Credentials {
	if r.Header.Get("Authorization") != "" {
		return resolveHeader(r.Header.Get("Authorization"))
	}

	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return nil
	}
	email, err := cookies.Verify(c.Value)
	if err != nil {
		return nil
	}
	return &Credentials{UserID: email}
}

func resolveHeader(authorization string) *Credentials {
	scheme, value, found := strings.Cut(authorization, " ")
	if !found {
		return nil
	}
	if strings.ToLower(scheme) != "token" {
		return nil
	}
	value = strings.TrimSpace(value)

	raw, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(value)
		if err != nil {
			return nil
		}
	}

	userid, token, found := strings.Cut(decodeText(raw), ":")
	if !found {
		return nil
	}
	return &Credentials{UserID: userid, Token: token, FromHeader: true}
}

// decodeText interprets bytes as UTF-8, falling back to Latin-1, which
// maps every byte to a code point and therefore always succeeds.
func decodeText(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes)
}
