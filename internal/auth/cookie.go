package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the browser cookie carrying the signed identity.
const CookieName = "auth"

// CookieAuthenticator issues and verifies the tamper-evident auth
// cookie. The cookie value is an HS256 JWT whose subject is the
// authenticated user's email.
type CookieAuthenticator struct {
	SecretKey string        // Secret key for signing cookie values
	Exp       time.Duration // Cookie lifetime
}

// NewCookieAuthenticator creates a CookieAuthenticator.
func NewCookieAuthenticator(secretKey string, expiration time.Duration) *CookieAuthenticator {
	return &CookieAuthenticator{
		SecretKey: secretKey,
		Exp:       expiration,
	}
}

// Issue signs a cookie value embedding the given email.
func (c *CookieAuthenticator) Issue(email string) (string, error) {
	return c.IssueWithTTL(email, c.Exp)
}

// IssueWithTTL signs a cookie value with a non-default lifetime.
func (c *CookieAuthenticator) IssueWithTTL(email string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub": email,
		"exp": time.Now().Add(ttl).Unix(),
		"iat": time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(c.SecretKey))
}

// Verify checks a cookie value's signature and expiry, returning the
// embedded email.
func (c *CookieAuthenticator) Verify(value string) (string, error) {
	token, err := jwt.Parse(value, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(c.SecretKey), nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid cookie value")
	}
	email, ok := claims["sub"].(string)
	if !ok || email == "" {
		return "", errors.New("subject not found in cookie value")
	}
	return email, nil
}

// SetCookie writes the auth cookie for the given email.
func (c *CookieAuthenticator) SetCookie(w http.ResponseWriter, email string) error {
	value, err := c.Issue(email)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(c.Exp / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// ClearCookie drops the auth cookie.
func (c *CookieAuthenticator) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
