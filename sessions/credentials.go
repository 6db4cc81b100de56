package sessions

import (
	"errors"
	"net/http"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// Credentials is the access/refresh pair held by the client.
// The access credential may be a JWT, in which case its exp claim is used as
// the expiry; opaque credentials never expire client side.
type Credentials struct {
	Access  string    `json:"access"`
	Refresh string    `json:"refresh,omitempty"`
	Expiry  time.Time `json:"expiry,omitempty"`
}

// NewCredentials builds a pair and derives the expiry from the access credential
func NewCredentials(access, refresh string) *Credentials {
	exp, _ := ExpiryFromJWT(access)
	return &Credentials{
		Access:  access,
		Refresh: refresh,
		Expiry:  exp,
	}
}

// ExpiryFromJWT reads the exp claim without verifying the signature.
// Verification is the server's job; the client only needs to know when to
// stop sending the credential.
func ExpiryFromJWT(raw string) (time.Time, error) {
	token, _, err := jwtlib.NewParser().ParseUnverified(raw, jwtlib.MapClaims{})
	if err != nil {
		return time.Time{}, err
	}
	exp, err := token.Claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, err
	}
	if exp == nil {
		return time.Time{}, errors.New("token has no exp claim")
	}
	return exp.Time, nil
}

// Token exposes the pair as an oauth2 bearer token
func (c *Credentials) Token() *oauth2.Token {
	if c == nil {
		return nil
	}
	return &oauth2.Token{
		AccessToken:  c.Access,
		RefreshToken: c.Refresh,
		TokenType:    "Bearer",
		Expiry:       c.Expiry,
	}
}

// Valid reports whether the access credential is present and unexpired
func (c *Credentials) Valid() bool {
	return c.Token().Valid()
}

// SetAuthHeader attaches the access credential to r
func (c *Credentials) SetAuthHeader(r *http.Request) {
	c.Token().SetAuthHeader(r)
}

func (c *Credentials) clone() *Credentials {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}
