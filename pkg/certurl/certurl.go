// Package certurl builds and parses the shareable links that carry
// certificates to viewers. It has no dependencies beyond net/url so that
// external tooling can import it freely.
package certurl

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const (
	viewerPath = "/certificate"
	verifyPath = "/verify"

	// TokenParam is the canonical query parameter carrying a compact token.
	TokenParam = "d"
	// LegacyTokenParam is accepted when parsing links minted by older
	// clients.
	LegacyTokenParam = "data"
	// CodeParam carries a bare verification code.
	CodeParam = "code"
)

// ErrNoToken is returned when a link carries neither token parameter.
var ErrNoToken = errors.New("certificate link carries no token")

// CertificateURL builds the viewer link for a compact token, e.g.
// https://signet.example.com/certificate?d=<token>.
func CertificateURL(origin, token string) (string, error) {
	base, err := parseOrigin(origin)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", errors.New("token is required")
	}
	base.Path = viewerPath
	base.RawQuery = url.Values{TokenParam: {token}}.Encode()
	return base.String(), nil
}

// VerifyURL builds the code-only verification link, e.g.
// https://signet.example.com/verify?code=6B9DAFC4.
func VerifyURL(origin, code string) (string, error) {
	base, err := parseOrigin(origin)
	if err != nil {
		return "", err
	}
	if code == "" {
		return "", errors.New("verification code is required")
	}
	base.Path = verifyPath
	base.RawQuery = url.Values{CodeParam: {code}}.Encode()
	return base.String(), nil
}

// TokenFromURL extracts the compact token from a certificate link. Both
// the canonical "d" parameter and the legacy "data" parameter are
// accepted; "d" wins when both are present.
func TokenFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid certificate link: %w", err)
	}
	q := u.Query()
	if token := q.Get(TokenParam); token != "" {
		return token, nil
	}
	if token := q.Get(LegacyTokenParam); token != "" {
		return token, nil
	}
	return "", ErrNoToken
}

func parseOrigin(origin string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSuffix(origin, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid origin %q: %w", origin, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("origin %q must include scheme and host", origin)
	}
	return u, nil
}
