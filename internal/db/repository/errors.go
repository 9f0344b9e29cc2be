package repository

import "errors"

// Sentinel errors shared by the repositories. Callers branch on these
// with errors.Is; anything else is an infrastructure failure.
var (
	ErrCertificateNotFound = errors.New("certificate not found")
	ErrKeyPairNotFound     = errors.New("key pair not found")
	ErrTokenNotFound       = errors.New("token not found or expired")
)
