package jwt

import "errors"

var (
	ErrInvalidToken         = errors.New("jwt: invalid token")
	ErrExpiredToken         = errors.New("jwt: token is expired")
	ErrMissingToken         = errors.New("jwt: missing bearer token")
	ErrMissingSigningKey    = errors.New("jwt: missing signing key")
	ErrMissingOrganization  = errors.New("jwt: missing organization claim")
	ErrOrganizationMismatch = errors.New("jwt: token does not grant access to this organization")
)
