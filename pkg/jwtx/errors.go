package jwtx

import "errors"

var (
	ErrIssuer      = errors.New("jwtx: unexpected issuer")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
	ErrSignature   = errors.New("jwtx: invalid signature")
	ErrMalformed   = errors.New("jwtx: malformed token")
)
