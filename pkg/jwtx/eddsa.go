package jwtx

import (
	"crypto/ed25519"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Signer signs session claims into compact JWTs.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
}

// Verifier parses and verifies session tokens back into claims.
type Verifier interface {
	Verify(token string) (*Claims, error)
}

// EdDSAKeyPair implements Signer and Verifier using a single Ed25519 key.
// The auth service verifies its own tokens in-process, so no key set or
// rotation machinery is needed; a fresh key per boot invalidates sessions on
// restart, which is acceptable for the dashboard.
type EdDSAKeyPair struct {
	key ed25519.PrivateKey
	pub ed25519.PublicKey
}

// NewEdDSAKeyPair loads an Ed25519 private key from PEM bytes.
// Ed25519 keys must be in PKCS8 format.
func NewEdDSAKeyPair(pemKey []byte) (*EdDSAKeyPair, error) {
	block, _ := pem.Decode(pemKey)
	if block == nil {
		return nil, errors.New("jwtx: invalid PEM for Ed25519 key")
	}
	if block.Type != "PRIVATE KEY" {
		return nil, fmt.Errorf("jwtx: expected PRIVATE KEY, got %q (Ed25519 requires PKCS8)", block.Type)
	}

	priv, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("jwtx: parse PKCS8: %w", err)
	}

	key, ok := priv.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("jwtx: not Ed25519 private key")
	}

	return &EdDSAKeyPair{
		key: key,
		pub: key.Public().(ed25519.PublicKey),
	}, nil
}

func (s *EdDSAKeyPair) Alg() string { return jwt.SigningMethodEdDSA.Alg() }

// Sign turns claims into a signed JWT string.
func (s *EdDSAKeyPair) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return t.SignedString(s.key)
}

// Verify parses the token, checks the EdDSA signature and the exp/nbf
// window, and returns the embedded claims.
func (s *EdDSAKeyPair) Verify(token string) (*Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, ErrSignature
		}
		return s.pub, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrMalformed
		default:
			return nil, ErrSignature
		}
	}
	if !parsed.Valid {
		return nil, ErrSignature
	}

	if err := claims.ValidateExpiry(); err != nil {
		return nil, err
	}

	return &claims, nil
}
