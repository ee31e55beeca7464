package cryptox

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordCost is the lowest bcrypt cost the service accepts. Anything
// below this is too cheap to resist offline brute force.
const MinPasswordCost = 10

// DefaultPasswordCost is the cost used when none is configured.
const DefaultPasswordCost = 12

// ErrPasswordMismatch reports a plaintext that does not match the stored hash.
var ErrPasswordMismatch = errors.New("cryptox: password does not match")

// Hasher hashes and verifies passwords with bcrypt at a fixed cost.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher with the given cost. Costs below
// MinPasswordCost are rejected.
func NewHasher(cost int) (*Hasher, error) {
	if cost == 0 {
		cost = DefaultPasswordCost
	}
	if cost < MinPasswordCost {
		return nil, fmt.Errorf("cryptox: bcrypt cost %d below minimum %d", cost, MinPasswordCost)
	}
	if cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("cryptox: bcrypt cost %d above maximum %d", cost, bcrypt.MaxCost)
	}
	return &Hasher{cost: cost}, nil
}

// Hash generates a salted bcrypt hash of the plaintext.
func (h *Hasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("cryptox: hash password: %w", err)
	}
	return string(b), nil
}

// Verify compares a plaintext password against a stored bcrypt hash.
// Returns ErrPasswordMismatch on mismatch and other errors for malformed
// hashes.
func (h *Hasher) Verify(password, encodedHash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		return fmt.Errorf("cryptox: verify password: %w", err)
	}
	return nil
}

// Cost returns the configured bcrypt cost.
func (h *Hasher) Cost() int { return h.cost }
