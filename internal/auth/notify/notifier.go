// Package notify delivers templated account-security messages. The auth
// services hand over a kind, an address and a token; everything about
// formatting and transport stays on this side of the boundary.
package notify

import "context"

// Kind selects the message template.
type Kind string

const (
	KindVerification  Kind = "verification"
	KindPasswordReset Kind = "password_reset"
	KindMagicLink     Kind = "magic_link"
)

// Notifier is the delivery sink. Implementations must be safe for
// concurrent use.
type Notifier interface {
	// Send delivers the message for kind to the address. The token is
	// embedded into the action link; name personalises the greeting.
	Send(ctx context.Context, kind Kind, address, name, token string) error
}
