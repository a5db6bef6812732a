package remote

import "context"

// Consent asks the user to approve a credential request before it is sent.
type Consent interface {
	Confirm(ctx context.Context, targetID int64, scope string) (bool, error)
}

// ConsentFunc adapts a function to Consent.
type ConsentFunc func(ctx context.Context, targetID int64, scope string) (bool, error)

// Confirm implements Consent.
func (f ConsentFunc) Confirm(ctx context.Context, targetID int64, scope string) (bool, error) {
	return f(ctx, targetID, scope)
}

type consentAuth struct {
	AuthProvider
	consent Consent
}

// WithConsent wraps auth so every ScopedCredential call is confirmed first.
// A declined prompt returns ErrDenied without contacting the platform.
// A nil consent returns auth unchanged.
func WithConsent(auth AuthProvider, consent Consent) AuthProvider {
	if consent == nil {
		return auth
	}
	return &consentAuth{AuthProvider: auth, consent: consent}
}

func (c *consentAuth) ScopedCredential(ctx context.Context, targetID int64, scope string) (string, error) {
	ok, err := c.consent.Confirm(ctx, targetID, scope)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrDenied
	}
	return c.AuthProvider.ScopedCredential(ctx, targetID, scope)
}
