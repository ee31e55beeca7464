package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/openriskhq/riskdeck-auth/internal/auth/domain"
	"github.com/openriskhq/riskdeck-auth/internal/auth/notify"
	"github.com/openriskhq/riskdeck-auth/internal/auth/store"
	"github.com/openriskhq/riskdeck-auth/pkg/jwtx"
	"github.com/openriskhq/riskdeck-auth/pkg/slogx"
)

// magicAuthPrefix namespaces the handoff token identifier so it can carry
// the account id instead of an email.
const magicAuthPrefix = "magic-auth-"

// MagicLinkService implements passwordless sign-in: an emailed link whose
// consumption yields a short-lived handoff token, exchanged separately for a
// session.
type MagicLinkService struct {
	Store    store.Store
	Tokens   *TokenService
	Sessions *SessionIssuer
	Notifier notify.Notifier
}

// RequestMagicLink emails a sign-in link. Unknown emails succeed silently.
func (s *MagicLinkService) RequestMagicLink(ctx context.Context, email string) error {
	log := slogx.FromContext(ctx)

	account, err := s.Store.Accounts().GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Info("magic link requested for unknown email")
			return nil
		}
		log.Error("failed to load account for magic link", "err", err)
		return ErrOperationFailed
	}

	token, err := s.Tokens.Issue(ctx, account.Email, domain.TokenPurposeMagicLink, domain.MagicLinkTokenTTL)
	if err != nil {
		log.Error("failed to issue magic link token", "account_id", account.ID, "err", err)
		return ErrOperationFailed
	}

	if err := s.Notifier.Send(ctx, notify.KindMagicLink, account.Email, account.Name, token); err != nil {
		log.Warn("failed to send magic link email", "account_id", account.ID, "err", err)
	}

	return nil
}

// ConsumeMagicLink redeems an emailed magic link and issues the handoff
// token. Redeeming the link proves control of the mailbox, so it also counts
// as email verification for accounts that never clicked their verification
// link.
func (s *MagicLinkService) ConsumeMagicLink(ctx context.Context, tokenValue string) (*domain.MagicLinkResult, error) {
	log := slogx.FromContext(ctx)
	now := time.Now().UTC()

	token, err := s.Tokens.Consume(ctx, tokenValue)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidOrExpiredLink
		}
		log.Error("failed to consume magic link token", "err", err)
		return nil, ErrOperationFailed
	}
	if token.Purpose != domain.TokenPurposeMagicLink {
		return nil, ErrInvalidOrExpiredLink
	}

	account, err := s.Store.Accounts().GetAccountByEmail(ctx, token.Identifier)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		log.Error("failed to load account for magic link", "err", err)
		return nil, ErrOperationFailed
	}

	if !account.Verified() {
		err := s.Store.Accounts().MarkEmailVerified(ctx, account.ID, now)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			log.Error("failed to mark email verified via magic link", "account_id", account.ID, "err", err)
			return nil, ErrOperationFailed
		}
	}

	handoff, err := s.Tokens.Issue(ctx, magicAuthPrefix+account.ID, domain.TokenPurposeMagicAuth, domain.MagicAuthTokenTTL)
	if err != nil {
		log.Error("failed to issue magic auth token", "account_id", account.ID, "err", err)
		return nil, ErrOperationFailed
	}

	log.Info("magic link consumed", "account_id", account.ID)
	return &domain.MagicLinkResult{
		HandoffToken: handoff,
		ExpiresAt:    now.Add(domain.MagicAuthTokenTTL),
	}, nil
}

// ExchangeMagicAuthToken trades a handoff token for a session. The lockout
// check happens here: a magic link does not bypass an active lock.
func (s *MagicLinkService) ExchangeMagicAuthToken(ctx context.Context, handoff string) (*domain.Session, error) {
	log := slogx.FromContext(ctx)
	now := time.Now().UTC()

	token, err := s.Tokens.Consume(ctx, handoff)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidOrExpiredLink
		}
		log.Error("failed to consume magic auth token", "err", err)
		return nil, ErrOperationFailed
	}
	if token.Purpose != domain.TokenPurposeMagicAuth {
		return nil, ErrInvalidOrExpiredLink
	}

	accountID := strings.TrimPrefix(token.Identifier, magicAuthPrefix)
	account, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		log.Error("failed to load account for magic auth exchange", "err", err)
		return nil, ErrOperationFailed
	}

	if account.LockedAt(now) {
		return nil, &AccountLockedError{MinutesLeft: minutesUntil(*account.LockedUntil, now)}
	}

	if err := s.Store.Accounts().RecordLogin(ctx, account.ID, now); err != nil {
		log.Error("failed to record magic link login", "account_id", account.ID, "err", err)
		return nil, ErrOperationFailed
	}

	session, err := s.Sessions.Establish(account, []string{jwtx.AMRMagicLink})
	if err != nil {
		log.Error("failed to establish session", "account_id", account.ID, "err", err)
		return nil, ErrOperationFailed
	}

	log.Info("magic link login succeeded", "account_id", account.ID)
	return session, nil
}
