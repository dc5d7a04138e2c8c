// Package services contains server-side business logic. This file implements
// CredentialService: registration, login, session verification and the
// self-service identity mutations.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tasklist/internal/common"
	"github.com/dmitrijs2005/tasklist/internal/logging"
	"github.com/dmitrijs2005/tasklist/internal/server/auth"
	"github.com/dmitrijs2005/tasklist/internal/server/metrics"
	"github.com/dmitrijs2005/tasklist/internal/server/models"
	"github.com/dmitrijs2005/tasklist/internal/server/repositories/users"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// dummyPassword feeds the Argon2id derivation run for unknown emails.
const dummyPassword = "tasklist-login-timing-equaliser"

type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
}

type LoginInput struct {
	Email    string
	Password string
}

// UpdateProfileInput carries optional changes. Nil fields are left alone.
type UpdateProfileInput struct {
	DisplayName *string
	Password    *string
}

// CredentialService owns every rule about identities and their credentials.
// It returns only sentinel errors from package common; raw store errors are
// logged here and never handed to callers.
type CredentialService struct {
	users  users.Repository
	hasher auth.PasswordHasher
	tokens auth.TokenIssuer
	clock  clockwork.Clock
	log    logging.Logger

	metrics           *metrics.Metrics
	storeTimeout      time.Duration
	passwordMinLength int
	validate          *inputValidator

	dummySalt []byte
	dummyHash []byte
}

// NewCredentialService wires the service. A nil clock means the wall clock,
// a nil logger discards output.
func NewCredentialService(
	repo users.Repository,
	hasher auth.PasswordHasher,
	tokens auth.TokenIssuer,
	clock clockwork.Clock,
	log logging.Logger,
	opts ...Option,
) (*CredentialService, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if log == nil {
		log = logging.Nop()
	}

	s := &CredentialService{
		users:             repo,
		hasher:            hasher,
		tokens:            tokens,
		clock:             clock,
		log:               log.With("module", "credentials"),
		storeTimeout:      defaultStoreTimeout,
		passwordMinLength: defaultPasswordMinLength,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.validate = newInputValidator(s.passwordMinLength)

	salt, err := hasher.GenerateSalt()
	if err != nil {
		return nil, fmt.Errorf("dummy salt: %w", err)
	}
	hash, err := hasher.Hash(dummyPassword, salt)
	if err != nil {
		return nil, fmt.Errorf("dummy hash: %w", err)
	}
	s.dummySalt, s.dummyHash = salt, hash

	return s, nil
}

// Register creates an identity. A taken email yields
// common.ErrRegistrationConflict without saying whose it is.
func (s *CredentialService) Register(ctx context.Context, in RegisterInput) (*models.PublicIdentity, error) {
	const event = "register"

	in.Email = normalizeEmail(in.Email)
	if err := s.validate.register(in); err != nil {
		s.reject(event)
		return nil, err
	}

	salt, hash, err := s.derive(ctx, in.Password)
	if err != nil {
		s.reject(event)
		if errors.Is(err, common.ErrInvalidInput) {
			return nil, err
		}
		return nil, common.ErrRegistrationFailed
	}

	now := s.clock.Now().UTC()
	identity := &models.Identity{
		ID:           uuid.NewString(),
		Email:        in.Email,
		DisplayName:  in.DisplayName,
		PasswordHash: hash,
		Salt:         salt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	sctx, cancel := s.storeContext(ctx)
	saved, err := s.users.Insert(sctx, identity)
	cancel()
	if err != nil {
		s.reject(event)
		switch {
		case errors.Is(err, common.ErrDuplicateIdentity):
			s.log.Info(ctx, "registration conflict")
			return nil, fmt.Errorf("%w: %w", common.ErrRegistrationConflict, common.ErrDuplicateIdentity)
		case errors.Is(err, common.ErrStoreUnavailable):
			s.log.Warn(ctx, "registration store unavailable", "error", err)
			return nil, errors.Join(common.ErrRegistrationFailed, common.ErrStoreUnavailable)
		default:
			s.log.Error(ctx, "registration failed", "error", err)
			return nil, common.ErrRegistrationFailed
		}
	}

	s.issue(event)
	s.log.Info(ctx, "identity registered", "id", saved.ID)
	return saved.Public(), nil
}

// Login verifies the credentials and issues a session token. An unknown
// email and a wrong password both yield common.ErrInvalidCredentials after
// one Argon2id derivation each.
func (s *CredentialService) Login(ctx context.Context, in LoginInput) (*auth.SessionToken, error) {
	const event = "login"

	in.Email = normalizeEmail(in.Email)
	if err := s.validate.login(in); err != nil {
		s.reject(event)
		return nil, err
	}

	sctx, cancel := s.storeContext(ctx)
	identity, err := s.users.FindByEmail(sctx, in.Email)
	cancel()
	if err != nil {
		s.reject(event)
		if errors.Is(err, common.ErrIdentityNotFound) {
			s.hasher.Verify(in.Password, s.dummySalt, s.dummyHash)
			return nil, common.ErrInvalidCredentials
		}
		return nil, s.storeFailure(ctx, event, err)
	}

	if !s.hasher.Verify(in.Password, identity.Salt, identity.PasswordHash) {
		s.reject(event)
		return nil, common.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(identity.Email)
	if err != nil {
		s.reject(event)
		s.log.Error(ctx, "token issue failed", "id", identity.ID, "error", err)
		return nil, common.ErrorInternal
	}

	s.issue(event)
	s.log.Debug(ctx, "session issued", "id", identity.ID, "expires_at", token.ExpiresAt)
	return token, nil
}

// ChangePassword replaces the password of identity id with a freshly salted hash.
func (s *CredentialService) ChangePassword(ctx context.Context, id, newPassword string) error {
	const event = "change_password"

	if err := errors.Join(s.validate.id(id), s.validate.newPassword(newPassword)); err != nil {
		s.reject(event)
		return err
	}

	salt, hash, err := s.derive(ctx, newPassword)
	if err != nil {
		s.reject(event)
		if errors.Is(err, common.ErrInvalidInput) {
			return err
		}
		return common.ErrorInternal
	}

	_, err = s.update(ctx, event, id, models.IdentityUpdate{PasswordHash: hash, Salt: salt})
	return err
}

// UpdateProfile applies the given changes and refreshes UpdatedAt, even
// when the input carries no changes.
func (s *CredentialService) UpdateProfile(ctx context.Context, id string, in UpdateProfileInput) (*models.PublicIdentity, error) {
	const event = "update_profile"

	if err := s.validate.id(id); err != nil {
		s.reject(event)
		return nil, err
	}

	var upd models.IdentityUpdate

	if in.DisplayName != nil {
		if err := s.validate.displayName(*in.DisplayName); err != nil {
			s.reject(event)
			return nil, err
		}
		upd.DisplayName = in.DisplayName
	}

	if in.Password != nil {
		if err := s.validate.newPassword(*in.Password); err != nil {
			s.reject(event)
			return nil, err
		}
		salt, hash, err := s.derive(ctx, *in.Password)
		if err != nil {
			s.reject(event)
			if errors.Is(err, common.ErrInvalidInput) {
				return nil, err
			}
			return nil, common.ErrorInternal
		}
		upd.Salt, upd.PasswordHash = salt, hash
	}

	identity, err := s.update(ctx, event, id, upd)
	if err != nil {
		return nil, err
	}
	return identity.Public(), nil
}

func (s *CredentialService) DeleteIdentity(ctx context.Context, id string) error {
	const event = "delete"

	if err := s.validate.id(id); err != nil {
		s.reject(event)
		return err
	}

	sctx, cancel := s.storeContext(ctx)
	err := s.users.Delete(sctx, id)
	cancel()
	if err != nil {
		s.reject(event)
		if errors.Is(err, common.ErrIdentityNotFound) {
			return common.ErrIdentityNotFound
		}
		return s.storeFailure(ctx, event, err)
	}

	s.issue(event)
	s.log.Info(ctx, "identity deleted", "id", id)
	return nil
}

// VerifySessionToken resolves a token to the identity it was issued for.
// A token for an identity that no longer exists is rejected as invalid.
func (s *CredentialService) VerifySessionToken(ctx context.Context, token string) (*models.PublicIdentity, error) {
	const event = "verify"

	email, err := s.tokens.Verify(token)
	if err != nil {
		s.reject(event)
		return nil, err
	}

	sctx, cancel := s.storeContext(ctx)
	identity, err := s.users.FindByEmail(sctx, email)
	cancel()
	if err != nil {
		s.reject(event)
		if errors.Is(err, common.ErrIdentityNotFound) {
			return nil, common.ErrTokenInvalid
		}
		return nil, s.storeFailure(ctx, event, err)
	}

	s.issue(event)
	return identity.Public(), nil
}

func (s *CredentialService) GetIdentity(ctx context.Context, id string) (*models.PublicIdentity, error) {
	if err := s.validate.id(id); err != nil {
		return nil, err
	}

	sctx, cancel := s.storeContext(ctx)
	identity, err := s.users.FindByID(sctx, id)
	cancel()
	if err != nil {
		if errors.Is(err, common.ErrIdentityNotFound) {
			return nil, common.ErrIdentityNotFound
		}
		return nil, s.storeFailure(ctx, "get", err)
	}
	return identity.Public(), nil
}

// ListIdentities returns every identity, oldest first.
func (s *CredentialService) ListIdentities(ctx context.Context) ([]*models.PublicIdentity, error) {
	sctx, cancel := s.storeContext(ctx)
	all, err := s.users.List(sctx)
	cancel()
	if err != nil {
		return nil, s.storeFailure(ctx, "list", err)
	}

	out := make([]*models.PublicIdentity, 0, len(all))
	for _, i := range all {
		out = append(out, i.Public())
	}
	return out, nil
}

// --- helpers below ---

func (s *CredentialService) derive(ctx context.Context, password string) (salt, hash []byte, err error) {
	salt, err = s.hasher.GenerateSalt()
	if err != nil {
		s.log.Error(ctx, "salt generation failed", "error", err)
		return nil, nil, err
	}
	hash, err = s.hasher.Hash(password, salt)
	if err != nil {
		if !errors.Is(err, common.ErrInvalidInput) {
			s.log.Error(ctx, "password hashing failed", "error", err)
		}
		return nil, nil, err
	}
	return salt, hash, nil
}

func (s *CredentialService) update(ctx context.Context, event, id string, upd models.IdentityUpdate) (*models.Identity, error) {
	upd.UpdatedAt = s.clock.Now().UTC()

	sctx, cancel := s.storeContext(ctx)
	identity, err := s.users.Update(sctx, id, upd)
	cancel()
	if err != nil {
		s.reject(event)
		if errors.Is(err, common.ErrIdentityNotFound) {
			return nil, common.ErrIdentityNotFound
		}
		return nil, s.storeFailure(ctx, event, err)
	}

	s.issue(event)
	s.log.Info(ctx, "identity updated", "id", id, "event", event)
	return identity, nil
}

func (s *CredentialService) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.storeTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.storeTimeout)
}

// storeFailure logs the raw store error and reduces it to a sentinel.
func (s *CredentialService) storeFailure(ctx context.Context, op string, err error) error {
	if errors.Is(err, common.ErrStoreUnavailable) {
		s.log.Warn(ctx, "store unavailable", "op", op, "error", err)
		return common.ErrStoreUnavailable
	}
	s.log.Error(ctx, "store failure", "op", op, "error", err)
	return common.ErrorInternal
}

func (s *CredentialService) issue(event string) {
	s.metrics.RecordAttempt(event, metrics.OutcomeIssued)
}

func (s *CredentialService) reject(event string) {
	s.metrics.RecordAttempt(event, metrics.OutcomeRejected)
}
