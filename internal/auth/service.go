// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/support-gateway/internal/core"
	"github.com/carterperez-dev/support-gateway/internal/tenant"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("email already exists")
)

type Service struct {
	db         *sqlx.DB
	repo       Repository
	tokens     *TokenManager
	hashParams core.Argon2Params
	now        func() time.Time
}

func NewService(db *sqlx.DB, tokens *TokenManager) *Service {
	return &Service{
		db:         db,
		repo:       NewRepository(db),
		tokens:     tokens,
		hashParams: core.DefaultArgon2Params,
		now:        time.Now,
	}
}

// Register onboards a tenant and its first credential in one transaction, so
// a duplicate email never leaves an orphaned tenant behind.
func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
) (*AuthResponse, error) {
	email := normalizeEmail(req.Email)

	passwordHash, err := core.HashPasswordWithParams(req.Password, s.hashParams)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var tenantID string
	err = core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		tenants := tenant.NewService(tenant.NewRepository(tx))

		t, err := tenants.CreateTenant(ctx, req.BusinessName)
		if err != nil {
			return fmt.Errorf("create tenant: %w", err)
		}

		cred := &Credential{
			Email:        email,
			PasswordHash: passwordHash,
			TenantID:     t.ID,
			CreatedAt:    s.now().UTC(),
		}
		if err := NewRepository(tx).Create(ctx, cred); err != nil {
			if errors.Is(err, core.ErrDuplicateKey) {
				return ErrEmailExists
			}
			return err
		}

		tenantID = t.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.createAuthResponse(email, tenantID)
}

// Login answers ErrInvalidCredentials for both unknown emails and wrong
// passwords, after the same amount of hashing work.
func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
) (*AuthResponse, error) {
	email := normalizeEmail(req.Email)

	cred, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.VerifyPasswordTimingSafe(req.Password, "")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get credential: %w", err)
	}

	if !core.VerifyPasswordTimingSafe(req.Password, cred.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	s.upgradeHash(ctx, cred.Email, req.Password, cred.PasswordHash)

	return s.createAuthResponse(cred.Email, cred.TenantID)
}

// upgradeHash re-hashes a verified password stored under outdated argon2
// parameters. Failures leave the old hash in place.
func (s *Service) upgradeHash(ctx context.Context, email, password, current string) {
	if !core.NeedsRehash(current, s.hashParams) {
		return
	}

	upgraded, err := core.HashPasswordWithParams(password, s.hashParams)
	if err == nil {
		err = s.repo.UpdatePasswordHash(ctx, email, upgraded)
	}
	if err != nil {
		slog.WarnContext(ctx, "password hash upgrade failed", "error", err)
	}
}

func (s *Service) GetCurrentUser(
	ctx context.Context,
	email string,
) (*MeResponse, error) {
	cred, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}

	t, err := tenant.NewRepository(s.db).GetByID(ctx, cred.TenantID)
	if err != nil {
		return nil, err
	}

	return &MeResponse{
		Email:      cred.Email,
		TenantID:   t.ID,
		TenantName: t.Name,
		Plan:       string(t.Plan),
		Active:     t.Active,
	}, nil
}

func (s *Service) createAuthResponse(
	email, tenantID string,
) (*AuthResponse, error) {
	issued, err := s.tokens.Issue(email)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}

	return &AuthResponse{
		SessionToken: issued.Token,
		TokenType:    "Bearer",
		ExpiresAt:    issued.ExpiresAt,
		TenantID:     tenantID,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
