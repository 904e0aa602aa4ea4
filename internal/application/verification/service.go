package verification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sparkmeet/sparkmeet-api/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// sessionKeyPrefix namespaces session records in the shared cache.
// Pending codes use the configurable code key prefix instead.
const sessionKeyPrefix = "TOKEN_"

type SendCodeRequest struct {
	Phone string `json:"phone" validate:"required,numeric,min=5,max=20"`
}

type VerifyRequest struct {
	Phone            string `json:"phone" validate:"required,numeric,min=5,max=20"`
	VerificationCode string `json:"verificationCode" validate:"required,numeric,len=6"`
}

// LoginResult is returned on successful verification.
type LoginResult struct {
	IsNewUser bool   `json:"isNew"`
	Token     string `json:"token"`
}

// Service orchestrates code issuance, one-time consumption, and session
// creation. It holds no mutable state of its own: the cache is the single
// source of truth and the only serialization point.
type Service interface {
	RequestCode(ctx context.Context, phone string) error
	VerifyAndLogin(ctx context.Context, phone, submittedCode string) (*LoginResult, error)
	ResolveSession(ctx context.Context, token string) (*domain.User, error)
}

type cacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	RefreshTTL(ctx context.Context, key string, ttl time.Duration) error
}

type userDirectory interface {
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) (string, error)
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type tokenMinter interface {
	Mint(phone, userID string) (string, error)
}

type codeSource interface {
	Generate() (string, error)
}

type service struct {
	cache         cacheStore
	directory     userDirectory
	sms           smsSender
	tokens        tokenMinter
	codes         codeSource
	codeKeyPrefix string
	codeTTL       time.Duration
	sessionTTL    time.Duration
}

type ServiceDeps struct {
	Cache         cacheStore
	Directory     userDirectory
	SMS           smsSender
	Tokens        tokenMinter
	Codes         codeSource
	CodeKeyPrefix string
	CodeTTL       time.Duration
	SessionTTL    time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		cache:         deps.Cache,
		directory:     deps.Directory,
		sms:           deps.SMS,
		tokens:        deps.Tokens,
		codes:         deps.Codes,
		codeKeyPrefix: deps.CodeKeyPrefix,
		codeTTL:       deps.CodeTTL,
		sessionTTL:    deps.SessionTTL,
	}
}

// RequestCode issues a one-time code for phone and delivers it by SMS.
// At most one code may be outstanding per phone; the code is only stored
// after delivery succeeds, so a failed send leaves no state behind.
//
// The existence check and the store are two separate cache operations; a
// tight race between two concurrent calls for the same phone can issue two
// codes. The last store wins, matching the per-key atomicity the cache
// actually provides.
func (s *service) RequestCode(ctx context.Context, phone string) error {
	key := s.codeKeyPrefix + phone
	if _, err := s.cache.Get(ctx, key); err == nil {
		return fmt.Errorf("code outstanding for %s: %w", phone, domain.ErrDuplicateRequest)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	code, err := s.codes.Generate()
	if err != nil {
		return err
	}
	if err := s.sms.SendSMS(ctx, phone, "Your sparkmeet verification code is "+code); err != nil {
		slog.Warn("sms delivery failed", "phone", phone, "err", err)
		return fmt.Errorf("send code to %s: %w", phone, domain.ErrDeliveryFailed)
	}
	slog.Debug("verification code sent", "phone", phone)
	return s.cache.SetWithTTL(ctx, key, code, s.codeTTL)
}

// VerifyAndLogin consumes the pending code for phone and, on a match, looks
// up or creates the user and issues a cached session token.
//
// The pending code is deleted on first look, before the comparison, so a code
// can never be replayed across two verify attempts whether or not the first
// attempt matched. Read and delete are two cache round trips; two concurrent
// verifies for the same phone may both observe the code before either deletes
// it. That narrow window is accepted, matching the per-key atomicity the
// cache provides.
func (s *service) VerifyAndLogin(ctx context.Context, phone, submittedCode string) (*LoginResult, error) {
	key := s.codeKeyPrefix + phone
	stored, err := s.cache.Get(ctx, key)
	missing := errors.Is(err, domain.ErrNotFound)
	if err != nil && !missing {
		return nil, err
	}
	if !missing {
		if err := s.cache.Delete(ctx, key); err != nil {
			return nil, err
		}
	}
	if missing {
		return nil, fmt.Errorf("phone %s: %w", phone, domain.ErrCodeExpired)
	}
	if stored != submittedCode {
		return nil, fmt.Errorf("phone %s: %w", phone, domain.ErrCodeMismatch)
	}

	u, err := s.directory.GetByPhone(ctx, phone)
	isNew := false
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotFound):
		hash, hashErr := bcrypt.GenerateFromPassword([]byte(fallbackPassword(phone)), bcrypt.DefaultCost)
		if hashErr != nil {
			return nil, hashErr
		}
		u = &domain.User{Phone: phone, PasswordHash: string(hash)}
		userID, createErr := s.directory.Create(ctx, u)
		if createErr != nil {
			return nil, createErr
		}
		u.UserID = userID
		isNew = true
		slog.Info("registered new user", "phone", phone, "user_id", userID)
	default:
		return nil, err
	}

	token, err := s.tokens.Mint(phone, u.UserID)
	if err != nil {
		return nil, err
	}
	snapshot, err := json.Marshal(u)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetWithTTL(ctx, sessionKeyPrefix+token, string(snapshot), s.sessionTTL); err != nil {
		return nil, err
	}
	return &LoginResult{IsNewUser: isNew, Token: token}, nil
}

// ResolveSession returns the cached user snapshot for token, sliding its
// expiry back to the full session TTL. An unknown or expired token resolves
// to (nil, nil): "not logged in" is an answer, not an error.
func (s *service) ResolveSession(ctx context.Context, token string) (*domain.User, error) {
	key := sessionKeyPrefix + token
	snapshot, err := s.cache.Get(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := s.cache.RefreshTTL(ctx, key, s.sessionTTL); err != nil {
		slog.Warn("failed to refresh session ttl", "err", err)
	}
	var u domain.User
	if err := json.Unmarshal([]byte(snapshot), &u); err != nil {
		return nil, fmt.Errorf("decode session snapshot: %w", err)
	}
	return &u, nil
}

// fallbackPassword derives the default password for auto-created accounts
// from the trailing 6 digits of the phone number. It is not a strong secret;
// only its bcrypt hash is ever stored, and users are expected to replace it.
func fallbackPassword(phone string) string {
	if len(phone) <= 6 {
		return phone
	}
	return phone[len(phone)-6:]
}
