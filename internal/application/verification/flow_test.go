package verification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sparkmeet/sparkmeet-api/internal/domain"
	redisinfra "github.com/sparkmeet/sparkmeet-api/internal/infrastructure/redis"
	"github.com/sparkmeet/sparkmeet-api/internal/pkg/code"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// End-to-end flow tests against a real cache (miniredis), with the actual
// code generator. Only the outward collaborators (SMS, directory, minter)
// are stubbed.

type captureSMS struct {
	lastMessage string
	sent        int
}

func (s *captureSMS) SendSMS(_ context.Context, _, message string) error {
	s.lastMessage = message
	s.sent++
	return nil
}

// lastCode extracts the 6-digit code from the captured SMS text.
func (s *captureSMS) lastCode() string {
	return s.lastMessage[strings.LastIndex(s.lastMessage, " ")+1:]
}

type memDirectory struct {
	users   map[string]*domain.User
	created int
}

func newMemDirectory() *memDirectory {
	return &memDirectory{users: make(map[string]*domain.User)}
}

func (d *memDirectory) GetByPhone(_ context.Context, phone string) (*domain.User, error) {
	if u, ok := d.users[phone]; ok {
		copy := *u
		return &copy, nil
	}
	return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
}

func (d *memDirectory) Create(_ context.Context, u *domain.User) (string, error) {
	d.created++
	id := fmt.Sprintf("u%d", d.created)
	stored := *u
	stored.UserID = id
	d.users[u.Phone] = &stored
	return id, nil
}

type seqMinter struct{ minted int }

func (m *seqMinter) Mint(_, _ string) (string, error) {
	m.minted++
	return fmt.Sprintf("T%d", m.minted), nil
}

func setupFlow(t *testing.T) (*miniredis.Miniredis, Service, *captureSMS, *memDirectory) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	sms := &captureSMS{}
	dir := newMemDirectory()
	svc := NewService(ServiceDeps{
		Cache:         redisinfra.NewCache(client),
		Directory:     dir,
		SMS:           sms,
		Tokens:        &seqMinter{},
		Codes:         code.New(6),
		CodeKeyPrefix: "CHECK_CODE_",
		CodeTTL:       5 * time.Minute,
		SessionTTL:    24 * time.Hour,
	})
	return mr, svc, sms, dir
}

func TestFlow_DuplicateSendRejectedUntilConsumed(t *testing.T) {
	_, svc, sms, _ := setupFlow(t)
	ctx := context.Background()

	require.NoError(t, svc.RequestCode(ctx, "13800001111"))
	err := svc.RequestCode(ctx, "13800001111")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDuplicateRequest))
	assert.Equal(t, 1, sms.sent)

	// Consumption (even a failed attempt) clears the way for a new send.
	_, err = svc.VerifyAndLogin(ctx, "13800001111", "wrong!")
	assert.True(t, errors.Is(err, domain.ErrCodeMismatch))
	require.NoError(t, svc.RequestCode(ctx, "13800001111"))
	assert.Equal(t, 2, sms.sent)
}

func TestFlow_CodeConsumedOnFirstLook(t *testing.T) {
	_, svc, sms, _ := setupFlow(t)
	ctx := context.Background()

	require.NoError(t, svc.RequestCode(ctx, "13800001111"))
	good := sms.lastCode()

	// A wrong guess consumes the code; the right code no longer works.
	_, err := svc.VerifyAndLogin(ctx, "13800001111", "wrong!")
	assert.True(t, errors.Is(err, domain.ErrCodeMismatch))
	_, err = svc.VerifyAndLogin(ctx, "13800001111", good)
	assert.True(t, errors.Is(err, domain.ErrCodeExpired))
}

func TestFlow_LoginThenReplayThenResolve(t *testing.T) {
	_, svc, sms, dir := setupFlow(t)
	ctx := context.Background()

	require.NoError(t, svc.RequestCode(ctx, "13800001111"))
	good := sms.lastCode()

	result, err := svc.VerifyAndLogin(ctx, "13800001111", good)
	require.NoError(t, err)
	assert.True(t, result.IsNewUser)
	assert.Equal(t, "T1", result.Token)
	assert.Equal(t, 1, dir.created)

	// Replaying the consumed code fails.
	_, err = svc.VerifyAndLogin(ctx, "13800001111", good)
	assert.True(t, errors.Is(err, domain.ErrCodeExpired))

	u, err := svc.ResolveSession(ctx, result.Token)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "13800001111", u.Phone)
	assert.Equal(t, "u1", u.UserID)

	// Second login round for the same phone: existing user, no new row.
	require.NoError(t, svc.RequestCode(ctx, "13800001111"))
	result, err = svc.VerifyAndLogin(ctx, "13800001111", sms.lastCode())
	require.NoError(t, err)
	assert.False(t, result.IsNewUser)
	assert.Equal(t, 1, dir.created)
}

func TestFlow_CodeExpiresNaturally(t *testing.T) {
	mr, svc, sms, _ := setupFlow(t)
	ctx := context.Background()

	require.NoError(t, svc.RequestCode(ctx, "13800001111"))
	good := sms.lastCode()

	mr.FastForward(5*time.Minute + time.Second)

	_, err := svc.VerifyAndLogin(ctx, "13800001111", good)
	assert.True(t, errors.Is(err, domain.ErrCodeExpired))

	// Expiry also clears the duplicate-send guard.
	require.NoError(t, svc.RequestCode(ctx, "13800001111"))
}

func TestFlow_SessionSlidingExpiration(t *testing.T) {
	mr, svc, sms, _ := setupFlow(t)
	ctx := context.Background()

	require.NoError(t, svc.RequestCode(ctx, "13800001111"))
	result, err := svc.VerifyAndLogin(ctx, "13800001111", sms.lastCode())
	require.NoError(t, err)

	// Each resolve slides the expiry back to a full day.
	for i := 0; i < 3; i++ {
		mr.FastForward(23 * time.Hour)
		u, err := svc.ResolveSession(ctx, result.Token)
		require.NoError(t, err)
		require.NotNil(t, u, "session should survive resolve %d", i)
	}

	// Untouched past the TTL, the session is gone. That is not an error.
	mr.FastForward(25 * time.Hour)
	u, err := svc.ResolveSession(ctx, result.Token)
	require.NoError(t, err)
	assert.Nil(t, u)
}
