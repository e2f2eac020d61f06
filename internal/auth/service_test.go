package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/2beens/zenith/pkg"

	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const (
	testSecret   = "test-jwt-secret"
	testEmail    = "ana@zenith.app"
	testPassword = "squat-every-day"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// INFO: https://github.com/go-redis/redis/issues/1029
		goleak.IgnoreTopFunction(
			"github.com/go-redis/redis/v8/internal/pool.(*ConnPool).reaper",
		),
	)
}

type memoryUsers struct {
	mu     sync.Mutex
	hashes map[string]string
	err    error
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{hashes: map[string]string{}}
}

func (u *memoryUsers) Create(_ context.Context, email, passwordHash string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.err != nil {
		return u.err
	}
	if _, ok := u.hashes[email]; ok {
		return ErrUserExists
	}
	u.hashes[email] = passwordHash
	return nil
}

func (u *memoryUsers) PasswordHash(_ context.Context, email string) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.err != nil {
		return "", u.err
	}
	hash, ok := u.hashes[email]
	if !ok {
		return "", ErrUserNotFound
	}
	return hash, nil
}

func usersWithTestAccount(t *testing.T) *memoryUsers {
	t.Helper()
	hash, err := pkg.HashPassword(testPassword)
	require.NoError(t, err)
	users := newMemoryUsers()
	users.hashes[testEmail] = hash
	return users
}

func TestAuthService_Register(t *testing.T) {
	rdb, _ := redismock.NewClientMock()
	defer rdb.Close()

	users := newMemoryUsers()
	authService := NewAuthService(users, testSecret, time.Hour, rdb)
	ctx := context.Background()

	assert.ErrorIs(t, authService.Register(ctx, Credentials{Email: "not-an-email", Password: testPassword}), ErrInvalidEmail)
	assert.ErrorIs(t, authService.Register(ctx, Credentials{Email: testEmail, Password: "short"}), ErrWeakPassword)

	require.NoError(t, authService.Register(ctx, Credentials{Email: "  ANA@Zenith.app ", Password: testPassword}))
	require.Contains(t, users.hashes, testEmail)
	assert.True(t, pkg.CheckPasswordHash(testPassword, users.hashes[testEmail]))

	assert.ErrorIs(t, authService.Register(ctx, Credentials{Email: testEmail, Password: testPassword}), ErrUserExists)
}

func TestAuthService_LoginLogout(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer rdb.Close()

	authService := NewAuthService(usersWithTestAccount(t), testSecret, time.Hour, rdb)
	require.NotNil(t, authService)
	assert.Equal(t, time.Hour, authService.ttl)

	sessionID := "test_session"
	authService.RandStringFunc = func(s int) (string, error) {
		return sessionID, nil
	}

	ctx := context.Background()
	now := time.Now()
	sessionKey := sessionKeyPrefix + sessionID
	mock.ExpectSet(sessionKey, now.Unix(), 0).SetVal("OK")
	mock.ExpectSAdd(tokensSetKey, sessionID).SetVal(1)

	token, err := authService.Login(ctx, Credentials{Email: "Ana@zenith.app", Password: testPassword}, now)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := parseToken([]byte(testSecret), token)
	require.NoError(t, err)
	assert.Equal(t, testEmail, claims.Email)
	assert.Equal(t, sessionID, claims.ID)

	// wrong password and unknown user never touch redis
	_, err = authService.Login(ctx, Credentials{Email: testEmail, Password: "invalid_pass"}, now)
	assert.ErrorIs(t, err, ErrWrongCredentials)
	_, err = authService.Login(ctx, Credentials{Email: "bob@zenith.app", Password: testPassword}, now)
	assert.ErrorIs(t, err, ErrWrongCredentials)

	mock.ExpectGet(sessionKey).SetVal(fmt.Sprintf("%d", now.Unix()))
	mock.ExpectDel(sessionKey).SetVal(1)
	mock.ExpectSRem(tokensSetKey, sessionID).SetVal(1)
	identity, loggedOut, err := authService.Logout(ctx, token)
	require.NoError(t, err)
	assert.True(t, loggedOut)
	assert.Equal(t, testEmail, identity)

	_, _, err = authService.Logout(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthService_LoginUsersError(t *testing.T) {
	rdb, _ := redismock.NewClientMock()
	defer rdb.Close()

	users := newMemoryUsers()
	users.err = errors.New("db down")
	authService := NewAuthService(users, testSecret, time.Hour, rdb)

	_, err := authService.Login(context.Background(), Credentials{Email: testEmail, Password: testPassword}, time.Now())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrWrongCredentials)
}

func TestAuthService_ScanAndClean(t *testing.T) {
	ttl := time.Hour
	now := time.Now()
	then := now.Add(-2 * time.Hour)

	rdb, mock := redismock.NewClientMock()
	defer rdb.Close()

	authService := NewAuthService(newMemoryUsers(), testSecret, ttl, rdb)

	fresh, old, gone := "s1", "s2", "s3"
	mock.ExpectSMembers(tokensSetKey).SetVal([]string{fresh, old, gone})
	mock.ExpectGet(sessionKeyPrefix + fresh).SetVal(fmt.Sprintf("%d", now.Unix()))
	mock.ExpectGet(sessionKeyPrefix + old).SetVal(fmt.Sprintf("%d", then.Unix()))
	mock.ExpectGet(sessionKeyPrefix + gone).SetErr(redis.Nil)
	// fresh session stays
	mock.ExpectDel(sessionKeyPrefix + old).SetVal(1)
	mock.ExpectSRem(tokensSetKey, old).SetVal(1)
	mock.ExpectDel(sessionKeyPrefix + gone).SetVal(0)
	mock.ExpectSRem(tokensSetKey, gone).SetVal(1)

	authService.ScanAndClean(context.Background())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginChecker_IsLogged(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer rdb.Close()

	loginChecker := NewLoginChecker(time.Hour, testSecret, rdb)
	ctx := context.Background()
	now := time.Now()

	// invalid tokens are rejected before redis
	identity, isLogged, err := loginChecker.IsLogged(ctx, "invalid token")
	require.NoError(t, err)
	assert.False(t, isLogged)
	assert.Empty(t, identity)

	foreign, err := signToken([]byte("other-secret"), testEmail, "sid", now, time.Hour)
	require.NoError(t, err)
	_, isLogged, err = loginChecker.IsLogged(ctx, foreign)
	require.NoError(t, err)
	assert.False(t, isLogged)

	token, err := signToken([]byte(testSecret), testEmail, "sid", now, time.Hour)
	require.NoError(t, err)
	sessionKey := sessionKeyPrefix + "sid"

	mock.ExpectGet(sessionKey).SetVal(fmt.Sprintf("%d", now.Unix()))
	identity, isLogged, err = loginChecker.IsLogged(ctx, token)
	require.NoError(t, err)
	assert.True(t, isLogged)
	assert.Equal(t, testEmail, identity)

	// logged out
	mock.ExpectGet(sessionKey).SetErr(redis.Nil)
	_, isLogged, err = loginChecker.IsLogged(ctx, token)
	require.NoError(t, err)
	assert.False(t, isLogged)

	// session outlived the ttl
	mock.ExpectGet(sessionKey).SetVal(fmt.Sprintf("%d", now.Add(-2*time.Hour).Unix()))
	_, isLogged, err = loginChecker.IsLogged(ctx, token)
	require.NoError(t, err)
	assert.False(t, isLogged)

	mock.ExpectGet(sessionKey).SetErr(errors.New("redis down"))
	_, isLogged, err = loginChecker.IsLogged(ctx, token)
	require.Error(t, err)
	assert.False(t, isLogged)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParseToken_Expired(t *testing.T) {
	token, err := signToken([]byte(testSecret), testEmail, "sid", time.Now().Add(-2*time.Hour), time.Hour)
	require.NoError(t, err)
	_, err = parseToken([]byte(testSecret), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
