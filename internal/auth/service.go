package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/2beens/zenith/pkg"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultTTL       = 24 * 7 * time.Hour
	sessionKeyPrefix = "zenith-session||"
	tokensSetKey     = "zenith-sessions"
	minPasswordLen   = 8
)

var (
	ErrWrongCredentials = errors.New("wrong credentials")
	ErrInvalidEmail     = errors.New("invalid email")
	ErrWeakPassword     = errors.New("password too short")
)

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// normalizedEmail is the identity documents are keyed by.
func (c Credentials) normalizedEmail() string {
	return strings.ToLower(strings.TrimSpace(c.Email))
}

type usersRepo interface {
	Create(ctx context.Context, email, passwordHash string) error
	PasswordHash(ctx context.Context, email string) (string, error)
}

type Service struct {
	users       usersRepo
	redisClient *redis.Client
	secret      []byte
	ttl         time.Duration
	// ability to inject random string generator func for session ids (for unit and dev testing)
	RandStringFunc func(s int) (string, error)
}

func NewAuthService(
	users usersRepo,
	jwtSecret string,
	ttl time.Duration,
	redisClient *redis.Client,
) *Service {
	return &Service{
		users:          users,
		redisClient:    redisClient,
		secret:         []byte(jwtSecret),
		ttl:            ttl,
		RandStringFunc: pkg.GenerateRandomString,
	}
}

func (as *Service) Register(ctx context.Context, creds Credentials) error {
	email := creds.normalizedEmail()
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidEmail
	}
	if len(creds.Password) < minPasswordLen {
		return ErrWeakPassword
	}

	hash, err := pkg.HashPassword(creds.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return as.users.Create(ctx, email, hash)
}

// Login checks the credentials, opens a redis session and returns a signed token.
func (as *Service) Login(ctx context.Context, creds Credentials, createdAt time.Time) (string, error) {
	email := creds.normalizedEmail()
	hash, err := as.users.PasswordHash(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", ErrWrongCredentials
		}
		return "", err
	}
	if !pkg.CheckPasswordHash(creds.Password, hash) {
		return "", ErrWrongCredentials
	}

	sessionID, err := as.RandStringFunc(24)
	if err != nil {
		return "", err
	}

	sessionKey := sessionKeyPrefix + sessionID
	cmdSet := as.redisClient.Set(ctx, sessionKey, createdAt.Unix(), 0)
	if err := cmdSet.Err(); err != nil {
		return "", err
	}

	// add session to list of sessions
	cmdSAdd := as.redisClient.SAdd(ctx, tokensSetKey, sessionID)
	if err := cmdSAdd.Err(); err != nil {
		return "", err
	}

	return signToken(as.secret, email, sessionID, createdAt, as.ttl)
}

// Logout closes the session behind token and returns its identity.
func (as *Service) Logout(ctx context.Context, token string) (string, bool, error) {
	claims, err := parseToken(as.secret, token)
	if err != nil {
		return "", false, err
	}

	sessionKey := sessionKeyPrefix + claims.ID
	cmd := as.redisClient.Get(ctx, sessionKey)
	if err := cmd.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return claims.Email, false, nil
		}
		return "", false, err
	}

	cmdDel := as.redisClient.Del(ctx, sessionKey)
	if err := cmdDel.Err(); err != nil {
		return "", false, err
	}

	// remove session from the list of sessions
	cmdSRem := as.redisClient.SRem(ctx, tokensSetKey, claims.ID)
	if err := cmdSRem.Err(); err != nil {
		return "", false, err
	}

	return claims.Email, true, nil
}

// ScanAndClean will run through all sessions, check the TTL, and clean them if old
func (as *Service) ScanAndClean(ctx context.Context) {
	cmd := as.redisClient.SMembers(ctx, tokensSetKey)
	if err := cmd.Err(); err != nil {
		log.Errorf("!!! auth service, scan and clean, get sessions: %s", err)
		return
	}

	sessionIDs := cmd.Val()
	if len(sessionIDs) == 0 {
		log.Debugln("=> auth service, scan and clean abort, no sessions")
		return
	}

	log.Debugf("=> auth service, scan and clean [%d sessions] start ...", len(sessionIDs))
	var toRemove []string
	for _, sessionID := range sessionIDs {
		cmd := as.redisClient.Get(ctx, sessionKeyPrefix+sessionID)
		if err := cmd.Err(); err != nil {
			if errors.Is(err, redis.Nil) {
				// key already gone, only the set entry is left
				toRemove = append(toRemove, sessionID)
				continue
			}
			log.Errorf("=> auth service, scan and clean session %s: %s", sessionID, err)
			continue
		}

		createdAtUnix, err := strconv.ParseInt(cmd.Val(), 10, 64)
		if err != nil {
			log.Errorf("=> auth service, scan and clean session %s: %s", sessionID, err)
			continue
		}

		if time.Since(time.Unix(createdAtUnix, 0)) > as.ttl {
			log.Tracef("=>\twill clean the session: %s", sessionID)
			toRemove = append(toRemove, sessionID)
		}
	}

	for _, sessionID := range toRemove {
		if err := as.redisClient.Del(ctx, sessionKeyPrefix+sessionID).Err(); err != nil {
			log.Errorf("=> auth service, clean session %s: %s", sessionID, err)
			continue
		}
		if err := as.redisClient.SRem(ctx, tokensSetKey, sessionID).Err(); err != nil {
			log.Errorf("=> auth service, clean session %s: %s", sessionID, err)
			continue
		}
	}
}
