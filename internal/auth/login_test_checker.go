package auth

import (
	"context"
	"sync"
)

// LoginTestChecker maps tokens straight to identities, for tests and local runs.
type LoginTestChecker struct {
	mu       sync.RWMutex
	sessions map[string]string
}

func NewLoginTestChecker() *LoginTestChecker {
	return &LoginTestChecker{
		sessions: map[string]string{},
	}
}

func (c *LoginTestChecker) Add(token, identity string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[token] = identity
}

func (c *LoginTestChecker) IsLogged(_ context.Context, token string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	identity, ok := c.sessions[token]
	return identity, ok, nil
}
