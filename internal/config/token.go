package config

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// tokenPrefix identifies tickit-sync API tokens.
const tokenPrefix = "tks_"

// tokenAlphabet is the URL-safe alphabet used for token bodies.
const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// ErrTokenExists is returned when adding a token under a name already in use.
var ErrTokenExists = errors.New("token name already exists")

// tokenBodyLen is the number of random characters after the prefix.
const tokenBodyLen = 62

// GenerateToken returns a new random API token. Only the hash is ever
// persisted; the plaintext is shown to the operator once.
func GenerateToken() (string, error) {
	var raw [tokenBodyLen]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}

	body := make([]byte, len(raw))
	for i, b := range raw {
		body[i] = tokenAlphabet[int(b)%len(tokenAlphabet)]
	}
	return tokenPrefix + string(body), nil
}

// HashToken hashes a plaintext token for storage in the config file.
func HashToken(token string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing token: %w", err)
	}
	return string(hash), nil
}

// ValidateToken reports whether the presented token matches any configured
// token. Hashed entries are verified with bcrypt; anything else falls back
// to a constant-time plaintext comparison for legacy configs.
func (c Config) ValidateToken(token string) bool {
	for _, t := range c.Tokens {
		if strings.HasPrefix(t.TokenHash, "$2") {
			if bcrypt.CompareHashAndPassword([]byte(t.TokenHash), []byte(token)) == nil {
				return true
			}
			continue
		}
		if subtle.ConstantTimeCompare([]byte(t.TokenHash), []byte(token)) == 1 {
			return true
		}
	}
	return false
}

// AddToken appends a named token hash. Returns ErrTokenExists if the name is
// already in use.
func (c *Config) AddToken(name, hash string) error {
	for _, t := range c.Tokens {
		if t.Name == name {
			return fmt.Errorf("%w: %s", ErrTokenExists, name)
		}
	}
	c.Tokens = append(c.Tokens, TokenConfig{Name: name, TokenHash: hash})
	return nil
}

// RemoveToken deletes the token with the given name. Reports whether a
// token was removed.
func (c *Config) RemoveToken(name string) bool {
	for i, t := range c.Tokens {
		if t.Name == name {
			c.Tokens = append(c.Tokens[:i], c.Tokens[i+1:]...)
			return true
		}
	}
	return false
}
