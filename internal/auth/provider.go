package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/planetprotrader/backend/internal/contracts"
)

var (
	// ErrInvalidCredentials is returned for an unknown email or a wrong password
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailInUse is returned when signing up with a registered email
	ErrEmailInUse = errors.New("email address is already in use")
	// ErrUserNotFound is returned when no account matches the email
	ErrUserNotFound = errors.New("no account for this email")
)

// IdentityProvider is the remote identity service the gateway calls
type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (contracts.User, error)
	CreateUser(ctx context.Context, username, email, password string) (contracts.User, error)
	SignOut(ctx context.Context, uid string) error
	SendPasswordReset(ctx context.Context, email string) error
}

type memoryAccount struct {
	user contracts.User
	hash []byte
}

// ResetToken is an issued password reset
type ResetToken struct {
	Token     string
	UID       string
	ExpiresAt time.Time
}

// MemoryProvider keeps accounts in process
type MemoryProvider struct {
	mu       sync.Mutex
	accounts map[string]memoryAccount // by lower-cased email
	resets   []ResetToken
	cost     int
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryProvider creates an empty provider. Reset tokens live for ttl.
func NewMemoryProvider(ttl time.Duration) *MemoryProvider {
	return &MemoryProvider{
		accounts: make(map[string]memoryAccount),
		cost:     bcrypt.MinCost,
		ttl:      ttl,
		now:      time.Now,
	}
}

func (p *MemoryProvider) SignIn(ctx context.Context, email, password string) (contracts.User, error) {
	if err := ctx.Err(); err != nil {
		return contracts.User{}, err
	}

	p.mu.Lock()
	acct, ok := p.accounts[strings.ToLower(email)]
	p.mu.Unlock()
	if !ok {
		return contracts.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acct.hash, []byte(password)); err != nil {
		return contracts.User{}, ErrInvalidCredentials
	}
	return acct.user, nil
}

func (p *MemoryProvider) CreateUser(ctx context.Context, username, email, password string) (contracts.User, error) {
	if err := ctx.Err(); err != nil {
		return contracts.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return contracts.User{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	key := strings.ToLower(email)
	if _, exists := p.accounts[key]; exists {
		return contracts.User{}, ErrEmailInUse
	}
	user := contracts.User{UID: uuid.NewString(), Email: email, Username: username}
	p.accounts[key] = memoryAccount{user: user, hash: hash}
	return user, nil
}

func (p *MemoryProvider) SignOut(ctx context.Context, _ string) error {
	return ctx.Err()
}

func (p *MemoryProvider) SendPasswordReset(ctx context.Context, email string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	acct, ok := p.accounts[strings.ToLower(email)]
	if !ok {
		return ErrUserNotFound
	}
	p.resets = append(p.resets, ResetToken{
		Token:     uuid.NewString(),
		UID:       acct.user.UID,
		ExpiresAt: p.now().Add(p.ttl),
	})
	return nil
}

// ResetTokens returns the tokens issued so far
func (p *MemoryProvider) ResetTokens() []ResetToken {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]ResetToken(nil), p.resets...)
}
