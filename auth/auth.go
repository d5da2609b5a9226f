// Package auth checks the single admin's credentials and notifies
// listeners when sessions sign in or out.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// Identity is an authenticated admin session. SessionID is fresh for
// every sign-in.
type Identity struct {
	Email     string `json:"email"`
	SessionID string `json:"sessionId"`
}

// Event is one session change.
type Event struct {
	Identity Identity
	SignedIn bool
}

type Authenticator struct {
	email    string
	hash     []byte
	password []byte

	mu        sync.Mutex
	listeners map[int]func(Event)
	nextID    int
}

// New builds an authenticator for one admin account. passwordHash is a
// bcrypt hash; when it is empty the plain password is compared in constant
// time.
func New(email, password, passwordHash string) (*Authenticator, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("admin email required")
	}
	a := &Authenticator{email: email, listeners: make(map[int]func(Event))}
	switch {
	case passwordHash != "":
		if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
			return nil, fmt.Errorf("admin password hash: %w", err)
		}
		a.hash = []byte(passwordHash)
	case password != "":
		a.password = []byte(password)
	default:
		return nil, fmt.Errorf("admin password or password hash required")
	}
	return a, nil
}

// HashPassword returns a bcrypt hash suitable for ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", errors.New("password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// SignIn verifies the credentials and starts a session.
func (a *Authenticator) SignIn(_ context.Context, email, password string) (Identity, error) {
	if email == "" || password == "" {
		return Identity{}, ErrInvalidCredentials
	}
	emailOK := strings.EqualFold(strings.TrimSpace(email), a.email)
	var passOK bool
	if a.hash != nil {
		passOK = bcrypt.CompareHashAndPassword(a.hash, []byte(password)) == nil
	} else {
		passOK = subtle.ConstantTimeCompare([]byte(password), a.password) == 1
	}
	if !emailOK || !passOK {
		return Identity{}, ErrInvalidCredentials
	}
	id := Identity{Email: a.email, SessionID: uuid.NewString()}
	a.emit(Event{Identity: id, SignedIn: true})
	return id, nil
}

// SignOut ends a session.
func (a *Authenticator) SignOut(id Identity) {
	a.emit(Event{Identity: id, SignedIn: false})
}

// Watch registers fn for session changes and returns a function that
// removes it.
func (a *Authenticator) Watch(fn func(Event)) func() {
	a.mu.Lock()
	id := a.nextID
	a.nextID++
	a.listeners[id] = fn
	a.mu.Unlock()
	return func() {
		a.mu.Lock()
		delete(a.listeners, id)
		a.mu.Unlock()
	}
}

func (a *Authenticator) emit(ev Event) {
	a.mu.Lock()
	fns := make([]func(Event), 0, len(a.listeners))
	for _, fn := range a.listeners {
		fns = append(fns, fn)
	}
	a.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}
