// Package auth supplies the identity that signs group-mode writes.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/alexanderramin/hearth/internal/repository"
	"github.com/google/uuid"
)

// ErrSignedOut is returned by providers that currently have no identity.
var ErrSignedOut = errors.New("no signed-in identity")

// Provider returns the identity of the current device user.
type Provider interface {
	Identity(ctx context.Context) (string, error)
}

// Static is a fixed identity. The empty Static is signed out.
type Static string

func (s Static) Identity(context.Context) (string, error) {
	if s == "" {
		return "", ErrSignedOut
	}
	return string(s), nil
}

// Anonymous signs the device in anonymously: an identity is minted on first
// use and persisted so it survives restarts.
type Anonymous struct {
	repo repository.KVRepo

	mu sync.Mutex
	id string
}

func NewAnonymous(repo repository.KVRepo) *Anonymous {
	return &Anonymous{repo: repo}
}

func (a *Anonymous) Identity(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.id != "" {
		return a.id, nil
	}

	id, err := repository.Load(ctx, a.repo, repository.KeyIdentity, "")
	if err != nil {
		return "", fmt.Errorf("loading identity: %w", err)
	}
	if id == "" {
		id = uuid.New().String()
		if err := repository.Save(ctx, a.repo, repository.KeyIdentity, id); err != nil {
			return "", fmt.Errorf("persisting identity: %w", err)
		}
	}
	a.id = id
	return id, nil
}
