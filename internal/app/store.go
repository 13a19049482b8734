package app

import (
	"context"
	"time"

	"github.com/amolnak/GuidanceMind/internal/entity"
	"github.com/amolnak/GuidanceMind/internal/repository"
)

// timedStore bounds each store call with its own deadline.
type timedStore struct {
	next    repository.SessionRepository
	timeout time.Duration
}

// NewTimedStore wraps repo so every call gets at most timeout. A zero timeout
// returns repo unchanged.
func NewTimedStore(repo repository.SessionRepository, timeout time.Duration) repository.SessionRepository {
	if timeout <= 0 {
		return repo
	}
	return &timedStore{next: repo, timeout: timeout}
}

func (s *timedStore) Load(ctx context.Context, name string) (entity.SessionSnapshot, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.next.Load(ctx, name)
}

func (s *timedStore) Save(ctx context.Context, snap entity.SessionSnapshot) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.next.Save(ctx, snap)
}

func (s *timedStore) Delete(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.next.Delete(ctx, name)
}

func (s *timedStore) List(ctx context.Context) ([]entity.SessionSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.next.List(ctx)
}
