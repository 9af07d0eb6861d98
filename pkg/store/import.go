package store

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/robert-malhotra/go-strava-client/pkg/activity"
	"github.com/robert-malhotra/go-strava-client/pkg/client"
)

// Import drains seq into the store, writing batchSize activities per
// transaction. It returns how many activities were stored before the first
// error; batches already written are kept.
func (s *Store) Import(ctx context.Context, seq iter.Seq2[*activity.Activity, error], batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 100
	}

	var (
		total   int
		batch   = make([]*activity.Activity, 0, batchSize)
		iterErr error
	)
	flush := func() error {
		n, err := s.UpsertActivities(ctx, batch)
		total += n
		batch = batch[:0]
		return err
	}

	for a, err := range seq {
		if err != nil {
			iterErr = err
			break
		}
		batch = append(batch, a)
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return total, err
			}
			s.logger.Info("sync progress", "stored", total)
		}
	}
	if err := flush(); err != nil {
		return total, err
	}
	if iterErr != nil {
		return total, fmt.Errorf("fetch activities: %w", iterErr)
	}
	return total, nil
}

// TokenSource loads the stored token and returns a source that refreshes it
// through o, persisting every refreshed token back into the store.
func (s *Store) TokenSource(ctx context.Context, o *client.OAuth) (*client.RefreshingSource, error) {
	tok, err := s.LoadToken(ctx)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotAuthorized
	}
	if err != nil {
		return nil, err
	}
	return client.NewRefreshingSource(o, tok, s.SaveToken), nil
}

// ErrNotAuthorized is returned by TokenSource before the first login.
var ErrNotAuthorized = errors.New("not authorized: run `strava auth` first")
