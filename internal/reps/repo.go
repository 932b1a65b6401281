package reps

import (
	"context"
	"errors"

	"github.com/2beens/weeklyreps/internal/challenge"
)

var (
	ErrUnknownStorage = errors.New("unknown storage")
	ErrMalformedRow   = errors.New("malformed row")
)

//go:generate mockgen -source=$GOFILE -destination=repo_mocks_test.go -package=reps_test

// Repo is the append-only store of logged reps. Records come back with their
// week index already stamped.
type Repo interface {
	FetchAll(ctx context.Context) ([]challenge.LogRecord, error)
	Append(ctx context.Context, record challenge.LogRecord) error
}
