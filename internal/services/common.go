package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/pulseboard-backend/internal/data/db"
	"github.com/yungbote/pulseboard-backend/internal/platform/apierr"
	"github.com/yungbote/pulseboard-backend/internal/platform/ctxutil"
)

var errNoUser = errors.New("request data not set in context")

// requireUser returns the authenticated caller or an Unauthorized error.
func requireUser(ctx context.Context) (uuid.UUID, error) {
	id := ctxutil.UserID(ctx)
	if id == uuid.Nil {
		return uuid.Nil, apierr.Unauthorized(errNoUser)
	}
	return id, nil
}

// userLocation resolves the caller's timezone, falling back to UTC.
func userLocation(ctx context.Context) *time.Location {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(rd.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func conflictOnDuplicate(code string, err error) error {
	if db.IsDuplicateKey(err) {
		return apierr.Conflict(code, err)
	}
	return err
}

func notFound(code, what string) error {
	return apierr.NotFound(code, fmt.Errorf("%s not found", what))
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
