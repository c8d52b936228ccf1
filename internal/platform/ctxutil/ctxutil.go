package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type traceDataKey struct{}
type requestDataKey struct{}

// TraceData is created once per request and annotated by later layers:
// auth fills UserID, the engagement handlers fill ModelID and Lookback.
type TraceData struct {
	TraceID   string
	RequestID string

	UserID   uuid.UUID
	ModelID  string
	Lookback int
}

// SetTraceUser records the authenticated caller on the request's TraceData.
func SetTraceUser(ctx context.Context, userID uuid.UUID) {
	if td := GetTraceData(ctx); td != nil {
		td.UserID = userID
	}
}

// SetTraceModel records the engagement model a request produced or read.
func SetTraceModel(ctx context.Context, modelID string, lookback int) {
	if td := GetTraceData(ctx); td != nil {
		td.ModelID = modelID
		td.Lookback = lookback
	}
}

// RequestData carries the authenticated caller for the lifetime of a request.
type RequestData struct {
	UserID   uuid.UUID
	TokenID  string
	Timezone string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	if ctx == nil {
		return nil
	}
	if td, ok := ctx.Value(traceDataKey{}).(*TraceData); ok {
		return td
	}
	return nil
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if ctx == nil {
		return nil
	}
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		return rd
	}
	return nil
}

// UserID returns the authenticated user or uuid.Nil.
func UserID(ctx context.Context) uuid.UUID {
	rd := GetRequestData(ctx)
	if rd == nil {
		return uuid.Nil
	}
	return rd.UserID
}

// Default returns context.Background() when ctx is nil.
func Default(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
