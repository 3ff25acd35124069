package internal

import (
	"context"
	"strconv"
	"time"
)

type ctxKey string

const (
	ContextUserKey   ctxKey = "userID"
	ContextClientKey ctxKey = "client"
)

// ClientInfo describes the caller of the current request.
type ClientInfo struct {
	IP        string
	UserAgent string
}

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if userID, ok := ctx.Value(ContextUserKey).(string); ok {
		return userID
	}
	return ""
}

// ActorID returns the authenticated user id as a number.
func ActorID(ctx context.Context) (int64, bool) {
	id, err := strconv.ParseInt(UserIDFromContext(ctx), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ContextUserKey, userID)
}

func ContextWithClient(ctx context.Context, info ClientInfo) context.Context {
	return context.WithValue(ctx, ContextClientKey, info)
}

func ClientFromContext(ctx context.Context) ClientInfo {
	if ctx == nil {
		return ClientInfo{}
	}
	info, _ := ctx.Value(ContextClientKey).(ClientInfo)
	return info
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
