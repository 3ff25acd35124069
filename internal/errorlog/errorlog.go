package errorlog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/frahmantamala/practice-management/internal"
	"github.com/frahmantamala/practice-management/pkg/logger"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func (s Severity) level() slog.Level {
	switch s {
	case SeverityLow:
		return slog.LevelInfo
	case SeverityMedium:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

type RequestInfo struct {
	Method     string `json:"method"`
	Path       string `json:"path"`
	RemoteAddr string `json:"remote_addr"`
	UserAgent  string `json:"user_agent"`
	RequestID  string `json:"request_id,omitempty"`
}

// Record is the structured form of one logged error.
type Record struct {
	ID         string         `json:"error_id"`
	Type       string         `json:"type"`
	Message    string         `json:"message"`
	StackTrace string         `json:"stack_trace,omitempty"`
	Severity   Severity       `json:"severity"`
	Timestamp  time.Time      `json:"timestamp"`
	Request    *RequestInfo   `json:"request,omitempty"`
	UserID     string         `json:"user_id,omitempty"`
	Extra      map[string]any `json:"extra,omitempty"`
}

type Option func(*Record)

func WithSeverity(s Severity) Option {
	return func(r *Record) { r.Severity = s }
}

func WithRequest(req *http.Request) Option {
	return func(r *Record) {
		if req == nil {
			return
		}
		r.Request = &RequestInfo{
			Method:     req.Method,
			Path:       req.URL.Path,
			RemoteAddr: req.RemoteAddr,
			UserAgent:  req.UserAgent(),
			RequestID:  logger.RequestID(req.Context()),
		}
	}
}

func WithUserID(id string) Option {
	return func(r *Record) { r.UserID = id }
}

func WithExtra(key string, value any) Option {
	return func(r *Record) {
		if r.Extra == nil {
			r.Extra = make(map[string]any)
		}
		r.Extra[key] = value
	}
}

// WithStack replaces the stack captured by LogError, e.g. with one taken
// inside a recover.
func WithStack(stack []byte) Option {
	return func(r *Record) { r.StackTrace = string(stack) }
}

// NewErrorID formats ERR_<yyyymmddHHMMSS>_<8 hex of sha256(message)>.
func NewErrorID(t time.Time, message string) string {
	sum := sha256.Sum256([]byte(message))
	return fmt.Sprintf("ERR_%s_%s", t.UTC().Format("20060102150405"), hex.EncodeToString(sum[:])[:8])
}

type Service struct {
	logger   *slog.Logger
	critical *slog.Logger
	now      func() time.Time
}

type ServiceOption func(*Service)

func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

func NewService(lg, critical *slog.Logger, opts ...ServiceOption) *Service {
	if lg == nil {
		lg = logger.LoggerWrapper()
	}
	if critical == nil {
		critical = logger.Critical()
	}
	s := &Service{logger: lg, critical: critical, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Build assembles the record without emitting it. Severity defaults to high.
func (s *Service) Build(ctx context.Context, err error, opts ...Option) Record {
	msg := "<nil>"
	if err != nil {
		msg = err.Error()
	}
	now := s.now()
	rec := Record{
		ID:         NewErrorID(now, msg),
		Type:       fmt.Sprintf("%T", err),
		Message:    msg,
		StackTrace: string(debug.Stack()),
		Severity:   SeverityHigh,
		Timestamp:  now,
		UserID:     internal.UserIDFromContext(ctx),
	}
	for _, opt := range opts {
		opt(&rec)
	}
	return rec
}

// LogError emits err through the structured logger and returns its error id.
// Critical records are repeated on the critical logger.
func (s *Service) LogError(ctx context.Context, err error, opts ...Option) string {
	rec := s.Build(ctx, err, opts...)
	attrs := recordAttrs(rec)

	s.logger.LogAttrs(ctx, rec.Severity.level(), "application error", attrs...)
	if rec.Severity == SeverityCritical {
		s.critical.LogAttrs(ctx, slog.LevelError, "critical error", attrs...)
	}
	return rec.ID
}

func recordAttrs(rec Record) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("error_id", rec.ID),
		slog.String("error_type", rec.Type),
		slog.String("error", rec.Message),
		slog.String("severity", string(rec.Severity)),
		slog.Time("timestamp", rec.Timestamp),
	}
	if rec.UserID != "" {
		attrs = append(attrs, slog.String("user_id", rec.UserID))
	}
	if rec.Request != nil {
		attrs = append(attrs, slog.Group("request",
			slog.String("method", rec.Request.Method),
			slog.String("path", rec.Request.Path),
			slog.String("remote_addr", rec.Request.RemoteAddr),
			slog.String("user_agent", rec.Request.UserAgent),
			slog.String("request_id", rec.Request.RequestID),
		))
	}
	if len(rec.Extra) > 0 {
		attrs = append(attrs, slog.Any("extra", rec.Extra))
	}
	if rec.StackTrace != "" {
		attrs = append(attrs, slog.String("stack_trace", rec.StackTrace))
	}
	return attrs
}
