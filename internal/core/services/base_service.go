package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/consignet/consignment_backend/internal/apperrors"
	"github.com/consignet/consignment_backend/internal/middleware"
	"github.com/consignet/consignment_backend/internal/platform/locker"
	"github.com/consignet/consignment_backend/internal/platform/metrics"
)

// BaseService provides common functionality for all services
type BaseService struct {
	Locker  locker.Locker
	Metrics *metrics.Recorder
	Clock   func() time.Time
}

// ServiceOption is a functional option for configuring a service
type ServiceOption func(*BaseService)

// WithLocker sets the lock used to serialize ledger writes. Services that
// touch the same ledgers must share one.
func WithLocker(l locker.Locker) ServiceOption {
	return func(s *BaseService) {
		s.Locker = l
	}
}

// WithMetrics adds a metrics recorder
func WithMetrics(m *metrics.Recorder) ServiceOption {
	return func(s *BaseService) {
		s.Metrics = m
	}
}

// WithClock overrides time.Now, mostly for tests
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *BaseService) {
		s.Clock = clock
	}
}

func newBaseService(options ...ServiceOption) BaseService {
	base := BaseService{}
	for _, option := range options {
		option(&base)
	}
	if base.Locker == nil {
		base.Locker = locker.NewKeyedMutex()
	}
	if base.Clock == nil {
		base.Clock = time.Now
	}
	return base
}

// Now returns the current time in UTC.
func (s *BaseService) Now() time.Time {
	return s.Clock().UTC()
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	logger := middleware.GetLoggerFromCtx(ctx)
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogWarn logs a rejected business operation
func (s *BaseService) LogWarn(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("reason", err.Error()))
	args = append(args, keyvals...)
	logger.Warn(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// runLocked holds the given lock keys for the duration of fn.
func (s *BaseService) runLocked(ctx context.Context, keys []string, fn func() error) error {
	unlock, err := s.Locker.Lock(ctx, keys...)
	if err != nil {
		return apperrors.NewAppError(503, "failed to acquire ledger lock", err)
	}
	defer unlock()
	return fn()
}

// finish logs and counts the outcome of a ledger operation and passes err through.
func (s *BaseService) finish(ctx context.Context, operation string, err error, keyvals ...any) error {
	switch {
	case err == nil:
		s.Metrics.ObserveOperation(operation, metrics.OutcomeSuccess)
	case isRejection(err):
		s.Metrics.ObserveOperation(operation, metrics.OutcomeRejected)
		s.LogWarn(ctx, err, "Ledger operation rejected", append([]any{slog.String("operation", operation)}, keyvals...)...)
	default:
		s.Metrics.ObserveOperation(operation, metrics.OutcomeError)
		s.LogError(ctx, err, "Ledger operation failed", append([]any{slog.String("operation", operation)}, keyvals...)...)
	}
	return err
}

// isRejection reports whether err is a business rule refusal rather than a failure.
func isRejection(err error) bool {
	for _, target := range []error{
		apperrors.ErrValidation,
		apperrors.ErrNotFound,
		apperrors.ErrDuplicate,
		apperrors.ErrConflict,
		apperrors.ErrNoEligibleItems,
		apperrors.ErrInvalidState,
		apperrors.ErrInsufficientBalance,
		apperrors.ErrMissingSupplier,
		apperrors.ErrUnderfunded,
		apperrors.ErrRegisterAlreadyOpen,
		apperrors.ErrNegativeBalance,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
