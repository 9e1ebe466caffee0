// File: internal/services/echo/service.go
package echo

import (
	"context"
	"errors"
	"math/rand"

	"github.com/routelab/route-planner/internal/domain"
	echorepo "github.com/routelab/route-planner/internal/repository/echo"
)

// Result is the successful echo payload.
type Result struct {
	Message  string `json:"message"`
	Echo     string `json:"echo"`
	Attempts int    `json:"attempts"`
}

// Logger defines the logging interface used by the echo service.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// Service simulates a flaky dependency: the first sight of a
// (client key, message) pair picks how many times it will fail before
// succeeding, and each call advances the per-pair attempt counter. The
// state lives in the database so the counter survives across requests.
type Service struct {
	attempts    echorepo.AttemptRepository
	maxFailures int
	logger      Logger
}

func NewService(attempts echorepo.AttemptRepository, logger Logger) *Service {
	return &Service{
		attempts:    attempts,
		maxFailures: 3,
		logger:      logger,
	}
}

// Echo records the attempt and either fails with a TransientError or echoes
// the message back together with the attempt count that got it through.
func (s *Service) Echo(ctx context.Context, clientKey, message string) (*Result, error) {
	if message == "" {
		return nil, NewEchoError("echo", "message cannot be empty", nil)
	}
	if clientKey == "" {
		clientKey = "anonymous"
	}

	attempt, err := s.attempts.FindByClientKeyAndMessage(ctx, clientKey, message)
	switch {
	case errors.Is(err, echorepo.ErrAttemptNotFound):
		attempt = &domain.EchoAttempt{
			ClientKey: clientKey,
			Message:   message,
			Failures:  1 + rand.Intn(s.maxFailures),
			Attempts:  1,
		}
		if attempt, err = s.attempts.Create(ctx, attempt); err != nil {
			return nil, NewEchoError("echo", "could not record attempt", err)
		}
	case err != nil:
		return nil, NewEchoError("echo", "could not load attempt", err)
	default:
		attempt.Attempts++
		if err := s.attempts.Update(ctx, attempt); err != nil {
			return nil, NewEchoError("echo", "could not record attempt", err)
		}
	}

	if attempt.Attempts <= attempt.Failures {
		s.logger.Debug("simulating transient failure",
			"client_key", clientKey, "attempt", attempt.Attempts, "failures", attempt.Failures)
		return nil, &TransientError{Attempt: attempt.Attempts, Total: attempt.Failures + 1}
	}

	s.logger.Info("echo succeeded", "client_key", clientKey, "attempts", attempt.Attempts)
	return &Result{Message: message, Echo: message, Attempts: attempt.Attempts}, nil
}

// Reset clears attempt tracking for a client and reports how many records
// were removed.
func (s *Service) Reset(ctx context.Context, clientKey string) (int64, error) {
	if clientKey == "" {
		return 0, NewEchoError("reset", "client key cannot be empty", nil)
	}

	deleted, err := s.attempts.DeleteByClientKey(ctx, clientKey)
	if err != nil {
		return 0, NewEchoError("reset", "could not delete attempts", err)
	}
	return deleted, nil
}
