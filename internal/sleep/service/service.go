// Package service implements the sleep session use cases on top of the validator and repository.
package service

import (
	"context"
	"errors"
	"strconv"

	"go.uber.org/zap"

	"daily-logger/internal/sleep/domain"
	"daily-logger/internal/sleep/repository"
	"daily-logger/internal/telemetry"
)

// Sentinel errors for the sleep service; the handler maps them to HTTP status codes.
var (
	ErrNotFound    = errors.New("sleep record not found")
	ErrUnknownUser = errors.New("sleep: owning user does not exist")
)

// Patch holds the optional bounds of a partial update. Nil means unchanged.
type Patch struct {
	StartTime *string
	EndTime   *string
}

// Service creates, reads, updates and deletes a user's sleep sessions.
type Service struct {
	repo      repository.Repository
	validator *domain.Validator
	events    telemetry.EventEmitter
	log       *zap.Logger
}

// NewService returns a Service. events and log may be nil.
func NewService(repo repository.Repository, validator *domain.Validator, events telemetry.EventEmitter, log *zap.Logger) *Service {
	if validator == nil {
		validator = domain.NewValidator(nil)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, validator: validator, events: events, log: log}
}

// Create validates [start, end) against the user's existing sessions and stores it.
// The read of existing sessions and the insert run under the user's row lock.
func (s *Service) Create(ctx context.Context, userID int64, start, end string) (*domain.Session, error) {
	var created *domain.Session
	err := s.repo.WithUserLock(ctx, userID, func(tx repository.Tx) error {
		existing, err := tx.ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		iv, err := s.validator.ValidateAndNormalize(userID, start, end, nil, existing, domain.ModeCreate)
		if err != nil {
			return err
		}
		sess := &domain.Session{UserID: userID, Start: iv.Start, End: iv.End}
		if err := tx.Insert(ctx, sess); err != nil {
			return err
		}
		created = sess
		return nil
	})
	if err != nil {
		return nil, s.fail(userID, "create", err)
	}
	s.emit(telemetry.EventSleepCreated, userID, created.ID)
	return created, nil
}

// List returns the user's sessions ordered by start time.
func (s *Service) List(ctx context.Context, userID int64) ([]domain.Session, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Get returns one of the user's sessions. Sessions of other users are reported as ErrNotFound.
func (s *Service) Get(ctx context.Context, userID, id int64) (*domain.Session, error) {
	sess, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrNotFound
	}
	return sess, nil
}

// Update merges the provided bounds into the stored session and re-validates it in edit mode:
// the session itself is excluded from the overlap check and the recency/day-span rules do not apply.
func (s *Service) Update(ctx context.Context, userID, id int64, p Patch) (*domain.Session, error) {
	if p.StartTime == nil && p.EndTime == nil {
		return nil, domain.InvalidInput(domain.ReasonNoFields)
	}
	var updated *domain.Session
	err := s.repo.WithUserLock(ctx, userID, func(tx repository.Tx) error {
		cur, err := tx.GetByID(ctx, userID, id)
		if err != nil {
			return err
		}
		if cur == nil {
			return ErrNotFound
		}
		candidate := cur.Interval()
		if p.StartTime != nil {
			t, err := domain.ParseTimestamp(*p.StartTime)
			if err != nil {
				return domain.InvalidInput(domain.ReasonBadStart)
			}
			candidate.Start = t
		}
		if p.EndTime != nil {
			t, err := domain.ParseTimestamp(*p.EndTime)
			if err != nil {
				return domain.InvalidInput(domain.ReasonBadEnd)
			}
			candidate.End = t
		}
		existing, err := tx.ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		iv, err := s.validator.Check(userID, candidate, &id, existing, domain.ModeEdit)
		if err != nil {
			return err
		}
		cur.Start, cur.End = iv.Start, iv.End
		if err := tx.Update(ctx, cur); err != nil {
			if errors.Is(err, repository.ErrSessionNotFound) {
				return ErrNotFound
			}
			return err
		}
		updated = cur
		return nil
	})
	if err != nil {
		return nil, s.fail(userID, "update", err)
	}
	s.emit(telemetry.EventSleepUpdated, userID, updated.ID)
	return updated, nil
}

// Delete removes one of the user's sessions.
func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	ok, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	s.emit(telemetry.EventSleepDeleted, userID, id)
	return nil
}

// fail maps repository errors to service errors and emits a rejection event for validation failures.
func (s *Service) fail(userID int64, op string, err error) error {
	if errors.Is(err, repository.ErrUserNotFound) {
		return ErrUnknownUser
	}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		telemetry.EmitAsync(s.events, telemetry.NewEvent(telemetry.EventSleepRejected, userID, map[string]string{
			"op":     op,
			"reason": verr.Kind.Error(),
		}), s.log)
	}
	return err
}

func (s *Service) emit(eventType string, userID, sessionID int64) {
	telemetry.EmitAsync(s.events, telemetry.NewEvent(eventType, userID, map[string]string{
		"session_id": strconv.FormatInt(sessionID, 10),
	}), s.log)
}
