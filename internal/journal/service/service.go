// Package service implements journal logs: encryption at rest, one log per user per day.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"daily-logger/internal/journal/domain"
	"daily-logger/internal/journal/repository"
	"daily-logger/internal/telemetry"
)

var (
	// ErrNotFound is returned when the log does not exist for the user.
	ErrNotFound = errors.New("log not found")
	// ErrNoFields is returned by Update when the request named no fields at all.
	ErrNoFields = errors.New("no fields provided for update")
	// ErrNothingToDo is returned by Update when none of the named fields can be updated.
	ErrNothingToDo = errors.New("nothing valid to update")
)

// DuplicateError is returned by Create when a log already exists for the date.
// Existing holds the decrypted stored log when it could be read.
type DuplicateError struct {
	Existing *domain.Log
}

func (e *DuplicateError) Error() string { return "summary for this date already exists" }

func (e *DuplicateError) Unwrap() error { return repository.ErrDuplicateDate }

// Cipher seals summaries before they are stored.
type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(encoded string) (string, error)
}

// Patch holds the fields of a partial update. Keys lists every JSON key the client sent,
// so an update naming only unknown fields can be told apart from an empty body.
type Patch struct {
	Keys    int
	Summary *string
	Rating  json.RawMessage
}

// Service manages a user's journal logs. Summaries are encrypted before they reach the repository.
type Service struct {
	repo   repository.Repository
	cipher Cipher
	events telemetry.EventEmitter
	log    *zap.Logger
}

// NewService returns a journal Service. events and log may be nil.
func NewService(repo repository.Repository, cipher Cipher, events telemetry.EventEmitter, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, cipher: cipher, events: events, log: log}
}

// Create stores a new log for date. summary is trimmed and encrypted; rating is a number or numeric string.
func (s *Service) Create(ctx context.Context, userID int64, summary string, rating json.RawMessage, date string) (*domain.Log, error) {
	text, err := domain.NormalizeSummary(summary)
	if err != nil {
		return nil, err
	}
	r, err := domain.ParseRating(rating)
	if err != nil {
		return nil, err
	}
	day, err := domain.ParseDate(date)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByDate(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, s.duplicate(existing)
	}

	sealed, err := s.cipher.Encrypt(text)
	if err != nil {
		return nil, fmt.Errorf("encrypt summary: %w", err)
	}
	l := &domain.Log{UserID: userID, Summary: sealed, Rating: r, Date: day}
	if err := s.repo.Create(ctx, l); err != nil {
		if errors.Is(err, repository.ErrDuplicateDate) {
			existing, gerr := s.repo.GetByDate(ctx, userID, day)
			if gerr != nil || existing == nil {
				return nil, &DuplicateError{}
			}
			return nil, s.duplicate(existing)
		}
		return nil, err
	}
	l.Summary = text
	telemetry.EmitAsync(s.events, telemetry.NewEvent(telemetry.EventLogCreated, userID, map[string]string{
		"date": day.Format(domain.DateLayout),
	}), s.log)
	return l, nil
}

// List returns the user's logs newest first with summaries decrypted.
func (s *Service) List(ctx context.Context, userID int64) ([]domain.Log, error) {
	logs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range logs {
		if err := s.open(&logs[i]); err != nil {
			return nil, err
		}
	}
	return logs, nil
}

// Get returns the decrypted log, or ErrNotFound when the user has no log with id.
func (s *Service) Get(ctx context.Context, userID, id int64) (*domain.Log, error) {
	l, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, ErrNotFound
	}
	if err := s.open(l); err != nil {
		return nil, err
	}
	return l, nil
}

// Update changes summary and/or rating. The date of a log is fixed once written.
func (s *Service) Update(ctx context.Context, userID, id int64, p Patch) (*domain.Log, error) {
	l, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, ErrNotFound
	}
	if p.Keys == 0 {
		return nil, ErrNoFields
	}
	if err := s.open(l); err != nil {
		return nil, err
	}

	changed := false
	if p.Summary != nil {
		text, err := domain.NormalizeSummary(*p.Summary)
		if err != nil {
			return nil, err
		}
		l.Summary = text
		changed = true
	}
	if p.Rating != nil {
		r, err := domain.ParseRating(p.Rating)
		if err != nil {
			return nil, err
		}
		l.Rating = r
		changed = true
	}
	if !changed {
		return nil, ErrNothingToDo
	}

	plain := l.Summary
	sealed, err := s.cipher.Encrypt(plain)
	if err != nil {
		return nil, fmt.Errorf("encrypt summary: %w", err)
	}
	l.Summary = sealed
	found, err := s.repo.Update(ctx, l)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	l.Summary = plain
	return l, nil
}

// Delete removes the log, or returns ErrNotFound.
func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	found, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

// Ratings returns the user's date and rating pairs.
func (s *Service) Ratings(ctx context.Context, userID int64) ([]domain.Rating, error) {
	return s.repo.ListRatings(ctx, userID)
}

func (s *Service) open(l *domain.Log) error {
	plain, err := s.cipher.Decrypt(l.Summary)
	if err != nil {
		return fmt.Errorf("decrypt summary %d: %w", l.ID, err)
	}
	l.Summary = plain
	return nil
}

func (s *Service) duplicate(existing *domain.Log) error {
	if err := s.open(existing); err != nil {
		s.log.Warn("journal: decrypt existing log failed", zap.Int64("log_id", existing.ID), zap.Error(err))
		return &DuplicateError{}
	}
	return &DuplicateError{Existing: existing}
}
