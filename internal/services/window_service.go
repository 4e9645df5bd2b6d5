package services

import (
	"context"
	"errors"
	"log"
	"time"

	"pulp-league/internal/models"
	"pulp-league/internal/repository"

	"gorm.io/gorm"
)

// WindowService drives the betting window state machine:
// CLOSED -> OPEN -> LOCKED -> CLOSED, cyclical. Locking a window never
// touches escrowed funds; pending wagers ride through to settlement.
type WindowService struct {
	db   *gorm.DB
	repo *repository.Repository
}

// NewWindowService creates a new WindowService
func NewWindowService(db *gorm.DB, repo *repository.Repository) *WindowService {
	return &WindowService{db: db, repo: repo}
}

// Current returns the open betting window, or ErrWindowClosed if none
func (s *WindowService) Current(ctx context.Context) (*models.BettingWindow, error) {
	window, err := s.repo.GetOpenWindow(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWindowClosed
		}
		return nil, err
	}
	return window, nil
}

// Open creates and opens a new betting window. Only one window may be open
// at a time.
func (s *WindowService) Open(ctx context.Context) (*models.BettingWindow, error) {
	if _, err := s.repo.GetOpenWindow(ctx); err == nil {
		return nil, ErrInvalidTransition
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now()
	window := &models.BettingWindow{
		Status:  models.WindowStatusOpen,
		OpensAt: &now,
	}

	if err := s.db.WithContext(ctx).Create(window).Error; err != nil {
		return nil, err
	}

	log.Printf("[Windows] Opened betting window %d", window.ID)
	return window, nil
}

// Lock transitions an open window to LOCKED
func (s *WindowService) Lock(ctx context.Context, windowID uint) (*models.BettingWindow, error) {
	return s.transition(ctx, windowID, models.WindowStatusOpen, models.WindowStatusLocked)
}

// Close transitions a locked window to CLOSED
func (s *WindowService) Close(ctx context.Context, windowID uint) (*models.BettingWindow, error) {
	return s.transition(ctx, windowID, models.WindowStatusLocked, models.WindowStatusClosed)
}

func (s *WindowService) transition(
	ctx context.Context,
	windowID uint,
	from models.WindowStatus,
	to models.WindowStatus,
) (*models.BettingWindow, error) {
	window, err := s.repo.GetWindowByID(ctx, windowID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if window.Status != from {
		return nil, ErrInvalidTransition
	}

	now := time.Now()
	window.Status = to
	switch to {
	case models.WindowStatusLocked:
		window.LockedAt = &now
	case models.WindowStatusClosed:
		window.ClosedAt = &now
	}

	if err := s.db.WithContext(ctx).Save(window).Error; err != nil {
		return nil, err
	}

	log.Printf("[Windows] Window %d: %s -> %s", window.ID, from, to)
	return window, nil
}

// Advance moves the window cycle along based on elapsed time: an open window
// past openFor is locked, a locked window past lockFor is closed and a fresh
// window opened. Called periodically by the cycle job.
func (s *WindowService) Advance(ctx context.Context, openFor, lockFor time.Duration) error {
	now := time.Now()

	window, err := s.repo.GetOpenWindow(ctx)
	if err == nil {
		if window.OpensAt != nil && now.Sub(*window.OpensAt) >= openFor {
			if _, err := s.Lock(ctx, window.ID); err != nil {
				return err
			}
		}
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	// No open window: close any stale locked window, then open a new one
	var locked models.BettingWindow
	err = s.db.WithContext(ctx).
		Where("status = ?", models.WindowStatusLocked).
		Order("created_at DESC").
		First(&locked).Error
	if err == nil {
		if locked.LockedAt != nil && now.Sub(*locked.LockedAt) < lockFor {
			return nil // Still within the lock period
		}
		if _, err := s.Close(ctx, locked.ID); err != nil {
			return err
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	_, err = s.Open(ctx)
	return err
}
