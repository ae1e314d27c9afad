package service

import (
	"context"
	"fmt"
	"slices"

	"github.com/inucreativehrd21/FINAL-SERVER/internal/model"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// HistoryRepository is the storage used by HistoryService.
type HistoryRepository interface {
	ListAnswered(ctx context.Context, userID int64, query model.HistoryQuery) (*model.HistoryPage, error)
}

// HistoryService lists a user's answered questions across sessions.
type HistoryService struct {
	repo HistoryRepository
}

// NewHistoryService creates a new history service.
func NewHistoryService(repo HistoryRepository) *HistoryService {
	return &HistoryService{repo: repo}
}

// List returns a page of answered questions, newest first.
func (s *HistoryService) List(ctx context.Context, userID int64, query model.HistoryQuery) (*model.HistoryPage, error) {
	if query.Limit <= 0 {
		query.Limit = DefaultHistoryLimit
	}
	if query.Limit > MaxHistoryLimit {
		query.Limit = MaxHistoryLimit
	}
	if query.Offset < 0 {
		return nil, invalid("offset must not be negative")
	}
	if query.Category != "" && !slices.Contains(model.Categories, query.Category) {
		return nil, invalid("unknown category %q", query.Category)
	}

	page, err := s.repo.ListAnswered(ctx, userID, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return page, nil
}
