package services

import (
	"context"

	"github.com/tarcin/docissuer/internal/app/models"
)

// StatsService serves the dashboard counters
type StatsService struct {
	stats StatsStore
}

// NewStatsService creates a new StatsService
func NewStatsService(stats StatsStore) *StatsService {
	return &StatsService{stats: stats}
}

// GetStats returns the totals per document kind
func (s *StatsService) GetStats(ctx context.Context) (*models.Stats, error) {
	return s.stats.Stats(ctx)
}
