package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/aba-necessity-server/internal/domain"
)

// AnalyticsService summarizes the review workload for dashboards.
type AnalyticsService struct {
	logger *logrus.Logger
	claims domain.ClaimRepository
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(logger *logrus.Logger, claims domain.ClaimRepository) *AnalyticsService {
	return &AnalyticsService{logger: logger, claims: claims}
}

// Stats returns claim totals by outcome, pending count, average
// recommended hours and age, and the most common tier.
func (s *AnalyticsService) Stats(ctx context.Context) (*domain.ClaimStats, error) {
	stats, err := s.claims.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("computing claim stats: %w", err)
	}
	return stats, nil
}
