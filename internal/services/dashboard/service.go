// Package dashboard assembles the admin landing page summary.
package dashboard

import (
	"context"
	"fmt"
	"time"

	apperrors "storeadmin/internal/errors"
	"storeadmin/internal/models"
	"storeadmin/internal/repositories"
	"storeadmin/internal/repositories/cache"

	"go.uber.org/zap"
)

const (
	recentOrders  = 5
	topProducts   = 5
	historyMonths = 12
)

type Service interface {
	Stats(ctx context.Context) (*models.DashboardStats, error)
}

type service struct {
	store *repositories.Store
	cache cache.Cache
	ttl   time.Duration
	log   *zap.Logger
}

// NewService builds the dashboard. Results are cached for ttl; a nil cache
// recomputes on every call.
func NewService(store *repositories.Store, c cache.Cache, ttl time.Duration, log *zap.Logger) Service {
	if store == nil {
		panic("dashboard: store is required")
	}
	return &service{store: store, cache: c, ttl: ttl, log: log}
}

func statsKey() string {
	return cache.GenerateKey(cache.EntityDashboard, cache.KeyStats, "admin")
}

func (s *service) Stats(ctx context.Context) (*models.DashboardStats, error) {
	if s.cache != nil {
		var cached models.DashboardStats
		hit, err := s.cache.Get(ctx, statsKey(), &cached)
		if err != nil {
			s.log.Warn("dashboard cache read failed", zap.Error(err))
		}
		if hit {
			return &cached, nil
		}
	}

	st, err := s.compute(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	if s.cache != nil {
		if err := s.cache.SetWithTTL(ctx, statsKey(), st, s.ttl); err != nil {
			s.log.Warn("dashboard cache write failed", zap.Error(err))
		}
	}
	return st, nil
}

func (s *service) compute(ctx context.Context) (*models.DashboardStats, error) {
	repo := s.store.Dashboard
	st := &models.DashboardStats{GeneratedAt: time.Now().UTC()}

	var err error
	st.TotalCustomers, st.ActiveProducts, st.TotalOrders, st.TotalRevenue, err = repo.Totals(ctx)
	if err != nil {
		return nil, fmt.Errorf("totals: %w", err)
	}
	if st.RecentOrders, err = repo.RecentOrders(ctx, recentOrders); err != nil {
		return nil, fmt.Errorf("recent orders: %w", err)
	}
	if st.MonthlyRevenue, err = repo.MonthlyRevenue(ctx, historyMonths); err != nil {
		return nil, fmt.Errorf("monthly revenue: %w", err)
	}
	if st.TopProducts, err = repo.TopProducts(ctx, topProducts); err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	if st.OrderStatusCounts, err = repo.OrderStatusDistribution(ctx); err != nil {
		return nil, fmt.Errorf("order status distribution: %w", err)
	}
	if st.CustomerGrowth, err = repo.CustomerGrowth(ctx, historyMonths); err != nil {
		return nil, fmt.Errorf("customer growth: %w", err)
	}
	return st, nil
}
