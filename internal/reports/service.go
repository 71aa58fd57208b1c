package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/koyamadev/stockkeeper-backend/internal/ledger"
	"github.com/koyamadev/stockkeeper-backend/internal/period"
	pkgerrors "github.com/koyamadev/stockkeeper-backend/pkg/errors"
	"github.com/koyamadev/stockkeeper-backend/pkg/logger"
)

type snapshotSource interface {
	Snapshot(ctx context.Context) (*ledger.Snapshot, error)
}

// Service renders reconciliation reports.
type Service interface {
	MonthlySummary(ctx context.Context, year, month int) (*MonthlySummary, error)
	Shortages(ctx context.Context) ([]ShortageItem, error)
}

type service struct {
	snapshots snapshotSource
	builder   *Builder
	cache     *Cache
	log       *logger.Logger
	now       func() time.Time
}

// NewService wires the report service. The cache is optional; without it
// every request recomputes from a fresh snapshot.
func NewService(snapshots snapshotSource, builder *Builder, cache *Cache, log *logger.Logger) (Service, error) {
	if snapshots == nil {
		return nil, fmt.Errorf("snapshot source is required")
	}
	if builder == nil {
		return nil, fmt.Errorf("summary builder is required")
	}
	return &service{
		snapshots: snapshots,
		builder:   builder,
		cache:     cache,
		log:       log,
		now:       time.Now,
	}, nil
}

func (s *service) MonthlySummary(ctx context.Context, year, month int) (*MonthlySummary, error) {
	label := fmt.Sprintf("%04d-%02d", year, month)

	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, label); ok {
			return cached, nil
		}
	}

	snapshot, err := s.snapshots.Snapshot(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading ledger snapshot")
	}

	summary, err := s.builder.Build(snapshot, year, month, s.now())
	if err != nil {
		if errors.Is(err, period.ErrInvalidPeriod) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid year or month")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building monthly summary")
	}

	if s.cache != nil {
		if err := s.cache.Put(ctx, label, summary); err != nil && s.log != nil {
			s.log.Warn(ctx, "caching monthly summary failed: "+err.Error())
		}
	}
	return summary, nil
}

func (s *service) Shortages(ctx context.Context) ([]ShortageItem, error) {
	snapshot, err := s.snapshots.Snapshot(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading ledger snapshot")
	}
	return s.builder.Shortages(snapshot), nil
}
