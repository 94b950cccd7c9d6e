package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/growthdeck/backend/internal/domain/report"
	"github.com/growthdeck/backend/internal/domain/shared"
)

// LifecycleReport partitions the tenant's purchased customers by order
// recency. The four counts always sum to TotalCustomers.
type LifecycleReport struct {
	AsOf           time.Time                  `json:"asOf"`
	Thresholds     report.LifecycleThresholds `json:"-"`
	NewMaxDays     int                        `json:"newMaxDays"`
	ReorderMaxDays int                        `json:"reorderMaxDays"`
	LapsedMaxDays  int                        `json:"lapsedMaxDays"`
	New            int64                      `json:"new"`
	Reorder        int64                      `json:"reorder"`
	Lapsed         int64                      `json:"lapsed"`
	Lost           int64                      `json:"lost"`
	TotalCustomers int64                      `json:"totalCustomers"`
}

// RunLifecycleReport buckets every customer with at least one order by
// elapsed days since their last order, against the tenant's thresholds.
func (s *Service) RunLifecycleReport(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (*LifecycleReport, error) {
	if tenantID == uuid.Nil {
		return nil, shared.ErrInvalidInput
	}
	asOf = asOf.UTC()

	thresholds, err := s.settings.GetLifecycleThresholds(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	customers, err := s.aggregates.CustomerOrderSummaries(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	result := &LifecycleReport{
		AsOf:           asOf,
		Thresholds:     thresholds,
		NewMaxDays:     thresholds.NewMaxDays,
		ReorderMaxDays: thresholds.ReorderMaxDays,
		LapsedMaxDays:  thresholds.LapsedMaxDays,
	}
	for _, c := range customers {
		if c.OrdersCount == 0 {
			continue
		}
		elapsed := int(asOf.Sub(c.LastOrderAt).Hours() / 24)
		switch thresholds.Stage(elapsed) {
		case report.StageNew:
			result.New++
		case report.StageReorder:
			result.Reorder++
		case report.StageLapsed:
			result.Lapsed++
		case report.StageLost:
			result.Lost++
		}
		result.TotalCustomers++
	}

	s.logger.Debug("lifecycle report computed",
		zap.String("tenant_id", tenantID.String()),
		zap.Int64("customers", result.TotalCustomers))
	return result, nil
}
