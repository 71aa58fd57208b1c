package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/koyamadev/stockkeeper-backend/internal/reports"
	"github.com/koyamadev/stockkeeper-backend/pkg/logger"
	"github.com/koyamadev/stockkeeper-backend/pkg/metrics"
)

const defaultPublishTimeout = 30 * time.Second

// ShortageAlert is the message payload published per product below its minimum.
type ShortageAlert struct {
	ProductID    uuid.UUID `json:"productId"`
	ProductName  string    `json:"productName"`
	SupplierName string    `json:"supplierName"`
	CurrentStock int       `json:"currentStock"`
	MinStock     int       `json:"minStock"`
	Shortage     int       `json:"shortage"`
	ReorderQty   *int      `json:"reorderQty,omitempty"`
	ObservedAt   time.Time `json:"observedAt"`
}

type shortageSource interface {
	Shortages(ctx context.Context) ([]reports.ShortageItem, error)
}

type publisher interface {
	Publish(ctx context.Context, msg *gcppubsub.Message) publishResult
}

type publishResult interface {
	Get(ctx context.Context) (string, error)
}

// ShortageSweepJobParams configures the shortage sweep.
type ShortageSweepJobParams struct {
	Logger    *logger.Logger
	Reports   shortageSource
	Publisher publisher
	Metrics   *metrics.JobMetrics
}

// NewShortageSweepJob constructs the shortage sweep job.
func NewShortageSweepJob(params ShortageSweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Reports == nil {
		return nil, fmt.Errorf("reports service required")
	}
	if params.Publisher == nil {
		return nil, fmt.Errorf("publisher required")
	}
	return &shortageSweepJob{
		logg:    params.Logger,
		reports: params.Reports,
		pub:     params.Publisher,
		metrics: params.Metrics,
		now:     time.Now,
	}, nil
}

type shortageSweepJob struct {
	logg    *logger.Logger
	reports shortageSource
	pub     publisher
	metrics *metrics.JobMetrics
	now     func() time.Time
}

func (j *shortageSweepJob) Name() string { return "shortage-sweep" }

func (j *shortageSweepJob) Run(ctx context.Context) error {
	items, err := j.reports.Shortages(ctx)
	if err != nil {
		return fmt.Errorf("list shortages: %w", err)
	}

	j.setItems(len(items))
	if len(items) == 0 {
		j.logg.Info(ctx, "no products below minimum stock")
		return nil
	}

	observedAt := j.now().UTC()
	var errs []error
	published := 0
	for _, item := range items {
		if err := j.publishAlert(ctx, item, observedAt); err != nil {
			errs = append(errs, fmt.Errorf("publish alert for %s: %w", item.ProductID, err))
			continue
		}
		published++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{"shortages": len(items), "published": published})
	j.logg.Info(logCtx, "shortage sweep complete")
	return multierr.Combine(errs...)
}

func (j *shortageSweepJob) publishAlert(ctx context.Context, item reports.ShortageItem, observedAt time.Time) error {
	payload, err := json.Marshal(ShortageAlert{
		ProductID:    item.ProductID,
		ProductName:  item.ProductName,
		SupplierName: item.SupplierName,
		CurrentStock: item.CurrentStock,
		MinStock:     item.MinStock,
		Shortage:     item.Shortage,
		ReorderQty:   item.ReorderQty,
		ObservedAt:   observedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	msg := &gcppubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"event_type": "stock.shortage",
			"product_id": item.ProductID.String(),
			"shortage":   strconv.Itoa(item.Shortage),
		},
	}

	publishCtx, cancel := context.WithTimeout(ctx, defaultPublishTimeout)
	defer cancel()
	result := j.pub.Publish(publishCtx, msg)
	if result == nil {
		return fmt.Errorf("publisher returned nil result")
	}
	if _, err := result.Get(publishCtx); err != nil {
		return err
	}
	return nil
}

func (j *shortageSweepJob) setItems(count int) {
	if j.metrics == nil {
		return
	}
	j.metrics.SetItems(j.Name(), count)
}

// NewGCPPublisher adapts a Pub/Sub v2 publisher to the narrow interface used here.
func NewGCPPublisher(p *gcppubsub.Publisher) publisher {
	if p == nil {
		return nil
	}
	return &gcpPublisher{p: p}
}

type gcpPublisher struct {
	p *gcppubsub.Publisher
}

func (g *gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	if g == nil || g.p == nil {
		return nil
	}
	return g.p.Publish(ctx, msg)
}
