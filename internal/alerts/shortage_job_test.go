package alerts

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/koyamadev/stockkeeper-backend/internal/reports"
	"github.com/koyamadev/stockkeeper-backend/pkg/logger"
)

type fakeShortages struct {
	items []reports.ShortageItem
	err   error
	calls int
}

func (f *fakeShortages) Shortages(context.Context) ([]reports.ShortageItem, error) {
	f.calls++
	return f.items, f.err
}

type fakeResult struct {
	err error
}

func (f *fakeResult) Get(context.Context) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "msg-id", nil
}

type fakePublisher struct {
	messages []*gcppubsub.Message
	failFor  map[string]error
}

func (f *fakePublisher) Publish(_ context.Context, msg *gcppubsub.Message) publishResult {
	f.messages = append(f.messages, msg)
	if err, ok := f.failFor[msg.Attributes["product_id"]]; ok {
		return &fakeResult{err: err}
	}
	return &fakeResult{}
}

func shortageItem(name string, shortage int) reports.ShortageItem {
	return reports.ShortageItem{
		ProductID:    uuid.New(),
		ProductName:  name,
		SupplierName: "acme",
		CurrentStock: 1,
		MinStock:     1 + shortage,
		Shortage:     shortage,
	}
}

func newTestJob(t *testing.T, src shortageSource, pub publisher) *shortageSweepJob {
	t.Helper()
	job, err := NewShortageSweepJob(ShortageSweepJobParams{
		Logger:    logger.New(logger.Options{ServiceName: "alerts-test"}),
		Reports:   src,
		Publisher: pub,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	return job.(*shortageSweepJob)
}

func TestShortageSweepPublishesOneAlertPerItem(t *testing.T) {
	src := &fakeShortages{items: []reports.ShortageItem{
		shortageItem("beans", 4),
		shortageItem("filters", 2),
	}}
	pub := &fakePublisher{}
	job := newTestJob(t, src, pub)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(pub.messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(pub.messages))
	}

	first := pub.messages[0]
	if first.Attributes["event_type"] != "stock.shortage" {
		t.Fatalf("unexpected event_type %q", first.Attributes["event_type"])
	}
	if first.Attributes["shortage"] != "4" {
		t.Fatalf("unexpected shortage attribute %q", first.Attributes["shortage"])
	}

	var alert ShortageAlert
	if err := json.Unmarshal(first.Data, &alert); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if alert.ProductName != "beans" || alert.Shortage != 4 {
		t.Fatalf("unexpected payload %+v", alert)
	}
	if alert.ObservedAt.IsZero() {
		t.Fatalf("expected observedAt to be stamped")
	}
}

func TestShortageSweepPublishesNothingWhenHealthy(t *testing.T) {
	src := &fakeShortages{}
	pub := &fakePublisher{}
	job := newTestJob(t, src, pub)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(pub.messages) != 0 {
		t.Fatalf("expected no messages, got %d", len(pub.messages))
	}
}

func TestShortageSweepContinuesPastPublishFailures(t *testing.T) {
	items := []reports.ShortageItem{
		shortageItem("beans", 4),
		shortageItem("filters", 2),
	}
	pub := &fakePublisher{failFor: map[string]error{
		items[0].ProductID.String(): errors.New("broker down"),
	}}
	job := newTestJob(t, &fakeShortages{items: items}, pub)

	err := job.Run(context.Background())
	if err == nil {
		t.Fatalf("expected aggregated error")
	}
	if len(pub.messages) != 2 {
		t.Fatalf("expected both publishes attempted, got %d", len(pub.messages))
	}
}

func TestShortageSweepPropagatesSourceError(t *testing.T) {
	job := newTestJob(t, &fakeShortages{err: errors.New("db down")}, &fakePublisher{})
	if err := job.Run(context.Background()); err == nil {
		t.Fatalf("expected error from shortage source")
	}
}

func TestNewShortageSweepJobValidatesDeps(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "alerts-test"})
	cases := []struct {
		name   string
		params ShortageSweepJobParams
	}{
		{"missing logger", ShortageSweepJobParams{Reports: &fakeShortages{}, Publisher: &fakePublisher{}}},
		{"missing reports", ShortageSweepJobParams{Logger: logg, Publisher: &fakePublisher{}}},
		{"missing publisher", ShortageSweepJobParams{Logger: logg, Reports: &fakeShortages{}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewShortageSweepJob(tc.params); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
