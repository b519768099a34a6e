package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/teashop/apiserver/internal/metrics"
	"github.com/teashop/apiserver/internal/mq"
	"github.com/teashop/apiserver/internal/store"
	"github.com/teashop/apiserver/types"
)

// ErrInvalidDate is returned when a sales date does not parse as
// YYYY-MM-DD. Dates become JSONB keys, so arbitrary strings are refused
// at this boundary.
var ErrInvalidDate = errors.New("date must be in YYYY-MM-DD form")

// ErrZeroChange is returned when a sale adjustment carries no change.
var ErrZeroChange = errors.New("change must be non-zero")

const dateLayout = "2006-01-02"

// ItemRepository defines persistence operations for inventory items and
// their sales ledgers.
type ItemRepository interface {
	List(ctx context.Context) ([]types.InventoryItem, error)
	Get(ctx context.Context, id int64) (types.InventoryItem, error)
	Create(ctx context.Context, item types.InventoryItem) (types.InventoryItem, error)
	Replace(ctx context.Context, item types.InventoryItem) (types.InventoryItem, error)
	Delete(ctx context.Context, id int64) error
	IncrementQuantity(ctx context.Context, id int64, change int64) (types.InventoryItem, error)
	SetQuantity(ctx context.Context, id int64, quantity int64) (types.InventoryItem, error)
	AdjustSale(ctx context.Context, id int64, date string, change int64) (types.InventoryItem, error)
	GetSaleCount(ctx context.Context, id int64, date string) (int64, error)
	SetSaleCount(ctx context.Context, id int64, date string, count int64) error
	DeleteSaleEntry(ctx context.Context, id int64, date string) error
}

// InventoryService encapsulates inventory use-cases: item CRUD, quantity
// control, and the sales ledger. Metrics and event publishing are
// optional collaborators; a nil value disables them.
type InventoryService struct {
	repo              ItemRepository
	recorder          metrics.Recorder
	events            *mq.Publisher
	lowStockThreshold int64
	log               *slog.Logger
}

func NewInventoryService(repo ItemRepository, recorder metrics.Recorder, events *mq.Publisher, lowStockThreshold int64, log *slog.Logger) *InventoryService {
	if log == nil {
		log = slog.Default()
	}
	return &InventoryService{
		repo:              repo,
		recorder:          recorder,
		events:            events,
		lowStockThreshold: lowStockThreshold,
		log:               log,
	}
}

func (s *InventoryService) List(ctx context.Context) ([]types.InventoryItem, error) {
	return s.repo.List(ctx)
}

func (s *InventoryService) Get(ctx context.Context, id int64) (types.InventoryItem, error) {
	return s.repo.Get(ctx, id)
}

func (s *InventoryService) Create(ctx context.Context, item types.InventoryItem) (types.InventoryItem, error) {
	if item.Quantity < 0 {
		return types.InventoryItem{}, store.ErrNegativeQuantity
	}
	return s.repo.Create(ctx, item)
}

func (s *InventoryService) Replace(ctx context.Context, item types.InventoryItem) (types.InventoryItem, error) {
	if item.Quantity < 0 {
		return types.InventoryItem{}, store.ErrNegativeQuantity
	}
	return s.repo.Replace(ctx, item)
}

func (s *InventoryService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// IncrementQuantity applies a manual stock correction. The store refuses
// corrections that would leave a negative count.
func (s *InventoryService) IncrementQuantity(ctx context.Context, id int64, change int64) (types.InventoryItem, error) {
	return s.repo.IncrementQuantity(ctx, id, change)
}

// SetQuantity overwrites the stock count. Negative values are rejected
// before any store access.
func (s *InventoryService) SetQuantity(ctx context.Context, id int64, quantity int64) (types.InventoryItem, error) {
	if quantity < 0 {
		return types.InventoryItem{}, store.ErrNegativeQuantity
	}
	return s.repo.SetQuantity(ctx, id, quantity)
}

// AdjustSale records or undoes sales for a calendar date. A positive
// change fails with ErrInsufficientStock when stock cannot cover it; a
// negative change always applies and restores stock.
func (s *InventoryService) AdjustSale(ctx context.Context, id int64, date string, change int64) (types.InventoryItem, error) {
	if change == 0 {
		return types.InventoryItem{}, ErrZeroChange
	}
	if err := validateDate(date); err != nil {
		return types.InventoryItem{}, err
	}

	item, err := s.repo.AdjustSale(ctx, id, date, change)
	if err != nil {
		if errors.Is(err, store.ErrInsufficientStock) && s.recorder != nil {
			s.recorder.RecordInsufficientStock()
		}
		return types.InventoryItem{}, err
	}

	if s.recorder != nil {
		if change > 0 {
			s.recorder.RecordSale(change)
		} else {
			s.recorder.RecordUndo(-change)
		}
	}
	s.publishSaleEvents(ctx, item, date, change)
	return item, nil
}

func (s *InventoryService) GetSaleCount(ctx context.Context, id int64, date string) (int64, error) {
	if err := validateDate(date); err != nil {
		return 0, err
	}
	return s.repo.GetSaleCount(ctx, id, date)
}

func (s *InventoryService) SetSaleCount(ctx context.Context, id int64, date string, count int64) error {
	if err := validateDate(date); err != nil {
		return err
	}
	return s.repo.SetSaleCount(ctx, id, date, count)
}

func (s *InventoryService) DeleteSaleEntry(ctx context.Context, id int64, date string) error {
	if err := validateDate(date); err != nil {
		return err
	}
	return s.repo.DeleteSaleEntry(ctx, id, date)
}

// publishSaleEvents emits sale-adjusted and low-stock events. Publishing
// is best-effort; failures are logged and never surfaced to the caller.
func (s *InventoryService) publishSaleEvents(ctx context.Context, item types.InventoryItem, date string, change int64) {
	if s.events == nil {
		return
	}

	now := time.Now()
	if _, err := s.events.PublishEvent(ctx, mq.Event{
		Type:       mq.EventSaleAdjusted,
		ItemID:     item.ID,
		Date:       date,
		Change:     change,
		Quantity:   item.Quantity,
		OccurredAt: now,
	}); err != nil {
		s.log.Warn("failed to publish sale event", "item_id", item.ID, "error", err)
	}

	if change > 0 && item.Quantity <= s.lowStockThreshold {
		if s.recorder != nil {
			s.recorder.RecordLowStock()
		}
		if _, err := s.events.PublishEvent(ctx, mq.Event{
			Type:       mq.EventLowStock,
			ItemID:     item.ID,
			Name:       item.Name,
			Quantity:   item.Quantity,
			OccurredAt: now,
		}); err != nil {
			s.log.Warn("failed to publish low-stock event", "item_id", item.ID, "error", err)
		}
	}
}

func validateDate(date string) error {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return ErrInvalidDate
	}
	return nil
}
