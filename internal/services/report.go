package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/google/uuid"
	"github.com/teashop/apiserver/internal/storage"
)

// ErrStorageDisabled is returned when report export is requested but no
// object-storage backend is configured.
var ErrStorageDisabled = errors.New("object storage is not configured")

// ReportRef locates an exported report in object storage.
type ReportRef struct {
	ObjectKey string `json:"object_key"`
	Bucket    string `json:"bucket"`
}

// ReportService renders an item's sales history as CSV and archives it
// in object storage.
type ReportService struct {
	items   ItemRepository
	storage *storage.Storage
}

func NewReportService(items ItemRepository, st *storage.Storage) *ReportService {
	return &ReportService{items: items, storage: st}
}

// ExportSales writes a CSV of the item's per-date sale counts, dates
// ascending, under reports/items/{id}/{uuid}.csv.
func (s *ReportService) ExportSales(ctx context.Context, itemID int64) (ReportRef, error) {
	if s.storage == nil {
		return ReportRef{}, ErrStorageDisabled
	}

	item, err := s.items.Get(ctx, itemID)
	if err != nil {
		return ReportRef{}, err
	}

	dates := make([]string, 0, len(item.Sales))
	for date := range item.Sales {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"date", "count"})
	for _, date := range dates {
		_ = w.Write([]string{date, strconv.FormatInt(item.Sales[date], 10)})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return ReportRef{}, err
	}

	key := fmt.Sprintf("reports/items/%d/%s.csv", item.ID, uuid.NewString())
	if err := s.storage.Put(ctx, key, bytes.NewReader(buf.Bytes()), int64(buf.Len()), "text/csv"); err != nil {
		return ReportRef{}, err
	}

	return ReportRef{ObjectKey: key, Bucket: s.storage.Bucket()}, nil
}
