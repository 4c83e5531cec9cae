package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-wallet/core"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ActivityStore is the SQL-backed wallet audit trail.
type ActivityStore struct {
	db   *bun.DB
	repo repository.Repository[*activityEntryRecord]
}

func NewActivityStore(db *bun.DB) (*ActivityStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*activityEntryRecord](db, activityHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid activity repository wiring: %w", err)
		}
	}
	return &ActivityStore{db: db, repo: repo}, nil
}

func (s *ActivityStore) Record(ctx context.Context, entry core.WalletActivityEntry) error {
	if s == nil || s.repo == nil {
		return fmt.Errorf("sqlstore: activity store is not configured")
	}
	id := strings.TrimSpace(entry.ID)
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := entry.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	status := strings.TrimSpace(string(entry.Status))
	if status == "" {
		status = string(core.WalletActivityStatusOK)
	}

	record := &activityEntryRecord{
		ID:           id,
		Operation:    strings.TrimSpace(entry.Operation),
		ConnectorID:  strings.TrimSpace(entry.ConnectorID),
		ConnectorUID: strings.TrimSpace(entry.ConnectorUID),
		Accounts:     entry.Accounts,
		ChainID:      uint64(entry.ChainID),
		Status:       status,
		Error:        strings.TrimSpace(entry.Error),
		Metadata:     copyAnyMap(entry.Metadata),
		CreatedAt:    createdAt,
	}
	if record.Operation == "" {
		record.Operation = "unknown"
	}

	_, err := s.repo.Create(ctx, record)
	return err
}

func (s *ActivityStore) List(ctx context.Context, filter core.WalletActivityFilter) (core.WalletActivityPage, error) {
	if s == nil || s.repo == nil {
		return core.WalletActivityPage{}, fmt.Errorf("sqlstore: activity store is not configured")
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 25
	}
	offset := (page - 1) * perPage

	selectors := []repository.SelectCriteria{
		repository.OrderBy("created_at DESC"),
		repository.SelectPaginate(perPage, offset),
	}
	if operation := strings.TrimSpace(filter.Operation); operation != "" {
		selectors = append(selectors, repository.SelectBy("operation", "=", operation))
	}
	if connectorID := strings.TrimSpace(filter.ConnectorID); connectorID != "" {
		selectors = append(selectors, repository.SelectBy("connector_id", "=", connectorID))
	}
	if status := strings.TrimSpace(string(filter.Status)); status != "" {
		selectors = append(selectors, repository.SelectBy("status", "=", status))
	}
	if filter.From != nil {
		from := filter.From.UTC()
		selectors = append(selectors, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.created_at >= ?", from)
		}))
	}
	if filter.To != nil {
		to := filter.To.UTC()
		selectors = append(selectors, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.created_at <= ?", to)
		}))
	}

	records, total, err := s.repo.List(ctx, selectors...)
	if err != nil {
		return core.WalletActivityPage{}, err
	}
	items := make([]core.WalletActivityEntry, 0, len(records))
	for _, record := range records {
		items = append(items, activityRecordToDomain(record))
	}
	return core.WalletActivityPage{
		Items:   items,
		Page:    page,
		PerPage: perPage,
		Total:   total,
		HasNext: offset+len(items) < total,
	}, nil
}

func activityRecordToDomain(record *activityEntryRecord) core.WalletActivityEntry {
	if record == nil {
		return core.WalletActivityEntry{}
	}
	return core.WalletActivityEntry{
		ID:           record.ID,
		Operation:    record.Operation,
		ConnectorID:  record.ConnectorID,
		ConnectorUID: record.ConnectorUID,
		Accounts:     record.Accounts,
		ChainID:      core.ChainID(record.ChainID),
		Status:       core.WalletActivityStatus(record.Status),
		Error:        record.Error,
		Metadata:     copyAnyMap(record.Metadata),
		CreatedAt:    record.CreatedAt,
	}
}

var _ core.WalletActivitySink = (*ActivityStore)(nil)
