package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-wallet/core"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RecentConnectorStore persists the most recently used connector id so
// reconnect can prefer it across process restarts.
type RecentConnectorStore struct {
	db   *bun.DB
	repo repository.Repository[*recentConnectorRecord]
}

func NewRecentConnectorStore(db *bun.DB) (*RecentConnectorStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*recentConnectorRecord](db, recentConnectorHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid recent connector repository wiring: %w", err)
		}
	}
	return &RecentConnectorStore{db: db, repo: repo}, nil
}

func (s *RecentConnectorStore) SetItem(ctx context.Context, key string, value string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: recent connector store is not configured")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("sqlstore: recent connector key is required")
	}
	now := time.Now().UTC()
	record := &recentConnectorRecord{
		ID:          uuid.NewString(),
		Key:         key,
		ConnectorID: value,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err := s.db.NewInsert().
		Model(record).
		On("CONFLICT (key) DO UPDATE").
		Set("connector_id = EXCLUDED.connector_id").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (s *RecentConnectorStore) GetItem(ctx context.Context, key string) (string, bool, error) {
	if s == nil || s.db == nil {
		return "", false, fmt.Errorf("sqlstore: recent connector store is not configured")
	}
	record := new(recentConnectorRecord)
	err := s.db.NewSelect().
		Model(record).
		Where("key = ?", strings.TrimSpace(key)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return record.ConnectorID, true, nil
}

func (s *RecentConnectorStore) RemoveItem(ctx context.Context, key string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: recent connector store is not configured")
	}
	_, err := s.db.NewDelete().
		Model((*recentConnectorRecord)(nil)).
		Where("key = ?", strings.TrimSpace(key)).
		Exec(ctx)
	return err
}

var _ core.RecentConnectorStore = (*RecentConnectorStore)(nil)
