package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

type recentConnectorRecord struct {
	bun.BaseModel `bun:"table:wallet_recent_connectors,alias:wrc"`

	ID          string    `bun:"id,pk"`
	Key         string    `bun:"key,notnull,unique"`
	ConnectorID string    `bun:"connector_id,notnull"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type activityEntryRecord struct {
	bun.BaseModel `bun:"table:wallet_activity_entries,alias:wae"`

	ID           string         `bun:"id,pk"`
	Operation    string         `bun:"operation,notnull"`
	ConnectorID  string         `bun:"connector_id"`
	ConnectorUID string         `bun:"connector_uid"`
	Accounts     int            `bun:"accounts,notnull"`
	ChainID      uint64         `bun:"chain_id,notnull"`
	Status       string         `bun:"status,notnull"`
	Error        string         `bun:"error"`
	Metadata     map[string]any `bun:"metadata,type:jsonb,notnull"`
	CreatedAt    time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
