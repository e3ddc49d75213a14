// Package auditlog stores operational log records in the secondary store.
package auditlog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/goliatone/go-heroes/repository"
	"github.com/uptrace/bun"
)

// Levels used by records.
const (
	LevelInformation = "Information"
	LevelWarning     = "Warning"
	LevelError       = "Error"
)

// Record is one audit entry. SessionID correlates the records staged by the
// same unit of work.
type Record struct {
	bun.BaseModel `bun:"table:audit_logs,alias:l"`

	ID              int64     `bun:"id,pk,autoincrement" json:"id"`
	SessionID       string    `bun:"session_id,notnull" json:"sessionId"`
	Message         string    `bun:"message" json:"message"`
	MessageTemplate string    `bun:"message_template" json:"messageTemplate"`
	Level           string    `bun:"level,notnull" json:"level"`
	Timestamp       time.Time `bun:"timestamp,notnull" json:"timestamp"`
	Exception       string    `bun:"exception,nullzero" json:"exception,omitempty"`
	Properties      string    `bun:"properties,nullzero" json:"properties,omitempty"`
}

var handlers = repository.Handlers[Record]{
	GetID:    func(r *Record) int64 { return r.ID },
	SetID:    func(r *Record, id int64) { r.ID = id },
	PKColumn: "id",
}

// Repository reads and stages audit records.
type Repository struct {
	*repository.Repository[Record]

	sessionID string
	now       func() time.Time
}

// NewRepository creates an audit repository whose records carry sessionID.
func NewRepository(db bun.IDB, sessionID string) *Repository {
	return &Repository{
		Repository: repository.New(db, handlers),
		sessionID:  sessionID,
		now:        time.Now,
	}
}

// Record stages an entry. template is the message before argument
// substitution; props are encoded as JSON.
func (r *Repository) Record(level, template, message string, cause error, props map[string]any) *Record {
	rec := &Record{
		SessionID:       r.sessionID,
		Message:         message,
		MessageTemplate: template,
		Level:           level,
		Timestamp:       r.now().UTC(),
	}
	if cause != nil {
		rec.Exception = cause.Error()
	}
	if len(props) > 0 {
		if raw, err := json.Marshal(props); err == nil {
			rec.Properties = string(raw)
		}
	}
	return r.Create(rec)
}

// Recent returns the newest records first, at most limit of them.
func (r *Repository) Recent(ctx context.Context, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 50
	}
	records := make([]*Record, 0, limit)
	err := r.DB().NewSelect().
		Model(&records).
		OrderExpr("?TableAlias.id DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// BySession returns the records staged by one unit of work, oldest first.
func (r *Repository) BySession(ctx context.Context, sessionID string) ([]*Record, error) {
	return r.FindByCondition(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.session_id = ?", sessionID)
	})
}
