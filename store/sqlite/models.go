package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/elastic/id"
	"github.com/xraph/elastic/journal"
	"github.com/xraph/elastic/types"
)

// SQLite has no JSON column type; documents are stored as TEXT.
type entryModel struct {
	grove.BaseModel `grove:"table:elastic_journal"`

	ID         string    `grove:"id,pk"`
	Seq        int64     `grove:"seq"`
	Kind       string    `grove:"kind"`
	Ref        string    `grove:"ref"`
	State      string    `grove:"state"`
	Accounts   string    `grove:"accounts"`
	Allowances string    `grove:"allowances"`
	Settings   string    `grove:"settings"`
	CreatedAt  time.Time `grove:"created_at"`
	UpdatedAt  time.Time `grove:"updated_at"`
}

func toEntryModel(e *journal.Entry) (*entryModel, error) {
	docs := make([]string, 4)
	for i, v := range []any{e.State, e.Accounts, e.Allowances, e.Settings} {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		docs[i] = string(raw)
	}

	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = now()
	}
	return &entryModel{
		ID:         e.ID.String(),
		Seq:        int64(e.Seq), //nolint:gosec // sequence numbers stay far below 2^63
		Kind:       string(e.Kind),
		Ref:        e.Ref,
		State:      docs[0],
		Accounts:   docs[1],
		Allowances: docs[2],
		Settings:   docs[3],
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}, nil
}

func fromEntryModel(m *entryModel) (*journal.Entry, error) {
	entryID, err := id.ParseEntryID(m.ID)
	if err != nil {
		return nil, err
	}

	e := &journal.Entry{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:   entryID,
		Seq:  uint64(m.Seq), //nolint:gosec // stored from a uint64
		Kind: journal.Kind(m.Kind),
		Ref:  m.Ref,
	}
	docs := []struct {
		name string
		raw  string
		dst  any
	}{
		{"state", m.State, &e.State},
		{"accounts", m.Accounts, &e.Accounts},
		{"allowances", m.Allowances, &e.Allowances},
		{"settings", m.Settings, &e.Settings},
	}
	for _, d := range docs {
		if d.raw == "" || d.raw == "null" {
			continue
		}
		if err := json.Unmarshal([]byte(d.raw), d.dst); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", journal.ErrCorruptEntry, d.name, err)
		}
	}
	return e, nil
}
