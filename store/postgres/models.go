package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/elastic/id"
	"github.com/xraph/elastic/journal"
	"github.com/xraph/elastic/types"
)

type entryModel struct {
	grove.BaseModel `grove:"table:elastic_journal"`

	ID         string          `grove:"id,pk"`
	Seq        int64           `grove:"seq"`
	Kind       string          `grove:"kind"`
	Ref        string          `grove:"ref"`
	State      json.RawMessage `grove:"state,type:jsonb"`
	Accounts   json.RawMessage `grove:"accounts,type:jsonb"`
	Allowances json.RawMessage `grove:"allowances,type:jsonb"`
	Settings   json.RawMessage `grove:"settings,type:jsonb"`
	CreatedAt  time.Time       `grove:"created_at"`
	UpdatedAt  time.Time       `grove:"updated_at"`
}

func toEntryModel(e *journal.Entry) (*entryModel, error) {
	state, err := json.Marshal(e.State)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	accounts, err := json.Marshal(nonNil(e.Accounts))
	if err != nil {
		return nil, fmt.Errorf("encode accounts: %w", err)
	}
	allowances, err := json.Marshal(nonNil(e.Allowances))
	if err != nil {
		return nil, fmt.Errorf("encode allowances: %w", err)
	}
	settings, err := json.Marshal(e.Settings)
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}

	return &entryModel{
		ID:         e.ID.String(),
		Seq:        int64(e.Seq), //nolint:gosec // sequence numbers stay far below 2^63
		Kind:       string(e.Kind),
		Ref:        e.Ref,
		State:      state,
		Accounts:   accounts,
		Allowances: allowances,
		Settings:   settings,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
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
	if err := json.Unmarshal(m.State, &e.State); err != nil {
		return nil, fmt.Errorf("%w: state: %v", journal.ErrCorruptEntry, err)
	}
	if len(m.Accounts) > 0 {
		if err := json.Unmarshal(m.Accounts, &e.Accounts); err != nil {
			return nil, fmt.Errorf("%w: accounts: %v", journal.ErrCorruptEntry, err)
		}
	}
	if len(m.Allowances) > 0 {
		if err := json.Unmarshal(m.Allowances, &e.Allowances); err != nil {
			return nil, fmt.Errorf("%w: allowances: %v", journal.ErrCorruptEntry, err)
		}
	}
	if err := json.Unmarshal(m.Settings, &e.Settings); err != nil {
		return nil, fmt.Errorf("%w: settings: %v", journal.ErrCorruptEntry, err)
	}
	return e, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
