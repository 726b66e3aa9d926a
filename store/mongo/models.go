package mongo

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

	ID         string           `grove:"id,pk"      bson:"_id"`
	Seq        int64            `grove:"seq"        bson:"seq"`
	Kind       string           `grove:"kind"       bson:"kind"`
	Ref        string           `grove:"ref"        bson:"ref,omitempty"`
	State      stateModel       `grove:"state"      bson:"state"`
	Accounts   []accountModel   `grove:"accounts"   bson:"accounts"`
	Allowances []allowanceModel `grove:"allowances" bson:"allowances"`
	// Settings holds amounts with unexported internals, so it is kept as
	// an encoded JSON document.
	Settings  string    `grove:"settings"   bson:"settings"`
	CreatedAt time.Time `grove:"created_at" bson:"created_at"`
	UpdatedAt time.Time `grove:"updated_at" bson:"updated_at"`
}

type stateModel struct {
	TotalShares   string    `bson:"total_shares"`
	PoolShares    string    `bson:"pool_shares"`
	TotalSupply   string    `bson:"total_supply"`
	ExemptSupply  string    `bson:"exempt_supply"`
	SharesPerUnit string    `bson:"shares_per_unit"`
	LastEpoch     int64     `bson:"last_epoch"`
	LastEpochAt   time.Time `bson:"last_epoch_at"`
}

type accountModel struct {
	Address      string `bson:"address"`
	Shares       string `bson:"shares"`
	Pinned       string `bson:"pinned"`
	FeeExempt    bool   `bson:"fee_exempt"`
	RebaseExempt bool   `bson:"rebase_exempt"`
}

type allowanceModel struct {
	Owner   string `bson:"owner"`
	Spender string `bson:"spender"`
	Units   string `bson:"units"`
}

func toEntryModel(e *journal.Entry) (*entryModel, error) {
	settings, err := json.Marshal(e.Settings)
	if err != nil {
		return nil, err
	}

	m := &entryModel{
		ID:   e.ID.String(),
		Seq:  int64(e.Seq), //nolint:gosec // sequence numbers stay far below 2^63
		Kind: string(e.Kind),
		Ref:  e.Ref,
		State: stateModel{
			TotalShares:   e.State.TotalShares,
			PoolShares:    e.State.PoolShares,
			TotalSupply:   e.State.TotalSupply,
			ExemptSupply:  e.State.ExemptSupply,
			SharesPerUnit: e.State.SharesPerUnit,
			LastEpoch:     int64(e.State.LastEpoch), //nolint:gosec // epoch counts stay far below 2^63
			LastEpochAt:   e.State.LastEpochAt,
		},
		Accounts:   make([]accountModel, len(e.Accounts)),
		Allowances: make([]allowanceModel, len(e.Allowances)),
		Settings:   string(settings),
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
	for i, a := range e.Accounts {
		m.Accounts[i] = accountModel(a)
	}
	for i, a := range e.Allowances {
		m.Allowances[i] = allowanceModel(a)
	}
	return m, nil
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
		State: journal.State{
			TotalShares:   m.State.TotalShares,
			PoolShares:    m.State.PoolShares,
			TotalSupply:   m.State.TotalSupply,
			ExemptSupply:  m.State.ExemptSupply,
			SharesPerUnit: m.State.SharesPerUnit,
			LastEpoch:     uint64(m.State.LastEpoch), //nolint:gosec // stored from a uint64
			LastEpochAt:   m.State.LastEpochAt,
		},
	}
	for _, a := range m.Accounts {
		e.Accounts = append(e.Accounts, journal.Account(a))
	}
	for _, a := range m.Allowances {
		e.Allowances = append(e.Allowances, journal.Allowance(a))
	}
	if m.Settings != "" {
		if err := json.Unmarshal([]byte(m.Settings), &e.Settings); err != nil {
			return nil, fmt.Errorf("%w: settings: %v", journal.ErrCorruptEntry, err)
		}
	}
	return e, nil
}
