// Package journal defines the persisted form of ledger commits.
//
// Every committed mutation produces exactly one Entry carrying the global
// state after the commit, the accounts and allowances it touched and the
// ledger settings in force. Replaying entries in sequence order rebuilds
// the ledger.
package journal

import (
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/elastic/fee"
	"github.com/xraph/elastic/id"
	"github.com/xraph/elastic/lifecycle"
	"github.com/xraph/elastic/trigger"
	"github.com/xraph/elastic/types"
)

// Errors returned by journal stores.
var (
	ErrEntryNotFound  = errors.New("elastic: journal entry not found")
	ErrDuplicateEntry = errors.New("elastic: duplicate journal entry")
	ErrCorruptEntry   = errors.New("elastic: corrupt journal entry")
)

// Kind classifies what produced an entry.
type Kind string

// Entry kinds.
const (
	KindGenesis  Kind = "genesis"
	KindTransfer Kind = "transfer"
	KindRebase   Kind = "rebase"
	KindApproval Kind = "approval"
	KindAirdrop  Kind = "airdrop"
	KindAdmin    Kind = "admin"
)

// State is the persisted form of the global share state. Big integers are
// decimal strings so every backend can store them losslessly.
type State struct {
	TotalShares   string    `json:"total_shares"`
	PoolShares    string    `json:"pool_shares"`
	TotalSupply   string    `json:"total_supply"`
	ExemptSupply  string    `json:"exempt_supply"`
	SharesPerUnit string    `json:"shares_per_unit"`
	LastEpoch     uint64    `json:"last_epoch"`
	LastEpochAt   time.Time `json:"last_epoch_at"`
}

// Account is the persisted form of a holder position.
type Account struct {
	Address      string `json:"address"`
	Shares       string `json:"shares"`
	Pinned       string `json:"pinned"`
	FeeExempt    bool   `json:"fee_exempt"`
	RebaseExempt bool   `json:"rebase_exempt"`
}

// Allowance is the persisted form of an allowance. A zero Units removes it.
type Allowance struct {
	Owner   string `json:"owner"`
	Spender string `json:"spender"`
	Units   string `json:"units"`
}

// Settings is every piece of configuration the ledger mutates at runtime.
type Settings struct {
	Lifecycle        lifecycle.State   `json:"lifecycle"`
	Fees             fee.Schedule      `json:"fees"`
	Destinations     fee.Destinations  `json:"destinations"`
	Pair             common.Address    `json:"pair"`
	Scheduler        trigger.Scheduler `json:"scheduler"`
	Tally            fee.Tally         `json:"tally"`
	Owner            common.Address    `json:"owner"`
	PreLaunchAllowed []common.Address  `json:"pre_launch_allowed,omitempty"`
}

// Entry is one committed ledger mutation.
type Entry struct {
	types.Entity

	ID         id.EntryID  `json:"id"`
	Seq        uint64      `json:"seq"`
	Kind       Kind        `json:"kind"`
	Ref        string      `json:"ref,omitempty"`
	State      State       `json:"state"`
	Accounts   []Account   `json:"accounts,omitempty"`
	Allowances []Allowance `json:"allowances,omitempty"`
	Settings   Settings    `json:"settings"`
}
