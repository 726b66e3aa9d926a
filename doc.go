// Package elastic provides a rebasing token ledger with a tax-on-transfer
// fee router for Go applications.
//
// Elastic is designed as a library, not a service. It provides:
//
//   - A fixed-point share book where every holder balance grows with the
//     supply without touching individual accounts
//   - Time-gated rebase epochs applied in bounded batches
//   - Buy and sell fees routed to treasury, liquidity-relief, insurance,
//     auto-liquidity and burn destinations
//   - A one-way launch lifecycle gating who may move tokens
//   - Auto-triggers that hand swap and liquidity work to plugins
//   - An event-sourced journal with memory, PostgreSQL, SQLite and MongoDB stores
//
// # Quick Start
//
//	import (
//	    "github.com/xraph/elastic"
//	    "github.com/xraph/elastic/store/memory"
//	)
//
//	cfg := elastic.DefaultConfig()
//	cfg.Destinations.Treasury = "0x..."
//	// ... remaining destinations
//
//	l := elastic.New(memory.New(), elastic.WithConfig(cfg))
//	if err := l.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer l.Stop()
//
// # Core Concepts
//
// Balances are shares divided by the shares-per-unit ratio, rounded down.
// A rebase compounds the supply once per elapsed epoch and recomputes the
// ratio, so every non-exempt balance grows in one step:
//
//	res, err := l.Rebase(ctx)           // at most MaxBatch epochs
//	for l.PendingEpochs() > 0 { ... }   // catch up in further calls
//
// Transfers to or from the pair are buys and sells and pay the configured
// fees once the token is launched:
//
//	admin := elastic.WithCaller(ctx, treasury)
//	_ = l.OpenTrade(admin)
//	_ = l.LaunchToken(admin)
//	receipt, err := l.Transfer(ctx, pair, buyer, elastic.Tokens(100))
//
// Burned fees move to a sink account; they are not removed from the total
// supply.
//
// # Plugins
//
// Swap executors, liquidity engines, metrics and audit sinks implement the
// hooks in the plugin package. Hooks run after the commit with the ledger
// unlocked, so they may call back into it. Hook errors are logged and never
// fail the transfer that triggered them.
//
// # TypeID
//
// Journal entries and receipts use TypeID identifiers:
//
//	jrnl_01h2xcejqtf2nbrexx3vqjhp41  // Journal entry
//	xfer_01h2xcejqtf2nbrexx3vqjhp41  // Transfer
//	rbs_01h455vb4pex5vsknk084sn02q   // Rebase batch
package elastic
