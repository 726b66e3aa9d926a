package audithook

// Action constants for audit events.
const (
	// Transfer actions
	ActionTransferPlain = "transfer.plain"
	ActionTransferBuy   = "transfer.buy"
	ActionTransferSell  = "transfer.sell"

	// Supply actions
	ActionRebaseApplied = "rebase.applied"

	// Trigger actions
	ActionFeesCollected      = "fees.collected"
	ActionLiquidityDue       = "liquidity.due"
	ActionLiquidityReliefDue = "liquidity_relief.due"

	// Governance actions
	ActionFeesUpdated      = "fees.updated"
	ActionLifecycleChanged = "lifecycle.changed"
)

// Resource constants for audit events.
const (
	ResourceTransfer  = "transfer"
	ResourceRebase    = "rebase"
	ResourceSwap      = "swap"
	ResourceLiquidity = "liquidity"
	ResourceFees      = "fees"
	ResourceLifecycle = "lifecycle"
)

// Category constants for audit events.
const (
	CategoryTrading    = "trading"
	CategorySupply     = "supply"
	CategoryTreasury   = "treasury"
	CategoryGovernance = "governance"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePartial = "partial"
)
