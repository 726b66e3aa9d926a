package elastic

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

type callerKey struct{}

// WithCaller returns a context that identifies addr as the account making
// the call. Admin operations, Transfer, Approve and TransferFrom read it.
func WithCaller(ctx context.Context, addr common.Address) context.Context {
	return context.WithValue(ctx, callerKey{}, addr)
}

// CallerFrom returns the caller stored by WithCaller.
func CallerFrom(ctx context.Context) (common.Address, bool) {
	addr, ok := ctx.Value(callerKey{}).(common.Address)
	if !ok || addr == (common.Address{}) {
		return common.Address{}, false
	}
	return addr, true
}

type dispatchKey struct{}

// inDispatch reports whether ctx belongs to a plugin hook invoked by the
// ledger. Transfers made from hooks do not evaluate auto-triggers.
func inDispatch(ctx context.Context) bool {
	v, _ := ctx.Value(dispatchKey{}).(bool)
	return v
}
