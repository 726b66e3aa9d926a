package sim

import (
	"context"
	"sync"

	"github.com/xraph/elastic"
	"github.com/xraph/elastic/fee"
	"github.com/xraph/elastic/plugin"
)

// swapCollaborator stands in for the external swap contract: when the swap
// trigger fires it sells the collector's whole balance into the pair and
// shares the proceeds out by the categories that collected them.
type swapCollaborator struct {
	mu       sync.Mutex
	ledger   *elastic.Ledger
	swaps    int
	proceeds fee.Tally
}

func (s *swapCollaborator) Name() string { return "sim-swap" }

func (s *swapCollaborator) OnInit(_ context.Context, l any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger, _ = l.(*elastic.Ledger)
	return nil
}

func (s *swapCollaborator) OnFeesCollected(ctx context.Context, e *plugin.FeesCollected) error {
	s.mu.Lock()
	l := s.ledger
	s.swaps++
	s.mu.Unlock()

	if l == nil {
		return nil
	}
	bal := l.BalanceOf(e.Collector)
	if bal.IsZero() {
		return nil
	}
	if _, err := l.Transfer(elastic.WithCaller(ctx, e.Collector), e.Collector, e.Pair, bal); err != nil {
		return err
	}

	tally := fee.Tally{Treasury: e.Treasury, LiquidityRelief: e.LiquidityRelief, Insurance: e.Insurance}
	share := tally.Distribute(bal)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.proceeds.Treasury = s.proceeds.Treasury.Add(share.Treasury)
	s.proceeds.LiquidityRelief = s.proceeds.LiquidityRelief.Add(share.LiquidityRelief)
	s.proceeds.Insurance = s.proceeds.Insurance.Add(share.Insurance)
	return nil
}

func (s *swapCollaborator) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.swaps
}

func (s *swapCollaborator) distributed() fee.Tally {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.proceeds
}
