// Package airdrop reads recipient lists for Ledger.Airdrop.
package airdrop

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Rejected is a line that did not hold a usable address.
type Rejected struct {
	Line   int    `json:"line"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

// List is a parsed recipient list.
type List struct {
	Recipients []common.Address `json:"recipients"`
	Duplicates []common.Address `json:"duplicates,omitempty"`
	Rejected   []Rejected       `json:"rejected,omitempty"`
}

// Parse reads one address per record from the first CSV column. A first
// line that is not an address is treated as a header. Blank lines and
// lines starting with '#' are ignored.
func Parse(r io.Reader) (*List, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.Comment = '#'
	cr.TrimLeadingSpace = true

	list := &List{}
	seen := make(map[common.Address]struct{})
	for first := true; ; first = false {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return list, nil
		}
		if err != nil {
			return nil, fmt.Errorf("airdrop: %w", err)
		}
		line, _ := cr.FieldPos(0)

		value := strings.TrimSpace(rec[0])
		switch {
		case value == "":
			continue
		case !common.IsHexAddress(value):
			if first {
				continue
			}
			list.Rejected = append(list.Rejected, Rejected{Line: line, Value: value, Reason: "not a hex address"})
			continue
		}

		addr := common.HexToAddress(value)
		if addr == (common.Address{}) {
			list.Rejected = append(list.Rejected, Rejected{Line: line, Value: value, Reason: "zero address"})
			continue
		}
		if _, dup := seen[addr]; dup {
			list.Duplicates = append(list.Duplicates, addr)
			continue
		}
		seen[addr] = struct{}{}
		list.Recipients = append(list.Recipients, addr)
	}
}
