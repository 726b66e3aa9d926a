package airdrop_test

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/elastic/internal/airdrop"
)

func TestParse(t *testing.T) {
	in := strings.Join([]string{
		"address,note",
		"0x00000000000000000000000000000000000000c1,first",
		"# comment",
		"",
		"0x00000000000000000000000000000000000000C2",
		"0x00000000000000000000000000000000000000c1,again",
		"not-an-address",
		"0x0000000000000000000000000000000000000000",
	}, "\n")

	list, err := airdrop.Parse(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, []common.Address{
		common.HexToAddress("0xc1"),
		common.HexToAddress("0xc2"),
	}, list.Recipients)
	assert.Equal(t, []common.Address{common.HexToAddress("0xc1")}, list.Duplicates)
	require.Len(t, list.Rejected, 2)
	assert.Equal(t, "not a hex address", list.Rejected[0].Reason)
	assert.Equal(t, "zero address", list.Rejected[1].Reason)
}

func TestParse_Empty(t *testing.T) {
	list, err := airdrop.Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, list.Recipients)
}
