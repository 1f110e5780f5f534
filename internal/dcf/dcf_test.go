package dcf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntrinsic(t *testing.T) {
	// one year: fcf1 = 110, npv = 100, tv = 121*1.02/0.08 = 1542.75, pv = 1402.5
	v, err := Intrinsic(Inputs{FreeCashFlow: 100, Growth: 0.1, Discount: 0.1, Years: 1, TerminalGrowth: 0.02})
	require.NoError(t, err)
	assert.InDelta(t, 1502.5, v, 1e-9)
}

func TestIntrinsicRejectsBadRates(t *testing.T) {
	_, err := Intrinsic(Inputs{FreeCashFlow: 100, Discount: 0.02, Years: 5, TerminalGrowth: 0.02})
	assert.ErrorIs(t, err, ErrRates)

	_, err = Intrinsic(Inputs{FreeCashFlow: 100, Discount: 0.1, Years: 0})
	assert.Error(t, err)
}

func TestPerShare(t *testing.T) {
	v, err := PerShare(Inputs{FreeCashFlow: 100, Growth: 0.1, Discount: 0.1, Years: 1, TerminalGrowth: 0.02}, 10)
	require.NoError(t, err)
	assert.InDelta(t, 150.25, v, 1e-9)

	_, err = PerShare(Inputs{}, 0)
	assert.Error(t, err)
}

func TestMultiples(t *testing.T) {
	assert.InDelta(t, 2*(8.5+20), Graham(2, 0.10), 1e-9)
	assert.Equal(t, 30.0, PEMultiple(2, 15))
}
