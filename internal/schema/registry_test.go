package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinRegistry(t *testing.T) {
	list := Builtin.List()
	require.Len(t, list, 3)
	assert.Equal(t, StrategyMACrossover, list[0].ID)
	assert.Equal(t, StrategyMACrossover, Builtin.Default().ID)
	assert.Equal(t, []string{StrategyMACrossover, StrategyRSI, StrategyBollinger}, Builtin.IDs())

	rsi, err := Builtin.Get(StrategyRSI)
	require.NoError(t, err)
	assert.Equal(t, []string{"period", "overbought", "oversold"}, Names(rsi.Fields))

	bb, err := Builtin.Get(StrategyBollinger)
	require.NoError(t, err)
	assert.Equal(t, []string{"period", "stdDev"}, Names(bb.Fields))
}

func TestRegistryListIsACopy(t *testing.T) {
	list := Builtin.List()
	list[0].ID = "mutated"
	assert.Equal(t, StrategyMACrossover, Builtin.Default().ID)
}

func TestRegistryGetUnknown(t *testing.T) {
	_, err := Builtin.Get("momentum")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "strategy", ve.Field)
}

func TestNewRegistryRejectsBadInput(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, err := NewRegistry()
		assert.Error(t, err)
	})

	t.Run("duplicate id", func(t *testing.T) {
		_, err := NewRegistry(Strategy{ID: "a"}, Strategy{ID: "a"})
		assert.ErrorContains(t, err, "registered twice")
	})

	t.Run("duplicate field", func(t *testing.T) {
		_, err := NewRegistry(Strategy{ID: "a", Fields: []Field{
			{Name: "x", Kind: KindNumber},
			{Name: "x", Kind: KindNumber},
		}})
		assert.ErrorContains(t, err, "duplicate field")
	})

	t.Run("shadows base field", func(t *testing.T) {
		_, err := NewRegistry(Strategy{ID: "a", Fields: []Field{
			{Name: FieldSymbol, Kind: KindText},
		}})
		assert.ErrorContains(t, err, "shadows")
	})
}

func TestMarkdownListsEveryField(t *testing.T) {
	s, err := Builtin.Get(StrategyRSI)
	require.NoError(t, err)

	md := Markdown(s)
	assert.Contains(t, md, "# RSI Strategy")
	for _, f := range s.Fields {
		assert.Contains(t, md, "`"+f.Name+"`")
	}
	assert.Contains(t, md, "| 70 |")
}
