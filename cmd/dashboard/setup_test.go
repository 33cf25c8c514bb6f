package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOptions(t *testing.T) {
	opts, err := parseOptions("xom, aapl", true, "20,50")
	require.NoError(t, err)
	assert.Equal(t, []string{"XOM", "AAPL"}, opts.Tickers)
	assert.Equal(t, []int{20, 50}, opts.Windows)
}

func TestParseOptionsExplicitEmpty(t *testing.T) {
	opts, err := parseOptions("", true, "")
	require.NoError(t, err)
	assert.True(t, opts.TickersSet)
	assert.Empty(t, opts.Tickers)
	assert.Nil(t, opts.Windows)
}

func TestParseOptionsBadWindow(t *testing.T) {
	_, err := parseOptions("", false, "20,x")
	assert.Error(t, err)
}
