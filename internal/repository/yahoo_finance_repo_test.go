package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"golang-backtest/internal/dto"
)

func fptr(v float64) *float64 { return &v }

func TestQuoteBars(t *testing.T) {
	t.Run("converts complete rows", func(t *testing.T) {
		quote := dto.YahooQuote{
			Open:   []*float64{fptr(100), fptr(101)},
			High:   []*float64{fptr(102), fptr(103)},
			Low:    []*float64{fptr(99), fptr(100)},
			Close:  []*float64{fptr(101), fptr(102)},
			Volume: []*float64{fptr(1000), fptr(1100)},
		}
		got := quoteBars([]int64{1704153600, 1704240000}, quote)

		assert.Len(t, got, 2)
		assert.Equal(t, 100.0, got[0].Open)
		assert.Equal(t, 102.0, got[1].Close)
		assert.Equal(t, 1100.0, got[1].Volume)
	})

	t.Run("drops rows with null values", func(t *testing.T) {
		quote := dto.YahooQuote{
			Open:   []*float64{fptr(100), nil},
			High:   []*float64{fptr(102), fptr(103)},
			Low:    []*float64{fptr(99), fptr(100)},
			Close:  []*float64{fptr(101), fptr(102)},
			Volume: []*float64{fptr(1000), fptr(1100)},
		}
		got := quoteBars([]int64{1704153600, 1704240000}, quote)

		assert.Len(t, got, 1)
		assert.Equal(t, 100.0, got[0].Open)
	})

	t.Run("ragged slices drop rows instead of panicking", func(t *testing.T) {
		// three timestamps, but the high and close columns stop short
		quote := dto.YahooQuote{
			Open:   []*float64{fptr(100), fptr(101), fptr(102)},
			High:   []*float64{fptr(102)},
			Low:    []*float64{fptr(99), fptr(100), fptr(101)},
			Close:  []*float64{fptr(101), fptr(102)},
			Volume: nil,
		}
		got := quoteBars([]int64{1704153600, 1704240000, 1704326400}, quote)

		assert.Len(t, got, 1)
		assert.Equal(t, 100.0, got[0].Open)
		assert.Equal(t, 0.0, got[0].Volume, "missing volume column reads as zero")
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, quoteBars(nil, dto.YahooQuote{}))
	})
}
