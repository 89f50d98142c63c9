package report

import (
	"bytes"
	"testing"

	"github.com/bucketops/bucketops/internal/console"
	"github.com/bucketops/bucketops/internal/estimate"
	"github.com/bucketops/bucketops/internal/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name   string
		ops    estimate.Operations
		prices pricing.PriceTable
		a      string
		b      string
		total  string
	}{
		{
			name:   "default prices",
			ops:    estimate.Operations{ClassA: 2, ClassB: 2},
			prices: pricing.DefaultPrices(),
			a:      "0.000001",
			b:      "0.000000",
			total:  "0.000001",
		},
		{
			name:   "one unit of each",
			ops:    estimate.Operations{ClassA: 100_000, ClassB: 100_000, Free: 7},
			prices: pricing.DefaultPrices(),
			a:      "0.050000",
			b:      "0.004000",
			total:  "0.054000",
		},
		{
			name:   "nothing",
			prices: pricing.DefaultPrices(),
			a:      "0.000000",
			b:      "0.000000",
			total:  "0.000000",
		},
		{
			name: "catalog prices",
			ops:  estimate.Operations{ClassA: 250_000, ClassB: 1_000_000},
			prices: pricing.PriceTable{
				ClassA: decimal.RequireFromString("0.065"),
				ClassB: decimal.RequireFromString("0.005"),
				Source: pricing.SourceCatalog,
			},
			a:     "0.162500",
			b:     "0.050000",
			total: "0.212500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := require.New(t)

			r := Compute(tt.ops, tt.prices)
			assert.Equal(tt.a, r.ClassACost.StringFixed(Places))
			assert.Equal(tt.b, r.ClassBCost.StringFixed(Places))
			assert.Equal(tt.total, r.TotalCost.StringFixed(Places))
			assert.True(r.TotalCost.Equal(r.ClassACost.Add(r.ClassBCost)))
		})
	}
}

func TestComputeIsLinear(t *testing.T) {
	assert := require.New(t)

	prices := pricing.DefaultPrices()
	ops := estimate.Operations{ClassA: 3, ClassB: 11, Free: 4}

	once := Compute(ops, prices)
	twice := Compute(estimate.Operations{ClassA: 6, ClassB: 22, Free: 8}, prices)

	assert.True(twice.ClassACost.Equal(once.ClassACost.Mul(decimal.NewFromInt(2))))
	assert.True(twice.ClassBCost.Equal(once.ClassBCost.Mul(decimal.NewFromInt(2))))
	assert.True(twice.TotalCost.Equal(once.TotalCost.Mul(decimal.NewFromInt(2))))
}

func TestComputeIgnoresFree(t *testing.T) {
	assert := require.New(t)

	r := Compute(estimate.Operations{Free: 1_000_000}, pricing.DefaultPrices())
	assert.True(r.TotalCost.IsZero())
}

func TestRows(t *testing.T) {
	assert := require.New(t)

	r := Compute(estimate.Operations{ClassA: 1234, ClassB: 5, Free: 1}, pricing.DefaultPrices())
	rows := r.Rows()

	assert.Len(rows, 4)
	assert.Equal([]string{"Class A", "1,234", "$0.050000", "$0.000617"}, rows[0])
	assert.Equal([]string{"Class B", "5", "$0.004000", "$0.000000"}, rows[1])
	assert.Equal([]string{"Free", "1", "$0.000000", "$0.000000"}, rows[2])
	assert.Equal([]string{"Total", "1,239", "", "$0.000617"}, rows[3])
}

func TestRender(t *testing.T) {
	assert := require.New(t)

	var buf bytes.Buffer
	p := console.NewPrinter(&buf, false)

	result := &estimate.Result{Path: "job.py", Kind: estimate.KindScript, MIME: "text/x-python"}
	r := Compute(estimate.Operations{ClassA: 4, ClassB: 2}, pricing.DefaultPrices())

	assert.NoError(Render(p, result, r))

	out := buf.String()
	assert.Contains(out, "job.py (script, text/x-python)")
	assert.Contains(out, "Price per 100k")
	assert.Contains(out, "$0.000002")
	assert.Contains(out, "Prices from default")
}
