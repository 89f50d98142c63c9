// Package report prices estimated operations and renders the result.
package report

import (
	"fmt"

	"github.com/bucketops/bucketops/internal/console"
	"github.com/bucketops/bucketops/internal/estimate"
	"github.com/bucketops/bucketops/internal/pricing"
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Places is the number of decimal places costs are shown with.
const Places = 6

var perUnit = decimal.NewFromInt(pricing.OperationsPerUnit)

// Report is the cost of a set of estimated operations under a price table.
type Report struct {
	Operations estimate.Operations
	Prices     pricing.PriceTable

	ClassACost decimal.Decimal
	ClassBCost decimal.Decimal
	TotalCost  decimal.Decimal
}

// Compute prices ops. Each class costs count × price / 100,000; free operations cost nothing.
func Compute(ops estimate.Operations, prices pricing.PriceTable) Report {
	a := cost(ops.ClassA, prices.ClassA)
	b := cost(ops.ClassB, prices.ClassB)

	return Report{
		Operations: ops,
		Prices:     prices,
		ClassACost: a,
		ClassBCost: b,
		TotalCost:  a.Add(b),
	}
}

func cost(count int64, price decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(count).Mul(price).Div(perUnit)
}

// Rows returns the report as table rows: one per class, then the total.
func (r Report) Rows() [][]string {
	return [][]string{
		{"Class A", humanize.Comma(r.Operations.ClassA), money(r.Prices.ClassA), money(r.ClassACost)},
		{"Class B", humanize.Comma(r.Operations.ClassB), money(r.Prices.ClassB), money(r.ClassBCost)},
		{"Free", humanize.Comma(r.Operations.Free), money(decimal.Zero), money(decimal.Zero)},
		{"Total", humanize.Comma(r.Operations.Total()), "", money(r.TotalCost)},
	}
}

// Headers are the column names matching Rows.
func Headers() []string {
	return []string{"Operations", "Count", "Price per 100k", "Cost"}
}

// Render prints a heading for the estimated file followed by the cost table.
func Render(p *console.Printer, result *estimate.Result, r Report) error {
	if result != nil {
		if _, err := p.Info("📄", "%s (%s, %s)", result.Path, result.Kind, result.MIME); err != nil {
			return err
		}
	}

	if _, err := p.Table(Headers(), r.Rows()); err != nil {
		return err
	}

	_, err := p.Info("💲", "Prices from %s. Estimates are approximate.", r.Prices.Source)
	return err
}

func money(d decimal.Decimal) string {
	return fmt.Sprintf("$%s", d.StringFixed(Places))
}
