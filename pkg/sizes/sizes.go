// Package sizes maps catalog size labels to bulk-liquid gallons per unit.
package sizes

import (
	"fmt"
	"sync"

	"github.com/labstack/gommon/log"
	"github.com/shopspring/decimal"
)

var (
	gallons = map[string]decimal.Decimal{
		"8oz":      decimal.RequireFromString("0.0625"),
		"16oz":     decimal.RequireFromString("0.125"),
		"Quart":    decimal.RequireFromString("0.25"),
		"32oz":     decimal.RequireFromString("0.25"),
		"Gallon":   decimal.NewFromInt(1),
		"5 Gallon": decimal.NewFromInt(5),
	}

	// Fallback is used for any label outside the table.
	Fallback = decimal.RequireFromString("0.25")

	ordinal = map[string]int{
		"8oz":      0,
		"16oz":     1,
		"Quart":    2,
		"32oz":     3,
		"Gallon":   4,
		"5 Gallon": 5,
	}
)

const otherOrdinal = 6

// UnknownSizeWarning is returned only by a diagnostic Table.
type UnknownSizeWarning struct {
	Label string
}

func (w *UnknownSizeWarning) Error() string {
	return fmt.Sprintf("unknown size label %q (fallback %s gal/unit)", w.Label, Fallback)
}

var (
	warned sync.Map
	warnf  = log.Warnf
)

// Table resolves size labels. The zero value is the production table: unknown
// labels resolve to Fallback and are logged once per process.
type Table struct {
	Diagnostic bool
}

// GallonsPerUnit never fails on the production table. A diagnostic table
// returns Fallback together with *UnknownSizeWarning.
func (t Table) GallonsPerUnit(label string) (decimal.Decimal, error) {
	if g, ok := gallons[label]; ok {
		return g, nil
	}
	if t.Diagnostic {
		return Fallback, &UnknownSizeWarning{Label: label}
	}
	if _, seen := warned.LoadOrStore(label, struct{}{}); !seen {
		warnf("[sizes] unknown size label %q, using %s gal/unit", label, Fallback)
	}
	return Fallback, nil
}

// GallonsPerUnit is the production lookup.
func GallonsPerUnit(label string) decimal.Decimal {
	g, _ := Table{}.GallonsPerUnit(label)
	return g
}

func Known(label string) bool {
	_, ok := gallons[label]
	return ok
}

// Labels lists the recognised labels in display order.
func Labels() []string {
	return []string{"8oz", "16oz", "Quart", "32oz", "Gallon", "5 Gallon"}
}

// Ordinal orders labels 8oz < 16oz < Quart < 32oz < Gallon < 5 Gallon < other.
func Ordinal(label string) int {
	if o, ok := ordinal[label]; ok {
		return o
	}
	return otherOrdinal
}
