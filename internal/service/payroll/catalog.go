package payroll

import (
	"strings"

	"github.com/cmlabs-hris/spa-payroll/internal/domain/payroll"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Catalog is an immutable snapshot of the service list, loaded once per report.
type Catalog struct {
	byName map[string]payroll.ServiceDefinition
	byID   map[int64]payroll.ServiceDefinition
}

// catalogKey makes "  bông ", "BÔNG" and the decomposed NFD spelling the same key.
// A Caser is stateful, so one is built per call; lookups run from several goroutines.
func catalogKey(name string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(name)))
}

func NewCatalog(services []payroll.ServiceDefinition) *Catalog {
	c := &Catalog{
		byName: make(map[string]payroll.ServiceDefinition, len(services)),
		byID:   make(map[int64]payroll.ServiceDefinition, len(services)),
	}
	for _, s := range services {
		key := catalogKey(s.Name)
		// names are unique case-insensitively; keep the first on dirty data
		if _, exists := c.byName[key]; !exists {
			c.byName[key] = s
		}
		if s.ID != 0 {
			c.byID[s.ID] = s
		}
	}
	return c
}

func (c *Catalog) Lookup(name string) (payroll.ServiceDefinition, bool) {
	s, ok := c.byName[catalogKey(name)]
	return s, ok
}

func (c *Catalog) LookupID(id int64) (payroll.ServiceDefinition, bool) {
	s, ok := c.byID[id]
	return s, ok
}

func (c *Catalog) Len() int {
	return len(c.byName)
}

// LegacyPriceFallbackPolicy prices legacy dichvu codes missing from the catalog.
// It has exactly two buckets: PrimaryCode gets PrimaryPrice, everything else DefaultPrice.
type LegacyPriceFallbackPolicy struct {
	Enabled        bool
	PrimaryCode    string
	PrimaryPrice   int64
	DefaultPrice   int64
	CommissionRate decimal.Decimal
}

func DefaultLegacyPriceFallbackPolicy() LegacyPriceFallbackPolicy {
	return LegacyPriceFallbackPolicy{
		Enabled:        true,
		PrimaryCode:    "TI",
		PrimaryPrice:   100000,
		DefaultPrice:   50000,
		CommissionRate: decimal.NewFromInt(10),
	}
}

// Price returns the guessed unit price and rate, ok is false when the policy is disabled.
func (p LegacyPriceFallbackPolicy) Price(code string) (unitPrice int64, rate decimal.Decimal, ok bool) {
	if !p.Enabled {
		return 0, decimal.Zero, false
	}
	if catalogKey(code) == catalogKey(p.PrimaryCode) {
		return p.PrimaryPrice, p.CommissionRate, true
	}
	return p.DefaultPrice, p.CommissionRate, true
}
