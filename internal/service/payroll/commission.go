package payroll

import (
	"github.com/cmlabs-hris/spa-payroll/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// CommissionCalculator prices credit lines against one catalog snapshot.
type CommissionCalculator struct {
	catalog  *Catalog
	fallback LegacyPriceFallbackPolicy
}

func NewCommissionCalculator(catalog *Catalog, fallback LegacyPriceFallbackPolicy) *CommissionCalculator {
	return &CommissionCalculator{catalog: catalog, fallback: fallback}
}

// InvoiceCommission is the result for one invoice. Total is the sum of rounded lines.
type InvoiceCommission struct {
	Lines              []payroll.ServiceCommission
	Total              int64
	LegacyDefaultTotal int64
	Diagnostics        []payroll.Diagnostic
}

func (c *CommissionCalculator) Calculate(invoiceID int64, credits []CreditLine) InvoiceCommission {
	result := InvoiceCommission{Lines: []payroll.ServiceCommission{}}

	for _, line := range credits {
		name, unitPrice, rate, source, ok := c.price(invoiceID, line, &result.Diagnostics)
		if !ok {
			continue
		}

		commission := RoundHalfUp(LineCommission(unitPrice, rate, line))
		result.Lines = append(result.Lines, payroll.ServiceCommission{
			Service:        name,
			Quantity:       line.Quantity,
			UnitPrice:      unitPrice,
			CommissionRate: rate,
			CreditShare:    line.CreditShare,
			Commission:     commission,
			PriceSource:    source,
		})
		result.Total += commission
		if source == payroll.PriceSourceLegacyDefault {
			result.LegacyDefaultTotal += commission
		}
	}

	return result
}

func (c *CommissionCalculator) price(invoiceID int64, line CreditLine, diags *[]payroll.Diagnostic) (string, int64, decimal.Decimal, payroll.PriceSource, bool) {
	if line.ServiceID != nil {
		def, ok := c.catalog.LookupID(*line.ServiceID)
		if !ok {
			*diags = append(*diags, newDiagnostic(payroll.DiagnosticCatalogMiss, &invoiceID, "",
				"invoice item references id %d which is not a catalog service", *line.ServiceID))
			return "", 0, decimal.Zero, "", false
		}
		if line.UnitPrice != nil {
			return def.Name, *line.UnitPrice, def.CommissionRate, payroll.PriceSourceInvoiceItem, true
		}
		return def.Name, def.UnitPrice, def.CommissionRate, payroll.PriceSourceCatalog, true
	}

	if def, ok := c.catalog.Lookup(line.Service); ok {
		return line.Service, def.UnitPrice, def.CommissionRate, payroll.PriceSourceCatalog, true
	}

	if line.Legacy {
		if price, rate, ok := c.fallback.Price(line.Service); ok {
			*diags = append(*diags, newDiagnostic(payroll.DiagnosticCatalogMiss, &invoiceID, line.Service,
				"service %q not in catalog, priced with legacy default %d", line.Service, price))
			return line.Service, price, rate, payroll.PriceSourceLegacyDefault, true
		}
	}

	*diags = append(*diags, newDiagnostic(payroll.DiagnosticCatalogMiss, &invoiceID, line.Service,
		"service %q not in catalog, no commission credited", line.Service))
	return "", 0, decimal.Zero, "", false
}

// LineCommission = unitPrice × rate/100 × quantity × share, unrounded.
func LineCommission(unitPrice int64, rate decimal.Decimal, line CreditLine) decimal.Decimal {
	gross := decimal.NewFromInt(unitPrice).Mul(rate).Mul(decimal.NewFromInt(int64(line.Quantity)))
	if line.Collaborators > 0 {
		return gross.Div(hundred.Mul(decimal.NewFromInt(int64(line.Collaborators))))
	}
	return gross.Mul(line.CreditShare).Div(hundred)
}

// RoundHalfUp rounds to whole currency units. Commission amounts are never negative,
// so Round's half-away-from-zero behaves as half-up.
func RoundHalfUp(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}
