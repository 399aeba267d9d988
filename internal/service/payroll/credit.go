package payroll

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/spa-payroll/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// CreditLine is the target employee's share of one billed service.
type CreditLine struct {
	Service   string
	ServiceID *int64
	Quantity  int
	// CreditShare is in (0,1]. When Collaborators > 0 the share is exactly 1/Collaborators
	// and the calculator divides instead of multiplying by a truncated fraction.
	CreditShare   decimal.Decimal
	Collaborators int
	// UnitPrice overrides the catalog price (item-level rows store their own price)
	UnitPrice *int64
	// Legacy lines may be priced by the LegacyPriceFallbackPolicy
	Legacy bool
}

// CreditSource is resolved once per invoice:
// StructuredSource | LegacySource | ItemLevelSource | NoSource.
type CreditSource interface {
	Kind() payroll.CreditSourceKind
	Credits(emp payroll.Employee) []CreditLine
}

type StructuredSource struct {
	Entries []payroll.MappingEntry
}

type LegacySource struct {
	Codes         []ServiceCode
	EmployeeNames string
}

type ItemLevelSource struct {
	Items []payroll.InvoiceLineItem
}

type NoSource struct{}

func (StructuredSource) Kind() payroll.CreditSourceKind { return payroll.CreditSourceMapping }
func (LegacySource) Kind() payroll.CreditSourceKind     { return payroll.CreditSourceLegacy }
func (ItemLevelSource) Kind() payroll.CreditSourceKind  { return payroll.CreditSourceItems }
func (NoSource) Kind() payroll.CreditSourceKind         { return payroll.CreditSourceNone }

// Credits emits entries naming the employee verbatim. commission_split is trusted as stored,
// it is not recomputed from len(employees).
func (s StructuredSource) Credits(emp payroll.Employee) []CreditLine {
	var lines []CreditLine
	for _, entry := range s.Entries {
		if !containsExact(entry.Employees, emp.DisplayName) {
			continue
		}
		if entry.TotalQuantity <= 0 || !entry.CommissionSplit.IsPositive() {
			continue
		}
		lines = append(lines, CreditLine{
			Service:     entry.Service,
			Quantity:    entry.TotalQuantity,
			CreditShare: entry.CommissionSplit,
		})
	}
	return lines
}

// Credits splits every line equally over the raw comma count of employee_name.
// Membership is assumed: the repository only returns invoices associated with the employee.
func (s LegacySource) Credits(_ payroll.Employee) []CreditLine {
	count := LegacyEmployeeCount(s.EmployeeNames)
	share := decimal.NewFromInt(1).Div(decimal.NewFromInt(int64(count)))

	lines := make([]CreditLine, 0, len(s.Codes))
	for _, code := range s.Codes {
		lines = append(lines, CreditLine{
			Service:       code.ServiceCode,
			Quantity:      code.Quantity,
			CreditShare:   share,
			Collaborators: count,
			Legacy:        true,
		})
	}
	return lines
}

func (s ItemLevelSource) Credits(emp payroll.Employee) []CreditLine {
	var lines []CreditLine
	for _, item := range s.Items {
		if item.EmployeeID == nil || *item.EmployeeID != emp.ID || item.Quantity <= 0 {
			continue
		}
		price := item.UnitPrice
		lines = append(lines, CreditLine{
			ServiceID:   item.ServiceID,
			Quantity:    item.Quantity,
			CreditShare: decimal.NewFromInt(1),
			UnitPrice:   &price,
		})
	}
	return lines
}

func (NoSource) Credits(_ payroll.Employee) []CreditLine {
	return nil
}

// LegacyEmployeeCount is the number of comma-separated names, counted raw:
// no trimming and no deduplication, matching how stored figures were produced.
func LegacyEmployeeCount(employeeNames string) int {
	return len(strings.Split(employeeNames, ","))
}

// ResolveCreditSource picks the invoice's credit shape: mapping, then dichvu, then item rows.
func ResolveCreditSource(inv payroll.Invoice, items []payroll.InvoiceLineItem) (CreditSource, []payroll.Diagnostic) {
	var diags []payroll.Diagnostic

	entries, present, err := parseMapping(inv.ServiceEmployeeMapping)
	if err != nil {
		diags = append(diags, newDiagnostic(payroll.DiagnosticMappingParseError, &inv.ID, "",
			"service_employee_mapping is not valid JSON, falling back to dichvu: %v", err))
	}
	if present {
		return StructuredSource{Entries: entries}, diags
	}

	codes, skipped := ParseServiceCodesPtr(inv.Dichvu)
	for _, segment := range skipped {
		diags = append(diags, newDiagnostic(payroll.DiagnosticUnparsableSegment, &inv.ID, segment,
			"dichvu segment %q skipped", segment))
	}
	if len(codes) > 0 {
		return LegacySource{Codes: codes, EmployeeNames: deref(inv.EmployeeName)}, diags
	}

	if hasAssignedItems(items) {
		return ItemLevelSource{Items: items}, diags
	}

	return NoSource{}, diags
}

// DetectSourceConflict flags invoices whose available shapes disagree on whether
// emp is credited. It reports, it does not pick a winner.
func DetectSourceConflict(inv payroll.Invoice, items []payroll.InvoiceLineItem, emp payroll.Employee) *payroll.Diagnostic {
	var verdicts []string
	credited, uncredited := 0, 0
	record := func(source string, ok bool) {
		verdicts = append(verdicts, fmt.Sprintf("%s=%t", source, ok))
		if ok {
			credited++
		} else {
			uncredited++
		}
	}

	if entries, present, _ := parseMapping(inv.ServiceEmployeeMapping); present {
		found := false
		for _, e := range entries {
			if containsExact(e.Employees, emp.DisplayName) {
				found = true
				break
			}
		}
		record("mapping", found)
	}
	if names := deref(inv.EmployeeName); strings.TrimSpace(names) != "" {
		found := false
		for _, n := range strings.Split(names, ",") {
			if catalogKey(n) == catalogKey(emp.DisplayName) {
				found = true
				break
			}
		}
		record("employee_name", found)
	}
	if hasAssignedItems(items) {
		found := false
		for _, item := range items {
			if item.EmployeeID != nil && *item.EmployeeID == emp.ID {
				found = true
				break
			}
		}
		record("invoice_items", found)
	}

	if credited == 0 || uncredited == 0 {
		return nil
	}
	d := newDiagnostic(payroll.DiagnosticSourceConflict, &inv.ID, "",
		"credit sources disagree for %s: %s", emp.DisplayName, strings.Join(verdicts, ", "))
	return &d
}

// parseMapping returns present=false for NULL, blank, JSON null, an empty array and parse errors.
func parseMapping(raw *string) ([]payroll.MappingEntry, bool, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, false, nil
	}

	data := []byte(*raw)
	var entries []payroll.MappingEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		// some rows were written double-encoded as a JSON string
		var inner string
		if json.Unmarshal(data, &inner) != nil {
			return nil, false, err
		}
		if err := json.Unmarshal([]byte(inner), &entries); err != nil {
			return nil, false, err
		}
	}
	if len(entries) == 0 {
		return nil, false, nil
	}
	return entries, true, nil
}

func hasAssignedItems(items []payroll.InvoiceLineItem) bool {
	for _, item := range items {
		if item.EmployeeID != nil {
			return true
		}
	}
	return false
}

func containsExact(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func newDiagnostic(kind payroll.DiagnosticKind, invoiceID *int64, service, format string, args ...any) payroll.Diagnostic {
	var id *int64
	if invoiceID != nil {
		v := *invoiceID
		id = &v
	}
	return payroll.Diagnostic{
		Kind:      kind,
		InvoiceID: id,
		Service:   service,
		Message:   fmt.Sprintf(format, args...),
	}
}
