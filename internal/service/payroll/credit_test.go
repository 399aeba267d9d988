package payroll

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/spa-payroll/internal/domain/payroll"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(v int64) *int64   { return &v }

var testEmployee = payroll.Employee{ID: 7, Code: "NV007", DisplayName: "An", BaseSalary: 5000000, Active: true}

func newInvoice(id int64) payroll.Invoice {
	return payroll.Invoice{
		ID:            id,
		TotalAmount:   100000,
		PaymentStatus: payroll.PaymentStatusPaid,
		CreatedAt:     time.Date(2025, 2, 10, 3, 0, 0, 0, time.UTC),
	}
}

func TestResolveCreditSource_MappingOverridesDichvu(t *testing.T) {
	inv := newInvoice(1)
	inv.Dichvu = strPtr("5TI")
	inv.EmployeeName = strPtr("An")
	inv.ServiceEmployeeMapping = strPtr(`[{"service":"Bông","employees":["An","Binh"],"total_quantity":1,"commission_split":0.5}]`)

	source, diags := ResolveCreditSource(inv, nil)
	assert.Empty(t, diags)
	require.Equal(t, payroll.CreditSourceMapping, source.Kind())

	lines := source.Credits(testEmployee)
	require.Len(t, lines, 1)
	assert.Equal(t, "Bông", lines[0].Service)
	assert.Equal(t, 1, lines[0].Quantity)
	assert.True(t, lines[0].CreditShare.Equal(decimal.RequireFromString("0.5")))
	assert.False(t, lines[0].Legacy)
}

func TestResolveCreditSource_DoubleEncodedMapping(t *testing.T) {
	inv := newInvoice(1)
	inv.ServiceEmployeeMapping = strPtr(`"[{\"service\":\"TI\",\"employees\":[\"An\"],\"total_quantity\":2,\"commission_split\":1}]"`)

	source, diags := ResolveCreditSource(inv, nil)
	assert.Empty(t, diags)
	assert.Equal(t, payroll.CreditSourceMapping, source.Kind())
	assert.Len(t, source.Credits(testEmployee), 1)
}

func TestResolveCreditSource_InvalidMappingFallsBackToDichvu(t *testing.T) {
	inv := newInvoice(2)
	inv.ServiceEmployeeMapping = strPtr(`{not json`)
	inv.Dichvu = strPtr("1TI")
	inv.EmployeeName = strPtr("An,Binh")

	source, diags := ResolveCreditSource(inv, nil)
	require.Len(t, diags, 1)
	assert.Equal(t, payroll.DiagnosticMappingParseError, diags[0].Kind)
	assert.Equal(t, int64(2), *diags[0].InvoiceID)
	assert.Equal(t, payroll.CreditSourceLegacy, source.Kind())
}

func TestResolveCreditSource_EmptyMappingIsAbsent(t *testing.T) {
	for _, raw := range []string{"", "  ", "null", "[]"} {
		inv := newInvoice(3)
		inv.ServiceEmployeeMapping = strPtr(raw)
		inv.Dichvu = strPtr("1TI")
		inv.EmployeeName = strPtr("An")

		source, diags := ResolveCreditSource(inv, nil)
		assert.Empty(t, diags, raw)
		assert.Equal(t, payroll.CreditSourceLegacy, source.Kind(), raw)
	}
}

func TestLegacySource_RawCommaCount(t *testing.T) {
	// trailing comma and duplicate name are both counted
	source := LegacySource{
		Codes:         []ServiceCode{{Quantity: 1, ServiceCode: "TI"}},
		EmployeeNames: "An,An,",
	}

	lines := source.Credits(testEmployee)
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Collaborators)
	assert.True(t, lines[0].Legacy)
	assert.Equal(t, 3, LegacyEmployeeCount("An,An,"))
	assert.Equal(t, 1, LegacyEmployeeCount(""))
}

func TestStructuredSource_SkipsOtherEmployeesAndBadEntries(t *testing.T) {
	source := StructuredSource{Entries: []payroll.MappingEntry{
		{Service: "TI", Employees: []string{"Binh"}, TotalQuantity: 1, CommissionSplit: decimal.NewFromInt(1)},
		{Service: "TI", Employees: []string{"an"}, TotalQuantity: 1, CommissionSplit: decimal.NewFromInt(1)},
		{Service: "MAT", Employees: []string{"An"}, TotalQuantity: 0, CommissionSplit: decimal.NewFromInt(1)},
		{Service: "MAT", Employees: []string{"An"}, TotalQuantity: 1, CommissionSplit: decimal.Zero},
		{Service: "GOI", Employees: []string{"An", "Binh", "Chi"}, TotalQuantity: 2, CommissionSplit: decimal.RequireFromString("0.7")},
	}}

	lines := source.Credits(testEmployee)
	require.Len(t, lines, 1)
	assert.Equal(t, "GOI", lines[0].Service)
	// split is trusted as stored, not recomputed from the employee count
	assert.True(t, lines[0].CreditShare.Equal(decimal.RequireFromString("0.7")))
	assert.Equal(t, 0, lines[0].Collaborators)
}

func TestResolveCreditSource_ItemLevel(t *testing.T) {
	inv := newInvoice(4)
	items := []payroll.InvoiceLineItem{
		{ID: 1, InvoiceID: 4, ServiceID: intPtr(1), EmployeeID: intPtr(7), Quantity: 2, UnitPrice: 90000},
		{ID: 2, InvoiceID: 4, ServiceID: intPtr(2), EmployeeID: intPtr(8), Quantity: 1, UnitPrice: 50000},
		{ID: 3, InvoiceID: 4, ServiceID: intPtr(2), Quantity: 1, UnitPrice: 50000},
	}

	source, diags := ResolveCreditSource(inv, items)
	assert.Empty(t, diags)
	require.Equal(t, payroll.CreditSourceItems, source.Kind())

	lines := source.Credits(testEmployee)
	require.Len(t, lines, 1)
	assert.Equal(t, int64(1), *lines[0].ServiceID)
	assert.Equal(t, int64(90000), *lines[0].UnitPrice)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestResolveCreditSource_None(t *testing.T) {
	inv := newInvoice(5)
	inv.Dichvu = strPtr("??")

	source, diags := ResolveCreditSource(inv, []payroll.InvoiceLineItem{{ID: 1, InvoiceID: 5, Quantity: 1}})
	assert.Equal(t, payroll.CreditSourceNone, source.Kind())
	assert.Empty(t, source.Credits(testEmployee))
	require.Len(t, diags, 1)
	assert.Equal(t, payroll.DiagnosticUnparsableSegment, diags[0].Kind)
	assert.Equal(t, "??", diags[0].Service)
}

func TestDetectSourceConflict(t *testing.T) {
	t.Run("mapping omits employee named in employee_name", func(t *testing.T) {
		inv := newInvoice(6)
		inv.EmployeeName = strPtr("An,Binh")
		inv.ServiceEmployeeMapping = strPtr(`[{"service":"TI","employees":["Binh"],"total_quantity":1,"commission_split":1}]`)

		d := DetectSourceConflict(inv, nil, testEmployee)
		require.NotNil(t, d)
		assert.Equal(t, payroll.DiagnosticSourceConflict, d.Kind)
		assert.Contains(t, d.Message, "mapping=false")
		assert.Contains(t, d.Message, "employee_name=true")
	})

	t.Run("sources agree", func(t *testing.T) {
		inv := newInvoice(7)
		inv.EmployeeName = strPtr("An, Binh")
		inv.ServiceEmployeeMapping = strPtr(`[{"service":"TI","employees":["An"],"total_quantity":1,"commission_split":1}]`)
		items := []payroll.InvoiceLineItem{{ID: 1, InvoiceID: 7, EmployeeID: intPtr(7), Quantity: 1}}

		assert.Nil(t, DetectSourceConflict(inv, items, testEmployee))
	})

	t.Run("single source never conflicts", func(t *testing.T) {
		inv := newInvoice(8)
		inv.EmployeeName = strPtr("Binh")

		assert.Nil(t, DetectSourceConflict(inv, nil, testEmployee))
	})
}
