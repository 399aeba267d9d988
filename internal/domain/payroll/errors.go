package payroll

import "errors"

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrInvalidPeriod    = errors.New("invalid payroll period")
)

// DiagnosticKind classifies recoverable data-quality events collected in a report.
type DiagnosticKind string

const (
	DiagnosticCatalogMiss         DiagnosticKind = "catalog_miss"
	DiagnosticMappingParseError   DiagnosticKind = "mapping_parse_error"
	DiagnosticUnparsableSegment   DiagnosticKind = "unparsable_service_segment"
	DiagnosticSourceConflict      DiagnosticKind = "source_conflict"
	DiagnosticInvoiceOutOfPeriod  DiagnosticKind = "invoice_out_of_period"
	DiagnosticInvoiceNotPaid      DiagnosticKind = "invoice_not_paid"
	DiagnosticOvertimeOutOfPeriod DiagnosticKind = "overtime_out_of_period"
)
