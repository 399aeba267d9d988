package payroll

import (
	"regexp"
	"strconv"
	"strings"
)

// ServiceCode is one parsed segment of a legacy dichvu string.
type ServiceCode struct {
	Quantity    int
	ServiceCode string
}

// leading digits, then letters (marks and inner spaces allowed for Vietnamese names)
var serviceCodeRegex = regexp.MustCompile(`^(\d*)\s*([\p{L}\p{M}][\p{L}\p{M} ]*)$`)

// ParseServiceCodes parses a compact dichvu string such as "2TI,1BÔNG".
// Segments that don't match are returned in skipped instead of failing the invoice.
func ParseServiceCodes(dichvu string) (codes []ServiceCode, skipped []string) {
	codes = []ServiceCode{}
	if strings.TrimSpace(dichvu) == "" {
		return codes, nil
	}

	for _, segment := range strings.Split(dichvu, ",") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}

		m := serviceCodeRegex.FindStringSubmatch(segment)
		if m == nil {
			skipped = append(skipped, segment)
			continue
		}

		quantity := 1
		if m[1] != "" {
			q, err := strconv.Atoi(m[1])
			if err != nil || q <= 0 {
				skipped = append(skipped, segment)
				continue
			}
			quantity = q
		}

		codes = append(codes, ServiceCode{
			Quantity:    quantity,
			ServiceCode: strings.ToUpper(strings.TrimSpace(m[2])),
		})
	}

	return codes, skipped
}

// ParseServiceCodesPtr treats a NULL column as empty input.
func ParseServiceCodesPtr(dichvu *string) ([]ServiceCode, []string) {
	if dichvu == nil {
		return []ServiceCode{}, nil
	}
	return ParseServiceCodes(*dichvu)
}
