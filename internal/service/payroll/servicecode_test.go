package payroll

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseServiceCodes(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantCodes   []ServiceCode
		wantSkipped []string
	}{
		{
			name:      "quantities and vietnamese letters",
			input:     "2TI,1BÔNG",
			wantCodes: []ServiceCode{{Quantity: 2, ServiceCode: "TI"}, {Quantity: 1, ServiceCode: "BÔNG"}},
		},
		{
			name:      "empty string",
			input:     "",
			wantCodes: []ServiceCode{},
		},
		{
			name:      "missing quantity defaults to one",
			input:     "ti",
			wantCodes: []ServiceCode{{Quantity: 1, ServiceCode: "TI"}},
		},
		{
			name:      "whitespace and empty segments",
			input:     " 3 goi dau , ,2TI ",
			wantCodes: []ServiceCode{{Quantity: 3, ServiceCode: "GOI DAU"}, {Quantity: 2, ServiceCode: "TI"}},
		},
		{
			name:        "zero quantity is skipped",
			input:       "0TI,1MAT",
			wantCodes:   []ServiceCode{{Quantity: 1, ServiceCode: "MAT"}},
			wantSkipped: []string{"0TI"},
		},
		{
			name:        "unparsable segments are skipped",
			input:       "2TI,TI2,#$",
			wantCodes:   []ServiceCode{{Quantity: 2, ServiceCode: "TI"}},
			wantSkipped: []string{"TI2", "#$"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codes, skipped := ParseServiceCodes(tt.input)
			assert.Equal(t, tt.wantCodes, codes)
			assert.Equal(t, tt.wantSkipped, skipped)
		})
	}
}

func TestParseServiceCodesPtr_Nil(t *testing.T) {
	codes, skipped := ParseServiceCodesPtr(nil)
	assert.NotNil(t, codes)
	assert.Empty(t, codes)
	assert.Nil(t, skipped)
}
