package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khiva-consulting/backoffice-api/internal/domain"
)

func TestMoney_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected domain.Money
		wantErr  bool
	}{
		{"plain number", `12000000`, 12000000, false},
		{"digit string", `"12000000"`, 12000000, false},
		{"space grouped", `"1 200 000"`, 1200000, false},
		{"comma grouped", `"1,200,000"`, 1200000, false},
		{"null", `null`, 0, false},
		{"empty string", `""`, 0, false},
		{"garbage", `"so'm"`, 0, true},
		{"fractional", `"12.5"`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m domain.Money
			err := json.Unmarshal([]byte(tt.input), &m)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, m)
		})
	}
}

func TestContractPayload_GroupedAmounts(t *testing.T) {
	var payload domain.ContractPayload
	err := json.Unmarshal([]byte(`{
		"totalServiceFee": "25 000 000",
		"initialPaymentAmount": "5,000,000",
		"amountPaid": 1000000
	}`), &payload)
	require.NoError(t, err)

	assert.Equal(t, domain.Money(25000000), payload.TotalServiceFee)
	assert.Equal(t, domain.Money(5000000), payload.InitialPaymentAmount)
	assert.Equal(t, domain.Money(1000000), payload.AmountPaid)
}
