package money_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tripline/internal/money"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "1200", want: 120000},
		{in: "12.5", want: 1250},
		{in: "1,200.50", want: 120050},
		{in: " 0.005 ", want: 1},
		{in: "-3.20", want: -320},
		{in: "", wantErr: true},
		{in: "twelve", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := money.Parse(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, money.ErrInvalidAmount)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "0.00", money.Format(0))
	assert.Equal(t, "12.50", money.Format(1250))
	assert.Equal(t, "-0.05", money.Format(-5))
}

func TestAmount_JSON(t *testing.T) {
	var body struct {
		Advance money.Amount `json:"advance"`
		Total   money.Amount `json:"total"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"advance":"5.00","total":30}`), &body))
	assert.Equal(t, money.Amount(500), body.Advance)
	assert.Equal(t, money.Amount(3000), body.Total)

	out, err := json.Marshal(body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"advance":"5.00","total":"30.00"}`, string(out))
}
