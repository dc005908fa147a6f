package money

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAmountUnmarshal(t *testing.T) {
	var v struct {
		A Amount `json:"a"`
		B Amount `json:"b"`
		C Amount `json:"c"`
		D Amount `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"12500.50","b":800,"c":null,"d":""}`), &v))
	require.Equal(t, Amount(12500.50), v.A)
	require.Equal(t, Amount(800), v.B)
	require.Zero(t, v.C)
	require.Zero(t, v.D)

	require.Error(t, json.Unmarshal([]byte(`{"a":"twelve"}`), &v))
}

func TestMinor(t *testing.T) {
	require.Equal(t, int64(1250050), Amount(12500.50).Minor())
	require.Equal(t, int64(1999), Amount(19.99).Minor())
	require.Equal(t, Amount(19.99), FromMinor(1999))
	require.Equal(t, "19.99", Amount(19.99).FormValue())
}

func TestFormat(t *testing.T) {
	require.Equal(t, "₹12,500.50", Format(12500.5, "INR"))
	require.Equal(t, "$999.00", Format(999, "usd"))
	require.Equal(t, "₹1,000,000.00", Format(1000000, ""))
	require.Equal(t, "-€1,200.00", Format(-1200, "EUR"))
	require.Equal(t, "AED 5.00", Format(5, "AED"))
}
