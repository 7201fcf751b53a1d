package intensity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCurveJSONRoundTrip(t *testing.T) {
	c := NewCurve([]float64{1, 2, 3, 0}, TailZero)
	data, err := json.Marshal(c)
	require.NoError(t, err)
	require.Contains(t, string(data), `"tail":"ZERO"`)

	var out Curve
	require.NoError(t, json.Unmarshal(data, &out))
	require.Equal(t, c.Value(0), out.Value(0))
	require.Equal(t, c.Value(3), out.Value(3))
	require.Equal(t, c.Value(100), out.Value(100))
}

func TestHLRParamsJSONRoundTrip(t *testing.T) {
	p := DefaultHLRParams(2)
	data, err := json.Marshal(p)
	require.NoError(t, err)

	var out HLRParams
	require.NoError(t, json.Unmarshal(data, &out))
	require.Equal(t, p.K, out.K)
	require.Len(t, out.LambdaLBid, 2)
	require.Equal(t, p.LambdaLBid[0].Value(0), out.LambdaLBid[0].Value(0))
	require.Equal(t, p.LambdaMBuy.Value(5), out.LambdaMBuy.Value(5))
}
