package intensity

import (
	"encoding/json"
	"fmt"
	"os"
)

// curveJSON mirrors the on-disk shape {"values": [...], "tail": "FLAT"|"ZERO"}
// from original_source/src/calibration/intensity_curve_io.h.
type curveJSON struct {
	Values []float64 `json:"values"`
	Tail   string    `json:"tail"`
}

func tailToString(t TailRule) string {
	if t == TailZero {
		return "ZERO"
	}
	return "FLAT"
}

func tailFromString(s string) TailRule {
	if s == "ZERO" {
		return TailZero
	}
	return TailFlat
}

// MarshalJSON implements json.Marshaler for Curve.
func (c Curve) MarshalJSON() ([]byte, error) {
	return json.Marshal(curveJSON{Values: c.table, Tail: tailToString(c.tail)})
}

// UnmarshalJSON implements json.Unmarshaler for Curve.
func (c *Curve) UnmarshalJSON(data []byte) error {
	var cj curveJSON
	if err := json.Unmarshal(data, &cj); err != nil {
		return err
	}
	*c = NewCurve(cj.Values, tailFromString(cj.Tail))
	return nil
}

// SaveCurveToFile writes curve to path in the values/tail JSON format.
func SaveCurveToFile(path string, curve Curve) error {
	data, err := json.MarshalIndent(curve, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal curve: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write curve file %s: %w", path, err)
	}
	return nil
}

// LoadCurveFromFile reads a curve previously written by SaveCurveToFile.
func LoadCurveFromFile(path string) (Curve, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Curve{}, fmt.Errorf("read curve file %s: %w", path, err)
	}
	var c Curve
	if err := json.Unmarshal(data, &c); err != nil {
		return Curve{}, fmt.Errorf("parse curve file %s: %w", path, err)
	}
	return c, nil
}

// hlrParamsJSON mirrors spec.md §6 "HLRParams JSON" contract.
type hlrParamsJSON struct {
	K                    int       `json:"k"`
	NMax                 int       `json:"n_max"`
	SpreadSensitivity    float64   `json:"spread_sensitivity"`
	ImbalanceSensitivity float64   `json:"imbalance_sensitivity"`
	LambdaLBid           []Curve   `json:"lambda_l_bid"`
	LambdaLAsk           []Curve   `json:"lambda_l_ask"`
	LambdaCBid           []Curve   `json:"lambda_c_bid"`
	LambdaCAsk           []Curve   `json:"lambda_c_ask"`
	LambdaMBuy           Curve     `json:"lambda_m_buy"`
	LambdaMSell          Curve     `json:"lambda_m_sell"`
}

// MarshalJSON implements json.Marshaler for HLRParams.
func (p HLRParams) MarshalJSON() ([]byte, error) {
	return json.Marshal(hlrParamsJSON{
		K:                    p.K,
		NMax:                 p.NMax,
		SpreadSensitivity:    p.SpreadSensitivity,
		ImbalanceSensitivity: p.ImbalanceSensitivity,
		LambdaLBid:           p.LambdaLBid,
		LambdaLAsk:           p.LambdaLAsk,
		LambdaCBid:           p.LambdaCBid,
		LambdaCAsk:           p.LambdaCAsk,
		LambdaMBuy:           p.LambdaMBuy,
		LambdaMSell:          p.LambdaMSell,
	})
}

// UnmarshalJSON implements json.Unmarshaler for HLRParams.
func (p *HLRParams) UnmarshalJSON(data []byte) error {
	var hj hlrParamsJSON
	if err := json.Unmarshal(data, &hj); err != nil {
		return err
	}
	*p = HLRParams{
		K:                    hj.K,
		NMax:                 hj.NMax,
		SpreadSensitivity:    hj.SpreadSensitivity,
		ImbalanceSensitivity: hj.ImbalanceSensitivity,
		LambdaLBid:           hj.LambdaLBid,
		LambdaLAsk:           hj.LambdaLAsk,
		LambdaCBid:           hj.LambdaCBid,
		LambdaCAsk:           hj.LambdaCAsk,
		LambdaMBuy:           hj.LambdaMBuy,
		LambdaMSell:          hj.LambdaMSell,
	}
	return nil
}

// SaveHLRParamsToFile writes p to path as JSON.
func SaveHLRParamsToFile(path string, p HLRParams) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal hlr params: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write hlr params file %s: %w", path, err)
	}
	return nil
}

// LoadHLRParamsFromFile reads HLRParams previously written by
// SaveHLRParamsToFile.
func LoadHLRParamsFromFile(path string) (HLRParams, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return HLRParams{}, fmt.Errorf("read hlr params file %s: %w", path, err)
	}
	var p HLRParams
	if err := json.Unmarshal(data, &p); err != nil {
		return HLRParams{}, fmt.Errorf("parse hlr params file %s: %w", path, err)
	}
	return p, nil
}
