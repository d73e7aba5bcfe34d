package model

import "testing"

func TestParseTimeframe(t *testing.T) {
	for _, tf := range Timeframes {
		got, err := ParseTimeframe(string(tf))
		if err != nil || got != tf {
			t.Errorf("ParseTimeframe(%q) = %v, %v", tf, got, err)
		}
	}
	if _, err := ParseTimeframe("hourly"); err == nil {
		t.Error("expected error for unknown timeframe")
	}
}

func TestSignalHelpers(t *testing.T) {
	if !SignalStrongBuy.Actionable() || !SignalSell.Actionable() {
		t.Error("Buy+/Sell must be actionable")
	}
	if SignalNone.Actionable() {
		t.Error("None must not be actionable")
	}
	if !SignalBuy.Bullish() || SignalBuy.Bearish() {
		t.Error("Buy side helpers wrong")
	}
	if !SignalStrongSell.Bearish() || SignalStrongSell.Bullish() {
		t.Error("Sell side helpers wrong")
	}
}

func TestADXDisplay(t *testing.T) {
	tests := []struct {
		plusDI, minusDI, adx float64
		want                 string
	}{
		{25, 20, 25.66, "+25.7"},
		{15, 20, 18.24, "-18.2"},
		{22, 22, 20, "+20.0"},
	}
	for _, tt := range tests {
		r := IndicatorRow{PlusDI: tt.plusDI, MinusDI: tt.minusDI, ADX: tt.adx}
		if got := r.ADXDisplay(); got != tt.want {
			t.Errorf("ADXDisplay(+DI=%v,-DI=%v,ADX=%v) = %q, want %q",
				tt.plusDI, tt.minusDI, tt.adx, got, tt.want)
		}
	}
}
