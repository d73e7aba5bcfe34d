package collector

import (
	"strings"
	"testing"
)

func TestDecodeChart(t *testing.T) {
	body := `{"chart":{"result":[{
		"timestamp":[1700000000,1700086400,1700172800],
		"indicators":{"quote":[{
			"open":[100,101,102],
			"high":[101,102,103],
			"low":[99,100,101],
			"close":[100.5,101.5,102.5],
			"volume":[1000,1100,1200]
		}]}}]}}`

	bars, err := decodeChart([]byte(body), "BTC-USD")
	if err != nil {
		t.Fatalf("decodeChart: %v", err)
	}
	if len(bars) != 3 {
		t.Fatalf("expected 3 bars, got %d", len(bars))
	}
	if bars[0].Close != 100.5 || bars[2].Volume != 1200 {
		t.Errorf("bar values wrong: %+v", bars)
	}
	if !bars[0].Time.Before(bars[2].Time) {
		t.Error("bars should be sorted oldest first")
	}
}

func TestDecodeChart_ShortQuoteArrays(t *testing.T) {
	// The last timestamp has no matching quote entries and volume runs even
	// shorter than close.
	body := `{"chart":{"result":[{
		"timestamp":[1700000000,1700086400,1700172800],
		"indicators":{"quote":[{
			"open":[100,101],
			"high":[101,102],
			"low":[99,100],
			"close":[100.5,101.5],
			"volume":[1000]
		}]}}]}}`

	bars, err := decodeChart([]byte(body), "BTC-USD")
	if err != nil {
		t.Fatalf("decodeChart: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars from truncated quote arrays, got %d", len(bars))
	}
	if bars[0].Volume != 1000 || bars[1].Volume != 0 {
		t.Errorf("missing volume should default to 0: %+v", bars)
	}
}

func TestDecodeChart_SkipsNullBars(t *testing.T) {
	body := `{"chart":{"result":[{
		"timestamp":[1700000000,1700086400],
		"indicators":{"quote":[{
			"open":[100,null],
			"high":[101,null],
			"low":[99,null],
			"close":[100.5,null],
			"volume":[1000,null]
		}]}}]}}`

	bars, err := decodeChart([]byte(body), "BTC-USD")
	if err != nil {
		t.Fatalf("decodeChart: %v", err)
	}
	if len(bars) != 1 {
		t.Fatalf("null bar should be skipped, got %d bars", len(bars))
	}
}

func TestDecodeChart_APIError(t *testing.T) {
	body := `{"chart":{"result":[],"error":{"code":"Not Found","description":"No data found"}}}`
	if _, err := decodeChart([]byte(body), "NOPE"); err == nil || !strings.Contains(err.Error(), "No data found") {
		t.Errorf("expected api error, got %v", err)
	}
}
