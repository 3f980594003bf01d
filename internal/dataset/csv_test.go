package dataset

import (
	"errors"
	"testing"
	"time"

	"github.com/mmtrader/pairsweep/internal/core"
)

func TestDecodeCSV_NamedColumns(t *testing.T) {
	data := []byte("timestamp,YM,ES\n" +
		"2024-01-02T09:30:00Z,37500.0,4750.25\n" +
		"2024-01-02T09:30:01Z,37501.0,4750.50\n")

	rows, err := decodeCSV(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].LegA != 37500.0 || rows[0].LegB != 4750.25 {
		t.Errorf("row 0 legs = %v/%v", rows[0].LegA, rows[0].LegB)
	}

	want := time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)
	if !rows[0].Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", rows[0].Timestamp, want)
	}
}

func TestDecodeCSV_UnderscoreColumnsAnyOrder(t *testing.T) {
	data := []byte("leg_b,leg_a,timestamp\n" +
		"4750.25,37500.0,2024-01-02 09:30:00\n")

	rows, err := decodeCSV(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if rows[0].LegA != 37500.0 {
		t.Errorf("legA = %v, columns should resolve by name not position", rows[0].LegA)
	}
	if rows[0].LegB != 4750.25 {
		t.Errorf("legB = %v", rows[0].LegB)
	}
}

func TestDecodeCSV_PositionalFallback(t *testing.T) {
	data := []byte("when,first,second\n" +
		"1704187800,100.5,50.25\n")

	rows, err := decodeCSV(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if rows[0].LegA != 100.5 || rows[0].LegB != 50.25 {
		t.Errorf("positional fallback legs = %v/%v", rows[0].LegA, rows[0].LegB)
	}
	if rows[0].Timestamp.Unix() != 1704187800 {
		t.Errorf("unix timestamp = %v", rows[0].Timestamp.Unix())
	}
}

func TestDecodeCSV_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"header only", "timestamp,ym,es\n"},
		{"too few columns", "timestamp,ym\n2024-01-02T09:30:00Z,1\n"},
		{"bad timestamp", "timestamp,ym,es\nnever,1,2\n"},
		{"bad leg value", "timestamp,ym,es\n2024-01-02T09:30:00Z,abc,2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeCSV([]byte(tt.data))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, core.ErrDatasetUnsupported) {
				t.Errorf("expected DATASET_UNSUPPORTED, got %v", err)
			}
		})
	}
}
