// Package dataset loads named two-asset price datasets from pluggable
// storage backends.
package dataset

import (
	"context"
	"time"

	"github.com/mmtrader/pairsweep/internal/core"
)

// Descriptor describes one available dataset.
type Descriptor struct {
	Name        string    `json:"name"`
	SizeBytes   int64     `json:"sizeBytes"`
	LastUpdated time.Time `json:"lastUpdated,omitempty"`
}

// Provider is the dataset storage boundary.
type Provider interface {
	// List returns the datasets available in the backend.
	List(ctx context.Context) ([]Descriptor, error)

	// Load reads the named dataset as a time-aligned price stream.
	Load(ctx context.Context, name string) ([]core.PriceRow, error)
}
