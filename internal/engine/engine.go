package engine

import (
	"context"

	"github.com/law-makers/encuestas/pkg/models"
)

// Fetcher is the interface that all fetch engines must implement
type Fetcher interface {
	// Fetch retrieves the document at the given URL
	Fetch(ctx context.Context, url string) (*models.Document, error)

	// Name returns the name of the fetcher implementation
	Name() string
}
