package docstore

import (
	"fmt"
	"net/http"

	"reportsync/internal/config"
	"reportsync/internal/report"
)

// NewDocumentStoreFromConfig creates a DocumentStore implementation based
// on the documents config type.
func NewDocumentStoreFromConfig(cfg config.DocumentsConfig, client *http.Client) (report.DocumentStore, error) {
	switch cfg.Type {
	case "http":
		if cfg.Endpoint == "" {
			return nil, fmt.Errorf("http document store requires endpoint to be set")
		}
		return NewHTTPStore(cfg.Endpoint, client), nil
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown document store type: %s", cfg.Type)
	}
}
