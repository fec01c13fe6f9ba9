package report

import (
	"context"
	"errors"
)

// ErrSkipUpload signals that a photo URI has nothing to upload: the URI is
// remote already, or of a scheme the uploader cannot read. It is not a
// retryable failure.
var ErrSkipUpload = errors.New("photo not uploadable, skipping")

// ErrOffline signals that no usable network is available.
var ErrOffline = errors.New("no internet connection")

// KVStore is the durable key-value persistence layer backing the queue.
// Values are JSON text; a Set must either fully replace the previous value
// or leave it intact; partially written values corrupt the queue.
type KVStore interface {
	// Get returns the value for key, or (nil, nil) if the key is absent.
	Get(key string) ([]byte, error)

	// Set stores value under key, replacing any previous value atomically.
	Set(key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error

	// Close releases any underlying resources.
	Close() error
}

// PhotoVault copies picked photo assets into an app-private location so they
// outlive the original transient picker URI and can be deleted independently.
type PhotoVault interface {
	// EnsureDirectory idempotently creates the vault root.
	EnsureDirectory() error

	// Persist copies the asset at sourceURI into the vault and returns the
	// vault-local destination path. On copy failure it returns the original
	// URI as a degraded fallback; sync will later surface the failure
	// through validation rather than silently losing the report.
	Persist(sourceURI string) (string, error)

	// Validate reports whether uri points at an uploadable local asset:
	// vault-local, plain local-file, or content-provider scheme, with an
	// existing non-empty file behind it. Remote http(s) URIs are invalid
	// for upload purposes.
	Validate(uri string) bool

	// Delete removes a vault file. Absence is not an error.
	Delete(path string) error

	// Contains reports whether path is inside the vault.
	Contains(path string) bool

	// FileSize returns the size of a local file, 0 if it does not exist.
	FileSize(path string) (int64, error)

	// Clear removes the entire vault directory and recreates it empty.
	Clear() error
}

// ConnectivityMonitor answers "is the network currently usable" and notifies
// on change.
type ConnectivityMonitor interface {
	IsOnline(ctx context.Context) bool

	// Subscribe registers fn to be invoked with the new state on every
	// connectivity transition. The returned function cancels the
	// subscription. Multiple independent subscribers are supported.
	Subscribe(fn func(online bool)) (cancel func())
}

// Uploader puts one local image asset into the remote object store and
// returns its public URL. Implementations must return ErrSkipUpload (wrapped
// or direct) when the URI fails validation, and plain errors for exhausted
// retries; they never panic across this boundary.
type Uploader interface {
	Upload(ctx context.Context, uri string) (url string, err error)
}

// DocumentStore is the remote document database, write-only from this
// package's perspective. The server assigns the creation timestamp.
type DocumentStore interface {
	AddDocument(ctx context.Context, collection string, fields map[string]any) (id string, err error)
}
