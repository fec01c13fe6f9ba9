package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"reportsync/internal/report"
)

// FileStore keeps all keys in a single JSON document on disk, rewritten
// wholesale on every mutation. Writes go through a temp file and rename so
// a crash mid-write can never leave the document partially written.
//
// When an Encryptor is provided the whole document is encrypted before it
// touches disk.
type FileStore struct {
	path      string
	encryptor report.Encryptor
	mu        sync.Mutex
}

// NewFileStore creates a file store at path. encryptor may be nil for
// plaintext storage.
func NewFileStore(path string, encryptor report.Encryptor) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	return &FileStore{path: path, encryptor: encryptor}, nil
}

// Get returns the value for key, or (nil, nil) if absent.
func (s *FileStore) Get(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	value, ok := doc[key]
	if !ok {
		return nil, nil
	}
	return value, nil
}

func (s *FileStore) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	if !json.Valid(value) {
		return fmt.Errorf("value for %q is not valid JSON", key)
	}
	doc[key] = json.RawMessage(value)
	return s.save(doc)
}

func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := doc[key]; !ok {
		return nil
	}
	delete(doc, key)
	return s.save(doc)
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) load() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]json.RawMessage), nil
		}
		return nil, fmt.Errorf("reading store file: %w", err)
	}

	if s.encryptor != nil {
		var plain bytes.Buffer
		if err := s.encryptor.Decrypt(bytes.NewReader(data), &plain); err != nil {
			return nil, fmt.Errorf("decrypting store file: %w", err)
		}
		data = plain.Bytes()
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding store file: %w", err)
	}
	if doc == nil {
		doc = make(map[string]json.RawMessage)
	}
	return doc, nil
}

// save writes the document using atomic write (temp file + rename).
func (s *FileStore) save(doc map[string]json.RawMessage) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding store file: %w", err)
	}

	if s.encryptor != nil {
		var sealed bytes.Buffer
		if err := s.encryptor.Encrypt(bytes.NewReader(data), &sealed); err != nil {
			return fmt.Errorf("encrypting store file: %w", err)
		}
		data = sealed.Bytes()
	}

	// Create temp file in the same directory to ensure atomic rename works
	dir := filepath.Dir(s.path)
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}
