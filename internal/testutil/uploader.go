package testutil

import (
	"context"
	"fmt"
	"sync"

	"reportsync/internal/report"
)

// StubUploader maps photo URIs to scripted outcomes and records every call.
// URIs without a scripted outcome succeed with a generated URL.
type StubUploader struct {
	mu    sync.Mutex
	urls  map[string]string
	errs  map[string]error
	calls []string
}

func NewStubUploader() *StubUploader {
	return &StubUploader{
		urls: make(map[string]string),
		errs: make(map[string]error),
	}
}

// SucceedWith makes Upload return url for the given uri.
func (u *StubUploader) SucceedWith(uri, url string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.urls[uri] = url
	delete(u.errs, uri)
}

// FailWith makes Upload return err for the given uri.
func (u *StubUploader) FailWith(uri string, err error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.errs[uri] = err
	delete(u.urls, uri)
}

func (u *StubUploader) Upload(_ context.Context, uri string) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.calls = append(u.calls, uri)
	if err, ok := u.errs[uri]; ok {
		return "", err
	}
	if url, ok := u.urls[uri]; ok {
		return url, nil
	}
	return fmt.Sprintf("https://cdn.example.com/%d.jpg", len(u.calls)), nil
}

// Calls returns the URIs passed to Upload, in order.
func (u *StubUploader) Calls() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.calls...)
}

var _ report.Uploader = (*StubUploader)(nil)
