package netmon

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

// CheckResult is the outcome of one diagnostic check.
type CheckResult struct {
	Name   string
	Pass   bool
	Detail string
}

// Diagnostic runs ordered connectivity and asset checks to help pin down
// why uploads fail in the field.
type Diagnostic struct {
	ProbeURL  string
	UploadURL string
	Client    *http.Client
}

// Run executes all checks. photoURI, when non-empty, adds a local file
// check for the asset about to be uploaded.
func (d *Diagnostic) Run(ctx context.Context, photoURI string) []CheckResult {
	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}

	results := []CheckResult{
		checkEndpoint(ctx, client, "internet access", http.MethodHead, d.ProbeURL, 5*time.Second),
		checkEndpoint(ctx, client, "upload endpoint access", http.MethodOptions, d.UploadURL, 10*time.Second),
	}

	if photoURI != "" {
		results = append(results, checkPhotoFile(photoURI))
	}

	return results
}

func checkEndpoint(ctx context.Context, client *http.Client, name, method, url string, timeout time.Duration) CheckResult {
	if url == "" {
		return CheckResult{Name: name, Pass: false, Detail: "no URL configured"}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return CheckResult{Name: name, Pass: false, Detail: err.Error()}
	}
	res, err := client.Do(req)
	if err != nil {
		return CheckResult{Name: name, Pass: false, Detail: err.Error()}
	}
	res.Body.Close()

	return CheckResult{Name: name, Pass: true, Detail: fmt.Sprintf("status %d", res.StatusCode)}
}

func checkPhotoFile(uri string) CheckResult {
	const name = "photo file"

	path := uri
	if after, ok := strings.CutPrefix(path, "file://"); ok {
		path = after
	}

	info, err := os.Stat(path)
	if err != nil {
		return CheckResult{Name: name, Pass: false, Detail: err.Error()}
	}
	if info.IsDir() {
		return CheckResult{Name: name, Pass: false, Detail: "path is a directory"}
	}
	if info.Size() == 0 {
		return CheckResult{Name: name, Pass: false, Detail: "file is empty"}
	}

	return CheckResult{Name: name, Pass: true, Detail: fmt.Sprintf("%d bytes", info.Size())}
}
