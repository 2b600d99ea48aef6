package display

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/i474232898/weatherpi/internal/common"
)

// DefaultConfigFile is the document path used when none is configured.
const DefaultConfigFile = "config.json"

// Provider supplies the current display document.
type Provider interface {
	Load(ctx context.Context) (Document, error)
}

// HTTPProvider fetches the document from a config server.
type HTTPProvider struct {
	url    string
	client *http.Client
}

// NewHTTPProvider creates a provider reading from url.
func NewHTTPProvider(client *http.Client, url string) *HTTPProvider {
	return &HTTPProvider{url: url, client: client}
}

func (p *HTTPProvider) Load(ctx context.Context) (Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return Document{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return Document{}, fmt.Errorf("get display config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Document{}, fmt.Errorf("get display config: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Document{}, fmt.Errorf("read display config: %w", err)
	}
	return Parse(data)
}

// FileProvider reads and writes the document as a local JSON file.
// Save replaces the file atomically so a concurrent Load never sees a partial document.
type FileProvider struct {
	mu   sync.Mutex
	path string
}

// NewFileProvider creates a provider backed by path.
func NewFileProvider(path string) *FileProvider {
	if path == "" {
		path = DefaultConfigFile
	}
	return &FileProvider{path: path}
}

func (p *FileProvider) Load(ctx context.Context) (Document, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return Document{}, fmt.Errorf("read display config: %w", err)
	}
	return Parse(data)
}

// Save validates doc and writes it indented with two spaces.
func (p *FileProvider) Save(ctx context.Context, doc Document) error {
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("invalid display config: %w", err)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode display config: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return common.WriteFileAtomic(p.path, data)
}
