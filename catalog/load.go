package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/goccy/go-json"
)

// Catalog é o conjunto imutável de registros.
type Catalog struct {
	records []Record
}

func New(records []Record) *Catalog {
	return &Catalog{records: append([]Record(nil), records...)}
}

// Records devolve os registros; o slice não deve ser alterado por quem chama.
func (c *Catalog) Records() []Record {
	if c == nil {
		return nil
	}
	return c.records
}

func (c *Catalog) Len() int { return len(c.Records()) }

// Filter aplica os critérios sobre o catálogo inteiro.
func (c *Catalog) Filter(cr Criteria) []Record {
	return Filter(c.Records(), cr)
}

// Parse lê um array JSON de registros.
func Parse(r io.Reader) (*Catalog, error) {
	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return &Catalog{records: records}, nil
}

// Load lê o catálogo de um arquivo local.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Fetch baixa o catálogo de uma URL (ex: raw do GitHub).
func Fetch(ctx context.Context, client *http.Client, url string) (*Catalog, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch catalog: unexpected status %d", resp.StatusCode)
	}
	return Parse(resp.Body)
}

// Open escolhe entre Fetch e Load pelo prefixo da fonte.
func Open(ctx context.Context, client *http.Client, source string) (*Catalog, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return Fetch(ctx, client, source)
	}
	return Load(source)
}
