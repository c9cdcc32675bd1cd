package metadata

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"svw.info/propagenda/internal/domain"
)

const defaultFetchTimeout = 10 * time.Second

// HTTP fetches agendas.json from a URL.
type HTTP struct {
	URL    string
	Client *http.Client
}

// NewHTTP returns an HTTP source; a nil client gets a bounded default.
func NewHTTP(url string, client *http.Client) *HTTP {
	if client == nil {
		client = &http.Client{Timeout: defaultFetchTimeout}
	}
	return &HTTP{URL: url, Client: client}
}

func (s *HTTP) Load(ctx context.Context) ([]domain.Agenda, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch agendas: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch agendas: %s", resp.Status)
	}
	return decode(resp.Body)
}

func (s *HTTP) String() string { return s.URL }
