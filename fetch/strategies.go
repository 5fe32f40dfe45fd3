package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/inkdex/inkdex/core"
)

// Strategy is one way of obtaining an attachment's bytes. Strategies
// return ErrNotApplicable when the attachment lacks what they need, so
// the fetcher can fall through to the next one.
type Strategy interface {
	// Name tags the produced bytes for provenance tracking.
	Name() string

	// Fetch obtains the attachment bytes.
	Fetch(ctx context.Context, att *core.AttachmentRecord) ([]byte, error)
}

// linkStrategy downloads the attachment's resolved source URL.
type linkStrategy struct {
	client *http.Client
}

func (s *linkStrategy) Name() string { return "link" }

func (s *linkStrategy) Fetch(ctx context.Context, att *core.AttachmentRecord) ([]byte, error) {
	if att.SourceURL == "" {
		return nil, ErrNotApplicable
	}
	return httpGet(ctx, s.client, att.SourceURL)
}

// payloadStrategy uses bytes the connector already delivered inline.
type payloadStrategy struct{}

func (s *payloadStrategy) Name() string { return "payload" }

func (s *payloadStrategy) Fetch(ctx context.Context, att *core.AttachmentRecord) ([]byte, error) {
	if len(att.Data) == 0 {
		return nil, ErrNotApplicable
	}
	return att.Data, nil
}

// mediaStrategy constructs a download URL from the service's media
// endpoint and the attachment's media ID.
type mediaStrategy struct {
	client  *http.Client
	baseURL string
}

func (s *mediaStrategy) Name() string { return "media" }

func (s *mediaStrategy) Fetch(ctx context.Context, att *core.AttachmentRecord) ([]byte, error) {
	if att.MediaID == "" || s.baseURL == "" {
		return nil, ErrNotApplicable
	}
	url := strings.TrimSuffix(s.baseURL, "/") + "/" + att.MediaID
	return httpGet(ctx, s.client, url)
}

func httpGet(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrEmptyPayload
	}
	return data, nil
}
