package docgraph

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// httpTimeout is the bounded-time network operation spec.md §4.3/§5
// describes: "the only bounded-time network operation carries a 30-second
// timeout".
const httpTimeout = 30 * time.Second

// FetchSource loads the raw bytes of id, either from the local filesystem or
// via an HTTP(S) GET, per spec.md §6. A non-2xx HTTP status is a failure;
// the body is otherwise read and returned verbatim (UTF-8 decoding is the
// lexer's concern, not this function's).
func FetchSource(ctx context.Context, id DocumentID) ([]byte, error) {
	if id.IsRemote() {
		return fetchHTTP(ctx, string(id))
	}
	return os.ReadFile(string(id))
}

func fetchHTTP(ctx context.Context, uri string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, httpTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("docgraph: building request for %s: %w", uri, err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("docgraph: fetching %s: %w", uri, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("docgraph: fetching %s: unexpected status %s", uri, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("docgraph: reading body of %s: %w", uri, err)
	}
	return body, nil
}
