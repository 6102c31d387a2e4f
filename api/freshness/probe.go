package freshness

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/morikuni/failure/v2"
)

// probeModified issues HEAD against fileURL and reads Last-Modified, falling back to Date.
func (r *Resolver) probeModified(ctx context.Context, fileURL string) (time.Time, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, fileURL, nil)
	if err != nil {
		return time.Time{}, failure.New(ErrProbeRequestFailed,
			failure.Context{"error": err.Error()},
		)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return time.Time{}, failure.New(ErrProbeRequestFailed,
			failure.Message("Failed to probe file"),
			failure.Context{"url": fileURL, "error": err.Error()},
		)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return time.Time{}, failure.New(ErrProbeStatus,
			failure.Message("File probe was rejected"),
			failure.Context{"url": fileURL, "status": resp.Status},
		)
	}

	header := "Last-Modified"
	raw := resp.Header.Get(header)
	if raw == "" {
		header = "Date"
		raw = resp.Header.Get(header)
	}
	if raw == "" {
		return time.Time{}, failure.New(ErrProbeHeaderMissing,
			failure.Message("Response has neither Last-Modified nor Date"),
			failure.Context{"url": fileURL},
		)
	}

	at, err := http.ParseTime(raw)
	if err != nil {
		return time.Time{}, failure.New(ErrProbeDateInvalid,
			failure.Message("Unparsable HTTP date"),
			failure.Context{"url": fileURL, "header": header, "value": raw},
		)
	}
	return at, nil
}
