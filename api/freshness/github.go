package freshness

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ka2n/csvboard/api/locator"
	"github.com/morikuni/failure/v2"
)

// githubCommitResponse is one element of GET /repos/{owner}/{repo}/commits
type githubCommitResponse struct {
	SHA    string `json:"sha"`
	Commit struct {
		Author    *githubSignature `json:"author"`
		Committer *githubSignature `json:"committer"`
	} `json:"commit"`
}

type githubSignature struct {
	Name string `json:"name"`
	Date string `json:"date"`
}

// date prefers the committer date, which is when the change landed on the branch.
func (c githubCommitResponse) date() string {
	if c.Commit.Committer != nil && c.Commit.Committer.Date != "" {
		return c.Commit.Committer.Date
	}
	if c.Commit.Author != nil {
		return c.Commit.Author.Date
	}
	return ""
}

// commitsURL builds the commits endpoint restricted to one path on one branch.
// Query parameters keep the order path, sha, per_page.
func (r *Resolver) commitsURL(addr locator.Address, filename string) string {
	return fmt.Sprintf("%s/repos/%s/%s/commits?path=%s&sha=%s&per_page=1",
		r.apiBaseURL,
		url.PathEscape(addr.Owner),
		url.PathEscape(addr.Repository),
		url.QueryEscape(addr.FilePath(filename)),
		url.QueryEscape(addr.Branch),
	)
}

// fetchCommitTime returns the time of the latest commit touching the file.
func (r *Resolver) fetchCommitTime(ctx context.Context, addr locator.Address, filename string) (time.Time, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	endpoint := r.commitsURL(addr, filename)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return time.Time{}, failure.New(ErrCommitRequestFailed,
			failure.Context{"error": err.Error()},
		)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return time.Time{}, failure.New(ErrCommitRequestFailed,
			failure.Message("Failed to request commit history"),
			failure.Context{"url": endpoint, "error": err.Error()},
		)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return time.Time{}, failure.New(ErrCommitStatus,
			failure.Message("Commit history request was rejected"),
			failure.Context{
				"url":                 endpoint,
				"status":              resp.Status,
				"ratelimit_remaining": resp.Header.Get("X-RateLimit-Remaining"),
			},
		)
	}

	var commits []githubCommitResponse
	if err := json.NewDecoder(resp.Body).Decode(&commits); err != nil {
		return time.Time{}, failure.New(ErrCommitRequestFailed,
			failure.Message("Failed to decode commit history"),
			failure.Context{"url": endpoint, "error": err.Error()},
		)
	}
	if len(commits) == 0 {
		return time.Time{}, failure.New(ErrCommitNotFound,
			failure.Message("No commit touches the file"),
			failure.Context{"path": addr.FilePath(filename), "branch": addr.Branch},
		)
	}

	raw := commits[0].date()
	if raw == "" {
		return time.Time{}, failure.New(ErrCommitDateInvalid,
			failure.Message("Commit has no date"),
			failure.Context{"sha": commits[0].SHA},
		)
	}
	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, failure.New(ErrCommitDateInvalid,
			failure.Message("Commit date is not RFC 3339"),
			failure.Context{"sha": commits[0].SHA, "date": raw},
		)
	}
	return at, nil
}
