package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ka2n/csvboard/api"
	"github.com/ka2n/csvboard/api/dataset"
	"github.com/morikuni/failure/v2"
)

func TestDashboardURL(t *testing.T) {
	tests := []struct {
		addr    string
		tab     string
		want    string
		wantErr bool
	}{
		{addr: ":5055", want: "http://localhost:5055/"},
		{addr: "0.0.0.0:8080", tab: "bestput", want: "http://localhost:8080/#bestput"},
		{addr: "[::]:8080", want: "http://localhost:8080/"},
		{addr: "127.0.0.1:9000", want: "http://127.0.0.1:9000/"},
		{addr: "dash.local:80", tab: "ivspike", want: "http://dash.local:80/#ivspike"},
		{addr: "5055", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			got, err := dashboardURL(tt.addr, tt.tab)
			if tt.wantErr {
				if !failure.Is(err, InvalidListen) {
					t.Fatalf("dashboardURL(%q) error = %v, want InvalidListen", tt.addr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("dashboardURL(%q) unexpected error: %v", tt.addr, err)
			}
			if got != tt.want {
				t.Errorf("dashboardURL(%q, %q) = %q, want %q", tt.addr, tt.tab, got, tt.want)
			}
		})
	}
}

func TestPanelMarkdown(t *testing.T) {
	p := api.Panel{
		ID:          "bestput",
		Title:       "Best Put Option",
		URL:         "https://example.com/data/best_put.csv",
		LastUpdated: "2025-08-24 10:20 ET",
		FetchedAt:   "2025-08-24 11:00 ET",
		Table: &dataset.Table{
			Header: []string{"symbol", "premium"},
			Rows:   [][]string{{"AAPL", "1.25"}, {"MSFT", "2.50"}},
		},
	}

	want := "# Best Put Option\n\n" +
		"Last updated: **2025-08-24 10:20 ET** · Fetched: 2025-08-24 11:00 ET · Source: <https://example.com/data/best_put.csv>\n\n" +
		"| symbol | premium |\n" +
		"| --- | --- |\n" +
		"| AAPL | 1.25 |\n"
	got := panelMarkdown(p, 1)
	if diff := cmp.Diff(want+"\n_1 of 2 rows shown_\n", got); diff != "" {
		t.Errorf("panelMarkdown() mismatch (-want +got):\n%s", diff)
	}

	if got := panelMarkdown(p, 0); strings.Contains(got, "rows shown") || !strings.Contains(got, "| MSFT | 2.50 |") {
		t.Errorf("panelMarkdown(p, 0) should contain every row without a note:\n%s", got)
	}

	if got := panelMarkdown(api.Panel{Title: "empty"}, 0); got != "" {
		t.Errorf("panelMarkdown() without table = %q, want empty", got)
	}
}

func TestTabFlag(t *testing.T) {
	var f tabFlag
	if f.IsSet {
		t.Fatal("zero tabFlag should not be set")
	}
	if err := f.Set(""); err != nil {
		t.Fatal(err)
	}
	if !f.IsSet || f.Value != "" {
		t.Errorf("after Set(\"\"): %+v", f)
	}
	if err := f.Set("ivspike"); err != nil {
		t.Fatal(err)
	}
	if f.String() != "ivspike" || f.Type() != "source-id" {
		t.Errorf("unexpected flag state: %+v", f)
	}
}

// writeTestConfig starts a fake raw host and commit API and writes a config
// file pointing at it.
func writeTestConfig(t *testing.T) string {
	t.Helper()
	for _, k := range []string{"RAW_BASE", "GITHUB_TOKEN", "CSVBOARD_BASE_URL", "CSVBOARD_GITHUB_TOKEN", "CSVBOARD_GITHUB_API_URL"} {
		t.Setenv(k, "")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/data/commits", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("path") != "exports/report.csv" {
			fmt.Fprint(w, `[]`)
			return
		}
		fmt.Fprint(w, `[{"commit":{"committer":{"date":"2025-01-15T17:05:09Z"}}}]`)
	})
	mux.HandleFunc("/acme/data/main/exports/log.csv", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Last-Modified", "Sun, 24 Aug 2025 14:20:31 GMT")
		fmt.Fprint(w, "ts,event\n1,start\n")
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	cfg := fmt.Sprintf(`base_url: %[1]s/acme/data/main/exports
github_api_url: %[1]s
sources:
  - id: report
    title: Report
    file: report.csv
  - id: log
    file: log.csv
  - id: gone
    file: gone.csv
`, srv.URL)
	path := filepath.Join(t.TempDir(), "csvboard.yaml")
	if err := os.WriteFile(path, []byte(cfg), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestFreshnessCommand(t *testing.T) {
	path := writeTestConfig(t)

	out, err := execute(t, "freshness", "--json", "--config", path)
	if err != nil {
		t.Fatalf("freshness: %v", err)
	}

	var got []freshnessLine
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	for i := range got {
		got[i].URL = filepath.Base(got[i].URL)
	}
	want := []freshnessLine{
		{ID: "report", LastUpdated: "2025-01-15 12:05 ET", Signal: "commit-history", URL: "report.csv"},
		{ID: "log", LastUpdated: "2025-08-24 10:20 ET", Signal: "metadata-probe", URL: "log.csv"},
		{ID: "gone", LastUpdated: "unknown", Signal: "none", URL: "gone.csv"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("freshness mismatch (-want +got):\n%s", diff)
	}

	out, err = execute(t, "freshness", "--json", "--config", path, "log", "log")
	if err != nil {
		t.Fatalf("freshness log: %v", err)
	}
	got = nil
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if len(got) != 1 || got[0].ID != "log" {
		t.Errorf("expected only the log source, got %+v", got)
	}

	_, err = execute(t, "freshness", "--config", path, "nope")
	if !failure.Is(err, api.ErrUnknownSource) {
		t.Errorf("unknown id error = %v, want ErrUnknownSource", err)
	}
}

func TestSourcesCommand(t *testing.T) {
	path := writeTestConfig(t)

	out, err := execute(t, "sources", "--config", path)
	if err != nil {
		t.Fatalf("sources: %v", err)
	}
	for _, want := range []string{
		"Repository: acme/data@main (exports)",
		"report  Report",
		"/acme/data/main/exports/gone.csv",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestShowCommandRaw(t *testing.T) {
	path := writeTestConfig(t)

	out, err := execute(t, "show", "log", "--raw", "--config", path)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	for _, want := range []string{
		"# log.csv",
		"Last updated: **2025-08-24 10:20 ET**",
		"| ts | event |",
		"| 1 | start |",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if _, err := execute(t, "show", "gone", "--raw", "--config", path); err == nil {
		t.Error("show of a missing file should fail")
	}
}
