package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/Sternrassler/artic-table/internal/testutil"
	"github.com/Sternrassler/artic-table/pkg/artwork"
	"github.com/Sternrassler/artic-table/pkg/table"
)

var envKeys = []string{
	"ARTIC_BASE_URL", "ARTIC_USER_AGENT", "ARTIC_PAGE_SIZE", "ARTIC_CONCURRENCY",
	"ARTIC_FETCH_TIMEOUT", "REDIS_URL", "ARTIC_CACHE_TTL", "LOG_LEVEL",
	"LOG_PRETTY", "LOG_FILE", "METRICS_ADDR",
}

// run executes the command tree against mock and returns stdout.
func run(t *testing.T, mock *testutil.MockArtic, args ...string) (string, string, error) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}

	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--base-url", mock.URL(), "--log-level", "warn"}, args...))

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestPageCmd(t *testing.T) {
	mock := testutil.NewMockArtic(testutil.Artworks(12))
	defer mock.Close()

	out, _, err := run(t, mock, "page", "--page", "0", "--size", "5")
	if err != nil {
		t.Fatalf("page error = %v", err)
	}

	for _, want := range []string{"TITLE", "Artwork 1", "Artwork 5", "Artist 3", "page 1 of 3 · 12 records"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Artwork 6") {
		t.Errorf("output should hold one page only:\n%s", out)
	}

	reqs := mock.Requests()
	if len(reqs) != 1 || reqs[0].Page != 1 || reqs[0].Limit != 5 {
		t.Errorf("requests = %+v, want one request for external page 1 with limit 5", reqs)
	}
}

func TestPageCmd_JSON(t *testing.T) {
	mock := testutil.NewMockArtic(testutil.Artworks(12))
	defer mock.Close()

	out, _, err := run(t, mock, "page", "--page", "2", "--size", "5", "--json")
	if err != nil {
		t.Fatal(err)
	}

	var got pageOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if got.Page != 2 || got.PageCount != 3 || got.Total != 12 || len(got.Records) != 2 {
		t.Errorf("got %+v", got)
	}
	if got.Records[0].Title != "Artwork 11" {
		t.Errorf("first record = %q, want Artwork 11", got.Records[0].Title)
	}
}

func TestPageCmd_JSONMissingDates(t *testing.T) {
	mock := testutil.NewMockArtic([]artwork.Record{
		{Title: "Dated", DateStart: artwork.Year(0), DateEnd: artwork.Year(0)},
		{Title: "Undated"},
	})
	defer mock.Close()

	out, _, err := run(t, mock, "page", "--json")
	if err != nil {
		t.Fatal(err)
	}

	var got struct {
		Records []map[string]any `json:"records"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if len(got.Records) != 2 {
		t.Fatalf("records = %d, want 2", len(got.Records))
	}
	if v, ok := got.Records[0]["date_start"]; !ok || v != float64(0) {
		t.Errorf("year 0 date_start = %v, want 0", v)
	}
	if v, ok := got.Records[1]["date_start"]; !ok || v != nil {
		t.Errorf("missing date_start = %v, want null", v)
	}
}

func TestPageCmd_SizeFromEnv(t *testing.T) {
	mock := testutil.NewMockArtic(testutil.Artworks(30))
	defer mock.Close()

	for _, k := range envKeys {
		t.Setenv(k, "")
	}
	t.Setenv("ARTIC_PAGE_SIZE", "10")

	cmd := NewRootCmd()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--base-url", mock.URL(), "page"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}

	if reqs := mock.Requests(); len(reqs) != 1 || reqs[0].Limit != 10 {
		t.Errorf("requests = %+v, want limit 10", reqs)
	}
}

func TestPageCmd_UpstreamError(t *testing.T) {
	mock := testutil.NewMockArtic(testutil.Artworks(12))
	defer mock.Close()
	mock.FailPage(1, 503)

	_, _, err := run(t, mock, "page")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "fetch page 0") {
		t.Errorf("error = %v", err)
	}
}

func TestSelectCmd(t *testing.T) {
	mock := testutil.NewMockArtic(testutil.Artworks(30))
	defer mock.Close()

	out, _, err := run(t, mock, "select", "12", "--page", "2", "--size", "5")
	if err != nil {
		t.Fatalf("select error = %v", err)
	}

	if !strings.Contains(out, "Selected 12 of 12 rows · fetched pages [3 4]") {
		t.Errorf("summary missing:\n%s", out)
	}
	for _, want := range []string{"Artwork 11", "Artwork 22"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(out, "Artwork 23") {
		t.Errorf("selection exceeded the requested count:\n%s", out)
	}
}

func TestSelectCmd_JSON(t *testing.T) {
	mock := testutil.NewMockArtic(testutil.Artworks(30))
	defer mock.Close()

	out, _, err := run(t, mock, "select", "7", "--json")
	if err != nil {
		t.Fatal(err)
	}

	var got selectOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if got.Requested != 7 || got.Selected != 7 || len(got.Records) != 7 {
		t.Errorf("got %+v", got)
	}
	if len(got.Reused) != 1 || got.Reused[0] != 0 {
		t.Errorf("reused = %v, want [0]", got.Reused)
	}
	if got.Failed == nil {
		t.Error("failed_pages should be an empty list, not null")
	}
}

func TestSelectCmd_FailedPageSkipped(t *testing.T) {
	mock := testutil.NewMockArtic(testutil.Artworks(30))
	defer mock.Close()
	mock.FailPage(2, 500)

	out, _, err := run(t, mock, "select", "15")
	if err != nil {
		t.Fatalf("select error = %v", err)
	}
	if !strings.Contains(out, "Selected 10 of 15 rows") || !strings.Contains(out, "failed pages [1]") {
		t.Errorf("summary should report the skipped page:\n%s", out)
	}
}

func TestSelectCmd_InvalidCount(t *testing.T) {
	mock := testutil.NewMockArtic(testutil.Artworks(12))
	defer mock.Close()

	tests := []struct {
		arg     string
		wantErr error
		wantMsg string
	}{
		{"0", table.ErrInvalidCount, ""},
		{"13", table.ErrInvalidCount, ""},
		{"many", nil, "is not a number"},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			_, _, err := run(t, mock, "select", tt.arg)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %v, want containing %q", err, tt.wantMsg)
			}
		})
	}
}

func TestInvalidConfig(t *testing.T) {
	mock := testutil.NewMockArtic(nil)
	defer mock.Close()

	_, _, err := run(t, mock, "page", "--base-url", "")
	if err == nil || !strings.Contains(err.Error(), "base url is required") {
		t.Errorf("error = %v, want base url validation error", err)
	}
}

func TestRedisUnavailable_ContinuesWithoutCache(t *testing.T) {
	mock := testutil.NewMockArtic(testutil.Artworks(12))
	defer mock.Close()

	out, stderr, err := run(t, mock, "--redis", "127.0.0.1:1", "page")
	if err != nil {
		t.Fatalf("page error = %v", err)
	}
	if !strings.Contains(out, "Artwork 1") {
		t.Errorf("output missing rows:\n%s", out)
	}
	if !strings.Contains(stderr, "continuing without response cache") {
		t.Errorf("expected a warning about Redis, got %q", stderr)
	}
}

func TestMetricsAddr(t *testing.T) {
	mock := testutil.NewMockArtic(testutil.Artworks(12))
	defer mock.Close()

	_, _, err := run(t, mock, "--metrics-addr", "127.0.0.1:0", "page")
	if err != nil {
		t.Fatalf("page error = %v", err)
	}
}

func TestIsBrowse(t *testing.T) {
	root := NewRootCmd()
	if !isBrowse(root) {
		t.Error("root command runs the browser")
	}
	for _, c := range root.Commands() {
		if got, want := isBrowse(c), c.Name() == "browse"; got != want {
			t.Errorf("isBrowse(%s) = %v, want %v", c.Name(), got, want)
		}
	}
}
