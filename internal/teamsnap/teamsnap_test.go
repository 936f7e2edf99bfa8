package teamsnap

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"snapsync/internal/hypermedia"
)

// fakeGraph serves a minimal TeamSnap link graph. Paths map to raw
// collection bodies; "{base}" is replaced with the server URL.
type fakeGraph struct {
	srv    *httptest.Server
	bodies map[string]string
	status map[string]int
	hits   map[string]int
}

func newFakeGraph(t *testing.T) *fakeGraph {
	t.Helper()
	g := &fakeGraph{
		bodies: map[string]string{},
		status: map[string]int{},
		hits:   map[string]int{},
	}
	g.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Path
		if r.URL.RawQuery != "" {
			key += "?" + r.URL.RawQuery
		}
		g.hits[key]++
		if code, ok := g.status[key]; ok {
			w.WriteHeader(code)
			return
		}
		body, ok := g.bodies[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, strings.ReplaceAll(body, "{base}", g.srv.URL))
	}))
	t.Cleanup(g.srv.Close)

	g.bodies["/v3"] = `{"collection":{"href":"{base}/v3","links":[
		{"rel":"me","href":"{base}/me"},
		{"rel":"members","href":"{base}/members"},
		{"rel":"availabilities","href":"{base}/availabilities"},
		{"rel":"events","href":"{base}/events"},
		{"rel":"some_future_rel","href":"{base}/future"}
	]}}`
	return g
}

func (g *fakeGraph) client() *Client {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewClient(hypermedia.NewClient(g.srv.Client(), logger), g.srv.URL+"/v3", logger)
}

func (g *fakeGraph) url(path string) string {
	return g.srv.URL + path
}

// eventBody renders a single-event collection. Empty strings become null.
func eventBody(arrival, end, offset string) string {
	val := func(s string) string {
		if s == "" {
			return "null"
		}
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf(`{"collection":{"items":[{"href":"x","data":[
		{"name":"id","value":1},
		{"name":"arrival_date","value":%s},
		{"name":"end_date","value":%s},
		{"name":"time_zone_offset","value":%s}
	],"links":[]}]}}`, val(arrival), val(end), val(offset))
}
