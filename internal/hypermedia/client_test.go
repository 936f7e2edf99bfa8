package hypermedia

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const rootBody = `{"collection":{"version":"3.866.0","href":"%s","links":[
	{"rel":"me","href":"%s/me"},
	{"rel":"members","href":"%s/members"},
	{"rel":"brand_new_thing","href":"%s/new"}
]}}`

func newGraph(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/v3", func(w http.ResponseWriter, r *http.Request) {
		u := srv.URL
		_, _ = io.WriteString(w, fmt.Sprintf(rootBody, u+"/v3", u, u, u))
	})
	mux.HandleFunc("/members/search", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("team_id") != "42" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = io.WriteString(w, `{"collection":{"items":[{"href":"x","data":[{"name":"id","value":900001}],"links":[]}]}}`)
	})
	mux.HandleFunc("/forbidden", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Resolve(t *testing.T) {
	srv := newGraph(t)
	c := NewClient(srv.Client(), discardLogger())

	href, err := c.Resolve(context.Background(), srv.URL+"/v3", "members")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/members", href)

	_, err = c.Resolve(context.Background(), srv.URL+"/v3", "availabilities")
	var notFound *LinkNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "availabilities", notFound.Rel)
}

func TestClient_FetchWithParamsUsesSearch(t *testing.T) {
	srv := newGraph(t)
	c := NewClient(srv.Client(), discardLogger())

	coll, err := c.Fetch(context.Background(), srv.URL+"/members", url.Values{"team_id": {"42"}, "user_id": {"7"}})
	require.NoError(t, err)
	require.Len(t, coll.Items, 1)

	id, err := coll.Items[0].String("id")
	require.NoError(t, err)
	assert.Equal(t, "900001", id)
}

func TestClient_FetchNon200(t *testing.T) {
	srv := newGraph(t)
	c := NewClient(srv.Client(), discardLogger())

	_, err := c.Fetch(context.Background(), srv.URL+"/forbidden", nil)
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusForbidden, httpErr.StatusCode)
}

func TestNewBearerClient_SendsAuthorization(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		_, _ = io.WriteString(w, `{"collection":{}}`)
	}))
	defer srv.Close()

	c := NewBearerClient(context.Background(), "s3cret", 0, discardLogger())
	_, err := c.Fetch(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer s3cret", got)
}
