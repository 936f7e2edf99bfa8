package google

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const eventsPage = `{"items":[
	{"id":"accepted","summary":"Practice","start":{"dateTime":"2024-01-10T10:00:00-05:00"},"end":{"dateTime":"2024-01-10T11:00:00-05:00"},
	 "attendees":[{"email":"me@example.com","self":true,"responseStatus":"accepted"}]},
	{"id":"pending","summary":"Game","start":{"dateTime":"2024-01-11T10:00:00-05:00"},"end":{"dateTime":"2024-01-11T12:00:00-05:00"},
	 "attendees":[{"email":"coach@example.com","organizer":true},{"email":"me@example.com","self":true,"responseStatus":"needsAction"}]},
	{"id":"allday","summary":"Tournament","start":{"date":"2024-01-12"},"end":{"date":"2024-01-13"}},
	{"id":"stranger","summary":"Someone else","start":{"dateTime":"2024-01-11T10:00:00Z"},"end":{"dateTime":"2024-01-11T11:00:00Z"},
	 "attendees":[{"email":"other@example.com","responseStatus":"accepted"}]},
	{"id":"mine","summary":"My own","start":{"dateTime":"2024-01-14T10:00:00Z"},"end":{"dateTime":"2024-01-14T11:00:00Z"},
	 "organizer":{"email":"me@example.com","self":true}}
]}`

type fakeCalendar struct {
	srv     *httptest.Server
	patched []*calendar.Event
	query   map[string]string
}

func newFakeCalendar(t *testing.T) (*fakeCalendar, *CalendarClient) {
	t.Helper()
	fc := &fakeCalendar{query: map[string]string{}}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /calendars/primary/events", func(w http.ResponseWriter, r *http.Request) {
		for k := range r.URL.Query() {
			fc.query[k] = r.URL.Query().Get(k)
		}
		_, _ = io.WriteString(w, eventsPage)
	})
	mux.HandleFunc("GET /calendars/primary/events/{id}", func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("id") {
		case "pending":
			_, _ = io.WriteString(w, `{"id":"pending","attendees":[{"email":"coach@example.com","organizer":true},{"email":"me@example.com","self":true,"responseStatus":"needsAction"}]}`)
		case "accepted":
			_, _ = io.WriteString(w, `{"id":"accepted","attendees":[{"email":"me@example.com","self":true,"responseStatus":"accepted"}]}`)
		case "stranger":
			_, _ = io.WriteString(w, `{"id":"stranger","attendees":[{"email":"other@example.com"}]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	mux.HandleFunc("PATCH /calendars/primary/events/{id}", func(w http.ResponseWriter, r *http.Request) {
		var ev calendar.Event
		_ = json.NewDecoder(r.Body).Decode(&ev)
		fc.patched = append(fc.patched, &ev)
		_, _ = io.WriteString(w, `{}`)
	})
	mux.HandleFunc("GET /users/me/calendarList", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"items":[{"id":"primary","summary":"Me"},{"id":"team@group.calendar.google.com","summary":"Team"}]}`)
	})
	fc.srv = httptest.NewServer(mux)
	t.Cleanup(fc.srv.Close)

	svc, err := calendar.NewService(context.Background(),
		option.WithHTTPClient(fc.srv.Client()),
		option.WithEndpoint(fc.srv.URL+"/"))
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return fc, NewClientWithService(svc, logger, "primary", 7)
}

func TestListUpcomingEvents(t *testing.T) {
	fc, c := newFakeCalendar(t)
	now, _ := time.Parse(time.RFC3339, "2024-01-10T00:00:00Z")

	got, err := c.ListUpcomingEvents(t.Context(), now)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "accepted", got[0].ID)
	assert.True(t, got[0].Attending)
	assert.Equal(t, "pending", got[1].ID)
	assert.False(t, got[1].Attending)
	assert.Equal(t, "Game", got[1].Title)
	assert.Equal(t, "mine", got[2].ID)
	assert.True(t, got[2].Attending)

	wantStart, _ := time.Parse(time.RFC3339, "2024-01-11T15:00:00Z")
	assert.True(t, wantStart.Equal(got[1].Range.Start))

	assert.Equal(t, "2024-01-10T00:00:00Z", fc.query["timeMin"])
	assert.Equal(t, "2024-01-17T00:00:00Z", fc.query["timeMax"])
	assert.Equal(t, "true", fc.query["singleEvents"])
}

func TestMarkAttending(t *testing.T) {
	fc, c := newFakeCalendar(t)

	require.NoError(t, c.MarkAttending(t.Context(), "pending"))
	require.Len(t, fc.patched, 1)
	require.Len(t, fc.patched[0].Attendees, 2)
	assert.Equal(t, "accepted", fc.patched[0].Attendees[1].ResponseStatus)
	assert.Equal(t, "coach@example.com", fc.patched[0].Attendees[0].Email, "other attendees are sent back untouched")
}

func TestMarkAttending_AlreadyAccepted(t *testing.T) {
	fc, c := newFakeCalendar(t)

	require.NoError(t, c.MarkAttending(t.Context(), "accepted"))
	assert.Empty(t, fc.patched)
}

func TestMarkAttending_Errors(t *testing.T) {
	_, c := newFakeCalendar(t)

	assert.ErrorIs(t, c.MarkAttending(t.Context(), "stranger"), ErrNotInvited)
	assert.Error(t, c.MarkAttending(t.Context(), "missing"))
}

func TestListCalendars(t *testing.T) {
	_, c := newFakeCalendar(t)

	got, err := c.ListCalendars(t.Context())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"primary": "Me", "team@group.calendar.google.com": "Team"}, got)
}

func TestSaveTokenRoundTrip(t *testing.T) {
	path := t.TempDir() + "/token-google.json"
	require.NoError(t, SaveToken(path, &oauth2.Token{AccessToken: "access", RefreshToken: "refresh"}))

	got, err := tokenFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "refresh", got.RefreshToken)
}
