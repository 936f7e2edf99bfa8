package icloud

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"snapsync/internal/models"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"
)

const (
	// DefaultEndpoint is the iCloud CalDAV server.
	DefaultEndpoint = "https://caldav.icloud.com/"

	partStatAccepted = "ACCEPTED"
)

// ErrNotInvited is returned by MarkAttending when the configured attendee is
// not on the event.
var ErrNotInvited = errors.New("attendee is not invited to this event")

// userAgentTransport adds a User-Agent header to each request.
type userAgentTransport struct {
	Transport http.RoundTripper
}

// RoundTrip adds required headers to each request.
func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", "snapsync/1.0")
	return t.Transport.RoundTrip(req)
}

// calendarStore is the subset of the CalDAV client the destination needs.
type calendarStore interface {
	QueryCalendar(ctx context.Context, calendar string, query *caldav.CalendarQuery) ([]caldav.CalendarObject, error)
	GetCalendarObject(ctx context.Context, path string) (*caldav.CalendarObject, error)
	PutCalendarObject(ctx context.Context, path string, cal *ical.Calendar) (*caldav.CalendarObject, error)
}

// CalDAVClient is a sync destination backed by one CalDAV calendar (iCloud
// by default). The member is identified by their attendee email address.
type CalDAVClient struct {
	store        calendarStore
	logger       *slog.Logger
	calendarPath string
	email        string
	horizon      time.Duration
	location     *time.Location
}

// NewClient connects to endpoint and locates the calendar named calendarName.
func NewClient(ctx context.Context, logger *slog.Logger, endpoint, username, password, calendarName, attendeeEmail string, horizonDays int) (*CalDAVClient, error) {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	httpClient := &http.Client{Transport: &userAgentTransport{Transport: http.DefaultTransport}}

	caldavClient, err := caldav.NewClient(webdav.HTTPClientWithBasicAuth(httpClient, username, password), endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create caldav client: %w", err)
	}

	logger.Info("Finding CalDAV calendar", "calendarName", calendarName)
	calendarPath, err := findCalendar(ctx, caldavClient, calendarName)
	if err != nil {
		return nil, fmt.Errorf("could not find calendar '%s': %w", calendarName, err)
	}
	logger.Info("Successfully found CalDAV calendar", "path", calendarPath)

	return newClient(caldavClient, logger, calendarPath, attendeeEmail, horizonDays), nil
}

func newClient(store calendarStore, logger *slog.Logger, calendarPath, email string, horizonDays int) *CalDAVClient {
	return &CalDAVClient{
		store:        store,
		logger:       logger,
		calendarPath: calendarPath,
		email:        email,
		horizon:      time.Duration(horizonDays) * 24 * time.Hour,
		location:     time.Local,
	}
}

// ListUpcomingEvents queries events overlapping [now, now+horizon] on which
// the configured email is an attendee. Recurring series are skipped.
func (c *CalDAVClient) ListUpcomingEvents(ctx context.Context, now time.Time) ([]models.EventCandidate, error) {
	query := &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name:     ical.CompCalendar,
			AllProps: true,
			AllComps: true,
		},
		CompFilter: caldav.CompFilter{
			Name: ical.CompCalendar,
			Comps: []caldav.CompFilter{{
				Name:  ical.CompEvent,
				Start: now,
				End:   now.Add(c.horizon),
			}},
		},
	}

	objects, err := c.store.QueryCalendar(ctx, c.calendarPath, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query calendar: %w", err)
	}
	c.logger.Info("Successfully fetched events from CalDAV", "count", len(objects), "path", c.calendarPath)
	return c.toCandidates(objects), nil
}

// toCandidates converts calendar objects to sync candidates. The object path
// is the candidate ID.
func (c *CalDAVClient) toCandidates(objects []caldav.CalendarObject) []models.EventCandidate {
	var candidates []models.EventCandidate
	for _, obj := range objects {
		if obj.Data == nil {
			continue
		}
		events := obj.Data.Events()
		if len(events) != 1 || events[0].Props.Get(ical.PropRecurrenceRule) != nil {
			c.logger.Debug("Skipping recurring or multi-event object", "path", obj.Path)
			continue
		}
		ev := events[0]

		attendee := findAttendee(ev.Component, c.email)
		if attendee == nil {
			continue
		}

		title, _ := ev.Props.Text(ical.PropSummary)
		start, err := ev.DateTimeStart(c.location)
		if err != nil {
			c.logger.Warn("Unparseable start time, skipping", "path", obj.Path, "error", err)
			continue
		}
		end, err := ev.DateTimeEnd(c.location)
		if err != nil {
			c.logger.Warn("Unparseable end time, skipping", "path", obj.Path, "error", err)
			continue
		}
		tr, err := models.NewTimeRange(start, end)
		if err != nil {
			c.logger.Warn("Invalid event times, skipping", "path", obj.Path, "error", err)
			continue
		}

		candidates = append(candidates, models.EventCandidate{
			ID:        obj.Path,
			Title:     title,
			Range:     tr,
			Attending: strings.EqualFold(attendee.Params.Get(ical.ParamParticipationStatus), partStatAccepted),
		})
	}
	return candidates
}

// MarkAttending re-reads the object at eventID, sets the attendee's PARTSTAT
// to ACCEPTED and writes it back.
func (c *CalDAVClient) MarkAttending(ctx context.Context, eventID string) error {
	obj, err := c.store.GetCalendarObject(ctx, eventID)
	if err != nil {
		return fmt.Errorf("failed to retrieve event: %w", err)
	}

	changed, err := acceptInvitation(obj.Data, c.email)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	if _, err := c.store.PutCalendarObject(ctx, eventID, obj.Data); err != nil {
		return fmt.Errorf("failed to update event on CalDAV server: %w", err)
	}
	c.logger.Debug("Updated CalDAV event", "path", eventID)
	return nil
}

// acceptInvitation marks email as accepted on every VEVENT of cal. It
// reports whether anything changed.
func acceptInvitation(cal *ical.Calendar, email string) (bool, error) {
	if cal == nil {
		return false, errors.New("calendar object has no data")
	}

	invited, changed := false, false
	for _, child := range cal.Children {
		if child.Name != ical.CompEvent {
			continue
		}
		attendee := findAttendee(child, email)
		if attendee == nil {
			continue
		}
		invited = true
		if !strings.EqualFold(attendee.Params.Get(ical.ParamParticipationStatus), partStatAccepted) {
			if attendee.Params == nil {
				attendee.Params = make(ical.Params)
			}
			attendee.Params.Set(ical.ParamParticipationStatus, partStatAccepted)
			changed = true
		}
	}
	if !invited {
		return false, ErrNotInvited
	}
	return changed, nil
}

// findAttendee returns the ATTENDEE property of comp addressed to email.
func findAttendee(comp *ical.Component, email string) *ical.Prop {
	attendees := comp.Props[ical.PropAttendee]
	for i := range attendees {
		addr := strings.TrimPrefix(strings.ToLower(attendees[i].Value), "mailto:")
		if strings.EqualFold(addr, email) {
			return &attendees[i]
		}
	}
	return nil
}

// findCalendar discovers the user's calendars and returns the path of the one with the matching name.
func findCalendar(ctx context.Context, client *caldav.Client, name string) (string, error) {
	principalPath, err := client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to find principal path: %w", err)
	}

	homeSetPath, err := client.FindCalendarHomeSet(ctx, principalPath)
	if err != nil {
		return "", fmt.Errorf("failed to find calendar home set: %w", err)
	}

	calendars, err := client.FindCalendars(ctx, homeSetPath)
	if err != nil {
		return "", fmt.Errorf("failed to find calendars: %w", err)
	}

	for _, cal := range calendars {
		if cal.Name == name {
			return cal.Path, nil
		}
	}

	return "", fmt.Errorf("no calendar found with name '%s'", name)
}
