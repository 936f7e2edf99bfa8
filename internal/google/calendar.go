package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"snapsync/internal/models"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const (
	credentialsFile  = "credentials.json"
	responseAccepted = "accepted"
)

// ErrNotInvited is returned by MarkAttending when the authenticated user is
// not on the event's attendee list.
var ErrNotInvited = errors.New("authenticated user is not an attendee of this event")

// CalendarClient is a sync destination backed by one Google Calendar.
type CalendarClient struct {
	service    *calendar.Service
	logger     *slog.Logger
	calendarID string
	horizon    time.Duration
}

// NewClient creates a Google Calendar destination using the token stored in
// tokenFile. Run the 'auth google' command first to create it.
func NewClient(ctx context.Context, logger *slog.Logger, clientID, clientSecret, tokenFile, calendarID string, horizonDays int) (*CalendarClient, error) {
	config, err := getOAuthConfig(clientID, clientSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to get OAuth config: %w", err)
	}

	token, err := tokenFromFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("could not load token from %s: %w. Please run the 'auth google' command first", tokenFile, err)
	}

	service, err := calendar.NewService(ctx, option.WithHTTPClient(config.Client(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return NewClientWithService(service, logger, calendarID, horizonDays), nil
}

// NewClientWithService wraps an already configured calendar service.
func NewClientWithService(service *calendar.Service, logger *slog.Logger, calendarID string, horizonDays int) *CalendarClient {
	return &CalendarClient{
		service:    service,
		logger:     logger,
		calendarID: calendarID,
		horizon:    time.Duration(horizonDays) * 24 * time.Hour,
	}
}

// ListUpcomingEvents returns timed events between now and the horizon on
// which the authenticated user is an attendee or the organizer.
func (c *CalendarClient) ListUpcomingEvents(ctx context.Context, now time.Time) ([]models.EventCandidate, error) {
	c.logger.Debug("Fetching upcoming events", "calendarID", c.calendarID, "horizon", c.horizon)

	var items []*calendar.Event
	err := c.service.Events.List(c.calendarID).
		ShowDeleted(false).
		SingleEvents(true).
		TimeMin(now.UTC().Format(time.RFC3339)).
		TimeMax(now.Add(c.horizon).UTC().Format(time.RFC3339)).
		OrderBy("startTime").
		Pages(ctx, func(page *calendar.Events) error {
			items = append(items, page.Items...)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve events: %w", err)
	}

	c.logger.Info("Successfully fetched events from Google Calendar", "count", len(items), "calendarID", c.calendarID)
	return c.toCandidates(items), nil
}

// toCandidates converts Google Calendar events to sync candidates.
func (c *CalendarClient) toCandidates(googleEvents []*calendar.Event) []models.EventCandidate {
	var candidates []models.EventCandidate
	for _, item := range googleEvents {
		// Skip all-day events, they have no start time to match against.
		if item.Start == nil || item.Start.DateTime == "" || item.End == nil || item.End.DateTime == "" {
			continue
		}
		if item.Status == "cancelled" {
			continue
		}

		attending, invited := selfAttendance(item)
		if !invited {
			c.logger.Debug("Not an attendee, skipping", "title", item.Summary, "id", item.Id)
			continue
		}

		startTime, err := time.Parse(time.RFC3339, item.Start.DateTime)
		if err != nil {
			c.logger.Warn("Unparseable start time, skipping", "title", item.Summary, "error", err)
			continue
		}
		endTime, err := time.Parse(time.RFC3339, item.End.DateTime)
		if err != nil {
			c.logger.Warn("Unparseable end time, skipping", "title", item.Summary, "error", err)
			continue
		}
		tr, err := models.NewTimeRange(startTime, endTime)
		if err != nil {
			c.logger.Warn("Invalid event times, skipping", "title", item.Summary, "error", err)
			continue
		}

		candidates = append(candidates, models.EventCandidate{
			ID:        item.Id,
			Title:     item.Summary,
			Range:     tr,
			Attending: attending,
		})
	}
	return candidates
}

// selfAttendance reports whether the authenticated user accepted the event
// and whether they take part in it at all. Organizers of events without an
// attendee entry for themselves count as attending.
func selfAttendance(item *calendar.Event) (attending, invited bool) {
	for _, a := range item.Attendees {
		if a.Self {
			return a.ResponseStatus == responseAccepted, true
		}
	}
	if item.Organizer != nil && item.Organizer.Self {
		return true, true
	}
	return false, false
}

// MarkAttending sets the authenticated user's response on eventID to accepted.
func (c *CalendarClient) MarkAttending(ctx context.Context, eventID string) error {
	event, err := c.service.Events.Get(c.calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to retrieve event: %w", err)
	}

	found := false
	for _, a := range event.Attendees {
		if a.Self {
			if a.ResponseStatus == responseAccepted {
				return nil
			}
			a.ResponseStatus = responseAccepted
			found = true
		}
	}
	if !found {
		return ErrNotInvited
	}

	_, err = c.service.Events.Patch(c.calendarID, eventID, &calendar.Event{Attendees: event.Attendees}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to update attendance: %w", err)
	}
	return nil
}

// ListCalendars returns the IDs and names of calendars the account can see.
func (c *CalendarClient) ListCalendars(ctx context.Context) (map[string]string, error) {
	list, err := c.service.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}

	calendars := make(map[string]string, len(list.Items))
	for _, item := range list.Items {
		calendars[item.Id] = item.Summary
	}
	return calendars, nil
}

// GetOAuthConfigForAuthFlow is used by the auth command to get the config for the web flow.
func GetOAuthConfigForAuthFlow(clientID, clientSecret string) (*oauth2.Config, error) {
	return getOAuthConfig(clientID, clientSecret)
}

// getOAuthConfig returns an OAuth2 config allowed to change event responses.
// It prioritizes explicit credentials over a local credentials.json file.
func getOAuthConfig(clientID, clientSecret string) (*oauth2.Config, error) {
	if clientID != "" && clientSecret != "" {
		return &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  "urn:ietf:wg:oauth:2.0:oob",
			Scopes:       []string{calendar.CalendarEventsScope},
			Endpoint:     google.Endpoint,
		}, nil
	}

	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		if _, ok := err.(*fs.PathError); ok {
			return nil, fmt.Errorf("credentials.json not found. Please set google.client_id and google.client_secret or place credentials.json in the working directory")
		}
		return nil, fmt.Errorf("unable to read client secret file: %w", err)
	}

	config, err := google.ConfigFromJSON(b, calendar.CalendarEventsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file to config: %w", err)
	}
	config.RedirectURL = "urn:ietf:wg:oauth:2.0:oob" // For desktop app flow
	return config, nil
}

// TokenFromWeb is called by the auth flow to retrieve a token.
func TokenFromWeb(ctx context.Context, config *oauth2.Config, authCode string) (*oauth2.Token, error) {
	return config.Exchange(ctx, authCode)
}

// SaveToken saves a token to a file path.
func SaveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("unable to create token file: %w", err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}

// tokenFromFile retrieves a token from a local file.
func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}
