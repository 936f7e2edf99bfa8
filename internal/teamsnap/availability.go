package teamsnap

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"snapsync/internal/hypermedia"
	"snapsync/internal/models"
)

// TeamSnap availability status codes.
const (
	statusNo    = 0
	statusYes   = 1
	statusMaybe = 2
)

// ResolveMemberID finds the member record of userID on teamID.
func (c *Client) ResolveMemberID(ctx context.Context, teamID, userID string) (string, error) {
	href, err := c.link(ctx, "members")
	if err != nil {
		return "", err
	}

	coll, err := c.hm.Fetch(ctx, href, url.Values{"team_id": {teamID}, "user_id": {userID}})
	if err != nil {
		return "", fmt.Errorf("failed to search members: %w", err)
	}

	item, err := single(coll, "member")
	if err != nil {
		return "", err
	}
	id, err := item.String("id")
	if err != nil {
		return "", fmt.Errorf("member: %w", err)
	}
	c.logger.Debug("Resolved member", "teamID", teamID, "userID", userID, "memberID", id)
	return id, nil
}

// ListAvailabilities returns every availability of memberID on teamID.
// Items without an event link cannot be synced and are dropped.
func (c *Client) ListAvailabilities(ctx context.Context, teamID, memberID string) ([]models.AvailabilityRecord, error) {
	href, err := c.link(ctx, "availabilities")
	if err != nil {
		return nil, err
	}

	coll, err := c.hm.Fetch(ctx, href, url.Values{"team_id": {teamID}, "member_id": {memberID}})
	if err != nil {
		return nil, fmt.Errorf("failed to search availabilities: %w", err)
	}

	records := make([]models.AvailabilityRecord, 0, len(coll.Items))
	for _, item := range coll.Items {
		eventRef, err := item.Link("event")
		if err != nil {
			c.logger.Warn("Availability has no event link, skipping", "href", item.Href)
			continue
		}
		records = append(records, models.AvailabilityRecord{
			MemberID: memberID,
			EventRef: eventRef,
			Status:   classifyItem(item),
		})
	}
	c.logger.Debug("Fetched availabilities", "memberID", memberID, "count", len(records))
	return records, nil
}

func classifyItem(item hypermedia.Item) models.AvailabilityStatus {
	v, err := item.Field("status_code")
	if err != nil {
		return models.Unknown
	}
	return ClassifyStatus(v)
}

// ClassifyStatus maps a raw status_code value to a status. Absent, null and
// unrecognized codes are Unknown.
func ClassifyStatus(v any) models.AvailabilityStatus {
	var code int64
	switch v := v.(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return models.Unknown
		}
		code = n
	case float64:
		if v != float64(int64(v)) {
			return models.Unknown
		}
		code = int64(v)
	case int:
		code = int64(v)
	case int64:
		code = v
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return models.Unknown
		}
		code = n
	default:
		return models.Unknown
	}

	switch code {
	case statusYes:
		return models.Attending
	case statusMaybe:
		return models.Maybe
	case statusNo:
		return models.NotAttending
	default:
		return models.Unknown
	}
}

// FilterAttending returns the event refs the member has committed to. Maybe
// counts only when includeMaybe is set.
func FilterAttending(records []models.AvailabilityRecord, includeMaybe bool) []string {
	var refs []string
	for _, r := range records {
		switch {
		case r.Status == models.Attending:
			refs = append(refs, r.EventRef)
		case r.Status == models.Maybe && includeMaybe:
			refs = append(refs, r.EventRef)
		}
	}
	return refs
}
