package models

// EventCandidate is an event on the destination calendar that the member may
// be marked as attending. It is read fresh from the destination on every run.
type EventCandidate struct {
	ID        string    // Destination identifier (Google event ID or CalDAV object path)
	Title     string    // Summary, used for logging only
	Range     TimeRange // When the event takes place
	Attending bool      // Whether the member is already marked as attending
}
