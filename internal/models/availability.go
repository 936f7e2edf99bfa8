package models

// AvailabilityStatus is a member's self-reported intent for one event.
type AvailabilityStatus int

const (
	Unknown AvailabilityStatus = iota
	NotAttending
	Attending
	Maybe
)

func (s AvailabilityStatus) String() string {
	switch s {
	case NotAttending:
		return "not_attending"
	case Attending:
		return "attending"
	case Maybe:
		return "maybe"
	default:
		return "unknown"
	}
}

// AvailabilityRecord links a member to an event on the source system.
type AvailabilityRecord struct {
	MemberID string
	EventRef string // href of the event resource
	Status   AvailabilityStatus
}
