package absence

import "time"

// =============================================================================
// CALENDAR EVENT - One scheduled block of worked or absent time
// =============================================================================

// EventStatus follows the iCalendar STATUS values used by the calendar feed.
type EventStatus string

const (
	EventConfirmed EventStatus = "CONFIRMED"
	EventTentative EventStatus = "TENTATIVE"
	EventCancelled EventStatus = "CANCELLED"
)

// CalendarEvent is a dated block belonging to a user. Events created for an
// overtime are persisted first with an empty Overtime reference, then
// back-linked once the overtime document exists.
type CalendarEvent struct {
	ID       EventID
	User     UserSnapshot
	Start    time.Time
	End      time.Time
	Summary  string
	Status   EventStatus
	Overtime OvertimeID // empty until back-linked
	Created  time.Time
}

// =============================================================================
// OVERTIME - Worked hours beyond schedule, settled by payment or recovery
// =============================================================================

// Overtime records extra worked hours for a user, backed by one or more
// calendar events. Once Settled is true the document is immutable.
type Overtime struct {
	ID       OvertimeID
	User     UserSnapshot
	Quantity Quantity
	Settled  bool
	EventIDs []EventID
	Created  time.Time
}
