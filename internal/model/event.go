package model

// EventID identifies one of the five tracked historical events
type EventID string

const (
	EventElectionNight1860 EventID = "election_night_1860"
	EventFortSumter        EventID = "fort_sumter"
	EventGettysburgAddress EventID = "gettysburg_address"
	EventSecondInaugural   EventID = "second_inaugural"
	EventFordsTheatre      EventID = "fords_theatre"
)

// Event describes a tracked event and the keywords used to pre-filter chunks
type Event struct {
	ID       EventID  `json:"id"`
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

// events holds the canonical event registry. Slice order is the canonical
// event ordering used for deterministic pairing and reporting.
var events = []Event{
	{
		ID:       EventElectionNight1860,
		Name:     "Election Night 1860",
		Keywords: []string{"election night 1860", "November 1860", "1860 election", "election results", "presidential election", "election", "1860", "November"},
	},
	{
		ID:       EventFortSumter,
		Name:     "Fort Sumter Decision",
		Keywords: []string{"Fort Sumter", "Sumter", "Charleston", "April 1861", "resupply", "firing", "bombardment", "surrender"},
	},
	{
		ID:       EventGettysburgAddress,
		Name:     "Gettysburg Address",
		Keywords: []string{"Gettysburg Address", "Gettysburg", "November 1863", "dedication", "cemetery", "four score", "battlefield"},
	},
	{
		ID:       EventSecondInaugural,
		Name:     "Second Inaugural Address",
		Keywords: []string{"Second Inaugural", "March 1865", "inauguration", "second term", "inaugural address", "1865"},
	},
	{
		ID:       EventFordsTheatre,
		Name:     "Ford's Theatre Assassination",
		Keywords: []string{"Ford's Theatre", "assassination", "April 14 1865", "John Wilkes Booth", "shot", "theater", "theatre", "Booth", "killed", "murdered"},
	},
}

// Events returns the tracked events in canonical order
func Events() []Event {
	out := make([]Event, len(events))
	copy(out, events)
	return out
}

// EventByID looks up an event in the registry
func EventByID(id EventID) (Event, bool) {
	for _, e := range events {
		if e.ID == id {
			return e, true
		}
	}
	return Event{}, false
}

// EventOrder returns the canonical position of an event ID, or len(events)
// for unknown IDs so they sort last
func EventOrder(id EventID) int {
	for i, e := range events {
		if e.ID == id {
			return i
		}
	}
	return len(events)
}

// ValidEventID reports whether id is a member of the closed event set
func ValidEventID(id EventID) bool {
	_, ok := EventByID(id)
	return ok
}
