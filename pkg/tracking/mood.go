package tracking

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// MoodEntry is a single timestamped mood reading within a session.
type MoodEntry struct {
	Time string `json:"time"`
	Mood int    `json:"mood"`
}

// Mood is either a single value or a list of entries. On the wire it is an
// integer or an array of MoodEntry.
type Mood struct {
	Value   int
	Entries []MoodEntry
}

// MoodValue wraps a single reading.
func MoodValue(v int) Mood {
	return Mood{Value: v}
}

// MoodEntries wraps a list of readings.
func MoodEntries(entries []MoodEntry) Mood {
	cp := make([]MoodEntry, len(entries))
	copy(cp, entries)
	return Mood{Entries: cp}
}

// IsList reports whether the mood carries entries rather than one value.
func (m Mood) IsList() bool {
	return len(m.Entries) > 0
}

// Level returns the single value, or the latest entry for a list.
func (m Mood) Level() int {
	if m.IsList() {
		return m.Entries[len(m.Entries)-1].Mood
	}
	return m.Value
}

func (m Mood) MarshalJSON() ([]byte, error) {
	if m.IsList() {
		return json.Marshal(m.Entries)
	}
	return json.Marshal(m.Value)
}

func (m *Mood) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*m = Mood{}
		return nil
	}
	if data[0] == '[' {
		var entries []MoodEntry
		if err := json.Unmarshal(data, &entries); err != nil {
			return fmt.Errorf("decoding mood entries: %w", err)
		}
		*m = Mood{Entries: entries}
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decoding mood value: %w", err)
	}
	*m = Mood{Value: v}
	return nil
}

// MoodLog is the in-memory, time-ordered list of mood readings kept for the
// duration of a tracking session.
type MoodLog struct {
	entries []MoodEntry
}

// Add records a reading and keeps the log ordered by time. Times are
// compared as "15:04" strings.
func (l *MoodLog) Add(time string, mood int) {
	l.entries = append(l.entries, MoodEntry{Time: time, Mood: mood})
	sort.SliceStable(l.entries, func(i, j int) bool {
		return l.entries[i].Time < l.entries[j].Time
	})
}

func (l *MoodLog) Entries() []MoodEntry {
	out := make([]MoodEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *MoodLog) Len() int {
	return len(l.entries)
}

// Latest returns the most recent reading.
func (l *MoodLog) Latest() (MoodEntry, bool) {
	if len(l.entries) == 0 {
		return MoodEntry{}, false
	}
	return l.entries[len(l.entries)-1], true
}

// Reset empties the log after a submission.
func (l *MoodLog) Reset() {
	l.entries = nil
}
