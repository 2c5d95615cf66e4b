package session

import "github.com/emiliopalmerini/nexa/internal/domain"

// Transcript accumulates finalized utterances in arrival order.
//
// It is not safe for concurrent use; Machine guards it with its own lock.
// Fragments are not de-duplicated: a final fragment delivered twice is
// appended twice.
type Transcript struct {
	entries []domain.TranscriptEntry
}

// Observe appends the event's utterance if it is a finalized transcript
// fragment and reports whether it did.
func (t *Transcript) Observe(ev domain.CallEvent) bool {
	entry, ok := ev.FinalTranscript()
	if !ok {
		return false
	}
	t.entries = append(t.entries, entry)
	return true
}

func (t *Transcript) Len() int {
	return len(t.entries)
}

// Last returns the most recent entry.
func (t *Transcript) Last() (domain.TranscriptEntry, bool) {
	if len(t.entries) == 0 {
		return domain.TranscriptEntry{}, false
	}
	return t.entries[len(t.entries)-1], true
}

// Entries returns a copy of the accumulated entries.
func (t *Transcript) Entries() []domain.TranscriptEntry {
	out := make([]domain.TranscriptEntry, len(t.entries))
	copy(out, t.entries)
	return out
}
