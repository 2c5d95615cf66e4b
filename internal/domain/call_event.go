package domain

// CallEventType enumerates what a call transport can emit.
type CallEventType string

const (
	CallStarted   CallEventType = "call-start"
	CallEnded     CallEventType = "call-end"
	CallMessage   CallEventType = "message"
	SpeechStarted CallEventType = "speech-start"
	SpeechEnded   CallEventType = "speech-end"
	CallError     CallEventType = "error"
)

// Message types and transcript types carried by CallMessage events.
const (
	MessageTypeTranscript = "transcript"

	TranscriptFinal   = "final"
	TranscriptPartial = "partial"
)

// CallEvent is one event delivered by a call transport.
type CallEvent struct {
	Type    CallEventType
	Message *CallMessagePayload
	Err     error
}

// CallMessagePayload is the body of a CallMessage event.
type CallMessagePayload struct {
	Type           string
	Role           string
	TranscriptType string
	Transcript     string
}

// FinalTranscript returns the entry for a finalized transcript fragment.
// Partial fragments, other message types and unknown roles report false.
func (e CallEvent) FinalTranscript() (TranscriptEntry, bool) {
	if e.Type != CallMessage || e.Message == nil {
		return TranscriptEntry{}, false
	}
	m := e.Message
	if m.Type != MessageTypeTranscript || m.TranscriptType != TranscriptFinal {
		return TranscriptEntry{}, false
	}
	role, ok := ParseRole(m.Role)
	if !ok {
		return TranscriptEntry{}, false
	}
	return TranscriptEntry{Role: role, Content: m.Transcript}, true
}
