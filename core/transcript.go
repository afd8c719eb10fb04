package core

import "sync"

// Transcript is an ordered, append-only record of Messages. It is used both
// for an agent's persistent history and for the per-run scratch transcript.
// Safe for concurrent use.
type Transcript struct {
	mu       sync.RWMutex
	messages []Message
}

// NewTranscript creates a transcript seeded with the given messages.
func NewTranscript(msgs ...Message) *Transcript {
	t := &Transcript{messages: make([]Message, 0, len(msgs))}
	t.messages = append(t.messages, msgs...)

	return t
}

// Append adds messages to the end of the transcript.
func (t *Transcript) Append(msgs ...Message) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.messages = append(t.messages, msgs...)
}

// Messages returns a snapshot copy of the transcript.
func (t *Transcript) Messages() []Message {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Message, len(t.messages))
	copy(out, t.messages)

	return out
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.messages)
}

// Last returns the most recent message, if any.
func (t *Transcript) Last() (Message, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if len(t.messages) == 0 {
		return Message{}, false
	}

	return t.messages[len(t.messages)-1], true
}

// Clear drops every message.
func (t *Transcript) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.messages = nil
}
