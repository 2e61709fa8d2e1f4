package chat

import "time"

// typingPayload identifies the room in typing indicator events.
type typingPayload struct {
	RideID string `json:"rideId"`
	Role   string `json:"role,omitempty"`
}

// Typing records a keystroke. The first call emits typingStart; the stop
// event follows once no keystroke arrives for the configured idle window.
// One timer serves the whole session, re-armed on every call.
func (s *Session) Typing() {
	ch := s.snapshot().Channel
	if ch == nil || !ch.Connected() {
		return
	}

	s.typingMu.Lock()
	defer s.typingMu.Unlock()

	if s.typing != nil {
		s.typing.Reset(s.cfg.TypingIdle)
		return
	}
	_ = ch.Emit("typingStart", typingPayload{RideID: s.cfg.RideID, Role: s.cfg.Role})
	s.typing = time.AfterFunc(s.cfg.TypingIdle, s.typingExpired)
}

func (s *Session) typingExpired() {
	s.typingMu.Lock()
	s.typing = nil
	s.typingMu.Unlock()
	s.emitTypingStop()
}

// stopTyping withdraws an in-flight typing indicator immediately, used when
// a message is sent or the session closes.
func (s *Session) stopTyping() {
	s.typingMu.Lock()
	timer := s.typing
	s.typing = nil
	s.typingMu.Unlock()

	if timer == nil {
		return
	}
	if timer.Stop() {
		s.emitTypingStop()
	}
}

func (s *Session) emitTypingStop() {
	ch := s.snapshot().Channel
	if ch == nil || !ch.Connected() {
		return
	}
	_ = ch.Emit("typingStop", typingPayload{RideID: s.cfg.RideID, Role: s.cfg.Role})
}
