package board

import (
	"time"

	"github.com/nomis52/activityboard/render"
)

// show replaces the status message and restarts the hide timer. A timer
// from an earlier message never hides a newer one.
func (b *Board) show(text string, kind render.MessageKind) render.Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.stopHide != nil {
		b.stopHide()
	}
	b.messageGen++
	gen := b.messageGen
	b.message = render.Message{Text: text, Kind: kind, Visible: true}
	b.hideAt = time.Now().Add(b.messageTTL)
	b.stopHide = b.afterFunc(b.messageTTL, func() {
		b.hide(gen)
	})
	return b.message
}

func (b *Board) hide(gen uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if gen != b.messageGen {
		return
	}
	b.message.Visible = false
	b.stopHide = nil
}

// MessageState returns which of the three message states the board is in.
func (b *Board) MessageState() MessageState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return stateOf(b.message)
}

// MessageState is the state of the status message region.
type MessageState int

const (
	MessageHidden MessageState = iota
	MessageVisibleSuccess
	MessageVisibleError
)

func (s MessageState) String() string {
	switch s {
	case MessageHidden:
		return "hidden"
	case MessageVisibleSuccess:
		return "visible-success"
	case MessageVisibleError:
		return "visible-error"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler.
func (s MessageState) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

func stateOf(m render.Message) MessageState {
	if !m.Visible {
		return MessageHidden
	}
	if m.Kind == render.MessageSuccess {
		return MessageVisibleSuccess
	}
	return MessageVisibleError
}
