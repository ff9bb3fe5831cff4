package board

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/nomis52/activityboard/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShow_StaleTimerDoesNotHideNewerMessage(t *testing.T) {
	b := newTestBoard(t, chessClub())

	b.show("first", render.MessageSuccess)
	b.show("second", render.MessageError)

	timers := b.timers.all()
	require.Len(t, timers, 2)
	assert.True(t, timers[0].stopped, "the first timer is stopped when the second message is shown")

	// A timer that already fired before it could be stopped must not hide
	// the newer message.
	timers[0].f()
	assert.Equal(t, MessageVisibleError, b.MessageState())
	assert.Equal(t, "second", b.Snapshot().Message.Text)

	timers[1].f()
	assert.Equal(t, MessageHidden, b.MessageState())
}

func TestShow_ReplacesContentUnconditionally(t *testing.T) {
	b := newTestBoard(t, chessClub())

	b.show("same", render.MessageSuccess)
	b.show("same", render.MessageSuccess)

	assert.Len(t, b.timers.all(), 2)
	assert.Equal(t, MessageVisibleSuccess, b.MessageState())
}

func TestSnapshot_HideMessageIn(t *testing.T) {
	b := newTestBoard(t, chessClub(), WithMessageTTL(time.Minute))

	assert.Zero(t, b.Snapshot().HideMessageIn)

	b.show("hello", render.MessageSuccess)
	in := b.Snapshot().HideMessageIn
	assert.Greater(t, in, time.Duration(0))
	assert.LessOrEqual(t, in, time.Minute)

	b.timers.fireActive()
	assert.Zero(t, b.Snapshot().HideMessageIn)
}

func TestSnapshot_MessageRegion(t *testing.T) {
	b := newTestBoard(t, chessClub())

	assert.Equal(t, `<div id="message" class="hidden"></div>`, string(b.Snapshot().MessageRegion))

	b.show("Signed up", render.MessageSuccess)
	assert.Contains(t, string(b.Snapshot().MessageRegion), `class="success"`)
	assert.Contains(t, string(b.Snapshot().MessageRegion), "Signed up")

	b.timers.fireActive()
	assert.Contains(t, string(b.Snapshot().MessageRegion), `class="success hidden"`)
}

func TestMessageState_String(t *testing.T) {
	tests := []struct {
		state MessageState
		want  string
	}{
		{MessageHidden, "hidden"},
		{MessageVisibleSuccess, "visible-success"},
		{MessageVisibleError, "visible-error"},
		{MessageState(42), "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.String())

			data, err := json.Marshal(tt.state)
			require.NoError(t, err)
			assert.Equal(t, `"`+tt.want+`"`, string(data))
		})
	}
}
