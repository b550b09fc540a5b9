package live

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaireichart/flight-visualizer/playback"
)

func makeFrame(dataset string, idx, total int) playback.Frame {
	f := playback.Frame{DatasetID: dataset, Index: idx, Total: total}
	for i := 0; i <= idx; i++ {
		f.TimeS = append(f.TimeS, i)
		f.AltRawM = append(f.AltRawM, float64(i)*10)
		f.AltCleanM = append(f.AltCleanM, float64(i)*10+1)
		f.VelCleanMPS = append(f.VelCleanMPS, 10)
	}
	return f
}

func TestDelta(t *testing.T) {
	tests := []struct {
		name      string
		frame     playback.Frame
		dataset   string
		sent      int
		wantOK    bool
		wantReset bool
		wantTimes []int
	}{
		{"first frame", makeFrame("a", 0, 5), "", -1, true, true, []int{0}},
		{"catch up from scratch", makeFrame("a", 3, 5), "", -1, true, true, []int{0, 1, 2, 3}},
		{"next frame", makeFrame("a", 2, 5), "a", 1, true, false, []int{2}},
		{"skipped frames", makeFrame("a", 4, 5), "a", 1, true, false, []int{2, 3, 4}},
		{"nothing new", makeFrame("a", 2, 5), "a", 2, false, false, nil},
		{"rewound", makeFrame("a", 0, 5), "a", 4, true, true, []int{0}},
		{"new dataset", makeFrame("b", 1, 3), "a", 1, true, true, []int{0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, ok := Delta(tt.frame, tt.dataset, tt.sent)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, "frame", msg.Type)
			assert.Equal(t, tt.wantReset, msg.Reset)
			assert.Equal(t, tt.frame.Index, msg.Index)
			assert.Equal(t, tt.frame.Total, msg.Total)
			if diff := cmp.Diff(tt.wantTimes, msg.TimeS); diff != "" {
				t.Errorf("TimeS mismatch (-want +got):\n%s", diff)
			}
			assert.Len(t, msg.AltRawM, len(tt.wantTimes))
			assert.Len(t, msg.AltCleanM, len(tt.wantTimes))
			assert.Len(t, msg.VelCleanMPS, len(tt.wantTimes))
			assert.Equal(t, tt.wantTimes[0], msg.Start)
		})
	}
}

func dial(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestHub_StreamsDeltas(t *testing.T) {
	hub := NewHub()
	t.Cleanup(hub.Close)
	conn := dial(t, hub)

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Render(makeFrame("a", 0, 4))
	msg := readMessage(t, conn)
	assert.True(t, msg.Reset)
	assert.Equal(t, []int{0}, msg.TimeS)

	hub.Render(makeFrame("a", 1, 4))
	msg = readMessage(t, conn)
	assert.False(t, msg.Reset)
	assert.Equal(t, 1, msg.Start)
	assert.Equal(t, []int{1}, msg.TimeS)

	hub.Render(makeFrame("b", 0, 2))
	msg = readMessage(t, conn)
	assert.True(t, msg.Reset)
	assert.Equal(t, "b", msg.DatasetID)
}

func TestHub_LateClientGetsFullPrefix(t *testing.T) {
	hub := NewHub()
	t.Cleanup(hub.Close)

	hub.Render(makeFrame("a", 2, 4))
	conn := dial(t, hub)

	msg := readMessage(t, conn)
	assert.True(t, msg.Reset)
	assert.Equal(t, []int{0, 1, 2}, msg.TimeS)
}

func TestHub_RejectsPlainHTTP(t *testing.T) {
	hub := NewHub()
	rec := httptest.NewRecorder()
	hub.HandleWebSocket(rec, httptest.NewRequest(http.MethodGet, "/live/ws", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHub_ClientDisconnect(t *testing.T) {
	hub := NewHub()
	conn := dial(t, hub)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)

	// Rendering without clients must not block
	hub.Render(makeFrame("a", 0, 1))
}
