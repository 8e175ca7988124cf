package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/gray-logic-osc/internal/auth"
	"github.com/nerrad567/gray-logic-osc/internal/diagnostics"
	"github.com/nerrad567/gray-logic-osc/internal/osc"
)

// liveServer serves the fixture over a real listener so WebSocket upgrades
// work.
func liveServer(t *testing.T) (*fixture, string) {
	t.Helper()
	f := testServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	go f.srv.hub.Run(ctx)

	ts := httptest.NewServer(f.handler)
	t.Cleanup(func() {
		cancel()
		ts.Close()
	})
	return f, ts.URL
}

func requestTicket(t *testing.T, baseURL string, role auth.Role) string {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, baseURL+"/api/v1/auth/ws-ticket", nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, role))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("ws-ticket request failed: %v", err)
	}
	defer resp.Body.Close()

	var out struct {
		Ticket    string `json:"ticket"`
		ExpiresIn int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode ticket response: %v", err)
	}
	if out.Ticket == "" || out.ExpiresIn != int(ticketTTL.Seconds()) {
		t.Fatalf("ticket response = %+v", out)
	}
	return out.Ticket
}

func wsURL(baseURL, ticket string) string {
	return "ws" + strings.TrimPrefix(baseURL, "http") + "/api/v1/ws?ticket=" + ticket
}

func dial(t *testing.T, baseURL string) *websocket.Conn {
	t.Helper()
	ws, resp, err := websocket.DefaultDialer.Dial(wsURL(baseURL, requestTicket(t, baseURL, auth.RoleViewer)), nil)
	if err != nil {
		t.Fatalf("websocket dial failed: %v (resp: %v)", err, resp)
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

func readMessage(t *testing.T, ws *websocket.Conn) WSMessage {
	t.Helper()
	//nolint:errcheck // test deadline
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg WSMessage
	if err := ws.ReadJSON(&msg); err != nil {
		t.Fatalf("read websocket message: %v", err)
	}
	return msg
}

func subscribe(t *testing.T, ws *websocket.Conn, id string, channels ...string) WSMessage {
	t.Helper()
	if err := ws.WriteJSON(WSMessage{
		Type:    WSTypeSubscribe,
		ID:      id,
		Payload: WSSubscribePayload{Channels: channels},
	}); err != nil {
		t.Fatalf("write subscribe: %v", err)
	}
	return readMessage(t, ws)
}

// waitForClients polls until the hub has n clients registered.
func waitForClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("hub has %d clients, want %d", h.ClientCount(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWebSocket_DropStream(t *testing.T) {
	f, base := liveServer(t)
	ws := dial(t, base)

	resp := subscribe(t, ws, "sub-1", diagnostics.ChannelDrop)
	if resp.Type != WSTypeResponse || resp.ID != "sub-1" {
		t.Fatalf("subscribe response = %+v", resp)
	}

	// Wire the hub the way main does and push a real drop through it.
	sink := diagnostics.NewBroadcastSink(f.srv.Hub())
	ev := diagnostics.NewDropEvent("studio", osc.Drop{
		Address:   "/atem/me/9/program",
		Arguments: "i:1",
		Reason:    osc.ReasonNoValidator,
		At:        time.Now(),
	})
	if err := sink.WriteDrop(context.Background(), ev); err != nil {
		t.Fatalf("WriteDrop() error = %v", err)
	}

	msg := readMessage(t, ws)
	if msg.Type != WSTypeEvent || msg.EventType != diagnostics.ChannelDrop {
		t.Fatalf("event = %+v", msg)
	}
	payload, ok := msg.Payload.(map[string]any)
	if !ok {
		t.Fatalf("payload type = %T", msg.Payload)
	}
	if payload["address"] != "/atem/me/9/program" {
		t.Errorf("payload = %v", payload)
	}
}

func TestWebSocket_OnlySubscribedChannels(t *testing.T) {
	f, base := liveServer(t)
	ws := dial(t, base)
	subscribe(t, ws, "sub-1", diagnostics.ChannelDispatch)

	f.srv.Hub().Broadcast(diagnostics.ChannelDrop, map[string]string{"n": "ignored"})
	f.srv.Hub().Broadcast(diagnostics.ChannelDispatch, map[string]string{"n": "wanted"})

	msg := readMessage(t, ws)
	if msg.EventType != diagnostics.ChannelDispatch {
		t.Errorf("first event on %q, want %q", msg.EventType, diagnostics.ChannelDispatch)
	}
}

func TestWebSocket_Unsubscribe(t *testing.T) {
	f, base := liveServer(t)
	ws := dial(t, base)
	subscribe(t, ws, "sub-1", diagnostics.ChannelDrop, diagnostics.ChannelDispatch)

	if err := ws.WriteJSON(WSMessage{
		Type:    WSTypeUnsubscribe,
		ID:      "unsub-1",
		Payload: WSSubscribePayload{Channels: []string{diagnostics.ChannelDrop}},
	}); err != nil {
		t.Fatalf("write unsubscribe: %v", err)
	}
	if resp := readMessage(t, ws); resp.ID != "unsub-1" || resp.Type != WSTypeResponse {
		t.Fatalf("unsubscribe response = %+v", resp)
	}

	f.srv.Hub().Broadcast(diagnostics.ChannelDrop, "ignored")
	f.srv.Hub().Broadcast(diagnostics.ChannelDispatch, "wanted")
	if msg := readMessage(t, ws); msg.EventType != diagnostics.ChannelDispatch {
		t.Errorf("event on %q after unsubscribe", msg.EventType)
	}
}

func TestWebSocket_ClientErrors(t *testing.T) {
	_, base := liveServer(t)

	tests := []struct {
		name  string
		frame string
		id    string
	}{
		{"invalid json", `{not json`, ""},
		{"unknown type", `{"type":"shout","id":"x-1"}`, "x-1"},
		{"unknown channel", `{"type":"subscribe","id":"s-1","payload":{"channels":["device.state_changed"]}}`, "s-1"},
		{"empty subscribe", `{"type":"subscribe","id":"s-2","payload":{"channels":[]}}`, "s-2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := dial(t, base)
			if err := ws.WriteMessage(websocket.TextMessage, []byte(tt.frame)); err != nil {
				t.Fatalf("write: %v", err)
			}
			msg := readMessage(t, ws)
			if msg.Type != WSTypeError || msg.ID != tt.id {
				t.Errorf("response = %+v, want error with id %q", msg, tt.id)
			}
		})
	}
}

func TestWebSocket_Ping(t *testing.T) {
	_, base := liveServer(t)
	ws := dial(t, base)

	if err := ws.WriteJSON(WSMessage{Type: WSTypePing, ID: "p-1"}); err != nil {
		t.Fatalf("write ping: %v", err)
	}
	if msg := readMessage(t, ws); msg.Type != WSTypePong || msg.ID != "p-1" {
		t.Errorf("pong = %+v", msg)
	}
}

func TestWebSocket_TicketRequired(t *testing.T) {
	_, base := liveServer(t)

	tests := []struct {
		name   string
		ticket string
	}{
		{"no ticket", ""},
		{"unknown ticket", "deadbeef"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, resp, err := websocket.DefaultDialer.Dial(wsURL(base, tt.ticket), nil)
			if err == nil {
				t.Fatal("dial should fail")
			}
			if resp == nil || resp.StatusCode != http.StatusUnauthorized {
				t.Errorf("response = %v, want 401", resp)
			}
		})
	}
}

func TestWebSocket_TicketSingleUse(t *testing.T) {
	f, base := liveServer(t)
	ticket := requestTicket(t, base, auth.RoleViewer)

	ws, _, err := websocket.DefaultDialer.Dial(wsURL(base, ticket), nil)
	if err != nil {
		t.Fatalf("first dial failed: %v", err)
	}
	defer ws.Close()
	waitForClients(t, f.srv.Hub(), 1)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(base, ticket), nil)
	if err == nil {
		t.Fatal("second dial with the same ticket should fail")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("response = %v, want 401", resp)
	}
}

func TestHub_DisconnectUnregisters(t *testing.T) {
	f, base := liveServer(t)
	ws := dial(t, base)
	waitForClients(t, f.srv.Hub(), 1)

	ws.Close()
	waitForClients(t, f.srv.Hub(), 0)

	// Broadcasting with no clients is a no-op.
	f.srv.Hub().Broadcast(diagnostics.ChannelDrop, "nobody listening")
}

func TestHub_SlowClientMissesEvents(t *testing.T) {
	h := NewHub(testDeps(nil).WS, testLogger())
	c := &WSClient{
		hub:           h,
		send:          make(chan []byte, 1),
		subscriptions: map[string]struct{}{diagnostics.ChannelDrop: {}},
	}
	h.Register(c)

	h.Broadcast(diagnostics.ChannelDrop, 1)
	h.Broadcast(diagnostics.ChannelDrop, 2)
	h.Broadcast(diagnostics.ChannelDrop, 3)

	if got := h.Missed(); got != 2 {
		t.Errorf("Missed() = %d, want 2", got)
	}
	if len(c.send) != 1 {
		t.Errorf("buffered %d messages, want 1", len(c.send))
	}

	h.Unregister(c)
	h.Unregister(c) // second call must not double-close
	if c.trySend([]byte("late")) {
		t.Error("trySend() on a closed client should report false")
	}
}

func TestTicketStore_Expiry(t *testing.T) {
	ts := newTicketStore()
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	ts.now = func() time.Time { return now }

	claims := &auth.Claims{Role: auth.RoleViewer}
	claims.Subject = "viewer-1"

	fresh := ts.issue(claims)
	stale := ts.issue(claims)

	entry, ok := ts.redeem(fresh)
	if !ok || entry.subject != "viewer-1" || entry.role != auth.RoleViewer {
		t.Errorf("redeem(fresh) = %+v, %v", entry, ok)
	}

	now = now.Add(ticketTTL + time.Second)
	if _, ok := ts.redeem(stale); ok {
		t.Error("expired ticket should not redeem")
	}

	ts.issue(claims)
	now = now.Add(ticketTTL + time.Second)
	ts.clean()
	if ts.len() != 0 {
		t.Errorf("clean() left %d tickets", ts.len())
	}
}
