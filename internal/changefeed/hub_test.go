package changefeed

import (
	"bufio"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readLineAsync consumes one line in the background; net.Pipe writes
// block until read, so receivers must be draining before Broadcast.
func readLineAsync(conn net.Conn) <-chan map[string]any {
	out := make(chan map[string]any, 1)
	go func() {
		defer close(out)
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		sc := bufio.NewScanner(conn)
		if !sc.Scan() {
			return
		}
		var obj map[string]any
		if err := json.Unmarshal(sc.Bytes(), &obj); err != nil {
			return
		}
		out <- obj
	}()
	return out
}

func receive(t *testing.T, ch <-chan map[string]any) map[string]any {
	t.Helper()
	msg, ok := <-ch
	require.True(t, ok, "expected a delivery")
	return msg
}

func TestBroadcastGlobalEventReachesEveryone(t *testing.T) {
	hub := NewHub()

	server1, client1 := net.Pipe()
	server2, client2 := net.Pipe()
	defer client1.Close()
	defer client2.Close()

	hub.Add(server1, "u1")
	hub.Add(server2, "")

	got1 := readLineAsync(client1)
	got2 := readLineAsync(client2)

	hub.Broadcast(NewOfferEvent(12))

	msg := receive(t, got1)
	assert.Equal(t, "offers.refresh", msg["type"])
	assert.Equal(t, float64(12), msg["count"])

	msg = receive(t, got2)
	assert.Equal(t, "offers.refresh", msg["type"])
}

func TestBroadcastScopedEventSkipsOtherUsers(t *testing.T) {
	hub := NewHub()

	server1, client1 := net.Pipe()
	server2, client2 := net.Pipe()
	serverAll, clientAll := net.Pipe()
	defer client1.Close()
	defer client2.Close()
	defer clientAll.Close()

	hub.Add(server1, "u1")
	hub.Add(server2, "u2")
	hub.Add(serverAll, "")

	got1 := readLineAsync(client1)
	got2 := readLineAsync(client2)
	gotAll := readLineAsync(clientAll)

	hub.Broadcast(NewPreferenceEvent("u1"))

	msg := receive(t, got1)
	assert.Equal(t, "preferences.update", msg["type"])
	assert.Equal(t, "u1", msg["user_id"])

	// unscoped subscribers see everything
	msg = receive(t, gotAll)
	assert.Equal(t, "preferences.update", msg["type"])

	// the other user's reader times out with nothing delivered
	_, ok := <-got2
	assert.False(t, ok)
}

func TestBroadcastDropsDeadConnections(t *testing.T) {
	hub := NewHub()

	server, client := net.Pipe()
	hub.Add(server, "")
	require.Equal(t, 1, hub.Stats().TCPClients)

	client.Close()
	server.Close()

	hub.Broadcast(NewOfferEvent(1))
	assert.Equal(t, 0, hub.Stats().TCPClients)
}

func TestStats(t *testing.T) {
	hub := NewHub()
	assert.Equal(t, Stats{}, hub.Stats())

	server, client := net.Pipe()
	defer client.Close()

	hub.Add(server, "u1")
	assert.Equal(t, 1, hub.Stats().TCPClients)

	hub.Remove(server)
	assert.Equal(t, 0, hub.Stats().TCPClients)
}
