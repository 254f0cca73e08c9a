package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_CreatesClientWithConnection(t *testing.T) {
	hub := NewHub(nil)

	// NewClient does not touch the connection, so nil is enough here
	client := NewClient(hub, nil, nil)

	assert.NotNil(t, client)
	assert.Equal(t, hub, client.hub)
	assert.NotNil(t, client.send)
}

func expectError(t *testing.T, client *Client, contains string) {
	t.Helper()
	select {
	case msg := <-client.send:
		var wsMsg WSMessage
		require.NoError(t, json.Unmarshal(msg, &wsMsg))
		assert.Equal(t, MessageTypeError, wsMsg.Type)
		assert.Contains(t, wsMsg.Error, contains)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("expected error message to be sent")
	}
}

func TestClient_HandleMessage_ProcessesSubscribe(t *testing.T) {
	hub := startHub(t)
	client := NewClient(hub, nil, nil)
	hub.Register(client)

	client.handleMessage([]byte(`{"type":"subscribe","owner":"bob","folder":"inbox"}`))
	// Register blocks until the hub has handled the subscription
	hub.Register(NewClient(hub, nil, nil))

	hub.mu.RLock()
	_, exists := hub.subscriptions["bob:inbox"][client]
	hub.mu.RUnlock()
	assert.True(t, exists)
}

func TestClient_HandleMessage_ProcessesUnsubscribe(t *testing.T) {
	hub := startHub(t)
	client := NewClient(hub, nil, nil)
	hub.Register(client)
	hub.Subscribe(client, bobInbox)

	client.handleMessage([]byte(`{"type":"unsubscribe","owner":"bob","folder":"inbox"}`))
	hub.Register(NewClient(hub, nil, nil))

	hub.mu.RLock()
	_, exists := hub.subscriptions["bob:inbox"]
	hub.mu.RUnlock()
	assert.False(t, exists)
}

func TestClient_HandleMessage_SendsErrorForInvalidJSON(t *testing.T) {
	client := NewClient(NewHub(nil), nil, nil)

	client.handleMessage([]byte("invalid json"))

	expectError(t, client, "invalid message format")
}

func TestClient_HandleMessage_SendsErrorForUnknownType(t *testing.T) {
	client := NewClient(NewHub(nil), nil, nil)

	client.handleMessage([]byte(`{"type":"unknown_type"}`))

	expectError(t, client, "unknown message type")
}

func TestClient_HandleMessage_RejectsBadFolderKey(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		contains string
	}{
		{"missing owner", `{"type":"subscribe","folder":"inbox"}`, "owner input cannot be empty"},
		{"missing folder", `{"type":"subscribe","owner":"bob"}`, "folder input cannot be empty"},
		{"delimiter in owner", `{"type":"unsubscribe","owner":"bob:x","folder":"inbox"}`, "owner input contains invalid characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(NewHub(nil), nil, nil)

			client.handleMessage([]byte(tt.payload))

			expectError(t, client, tt.contains)
		})
	}
}

func TestWSMessage_WireFormat(t *testing.T) {
	msg := WSMessage{
		Type:           MessageTypeFolderBumped,
		Owner:          "bob",
		Folder:         "inbox",
		ConversationID: "bob:d1",
	}

	data, err := json.Marshal(msg)
	require.NoError(t, err)

	assert.JSONEq(t, `{"type":"folder_bumped","owner":"bob","folder":"inbox","conversation_id":"bob:d1"}`, string(data))
}

func TestMessageTypes_AreCorrectValues(t *testing.T) {
	assert.Equal(t, MessageType("subscribe"), MessageTypeSubscribe)
	assert.Equal(t, MessageType("unsubscribe"), MessageTypeUnsubscribe)
	assert.Equal(t, MessageType("folder_bumped"), MessageTypeFolderBumped)
	assert.Equal(t, MessageType("error"), MessageTypeError)
}

func TestClient_SendChannel_HasBuffer(t *testing.T) {
	client := NewClient(NewHub(nil), nil, nil)

	// Should be able to send multiple messages without blocking
	for i := 0; i < 10; i++ {
		client.sendError("test error")
	}

	assert.Len(t, client.send, 10)
}
