//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"
	"github.com/welldanyogia/postoffice/internal/api"
	"github.com/welldanyogia/postoffice/internal/api/response"
	"github.com/welldanyogia/postoffice/internal/kvstore"
	"github.com/welldanyogia/postoffice/internal/models"
	"github.com/welldanyogia/postoffice/internal/repository"
	"github.com/welldanyogia/postoffice/internal/services"
	"github.com/welldanyogia/postoffice/internal/websocket"
	"gorm.io/gorm"
)

// APIIntegrationTestSuite drives the HTTP front end over PostgreSQL
type APIIntegrationTestSuite struct {
	suite.Suite
	db     *gorm.DB
	server *httptest.Server
	cancel context.CancelFunc
}

// SetupSuite starts PostgreSQL and the HTTP server
func (s *APIIntegrationTestSuite) SetupSuite() {
	s.db = startPostgres(s.T(), "postoffice_api_test")
	store := kvstore.NewGormStore(s.db, kvstore.Options{Consistency: kvstore.ConsistencyQuorum})
	messages := repository.NewMessageRepository(store)
	folders := repository.NewFolderRepository(store)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	hub := websocket.NewHub(nil)
	go hub.Run(ctx)

	router := api.NewRouter(&api.RouterConfig{
		Store:     store,
		Messenger: services.NewPostoffice(messages, folders, hub, nil),
		Folders:   services.NewFolderService(folders, messages, nil),
		Hub:       hub,
		RateLimit: 1000,
		RateBurst: 1000,
	})
	s.server = httptest.NewServer(router)
}

// TearDownSuite stops the HTTP server
func (s *APIIntegrationTestSuite) TearDownSuite() {
	s.server.Close()
	s.cancel()
}

// SetupTest cleans up data before each test
func (s *APIIntegrationTestSuite) SetupTest() {
	truncate(s.T(), s.db)
}

// TestAPIIntegrationTestSuite runs the test suite
func TestAPIIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	suite.Run(t, new(APIIntegrationTestSuite))
}

func (s *APIIntegrationTestSuite) get(path string, params url.Values, out interface{}) int {
	resp, err := http.Get(s.server.URL + path + "?" + params.Encode())
	s.Require().NoError(err)
	defer resp.Body.Close()
	if out != nil {
		s.Require().NoError(json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (s *APIIntegrationTestSuite) TestHealth() {
	var body map[string]interface{}
	s.Equal(http.StatusOK, s.get("/health", nil, &body))
	s.Equal("healthy", body["status"])
}

func (s *APIIntegrationTestSuite) TestConversationOverHTTP() {
	var started response.StatusResponse
	s.Require().Equal(http.StatusOK, s.get("/new", url.Values{
		"from": {"alice"}, "to": {"bob"}, "subject": {"hi"}, "body": {"x"},
	}, &started))
	s.Require().NotEmpty(started.ID)

	resp, err := http.PostForm(s.server.URL+"/reply", url.Values{
		"from": {"bob"}, "to": {"alice"}, "subject": {"re"}, "body": {"y"}, "id": {started.ID},
	})
	s.Require().NoError(err)
	resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var inbox models.Folder
	s.Require().Equal(http.StatusOK, s.get("/folder", url.Values{"owner": {"alice"}, "folder": {"inbox"}}, &inbox))
	s.Require().Len(inbox.Conversations, 1)
	s.Len(inbox.Conversations[0].Messages, 2)
	s.NotZero(inbox.Conversations[0].LastReceivedAt)

	var conversation models.Conversation
	s.Require().Equal(http.StatusOK, s.get("/conversation",
		url.Values{"id": {models.ConversationID("bob", started.ID)}}, &conversation))
	s.Len(conversation.Messages, 2)
}

func (s *APIIntegrationTestSuite) TestInvalidInput() {
	var body response.StatusResponse
	s.Equal(http.StatusBadRequest, s.get("/folder", url.Values{"owner": {"bob"}, "folder": {"inbox"}, "count": {"x"}}, &body))
	s.Equal(response.StatusErr, body.Status)
}

func (s *APIIntegrationTestSuite) TestWebSocketNotification() {
	wsURL := "ws" + strings.TrimPrefix(s.server.URL, "http") + "/ws"
	conn, _, err := gorillaws.DefaultDialer.Dial(wsURL, nil)
	s.Require().NoError(err)
	defer conn.Close()
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(5 * time.Second)))

	s.Require().NoError(conn.WriteJSON(websocket.WSMessage{Type: websocket.MessageTypeSubscribe, Owner: "bob", Folder: "inbox"}))
	// The error reply to an unknown message orders it after the subscription
	s.Require().NoError(conn.WriteJSON(websocket.WSMessage{Type: "sync"}))
	var reply websocket.WSMessage
	s.Require().NoError(conn.ReadJSON(&reply))
	s.Require().Equal(websocket.MessageTypeError, reply.Type)

	var started response.StatusResponse
	s.Require().Equal(http.StatusOK, s.get("/new", url.Values{"from": {"alice"}, "to": {"bob"}}, &started))

	var event websocket.WSMessage
	s.Require().NoError(conn.ReadJSON(&event))
	s.Equal(websocket.MessageTypeFolderBumped, event.Type)
	s.Equal(models.ConversationID("bob", started.ID), event.ConversationID)
}
