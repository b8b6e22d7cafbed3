package api

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barikade/game/config"
	"barikade/game/room"
	"barikade/game/service"
	"barikade/game/session"
	"barikade/transport/websocket"
)

type testServer struct {
	server *Server
	rooms  *room.Registry
	boards *config.Manager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	boards, err := config.NewManager(t.TempDir())
	require.NoError(t, err)

	rooms := room.NewRegistry(boards)
	sessions := session.NewManager()

	hub := websocket.NewHub(nil, zerolog.Nop())
	svc := service.NewService(sessions, rooms, boards, hub, nil, zerolog.Nop())
	hub.SetDispatcher(svc)
	go hub.Run()

	return &testServer{
		server: NewServer(svc, hub, "", zerolog.Nop()),
		rooms:  rooms,
		boards: boards,
	}
}

func (ts *testServer) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	ts.server.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), target))
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	w := ts.get(t, "/health")
	assert.Equal(t, 200, w.Code)

	var resp map[string]string
	parseResponse(t, w, &resp)
	assert.Equal(t, "healthy", resp["status"])
}

func TestListRoomsEmpty(t *testing.T) {
	ts := newTestServer(t)

	w := ts.get(t, "/api/rooms")
	assert.Equal(t, 200, w.Code)

	var resp struct {
		Count int                 `json:"count"`
		Rooms []*service.RoomInfo `json:"rooms"`
	}
	parseResponse(t, w, &resp)
	assert.Equal(t, 0, resp.Count)
	assert.Empty(t, resp.Rooms)
}

func TestListRooms(t *testing.T) {
	ts := newTestServer(t)

	r1, err := ts.rooms.Create()
	require.NoError(t, err)
	_, err = ts.rooms.Create()
	require.NoError(t, err)

	res := r1.Join("sess-1", "ada")
	assert.True(t, res.IsHost)

	w := ts.get(t, "/api/rooms")
	assert.Equal(t, 200, w.Code)

	var resp struct {
		Count int                 `json:"count"`
		Rooms []*service.RoomInfo `json:"rooms"`
	}
	parseResponse(t, w, &resp)
	assert.Equal(t, 2, resp.Count)

	var seated *service.RoomInfo
	for _, info := range resp.Rooms {
		if info.Code == r1.Code {
			seated = info
		}
	}
	require.NotNil(t, seated)
	assert.Equal(t, 1, seated.Players)
	assert.Equal(t, 1, seated.Connected)
	assert.Equal(t, "LOBBY", seated.Phase)
}

func TestGetRoom(t *testing.T) {
	ts := newTestServer(t)

	r, err := ts.rooms.Create()
	require.NoError(t, err)
	r.Join("sess-1", "ada")

	w := ts.get(t, "/api/rooms/"+r.Code)
	assert.Equal(t, 200, w.Code)

	var snap room.Snapshot
	parseResponse(t, w, &snap)
	assert.Equal(t, r.Code, snap.Code)
	require.Len(t, snap.Players, 1)
	assert.Equal(t, "ada", snap.Players[0].Name)
	assert.NotNil(t, snap.Board)
}

func TestGetRoomNormalizesCode(t *testing.T) {
	ts := newTestServer(t)

	r, err := ts.rooms.Create()
	require.NoError(t, err)

	// Lowercase codes are accepted and folded.
	w := ts.get(t, "/api/rooms/"+lower(r.Code))
	assert.Equal(t, 200, w.Code)
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}

func TestGetRoomNotFound(t *testing.T) {
	ts := newTestServer(t)

	w := ts.get(t, "/api/rooms/ZZZZZZ")
	assert.Equal(t, 404, w.Code)

	var resp map[string]string
	parseResponse(t, w, &resp)
	assert.Contains(t, resp["error"], "not found")
}

func TestGetRoomBadCode(t *testing.T) {
	ts := newTestServer(t)

	w := ts.get(t, "/api/rooms/bad_code")
	assert.Equal(t, 400, w.Code)
}

func TestListBoards(t *testing.T) {
	ts := newTestServer(t)

	require.NoError(t, ts.boards.SaveBoard("ring", config.MinimalDefinition()))

	w := ts.get(t, "/api/boards")
	assert.Equal(t, 200, w.Code)

	var resp struct {
		Count  int                 `json:"count"`
		Boards []*config.BoardInfo `json:"boards"`
	}
	parseResponse(t, w, &resp)
	require.GreaterOrEqual(t, resp.Count, 1)

	found := false
	for _, b := range resp.Boards {
		if b.BoardID == "ring" {
			found = true
			assert.Greater(t, b.Nodes, 0)
		}
	}
	assert.True(t, found, "saved board missing from listing")
}

func TestGetBoard(t *testing.T) {
	ts := newTestServer(t)

	require.NoError(t, ts.boards.SaveBoard("ring", config.MinimalDefinition()))

	w := ts.get(t, "/api/boards/ring")
	assert.Equal(t, 200, w.Code)

	var def struct {
		Nodes []json.RawMessage `json:"nodes"`
	}
	parseResponse(t, w, &def)
	assert.NotEmpty(t, def.Nodes)
}

func TestGetBoardNotFound(t *testing.T) {
	ts := newTestServer(t)

	w := ts.get(t, "/api/boards/nope")
	assert.Equal(t, 404, w.Code)
}
