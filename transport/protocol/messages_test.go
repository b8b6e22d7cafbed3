package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barikade/game/engine"
)

func TestDecodeIntents(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want interface{}
	}{
		{
			name: "host room",
			raw:  `{"t":"HOST_ROOM","name":"ana","sessionId":"abc"}`,
			want: &HostRoom{Name: "ana", SessionID: "abc"},
		},
		{
			name: "join room",
			raw:  `{"t":"JOIN_ROOM","code":"friends","name":"bo"}`,
			want: &JoinRoom{Code: "friends", Name: "bo"},
		},
		{
			name: "claim color",
			raw:  `{"t":"CLAIM_COLOR","color":"blue"}`,
			want: &ClaimColor{Color: "blue"},
		},
		{
			name: "start game",
			raw:  `{"t":"START_GAME"}`,
			want: &StartGame{},
		},
		{
			name: "reset keeping players",
			raw:  `{"t":"RESET_ROOM","keepPlayers":true}`,
			want: &ResetRoom{KeepPlayers: true},
		},
		{
			name: "request roll",
			raw:  `{"t":"REQUEST_ROLL"}`,
			want: &RequestRoll{},
		},
		{
			name: "move",
			raw:  `{"t":"MOVE","pieceIndex":2,"toNode":"n_14"}`,
			want: &Move{PieceIndex: 2, ToNode: "n_14"},
		},
		{
			name: "place barricade",
			raw:  `{"t":"PLACE_BARRICADE","nodeId":"n_7"}`,
			want: &PlaceBarricade{NodeID: "n_7"},
		},
		{
			name: "ping",
			raw:  `{"t":"PING"}`,
			want: &Ping{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeBoardSet(t *testing.T) {
	raw := `{"t":"BOARD_SET","name":"mine","board":{"nodes":[{"id":"a","kind":"board"}],"edges":[],"goalNode":"a"}}`
	got, err := Decode([]byte(raw))
	require.NoError(t, err)

	bs, ok := got.(*BoardSet)
	require.True(t, ok)
	assert.Equal(t, "mine", bs.Name)
	require.NotNil(t, bs.Board)
	require.Len(t, bs.Board.Nodes, 1)
	assert.Equal(t, "a", bs.Board.Nodes[0].ID)
}

func TestDecodeRejects(t *testing.T) {
	var re *engine.RuleError

	// Frames that do not parse at all carry no sender intent to reject.
	_, err := Decode([]byte(`not json`))
	assert.ErrorIs(t, err, ErrMalformedEnvelope)

	_, err = Decode([]byte(`{"name":"no tag"}`))
	assert.ErrorIs(t, err, ErrMalformedEnvelope)

	_, err = Decode([]byte(`{"t":"SELF_DESTRUCT"}`))
	require.ErrorAs(t, err, &re)
	assert.Equal(t, CodeUnknownType, re.Code)

	_, err = Decode([]byte(`{"t":"MOVE","pieceIndex":"two"}`))
	require.ErrorAs(t, err, &re)
	assert.Equal(t, CodeBadMessage, re.Code)
}

func TestServerMessages(t *testing.T) {
	data, err := Encode(NewHello("sess-1"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"t":"HELLO","sessionId":"sess-1"}`, string(data))

	data, err = Encode(NewRoomCode("AB12CD"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"t":"ROOM_CODE","code":"AB12CD"}`, string(data))

	data, err = Encode(NewPong())
	require.NoError(t, err)
	assert.JSONEq(t, `{"t":"PONG"}`, string(data))
}

func TestNewError(t *testing.T) {
	msg := NewError(engine.NewRuleError(engine.CodeNotYourTurn, "another color is active"))
	assert.Equal(t, TypeErr, msg.T)
	assert.Equal(t, engine.CodeNotYourTurn, msg.Code)
	assert.Equal(t, "another color is active", msg.Message)

	// Internal failures never leak details to clients.
	msg = NewError(assert.AnError)
	assert.Equal(t, "internal_error", msg.Code)
	assert.Empty(t, msg.Message)

	data, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"t":"ERR","code":"internal_error"}`, string(data))
}
