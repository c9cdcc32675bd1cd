package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"svw.info/propagenda/internal/agenda"
	"svw.info/propagenda/internal/domain"
	"svw.info/propagenda/internal/infrastructure/metadata"
	"svw.info/propagenda/internal/progression"
	"svw.info/propagenda/internal/usecase"
	"svw.info/propagenda/internal/validator"
)

const oneAgenda = `[{"id":"one-small","title":"Think Small","description":"d","difficulty":1}]`

func newServer(t *testing.T, meta string) *httptest.Server {
	t.Helper()
	src := metadata.NewFS(fstest.MapFS{"agendas.json": {Data: []byte(meta)}}, "agendas.json")
	uc := usecase.NewService(src, progression.NewSelector(progression.Seeded(7)), validator.New(), nil)
	uc.LoadCatalog(context.Background())
	mux := http.NewServeMux()
	New(uc, nil).Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

var (
	smallTaco = domain.BoardObject{ID: "1", Type: domain.Food, Name: "taco", Size: domain.Small, Color: domain.Yellow, Row: 0, Col: 0}
	bigLion   = domain.BoardObject{ID: "2", Type: domain.Animal, Name: "lion", Size: domain.Large, Color: domain.Yellow, Row: 1, Col: 1}
)

func TestAgendas(t *testing.T) {
	srv := newServer(t, oneAgenda)
	resp, err := http.Get(srv.URL + "/api/agendas")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got agendasResp
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, 1, got.Rounds)
	require.Len(t, got.Agendas, 1)
	assert.Equal(t, agenda.OneSmall, got.Agendas[0].ID)

	resp2 := postJSON(t, srv.URL+"/api/agendas", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp2.StatusCode)
}

func TestEvaluate(t *testing.T) {
	srv := newServer(t, oneAgenda)

	cases := []struct {
		name      string
		req       evaluateReq
		status    int
		satisfied bool
		hint      string
	}{
		{"satisfied", evaluateReq{AgendaID: agenda.OneSmall, Objects: []domain.BoardObject{smallTaco, bigLion}}, http.StatusOK, true, ""},
		{"unsatisfied", evaluateReq{AgendaID: agenda.OneSmall, Objects: []domain.BoardObject{bigLion}}, http.StatusOK, false, "No small items found on the board."},
		{"unknown agenda", evaluateReq{AgendaID: "nope", Objects: nil}, http.StatusOK, false, agenda.UnavailableHint},
		{"missing id", evaluateReq{Objects: nil}, http.StatusBadRequest, false, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+"/api/evaluate", tc.req)
			require.Equal(t, tc.status, resp.StatusCode)
			var got evaluateResp
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
			assert.Equal(t, tc.satisfied, got.Satisfied)
			if tc.hint != "" {
				assert.Contains(t, got.Hints, tc.hint)
			}
		})
	}
}

func TestEvaluate_JunkAgendaIDsDoNotGrowMetrics(t *testing.T) {
	srv := newServer(t, oneAgenda)
	evaluate := func(id string) {
		resp := postJSON(t, srv.URL+"/api/evaluate", evaluateReq{AgendaID: id})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	series := func() int {
		n, err := testutil.GatherAndCount(prometheus.DefaultGatherer, "propagenda_evaluations_total")
		require.NoError(t, err)
		return n
	}

	evaluate("junk-0")
	before := series()
	for i := 1; i <= 100; i++ {
		evaluate(fmt.Sprintf("junk-%d", i))
	}
	assert.Equal(t, before, series())
}

func TestEvaluate_InvalidBoard(t *testing.T) {
	srv := newServer(t, oneAgenda)

	clash := bigLion
	clash.ID, clash.Row, clash.Col = "3", 0, 0
	resp := postJSON(t, srv.URL+"/api/evaluate", evaluateReq{AgendaID: agenda.OneSmall, Objects: []domain.BoardObject{smallTaco, clash}})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var got evaluateResp
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, []domain.CellCoord{{Row: 0, Col: 0}}, got.Conflicts)

	raw, err := http.Post(srv.URL+"/api/evaluate", "application/json", strings.NewReader(`{"agendaId":`))
	require.NoError(t, err)
	defer raw.Body.Close()
	assert.Equal(t, http.StatusBadRequest, raw.StatusCode)
}

func TestNext(t *testing.T) {
	srv := newServer(t, oneAgenda)

	resp := postJSON(t, srv.URL+"/api/next", nextReq{})
	var got nextResp
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.NotNil(t, got.Agenda)
	assert.Equal(t, agenda.OneSmall, got.Agenda.ID)
	assert.Equal(t, 1, got.Round)
	assert.Equal(t, 1, got.Rounds)
	assert.False(t, got.Done)

	resp = postJSON(t, srv.URL+"/api/next", nextReq{Completed: []string{agenda.OneSmall}})
	got = nextResp{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Nil(t, got.Agenda)
	assert.True(t, got.Done)
}

func TestNext_CountsDistinctKnownCompletions(t *testing.T) {
	srv := newServer(t, `[
	  {"id":"one-small","title":"a","description":"","difficulty":1},
	  {"id":"snails-purple","title":"b","description":"","difficulty":3},
	  {"id":"one-per-row","title":"c","description":"","difficulty":5}
	]`)

	resp := postJSON(t, srv.URL+"/api/next", nextReq{Completed: []string{
		agenda.OneSmall, agenda.OneSmall, "bogus", agenda.OneSmall,
	}})
	var got nextResp
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.NotNil(t, got.Agenda)
	assert.NotEqual(t, agenda.OneSmall, got.Agenda.ID)
	assert.Equal(t, 2, got.Round)
	assert.Equal(t, 3, got.Rounds)
	assert.False(t, got.Done, "padding with junk ids must not end the game")
}

func TestNext_EmptyCatalog(t *testing.T) {
	srv := newServer(t, `not json`)
	resp := postJSON(t, srv.URL+"/api/next", nextReq{})
	var got nextResp
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.True(t, got.Done)
	assert.Equal(t, 0, got.Rounds)
}

func TestHealth(t *testing.T) {
	srv := newServer(t, oneAgenda)
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) ServerMessage {
	t.Helper()
	var m ServerMessage
	require.NoError(t, conn.ReadJSON(&m))
	return m
}

func TestSession_PlaysToVictory(t *testing.T) {
	conn := dial(t, newServer(t, oneAgenda))

	first := read(t, conn)
	require.Equal(t, MsgAgenda, first.Type)
	require.NotNil(t, first.Agenda)
	assert.Equal(t, agenda.OneSmall, first.Agenda.ID)
	assert.Equal(t, 1, first.Round)
	assert.Equal(t, 1, first.Rounds)
	assert.NotEmpty(t, first.Session)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: MsgBoard, Objects: []domain.BoardObject{bigLion}}))
	v := read(t, conn)
	assert.Equal(t, MsgVerdict, v.Type)
	assert.False(t, v.Satisfied)
	assert.Equal(t, []string{"No small items found on the board."}, v.Hints)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: MsgAdvance}))
	assert.Equal(t, MsgError, read(t, conn).Type, "advance needs a satisfied board")

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: MsgBoard, Objects: []domain.BoardObject{smallTaco, bigLion}}))
	v = read(t, conn)
	assert.True(t, v.Satisfied)
	assert.Empty(t, v.Hints)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: MsgAdvance}))
	done := read(t, conn)
	assert.Equal(t, MsgComplete, done.Type)
	assert.Equal(t, 1, done.Round)
	assert.Equal(t, first.Session, done.Session)
	require.NotNil(t, done.Stats)
	assert.Equal(t, 2, done.Stats.TotalMoves)
	assert.Equal(t, 2, done.Stats.ObjectsPlaced, "lion resubmitted, taco added")
	assert.GreaterOrEqual(t, done.Stats.TimeTakenMs, int64(0))
	assert.Regexp(t, `^\d+:\d{2}$`, done.Stats.TimeTaken)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: MsgRestart}))
	again := read(t, conn)
	assert.Equal(t, MsgAgenda, again.Type)
	assert.Equal(t, 1, again.Round)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: MsgBoard, Objects: []domain.BoardObject{smallTaco}}))
	require.True(t, read(t, conn).Satisfied)
	require.NoError(t, conn.WriteJSON(ClientMessage{Type: MsgAdvance}))
	done = read(t, conn)
	require.NotNil(t, done.Stats)
	assert.Equal(t, 1, done.Stats.TotalMoves, "restart clears the counters")
	assert.Equal(t, 1, done.Stats.ObjectsPlaced)
}

func TestSession_VerdictAlwaysCarriesSatisfied(t *testing.T) {
	conn := dial(t, newServer(t, oneAgenda))
	read(t, conn)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: MsgBoard, Objects: []domain.BoardObject{bigLion}}))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var frame map[string]any
	require.NoError(t, json.Unmarshal(raw, &frame))
	assert.Equal(t, MsgVerdict, frame["type"])
	assert.Equal(t, false, frame["satisfied"])
}

func TestSession_BadMessages(t *testing.T) {
	conn := dial(t, newServer(t, oneAgenda))
	read(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":`)))
	assert.Equal(t, MsgError, read(t, conn).Type)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: "dance"}))
	assert.Contains(t, read(t, conn).Error, "dance")

	clash := bigLion
	clash.ID, clash.Row, clash.Col = "3", 0, 0
	require.NoError(t, conn.WriteJSON(ClientMessage{Type: MsgBoard, Objects: []domain.BoardObject{smallTaco, clash}}))
	m := read(t, conn)
	assert.Equal(t, MsgError, m.Type)
	assert.Equal(t, []domain.CellCoord{{Row: 0, Col: 0}}, m.Conflicts)
}

func TestSession_EmptyCatalogIsImmediateVictory(t *testing.T) {
	conn := dial(t, newServer(t, `[]`))
	m := read(t, conn)
	assert.Equal(t, MsgComplete, m.Type)
	assert.Equal(t, 0, m.Rounds)
}
