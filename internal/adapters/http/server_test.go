package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/espalier-dev/espalier"
	httpAdapter "github.com/espalier-dev/espalier/internal/adapters/http"
	"github.com/espalier-dev/espalier/internal/logging"
)

const supportDoc = `# Support Flow: support

## block: start
type: message
text: Welcome!
next: main_menu
rules:
  hide_on_next: false

---

## block: main_menu
type: menu
menu_id: main
text: Pick a topic
rules:
  hide_on_next: true
buttons:
  - id: billing
    text: Billing
    next: end

---

## block: end
type: message
text: Bye!
rules:
  hide_on_next: false
`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	engine, err := espalier.NewFromSource([]byte(supportDoc))
	require.NoError(t, err)

	srv := httptest.NewServer(httpAdapter.NewHandler(engine, logging.NewNop()))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decodeStep(t *testing.T, resp *http.Response) httpAdapter.StepResponse {
	t.Helper()
	defer resp.Body.Close()
	var step httpAdapter.StepResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&step))
	return step
}

func TestServer_StartAndAdvance(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/v1/start", httpAdapter.StartRequest{SessionID: "user-1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	step := decodeStep(t, resp)
	assert.Equal(t, "user-1", step.SessionID)
	require.Len(t, step.Renders, 2)
	assert.Equal(t, "main_menu", step.Renders[1].BlockID)
	assert.False(t, step.Terminal)

	resp = postJSON(t, srv.URL+"/v1/advance", httpAdapter.AdvanceRequest{SessionID: "user-1", Selector: "billing"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	step = decodeStep(t, resp)
	require.Len(t, step.Renders, 1)
	assert.Equal(t, "end", step.Renders[0].BlockID)
	assert.True(t, step.Terminal)
}

func TestServer_StartGeneratesSessionID(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/v1/start", httpAdapter.StartRequest{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	step := decodeStep(t, resp)
	assert.NotEmpty(t, step.SessionID)
}

func TestServer_AdvanceErrorMapping(t *testing.T) {
	srv := newTestServer(t)

	t.Run("Unknown Session Is 404", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/v1/advance", httpAdapter.AdvanceRequest{SessionID: "ghost", Selector: "billing"})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("Invalid Selector Is 422", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/v1/start", httpAdapter.StartRequest{SessionID: "user-422"})
		resp.Body.Close()

		resp = postJSON(t, srv.URL+"/v1/advance", httpAdapter.AdvanceRequest{SessionID: "user-422", Selector: "bogus"})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("Terminated Session Is 409", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/v1/start", httpAdapter.StartRequest{SessionID: "user-409"})
		resp.Body.Close()
		resp = postJSON(t, srv.URL+"/v1/advance", httpAdapter.AdvanceRequest{SessionID: "user-409", Selector: "billing"})
		resp.Body.Close()

		resp = postJSON(t, srv.URL+"/v1/advance", httpAdapter.AdvanceRequest{SessionID: "user-409", Selector: "billing"})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("Missing Session ID Is 400", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/v1/advance", httpAdapter.AdvanceRequest{Selector: "billing"})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestServer_Sessions(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/v1/start", httpAdapter.StartRequest{SessionID: "user-1"})
	resp.Body.Close()

	resp, err := http.Get(srv.URL + "/v1/sessions")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Sessions []string `json:"sessions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []string{"user-1"}, body.Sessions)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/v1/sessions/user-1", nil)
	require.NoError(t, err)
	delResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	delResp.Body.Close()
	assert.Equal(t, http.StatusNoContent, delResp.StatusCode)
}

func TestServer_GraphAndHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/v1/graph")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var graph struct {
		FlowID string           `json:"flow_id"`
		Entry  string           `json:"entry"`
		Blocks []map[string]any `json:"blocks"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&graph))
	assert.Equal(t, "support", graph.FlowID)
	assert.Equal(t, "start", graph.Entry)
	assert.Len(t, graph.Blocks, 3)

	health, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)

	metricsResp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer metricsResp.Body.Close()
	assert.Equal(t, http.StatusOK, metricsResp.StatusCode)
}
