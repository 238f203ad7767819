package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gucorpling/squeezer"
	"github.com/gucorpling/squeezer/pkg/adapters/memory"
	"github.com/gucorpling/squeezer/pkg/codec"
	"github.com/gucorpling/squeezer/pkg/domain"
	"github.com/gucorpling/squeezer/pkg/dsl"
	"github.com/gucorpling/squeezer/pkg/observability"
	"github.com/gucorpling/squeezer/pkg/session"
)

func signalDoc(id string) *domain.Document {
	b := dsl.New(id)
	b.Tokens("It", "rained", "so", "we", "left")
	b.Constituent("root").Kind("span").Layer("rst").
		Child("cause", "span").
		Child("result", "result").
		SecondaryEdge(1, 2, "result").
		Signal("dm", "dm", []any{"3"}, 1, 2)
	b.Constituent("cause").Layer("rst").ExternalID(1).Dominates("t1", "t2")
	b.Constituent("result").Layer("rst").ExternalID(2).Dominates("t3", "t4", "t5")
	return b.MustBuild()
}

func newTestHandler(t *testing.T, docs ...*domain.Document) (http.Handler, *memory.Store) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	eng, err := squeezer.New(squeezer.WithLifecycleHooks(m.Hooks()))
	require.NoError(t, err)

	store := memory.NewStoreFrom(docs...)
	return NewHandler(&Server{
		Engine:   eng,
		Sessions: session.NewManager(store),
		Gatherer: reg,
	}), store
}

func encode(t *testing.T, doc *domain.Document, f codec.Format) *bytes.Reader {
	t.Helper()
	data, err := codec.Marshal(doc, f)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func TestHealthz(t *testing.T) {
	handler, _ := newTestHandler(t)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestTransform(t *testing.T) {
	handler, _ := newTestHandler(t)

	for _, f := range []codec.Format{codec.FormatJSON, codec.FormatYAML} {
		t.Run(string(f), func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/transform", encode(t, signalDoc("d1"), f))
			req.Header.Set("Content-Type", "application/"+string(f))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
			var resp struct {
				Report struct {
					Scaffolds int `json:"scaffolds"`
					Bound     int `json:"bound"`
				} `json:"report"`
				Document codec.Document `json:"document"`
			}
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, 1, resp.Report.Scaffolds)
			assert.Equal(t, 1, resp.Report.Bound)

			doc, err := resp.Document.ToDomain()
			require.NoError(t, err)
			assert.Len(t, doc.Graph.NodesOf(domain.KindScaffold), 1)
			assert.Zero(t, domain.Summarize(doc.Graph).Scratch)
		})
	}
}

func TestTransform_Errors(t *testing.T) {
	handler, _ := newTestHandler(t)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/transform", strings.NewReader("{nope")))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	b := dsl.New("broken")
	b.Tokens("a")
	b.Constituent("root").SecondaryEdge(1, 9, "result")
	b.Constituent("x").ExternalID(1).Dominates("t1")

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/transform", encode(t, b.MustBuild(), codec.FormatJSON)))
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, string(domain.PassSecondaryEdges), resp.Pass)
}

func TestValidateAndGraph(t *testing.T) {
	handler, _ := newTestHandler(t)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/validate?mode=output", encode(t, signalDoc("d"), codec.FormatJSON)))
	require.Equal(t, http.StatusOK, rr.Code)
	var v ValidateResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v))
	assert.False(t, v.Valid, "scratch payloads are still present")
	assert.NotEmpty(t, v.Issues)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/graph", encode(t, signalDoc("d"), codec.FormatJSON)))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Body.String(), "graph TD"))
}

func TestStoredDocuments(t *testing.T) {
	handler, store := newTestHandler(t, signalDoc("stored"))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/documents/", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"documents":["stored"]}`, rr.Body.String())

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/documents/stored/transform", nil))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	saved, err := store.Load(context.Background(), "stored")
	require.NoError(t, err)
	assert.Len(t, saved.Graph.NodesOf(domain.KindScaffold), 1)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/documents/missing", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	handler, _ := newTestHandler(t)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/transform", encode(t, signalDoc("m"), codec.FormatJSON)))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `squeezer_documents_total{status="ok"} 1`)
}
