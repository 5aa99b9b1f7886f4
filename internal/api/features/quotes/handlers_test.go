package quotes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kolmo-labs/buildledger/internal/quote"
	"github.com/kolmo-labs/buildledger/internal/testutil"
	"github.com/kolmo-labs/buildledger/pkg/core"
)

func newTestServer(t *testing.T) (*httptest.Server, core.Store) {
	t.Helper()

	store := testutil.NewTestStore(t)

	r := chi.NewMux()
	SetupRoutes(r, store, quote.NewBook(nil), testutil.NewTestLogger(t))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, store
}

func post[T any](t *testing.T, srv *httptest.Server, path string, body any, wantStatus int) T {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	resp, err := srv.Client().Post(srv.URL+path, "application/json", &buf)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, wantStatus, resp.StatusCode)
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

type siteInputJSON struct {
	WidthFt     float64 `json:"widthFt"`
	DepthFt     float64 `json:"depthFt"`
	HeightFt    float64 `json:"heightFt"`
	DeckingType string  `json:"deckingType,omitempty"`
}

func TestEstimate(t *testing.T) {
	srv, _ := newTestServer(t)

	res := post[EstimateResponse](t, srv, "/api/quotes/estimate",
		siteInputJSON{WidthFt: 12, DepthFt: 10, HeightFt: 3}, http.StatusOK)

	require.NotNil(t, res.Structure)
	assert.True(t, res.Structure.Compliant)

	require.NotNil(t, res.Quote)
	assert.Equal(t, 120.0, res.Quote.DeckSqft)
	assert.Greater(t, res.Quote.Total, 0.0)
	assert.InDelta(t, res.Quote.Subtotal+res.Quote.MarginAmount, res.Quote.Total, 0.01)
}

func TestEstimate_NonCompliantDesignReturnsErrors(t *testing.T) {
	srv, _ := newTestServer(t)

	// 30' of depth cannot be spanned by any prescriptive joist.
	res := post[EstimateResponse](t, srv, "/api/quotes/estimate",
		siteInputJSON{WidthFt: 10, DepthFt: 30, HeightFt: 3}, http.StatusOK)

	require.NotNil(t, res.Structure)
	assert.False(t, res.Structure.Compliant)
	assert.NotEmpty(t, res.Structure.Errors)
	assert.Nil(t, res.Quote, "non-compliant designs are not priced")
}

func TestEstimate_RejectsZeroDimensions(t *testing.T) {
	srv, _ := newTestServer(t)

	post[map[string]string](t, srv, "/api/quotes/estimate",
		siteInputJSON{WidthFt: 0, DepthFt: 10, HeightFt: 3}, http.StatusBadRequest)
}

func TestCreateQuote_PersistsAgainstProject(t *testing.T) {
	srv, store := newTestServer(t)

	p := &core.Project{Name: "Deck build", ClientName: "T. Nakamura"}
	require.NoError(t, store.CreateProject(context.Background(), p))

	res := post[EstimateResponse](t, srv, fmt.Sprintf("/api/projects/%d/quotes", p.ID),
		siteInputJSON{WidthFt: 12, DepthFt: 10, HeightFt: 3}, http.StatusCreated)
	require.NotNil(t, res.Quote)
	assert.NotEmpty(t, res.Quote.ID)
	assert.Equal(t, p.ID, res.Quote.ProjectID)

	resp, err := srv.Client().Get(srv.URL + fmt.Sprintf("/api/projects/%d/quotes", p.ID))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var saved []core.Quote
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&saved))
	require.Len(t, saved, 1)
	assert.Equal(t, res.Quote.ID, saved[0].ID)
	assert.NotEmpty(t, saved[0].LineItems)
}

func TestCreateQuote_UnknownProject(t *testing.T) {
	srv, _ := newTestServer(t)

	post[map[string]string](t, srv, "/api/projects/9999/quotes",
		siteInputJSON{WidthFt: 12, DepthFt: 10, HeightFt: 3}, http.StatusNotFound)
}

func TestCreateQuote_NonCompliantDesignRejected(t *testing.T) {
	srv, store := newTestServer(t)

	p := &core.Project{Name: "Deck build", ClientName: "T. Nakamura"}
	require.NoError(t, store.CreateProject(context.Background(), p))

	resp := post[map[string]string](t, srv, fmt.Sprintf("/api/projects/%d/quotes", p.ID),
		siteInputJSON{WidthFt: 10, DepthFt: 30, HeightFt: 3}, http.StatusBadRequest)
	assert.Contains(t, resp["error"], "not code compliant")
}
