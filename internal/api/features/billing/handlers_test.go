package billing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	billingcore "github.com/kolmo-labs/buildledger/internal/billing"
	"github.com/kolmo-labs/buildledger/internal/testutil"
	"github.com/kolmo-labs/buildledger/pkg/core"
)

func pct(v float64) *float64 { return &v }

// newTestServer seeds a project holding a 20% task plus 35% and 25%
// milestones, leaving a 20% allowance.
func newTestServer(t *testing.T) (*httptest.Server, int64) {
	t.Helper()

	store := testutil.NewTestStore(t)
	ctx := context.Background()

	p := &core.Project{Name: "Cedar deck", ClientName: "M. Okafor"}
	require.NoError(t, store.CreateProject(ctx, p))

	require.NoError(t, store.CreateTask(ctx, &core.Task{
		ProjectID: p.ID, Title: "demo + footings", BillingPercentage: pct(20),
	}))
	require.NoError(t, store.CreateMilestone(ctx, &core.Milestone{
		ProjectID: p.ID, Title: "framing complete", BillingPercentage: pct(35),
	}))
	require.NoError(t, store.CreateMilestone(ctx, &core.Milestone{
		ProjectID: p.ID, Title: "decking complete", BillingPercentage: pct(25),
	}))

	r := chi.NewMux()
	SetupRoutes(r, billingcore.NewValidator(store), testutil.NewTestLogger(t))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, p.ID
}

func getJSON[T any](t *testing.T, srv *httptest.Server, path string, wantStatus int) T {
	t.Helper()
	resp, err := srv.Client().Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, wantStatus, resp.StatusCode)
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func postJSON[T any](t *testing.T, srv *httptest.Server, path, body string, wantStatus int) T {
	t.Helper()
	resp, err := srv.Client().Post(srv.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, wantStatus, resp.StatusCode)
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestGetTotals(t *testing.T) {
	srv, projectID := newTestServer(t)

	totals := getJSON[billingcore.Totals](t, srv,
		"/api/projects/"+itoa(projectID)+"/billing-validation", http.StatusOK)

	assert.Equal(t, 20.0, totals.TotalFromTasks)
	assert.Equal(t, 60.0, totals.TotalFromMilestones)
	assert.Equal(t, 80.0, totals.GrandTotal)
	assert.Equal(t, 20.0, totals.RemainingPercentage)
}

func TestGetTotals_ExclusionParams(t *testing.T) {
	srv, projectID := newTestServer(t)
	base := "/api/projects/" + itoa(projectID) + "/billing-validation"

	// Excluding the 20% task leaves only the milestones.
	totals := getJSON[billingcore.Totals](t, srv, base+"?excludeTaskId=1", http.StatusOK)
	assert.Equal(t, 0.0, totals.TotalFromTasks)
	assert.Equal(t, 60.0, totals.GrandTotal)
	assert.Equal(t, 40.0, totals.RemainingPercentage)

	// Excluding the 35% milestone drops the grand total to 45.
	totals = getJSON[billingcore.Totals](t, srv, base+"?excludeMilestoneId=1", http.StatusOK)
	assert.Equal(t, 20.0, totals.TotalFromTasks)
	assert.Equal(t, 25.0, totals.TotalFromMilestones)
	assert.Equal(t, 45.0, totals.GrandTotal)
}

func TestGetTotals_BadExclusionParam(t *testing.T) {
	srv, projectID := newTestServer(t)

	resp := getJSON[map[string]string](t, srv,
		"/api/projects/"+itoa(projectID)+"/billing-validation?excludeTaskId=first",
		http.StatusBadRequest)
	assert.Contains(t, resp["error"], "excludeTaskId")
}

func TestGetTotals_UnknownProject(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := getJSON[map[string]string](t, srv,
		"/api/projects/9999/billing-validation", http.StatusNotFound)
	assert.Contains(t, resp["error"], "not found")
}

func TestGetTotals_NonNumericID(t *testing.T) {
	srv, _ := newTestServer(t)

	getJSON[map[string]string](t, srv,
		"/api/projects/abc/billing-validation", http.StatusBadRequest)
}

func TestValidateTask(t *testing.T) {
	srv, projectID := newTestServer(t)
	base := "/api/projects/" + itoa(projectID) + "/billing-validation"

	// 15% fits in the 20% allowance.
	res := postJSON[billingcore.Result](t, srv, base+"/validate-task",
		`{"billingPercentage": 15}`, http.StatusOK)
	assert.True(t, res.IsValid)
	assert.Equal(t, 80.0, res.CurrentTotal)
	assert.Equal(t, 20.0, res.RemainingPercentage)
	assert.Empty(t, res.ErrorMessage)

	// 25% does not.
	res = postJSON[billingcore.Result](t, srv, base+"/validate-task",
		`{"billingPercentage": 25}`, http.StatusOK)
	assert.False(t, res.IsValid)
	assert.Contains(t, res.ErrorMessage, "at most 20.0% may be added")
}

func TestValidateMilestone(t *testing.T) {
	srv, projectID := newTestServer(t)
	base := "/api/projects/" + itoa(projectID) + "/billing-validation"

	res := postJSON[billingcore.Result](t, srv, base+"/validate-milestone",
		`{"billingPercentage": 30}`, http.StatusOK)
	assert.False(t, res.IsValid)
	assert.Equal(t, 80.0, res.CurrentTotal)
	assert.Equal(t, 20.0, res.RemainingPercentage)
}

func TestValidateMilestone_WithExclusion(t *testing.T) {
	srv, projectID := newTestServer(t)
	base := "/api/projects/" + itoa(projectID) + "/billing-validation"

	// Excluding the 35% milestone (id 1) frees room for a 50% proposal.
	res := postJSON[billingcore.Result](t, srv, base+"/validate-milestone",
		`{"billingPercentage": 50, "excludeMilestoneId": 1}`, http.StatusOK)
	assert.True(t, res.IsValid)
	assert.Equal(t, 45.0, res.CurrentTotal)
	assert.Equal(t, 55.0, res.RemainingPercentage)
}

func TestValidate_MismatchedExclusionField(t *testing.T) {
	srv, projectID := newTestServer(t)
	base := "/api/projects/" + itoa(projectID) + "/billing-validation"

	// A milestone exclusion on the task endpoint (and vice versa) is a
	// client bug; the strict decoder rejects it rather than dropping it.
	resp := postJSON[map[string]string](t, srv, base+"/validate-task",
		`{"billingPercentage": 10, "excludeMilestoneId": 1}`, http.StatusBadRequest)
	assert.Contains(t, resp["error"], "excludeMilestoneId")

	resp = postJSON[map[string]string](t, srv, base+"/validate-milestone",
		`{"billingPercentage": 10, "excludeTaskId": 1}`, http.StatusBadRequest)
	assert.Contains(t, resp["error"], "excludeTaskId")
}

func TestValidateTask_BadBody(t *testing.T) {
	srv, projectID := newTestServer(t)

	postJSON[map[string]string](t, srv,
		"/api/projects/"+itoa(projectID)+"/billing-validation/validate-task",
		`{"billingPercentage": "a lot"}`, http.StatusBadRequest)
}

func TestValidateTask_UnknownProject(t *testing.T) {
	srv, _ := newTestServer(t)

	postJSON[map[string]string](t, srv,
		"/api/projects/9999/billing-validation/validate-task",
		`{"billingPercentage": 10}`, http.StatusNotFound)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
