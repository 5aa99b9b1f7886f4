package state

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kolmo-labs/buildledger/pkg/core"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore()
	if err := store.Open(":memory:"); err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	if err := store.Migrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func createTestProject(t *testing.T, store *SQLiteStore) *core.Project {
	t.Helper()
	p := &core.Project{Name: "Maple St deck", ClientName: "J. Alder"}
	if err := store.CreateProject(context.Background(), p); err != nil {
		t.Fatalf("failed to create project: %v", err)
	}
	return p
}

func pctPtr(v float64) *float64 { return &v }

func TestSQLiteStore_OpenClose(t *testing.T) {
	store := NewSQLiteStore()
	if err := store.Open(":memory:"); err != nil {
		t.Fatalf("failed to open in-memory store: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}
}

func TestSQLiteStore_Migrate(t *testing.T) {
	store := setupTestStore(t)

	tables := []string{"projects", "tasks", "milestones", "leads", "quotes", "quote_line_items"}
	for _, table := range tables {
		rows, err := store.db.Query("SELECT 1 FROM " + table + " LIMIT 1")
		if err != nil {
			t.Errorf("table %s does not exist: %v", table, err)
		} else {
			rows.Close()
		}
	}

	version, err := store.MigrationVersion()
	if err != nil {
		t.Fatalf("failed to get migration version: %v", err)
	}
	if version < 1 {
		t.Errorf("expected migration version >= 1, got %d", version)
	}
}

func TestSQLiteStore_ProjectLifecycle(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	p := createTestProject(t, store)
	if p.ID == 0 {
		t.Fatal("project ID should be assigned")
	}
	if p.Status != core.ProjectStatusPlanning {
		t.Errorf("expected default status planning, got %q", p.Status)
	}

	got, err := store.GetProject(ctx, p.ID)
	if err != nil {
		t.Fatalf("failed to get project: %v", err)
	}
	if got.Name != "Maple St deck" {
		t.Errorf("expected name 'Maple St deck', got %q", got.Name)
	}

	if err := store.UpdateProjectStatus(ctx, p.ID, core.ProjectStatusActive); err != nil {
		t.Fatalf("failed to update status: %v", err)
	}
	got, _ = store.GetProject(ctx, p.ID)
	if got.Status != core.ProjectStatusActive {
		t.Errorf("expected status active, got %q", got.Status)
	}

	if err := store.ArchiveProject(ctx, p.ID); err != nil {
		t.Fatalf("failed to archive project: %v", err)
	}
	if _, err := store.GetProject(ctx, p.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound for archived project, got %v", err)
	}
}

func TestSQLiteStore_GetProject_NotFound(t *testing.T) {
	store := setupTestStore(t)
	if _, err := store.GetProject(context.Background(), 999); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteStore_TaskLifecycle(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	p := createTestProject(t, store)

	task := &core.Task{ProjectID: p.ID, Title: "framing", BillingPercentage: pctPtr(30)}
	if err := store.CreateTask(ctx, task); err != nil {
		t.Fatalf("failed to create task: %v", err)
	}
	if task.ID == 0 {
		t.Fatal("task ID should be assigned")
	}

	got, err := store.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("failed to get task: %v", err)
	}
	if got.BillingPercentage == nil || *got.BillingPercentage != 30 {
		t.Errorf("expected billing percentage 30, got %v", got.BillingPercentage)
	}

	got.Title = "framing and sheathing"
	got.Status = core.TaskStatusInProgress
	if err := store.UpdateTask(ctx, got); err != nil {
		t.Fatalf("failed to update task: %v", err)
	}

	tasks, err := store.ListTasksByProject(ctx, p.ID)
	if err != nil {
		t.Fatalf("failed to list tasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Title != "framing and sheathing" {
		t.Errorf("unexpected task list: %+v", tasks)
	}

	if err := store.ArchiveTask(ctx, task.ID); err != nil {
		t.Fatalf("failed to archive task: %v", err)
	}
	tasks, _ = store.ListTasksByProject(ctx, p.ID)
	if len(tasks) != 0 {
		t.Errorf("archived task should not be listed, got %d tasks", len(tasks))
	}
}

func TestSQLiteStore_TaskNullBillingPercentage(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	p := createTestProject(t, store)

	task := &core.Task{ProjectID: p.ID, Title: "cleanup"}
	if err := store.CreateTask(ctx, task); err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	got, err := store.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("failed to get task: %v", err)
	}
	if got.BillingPercentage != nil {
		t.Errorf("expected nil billing percentage, got %v", *got.BillingPercentage)
	}
}

func TestSQLiteStore_MilestoneLifecycle(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	p := createTestProject(t, store)

	due := time.Now().UTC().AddDate(0, 1, 0)
	m := &core.Milestone{ProjectID: p.ID, Title: "rough-in inspection", BillingPercentage: pctPtr(25), DueDate: &due}
	if err := store.CreateMilestone(ctx, m); err != nil {
		t.Fatalf("failed to create milestone: %v", err)
	}

	got, err := store.GetMilestone(ctx, m.ID)
	if err != nil {
		t.Fatalf("failed to get milestone: %v", err)
	}
	if got.DueDate == nil {
		t.Error("expected due date to round-trip")
	}
	if got.Status != core.MilestoneStatusUpcoming {
		t.Errorf("expected default status upcoming, got %q", got.Status)
	}

	got.Status = core.MilestoneStatusReached
	if err := store.UpdateMilestone(ctx, got); err != nil {
		t.Fatalf("failed to update milestone: %v", err)
	}

	if err := store.ArchiveMilestone(ctx, m.ID); err != nil {
		t.Fatalf("failed to archive milestone: %v", err)
	}
	milestones, _ := store.ListMilestonesByProject(ctx, p.ID)
	if len(milestones) != 0 {
		t.Errorf("archived milestone should not be listed, got %d", len(milestones))
	}
}

func TestSQLiteStore_AllocationGuard(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	p := createTestProject(t, store)

	if err := store.CreateTask(ctx, &core.Task{ProjectID: p.ID, Title: "demo", BillingPercentage: pctPtr(60)}); err != nil {
		t.Fatalf("failed to create first task: %v", err)
	}

	// Second task pushing the project to 110% must roll back.
	err := store.CreateTask(ctx, &core.Task{ProjectID: p.ID, Title: "framing", BillingPercentage: pctPtr(50)})
	if !errors.Is(err, core.ErrOverAllocated) {
		t.Fatalf("expected ErrOverAllocated, got %v", err)
	}

	tasks, _ := store.ListTasksByProject(ctx, p.ID)
	if len(tasks) != 1 {
		t.Errorf("rolled-back task should not persist, got %d tasks", len(tasks))
	}

	// Milestone completing exactly 100% is allowed.
	if err := store.CreateMilestone(ctx, &core.Milestone{ProjectID: p.ID, Title: "final", BillingPercentage: pctPtr(40)}); err != nil {
		t.Fatalf("allocation of exactly 100%% should pass: %v", err)
	}

	// An update pushing past the cap must also roll back.
	tasks, _ = store.ListTasksByProject(ctx, p.ID)
	tasks[0].BillingPercentage = pctPtr(65)
	err = store.UpdateTask(ctx, tasks[0])
	if !errors.Is(err, core.ErrOverAllocated) {
		t.Fatalf("expected ErrOverAllocated on update, got %v", err)
	}
	got, _ := store.GetTask(ctx, tasks[0].ID)
	if *got.BillingPercentage != 60 {
		t.Errorf("rolled-back update should keep 60, got %v", *got.BillingPercentage)
	}
}

func TestSQLiteStore_ArchivedTaskFreesAllocation(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	p := createTestProject(t, store)

	first := &core.Task{ProjectID: p.ID, Title: "a", BillingPercentage: pctPtr(80)}
	if err := store.CreateTask(ctx, first); err != nil {
		t.Fatalf("failed to create task: %v", err)
	}
	if err := store.ArchiveTask(ctx, first.ID); err != nil {
		t.Fatalf("failed to archive task: %v", err)
	}

	// The archived 80% no longer counts.
	if err := store.CreateTask(ctx, &core.Task{ProjectID: p.ID, Title: "b", BillingPercentage: pctPtr(90)}); err != nil {
		t.Fatalf("archived allocation should be freed: %v", err)
	}
}

func TestSQLiteStore_LeadLifecycle(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	lead := &core.Lead{Name: "R. Chen", Email: "rchen@example.com", SiteAddress: "41 Pine Ct"}
	if err := store.CreateLead(ctx, lead); err != nil {
		t.Fatalf("failed to create lead: %v", err)
	}
	if lead.ID == "" {
		t.Fatal("lead ID should be assigned")
	}
	if lead.Status != core.LeadStatusNew {
		t.Errorf("expected default status new, got %q", lead.Status)
	}

	if err := store.UpdateLeadStatus(ctx, lead.ID, core.LeadStatusContacted); err != nil {
		t.Fatalf("failed to update lead status: %v", err)
	}

	got, err := store.GetLead(ctx, lead.ID)
	if err != nil {
		t.Fatalf("failed to get lead: %v", err)
	}
	if got.Status != core.LeadStatusContacted {
		t.Errorf("expected status contacted, got %q", got.Status)
	}

	leads, err := store.ListLeads(ctx)
	if err != nil {
		t.Fatalf("failed to list leads: %v", err)
	}
	if len(leads) != 1 {
		t.Errorf("expected 1 lead, got %d", len(leads))
	}
}

func TestSQLiteStore_QuoteRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	p := createTestProject(t, store)

	q := &core.Quote{
		ProjectID: p.ID,
		LineItems: []core.QuoteLineItem{
			{Category: "Footings", Description: "4 pier footings", Quantity: 4, Unit: "each", MaterialCost: 180, LaborCost: 700},
			{Category: "Decking", Description: "trex decking", Quantity: 120, Unit: "SF", MaterialCost: 1400, LaborCost: 1080},
		},
		MaterialsSubtotal: 1580,
		LaborSubtotal:     1780,
		Subtotal:          3360,
		Total:             4480,
		DeckSqft:          120,
	}
	if err := store.SaveQuote(ctx, q); err != nil {
		t.Fatalf("failed to save quote: %v", err)
	}

	quotes, err := store.ListQuotesByProject(ctx, p.ID)
	if err != nil {
		t.Fatalf("failed to list quotes: %v", err)
	}
	if len(quotes) != 1 {
		t.Fatalf("expected 1 quote, got %d", len(quotes))
	}
	if len(quotes[0].LineItems) != 2 {
		t.Fatalf("expected 2 line items, got %d", len(quotes[0].LineItems))
	}
	if quotes[0].LineItems[0].Category != "Footings" {
		t.Errorf("line item order not preserved: %+v", quotes[0].LineItems)
	}
	if quotes[0].Total != 4480 {
		t.Errorf("expected total 4480, got %v", quotes[0].Total)
	}
}
