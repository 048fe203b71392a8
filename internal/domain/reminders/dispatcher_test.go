package reminders

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"hrflow/internal/platform/email"
)

// fakeStore is an in-memory StoreAPI for scheduler and dispatcher tests.
type fakeStore struct {
	StoreAPI

	mu       sync.Mutex
	configs  []ReminderConfig
	cycles   map[string]CycleInfo
	tenants  map[string]string
	admins   []Recipient
	emps     []Recipient
	mgrs     []Recipient
	rows     map[string]*ScheduledEmail
	leases   map[string]time.Time
	nextID   int
	cycleErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		cycles:  make(map[string]CycleInfo),
		tenants: map[string]string{"tenant-1": "Acme"},
		rows:    make(map[string]*ScheduledEmail),
		leases:  make(map[string]time.Time),
	}
}

func (f *fakeStore) ActiveConfigs(ctx context.Context) ([]ReminderConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []ReminderConfig
	for _, cfg := range f.configs {
		if cfg.Active {
			out = append(out, cfg)
		}
	}
	return out, nil
}

func (f *fakeStore) MarkConfigInactive(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.configs {
		if f.configs[i].ID == id {
			f.configs[i].Active = false
		}
	}
	return nil
}

func (f *fakeStore) CycleInfo(ctx context.Context, tenantID, cycleID string) (*CycleInfo, error) {
	if f.cycleErr != nil {
		return nil, f.cycleErr
	}
	cycle, ok := f.cycles[cycleID]
	if !ok {
		return nil, nil
	}
	return &cycle, nil
}

func (f *fakeStore) TenantName(ctx context.Context, tenantID string) (string, error) {
	return f.tenants[tenantID], nil
}

func (f *fakeStore) AdminRecipients(ctx context.Context, tenantID string) ([]Recipient, error) {
	return f.admins, nil
}

func (f *fakeStore) SignedContractRecipients(ctx context.Context, tenantID string) ([]Recipient, error) {
	return f.emps, nil
}

func (f *fakeStore) TeamManagerRecipients(ctx context.Context, tenantID string) ([]Recipient, error) {
	return f.mgrs, nil
}

func (f *fakeStore) InsertScheduled(ctx context.Context, emails []ScheduledEmail) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inserted := 0
	for _, e := range emails {
		dup := false
		for _, existing := range f.rows {
			if existing.CycleID == e.CycleID && existing.RecipientEmail == e.RecipientEmail &&
				existing.EmailType == e.EmailType && existing.ScheduledFor.Equal(e.ScheduledFor) {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		f.nextID++
		e.ID = fmt.Sprintf("email-%d", f.nextID)
		row := e
		f.rows[row.ID] = &row
		inserted++
	}
	return inserted, nil
}

func (f *fakeStore) ListDue(ctx context.Context, now time.Time, limit int) ([]ScheduledEmail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []ScheduledEmail
	for _, row := range f.rows {
		if row.Status != StatusPending || row.ScheduledFor.After(now) {
			continue
		}
		if lease, ok := f.leases[row.ID]; ok && lease.After(now) {
			continue
		}
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledFor.Before(out[j].ScheduledFor) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) ClaimPending(ctx context.Context, id string, leaseUntil time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok || row.Status != StatusPending || row.ScheduledFor.After(time.Now()) {
		return false, nil
	}
	if lease, leased := f.leases[id]; leased && lease.After(time.Now()) {
		return false, nil
	}
	f.leases[id] = leaseUntil
	return true, nil
}

func (f *fakeStore) MarkSent(ctx context.Context, id, providerMessageID string, sentAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if row, ok := f.rows[id]; ok && row.Status == StatusPending {
		row.Status = StatusSent
		row.ProviderMessageID = providerMessageID
	}
	return nil
}

func (f *fakeStore) Reschedule(ctx context.Context, id string, nextAttempt time.Time, lastError string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if row, ok := f.rows[id]; ok && row.Status == StatusPending {
		row.RetryCount++
		row.ScheduledFor = nextAttempt
		row.LastError = lastError
		delete(f.leases, id)
	}
	return nil
}

func (f *fakeStore) MarkFailed(ctx context.Context, id, lastError string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if row, ok := f.rows[id]; ok && row.Status == StatusPending {
		row.Status = StatusFailed
		row.RetryCount++
		row.LastError = lastError
	}
	return nil
}

// fakeMailer records sends and fails addresses listed in failTo.
type fakeMailer struct {
	mu     sync.Mutex
	sent   []email.Message
	failTo map[string]bool
}

func (m *fakeMailer) Send(ctx context.Context, msg email.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failTo[msg.To] {
		return "", errors.New("smtp: mailbox unavailable")
	}
	m.sent = append(m.sent, msg)
	return fmt.Sprintf("msg-%d", len(m.sent)), nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func dueRow(store *fakeStore, to string, retryCount, maxRetries int) string {
	data := EmailData{
		CycleID:        "cycle-1",
		CycleName:      "H1 Review",
		TenantName:     "Acme",
		Milestone:      MilestoneStart,
		MilestoneDate:  day(2026, time.March, 10),
		RecipientName:  "Eve",
		RecipientEmail: to,
		RecipientType:  RecipientEmployee,
	}
	store.nextID++
	id := fmt.Sprintf("email-%d", store.nextID)
	store.rows[id] = &ScheduledEmail{
		ID:             id,
		TenantID:       "tenant-1",
		CycleID:        "cycle-1",
		EmailType:      EmailTypeStartAll,
		RecipientEmail: to,
		RecipientType:  RecipientEmployee,
		ScheduledFor:   time.Now().Add(-time.Minute),
		Status:         StatusPending,
		RetryCount:     retryCount,
		MaxRetries:     maxRetries,
		EmailData:      data,
	}
	return id
}

func TestDispatcherSendsDueRows(t *testing.T) {
	store := newFakeStore()
	dueRow(store, "eve@acme.test", 0, 3)
	dueRow(store, "mia@acme.test", 0, 3)
	mailer := &fakeMailer{}

	d := NewDispatcher(store, mailer, testLogger(), "no-reply@acme.test", 50, 4, time.Second)
	stats, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Processed != 2 || stats.Errors != 0 {
		t.Fatalf("stats = %+v, want 2 processed, 0 errors", stats)
	}
	for id, row := range store.rows {
		if row.Status != StatusSent {
			t.Errorf("row %s status = %q, want sent", id, row.Status)
		}
		if row.ProviderMessageID == "" {
			t.Errorf("row %s has no provider message id", id)
		}
	}
	if len(mailer.sent) != 2 {
		t.Fatalf("mailer sent %d messages, want 2", len(mailer.sent))
	}
	if mailer.sent[0].Subject == "" || mailer.sent[0].HTML == "" {
		t.Error("rendered message missing subject or body")
	}
}

func TestDispatcherFailureIsolation(t *testing.T) {
	store := newFakeStore()
	okID := dueRow(store, "eve@acme.test", 0, 3)
	badID := dueRow(store, "broken@acme.test", 0, 3)
	mailer := &fakeMailer{failTo: map[string]bool{"broken@acme.test": true}}

	d := NewDispatcher(store, mailer, testLogger(), "no-reply@acme.test", 50, 4, time.Second)
	stats, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Processed != 1 || stats.Errors != 1 {
		t.Fatalf("stats = %+v, want 1 processed, 1 error", stats)
	}
	if store.rows[okID].Status != StatusSent {
		t.Errorf("healthy row status = %q, want sent", store.rows[okID].Status)
	}
	bad := store.rows[badID]
	if bad.Status != StatusPending || bad.RetryCount != 1 {
		t.Errorf("failed row = status %q retries %d, want pending/1", bad.Status, bad.RetryCount)
	}
	if bad.LastError == "" {
		t.Error("failed row has no recorded error")
	}
}

func TestDispatcherBackoffSchedule(t *testing.T) {
	store := newFakeStore()
	id := dueRow(store, "broken@acme.test", 1, 3)
	mailer := &fakeMailer{failTo: map[string]bool{"broken@acme.test": true}}

	d := NewDispatcher(store, mailer, testLogger(), "no-reply@acme.test", 50, 1, time.Second)
	before := time.Now()
	if _, err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	row := store.rows[id]
	if row.Status != StatusPending || row.RetryCount != 2 {
		t.Fatalf("row = status %q retries %d, want pending/2", row.Status, row.RetryCount)
	}
	// Second failure reschedules 2^2 hours after the failure time.
	want := before.Add(4 * time.Hour)
	if row.ScheduledFor.Before(want) || row.ScheduledFor.After(want.Add(time.Minute)) {
		t.Errorf("rescheduled for %v, want about %v", row.ScheduledFor, want)
	}
}

func TestDispatcherExhaustedRetriesFail(t *testing.T) {
	store := newFakeStore()
	id := dueRow(store, "broken@acme.test", 3, 3)
	mailer := &fakeMailer{failTo: map[string]bool{"broken@acme.test": true}}

	d := NewDispatcher(store, mailer, testLogger(), "no-reply@acme.test", 50, 1, time.Second)
	stats, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Errors != 1 {
		t.Fatalf("stats = %+v, want 1 error", stats)
	}
	row := store.rows[id]
	if row.Status != StatusFailed {
		t.Errorf("row status = %q, want failed", row.Status)
	}
	if row.RetryCount != 4 {
		t.Errorf("terminal row retries = %d, want the losing attempt counted", row.RetryCount)
	}
}

func TestDispatcherLeaseKeepsScheduleStable(t *testing.T) {
	store := newFakeStore()
	id := dueRow(store, "eve@acme.test", 0, 3)
	original := store.rows[id].ScheduledFor
	mailer := &fakeMailer{}

	d := NewDispatcher(store, mailer, testLogger(), "no-reply@acme.test", 50, 1, time.Second)
	if _, err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	row := store.rows[id]
	if row.Status != StatusSent {
		t.Fatalf("row status = %q, want sent", row.Status)
	}
	if !row.ScheduledFor.Equal(original) {
		t.Fatalf("claiming moved scheduled_for from %v to %v", original, row.ScheduledFor)
	}

	// Re-expanding the same cycle must not re-insert the delivered slot.
	inserted, err := store.InsertScheduled(context.Background(), []ScheduledEmail{{
		TenantID:       "tenant-1",
		CycleID:        "cycle-1",
		EmailType:      row.EmailType,
		RecipientEmail: row.RecipientEmail,
		RecipientType:  row.RecipientType,
		ScheduledFor:   original,
		Status:         StatusPending,
		MaxRetries:     3,
	}})
	if err != nil {
		t.Fatalf("InsertScheduled: %v", err)
	}
	if inserted != 0 {
		t.Fatalf("re-inserted %d rows for an already delivered slot", inserted)
	}
}

func TestDispatcherBatchLimit(t *testing.T) {
	store := newFakeStore()
	for i := 0; i < 5; i++ {
		dueRow(store, fmt.Sprintf("user%d@acme.test", i), 0, 3)
	}
	mailer := &fakeMailer{}

	d := NewDispatcher(store, mailer, testLogger(), "no-reply@acme.test", 3, 2, time.Second)
	stats, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Processed != 3 {
		t.Fatalf("processed %d rows, want batch size 3", stats.Processed)
	}
}

func TestSchedulerOneShotConfigs(t *testing.T) {
	store := newFakeStore()
	store.cycles["cycle-1"] = testCycle()
	store.admins = []Recipient{{Name: "Ada", Email: "ada@acme.test", Type: RecipientAdmin}}
	store.emps = []Recipient{{Name: "Eve", Email: "eve@acme.test", Type: RecipientEmployee}}
	store.configs = []ReminderConfig{{ID: "cfg-1", TenantID: "tenant-1", CycleID: "cycle-1", Active: true}}

	sched := NewScheduler(store, testLogger(), 30, DefaultMaxRetries)
	sched.now = func() time.Time { return day(2026, time.March, 9) }

	stats, err := sched.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Processed != 1 || stats.Errors != 0 {
		t.Fatalf("stats = %+v, want 1 processed", stats)
	}
	if store.configs[0].Active {
		t.Error("config still active after processing")
	}
	if len(store.rows) == 0 {
		t.Fatal("no scheduled rows written")
	}

	// A second pass sees no active configs and writes nothing new.
	count := len(store.rows)
	stats, err = sched.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if stats.Processed != 0 || len(store.rows) != count {
		t.Errorf("second pass processed %d and rows went %d->%d, want no work", stats.Processed, count, len(store.rows))
	}
}

func TestSchedulerErrorIsolation(t *testing.T) {
	store := newFakeStore()
	store.cycles["cycle-1"] = testCycle()
	store.admins = []Recipient{{Name: "Ada", Email: "ada@acme.test", Type: RecipientAdmin}}
	store.configs = []ReminderConfig{
		{ID: "cfg-missing", TenantID: "tenant-1", CycleID: "cycle-unknown", Active: true},
		{ID: "cfg-ok", TenantID: "tenant-1", CycleID: "cycle-1", Active: true},
	}

	sched := NewScheduler(store, testLogger(), 30, DefaultMaxRetries)
	sched.now = func() time.Time { return day(2026, time.March, 9) }

	stats, err := sched.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Processed != 1 || stats.Errors != 1 {
		t.Fatalf("stats = %+v, want 1 processed and 1 error", stats)
	}
	if !store.configs[0].Active {
		t.Error("failing config must stay active for the next pass")
	}
	if store.configs[1].Active {
		t.Error("healthy config must be deactivated")
	}
}

func TestSchedulerDuplicateInsertSkipped(t *testing.T) {
	store := newFakeStore()
	store.cycles["cycle-1"] = testCycle()
	store.admins = []Recipient{{Name: "Ada", Email: "ada@acme.test", Type: RecipientAdmin}}

	sched := NewScheduler(store, testLogger(), 30, DefaultMaxRetries)
	sched.now = func() time.Time { return day(2026, time.March, 9) }

	store.configs = []ReminderConfig{{ID: "cfg-1", TenantID: "tenant-1", CycleID: "cycle-1", Active: true}}
	if _, err := sched.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	count := len(store.rows)

	// Re-arming the same cycle expands again but the existing rows are not
	// duplicated.
	store.configs = append(store.configs, ReminderConfig{ID: "cfg-2", TenantID: "tenant-1", CycleID: "cycle-1", Active: true})
	if _, err := sched.Run(context.Background()); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if len(store.rows) != count {
		t.Errorf("rows went %d->%d after re-arm, want unchanged", count, len(store.rows))
	}
}
