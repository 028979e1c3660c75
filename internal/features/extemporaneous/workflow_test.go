package extemporaneous

import (
	"context"
	"testing"
	"time"

	"go-negotiation/internal/common/errs"
	common_models "go-negotiation/internal/common/models"
	"go-negotiation/internal/features/audit"
	"go-negotiation/internal/features/notification"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var (
	now        = time.Date(2026, 7, 2, 15, 0, 0, 0, time.UTC)
	negotiator = common_models.Actor{ID: "u-neg", Roles: []common_models.Role{common_models.RoleNegotiator}}
	manager    = common_models.Actor{ID: "u-mgr", Roles: []common_models.Role{common_models.RoleCommercialManager}}
)

type holdsRole struct{}

func (holdsRole) HasRole(actor common_models.Actor, role common_models.Role) bool {
	return actor.Holds(role)
}

func validInput() CreateInput {
	return CreateInput{
		NegotiableType: common_models.NegotiableProfessional,
		NegotiableID:   "prof-7",
		TussCode:       "30715016",
		RequestedValue: decimal.NewFromInt(850),
		Justification:  "Only specialist available in the region this month",
		UrgencyLevel:   UrgencyHigh,
	}
}

func newPending(t *testing.T) *ExtemporaneousNegotiation {
	t.Helper()
	e, err := New(validInput(), negotiator, now)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return e
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *CreateInput)
	}{
		{name: "ShortJustification", mutate: func(in *CreateInput) { in.Justification = "  urgent case      " }},
		{name: "NegativeValue", mutate: func(in *CreateInput) { in.RequestedValue = decimal.NewFromInt(-1) }},
		{name: "MissingTuss", mutate: func(in *CreateInput) { in.TussCode = "" }},
		{name: "UnknownUrgency", mutate: func(in *CreateInput) { in.UrgencyLevel = "critical" }},
		{name: "MissingNegotiable", mutate: func(in *CreateInput) { in.NegotiableID = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			if _, err := New(in, negotiator, now); !errs.Is(err, errs.KindValidation) {
				t.Errorf("err = %v, want Validation", err)
			}
		})
	}
}

func TestNewDefaults(t *testing.T) {
	in := validInput()
	in.UrgencyLevel = ""
	e, err := New(in, negotiator, now)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if e.Status != StatusPendingApproval || e.UrgencyLevel != UrgencyMedium || e.ApprovedValue != nil {
		t.Errorf("unexpected %+v", e)
	}
}

func TestApproveDefaultsToRequestedValue(t *testing.T) {
	e := newPending(t)
	if err := e.Approve(ApproveInput{}, negotiator, holdsRole{}, now); !errs.Is(err, errs.KindPermission) {
		t.Fatalf("negotiator approving: err = %v, want Permission", err)
	}
	if err := e.Approve(ApproveInput{Notes: "ok"}, manager, holdsRole{}, now); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if e.Status != StatusApproved || !e.ApprovedValue.Equal(decimal.NewFromInt(850)) {
		t.Errorf("status=%s value=%v", e.Status, e.ApprovedValue)
	}
	if err := e.Reject("", manager, holdsRole{}, now); !errs.Is(err, errs.KindState) {
		t.Errorf("reject after approval: err = %v, want State", err)
	}
}

func TestApproveWithNegotiatedValue(t *testing.T) {
	e := newPending(t)
	neg := decimal.NewFromInt(-10)
	if err := e.Approve(ApproveInput{ApprovedValue: &neg}, manager, holdsRole{}, now); !errs.Is(err, errs.KindValidation) {
		t.Fatalf("negative value: err = %v, want Validation", err)
	}
	v := decimal.RequireFromString("799.90")
	if err := e.Approve(ApproveInput{ApprovedValue: &v}, manager, holdsRole{}, now); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if !e.ApprovedValue.Equal(v) {
		t.Errorf("ApprovedValue = %s, want 799.90", e.ApprovedValue)
	}
}

func TestFormalizeOnlyFromApproved(t *testing.T) {
	e := newPending(t)
	if err := e.Formalize("ADD-001", negotiator, now); !errs.Is(err, errs.KindState) {
		t.Fatalf("pending: err = %v, want State", err)
	}
	if err := e.Approve(ApproveInput{}, manager, holdsRole{}, now); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if err := e.Formalize("  ", negotiator, now); !errs.Is(err, errs.KindValidation) {
		t.Fatalf("blank addendum: err = %v, want Validation", err)
	}
	if err := e.Formalize("ADD-001", negotiator, now); err != nil {
		t.Fatalf("Formalize() error = %v", err)
	}
	if e.Status != StatusFormalized || e.AddendumNumber != "ADD-001" || e.FormalizedAt == nil {
		t.Errorf("unexpected %+v", e)
	}
	if err := e.Cancel(negotiator, now); !errs.Is(err, errs.KindState) {
		t.Errorf("cancel formalized: err = %v, want State", err)
	}
}

func TestCancel(t *testing.T) {
	tests := []struct {
		from Status
		ok   bool
	}{
		{StatusPendingApproval, true},
		{StatusApproved, true},
		{StatusRejected, false},
		{StatusFormalized, false},
		{StatusCancelled, false},
	}
	for _, tt := range tests {
		e := &ExtemporaneousNegotiation{Status: tt.from}
		err := e.Cancel(negotiator, now)
		if tt.ok != (err == nil) {
			t.Errorf("cancel from %s: err = %v", tt.from, err)
		}
	}
}

type MockExtemporaneousRepo struct {
	docs map[primitive.ObjectID]ExtemporaneousNegotiation
}

func (m *MockExtemporaneousRepo) Create(ctx context.Context, e *ExtemporaneousNegotiation) error {
	e.ID = primitive.NewObjectID()
	m.docs[e.ID] = *e
	return nil
}

func (m *MockExtemporaneousRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*ExtemporaneousNegotiation, error) {
	e, ok := m.docs[id]
	if !ok {
		return nil, errs.NotFound("extemporaneous negotiation %s not found", id.Hex())
	}
	e.Approval.Steps = append(e.Approval.Steps[:0:0], e.Approval.Steps...)
	return &e, nil
}

func (m *MockExtemporaneousRepo) Update(ctx context.Context, e *ExtemporaneousNegotiation) error {
	if m.docs[e.ID].Version != e.Version {
		return errs.Conflict("stale")
	}
	e.Version++
	m.docs[e.ID] = *e
	return nil
}

func (m *MockExtemporaneousRepo) List(ctx context.Context, filter ListFilter) ([]ExtemporaneousNegotiation, int64, error) {
	return nil, 0, nil
}

func (m *MockExtemporaneousRepo) EnsureIndexes(ctx context.Context) error { return nil }

type nopAudit struct{}

func (nopAudit) Record(ctx context.Context, entry audit.Entry) error { return nil }
func (nopAudit) ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]common_models.AuditLog, error) {
	return nil, nil
}

type MockNotifier struct{ recipients []string }

func (m *MockNotifier) Notify(ctx context.Context, recipient string, event notification.Event) {
	m.recipients = append(m.recipients, recipient)
}

func TestServiceLifecycle(t *testing.T) {
	repo := &MockExtemporaneousRepo{docs: map[primitive.ObjectID]ExtemporaneousNegotiation{}}
	notifier := &MockNotifier{}
	svc := NewExtemporaneousService(repo, holdsRole{}, nopAudit{}, notifier, zap.NewNop())
	ctx := context.Background()

	e, err := svc.Create(ctx, negotiator, validInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if notifier.recipients[0] != "role:commercial_manager" {
		t.Errorf("create notified %v", notifier.recipients)
	}

	if _, err := svc.Approve(ctx, manager, e.ID.Hex(), ApproveInput{}); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	got, err := svc.Formalize(ctx, negotiator, e.ID.Hex(), "ADD-42")
	if err != nil {
		t.Fatalf("Formalize() error = %v", err)
	}
	if got.Status != StatusFormalized || got.Version != 2 {
		t.Errorf("status=%s version=%d", got.Status, got.Version)
	}
	if _, _, err := svc.List(ctx, ListFilter{Urgency: "critical"}); !errs.Is(err, errs.KindValidation) {
		t.Errorf("List with bad urgency: err = %v, want Validation", err)
	}
}
