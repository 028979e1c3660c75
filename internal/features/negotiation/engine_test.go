package negotiation

import (
	"slices"
	"testing"
	"time"

	"go-negotiation/internal/common/errs"
	common_models "go-negotiation/internal/common/models"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	t0         = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	negotiator = common_models.Actor{ID: "u-neg", Roles: []common_models.Role{common_models.RoleNegotiator}}
	provider   = common_models.Actor{ID: "u-prov", Roles: []common_models.Role{common_models.RoleProvider}}
	manager    = common_models.Actor{ID: "u-mgr", Roles: []common_models.Role{common_models.RoleCommercialManager}}
)

type holdsRole struct{}

func (holdsRole) HasRole(actor common_models.Actor, role common_models.Role) bool {
	return actor.Holds(role)
}

func dec(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func testInput(maxCycles int, values ...int64) CreateInput {
	in := CreateInput{
		NegotiableType:   common_models.NegotiableClinic,
		NegotiableID:     "clinic-1",
		MaxCyclesAllowed: maxCycles,
	}
	for i, v := range values {
		in.Items = append(in.Items, ItemInput{TussCode: "1010101" + string(rune('0'+i)), ProposedValue: decimal.NewFromInt(v)})
	}
	return in
}

// submitted returns a submitted negotiation with one item per value.
func submitted(t *testing.T, maxCycles int, values ...int64) *Negotiation {
	t.Helper()
	n, err := NewNegotiation(testInput(maxCycles, values...), negotiator, 3, t0)
	if err != nil {
		t.Fatalf("NewNegotiation() error = %v", err)
	}
	n.ID = primitive.NewObjectID()
	if err := n.Submit(negotiator, t0); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	return n
}

func respond(t *testing.T, n *Negotiation, idx int, status ItemStatus, value *decimal.Decimal) {
	t.Helper()
	if _, err := n.RespondToItem(n.Items[idx].ID, ItemResponse{Status: status, ApprovedValue: value}, provider, t0); err != nil {
		t.Fatalf("respond item %d: %v", idx, err)
	}
	n.RecomputeStatus(t0)
}

func itemIDs(items []NegotiationItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID.Hex()
	}
	return out
}

func TestNewNegotiationValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *CreateInput)
	}{
		{name: "NoItems", mutate: func(in *CreateInput) { in.Items = nil }},
		{name: "NegativeValue", mutate: func(in *CreateInput) { in.Items[0].ProposedValue = decimal.NewFromInt(-1) }},
		{name: "MissingTuss", mutate: func(in *CreateInput) { in.Items[0].TussCode = " " }},
		{name: "MissingNegotiable", mutate: func(in *CreateInput) { in.NegotiableID = "" }},
		{name: "UnknownNegotiableType", mutate: func(in *CreateInput) { in.NegotiableType = "hospital" }},
		{name: "MissingNegotiableType", mutate: func(in *CreateInput) { in.NegotiableType = "" }},
		{name: "NoNegotiable", mutate: func(in *CreateInput) { in.NegotiableType, in.NegotiableID = "", "  " }},
		{name: "NegativeMaxCycles", mutate: func(in *CreateInput) { in.MaxCyclesAllowed = -2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := testInput(0, 100)
			tt.mutate(&in)
			if _, err := NewNegotiation(in, negotiator, 3, t0); !errs.Is(err, errs.KindValidation) {
				t.Errorf("err = %v, want Validation", err)
			}
		})
	}
}

func TestNewNegotiationDefaults(t *testing.T) {
	n, err := NewNegotiation(testInput(0, 100, 200), negotiator, 4, t0)
	if err != nil {
		t.Fatalf("NewNegotiation() error = %v", err)
	}
	if n.Status != StatusDraft || n.NegotiationCycle != 1 || n.MaxCyclesAllowed != 4 {
		t.Errorf("got status=%s cycle=%d max=%d", n.Status, n.NegotiationCycle, n.MaxCyclesAllowed)
	}
	for _, it := range n.Items {
		if it.Status != ItemPending || it.ApprovedValue != nil || it.Responded() {
			t.Errorf("new item not pending: %+v", it)
		}
	}
	if n.Title == "" {
		t.Error("expected a default title")
	}
}

func TestSubmitOnlyFromDraft(t *testing.T) {
	n := submitted(t, 2, 100)
	if err := n.Submit(negotiator, t0); !errs.Is(err, errs.KindState) {
		t.Errorf("second submit: err = %v, want State", err)
	}
}

// Two items, one approved and one rejected, end partially complete.
func TestRecomputePartiallyComplete(t *testing.T) {
	n := submitted(t, 2, 100, 200)

	respond(t, n, 0, ItemApproved, dec(100))
	if n.Status != StatusPending {
		t.Fatalf("after first response status = %s, want pending", n.Status)
	}
	respond(t, n, 1, ItemRejected, nil)
	if n.Status != StatusPartiallyComplete {
		t.Fatalf("status = %s, want partially_complete", n.Status)
	}

	if n.RecomputeStatus(t0.Add(time.Minute)) {
		t.Error("second recompute reported a change")
	}
	if n.Status != StatusPartiallyComplete {
		t.Errorf("status after second recompute = %s", n.Status)
	}
}

func TestDeriveStatus(t *testing.T) {
	at := t0
	answered := func(s ItemStatus) NegotiationItem {
		return NegotiationItem{Status: s, RespondedAt: &at}
	}
	tests := []struct {
		name  string
		items []NegotiationItem
		want  Status
	}{
		{name: "Unanswered", items: []NegotiationItem{{Status: ItemPending}, answered(ItemApproved)}, want: StatusPending},
		{name: "AllApproved", items: []NegotiationItem{answered(ItemApproved), answered(ItemApproved)}, want: StatusComplete},
		{name: "AllRejected", items: []NegotiationItem{answered(ItemRejected), answered(ItemRejected)}, want: StatusRejected},
		{name: "CounterOffer", items: []NegotiationItem{answered(ItemApproved), answered(ItemCounterOffered)}, want: StatusPartiallyComplete},
		{name: "Mixed", items: []NegotiationItem{answered(ItemRejected), answered(ItemApproved)}, want: StatusPartiallyComplete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := deriveStatus(tt.items); got != tt.want {
				t.Errorf("deriveStatus() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRecomputeLeavesOtherStatusesAlone(t *testing.T) {
	for _, st := range []Status{StatusDraft, StatusApproved, StatusPartiallyApproved, StatusCancelled} {
		n := submitted(t, 2, 100)
		respond(t, n, 0, ItemApproved, dec(100))
		n.Status = st
		if n.RecomputeStatus(t0) || n.Status != st {
			t.Errorf("recompute changed %s to %s", st, n.Status)
		}
	}
}

func TestRespondToItem(t *testing.T) {
	tests := []struct {
		name string
		in   ItemResponse
		kind errs.Kind
	}{
		{name: "ApprovedWithoutValue", in: ItemResponse{Status: ItemApproved}, kind: errs.KindValidation},
		{name: "CounterOfferWithoutValue", in: ItemResponse{Status: ItemCounterOffered}, kind: errs.KindValidation},
		{name: "NegativeValue", in: ItemResponse{Status: ItemCounterOffered, ApprovedValue: dec(-5)}, kind: errs.KindValidation},
		{name: "PendingIsNotAnAnswer", in: ItemResponse{Status: ItemPending}, kind: errs.KindValidation},
		{name: "CounterOffer", in: ItemResponse{Status: ItemCounterOffered, ApprovedValue: dec(90), Notes: "best we can do"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := submitted(t, 2, 100)
			item, err := n.RespondToItem(n.Items[0].ID, tt.in, provider, t0)
			if tt.kind != "" {
				if !errs.Is(err, tt.kind) {
					t.Fatalf("err = %v, want %s", err, tt.kind)
				}
				if n.Items[0].Responded() {
					t.Error("failed response must not set responded_at")
				}
				return
			}
			if err != nil {
				t.Fatalf("RespondToItem() error = %v", err)
			}
			if !item.Responded() || item.UpdatedBy != provider.ID || !item.ApprovedValue.Equal(decimal.NewFromInt(90)) {
				t.Errorf("unexpected item %+v", item)
			}
		})
	}
}

func TestRespondRejectedClearsValue(t *testing.T) {
	n := submitted(t, 2, 100)
	respond(t, n, 0, ItemCounterOffered, dec(80))
	n.Status = StatusPending
	respond(t, n, 0, ItemRejected, dec(80))
	if n.Items[0].ApprovedValue != nil {
		t.Errorf("rejected item kept approved_value %s", n.Items[0].ApprovedValue)
	}
}

func TestRespondRequiresResponsePhase(t *testing.T) {
	n, _ := NewNegotiation(testInput(2, 100), negotiator, 3, t0)
	if _, err := n.RespondToItem(n.Items[0].ID, ItemResponse{Status: ItemRejected}, provider, t0); !errs.Is(err, errs.KindState) {
		t.Errorf("draft: err = %v, want State", err)
	}
	if _, err := n.RespondToItem(primitive.NewObjectID(), ItemResponse{Status: ItemRejected}, provider, t0); !errs.Is(err, errs.KindNotFound) {
		t.Errorf("unknown item: err = %v, want NotFound", err)
	}
}

func TestApprove(t *testing.T) {
	n := submitted(t, 2, 100, 200)
	respond(t, n, 0, ItemApproved, dec(100))
	respond(t, n, 1, ItemCounterOffered, dec(150))

	if err := n.Approve(negotiator, holdsRole{}, t0); !errs.Is(err, errs.KindPermission) {
		t.Fatalf("negotiator approving: err = %v, want Permission", err)
	}
	if err := n.Approve(manager, holdsRole{}, t0); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if n.Status != StatusPartiallyApproved {
		t.Errorf("status = %s, want partially_approved", n.Status)
	}
	if err := n.Approve(manager, holdsRole{}, t0); !errs.Is(err, errs.KindState) {
		t.Errorf("approving twice: err = %v, want State", err)
	}
}

func TestCancel(t *testing.T) {
	tests := []struct {
		from Status
		ok   bool
	}{
		{StatusDraft, true},
		{StatusSubmitted, true},
		{StatusPending, true},
		{StatusPartiallyComplete, true},
		{StatusApproved, true},
		{StatusPartiallyApproved, true},
		{StatusComplete, false},
		{StatusRejected, false},
		{StatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			n := &Negotiation{Status: tt.from}
			err := n.Cancel(negotiator, t0)
			if tt.ok && (err != nil || n.Status != StatusCancelled) {
				t.Errorf("Cancel() error = %v, status %s", err, n.Status)
			}
			if !tt.ok && !errs.Is(err, errs.KindState) {
				t.Errorf("err = %v, want State", err)
			}
		})
	}
}

// Cycle 1 of 2 restarts; cycle 2 of 2 hits the limit.
func TestStartNewCycleUntilLimit(t *testing.T) {
	n := submitted(t, 2, 100, 200)
	respond(t, n, 0, ItemApproved, dec(100))
	respond(t, n, 1, ItemRejected, nil)

	if err := n.StartNewCycle("second round", negotiator, t0); err != nil {
		t.Fatalf("StartNewCycle() error = %v", err)
	}
	if n.NegotiationCycle != 2 || n.Status != StatusSubmitted {
		t.Fatalf("cycle=%d status=%s, want 2 submitted", n.NegotiationCycle, n.Status)
	}
	for _, it := range n.Items {
		if it.Status != ItemPending || it.ApprovedValue != nil || it.RespondedAt != nil || it.Notes != "" {
			t.Errorf("item not reset: %+v", it)
		}
	}
	if !n.Items[1].ProposedValue.Equal(decimal.NewFromInt(200)) {
		t.Errorf("proposed value changed to %s", n.Items[1].ProposedValue)
	}
	if len(n.PreviousCyclesData) != 1 {
		t.Fatalf("previous cycles = %d, want 1", len(n.PreviousCyclesData))
	}
	summary := n.PreviousCyclesData[0]
	if summary.Cycle != 1 || summary.Status != StatusPartiallyComplete || summary.ApprovedItems != 1 || summary.RejectedItems != 1 {
		t.Errorf("unexpected summary %+v", summary)
	}

	respond(t, n, 0, ItemApproved, dec(100))
	respond(t, n, 1, ItemRejected, nil)
	before := n.Clone()

	err := n.StartNewCycle("", negotiator, t0)
	if !errs.Is(err, errs.KindLimit) {
		t.Fatalf("err = %v, want Limit", err)
	}
	if n.NegotiationCycle != before.NegotiationCycle || n.Status != before.Status ||
		len(n.PreviousCyclesData) != 1 || !n.Items[0].Responded() {
		t.Error("failed cycle start changed the negotiation")
	}
}

func TestStartNewCycleAllowedStatuses(t *testing.T) {
	for _, st := range allStatuses {
		n := submitted(t, 3, 100)
		n.Status = st
		err := n.StartNewCycle("", negotiator, t0)

		allowed := st == StatusPending || st == StatusPartiallyComplete || st == StatusRejected || st == StatusPartiallyApproved
		if allowed && err != nil {
			t.Errorf("%s: StartNewCycle() error = %v", st, err)
		}
		if !allowed && !errs.Is(err, errs.KindState) {
			t.Errorf("%s: err = %v, want State", st, err)
		}
	}
}

func TestLimitCheckedBeforeStatus(t *testing.T) {
	n := submitted(t, 1, 100)
	n.Status = StatusDraft
	if err := n.StartNewCycle("", negotiator, t0); !errs.Is(err, errs.KindLimit) {
		t.Errorf("err = %v, want Limit", err)
	}
}

func TestForkPartitionsItems(t *testing.T) {
	n := submitted(t, 3, 10, 20, 30, 40)
	respond(t, n, 0, ItemApproved, dec(10))
	respond(t, n, 1, ItemRejected, nil)
	original := itemIDs(n.Items)

	children, err := n.Fork([]ForkGroup{
		{Title: "answered", ItemIDs: original[:2]},
		{ItemIDs: original[2:]},
	}, 10, negotiator, t0)
	if err != nil {
		t.Fatalf("Fork() error = %v", err)
	}

	var union []string
	for _, c := range children {
		if !c.IsFork || c.ParentNegotiationID == nil || *c.ParentNegotiationID != n.ID || c.ForkedAt == nil {
			t.Errorf("child lineage not set: %+v", c)
		}
		if c.Negotiable != n.Negotiable || c.NegotiationCycle != n.NegotiationCycle || c.CreatedBy != n.CreatedBy {
			t.Errorf("child did not inherit parent fields")
		}
		union = append(union, itemIDs(c.Items)...)
	}
	slices.Sort(union)
	slices.Sort(original)
	if !slices.Equal(union, original) {
		t.Errorf("child items %v, want %v", union, original)
	}

	if children[0].Title != "answered" || children[1].Title == "" {
		t.Errorf("titles = %q, %q", children[0].Title, children[1].Title)
	}
	if children[0].Status != StatusPartiallyComplete {
		t.Errorf("answered child status = %s, want partially_complete", children[0].Status)
	}
	if children[1].Status != StatusPending {
		t.Errorf("unanswered child status = %s, want pending", children[1].Status)
	}
	if len(n.Items) != 0 || n.ForkCount != 2 {
		t.Errorf("parent items=%d fork_count=%d, want 0 and 2", len(n.Items), n.ForkCount)
	}
}

func TestForkRejectsBadGroups(t *testing.T) {
	tests := []struct {
		name   string
		groups func(ids []string) []ForkGroup
		setup  func(n *Negotiation)
		kind   errs.Kind
	}{
		{
			name:   "SingleGroup",
			groups: func(ids []string) []ForkGroup { return []ForkGroup{{ItemIDs: ids}} },
			kind:   errs.KindValidation,
		},
		{
			name:   "EmptyGroup",
			groups: func(ids []string) []ForkGroup { return []ForkGroup{{ItemIDs: ids}, {}} },
			kind:   errs.KindValidation,
		},
		{
			name:   "Overlap",
			groups: func(ids []string) []ForkGroup { return []ForkGroup{{ItemIDs: ids[:2]}, {ItemIDs: ids[1:]}} },
			kind:   errs.KindValidation,
		},
		{
			name:   "Omission",
			groups: func(ids []string) []ForkGroup { return []ForkGroup{{ItemIDs: ids[:1]}, {ItemIDs: ids[1:2]}} },
			kind:   errs.KindValidation,
		},
		{
			name: "UnknownItem",
			groups: func(ids []string) []ForkGroup {
				return []ForkGroup{{ItemIDs: ids}, {ItemIDs: []string{primitive.NewObjectID().Hex()}}}
			},
			kind: errs.KindValidation,
		},
		{
			name: "TooManyGroups",
			groups: func(ids []string) []ForkGroup {
				return []ForkGroup{{ItemIDs: ids[:1]}, {ItemIDs: ids[1:2]}, {ItemIDs: ids[2:]}}
			},
			kind: errs.KindLimit,
		},
		{
			name:   "Cancelled",
			groups: func(ids []string) []ForkGroup { return []ForkGroup{{ItemIDs: ids[:1]}, {ItemIDs: ids[1:]}} },
			setup:  func(n *Negotiation) { n.Status = StatusCancelled },
			kind:   errs.KindState,
		},
		{
			name:   "ContractGenerated",
			groups: func(ids []string) []ForkGroup { return []ForkGroup{{ItemIDs: ids[:1]}, {ItemIDs: ids[1:]}} },
			setup:  func(n *Negotiation) { n.ContractID = "c-1" },
			kind:   errs.KindState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := submitted(t, 3, 10, 20, 30)
			if tt.setup != nil {
				tt.setup(n)
			}
			_, err := n.Fork(tt.groups(itemIDs(n.Items)), 2, negotiator, t0)
			if !errs.Is(err, tt.kind) {
				t.Fatalf("err = %v, want %s", err, tt.kind)
			}
			if len(n.Items) != 3 || n.ForkCount != 0 {
				t.Error("failed fork changed the parent")
			}
		})
	}
}

func TestForkOfFork(t *testing.T) {
	n := submitted(t, 3, 10, 20, 30)
	ids := itemIDs(n.Items)
	children, err := n.Fork([]ForkGroup{{ItemIDs: ids[:1]}, {ItemIDs: ids[1:]}}, 10, negotiator, t0)
	if err != nil {
		t.Fatalf("Fork() error = %v", err)
	}

	child := children[1]
	grandchildren, err := child.Fork([]ForkGroup{{ItemIDs: ids[1:2]}, {ItemIDs: ids[2:]}}, 10, negotiator, t0)
	if err != nil {
		t.Fatalf("nested Fork() error = %v", err)
	}
	if *grandchildren[0].ParentNegotiationID != child.ID || child.ForkCount != 2 {
		t.Errorf("nested lineage wrong: parent=%s fork_count=%d", grandchildren[0].ParentNegotiationID.Hex(), child.ForkCount)
	}
}

func TestRollbackTable(t *testing.T) {
	allowed := map[[2]Status]bool{
		{StatusPending, StatusSubmitted}:           true,
		{StatusPending, StatusDraft}:               true,
		{StatusApproved, StatusPending}:            true,
		{StatusApproved, StatusSubmitted}:          true,
		{StatusPartiallyApproved, StatusSubmitted}: true,
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			n := &Negotiation{Status: from}
			err := n.Rollback(to, "price recalculation", negotiator, t0)
			if allowed[[2]Status{from, to}] {
				if err != nil || n.Status != to {
					t.Errorf("%s -> %s: err = %v, status %s", from, to, err, n.Status)
				}
				continue
			}
			if !errs.Is(err, errs.KindState) || n.Status != from {
				t.Errorf("%s -> %s: err = %v, want State", from, to, err)
			}
		}
	}
}

func TestRollbackApprovedToPending(t *testing.T) {
	n := submitted(t, 2, 100)
	respond(t, n, 0, ItemApproved, dec(100))
	if err := n.Approve(manager, holdsRole{}, t0); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}

	for _, reason := range []string{"", "   "} {
		if err := n.Rollback(StatusPending, reason, negotiator, t0); !errs.Is(err, errs.KindValidation) {
			t.Errorf("reason %q: err = %v, want Validation", reason, err)
		}
	}

	if err := n.Rollback(StatusPending, "price recalculation", negotiator, t0); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}
	if n.Status != StatusPending {
		t.Errorf("status = %s, want pending", n.Status)
	}
	if len(n.RollbackHistory) != 1 || n.RollbackHistory[0].From != StatusApproved || n.RollbackHistory[0].Reason != "price recalculation" {
		t.Errorf("rollback history = %+v", n.RollbackHistory)
	}
	if n.Items[0].Status != ItemApproved || !n.Items[0].Responded() {
		t.Error("rollback must not touch items")
	}
}

func TestRollbackBlockedByContract(t *testing.T) {
	n := &Negotiation{Status: StatusApproved, ContractID: "c-1"}
	if err := n.Rollback(StatusPending, "wrong values", negotiator, t0); !errs.Is(err, errs.KindState) {
		t.Errorf("err = %v, want State", err)
	}
	if got := RollbackTargets(StatusRejected); len(got) != 0 {
		t.Errorf("RollbackTargets(rejected) = %v, want none", got)
	}
}

func TestGenerateContractPreconditions(t *testing.T) {
	n := submitted(t, 2, 100)
	if err := n.CanGenerateContract(); !errs.Is(err, errs.KindState) {
		t.Fatalf("submitted: err = %v, want State", err)
	}
	respond(t, n, 0, ItemApproved, dec(100))
	if err := n.AttachContract("c-1", negotiator, t0); err != nil {
		t.Fatalf("AttachContract() error = %v", err)
	}
	if err := n.AttachContract("c-2", negotiator, t0); !errs.Is(err, errs.KindState) {
		t.Errorf("second contract: err = %v, want State", err)
	}
}
