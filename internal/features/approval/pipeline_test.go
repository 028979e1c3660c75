package approval

import (
	"testing"
	"time"

	"go-negotiation/internal/common/errs"
	"go-negotiation/internal/common/models"
)

type holdsRole struct{}

func (holdsRole) HasRole(actor models.Actor, role models.Role) bool {
	return actor.Holds(role)
}

var testDefinition = Definition{
	Kind: "contract",
	Steps: []StepDefinition{
		{Name: "submission", RequiredRole: models.RoleNegotiator},
		{Name: "legal_review", RequiredRole: models.RoleLegal},
		{Name: "commercial_review", RequiredRole: models.RoleCommercialManager},
		{Name: "director_approval", RequiredRole: models.RoleDirector},
	},
}

// superActor holds every role, so only ordering can fail.
var superActor = models.Actor{ID: "u-all", Roles: []models.Role{
	models.RoleNegotiator, models.RoleLegal, models.RoleCommercialManager, models.RoleDirector,
}}

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func approve(t *testing.T, s *State, step StepName) {
	t.Helper()
	if _, err := testDefinition.Act(s, step, ActInput{Action: ActionApprove}, superActor, holdsRole{}, now); err != nil {
		t.Fatalf("approve %s: %v", step, err)
	}
}

func TestActOutOfOrderAfterSubmission(t *testing.T) {
	s := testDefinition.NewState()
	approve(t, &s, "submission")

	_, err := testDefinition.Act(&s, "director_approval", ActInput{Action: ActionApprove}, superActor, holdsRole{}, now)
	if !errs.Is(err, errs.KindOutOfOrder) {
		t.Fatalf("director before legal: err = %v, want OutOfOrder", err)
	}

	legal := models.Actor{ID: "u-legal", Roles: []models.Role{models.RoleLegal}}
	step, err := testDefinition.Act(&s, "legal_review", ActInput{Action: ActionApprove, Notes: "ok"}, legal, holdsRole{}, now)
	if err != nil {
		t.Fatalf("legal review: %v", err)
	}
	if step.Status != StepCompleted || step.ActorID != "u-legal" || step.CompletedAt == nil {
		t.Errorf("unexpected step %+v", step)
	}
	if got := s.Status(); got.Phase != PhaseInReview || got.Step != "commercial_review" {
		t.Errorf("Status() = %+v, want in review at commercial_review", got)
	}
}

func permutations(names []StepName) [][]StepName {
	if len(names) <= 1 {
		return [][]StepName{append([]StepName(nil), names...)}
	}
	var out [][]StepName
	for i := range names {
		rest := make([]StepName, 0, len(names)-1)
		rest = append(rest, names[:i]...)
		rest = append(rest, names[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]StepName{names[i]}, p...))
		}
	}
	return out
}

func TestActOrderingForEveryPermutation(t *testing.T) {
	names := []StepName{"submission", "legal_review", "commercial_review", "director_approval"}

	for _, order := range permutations(names) {
		s := testDefinition.NewState()
		for _, name := range order {
			idx := testDefinition.indexOf(name)
			predecessorsDone := true
			for i := 0; i < idx; i++ {
				if s.Steps[i].Status != StepCompleted {
					predecessorsDone = false
				}
			}
			alreadyDone := s.Steps[idx].Status == StepCompleted

			_, err := testDefinition.Act(&s, name, ActInput{Action: ActionApprove}, superActor, holdsRole{}, now)
			switch {
			case alreadyDone:
				if err == nil {
					t.Fatalf("order %v: acting twice on %s succeeded", order, name)
				}
			case predecessorsDone:
				if err != nil {
					t.Fatalf("order %v: %s should succeed, got %v", order, name, err)
				}
			default:
				if !errs.Is(err, errs.KindOutOfOrder) {
					t.Fatalf("order %v: %s err = %v, want OutOfOrder", order, name, err)
				}
			}
		}
	}
}

// After a rejection at legal_review no order of attempts may succeed: later
// steps are out of order, the rejected and completed steps are in a
// terminal state until resubmission.
func TestActOrderingAfterRejection(t *testing.T) {
	names := []StepName{"submission", "legal_review", "commercial_review", "director_approval"}

	for _, order := range permutations(names) {
		s := testDefinition.NewState()
		approve(t, &s, "submission")
		if _, err := testDefinition.Act(&s, "legal_review", ActInput{Action: ActionReject}, superActor, holdsRole{}, now); err != nil {
			t.Fatalf("reject legal_review: %v", err)
		}

		for _, name := range order {
			want := errs.KindState
			if testDefinition.indexOf(name) > 1 {
				want = errs.KindOutOfOrder
			}
			for _, action := range []Action{ActionApprove, ActionReject} {
				_, err := testDefinition.Act(&s, name, ActInput{Action: action}, superActor, holdsRole{}, now)
				if !errs.Is(err, want) {
					t.Fatalf("order %v: %s %s err = %v, want %s", order, action, name, err, want)
				}
			}
		}
		if got := s.Status(); got.Phase != PhaseRejected || got.Step != "legal_review" {
			t.Fatalf("order %v: Status() = %+v, want rejected at legal_review", order, got)
		}
	}
}

func TestActRequiresStepRole(t *testing.T) {
	s := testDefinition.NewState()
	approve(t, &s, "submission")

	director := models.Actor{ID: "u-dir", Roles: []models.Role{models.RoleDirector}}
	_, err := testDefinition.Act(&s, "legal_review", ActInput{Action: ActionApprove}, director, holdsRole{}, now)
	if !errs.Is(err, errs.KindPermission) {
		t.Fatalf("err = %v, want Permission", err)
	}
	if s.Steps[1].Status != StepPending {
		t.Errorf("failed act must not change the step, got %s", s.Steps[1].Status)
	}
}

func TestRejectIsTerminalUntilResubmitted(t *testing.T) {
	s := testDefinition.NewState()
	approve(t, &s, "submission")
	approve(t, &s, "legal_review")

	if _, err := testDefinition.Act(&s, "commercial_review", ActInput{Action: ActionReject, Notes: "price too high"}, superActor, holdsRole{}, now); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if got := s.Status(); got.Phase != PhaseRejected || got.Step != "commercial_review" {
		t.Fatalf("Status() = %+v, want rejected at commercial_review", got)
	}
	if s.Steps[3].Status != StepPending {
		t.Errorf("later step status = %s, want pending", s.Steps[3].Status)
	}

	_, err := testDefinition.Act(&s, "director_approval", ActInput{Action: ActionApprove}, superActor, holdsRole{}, now)
	if !errs.Is(err, errs.KindOutOfOrder) {
		t.Fatalf("act after the rejected step: err = %v, want OutOfOrder", err)
	}
	_, err = testDefinition.Act(&s, "commercial_review", ActInput{Action: ActionApprove}, superActor, holdsRole{}, now)
	if !errs.Is(err, errs.KindState) {
		t.Fatalf("act on the rejected step: err = %v, want State", err)
	}

	if err := testDefinition.Resubmit(&s, superActor, "new price", now); err != nil {
		t.Fatalf("Resubmit() error = %v", err)
	}
	if got := s.Status(); got.Phase != PhaseInReview || got.Step != "commercial_review" {
		t.Fatalf("after resubmit Status() = %+v, want in review at commercial_review", got)
	}
	if s.Steps[1].Status != StepCompleted {
		t.Error("completed legal review must survive resubmission")
	}
	if s.Resubmissions != 1 {
		t.Errorf("Resubmissions = %d, want 1", s.Resubmissions)
	}

	approve(t, &s, "commercial_review")
	approve(t, &s, "director_approval")
	if got := s.Status(); got.Phase != PhaseApproved {
		t.Errorf("Status() = %+v, want approved", got)
	}
}

func TestResubmitRequiresRejection(t *testing.T) {
	s := testDefinition.NewState()
	if err := testDefinition.Resubmit(&s, superActor, "", now); !errs.Is(err, errs.KindState) {
		t.Fatalf("err = %v, want State", err)
	}
}

func TestActValidatesInput(t *testing.T) {
	s := testDefinition.NewState()

	if _, err := testDefinition.Act(&s, "finance_review", ActInput{Action: ActionApprove}, superActor, holdsRole{}, now); !errs.Is(err, errs.KindValidation) {
		t.Errorf("unknown step: err = %v, want Validation", err)
	}
	if _, err := testDefinition.Act(&s, "submission", ActInput{Action: "escalate"}, superActor, holdsRole{}, now); !errs.Is(err, errs.KindValidation) {
		t.Errorf("unknown action: err = %v, want Validation", err)
	}
}

func TestActAfterFullApproval(t *testing.T) {
	s := testDefinition.NewState()
	for _, def := range testDefinition.Steps {
		approve(t, &s, def.Name)
	}
	_, err := testDefinition.Act(&s, "director_approval", ActInput{Action: ActionApprove}, superActor, holdsRole{}, now)
	if !errs.Is(err, errs.KindState) {
		t.Fatalf("err = %v, want State", err)
	}
	if len(s.History) != 4 {
		t.Errorf("History has %d entries, want 4", len(s.History))
	}
}

func TestJustification(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: "", ok: false},
		{in: "   too short        ", ok: false},
		{in: "  Patient needs urgent surgery  ", want: "Patient needs urgent surgery", ok: true},
		{in: "Cirurgia de urgência já", want: "Cirurgia de urgência já", ok: true},
	}

	for _, tt := range tests {
		got, err := Justification(tt.in)
		if tt.ok && (err != nil || got != tt.want) {
			t.Errorf("Justification(%q) = %q, %v", tt.in, got, err)
		}
		if !tt.ok && !errs.Is(err, errs.KindValidation) {
			t.Errorf("Justification(%q) err = %v, want Validation", tt.in, err)
		}
	}
}
