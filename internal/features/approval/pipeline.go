package approval

import (
	"time"

	"go-negotiation/internal/common/errs"
	"go-negotiation/internal/common/models"
)

// RoleChecker resolves whether an actor holds a role.
type RoleChecker interface {
	HasRole(actor models.Actor, role models.Role) bool
}

// Definition is a fixed, ordered list of role-gated steps. The contract,
// extemporaneous and scheduling-exception workflows each declare one.
type Definition struct {
	Kind  string
	Steps []StepDefinition
}

// NewState returns a pipeline with every step pending.
func (d Definition) NewState() State {
	steps := make([]Step, len(d.Steps))
	for i, def := range d.Steps {
		steps[i] = Step{Name: def.Name, Status: StepPending}
	}
	return State{Steps: steps, History: []HistoryEntry{}}
}

func (d Definition) indexOf(name StepName) int {
	for i, def := range d.Steps {
		if def.Name == name {
			return i
		}
	}
	return -1
}

// Status derives the entity-level status.
func (s State) Status() Status {
	for _, step := range s.Steps {
		switch step.Status {
		case StepRejected:
			return Status{Phase: PhaseRejected, Step: step.Name}
		case StepPending:
			return Status{Phase: PhaseInReview, Step: step.Name}
		}
	}
	return Status{Phase: PhaseApproved}
}

// firstOpen is the index of the first step that is not completed, or
// len(s.Steps) when every step is.
func (s State) firstOpen() int {
	for i, step := range s.Steps {
		if step.Status != StepCompleted {
			return i
		}
	}
	return len(s.Steps)
}

// Step returns the named step.
func (s State) Step(name StepName) (Step, bool) {
	for _, step := range s.Steps {
		if step.Name == name {
			return step, true
		}
	}
	return Step{}, false
}

// Act approves or rejects stepName. Checks run in a fixed order: unknown
// step or action, ordering, terminal entity or step already acted on, role.
// A step whose predecessors are not all completed is out of order, also when
// an earlier step was rejected.
func (d Definition) Act(s *State, stepName StepName, in ActInput, actor models.Actor, roles RoleChecker, now time.Time) (Step, error) {
	idx := d.indexOf(stepName)
	if idx < 0 {
		return Step{}, errs.Validation("unknown %s step %q", d.Kind, stepName)
	}
	if !in.Action.Valid() {
		return Step{}, errs.Validation("action must be approve or reject, got %q", in.Action)
	}
	if len(s.Steps) != len(d.Steps) {
		return Step{}, errs.State("%s pipeline state does not match its definition", d.Kind)
	}

	open := s.firstOpen()
	switch {
	case open == len(s.Steps):
		return Step{}, errs.State("%s is already fully approved", d.Kind)
	case idx > open:
		return Step{}, errs.OutOfOrder("%s step %s cannot be acted on before %s is completed", d.Kind, stepName, s.Steps[open].Name)
	case idx < open:
		return Step{}, errs.State("%s step %s is already completed", d.Kind, stepName)
	case s.Steps[idx].Status == StepRejected:
		return Step{}, errs.State("%s was rejected at %s; resubmit before acting again", d.Kind, stepName)
	}

	required := d.Steps[idx].RequiredRole
	if !roles.HasRole(actor, required) {
		return Step{}, errs.Permission("step %s requires the %s role", stepName, required)
	}

	step := &s.Steps[idx]
	step.ActorID = actor.ID
	step.ActorRole = required
	step.Notes = in.Notes
	at := now
	step.CompletedAt = &at
	if in.Action == ActionApprove {
		step.Status = StepCompleted
	} else {
		step.Status = StepRejected
	}

	s.History = append(s.History, HistoryEntry{
		Step:      stepName,
		Action:    string(in.Action),
		ActorID:   actor.ID,
		Notes:     in.Notes,
		Timestamp: now,
	})

	return *step, nil
}

// Resubmit reopens a rejected pipeline. The rejected step and all later
// steps go back to pending; completed steps before it are kept, so review
// restarts right after the last completed step.
func (d Definition) Resubmit(s *State, actor models.Actor, notes string, now time.Time) error {
	current := s.Status()
	if current.Phase != PhaseRejected {
		return errs.State("%s can only be resubmitted after a rejection", d.Kind)
	}

	idx := d.indexOf(current.Step)
	for i := idx; i < len(s.Steps); i++ {
		s.Steps[i] = Step{Name: s.Steps[i].Name, Status: StepPending}
	}
	s.Resubmissions++
	s.History = append(s.History, HistoryEntry{
		Step:      current.Step,
		Action:    "resubmit",
		ActorID:   actor.ID,
		Notes:     notes,
		Timestamp: now,
	})
	return nil
}

// RequiredRole returns the role that gates stepName.
func (d Definition) RequiredRole(stepName StepName) (models.Role, bool) {
	if idx := d.indexOf(stepName); idx >= 0 {
		return d.Steps[idx].RequiredRole, true
	}
	return "", false
}

// Next returns the step that follows stepName, if any.
func (d Definition) Next(stepName StepName) (StepDefinition, bool) {
	idx := d.indexOf(stepName)
	if idx < 0 || idx+1 >= len(d.Steps) {
		return StepDefinition{}, false
	}
	return d.Steps[idx+1], true
}
