package scheduling

import (
	"testing"
	"time"

	"go-negotiation/internal/common/errs"
	common_models "go-negotiation/internal/common/models"
	"go-negotiation/internal/features/approval"

	"github.com/shopspring/decimal"
)

type holdsRole struct{}

func (holdsRole) HasRole(actor common_models.Actor, role common_models.Role) bool {
	return actor.Holds(role)
}

var (
	now       = time.Date(2026, 8, 20, 10, 30, 0, 0, time.UTC)
	requester = common_models.Actor{ID: "u-sched", Roles: []common_models.Role{common_models.RoleNegotiator}}
	director  = common_models.Actor{ID: "u-dir", Roles: []common_models.Role{common_models.RoleDirector}}
)

func value(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestNewValidation(t *testing.T) {
	base := CreateInput{
		SolicitationID: "sol-1",
		ProviderID:     "prov-2",
		Justification:  "Recommended provider has no slot for 60 days",
	}
	tests := []struct {
		name string
		in   func() CreateInput
		ok   bool
	}{
		{name: "Valid", in: func() CreateInput { return base }, ok: true},
		{name: "ShortJustification", in: func() CreateInput { in := base; in.Justification = "no slot"; return in }},
		{name: "MissingProvider", in: func() CreateInput { in := base; in.ProviderID = " "; return in }},
		{name: "ProviderCheaper", in: func() CreateInput {
			in := base
			in.RecommendedValue, in.ProviderValue = value("200"), value("150")
			return in
		}},
		{name: "ProviderEqual", in: func() CreateInput {
			in := base
			in.RecommendedValue, in.ProviderValue = value("200"), value("200.00")
			return in
		}},
		{name: "ProviderMoreExpensive", in: func() CreateInput {
			in := base
			in.RecommendedValue, in.ProviderValue = value("200"), value("260.10")
			return in
		}, ok: true},
		{name: "OnlyOneValue", in: func() CreateInput { in := base; in.ProviderValue = value("90"); return in }, ok: true},
		{name: "NegativeValue", in: func() CreateInput { in := base; in.RecommendedValue = value("-1"); return in }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := New(tt.in(), requester, now)
			if tt.ok {
				if err != nil || e.Status != StatusPending {
					t.Fatalf("New() = %v, %v", e, err)
				}
				return
			}
			if !errs.Is(err, errs.KindValidation) {
				t.Errorf("err = %v, want Validation", err)
			}
		})
	}
}

func TestDecideOnce(t *testing.T) {
	e, err := New(CreateInput{
		SolicitationID:   "sol-1",
		ProviderID:       "prov-2",
		Justification:    "Recommended provider has no slot for 60 days",
		RecommendedValue: value("200"),
		ProviderValue:    value("260.10"),
	}, requester, now)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if surcharge, ok := e.Surcharge(); !ok || !surcharge.Equal(decimal.RequireFromString("60.10")) {
		t.Errorf("Surcharge() = %s, %v", surcharge, ok)
	}

	if err := e.Decide(approval.ActionApprove, "", requester, holdsRole{}, now); !errs.Is(err, errs.KindPermission) {
		t.Fatalf("requester deciding: err = %v, want Permission", err)
	}
	if err := e.Decide(approval.ActionReject, "too expensive", director, holdsRole{}, now); err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if e.Status != StatusRejected || e.DecidedBy != director.ID || e.DecidedAt == nil {
		t.Errorf("unexpected %+v", e)
	}
	if err := e.Decide(approval.ActionApprove, "", director, holdsRole{}, now); !errs.Is(err, errs.KindState) {
		t.Errorf("second decision: err = %v, want State", err)
	}
}
