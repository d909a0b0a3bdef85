package approval

import (
	"errors"
	"testing"
	"time"
)

var fixedNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func hours(h int) *int { return &h }

func approvers(ids ...string) []ApproverRef {
	out := make([]ApproverRef, len(ids))
	for i, id := range ids {
		out[i] = ApproverRef{ID: id}
	}
	return out
}

// twoStepRoute is [{1: A,B; 24h}, {2: C; 48h}].
func twoStepRoute(t *testing.T) RouteSnapshot {
	t.Helper()
	snap, err := NewSnapshot([]StepDef{
		{Order: 2, Approvers: approvers("C"), DeadlineHours: hours(48)},
		{Order: 1, Approvers: approvers("A", "B"), DeadlineHours: hours(24)},
	})
	if err != nil {
		t.Fatalf("NewSnapshot failed: %v", err)
	}
	return snap
}

func TestNewSnapshot(t *testing.T) {
	tests := []struct {
		name     string
		steps    []StepDef
		wantKind error
	}{
		{name: "valid", steps: []StepDef{{Order: 1, Approvers: approvers("A")}}},
		{name: "non-contiguous orders", steps: []StepDef{{Order: 10, Approvers: approvers("A")}, {Order: 30, Approvers: approvers("B")}}},
		{name: "empty", steps: nil, wantKind: ErrEmptyRoute},
		{name: "zero order", steps: []StepDef{{Order: 0, Approvers: approvers("A")}}, wantKind: ErrInvalidRoute},
		{name: "duplicate order", steps: []StepDef{{Order: 1, Approvers: approvers("A")}, {Order: 1, Approvers: approvers("B")}}, wantKind: ErrInvalidRoute},
		{name: "no approvers", steps: []StepDef{{Order: 1}}, wantKind: ErrInvalidRoute},
		{name: "blank approver", steps: []StepDef{{Order: 1, Approvers: approvers("")}}, wantKind: ErrInvalidRoute},
		{name: "duplicate approver", steps: []StepDef{{Order: 1, Approvers: approvers("A", "A")}}, wantKind: ErrInvalidRoute},
		{name: "non-positive deadline", steps: []StepDef{{Order: 1, Approvers: approvers("A"), DeadlineHours: hours(0)}}, wantKind: ErrInvalidRoute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSnapshot(tt.steps)
			if tt.wantKind == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantKind) {
				t.Errorf("err = %v, want kind %v", err, tt.wantKind)
			}
		})
	}
}

func TestNewSnapshot_DeepCopies(t *testing.T) {
	steps := []StepDef{{Order: 1, Approvers: approvers("A"), DeadlineHours: hours(8)}}
	snap, err := NewSnapshot(steps)
	if err != nil {
		t.Fatalf("NewSnapshot failed: %v", err)
	}

	steps[0].Approvers[0].ID = "Z"
	*steps[0].DeadlineHours = 99

	if snap.Steps[0].Approvers[0].ID != "A" {
		t.Errorf("snapshot approver mutated: %q", snap.Steps[0].Approvers[0].ID)
	}
	if *snap.Steps[0].DeadlineHours != 8 {
		t.Errorf("snapshot deadline mutated: %d", *snap.Steps[0].DeadlineHours)
	}
}

func TestSnapshot_EncodeParse(t *testing.T) {
	snap := twoStepRoute(t)
	encoded, err := snap.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	parsed, err := ParseSnapshot(encoded)
	if err != nil {
		t.Fatalf("ParseSnapshot failed: %v", err)
	}
	if parsed.MinOrder() != 1 || parsed.MaxOrder() != 2 {
		t.Errorf("orders = [%d,%d], want [1,2]", parsed.MinOrder(), parsed.MaxOrder())
	}
	if got := parsed.DeadlineAt(2, fixedNow); got == nil || !got.Equal(fixedNow.Add(48*time.Hour)) {
		t.Errorf("DeadlineAt(2) = %v", got)
	}
}

func TestExpandSubmission(t *testing.T) {
	seeds := ExpandSubmission(twoStepRoute(t), fixedNow)

	if len(seeds) != 3 {
		t.Fatalf("len(seeds) = %d, want 3", len(seeds))
	}
	wantDeadline := fixedNow.Add(24 * time.Hour)
	for _, s := range seeds {
		if s.Status != StepPending {
			t.Errorf("(%d,%s) status = %s, want pending", s.Order, s.ApproverID, s.Status)
		}
		if s.CarryOver {
			t.Errorf("(%d,%s) unexpectedly carried over", s.Order, s.ApproverID)
		}
		switch s.Order {
		case 1:
			if s.DeadlineAt == nil || !s.DeadlineAt.Equal(wantDeadline) {
				t.Errorf("(1,%s) deadline = %v, want %v", s.ApproverID, s.DeadlineAt, wantDeadline)
			}
		case 2:
			if s.DeadlineAt != nil {
				t.Errorf("(2,%s) deadline = %v, want nil", s.ApproverID, s.DeadlineAt)
			}
		}
	}
}

func TestExpandSubmission_FirstOrderNotOne(t *testing.T) {
	snap, err := NewSnapshot([]StepDef{
		{Order: 10, Approvers: approvers("A"), DeadlineHours: hours(2)},
		{Order: 20, Approvers: approvers("B"), DeadlineHours: hours(2)},
	})
	if err != nil {
		t.Fatalf("NewSnapshot failed: %v", err)
	}

	seeds := ExpandSubmission(snap, fixedNow)
	if seeds[0].Order != 10 || seeds[0].DeadlineAt == nil {
		t.Errorf("first step should carry the deadline: %+v", seeds[0])
	}
	if seeds[1].DeadlineAt != nil {
		t.Errorf("later step should have no deadline: %+v", seeds[1])
	}
}

func TestExpandResubmission_CarriesApprovedPairs(t *testing.T) {
	prior := map[StepKey]StepStatus{
		{Order: 1, ApproverID: "A"}: StepApproved,
		{Order: 1, ApproverID: "B"}: StepRejected,
		{Order: 2, ApproverID: "C"}: StepPending,
	}

	plan := ExpandResubmission(twoStepRoute(t), prior, fixedNow)

	if !plan.HasPending || plan.CurrentOrder != 1 {
		t.Fatalf("plan = (current %d, pending %v), want (1, true)", plan.CurrentOrder, plan.HasPending)
	}
	got := map[StepKey]StepSeed{}
	for _, s := range plan.Seeds {
		got[StepKey{s.Order, s.ApproverID}] = s
	}

	a := got[StepKey{1, "A"}]
	if a.Status != StepApproved || !a.CarryOver || a.DecisionAt == nil || a.DeadlineAt != nil {
		t.Errorf("(1,A) = %+v, want carried approval without deadline", a)
	}
	b := got[StepKey{1, "B"}]
	if b.Status != StepPending || b.CarryOver || b.DeadlineAt == nil {
		t.Errorf("(1,B) = %+v, want fresh pending with deadline", b)
	}
	c := got[StepKey{2, "C"}]
	if c.Status != StepPending || c.DeadlineAt != nil {
		t.Errorf("(2,C) = %+v, want pending without deadline", c)
	}
}

func TestExpandResubmission_CurrentOrderSkipsCarriedSteps(t *testing.T) {
	prior := map[StepKey]StepStatus{
		{Order: 1, ApproverID: "A"}: StepApproved,
		{Order: 1, ApproverID: "B"}: StepApproved,
		{Order: 2, ApproverID: "C"}: StepRejected,
	}

	plan := ExpandResubmission(twoStepRoute(t), prior, fixedNow)

	if plan.CurrentOrder != 2 {
		t.Fatalf("CurrentOrder = %d, want 2", plan.CurrentOrder)
	}
	for _, s := range plan.Seeds {
		if s.Order == 2 && (s.DeadlineAt == nil || !s.DeadlineAt.Equal(fixedNow.Add(48*time.Hour))) {
			t.Errorf("(2,C) deadline = %v, want now+48h", s.DeadlineAt)
		}
	}
}

func TestExpandResubmission_NewApproverStartsPending(t *testing.T) {
	snap, err := NewSnapshot([]StepDef{{Order: 1, Approvers: approvers("A", "D")}})
	if err != nil {
		t.Fatalf("NewSnapshot failed: %v", err)
	}
	prior := map[StepKey]StepStatus{{Order: 1, ApproverID: "A"}: StepApproved}

	plan := ExpandResubmission(snap, prior, fixedNow)
	for _, s := range plan.Seeds {
		if s.ApproverID == "D" && (s.Status != StepPending || s.CarryOver) {
			t.Errorf("new approver D = %+v, want fresh pending", s)
		}
	}
}

func TestExpandResubmission_FullCarryOver(t *testing.T) {
	snap, err := NewSnapshot([]StepDef{
		{Order: 1, Approvers: approvers("A")},
		{Order: 3, Approvers: approvers("C")},
	})
	if err != nil {
		t.Fatalf("NewSnapshot failed: %v", err)
	}
	prior := map[StepKey]StepStatus{
		{Order: 1, ApproverID: "A"}: StepApproved,
		{Order: 3, ApproverID: "C"}: StepApproved,
		{Order: 2, ApproverID: "B"}: StepRejected, // step removed from the route since
	}

	plan := ExpandResubmission(snap, prior, fixedNow)
	if plan.HasPending {
		t.Fatal("HasPending = true, want false")
	}
	if plan.CurrentOrder != 3 {
		t.Errorf("CurrentOrder = %d, want max order 3", plan.CurrentOrder)
	}
}

func TestExpandResubmission_NilPrior(t *testing.T) {
	plan := ExpandResubmission(twoStepRoute(t), nil, fixedNow)
	if !plan.HasPending || plan.CurrentOrder != 1 {
		t.Errorf("plan = (current %d, pending %v), want (1, true)", plan.CurrentOrder, plan.HasPending)
	}
	for _, s := range plan.Seeds {
		if s.CarryOver {
			t.Errorf("(%d,%s) carried over without a prior attempt", s.Order, s.ApproverID)
		}
	}
}

func TestStepComplete(t *testing.T) {
	states := []StepState{
		{Order: 1, ApproverID: "A", Status: StepApproved},
		{Order: 1, ApproverID: "B", Status: StepPending},
		{Order: 2, ApproverID: "C", Status: StepApproved},
		{Order: 3, ApproverID: "D", Status: StepSkipped},
	}

	tests := []struct {
		order int
		want  bool
	}{
		{1, false},
		{2, true},
		{3, true},
		{4, false},
	}
	for _, tt := range tests {
		if got := StepComplete(states, tt.order); got != tt.want {
			t.Errorf("StepComplete(order %d) = %v, want %v", tt.order, got, tt.want)
		}
	}
}

func TestNextActionableOrder(t *testing.T) {
	tests := []struct {
		name     string
		states   []StepState
		current  int
		wantNext int
		wantOK   bool
	}{
		{
			name: "next order has pending",
			states: []StepState{
				{Order: 1, ApproverID: "A", Status: StepApproved},
				{Order: 2, ApproverID: "C", Status: StepPending},
			},
			current:  1,
			wantNext: 2,
			wantOK:   true,
		},
		{
			name: "carried-over order is skipped",
			states: []StepState{
				{Order: 1, ApproverID: "A", Status: StepApproved},
				{Order: 2, ApproverID: "B", Status: StepApproved},
				{Order: 5, ApproverID: "C", Status: StepPending},
			},
			current:  1,
			wantNext: 5,
			wantOK:   true,
		},
		{
			name: "lower pending orders are ignored",
			states: []StepState{
				{Order: 1, ApproverID: "A", Status: StepPending},
				{Order: 3, ApproverID: "C", Status: StepApproved},
			},
			current: 2,
			wantOK:  false,
		},
		{
			name: "nothing left",
			states: []StepState{
				{Order: 1, ApproverID: "A", Status: StepApproved},
				{Order: 2, ApproverID: "B", Status: StepApproved},
			},
			current: 1,
			wantOK:  false,
		},
		{
			name: "unordered input",
			states: []StepState{
				{Order: 9, ApproverID: "Z", Status: StepPending},
				{Order: 4, ApproverID: "Y", Status: StepPending},
			},
			current:  1,
			wantNext: 4,
			wantOK:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, ok := NextActionableOrder(tt.states, tt.current)
			if ok != tt.wantOK || (ok && next != tt.wantNext) {
				t.Errorf("NextActionableOrder = (%d, %v), want (%d, %v)", next, ok, tt.wantNext, tt.wantOK)
			}
		})
	}
}

func TestFindPending(t *testing.T) {
	states := []StepState{
		{Order: 1, ApproverID: "A", Status: StepApproved},
		{Order: 1, ApproverID: "B", Status: StepPending},
		{Order: 2, ApproverID: "A", Status: StepPending},
	}

	if got := FindPending(states, 1, "B"); got != 1 {
		t.Errorf("FindPending(1,B) = %d, want 1", got)
	}
	if got := FindPending(states, 1, "A"); got != -1 {
		t.Errorf("FindPending(1,A) = %d, want -1 (already decided)", got)
	}
	if got := FindPending(states, 1, "C"); got != -1 {
		t.Errorf("FindPending(1,C) = %d, want -1 (not an approver)", got)
	}
}

func TestPriorDecisions(t *testing.T) {
	prior := PriorDecisions([]StepState{
		{Order: 1, ApproverID: "A", Status: StepApproved},
		{Order: 2, ApproverID: "A", Status: StepRejected},
	})
	if prior[StepKey{1, "A"}] != StepApproved || prior[StepKey{2, "A"}] != StepRejected {
		t.Errorf("PriorDecisions = %v", prior)
	}
}

func TestOutcomes(t *testing.T) {
	if o := Reject(fixedNow); o.InstanceStatus != InstanceRejected || o.DocumentStatus != DocumentRejected || o.CompletedAt == nil {
		t.Errorf("Reject = %+v", o)
	}
	if o := Complete(fixedNow); o.InstanceStatus != InstanceApproved || o.DocumentStatus != DocumentApproved {
		t.Errorf("Complete = %+v", o)
	}
	if o := Cancel(fixedNow); o.InstanceStatus != InstanceRejected || o.DocumentStatus != DocumentCancelled {
		t.Errorf("Cancel = %+v", o)
	}
}
