package approval

import (
	"sort"
	"time"
)

// StepKey identifies one approver slot within a step across attempts.
type StepKey struct {
	Order      int
	ApproverID string
}

// StepState is the minimal view of a step instance the resolver needs.
type StepState struct {
	Order      int
	ApproverID string
	Status     StepStatus
}

// StepSeed describes a step instance to be created for a new attempt.
type StepSeed struct {
	Order      int
	ApproverID string
	Status     StepStatus
	CarryOver  bool
	DecisionAt *time.Time
	DeadlineAt *time.Time
}

// ResubmissionPlan is the result of expanding a route for a resubmission.
type ResubmissionPlan struct {
	Seeds []StepSeed
	// CurrentOrder is the lowest order holding a freshly pending approver.
	// When HasPending is false every slot was carried over and CurrentOrder
	// is the snapshot's max order.
	CurrentOrder int
	HasPending   bool
}

// ExpandSubmission expands a snapshot into one pending step instance per
// (step, approver). Only the first step receives a deadline.
func ExpandSubmission(snapshot RouteSnapshot, now time.Time) []StepSeed {
	first := snapshot.MinOrder()
	var seeds []StepSeed
	for _, step := range snapshot.Steps {
		var deadline *time.Time
		if step.Order == first {
			deadline = step.deadlineFrom(now)
		}
		for _, a := range step.Approvers {
			seeds = append(seeds, StepSeed{
				Order:      step.Order,
				ApproverID: a.ID,
				Status:     StepPending,
				DeadlineAt: copyTime(deadline),
			})
		}
	}
	return seeds
}

// ExpandResubmission expands a snapshot for a new attempt, carrying over
// every (order, approver) pair that was approved in the immediately
// preceding attempt. prior may be nil.
func ExpandResubmission(snapshot RouteSnapshot, prior map[StepKey]StepStatus, now time.Time) ResubmissionPlan {
	plan := ResubmissionPlan{}
	for _, step := range snapshot.Steps {
		for _, a := range step.Approvers {
			key := StepKey{Order: step.Order, ApproverID: a.ID}
			if prior[key] == StepApproved {
				decided := now
				plan.Seeds = append(plan.Seeds, StepSeed{
					Order:      step.Order,
					ApproverID: a.ID,
					Status:     StepApproved,
					CarryOver:  true,
					DecisionAt: &decided,
				})
				continue
			}
			plan.Seeds = append(plan.Seeds, StepSeed{
				Order:      step.Order,
				ApproverID: a.ID,
				Status:     StepPending,
			})
			if !plan.HasPending || step.Order < plan.CurrentOrder {
				plan.CurrentOrder = step.Order
				plan.HasPending = true
			}
		}
	}

	if !plan.HasPending {
		plan.CurrentOrder = snapshot.MaxOrder()
		return plan
	}

	deadline := snapshot.DeadlineAt(plan.CurrentOrder, now)
	for i := range plan.Seeds {
		seed := &plan.Seeds[i]
		if seed.Order == plan.CurrentOrder && seed.Status == StepPending {
			seed.DeadlineAt = copyTime(deadline)
		}
	}
	return plan
}

// PriorDecisions indexes the step states of a previous attempt by slot.
func PriorDecisions(states []StepState) map[StepKey]StepStatus {
	out := make(map[StepKey]StepStatus, len(states))
	for _, s := range states {
		out[StepKey{Order: s.Order, ApproverID: s.ApproverID}] = s.Status
	}
	return out
}

// StepComplete reports whether every step instance at order is resolved.
// An order with no step instances is never complete.
func StepComplete(states []StepState, order int) bool {
	found := false
	for _, s := range states {
		if s.Order != order {
			continue
		}
		found = true
		if !s.Status.Resolved() {
			return false
		}
	}
	return found
}

// NextActionableOrder returns the lowest order strictly greater than current
// that still has a pending step instance. Orders whose instances are all
// resolved are skipped. ok is false when no such order exists, meaning the
// instance is complete.
func NextActionableOrder(states []StepState, current int) (next int, ok bool) {
	orders := make([]int, 0, len(states))
	for _, s := range states {
		if s.Order > current && s.Status == StepPending {
			orders = append(orders, s.Order)
		}
	}
	if len(orders) == 0 {
		return 0, false
	}
	sort.Ints(orders)
	return orders[0], true
}

// FindPending returns the index of approverID's pending step instance at
// order, or -1.
func FindPending(states []StepState, order int, approverID string) int {
	for i, s := range states {
		if s.Order == order && s.ApproverID == approverID && s.Status == StepPending {
			return i
		}
	}
	return -1
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
