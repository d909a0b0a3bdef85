package approval

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// ApproverRef identifies one approver within a step.
type ApproverRef struct {
	ID string `json:"id"`
}

// StepDef is one step of a route: an order, its approvers and an optional
// deadline in hours.
type StepDef struct {
	Order         int           `json:"order"`
	Approvers     []ApproverRef `json:"approvers"`
	DeadlineHours *int          `json:"deadline_hours,omitempty"`
}

// RouteSnapshot is the frozen copy of a route's steps taken at submission.
// Steps are sorted by ascending order and validated by NewSnapshot.
type RouteSnapshot struct {
	Steps []StepDef `json:"steps"`
}

// NewSnapshot validates steps and returns a deep, order-sorted copy.
// Rules:
// - At least one step
// - Orders are positive and unique
// - Every step has at least one approver, with no blank or duplicate IDs
// - DeadlineHours, when present, is positive
func NewSnapshot(steps []StepDef) (RouteSnapshot, error) {
	if len(steps) == 0 {
		return RouteSnapshot{}, fmt.Errorf("%w: route has no steps", ErrEmptyRoute)
	}

	copied := make([]StepDef, len(steps))
	for i, step := range steps {
		copied[i] = cloneStep(step)
	}
	sort.SliceStable(copied, func(i, j int) bool { return copied[i].Order < copied[j].Order })

	prev := 0
	for _, step := range copied {
		if step.Order <= 0 {
			return RouteSnapshot{}, fmt.Errorf("%w: step order must be positive (got %d)", ErrInvalidRoute, step.Order)
		}
		if step.Order == prev {
			return RouteSnapshot{}, fmt.Errorf("%w: duplicate step order %d", ErrInvalidRoute, step.Order)
		}
		prev = step.Order

		if len(step.Approvers) == 0 {
			return RouteSnapshot{}, fmt.Errorf("%w: step %d has no approvers", ErrInvalidRoute, step.Order)
		}
		seen := make(map[string]bool, len(step.Approvers))
		for _, a := range step.Approvers {
			if a.ID == "" {
				return RouteSnapshot{}, fmt.Errorf("%w: step %d has a blank approver", ErrInvalidRoute, step.Order)
			}
			if seen[a.ID] {
				return RouteSnapshot{}, fmt.Errorf("%w: approver %s listed twice in step %d", ErrInvalidRoute, a.ID, step.Order)
			}
			seen[a.ID] = true
		}
		if step.DeadlineHours != nil && *step.DeadlineHours <= 0 {
			return RouteSnapshot{}, fmt.Errorf("%w: step %d deadline must be positive", ErrInvalidRoute, step.Order)
		}
	}

	return RouteSnapshot{Steps: copied}, nil
}

// ParseSnapshot decodes a stored snapshot and re-validates it.
func ParseSnapshot(data string) (RouteSnapshot, error) {
	var raw RouteSnapshot
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return RouteSnapshot{}, fmt.Errorf("failed to parse route snapshot: %w", err)
	}
	return NewSnapshot(raw.Steps)
}

// Encode serializes the snapshot for storage.
func (s RouteSnapshot) Encode() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to encode route snapshot: %w", err)
	}
	return string(data), nil
}

// MinOrder returns the lowest step order, or 0 for an empty snapshot.
func (s RouteSnapshot) MinOrder() int {
	if len(s.Steps) == 0 {
		return 0
	}
	return s.Steps[0].Order
}

// MaxOrder returns the highest step order, or 0 for an empty snapshot.
func (s RouteSnapshot) MaxOrder() int {
	if len(s.Steps) == 0 {
		return 0
	}
	return s.Steps[len(s.Steps)-1].Order
}

// Step returns the step definition at order.
func (s RouteSnapshot) Step(order int) (StepDef, bool) {
	for _, step := range s.Steps {
		if step.Order == order {
			return step, true
		}
	}
	return StepDef{}, false
}

// DeadlineAt computes the deadline for the step at order once it becomes
// active at now. Nil means the step has no deadline.
func (s RouteSnapshot) DeadlineAt(order int, now time.Time) *time.Time {
	step, ok := s.Step(order)
	if !ok {
		return nil
	}
	return step.deadlineFrom(now)
}

func (d StepDef) deadlineFrom(now time.Time) *time.Time {
	if d.DeadlineHours == nil {
		return nil
	}
	deadline := now.Add(time.Duration(*d.DeadlineHours) * time.Hour)
	return &deadline
}

func cloneStep(step StepDef) StepDef {
	out := StepDef{Order: step.Order}
	out.Approvers = append([]ApproverRef(nil), step.Approvers...)
	if step.DeadlineHours != nil {
		h := *step.DeadlineHours
		out.DeadlineHours = &h
	}
	return out
}
