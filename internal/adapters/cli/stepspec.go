package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/example/docroute/internal/ports/primary"
)

// ParseStepSpecs parses "order:approver1,approver2[:deadlineHours]" specs.
// Structural rules such as unique orders are left to the route service.
func ParseStepSpecs(specs []string) ([]primary.RouteStep, error) {
	steps := make([]primary.RouteStep, 0, len(specs))
	for _, spec := range specs {
		parts := strings.Split(spec, ":")
		if len(parts) < 2 || len(parts) > 3 {
			return nil, fmt.Errorf("invalid step %q: expected order:approvers[:deadline_hours]", spec)
		}

		order, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, fmt.Errorf("invalid step %q: order must be a number", spec)
		}

		var approvers []string
		for _, id := range strings.Split(parts[1], ",") {
			if id = strings.TrimSpace(id); id != "" {
				approvers = append(approvers, id)
			}
		}

		step := primary.RouteStep{Order: order, Approvers: approvers}
		if len(parts) == 3 {
			hours, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(parts[2]), "h"))
			if err != nil {
				return nil, fmt.Errorf("invalid step %q: deadline must be a number of hours", spec)
			}
			step.DeadlineHours = hours
		}
		steps = append(steps, step)
	}
	return steps, nil
}
