package commands

import "github.com/rios0rios0/omnirun/internal/domain/entities"

// BuildPlan exports buildPlan for testing.
func (it *FixCommand) BuildPlan(result *entities.ScanResult) entities.FixPlan {
	return it.buildPlan(result)
}
