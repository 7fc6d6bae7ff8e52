package types

import "fmt"

// HierarchyLevel is the seniority of an employee inside the organization
type HierarchyLevel string

const (
	HierarchyLevelJunior  HierarchyLevel = "Junior"
	HierarchyLevelMid     HierarchyLevel = "Mid"
	HierarchyLevelSenior  HierarchyLevel = "Senior"
	HierarchyLevelManager HierarchyLevel = "Manager"
)

// AllHierarchyLevels returns all valid hierarchy levels, lowest first
func AllHierarchyLevels() []HierarchyLevel {
	return []HierarchyLevel{
		HierarchyLevelJunior,
		HierarchyLevelMid,
		HierarchyLevelSenior,
		HierarchyLevelManager,
	}
}

// IsValid checks if the hierarchy level is valid
func (l HierarchyLevel) IsValid() bool {
	switch l {
	case HierarchyLevelJunior,
		HierarchyLevelMid,
		HierarchyLevelSenior,
		HierarchyLevelManager:
		return true
	default:
		return false
	}
}

// IsManager reports whether an employee at this level can be referenced as a manager
func (l HierarchyLevel) IsManager() bool {
	return l == HierarchyLevelManager
}

// String returns the string representation of the hierarchy level
func (l HierarchyLevel) String() string {
	return string(l)
}

// ParseHierarchyLevel parses a string into a HierarchyLevel
func ParseHierarchyLevel(s string) (HierarchyLevel, error) {
	level := HierarchyLevel(s)
	if !level.IsValid() {
		return "", fmt.Errorf("invalid hierarchy level: %s", s)
	}
	return level, nil
}
