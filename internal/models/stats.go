package models

import (
	"fmt"
	"strings"
)

// PriorityLevel buckets a numeric priority.
type PriorityLevel string

const (
	PriorityHigh   PriorityLevel = "high"
	PriorityMedium PriorityLevel = "medium"
	PriorityLow    PriorityLevel = "low"
	PriorityNone   PriorityLevel = "none"
)

// LevelOf returns the bucket for p: >=7 high, 4..6 medium, 1..3 low,
// anything else (0 is unset) none.
func LevelOf(p int) PriorityLevel {
	switch {
	case p >= 7:
		return PriorityHigh
	case p >= 4:
		return PriorityMedium
	case p > 0:
		return PriorityLow
	default:
		return PriorityNone
	}
}

// ParseLevel accepts high, medium or low in any case.
func ParseLevel(s string) (PriorityLevel, error) {
	switch l := PriorityLevel(strings.ToLower(s)); l {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return l, nil
	default:
		return "", fmt.Errorf("invalid priority level %q", s)
	}
}

// Stats are aggregate counts over all todos.
type Stats struct {
	Total          int `json:"total"`
	Completed      int `json:"completed"`
	Active         int `json:"active"`
	HighPriority   int `json:"highPriority"`
	MediumPriority int `json:"mediumPriority"`
	LowPriority    int `json:"lowPriority"`
}

// ComputeStats derives Stats from a todo list.
func ComputeStats(todos []Todo) Stats {
	s := Stats{Total: len(todos)}
	for _, t := range todos {
		if t.Completed {
			s.Completed++
		} else {
			s.Active++
		}
		switch LevelOf(t.Priority) {
		case PriorityHigh:
			s.HighPriority++
		case PriorityMedium:
			s.MediumPriority++
		case PriorityLow:
			s.LowPriority++
		}
	}
	return s
}
