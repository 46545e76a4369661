// Package view holds the pure presentation logic shared by API clients:
// catalog bucketing and the deadline-proximity indicator.
package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/shaibs3/studyhub/internal/db_model"
)

// Tier is the urgency class of a deadline indicator.
type Tier string

const (
	TierNormal   Tier = "normal"
	TierWarning  Tier = "warning"
	TierCritical Tier = "critical"
)

const (
	warningAbove  = 75.0
	criticalAbove = 95.0
)

// Progress is how much of the time between creation and due date has passed.
type Progress struct {
	Percent float64
	Tier    Tier
}

// DeadlineProgress computes the indicator for a task created at created and
// due on due, as seen at now. The due date counts from local midnight in
// now's location. It reports false when there is no due date.
func DeadlineProgress(created time.Time, due *db_model.Date, now time.Time) (Progress, bool) {
	if due == nil {
		return Progress{}, false
	}
	deadline := due.In(now.Location())
	if now.After(deadline) {
		return Progress{Percent: 100, Tier: TierCritical}, true
	}

	total := deadline.Sub(created)
	if total > 0 {
		pct := float64(now.Sub(created)) / float64(total) * 100
		pct = clamp(pct, 0, 100)
		return Progress{Percent: pct, Tier: tierFor(pct)}, true
	}

	// Created on or after the deadline but not yet overdue.
	pct := 0.0
	if sameDay(now, deadline) {
		pct = float64(now.Hour()) / 24 * 100
	}
	return Progress{Percent: pct, Tier: TierNormal}, true
}

// TaskProgress is DeadlineProgress for a task.
func TaskProgress(t db_model.Task, now time.Time) (Progress, bool) {
	return DeadlineProgress(t.CreatedAt, t.DueDate, now)
}

// Bar renders p as a fixed-width text bar, e.g. "[######----]  60% normal".
func Bar(p Progress, width int) string {
	if width <= 0 {
		width = 10
	}
	filled := int(p.Percent / 100 * float64(width))
	if filled > width {
		filled = width
	}
	return fmt.Sprintf("[%s%s] %3.0f%% %s",
		strings.Repeat("#", filled), strings.Repeat("-", width-filled), p.Percent, p.Tier)
}

func tierFor(pct float64) Tier {
	switch {
	case pct > criticalAbove:
		return TierCritical
	case pct > warningAbove:
		return TierWarning
	default:
		return TierNormal
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
