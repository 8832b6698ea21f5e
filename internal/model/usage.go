package model

import "time"

// UnlimitedClassifications is the plan limit sentinel for unmetered plans.
const UnlimitedClassifications = -1

// Usage is the persisted classification usage counter for a tenant.
type Usage struct {
	LastUsedAt time.Time
	Used       int
	Limit      int
}

// Unlimited reports whether the plan carries no classification limit.
func (u Usage) Unlimited() bool {
	return u.Limit == UnlimitedClassifications
}

// Remaining returns how many classifications are left, or
// UnlimitedClassifications on an unmetered plan.
func (u Usage) Remaining() int {
	if u.Unlimited() {
		return UnlimitedClassifications
	}
	if r := u.Limit - u.Used; r > 0 {
		return r
	}
	return 0
}
