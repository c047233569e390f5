package core

import (
	"time"

	"catalogcore/pkg/domain"
)

// NewLoggingInfo builds a ledger entry stamped with the given instant. A zero
// actor is attributed to the system.
func NewLoggingInfo(typ domain.LoggingType, action domain.ActionType, actor domain.Actor, comment string, at time.Time) domain.LoggingInfo {
	if actor.IsZero() {
		actor = domain.SystemActor()
	}
	return domain.LoggingInfo{
		Date:       at.UTC(),
		Type:       typ,
		ActionType: action,
		UserEmail:  actor.Email,
		UserRole:   actor.Role,
		Comment:    comment,
	}
}

// AppendLoggingInfo appends an entry to the bundle ledger and refreshes the
// latest-entry caches and the derived audit state. Entries are never modified
// or removed once appended.
func AppendLoggingInfo(base *domain.BundleBase, entry domain.LoggingInfo) {
	base.LoggingInfo = append(base.LoggingInfo, entry)
	RecomputeLatest(base)
}

// EnsureLoggingInfo backfills a registration entry on bundles whose ledger is
// empty, such as records imported from systems that predate the ledger.
func EnsureLoggingInfo(base *domain.BundleBase, actor domain.Actor, at time.Time) {
	if len(base.LoggingInfo) > 0 {
		RecomputeLatest(base)
		return
	}
	AppendLoggingInfo(base, NewLoggingInfo(domain.TypeOnboard, domain.ActionRegistered, actor, "", at))
}

// LatestOf returns the most recent entry of the given type. Date ordering
// governs; among equal dates the later insertion wins.
func LatestOf(entries []domain.LoggingInfo, typ domain.LoggingType) *domain.LoggingInfo {
	var best *domain.LoggingInfo
	for i := range entries {
		if entries[i].Type != typ {
			continue
		}
		if best == nil || !entries[i].Date.Before(best.Date) {
			best = &entries[i]
		}
	}
	if best == nil {
		return nil
	}
	cp := *best
	return &cp
}

// RecomputeLatest rebuilds the latest-entry caches and derived audit state
// from the ledger. Callers never write the cache fields directly.
func RecomputeLatest(base *domain.BundleBase) {
	base.LatestOnboardingInfo = LatestOf(base.LoggingInfo, domain.TypeOnboard)
	base.LatestUpdateInfo = LatestOf(base.LoggingInfo, domain.TypeUpdate)
	base.LatestAuditInfo = LatestOf(base.LoggingInfo, domain.TypeAudit)
	base.AuditState = DeriveAuditState(base.LoggingInfo)
}
