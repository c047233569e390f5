package core

import (
	"testing"
	"time"

	"catalogcore/pkg/domain"
)

var ledgerEpoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func entryAt(typ domain.LoggingType, action domain.ActionType, offset time.Duration) domain.LoggingInfo {
	return domain.LoggingInfo{Date: ledgerEpoch.Add(offset), Type: typ, ActionType: action}
}

func TestNewLoggingInfoAttributesSystemForZeroActor(t *testing.T) {
	entry := NewLoggingInfo(domain.TypeOnboard, domain.ActionRegistered, domain.Actor{}, "", ledgerEpoch)
	if entry.UserRole != "system" {
		t.Fatalf("expected system role for zero actor, got %q", entry.UserRole)
	}
	if entry.UserEmail != "" {
		t.Fatalf("expected empty email for system actor, got %q", entry.UserEmail)
	}
	if !entry.Date.Equal(ledgerEpoch) {
		t.Fatalf("expected date %v, got %v", ledgerEpoch, entry.Date)
	}
}

func TestNewLoggingInfoKeepsActor(t *testing.T) {
	actor := domain.Actor{Email: "curator@example.org", Role: "provider admin"}
	entry := NewLoggingInfo(domain.TypeUpdate, domain.ActionUpdated, actor, "touched", ledgerEpoch)
	if entry.UserEmail != actor.Email || entry.UserRole != actor.Role {
		t.Fatalf("actor not carried into entry: %+v", entry)
	}
	if entry.Comment != "touched" {
		t.Fatalf("comment not carried: %q", entry.Comment)
	}
}

func TestLatestOfPicksMostRecentDate(t *testing.T) {
	entries := []domain.LoggingInfo{
		entryAt(domain.TypeUpdate, domain.ActionUpdated, 0),
		entryAt(domain.TypeUpdate, domain.ActionActivated, 2*time.Hour),
		entryAt(domain.TypeUpdate, domain.ActionDeactivated, time.Hour),
		entryAt(domain.TypeOnboard, domain.ActionRegistered, 3*time.Hour),
	}
	latest := LatestOf(entries, domain.TypeUpdate)
	if latest == nil {
		t.Fatalf("expected a latest update entry")
	}
	if latest.ActionType != domain.ActionActivated {
		t.Fatalf("expected activated entry, got %s", latest.ActionType)
	}
}

func TestLatestOfEqualDatesKeepsLaterInsertion(t *testing.T) {
	entries := []domain.LoggingInfo{
		entryAt(domain.TypeAudit, domain.ActionValid, 0),
		entryAt(domain.TypeAudit, domain.ActionInvalid, 0),
	}
	latest := LatestOf(entries, domain.TypeAudit)
	if latest == nil || latest.ActionType != domain.ActionInvalid {
		t.Fatalf("expected later insertion to win the tie, got %+v", latest)
	}
}

func TestLatestOfReturnsCopy(t *testing.T) {
	entries := []domain.LoggingInfo{entryAt(domain.TypeOnboard, domain.ActionRegistered, 0)}
	latest := LatestOf(entries, domain.TypeOnboard)
	latest.Comment = "mutated"
	if entries[0].Comment != "" {
		t.Fatalf("LatestOf must not alias ledger entries")
	}
}

func TestLatestOfMissingType(t *testing.T) {
	entries := []domain.LoggingInfo{entryAt(domain.TypeOnboard, domain.ActionRegistered, 0)}
	if latest := LatestOf(entries, domain.TypeAudit); latest != nil {
		t.Fatalf("expected nil for absent entry type, got %+v", latest)
	}
}

func TestAppendLoggingInfoRefreshesCaches(t *testing.T) {
	base := &domain.BundleBase{}
	AppendLoggingInfo(base, entryAt(domain.TypeOnboard, domain.ActionRegistered, 0))
	AppendLoggingInfo(base, entryAt(domain.TypeAudit, domain.ActionInvalid, time.Hour))
	AppendLoggingInfo(base, entryAt(domain.TypeUpdate, domain.ActionUpdated, 2*time.Hour))

	if base.LatestOnboardingInfo == nil || base.LatestOnboardingInfo.ActionType != domain.ActionRegistered {
		t.Fatalf("onboarding cache not refreshed: %+v", base.LatestOnboardingInfo)
	}
	if base.LatestAuditInfo == nil || base.LatestAuditInfo.ActionType != domain.ActionInvalid {
		t.Fatalf("audit cache not refreshed: %+v", base.LatestAuditInfo)
	}
	if base.LatestUpdateInfo == nil || base.LatestUpdateInfo.ActionType != domain.ActionUpdated {
		t.Fatalf("update cache not refreshed: %+v", base.LatestUpdateInfo)
	}
	if base.AuditState != domain.AuditStateInvalidAndUpdated {
		t.Fatalf("expected derived state invalid_and_updated, got %s", base.AuditState)
	}
	if len(base.LoggingInfo) != 3 {
		t.Fatalf("expected 3 ledger entries, got %d", len(base.LoggingInfo))
	}
}

func TestEnsureLoggingInfoBackfillsEmptyLedger(t *testing.T) {
	base := &domain.BundleBase{}
	EnsureLoggingInfo(base, domain.Actor{Email: "ops@example.org", Role: "admin"}, ledgerEpoch)
	if len(base.LoggingInfo) != 1 {
		t.Fatalf("expected a single backfilled entry, got %d", len(base.LoggingInfo))
	}
	entry := base.LoggingInfo[0]
	if entry.Type != domain.TypeOnboard || entry.ActionType != domain.ActionRegistered {
		t.Fatalf("unexpected backfill entry: %+v", entry)
	}
	if base.AuditState != domain.AuditStateNotAudited {
		t.Fatalf("expected not_audited, got %s", base.AuditState)
	}
}

func TestEnsureLoggingInfoLeavesExistingLedger(t *testing.T) {
	base := &domain.BundleBase{LoggingInfo: []domain.LoggingInfo{
		entryAt(domain.TypeOnboard, domain.ActionRegistered, 0),
		entryAt(domain.TypeAudit, domain.ActionValid, time.Hour),
	}}
	EnsureLoggingInfo(base, domain.Actor{}, ledgerEpoch.Add(48*time.Hour))
	if len(base.LoggingInfo) != 2 {
		t.Fatalf("existing ledger must not grow, got %d entries", len(base.LoggingInfo))
	}
	if base.AuditState != domain.AuditStateValid {
		t.Fatalf("caches must still be recomputed, got %s", base.AuditState)
	}
}
