package core

import "catalogcore/pkg/domain"

// DeriveAuditState computes the audit state from a bundle ledger. The most
// recent audit entry governs; update entries strictly more recent than it
// flip an invalid finding to invalid_and_updated. The function is pure and
// never mutates its input.
func DeriveAuditState(entries []domain.LoggingInfo) domain.AuditState {
	audit := LatestOf(entries, domain.TypeAudit)
	if audit == nil {
		return domain.AuditStateNotAudited
	}
	if audit.ActionType != domain.ActionInvalid {
		return domain.AuditStateValid
	}
	for i := range entries {
		if entries[i].Type == domain.TypeUpdate && entries[i].Date.After(audit.Date) {
			return domain.AuditStateInvalidAndUpdated
		}
	}
	return domain.AuditStateInvalidAndNotUpdated
}
