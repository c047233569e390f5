package core

import (
	"context"
	"fmt"

	"catalogcore/pkg/domain"
)

// LedgerIntegrityRule blocks commits of bundles whose ledger is empty or
// whose latest-entry caches drifted from what the ledger derives.
func LedgerIntegrityRule() domain.Rule {
	return ledgerIntegrityRule{}
}

type ledgerIntegrityRule struct{}

func (ledgerIntegrityRule) Name() string { return "ledger_integrity" }

func loggingInfoEqual(a, b *domain.LoggingInfo) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Date.Equal(b.Date) && a.Type == b.Type && a.ActionType == b.ActionType &&
		a.UserEmail == b.UserEmail && a.UserRole == b.UserRole && a.Comment == b.Comment
}

func (ledgerIntegrityRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	block := func(change domain.Change, message string) {
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "ledger_integrity",
			Severity: domain.SeverityBlock,
			Message:  message,
			Kind:     change.Kind,
			BundleID: change.After.Base().ID,
		})
	}
	for _, change := range changes {
		if change.After == nil {
			continue
		}
		base := change.After.Base()
		if len(base.LoggingInfo) == 0 {
			block(change, fmt.Sprintf("%s %s has an empty ledger", change.Kind, base.ID))
			continue
		}
		if !loggingInfoEqual(base.LatestOnboardingInfo, LatestOf(base.LoggingInfo, domain.TypeOnboard)) ||
			!loggingInfoEqual(base.LatestUpdateInfo, LatestOf(base.LoggingInfo, domain.TypeUpdate)) ||
			!loggingInfoEqual(base.LatestAuditInfo, LatestOf(base.LoggingInfo, domain.TypeAudit)) {
			block(change, fmt.Sprintf("%s %s latest-entry caches diverge from ledger", change.Kind, base.ID))
			continue
		}
		if base.AuditState != DeriveAuditState(base.LoggingInfo) {
			block(change, fmt.Sprintf("%s %s audit state diverges from ledger", change.Kind, base.ID))
		}
	}
	return res, nil
}
