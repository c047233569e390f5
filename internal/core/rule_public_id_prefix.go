package core

import (
	"context"
	"fmt"

	"catalogcore/pkg/domain"
)

// PublicIDPrefixRule blocks public-partition commits whose ids repeat the
// owning catalogue prefix, the footprint of a record re-prefixed during
// cross-catalogue exchange.
func PublicIDPrefixRule() domain.Rule {
	return publicIDPrefixRule{}
}

type publicIDPrefixRule struct{}

func (publicIDPrefixRule) Name() string { return "public_id_prefix" }

func (publicIDPrefixRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		if change.After == nil || change.Partition != domain.PartitionPublic {
			continue
		}
		base := change.After.Base()
		prefix := change.After.Unwrap().GetCatalogueID()
		if err := RestrictPrefixRepetition(base.ID, prefix); err != nil {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "public_id_prefix",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("%s %s: id repeats catalogue prefix %q", change.Kind, base.ID, prefix),
				Kind:     change.Kind,
				BundleID: base.ID,
			})
		}
	}
	return res, nil
}
