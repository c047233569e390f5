package core

import (
	"context"
	"fmt"

	"catalogcore/pkg/domain"
)

// CatalogueAgreementRule blocks commits in which a bundle, its owning
// provider, and the catalogue record disagree about the catalogue they belong
// to. Every non-catalogue bundle must declare a catalogue that exists, and its
// provider (when mirrored locally) must declare the same one.
func CatalogueAgreementRule() domain.Rule {
	return catalogueAgreementRule{}
}

type catalogueAgreementRule struct{}

func (catalogueAgreementRule) Name() string { return "catalogue_agreement" }

func (catalogueAgreementRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		if change.After == nil || change.Kind == domain.KindCatalogue {
			continue
		}
		payload := change.After.Unwrap()
		catalogueID := payload.GetCatalogueID()
		if catalogueID == "" {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "catalogue_agreement",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("%s %s declares no catalogue", change.Kind, change.After.Base().ID),
				Kind:     change.Kind,
				BundleID: change.After.Base().ID,
			})
			continue
		}
		if !catalogueRegistered(view, catalogueID) {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "catalogue_agreement",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("%s %s declares catalogue %q which does not exist", change.Kind, change.After.Base().ID, catalogueID),
				Kind:     change.Kind,
				BundleID: change.After.Base().ID,
			})
			continue
		}
		providerID := payload.GetProviderID()
		if providerID == "" {
			continue
		}
		provider, ok := view.Resolve(domain.KindProvider, change.Partition, providerID)
		if !ok {
			// Cross-catalogue providers may not be mirrored locally.
			continue
		}
		if providerCatalogue := provider.Unwrap().GetCatalogueID(); providerCatalogue != catalogueID {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "catalogue_agreement",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("%s %s declares catalogue %q but provider %s belongs to %q", change.Kind, change.After.Base().ID, catalogueID, providerID, providerCatalogue),
				Kind:     change.Kind,
				BundleID: change.After.Base().ID,
			})
		}
	}
	return res, nil
}

func catalogueRegistered(view domain.RuleView, id string) bool {
	for _, partition := range []domain.Partition{domain.PartitionDraft, domain.PartitionPublic} {
		if view.Exists(domain.KindCatalogue, partition, id) {
			return true
		}
	}
	return false
}
