package core

import (
	"context"
	"fmt"

	"catalogcore/pkg/domain"
)

// owningProviderID resolves the provider a bundle hangs under. Sub-profiles
// declare no provider directly; their ownership runs through the service or
// resource they attach to.
func owningProviderID(view domain.TransactionView, bundle domain.AnyBundle) string {
	payload := bundle.Unwrap()
	if providerID := payload.GetProviderID(); providerID != "" {
		return providerID
	}
	owned, ok := payload.(domain.ServiceOwned)
	if !ok {
		return ""
	}
	resourceID := owned.OwningResourceID()
	if resourceID == "" {
		return ""
	}
	for _, kind := range []domain.ResourceKind{domain.KindService, domain.KindTool, domain.KindTrainingResource} {
		if owner, found := view.Resolve(kind, domain.PartitionDraft, resourceID); found {
			return owner.Unwrap().GetProviderID()
		}
	}
	return ""
}

// ancestorSuspended reports whether the named bundle exists in the draft
// partition with its suspension flag raised.
func ancestorSuspended(view domain.TransactionView, kind domain.ResourceKind, id string) bool {
	if id == "" {
		return false
	}
	bundle, ok := view.Resolve(kind, domain.PartitionDraft, id)
	return ok && bundle.Base().Suspended
}

// checkUnsuspendAllowed enforces the suspension hierarchy: a provider stays
// suspended while its catalogue is, and any lower resource stays suspended
// while either its catalogue or its provider is. Suspending never consults
// ancestors, and suspension never cascades downward on its own.
func checkUnsuspendAllowed(view domain.TransactionView, bundle domain.AnyBundle) error {
	kind := bundle.Kind()
	if kind == domain.KindCatalogue {
		return nil
	}
	payload := bundle.Unwrap()
	if ancestorSuspended(view, domain.KindCatalogue, payload.GetCatalogueID()) {
		return domain.ValidationError{
			Field:   "suspended",
			Message: fmt.Sprintf("catalogue %q is suspended", payload.GetCatalogueID()),
		}
	}
	if kind == domain.KindProvider {
		return nil
	}
	if providerID := owningProviderID(view, bundle); ancestorSuspended(view, domain.KindProvider, providerID) {
		return domain.ValidationError{
			Field:   "suspended",
			Message: fmt.Sprintf("provider %q is suspended", providerID),
		}
	}
	return nil
}

// SetSuspended flips the suspension flag of a draft bundle and records the
// transition in its ledger. Published bundles are rejected; unsuspension is
// blocked while a suspended ancestor remains. Every accepted call appends
// exactly one ledger entry, including repeats of the current state.
func (s *Service) SetSuspended(ctx context.Context, kind domain.ResourceKind, id string, suspend bool, actor domain.Actor) (domain.AnyBundle, domain.Result, error) {
	ctx, finish := s.instrument(ctx, "set_suspended")
	var updated domain.AnyBundle
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		current, ok := tx.Resolve(kind, domain.PartitionDraft, id)
		if !ok {
			return domain.NotFoundError{Kind: kind, ID: id}
		}
		base := current.Base()
		if base.Metadata.Published {
			return domain.ValidationError{Field: "suspended", Message: "published records cannot be suspended"}
		}
		if !suspend {
			if err := checkUnsuspendAllowed(tx.Snapshot(), current); err != nil {
				return err
			}
		}
		action := domain.ActionSuspended
		if !suspend {
			action = domain.ActionUnsuspended
		}
		var err error
		updated, err = tx.Update(kind, domain.PartitionDraft, id, func(b domain.AnyBundle) error {
			b.Base().Suspended = suspend
			AppendLoggingInfo(b.Base(), NewLoggingInfo(domain.TypeUpdate, action, actor, "", s.now()))
			return nil
		})
		return err
	})
	finish(err)
	return updated, res, err
}
