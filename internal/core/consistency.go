package core

import (
	"fmt"
	"strings"

	"catalogcore/pkg/domain"
)

// CheckCatalogueIDConsistency verifies that a payload declares the catalogue
// it is being registered into: the declared id must be non-empty, equal to the
// expected one, and name a catalogue record that actually exists.
func CheckCatalogueIDConsistency(payload domain.Payload, expectedCatalogueID string, view domain.TransactionView) error {
	if payload.GetCatalogueID() == "" {
		return domain.ValidationError{Field: "catalogue_id", Message: "catalogue id must not be empty"}
	}
	if !CatalogueExists(view, expectedCatalogueID) {
		return domain.NotFoundError{Kind: domain.KindCatalogue, ID: expectedCatalogueID}
	}
	if payload.GetCatalogueID() != expectedCatalogueID {
		return domain.ValidationError{
			Field:   "catalogue_id",
			Message: fmt.Sprintf("payload declares catalogue %q but is registered under %q", payload.GetCatalogueID(), expectedCatalogueID),
		}
	}
	return nil
}

// CatalogueExists reports whether a catalogue record with the given id is
// known in either partition.
func CatalogueExists(view domain.TransactionView, id string) bool {
	if id == "" {
		return false
	}
	return view.Exists(domain.KindCatalogue, domain.PartitionDraft, id) ||
		view.Exists(domain.KindCatalogue, domain.PartitionPublic, id)
}

// resolvePublished looks an id up across the candidate kinds, draft first.
// It reports the owning catalogue and whether the referent is published
// anywhere (its own published flag or the existence of a public copy).
func resolvePublished(view domain.TransactionView, id string, kinds []domain.ResourceKind) (catalogueID string, published, found bool) {
	for _, kind := range kinds {
		if bundle, ok := view.Resolve(kind, domain.PartitionDraft, id); ok {
			pub := bundle.Base().Metadata.Published || view.Exists(kind, domain.PartitionPublic, id)
			return bundle.Unwrap().GetCatalogueID(), pub, true
		}
		if bundle, ok := view.Resolve(kind, domain.PartitionPublic, id); ok {
			return bundle.Unwrap().GetCatalogueID(), true, true
		}
	}
	return "", false, false
}

// CheckRelatedResourceIDs validates every outgoing reference list of a
// payload. A reference is rejected only when the referent exists, is not
// published, and belongs to a different catalogue: unpublished resources are
// private to their own catalogue. References that resolve to nothing are
// skipped; catalogues exchange records asynchronously and a referent may not
// have arrived yet.
func (s *Service) CheckRelatedResourceIDs(payload domain.Payload, view domain.TransactionView) error {
	for _, list := range payload.ReferenceLists() {
		for _, id := range list.IDs {
			if id == "" {
				continue
			}
			catalogueID, published, found := resolvePublished(view, id, list.Kinds)
			if !found {
				s.log.Debug().Str("field", list.Field).Str("id", id).Msg("skipping unresolvable reference")
				continue
			}
			if !published && catalogueID != payload.GetCatalogueID() {
				return domain.ValidationError{
					Field:   list.Field,
					Message: fmt.Sprintf("resource %q is not published and belongs to catalogue %q", id, catalogueID),
				}
			}
		}
	}
	return nil
}

// RestrictPrefixRepetition rejects ids in which the catalogue prefix appears
// more than once, which happens when an already-prefixed id is re-prefixed
// during cross-catalogue exchange.
func RestrictPrefixRepetition(id, prefix string) error {
	if prefix == "" {
		return nil
	}
	if strings.Count(id, prefix+".") > 1 {
		return domain.ValidationError{
			Field:   "id",
			Message: fmt.Sprintf("id %q repeats catalogue prefix %q", id, prefix),
		}
	}
	return nil
}
