package core

import (
	"context"
	"encoding/json"
	"fmt"

	"catalogcore/pkg/domain"
)

// SnapshotArchiver stores JSON snapshots of published bundles in a blob
// store. Archive overwrites any previous snapshot under the same key.
type SnapshotArchiver interface {
	Archive(ctx context.Context, key string, data []byte) error
	Remove(ctx context.Context, key string) error
}

func archiveKey(bundle domain.AnyBundle) string {
	payload := bundle.Unwrap()
	return fmt.Sprintf("%s/%s/%s.json", payload.GetCatalogueID(), bundle.Kind(), bundle.Base().ID)
}

// archivePublished writes the public bundle snapshot to the blob archive.
// Best-effort: a failed archive never fails the publication that triggered
// it.
func (s *Service) archivePublished(ctx context.Context, bundle domain.AnyBundle) {
	if s.archiver == nil {
		return
	}
	data, err := json.Marshal(bundle)
	if err != nil {
		s.log.Warn().Err(err).Str("id", bundle.Base().ID).Msg("encode published snapshot")
		return
	}
	if err := s.archiver.Archive(ctx, archiveKey(bundle), data); err != nil {
		s.log.Warn().Err(err).Str("key", archiveKey(bundle)).Msg("archive published snapshot")
	}
}

func (s *Service) removeArchived(ctx context.Context, bundle domain.AnyBundle) {
	if s.archiver == nil {
		return
	}
	if err := s.archiver.Remove(ctx, archiveKey(bundle)); err != nil {
		s.log.Warn().Err(err).Str("key", archiveKey(bundle)).Msg("remove archived snapshot")
	}
}

// subProfiles returns the dependent sub-profile bundles attached to a
// resource id within a partition.
func subProfiles(view domain.TransactionView, resourceID string, partition domain.Partition) []domain.AnyBundle {
	var out []domain.AnyBundle
	for _, kind := range domain.SubProfileKinds() {
		for _, bundle := range view.List(kind, partition) {
			owned, ok := bundle.Unwrap().(domain.ServiceOwned)
			if !ok {
				continue
			}
			if owned.OwningResourceID() == resourceID {
				out = append(out, bundle)
			}
		}
	}
	return out
}

// cascadeDelete removes the sub-profiles attached to a resource, best-effort:
// each failure is logged and swallowed so a stray dependent record never
// wedges the parent operation.
func (s *Service) cascadeDelete(tx domain.Transaction, resourceID string, partitions ...domain.Partition) {
	for _, partition := range partitions {
		for _, dependent := range subProfiles(tx.Snapshot(), resourceID, partition) {
			if err := tx.Delete(dependent.Kind(), partition, dependent.Base().ID); err != nil {
				s.log.Warn().Err(err).
					Str("kind", string(dependent.Kind())).
					Str("id", dependent.Base().ID).
					Str("partition", string(partition)).
					Msg("cascade delete dependent record")
			}
		}
	}
}

// Publish duplicates a draft bundle into the public partition under the same
// id. The copy is marked published, its alternative identifiers are merged
// with any prior public copy (system-minted entries survive, caller-supplied
// ones follow the draft), and a persistent identifier is minted and
// registered externally before the copy is committed. The public snapshot is
// archived best-effort after commit.
func (s *Service) Publish(ctx context.Context, kind domain.ResourceKind, id string, actor domain.Actor) (domain.AnyBundle, Result, error) {
	ctx, finish := s.instrument(ctx, "publish")
	var published domain.AnyBundle
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		draft, ok := tx.Resolve(kind, domain.PartitionDraft, id)
		if !ok {
			return domain.NotFoundError{Kind: kind, ID: id}
		}
		base := draft.Base()
		if base.Suspended {
			return domain.ValidationError{Field: "suspended", Message: "suspended records cannot be published"}
		}
		if !base.Active || base.Status != domain.ApprovedStatus(kind) {
			return domain.ValidationError{Field: "status", Message: "only approved active records can be published"}
		}
		if err := RestrictPrefixRepetition(id, draft.Unwrap().GetCatalogueID()); err != nil {
			return err
		}

		publicCopy := draft.CloneBundle()
		publicCopy.Base().Metadata.Published = true
		payload := publicCopy.Unwrap()

		prior, hadPublic := tx.Resolve(kind, domain.PartitionPublic, id)
		var priorIDs []domain.AlternativeIdentifier
		if hadPublic {
			priorIDs = prior.Unwrap().GetAlternativeIdentifiers()
		}
		payload.SetAlternativeIdentifiers(MergeAlternativeIdentifiers(payload.GetAlternativeIdentifiers(), priorIDs))

		if err := s.MintPID(ctx, publicCopy); err != nil {
			return err
		}

		var err error
		if hadPublic {
			published, err = tx.Update(kind, domain.PartitionPublic, id, func(b domain.AnyBundle) error {
				*b.Base() = publicCopy.Base().CloneBase()
				return domain.ReplacePayload(b, payload.ClonePayload())
			})
		} else {
			published, err = tx.Create(domain.PartitionPublic, publicCopy)
		}
		return err
	})
	finish(err)
	if err == nil && published != nil {
		s.archivePublished(ctx, published)
	}
	return published, res, err
}

// Unpublish removes the public copy of a bundle and, for resources, the
// public copies of their dependent sub-profiles. The draft copy is untouched.
func (s *Service) Unpublish(ctx context.Context, kind domain.ResourceKind, id string, actor domain.Actor) (Result, error) {
	ctx, finish := s.instrument(ctx, "unpublish")
	var removed domain.AnyBundle
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		current, ok := tx.Resolve(kind, domain.PartitionPublic, id)
		if !ok {
			return domain.NotFoundError{Kind: kind, ID: id}
		}
		removed = current
		if err := tx.Delete(kind, domain.PartitionPublic, id); err != nil {
			return err
		}
		s.cascadeDelete(tx, id, domain.PartitionPublic)
		return nil
	})
	finish(err)
	if err == nil && removed != nil {
		s.removeArchived(ctx, removed)
	}
	return res, err
}

// Delete removes a draft bundle and its dependent sub-profiles. Records still
// under onboarding review or still published are refused; unpublish first.
func (s *Service) Delete(ctx context.Context, kind domain.ResourceKind, id string, actor domain.Actor) (Result, error) {
	ctx, finish := s.instrument(ctx, "delete")
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		current, ok := tx.Resolve(kind, domain.PartitionDraft, id)
		if !ok {
			return domain.NotFoundError{Kind: kind, ID: id}
		}
		if s.vocab != nil && s.vocab.IsPendingStatus(kind, current.Base().Status) {
			return domain.ValidationError{Field: "status", Message: "records under review cannot be deleted"}
		}
		if tx.Snapshot().Exists(kind, domain.PartitionPublic, id) {
			return domain.ValidationError{Field: "id", Message: "published records must be unpublished before deletion"}
		}
		if err := tx.Delete(kind, domain.PartitionDraft, id); err != nil {
			return err
		}
		s.cascadeDelete(tx, id, domain.PartitionDraft, domain.PartitionPublic)
		return nil
	})
	finish(err)
	return res, err
}
