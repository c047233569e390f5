package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"catalogcore/pkg/domain"
)

func draftProvider(id, catalogueID string) domain.AnyBundle {
	bundle := domain.Wrap(&domain.Provider{ID: id, Name: id, CatalogueID: catalogueID})
	bundle.Base().LoggingInfo = []domain.LoggingInfo{{
		Date: time.Now().UTC(), Type: domain.TypeOnboard, ActionType: domain.ActionRegistered,
	}}
	return bundle
}

func TestCreateAndGetRoundTrip(t *testing.T) {
	store := NewStore(nil)
	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		_, err := tx.Create(domain.PartitionDraft, draftProvider("prov", "cat"))
		return err
	})
	if err != nil {
		t.Fatalf("RunInTransaction: %v", err)
	}
	bundle, ok := store.Get(domain.KindProvider, domain.PartitionDraft, "prov")
	if !ok {
		t.Fatalf("bundle not committed")
	}
	if bundle.Base().Metadata.RegisteredAt.IsZero() || bundle.Base().Metadata.ModifiedAt.IsZero() {
		t.Fatalf("timestamps not stamped: %+v", bundle.Base().Metadata)
	}
	if _, ok := store.Get(domain.KindProvider, domain.PartitionPublic, "prov"); ok {
		t.Fatalf("create must not leak across partitions")
	}
}

func TestCreateGeneratesIDWhenEmpty(t *testing.T) {
	store := NewStore(nil)
	var created domain.AnyBundle
	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		var err error
		created, err = tx.Create(domain.PartitionDraft, domain.Wrap(&domain.Catalogue{Name: "anonymous"}))
		return err
	})
	if err != nil {
		t.Fatalf("RunInTransaction: %v", err)
	}
	if created.Base().ID == "" {
		t.Fatalf("expected generated id")
	}
}

func TestCreateDuplicateIDRejected(t *testing.T) {
	store := NewStore(nil)
	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		if _, err := tx.Create(domain.PartitionDraft, draftProvider("prov", "cat")); err != nil {
			return err
		}
		_, err := tx.Create(domain.PartitionDraft, draftProvider("prov", "cat"))
		return err
	})
	if err == nil {
		t.Fatalf("expected duplicate id rejection")
	}
}

func TestUpdatePreservesIDAndStampsModified(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	if _, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		_, err := tx.Create(domain.PartitionDraft, draftProvider("prov", "cat"))
		return err
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	later := time.Now().Add(time.Hour).UTC()
	store.SetNowFunc(func() time.Time { return later })
	if _, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		_, err := tx.Update(domain.KindProvider, domain.PartitionDraft, "prov", func(b domain.AnyBundle) error {
			b.Base().ID = "tampered"
			b.Base().Active = true
			return nil
		})
		return err
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	bundle, ok := store.Get(domain.KindProvider, domain.PartitionDraft, "prov")
	if !ok {
		t.Fatalf("id must be preserved against mutator tampering")
	}
	if !bundle.Base().Active {
		t.Fatalf("mutation lost")
	}
	if !bundle.Base().Metadata.ModifiedAt.Equal(later) {
		t.Fatalf("expected modified at %v, got %v", later, bundle.Base().Metadata.ModifiedAt)
	}
}

func TestUpdateUnknownIDFails(t *testing.T) {
	store := NewStore(nil)
	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		_, err := tx.Update(domain.KindProvider, domain.PartitionDraft, "ghost", func(domain.AnyBundle) error { return nil })
		return err
	})
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestFailedTransactionLeavesStateUntouched(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	boom := errors.New("boom")
	_, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		if _, err := tx.Create(domain.PartitionDraft, draftProvider("prov", "cat")); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected user error, got %v", err)
	}
	if _, ok := store.Get(domain.KindProvider, domain.PartitionDraft, "prov"); ok {
		t.Fatalf("aborted transaction must not commit")
	}
}

type blockEverything struct{}

func (blockEverything) Name() string { return "block_everything" }

func (blockEverything) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "block_everything",
			Severity: domain.SeverityBlock,
			Message:  "nothing may commit",
			Kind:     change.Kind,
		})
	}
	return res, nil
}

func TestBlockingRuleAbortsCommit(t *testing.T) {
	engine := domain.NewRulesEngine()
	engine.Register(blockEverything{})
	store := NewStore(engine)

	res, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		_, err := tx.Create(domain.PartitionDraft, draftProvider("prov", "cat"))
		return err
	})
	var violation domain.RuleViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("expected RuleViolationError, got %v", err)
	}
	if !res.HasBlocking() {
		t.Fatalf("expected blocking result")
	}
	if _, ok := store.Get(domain.KindProvider, domain.PartitionDraft, "prov"); ok {
		t.Fatalf("blocked transaction must not commit")
	}
}

func TestGetReturnsClone(t *testing.T) {
	store := NewStore(nil)
	if _, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		_, err := tx.Create(domain.PartitionDraft, draftProvider("prov", "cat"))
		return err
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	first, _ := store.Get(domain.KindProvider, domain.PartitionDraft, "prov")
	first.Base().Suspended = true
	second, _ := store.Get(domain.KindProvider, domain.PartitionDraft, "prov")
	if second.Base().Suspended {
		t.Fatalf("reads must not alias committed state")
	}
}

func TestListOrdersByID(t *testing.T) {
	store := NewStore(nil)
	if _, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		for _, id := range []string{"c", "a", "b"} {
			if _, err := tx.Create(domain.PartitionDraft, draftProvider(id, "cat")); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	bundles := store.List(domain.KindProvider, domain.PartitionDraft)
	if len(bundles) != 3 {
		t.Fatalf("expected 3 bundles, got %d", len(bundles))
	}
	for i, want := range []string{"a", "b", "c"} {
		if bundles[i].Base().ID != want {
			t.Fatalf("position %d: expected %q, got %q", i, want, bundles[i].Base().ID)
		}
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	store := NewStore(nil)
	if _, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		if _, err := tx.Create(domain.PartitionDraft, draftProvider("prov", "cat")); err != nil {
			return err
		}
		_, err := tx.Create(domain.PartitionPublic, draftProvider("prov", "cat"))
		return err
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	snapshot := store.ExportState()
	restored := NewStore(nil)
	restored.ImportState(snapshot)

	for _, partition := range []domain.Partition{domain.PartitionDraft, domain.PartitionPublic} {
		if _, ok := restored.Get(domain.KindProvider, partition, "prov"); !ok {
			t.Fatalf("missing provider in %s partition after import", partition)
		}
	}
}

func TestViewSeesCommittedState(t *testing.T) {
	store := NewStore(nil)
	if _, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		_, err := tx.Create(domain.PartitionDraft, draftProvider("prov", "cat"))
		return err
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	err := store.View(context.Background(), func(view TransactionView) error {
		if !view.Exists(domain.KindProvider, domain.PartitionDraft, "prov") {
			t.Fatalf("view must see committed state")
		}
		if got := len(view.List(domain.KindProvider, domain.PartitionDraft)); got != 1 {
			t.Fatalf("expected one provider, got %d", got)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View: %v", err)
	}
}
