// Package core implements the resource lifecycle engine of the registry:
// ledger maintenance, audit-state derivation, suspension, cross-catalogue
// consistency, identifier minting, and the publication coordinator. It talks
// to persistence exclusively through the domain contracts and carries no
// dependency on any infra package.
package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"catalogcore/pkg/domain"
)

type (
	// Result is an alias of domain.Result.
	Result = domain.Result
	// RulesEngine is an alias of domain.RulesEngine.
	RulesEngine = domain.RulesEngine
)

// NewRulesEngine constructs a rules engine pre-loaded with the registry's
// commit-time rules.
func NewRulesEngine() *RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(CatalogueAgreementRule())
	engine.Register(LedgerIntegrityRule())
	engine.Register(PublicIDPrefixRule())
	return engine
}

// Service exposes the registry lifecycle operations over a persistent store.
type Service struct {
	store     domain.PersistentStore
	registrar PIDRegistrar
	archiver  SnapshotArchiver
	vocab     *VocabularyRegistry
	metrics   MetricsRecorder
	tracer    Tracer
	log       zerolog.Logger
	nowFn     func() time.Time
}

// Option configures optional service collaborators.
type Option func(*Service)

// WithPIDRegistrar wires the external identifier registration client.
func WithPIDRegistrar(registrar PIDRegistrar) Option {
	return func(s *Service) { s.registrar = registrar }
}

// WithSnapshotArchiver wires the blob archive written on publication.
func WithSnapshotArchiver(archiver SnapshotArchiver) Option {
	return func(s *Service) { s.archiver = archiver }
}

// WithVocabulary overrides the controlled-vocabulary registry.
func WithVocabulary(vocab *VocabularyRegistry) Option {
	return func(s *Service) {
		if vocab != nil {
			s.vocab = vocab
		}
	}
}

// WithMetricsRecorder wires an operation metrics sink.
func WithMetricsRecorder(metrics MetricsRecorder) Option {
	return func(s *Service) { s.metrics = metrics }
}

// WithTracer wires an operation tracer.
func WithTracer(tracer Tracer) Option {
	return func(s *Service) { s.tracer = tracer }
}

// WithLogger overrides the structured logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// NewService constructs a service backed by the supplied store.
func NewService(store domain.PersistentStore, opts ...Option) *Service {
	s := &Service{
		store: store,
		vocab: NewVocabularyRegistry(),
		log:   zerolog.Nop(),
		nowFn: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying storage implementation.
func (s *Service) Store() domain.PersistentStore {
	return s.store
}

// Vocabulary returns the controlled-vocabulary registry in use.
func (s *Service) Vocabulary() *VocabularyRegistry {
	return s.vocab
}

func (s *Service) now() time.Time {
	return s.nowFn()
}

// Register onboards a payload as a draft bundle with a pending status and a
// fresh ledger. Non-catalogue payloads must name an existing catalogue.
func (s *Service) Register(ctx context.Context, payload domain.Payload, actor domain.Actor) (domain.AnyBundle, Result, error) {
	ctx, finish := s.instrument(ctx, "register")
	var created domain.AnyBundle
	res, err := func() (Result, error) {
		if err := ValidateAlternativeIdentifiers(payload.GetAlternativeIdentifiers()); err != nil {
			return Result{}, err
		}
		if err := RestrictPrefixRepetition(payload.GetID(), payload.GetCatalogueID()); err != nil {
			return Result{}, err
		}
		kind := payload.Kind()
		return s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			if kind != domain.KindCatalogue {
				if err := CheckCatalogueIDConsistency(payload, payload.GetCatalogueID(), tx.Snapshot()); err != nil {
					return err
				}
			}
			if err := s.CheckRelatedResourceIDs(payload, tx.Snapshot()); err != nil {
				return err
			}
			bundle := domain.Wrap(payload.ClonePayload())
			base := bundle.Base()
			base.Status = domain.PendingStatus(kind)
			base.Active = false
			base.Metadata.RegisteredBy = actor.Email
			base.Metadata.ModifiedBy = actor.Email
			EnsureLoggingInfo(base, actor, s.now())
			var err error
			created, err = tx.Create(domain.PartitionDraft, bundle)
			return err
		})
	}()
	finish(err)
	return created, res, err
}

// Update replaces the payload of a draft bundle and records the update in its
// ledger. Suspended bundles reject updates until unsuspended.
func (s *Service) Update(ctx context.Context, kind domain.ResourceKind, id string, payload domain.Payload, actor domain.Actor) (domain.AnyBundle, Result, error) {
	ctx, finish := s.instrument(ctx, "update")
	var updated domain.AnyBundle
	res, err := func() (Result, error) {
		if err := ValidateAlternativeIdentifiers(payload.GetAlternativeIdentifiers()); err != nil {
			return Result{}, err
		}
		return s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			current, ok := tx.Resolve(kind, domain.PartitionDraft, id)
			if !ok {
				return domain.NotFoundError{Kind: kind, ID: id}
			}
			if current.Base().Suspended {
				return domain.ValidationError{Field: "suspended", Message: "suspended records cannot be updated"}
			}
			if err := CheckCatalogueIDConsistency(payload, current.Unwrap().GetCatalogueID(), tx.Snapshot()); err != nil {
				return err
			}
			if err := s.CheckRelatedResourceIDs(payload, tx.Snapshot()); err != nil {
				return err
			}
			var err error
			updated, err = tx.Update(kind, domain.PartitionDraft, id, func(b domain.AnyBundle) error {
				next := payload.ClonePayload()
				if err := domain.ReplacePayload(b, next); err != nil {
					return err
				}
				b.Base().Metadata.ModifiedBy = actor.Email
				AppendLoggingInfo(b.Base(), NewLoggingInfo(domain.TypeUpdate, domain.ActionUpdated, actor, "", s.now()))
				return nil
			})
			return err
		})
	}()
	finish(err)
	return updated, res, err
}

// Verify records the onboarding decision for a pending draft bundle. Approval
// activates the record; rejection leaves it inactive.
func (s *Service) Verify(ctx context.Context, kind domain.ResourceKind, id string, approved bool, actor domain.Actor) (domain.AnyBundle, Result, error) {
	ctx, finish := s.instrument(ctx, "verify")
	var updated domain.AnyBundle
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		updated, err = tx.Update(kind, domain.PartitionDraft, id, func(b domain.AnyBundle) error {
			base := b.Base()
			action := domain.ActionApproved
			base.Status = domain.ApprovedStatus(kind)
			base.Active = true
			if !approved {
				action = domain.ActionRejected
				base.Status = domain.RejectedStatus(kind)
				base.Active = false
			}
			AppendLoggingInfo(base, NewLoggingInfo(domain.TypeOnboard, action, actor, "", s.now()))
			return nil
		})
		return err
	})
	finish(err)
	return updated, res, err
}

// SetActive toggles a draft bundle's active flag and records the transition.
func (s *Service) SetActive(ctx context.Context, kind domain.ResourceKind, id string, active bool, actor domain.Actor) (domain.AnyBundle, Result, error) {
	ctx, finish := s.instrument(ctx, "set_active")
	var updated domain.AnyBundle
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		updated, err = tx.Update(kind, domain.PartitionDraft, id, func(b domain.AnyBundle) error {
			base := b.Base()
			if base.Suspended {
				return domain.ValidationError{Field: "suspended", Message: "suspended records cannot change activation"}
			}
			action := domain.ActionActivated
			if !active {
				action = domain.ActionDeactivated
			}
			base.Active = active
			AppendLoggingInfo(base, NewLoggingInfo(domain.TypeUpdate, action, actor, "", s.now()))
			return nil
		})
		return err
	})
	finish(err)
	return updated, res, err
}

// AuditBundle records an audit finding against a draft bundle. The derived
// audit state follows from the ledger, never from direct assignment.
func (s *Service) AuditBundle(ctx context.Context, kind domain.ResourceKind, id string, valid bool, comment string, actor domain.Actor) (domain.AnyBundle, Result, error) {
	ctx, finish := s.instrument(ctx, "audit")
	var updated domain.AnyBundle
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		updated, err = tx.Update(kind, domain.PartitionDraft, id, func(b domain.AnyBundle) error {
			action := domain.ActionInvalid
			if valid {
				action = domain.ActionValid
			}
			AppendLoggingInfo(b.Base(), NewLoggingInfo(domain.TypeAudit, action, actor, comment, s.now()))
			return nil
		})
		return err
	})
	finish(err)
	return updated, res, err
}

// Get retrieves a bundle from committed state.
func (s *Service) Get(kind domain.ResourceKind, partition domain.Partition, id string) (domain.AnyBundle, bool) {
	return s.store.Get(kind, partition, id)
}

// List returns all bundles of a kind within a partition.
func (s *Service) List(kind domain.ResourceKind, partition domain.Partition) []domain.AnyBundle {
	return s.store.List(kind, partition)
}
