// Package memory provides the in-memory transactional registry store used for
// tests, ephemeral environments, and as the engine underneath the durable
// snapshot backends.
package memory

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"
	"time"

	"catalogcore/pkg/domain"
)

// Compile-time contract assertion.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// Change is an alias of domain.Change.
	Change = domain.Change
	// Result is an alias of domain.Result.
	Result = domain.Result
	// RulesEngine is an alias of domain.RulesEngine.
	RulesEngine = domain.RulesEngine
	// Transaction is an alias of domain.Transaction.
	Transaction = domain.Transaction
	// TransactionView is an alias of domain.TransactionView.
	TransactionView = domain.TransactionView
)

// state is keyed kind -> partition -> bundle id. Bundles are always cloned on
// the way in and out, so snapshots never alias committed state.
type state map[domain.ResourceKind]map[domain.Partition]map[string]domain.AnyBundle

func newState() state {
	st := make(state, len(domain.Kinds()))
	for _, kind := range domain.Kinds() {
		st[kind] = map[domain.Partition]map[string]domain.AnyBundle{
			domain.PartitionDraft:  {},
			domain.PartitionPublic: {},
		}
	}
	return st
}

func (s state) clone() state {
	cloned := newState()
	for kind, partitions := range s {
		for partition, bundles := range partitions {
			for id, bundle := range bundles {
				cloned[kind][partition][id] = bundle.CloneBundle()
			}
		}
	}
	return cloned
}

func (s state) bucket(kind domain.ResourceKind, partition domain.Partition) map[string]domain.AnyBundle {
	partitions, ok := s[kind]
	if !ok {
		return nil
	}
	return partitions[partition]
}

// Partitioned groups one kind's bundles by storage partition for snapshot
// encoding.
type Partitioned[T domain.Payload] struct {
	Draft  map[string]*domain.Bundle[T] `json:"draft,omitempty"`
	Public map[string]*domain.Bundle[T] `json:"public,omitempty"`
}

// Snapshot captures a point-in-time clone of the full store state as typed
// buckets. Durable backends encode it bucket by bucket.
type Snapshot struct {
	Catalogues                      Partitioned[*domain.Catalogue]                      `json:"catalogues"`
	Providers                       Partitioned[*domain.Provider]                       `json:"providers"`
	Services                        Partitioned[*domain.Service]                        `json:"services"`
	Tools                           Partitioned[*domain.Tool]                           `json:"tools"`
	TrainingResources               Partitioned[*domain.TrainingResource]               `json:"training_resources"`
	Datasources                     Partitioned[*domain.Datasource]                     `json:"datasources"`
	InteroperabilityRecords         Partitioned[*domain.InteroperabilityRecord]         `json:"interoperability_records"`
	ResourceInteroperabilityRecords Partitioned[*domain.ResourceInteroperabilityRecord] `json:"resource_interoperability_records"`
	Helpdesks                       Partitioned[*domain.Helpdesk]                       `json:"helpdesks"`
	Monitorings                     Partitioned[*domain.Monitoring]                     `json:"monitorings"`
}

func collect[T domain.Payload](st state, kind domain.ResourceKind) Partitioned[T] {
	out := Partitioned[T]{
		Draft:  map[string]*domain.Bundle[T]{},
		Public: map[string]*domain.Bundle[T]{},
	}
	for partition, bundles := range st[kind] {
		for id, bundle := range bundles {
			typed, ok := bundle.CloneBundle().(*domain.Bundle[T])
			if !ok {
				panic(fmt.Errorf("memory: %s bundle %q has unexpected payload type", kind, id))
			}
			switch partition {
			case domain.PartitionDraft:
				out.Draft[id] = typed
			case domain.PartitionPublic:
				out.Public[id] = typed
			}
		}
	}
	return out
}

func restore[T domain.Payload](st state, kind domain.ResourceKind, bucket Partitioned[T]) {
	for id, bundle := range bucket.Draft {
		if bundle == nil {
			continue
		}
		st[kind][domain.PartitionDraft][id] = bundle.CloneBundle()
	}
	for id, bundle := range bucket.Public {
		if bundle == nil {
			continue
		}
		st[kind][domain.PartitionPublic][id] = bundle.CloneBundle()
	}
}

func snapshotFromState(st state) Snapshot {
	return Snapshot{
		Catalogues:                      collect[*domain.Catalogue](st, domain.KindCatalogue),
		Providers:                       collect[*domain.Provider](st, domain.KindProvider),
		Services:                        collect[*domain.Service](st, domain.KindService),
		Tools:                           collect[*domain.Tool](st, domain.KindTool),
		TrainingResources:               collect[*domain.TrainingResource](st, domain.KindTrainingResource),
		Datasources:                     collect[*domain.Datasource](st, domain.KindDatasource),
		InteroperabilityRecords:         collect[*domain.InteroperabilityRecord](st, domain.KindInteroperabilityRecord),
		ResourceInteroperabilityRecords: collect[*domain.ResourceInteroperabilityRecord](st, domain.KindResourceInteroperabilityRecord),
		Helpdesks:                       collect[*domain.Helpdesk](st, domain.KindHelpdesk),
		Monitorings:                     collect[*domain.Monitoring](st, domain.KindMonitoring),
	}
}

func stateFromSnapshot(snapshot Snapshot) state {
	st := newState()
	restore(st, domain.KindCatalogue, snapshot.Catalogues)
	restore(st, domain.KindProvider, snapshot.Providers)
	restore(st, domain.KindService, snapshot.Services)
	restore(st, domain.KindTool, snapshot.Tools)
	restore(st, domain.KindTrainingResource, snapshot.TrainingResources)
	restore(st, domain.KindDatasource, snapshot.Datasources)
	restore(st, domain.KindInteroperabilityRecord, snapshot.InteroperabilityRecords)
	restore(st, domain.KindResourceInteroperabilityRecord, snapshot.ResourceInteroperabilityRecords)
	restore(st, domain.KindHelpdesk, snapshot.Helpdesks)
	restore(st, domain.KindMonitoring, snapshot.Monitorings)
	return st
}

// Store provides an in-memory transactional store for registry bundles.
type Store struct {
	mu     sync.RWMutex
	state  state
	engine *RulesEngine
	nowFn  func() time.Time
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) newID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b[:])
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromState(s.state)
}

// ImportState replaces the store state with the provided snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = stateFromSnapshot(snapshot)
}

// RulesEngine exposes the currently configured engine.
func (s *Store) RulesEngine() *RulesEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// NowFunc returns the time provider used by the store.
func (s *Store) NowFunc() func() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nowFn
}

// SetNowFunc overrides the time provider. Test hook.
func (s *Store) SetNowFunc(fn func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn != nil {
		s.nowFn = fn
	}
}

type transaction struct {
	store   *Store
	state   state
	changes []Change
	now     time.Time
}

type transactionView struct {
	state *state
}

func newTransactionView(st *state) TransactionView {
	return transactionView{state: st}
}

// Resolve retrieves a bundle by kind/partition/id from the snapshot.
func (v transactionView) Resolve(kind domain.ResourceKind, partition domain.Partition, id string) (domain.AnyBundle, bool) {
	bundle, ok := (*v.state).bucket(kind, partition)[id]
	if !ok {
		return nil, false
	}
	return bundle.CloneBundle(), true
}

// List returns all bundles of a kind within a partition, ordered by id.
func (v transactionView) List(kind domain.ResourceKind, partition domain.Partition) []domain.AnyBundle {
	bucket := (*v.state).bucket(kind, partition)
	out := make([]domain.AnyBundle, 0, len(bucket))
	for _, bundle := range bucket {
		out = append(out, bundle.CloneBundle())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Base().ID < out[j].Base().ID })
	return out
}

// Exists reports whether the kind/partition holds the id.
func (v transactionView) Exists(kind domain.ResourceKind, partition domain.Partition, id string) bool {
	_, ok := (*v.state).bucket(kind, partition)[id]
	return ok
}

// RunInTransaction executes fn within a transactional copy of the store state.
// Registered rules are evaluated against the mutated copy before commit;
// blocking violations abort with RuleViolationError and leave committed state
// untouched.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		store: s,
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		view := newTransactionView(&tx.state)
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	view := newTransactionView(&snapshot)
	return fn(view)
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// Snapshot returns a read-only view over the transactional state.
func (tx *transaction) Snapshot() TransactionView {
	return newTransactionView(&tx.state)
}

// Resolve exposes bundle lookup within the transaction scope.
func (tx *transaction) Resolve(kind domain.ResourceKind, partition domain.Partition, id string) (domain.AnyBundle, bool) {
	bundle, ok := tx.state.bucket(kind, partition)[id]
	if !ok {
		return nil, false
	}
	return bundle.CloneBundle(), true
}

// Create stores a new bundle within the transaction.
func (tx *transaction) Create(partition domain.Partition, bundle domain.AnyBundle) (domain.AnyBundle, error) {
	kind := bundle.Kind()
	bucket := tx.state.bucket(kind, partition)
	if bucket == nil {
		return nil, fmt.Errorf("unknown kind %q", kind)
	}
	stored := bundle.CloneBundle()
	base := stored.Base()
	if base.ID == "" {
		base.ID = tx.store.newID()
	}
	if _, exists := bucket[base.ID]; exists {
		return nil, fmt.Errorf("%s %q already exists in %s partition", kind, base.ID, partition)
	}
	if base.Metadata.RegisteredAt.IsZero() {
		base.Metadata.RegisteredAt = tx.now
	}
	base.Metadata.ModifiedAt = tx.now
	bucket[base.ID] = stored
	tx.recordChange(Change{Kind: kind, Action: domain.ActionCreate, Partition: partition, After: stored.CloneBundle()})
	return stored.CloneBundle(), nil
}

// Update mutates a bundle using the provided mutator function.
func (tx *transaction) Update(kind domain.ResourceKind, partition domain.Partition, id string, mutator func(domain.AnyBundle) error) (domain.AnyBundle, error) {
	bucket := tx.state.bucket(kind, partition)
	current, ok := bucket[id]
	if !ok {
		return nil, domain.NotFoundError{Kind: kind, ID: id}
	}
	before := current.CloneBundle()
	next := current.CloneBundle()
	if err := mutator(next); err != nil {
		return nil, err
	}
	base := next.Base()
	base.ID = id
	base.Metadata.ModifiedAt = tx.now
	bucket[id] = next
	tx.recordChange(Change{Kind: kind, Action: domain.ActionUpdate, Partition: partition, Before: before, After: next.CloneBundle()})
	return next.CloneBundle(), nil
}

// Delete removes a bundle from the transaction state.
func (tx *transaction) Delete(kind domain.ResourceKind, partition domain.Partition, id string) error {
	bucket := tx.state.bucket(kind, partition)
	current, ok := bucket[id]
	if !ok {
		return domain.NotFoundError{Kind: kind, ID: id}
	}
	delete(bucket, id)
	tx.recordChange(Change{Kind: kind, Action: domain.ActionDelete, Partition: partition, Before: current.CloneBundle()})
	return nil
}

// Read helpers ---------------------------------------------------------------

// Get retrieves a bundle by kind/partition/id from committed state.
func (s *Store) Get(kind domain.ResourceKind, partition domain.Partition, id string) (domain.AnyBundle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bundle, ok := s.state.bucket(kind, partition)[id]
	if !ok {
		return nil, false
	}
	return bundle.CloneBundle(), true
}

// List returns all bundles of a kind within a partition from committed state.
func (s *Store) List(kind domain.ResourceKind, partition domain.Partition) []domain.AnyBundle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bucket := s.state.bucket(kind, partition)
	out := make([]domain.AnyBundle, 0, len(bucket))
	for _, bundle := range bucket {
		out = append(out, bundle.CloneBundle())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Base().ID < out[j].Base().ID })
	return out
}
