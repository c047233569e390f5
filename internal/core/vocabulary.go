package core

import (
	"sync"

	"catalogcore/pkg/domain"
)

// Vocabulary is a controlled term keyed by its canonical id.
type Vocabulary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// VocabularyRegistry holds the controlled vocabularies consulted by lifecycle
// guards. Seeded with the onboarding status families for every kind.
type VocabularyRegistry struct {
	mu    sync.RWMutex
	terms map[string]Vocabulary
}

// NewVocabularyRegistry constructs a registry pre-seeded with the status
// vocabulary.
func NewVocabularyRegistry() *VocabularyRegistry {
	r := &VocabularyRegistry{terms: make(map[string]Vocabulary)}
	for _, kind := range domain.Kinds() {
		for _, status := range []string{
			domain.PendingStatus(kind),
			domain.ApprovedStatus(kind),
			domain.RejectedStatus(kind),
		} {
			r.Put(Vocabulary{ID: status, Name: status, Type: "status"})
		}
	}
	return r
}

// Put registers or replaces a term.
func (r *VocabularyRegistry) Put(term Vocabulary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.terms[term.ID] = term
}

// Get returns a term by id.
func (r *VocabularyRegistry) Get(id string) (Vocabulary, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	term, ok := r.terms[id]
	return term, ok
}

// IsPendingStatus reports whether the status marks a record still under
// onboarding review for the given kind.
func (r *VocabularyRegistry) IsPendingStatus(kind domain.ResourceKind, status string) bool {
	if status == "" {
		return false
	}
	if _, ok := r.Get(status); !ok {
		return false
	}
	return status == domain.PendingStatus(kind)
}
