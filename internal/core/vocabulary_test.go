package core

import (
	"testing"

	"catalogcore/pkg/domain"
)

func TestVocabularyRegistrySeedsStatusFamilies(t *testing.T) {
	reg := NewVocabularyRegistry()
	for _, kind := range domain.Kinds() {
		for _, status := range []string{
			domain.PendingStatus(kind),
			domain.ApprovedStatus(kind),
			domain.RejectedStatus(kind),
		} {
			if _, ok := reg.Get(status); !ok {
				t.Fatalf("missing seeded status %q", status)
			}
		}
	}
}

func TestIsPendingStatus(t *testing.T) {
	reg := NewVocabularyRegistry()
	if !reg.IsPendingStatus(domain.KindProvider, domain.PendingStatus(domain.KindProvider)) {
		t.Fatalf("pending provider status must be pending")
	}
	if reg.IsPendingStatus(domain.KindProvider, domain.ApprovedStatus(domain.KindProvider)) {
		t.Fatalf("approved status is not pending")
	}
	if reg.IsPendingStatus(domain.KindProvider, "") {
		t.Fatalf("empty status is not pending")
	}
	if reg.IsPendingStatus(domain.KindProvider, "unknown status") {
		t.Fatalf("unknown terms are not pending")
	}
}

func TestPutOverridesTerm(t *testing.T) {
	reg := NewVocabularyRegistry()
	reg.Put(Vocabulary{ID: "access-mode-free", Name: "Free", Type: "access mode"})
	term, ok := reg.Get("access-mode-free")
	if !ok || term.Type != "access mode" {
		t.Fatalf("custom term not stored: %+v", term)
	}
}
