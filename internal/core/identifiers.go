package core

import (
	"context"
	"crypto/md5" //nolint:gosec // identifier derivation, not a security boundary
	"encoding/hex"
	"fmt"
	"strings"

	"catalogcore/pkg/domain"
)

// DerivePID returns the persistent identifier for a resource id: the first
// eight hex characters of its MD5 digest. Deterministic, so re-publishing the
// same id always yields the same PID.
func DerivePID(id string) string {
	sum := md5.Sum([]byte(id)) //nolint:gosec
	return hex.EncodeToString(sum[:])[:8]
}

// ValidateAlternativeIdentifiers rejects caller-supplied identifiers that
// spoof the system-minted family. Any type containing "eosc" is reserved,
// case-insensitively.
func ValidateAlternativeIdentifiers(ids []domain.AlternativeIdentifier) error {
	for _, alt := range ids {
		if strings.Contains(strings.ToLower(alt.Type), "eosc") {
			return domain.ValidationError{
				Field:   "alternative_identifiers",
				Message: fmt.Sprintf("identifier type %q is reserved for system-minted identifiers", alt.Type),
			}
		}
	}
	return nil
}

// MergeAlternativeIdentifiers unions the incoming identifiers with the ones
// already on a public copy. Only system-minted entries are carried over from
// the public side; duplicates are dropped, first occurrence wins.
func MergeAlternativeIdentifiers(lower, public []domain.AlternativeIdentifier) []domain.AlternativeIdentifier {
	seen := make(map[domain.AlternativeIdentifier]struct{}, len(lower)+len(public))
	out := make([]domain.AlternativeIdentifier, 0, len(lower)+len(public))
	add := func(alt domain.AlternativeIdentifier) {
		if _, ok := seen[alt]; ok {
			return
		}
		seen[alt] = struct{}{}
		out = append(out, alt)
	}
	for _, alt := range lower {
		add(alt)
	}
	for _, alt := range public {
		if alt.Type != domain.PIDType {
			continue
		}
		add(alt)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// HasPID reports whether the identifier set already carries a system-minted
// entry.
func HasPID(ids []domain.AlternativeIdentifier) bool {
	for _, alt := range ids {
		if alt.Type == domain.PIDType {
			return true
		}
	}
	return false
}

// PIDRegistrar registers a minted identifier with the external handle
// service. Implementations live under internal/pid.
type PIDRegistrar interface {
	Register(ctx context.Context, pid, resourceTypePath, resourceID string) error
}

// resourceTypePath maps a kind to the path segment used in resolver URLs.
func resourceTypePath(kind domain.ResourceKind) string {
	switch kind {
	case domain.KindCatalogue:
		return "catalogues"
	case domain.KindProvider:
		return "providers"
	case domain.KindService:
		return "services"
	case domain.KindTool:
		return "tools"
	case domain.KindTrainingResource:
		return "trainings"
	case domain.KindInteroperabilityRecord:
		return "guidelines"
	default:
		return string(kind) + "s"
	}
}

// MintPID derives and registers the identifier for a published bundle, then
// attaches it to the payload. The identifier is committed only after external
// registration succeeds, so a registration failure leaves the bundle without
// a dangling half-registered entry. No-op when the bundle is not published or
// already carries an identifier.
func (s *Service) MintPID(ctx context.Context, bundle domain.AnyBundle) error {
	base := bundle.Base()
	if !base.Metadata.Published {
		return nil
	}
	payload := bundle.Unwrap()
	ids := payload.GetAlternativeIdentifiers()
	if HasPID(ids) {
		return nil
	}
	pid := DerivePID(base.ID)
	if s.registrar != nil {
		if err := s.registrar.Register(ctx, pid, resourceTypePath(bundle.Kind()), base.ID); err != nil {
			return domain.ExternalServiceError{Op: "register pid " + pid, Err: err}
		}
	}
	payload.SetAlternativeIdentifiers(append(ids, domain.AlternativeIdentifier{Type: domain.PIDType, Value: pid}))
	s.log.Debug().Str("kind", string(bundle.Kind())).Str("id", base.ID).Str("pid", pid).Msg("minted persistent identifier")
	return nil
}
