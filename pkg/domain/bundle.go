package domain

import "fmt"

// BundleBase contains the lifecycle state shared by every bundle kind.
// LoggingInfo is append-only; the Latest* pointers and AuditState are caches
// over it and are recomputed whenever an entry is appended.
type BundleBase struct {
	ID                   string        `json:"id"`
	Active               bool          `json:"active"`
	Suspended            bool          `json:"suspended"`
	Status               string        `json:"status,omitempty"`
	Metadata             Metadata      `json:"metadata"`
	LoggingInfo          []LoggingInfo `json:"logging_info,omitempty"`
	LatestOnboardingInfo *LoggingInfo  `json:"latest_onboarding_info,omitempty"`
	LatestUpdateInfo     *LoggingInfo  `json:"latest_update_info,omitempty"`
	LatestAuditInfo      *LoggingInfo  `json:"latest_audit_info,omitempty"`
	AuditState           AuditState    `json:"audit_state,omitempty"`
}

func cloneLoggingInfoPtr(in *LoggingInfo) *LoggingInfo {
	if in == nil {
		return nil
	}
	cp := *in
	return &cp
}

// CloneBase deep-copies the base, including the ledger slice and caches.
func (b BundleBase) CloneBase() BundleBase {
	cp := b
	cp.LoggingInfo = append([]LoggingInfo(nil), b.LoggingInfo...)
	cp.LatestOnboardingInfo = cloneLoggingInfoPtr(b.LatestOnboardingInfo)
	cp.LatestUpdateInfo = cloneLoggingInfoPtr(b.LatestUpdateInfo)
	cp.LatestAuditInfo = cloneLoggingInfoPtr(b.LatestAuditInfo)
	return cp
}

// AnyBundle is the kind-erased bundle handle stored and transacted by the
// registry. Concrete values are always *Bundle[T].
type AnyBundle interface {
	Base() *BundleBase
	Kind() ResourceKind
	Unwrap() Payload
	CloneBundle() AnyBundle
}

// Bundle pairs lifecycle state with a typed payload.
type Bundle[T Payload] struct {
	BundleBase
	Payload T `json:"payload"`
}

// NewBundle wraps a payload in a fresh bundle carrying the payload's id.
func NewBundle[T Payload](payload T) *Bundle[T] {
	return &Bundle[T]{
		BundleBase: BundleBase{ID: payload.GetID()},
		Payload:    payload,
	}
}

func (b *Bundle[T]) Base() *BundleBase { return &b.BundleBase }

func (b *Bundle[T]) Kind() ResourceKind { return b.Payload.Kind() }

func (b *Bundle[T]) Unwrap() Payload { return b.Payload }

// CloneBundle deep-copies the bundle; mutations on the clone never reach the
// original.
func (b *Bundle[T]) CloneBundle() AnyBundle {
	cp := &Bundle[T]{
		BundleBase: b.BundleBase.CloneBase(),
		Payload:    b.Payload.ClonePayload().(T),
	}
	return cp
}

// Wrap boxes a payload of any supported kind into a fresh bundle. It is the
// kind-erased counterpart of NewBundle for callers holding the interface.
func Wrap(payload Payload) AnyBundle {
	switch p := payload.(type) {
	case *Catalogue:
		return NewBundle(p)
	case *Provider:
		return NewBundle(p)
	case *Service:
		return NewBundle(p)
	case *Tool:
		return NewBundle(p)
	case *TrainingResource:
		return NewBundle(p)
	case *Datasource:
		return NewBundle(p)
	case *InteroperabilityRecord:
		return NewBundle(p)
	case *ResourceInteroperabilityRecord:
		return NewBundle(p)
	case *Helpdesk:
		return NewBundle(p)
	case *Monitoring:
		return NewBundle(p)
	default:
		panic(fmt.Sprintf("unsupported payload kind %q", payload.Kind()))
	}
}

// ReplacePayload swaps the payload of a bundle in place. The payload must
// match the bundle's kind.
func ReplacePayload(b AnyBundle, p Payload) error {
	if b.Kind() != p.Kind() {
		return fmt.Errorf("cannot replace %s payload with %s", b.Kind(), p.Kind())
	}
	switch bundle := b.(type) {
	case *Bundle[*Catalogue]:
		bundle.Payload = p.(*Catalogue)
	case *Bundle[*Provider]:
		bundle.Payload = p.(*Provider)
	case *Bundle[*Service]:
		bundle.Payload = p.(*Service)
	case *Bundle[*Tool]:
		bundle.Payload = p.(*Tool)
	case *Bundle[*TrainingResource]:
		bundle.Payload = p.(*TrainingResource)
	case *Bundle[*Datasource]:
		bundle.Payload = p.(*Datasource)
	case *Bundle[*InteroperabilityRecord]:
		bundle.Payload = p.(*InteroperabilityRecord)
	case *Bundle[*ResourceInteroperabilityRecord]:
		bundle.Payload = p.(*ResourceInteroperabilityRecord)
	case *Bundle[*Helpdesk]:
		bundle.Payload = p.(*Helpdesk)
	case *Bundle[*Monitoring]:
		bundle.Payload = p.(*Monitoring)
	default:
		return fmt.Errorf("unsupported bundle type for kind %s", b.Kind())
	}
	return nil
}

// Typed bundle aliases for the closed kind set.
type (
	CatalogueBundle                      = Bundle[*Catalogue]
	ProviderBundle                       = Bundle[*Provider]
	ServiceBundle                        = Bundle[*Service]
	ToolBundle                           = Bundle[*Tool]
	TrainingResourceBundle               = Bundle[*TrainingResource]
	DatasourceBundle                     = Bundle[*Datasource]
	InteroperabilityRecordBundle         = Bundle[*InteroperabilityRecord]
	ResourceInteroperabilityRecordBundle = Bundle[*ResourceInteroperabilityRecord]
	HelpdeskBundle                       = Bundle[*Helpdesk]
	MonitoringBundle                     = Bundle[*Monitoring]
)
