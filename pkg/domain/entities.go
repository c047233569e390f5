// Package domain defines the persistent bundle model, ledger value types, and
// rule evaluation primitives used by catalogcore.
package domain

// ResourceKind identifies the type of bundle stored in the registry.
type ResourceKind string

// Supported bundle kinds. The set is closed: every kind has exactly one
// payload type and the engine dispatches through the Payload interface
// rather than per-call type switches.
const (
	// KindCatalogue identifies a catalogue record, the root of the hierarchy.
	KindCatalogue ResourceKind = "catalogue"
	// KindProvider identifies a provider record owned by a catalogue.
	KindProvider ResourceKind = "provider"
	// KindService identifies a service resource owned by a provider.
	KindService ResourceKind = "service"
	// KindTool identifies a tool resource owned by a provider.
	KindTool ResourceKind = "tool"
	// KindTrainingResource identifies a training resource.
	KindTrainingResource ResourceKind = "training_resource"
	// KindDatasource identifies the datasource sub-profile of a service.
	KindDatasource ResourceKind = "datasource"
	// KindInteroperabilityRecord identifies an interoperability guideline record.
	KindInteroperabilityRecord ResourceKind = "interoperability_record"
	// KindResourceInteroperabilityRecord links a resource to guideline records.
	KindResourceInteroperabilityRecord ResourceKind = "resource_interoperability_record"
	// KindHelpdesk identifies the helpdesk sub-profile of a service.
	KindHelpdesk ResourceKind = "helpdesk"
	// KindMonitoring identifies the monitoring sub-profile of a service.
	KindMonitoring ResourceKind = "monitoring"
)

// Kinds returns every supported bundle kind in stable order.
func Kinds() []ResourceKind {
	return []ResourceKind{
		KindCatalogue,
		KindProvider,
		KindService,
		KindTool,
		KindTrainingResource,
		KindDatasource,
		KindInteroperabilityRecord,
		KindResourceInteroperabilityRecord,
		KindHelpdesk,
		KindMonitoring,
	}
}

// SubProfileKinds lists the dependent sub-profile kinds deleted alongside
// their owning resource.
func SubProfileKinds() []ResourceKind {
	return []ResourceKind{
		KindDatasource,
		KindHelpdesk,
		KindMonitoring,
		KindResourceInteroperabilityRecord,
	}
}

// Partition separates the editable draft projection from the published one.
type Partition string

// Storage partitions. Draft and public bundles share ids.
const (
	PartitionDraft  Partition = "draft"
	PartitionPublic Partition = "public"
)

// statusFamily maps a kind to the noun used in its status vocabulary.
func statusFamily(kind ResourceKind) string {
	switch kind {
	case KindCatalogue:
		return "catalogue"
	case KindProvider:
		return "provider"
	case KindInteroperabilityRecord:
		return "interoperability record"
	default:
		return "resource"
	}
}

// PendingStatus returns the onboarding status for a freshly registered kind.
func PendingStatus(kind ResourceKind) string { return "pending " + statusFamily(kind) }

// ApprovedStatus returns the status of a kind that passed onboarding.
func ApprovedStatus(kind ResourceKind) string { return "approved " + statusFamily(kind) }

// RejectedStatus returns the status of a kind that failed onboarding.
func RejectedStatus(kind ResourceKind) string { return "rejected " + statusFamily(kind) }

// ReferenceList names one of a payload's outgoing reference fields, the ids it
// holds, and the kinds each id may resolve to (tried in order).
type ReferenceList struct {
	Field string
	IDs   []string
	Kinds []ResourceKind
}

// Payload is the closed variant set of domain entities wrapped by bundles.
// It exposes uniform accessors so lifecycle logic never switches on the
// concrete type.
type Payload interface {
	Kind() ResourceKind
	GetID() string
	// GetCatalogueID returns the declared owning catalogue; for a catalogue
	// payload it is the catalogue's own id.
	GetCatalogueID() string
	// GetProviderID returns the directly declared owning provider, or empty
	// when ownership is indirect (sub-profiles) or absent (catalogues,
	// providers).
	GetProviderID() string
	GetAlternativeIdentifiers() []AlternativeIdentifier
	SetAlternativeIdentifiers([]AlternativeIdentifier)
	// ReferenceLists enumerates outgoing resource references subject to
	// cross-catalogue validation. Nil when the payload declares none.
	ReferenceLists() []ReferenceList
	ClonePayload() Payload
}

// ServiceOwned is implemented by sub-profile payloads whose owning provider
// is reached through a service or resource id.
type ServiceOwned interface {
	OwningResourceID() string
}

// Catalogue is the root aggregation level of the registry.
type Catalogue struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Website string `json:"website,omitempty"`
}

func (c *Catalogue) Kind() ResourceKind { return KindCatalogue }

func (c *Catalogue) GetID() string { return c.ID }

func (c *Catalogue) GetCatalogueID() string { return c.ID }

func (c *Catalogue) GetProviderID() string { return "" }

func (c *Catalogue) GetAlternativeIdentifiers() []AlternativeIdentifier { return nil }

func (c *Catalogue) SetAlternativeIdentifiers([]AlternativeIdentifier) {}

func (c *Catalogue) ReferenceLists() []ReferenceList { return nil }

func (c *Catalogue) ClonePayload() Payload {
	cp := *c
	return &cp
}

// Provider is an organisation offering resources within a catalogue.
type Provider struct {
	ID             string                  `json:"id"`
	Name           string                  `json:"name"`
	Abbreviation   string                  `json:"abbreviation,omitempty"`
	Website        string                  `json:"website,omitempty"`
	CatalogueID    string                  `json:"catalogue_id"`
	AlternativeIDs []AlternativeIdentifier `json:"alternative_identifiers,omitempty"`
}

func (p *Provider) Kind() ResourceKind { return KindProvider }

func (p *Provider) GetID() string { return p.ID }

func (p *Provider) GetCatalogueID() string { return p.CatalogueID }

func (p *Provider) GetProviderID() string { return "" }

func (p *Provider) GetAlternativeIdentifiers() []AlternativeIdentifier { return p.AlternativeIDs }

func (p *Provider) SetAlternativeIdentifiers(ids []AlternativeIdentifier) { p.AlternativeIDs = ids }

func (p *Provider) ReferenceLists() []ReferenceList { return nil }

func (p *Provider) ClonePayload() Payload {
	cp := *p
	cp.AlternativeIDs = append([]AlternativeIdentifier(nil), p.AlternativeIDs...)
	return &cp
}

// Service is the primary resource kind of the registry.
type Service struct {
	ID                   string                  `json:"id"`
	Name                 string                  `json:"name"`
	Webpage              string                  `json:"webpage,omitempty"`
	ResourceOrganisation string                  `json:"resource_organisation"`
	ResourceProviders    []string                `json:"resource_providers,omitempty"`
	CatalogueID          string                  `json:"catalogue_id"`
	RequiredResources    []string                `json:"required_resources,omitempty"`
	RelatedResources     []string                `json:"related_resources,omitempty"`
	AlternativeIDs       []AlternativeIdentifier `json:"alternative_identifiers,omitempty"`
}

func (s *Service) Kind() ResourceKind { return KindService }

func (s *Service) GetID() string { return s.ID }

func (s *Service) GetCatalogueID() string { return s.CatalogueID }

func (s *Service) GetProviderID() string { return s.ResourceOrganisation }

func (s *Service) GetAlternativeIdentifiers() []AlternativeIdentifier { return s.AlternativeIDs }

func (s *Service) SetAlternativeIdentifiers(ids []AlternativeIdentifier) { s.AlternativeIDs = ids }

func (s *Service) ReferenceLists() []ReferenceList {
	return []ReferenceList{
		{Field: "resource_providers", IDs: s.ResourceProviders, Kinds: []ResourceKind{KindProvider}},
		{Field: "required_resources", IDs: s.RequiredResources, Kinds: []ResourceKind{KindService, KindTrainingResource}},
		{Field: "related_resources", IDs: s.RelatedResources, Kinds: []ResourceKind{KindService, KindTrainingResource}},
	}
}

func (s *Service) ClonePayload() Payload {
	cp := *s
	cp.ResourceProviders = append([]string(nil), s.ResourceProviders...)
	cp.RequiredResources = append([]string(nil), s.RequiredResources...)
	cp.RelatedResources = append([]string(nil), s.RelatedResources...)
	cp.AlternativeIDs = append([]AlternativeIdentifier(nil), s.AlternativeIDs...)
	return &cp
}

// Tool is a software resource; it shares the service ownership shape.
type Tool struct {
	ID                   string                  `json:"id"`
	Name                 string                  `json:"name"`
	ResourceOrganisation string                  `json:"resource_organisation"`
	CatalogueID          string                  `json:"catalogue_id"`
	RelatedResources     []string                `json:"related_resources,omitempty"`
	AlternativeIDs       []AlternativeIdentifier `json:"alternative_identifiers,omitempty"`
}

func (t *Tool) Kind() ResourceKind { return KindTool }

func (t *Tool) GetID() string { return t.ID }

func (t *Tool) GetCatalogueID() string { return t.CatalogueID }

func (t *Tool) GetProviderID() string { return t.ResourceOrganisation }

func (t *Tool) GetAlternativeIdentifiers() []AlternativeIdentifier { return t.AlternativeIDs }

func (t *Tool) SetAlternativeIdentifiers(ids []AlternativeIdentifier) { t.AlternativeIDs = ids }

func (t *Tool) ReferenceLists() []ReferenceList {
	return []ReferenceList{
		{Field: "related_resources", IDs: t.RelatedResources, Kinds: []ResourceKind{KindService, KindTrainingResource}},
	}
}

func (t *Tool) ClonePayload() Payload {
	cp := *t
	cp.RelatedResources = append([]string(nil), t.RelatedResources...)
	cp.AlternativeIDs = append([]AlternativeIdentifier(nil), t.AlternativeIDs...)
	return &cp
}

// TrainingResource is a learning material resource.
type TrainingResource struct {
	ID                   string                  `json:"id"`
	Title                string                  `json:"title"`
	ResourceOrganisation string                  `json:"resource_organisation"`
	ResourceProviders    []string                `json:"resource_providers,omitempty"`
	CatalogueID          string                  `json:"catalogue_id"`
	EOSCRelatedServices  []string                `json:"eosc_related_services,omitempty"`
	AlternativeIDs       []AlternativeIdentifier `json:"alternative_identifiers,omitempty"`
}

func (t *TrainingResource) Kind() ResourceKind { return KindTrainingResource }

func (t *TrainingResource) GetID() string { return t.ID }

func (t *TrainingResource) GetCatalogueID() string { return t.CatalogueID }

func (t *TrainingResource) GetProviderID() string { return t.ResourceOrganisation }

func (t *TrainingResource) GetAlternativeIdentifiers() []AlternativeIdentifier {
	return t.AlternativeIDs
}

func (t *TrainingResource) SetAlternativeIdentifiers(ids []AlternativeIdentifier) {
	t.AlternativeIDs = ids
}

func (t *TrainingResource) ReferenceLists() []ReferenceList {
	return []ReferenceList{
		{Field: "resource_providers", IDs: t.ResourceProviders, Kinds: []ResourceKind{KindProvider}},
		{Field: "eosc_related_services", IDs: t.EOSCRelatedServices, Kinds: []ResourceKind{KindService, KindTrainingResource}},
	}
}

func (t *TrainingResource) ClonePayload() Payload {
	cp := *t
	cp.ResourceProviders = append([]string(nil), t.ResourceProviders...)
	cp.EOSCRelatedServices = append([]string(nil), t.EOSCRelatedServices...)
	cp.AlternativeIDs = append([]AlternativeIdentifier(nil), t.AlternativeIDs...)
	return &cp
}

// Datasource is the datasource sub-profile attached to a service.
type Datasource struct {
	ID           string `json:"id"`
	ServiceID    string `json:"service_id"`
	CatalogueID  string `json:"catalogue_id"`
	Jurisdiction string `json:"jurisdiction,omitempty"`
}

func (d *Datasource) Kind() ResourceKind { return KindDatasource }

func (d *Datasource) GetID() string { return d.ID }

func (d *Datasource) GetCatalogueID() string { return d.CatalogueID }

func (d *Datasource) GetProviderID() string { return "" }

func (d *Datasource) OwningResourceID() string { return d.ServiceID }

func (d *Datasource) GetAlternativeIdentifiers() []AlternativeIdentifier { return nil }

func (d *Datasource) SetAlternativeIdentifiers([]AlternativeIdentifier) {}

func (d *Datasource) ReferenceLists() []ReferenceList { return nil }

func (d *Datasource) ClonePayload() Payload {
	cp := *d
	return &cp
}

// InteroperabilityRecord describes an interoperability guideline.
type InteroperabilityRecord struct {
	ID             string                  `json:"id"`
	Title          string                  `json:"title"`
	ProviderID     string                  `json:"provider_id"`
	CatalogueID    string                  `json:"catalogue_id"`
	AlternativeIDs []AlternativeIdentifier `json:"alternative_identifiers,omitempty"`
}

func (r *InteroperabilityRecord) Kind() ResourceKind { return KindInteroperabilityRecord }

func (r *InteroperabilityRecord) GetID() string { return r.ID }

func (r *InteroperabilityRecord) GetCatalogueID() string { return r.CatalogueID }

func (r *InteroperabilityRecord) GetProviderID() string { return r.ProviderID }

func (r *InteroperabilityRecord) GetAlternativeIdentifiers() []AlternativeIdentifier {
	return r.AlternativeIDs
}

func (r *InteroperabilityRecord) SetAlternativeIdentifiers(ids []AlternativeIdentifier) {
	r.AlternativeIDs = ids
}

func (r *InteroperabilityRecord) ReferenceLists() []ReferenceList { return nil }

func (r *InteroperabilityRecord) ClonePayload() Payload {
	cp := *r
	cp.AlternativeIDs = append([]AlternativeIdentifier(nil), r.AlternativeIDs...)
	return &cp
}

// ResourceInteroperabilityRecord links a resource to guideline records.
type ResourceInteroperabilityRecord struct {
	ID                        string   `json:"id"`
	ResourceID                string   `json:"resource_id"`
	CatalogueID               string   `json:"catalogue_id"`
	InteroperabilityRecordIDs []string `json:"interoperability_record_ids,omitempty"`
}

func (r *ResourceInteroperabilityRecord) Kind() ResourceKind {
	return KindResourceInteroperabilityRecord
}

func (r *ResourceInteroperabilityRecord) GetID() string { return r.ID }

func (r *ResourceInteroperabilityRecord) GetCatalogueID() string { return r.CatalogueID }

func (r *ResourceInteroperabilityRecord) GetProviderID() string { return "" }

func (r *ResourceInteroperabilityRecord) OwningResourceID() string { return r.ResourceID }

func (r *ResourceInteroperabilityRecord) GetAlternativeIdentifiers() []AlternativeIdentifier {
	return nil
}

func (r *ResourceInteroperabilityRecord) SetAlternativeIdentifiers([]AlternativeIdentifier) {}

func (r *ResourceInteroperabilityRecord) ReferenceLists() []ReferenceList {
	return []ReferenceList{
		{Field: "interoperability_record_ids", IDs: r.InteroperabilityRecordIDs, Kinds: []ResourceKind{KindInteroperabilityRecord}},
	}
}

func (r *ResourceInteroperabilityRecord) ClonePayload() Payload {
	cp := *r
	cp.InteroperabilityRecordIDs = append([]string(nil), r.InteroperabilityRecordIDs...)
	return &cp
}

// Helpdesk is the helpdesk sub-profile attached to a service.
type Helpdesk struct {
	ID          string `json:"id"`
	ServiceID   string `json:"service_id"`
	CatalogueID string `json:"catalogue_id"`
	Type        string `json:"type,omitempty"`
}

func (h *Helpdesk) Kind() ResourceKind { return KindHelpdesk }

func (h *Helpdesk) GetID() string { return h.ID }

func (h *Helpdesk) GetCatalogueID() string { return h.CatalogueID }

func (h *Helpdesk) GetProviderID() string { return "" }

func (h *Helpdesk) OwningResourceID() string { return h.ServiceID }

func (h *Helpdesk) GetAlternativeIdentifiers() []AlternativeIdentifier { return nil }

func (h *Helpdesk) SetAlternativeIdentifiers([]AlternativeIdentifier) {}

func (h *Helpdesk) ReferenceLists() []ReferenceList { return nil }

func (h *Helpdesk) ClonePayload() Payload {
	cp := *h
	return &cp
}

// Monitoring is the monitoring sub-profile attached to a service.
type Monitoring struct {
	ID          string `json:"id"`
	ServiceID   string `json:"service_id"`
	CatalogueID string `json:"catalogue_id"`
	MonitoredBy string `json:"monitored_by,omitempty"`
}

func (m *Monitoring) Kind() ResourceKind { return KindMonitoring }

func (m *Monitoring) GetID() string { return m.ID }

func (m *Monitoring) GetCatalogueID() string { return m.CatalogueID }

func (m *Monitoring) GetProviderID() string { return "" }

func (m *Monitoring) OwningResourceID() string { return m.ServiceID }

func (m *Monitoring) GetAlternativeIdentifiers() []AlternativeIdentifier { return nil }

func (m *Monitoring) SetAlternativeIdentifiers([]AlternativeIdentifier) {}

func (m *Monitoring) ReferenceLists() []ReferenceList { return nil }

func (m *Monitoring) ClonePayload() Payload {
	cp := *m
	return &cp
}
