package wizard

// Scoping rules between draft fields.
//
// An organization scopes department and contact. A country scopes state,
// and a state scopes city. Changing a scoping value invalidates what was
// scoped beneath it and never reaches upward.

// resolve normalizes next after patch was merged onto prev. It returns the
// adjusted draft and the review labels that no longer apply.
func resolve(prev, next Draft, patch DraftPatch) (Draft, MetadataPatch) {
	var dropped MetadataPatch

	countryChanged := patch.Country != nil && next.Country != prev.Country
	stateChanged := countryChanged || (patch.State != nil && next.State != prev.State)

	// A lower level written in the same patch is a fresh value under the
	// new scope and survives the cascade.
	if countryChanged && patch.State == nil {
		next.State = ""
	}
	if stateChanged && patch.City == nil {
		next.City = ""
	}

	if next.OrganizationID == 0 {
		if next.DepartmentID != 0 || prev.DepartmentID != 0 {
			dropped.Department = &Label{}
		}
		if next.ContactID != 0 || prev.ContactID != 0 {
			dropped.Contact = &Label{}
		}
		next.DepartmentID = 0
		next.ContactID = 0
	}

	return next, dropped
}

// applyOrganization applies an organization selection, or clears it when
// org is nil. Department and contact are always invalidated because they
// belong to the previous organization.
func applyOrganization(d Draft, review ReviewMetadata, org *Organization) (Draft, ReviewMetadata) {
	d.DepartmentID = 0
	d.ContactID = 0
	review.Department = Label{}
	review.Contact = Label{}

	if org == nil {
		d.OrganizationID = 0
		return d, review
	}

	d.OrganizationID = org.ID
	d.City = org.Address.City
	d.State = org.Address.State
	d.PostalCode = org.Address.PostalCode
	return d, review
}

// LookupGate says which remote lookups may run for a draft.
type LookupGate struct {
	Organizations bool
	Departments   bool
	Contacts      bool
	Recruiters    bool
	Workflows     bool
	Categories    bool
}

// GateFor derives the lookup gate from the draft. Departments and contacts
// need an organization to scope them; everything else is unscoped.
func GateFor(d Draft) LookupGate {
	hasOrg := d.OrganizationID != 0
	return LookupGate{
		Organizations: true,
		Departments:   hasOrg,
		Contacts:      hasOrg,
		Recruiters:    true,
		Workflows:     true,
		Categories:    true,
	}
}
