package models

// GlobalTables lists the tables carried by the global snapshot, in the order they are
// reconciled. The library documents and groups are stored as separate tables.
func GlobalTables() []TableKind {
	return []TableKind{
		TableDocuments,
		TableExigences,
		TableMembres,
		TablePilotageDocuments,
		TableBibliotheque,
		TableBibliothequeGroup,
	}
}

// Table returns the records of one table of the snapshot, nil when it is absent.
func (d *GlobalData) Table(kind TableKind) []Record {
	switch kind {
	case TableDocuments:
		return d.Documents
	case TableExigences:
		return d.Exigences
	case TableMembres:
		return d.Membres
	case TablePilotageDocuments:
		return d.PilotageDocuments
	case TableBibliotheque:
		if d.Bibliotheque == nil {
			return nil
		}
		return d.Bibliotheque.Documents
	case TableBibliothequeGroup:
		if d.Bibliotheque == nil {
			return nil
		}
		return d.Bibliotheque.Groups
	default:
		return nil
	}
}

// SetTable stores records as one table of the snapshot. Unknown kinds are ignored.
func (d *GlobalData) SetTable(kind TableKind, records []Record) {
	switch kind {
	case TableDocuments:
		d.Documents = records
	case TableExigences:
		d.Exigences = records
	case TableMembres:
		d.Membres = records
	case TablePilotageDocuments:
		d.PilotageDocuments = records
	case TableBibliotheque:
		if d.Bibliotheque == nil {
			d.Bibliotheque = &Bibliotheque{}
		}
		d.Bibliotheque.Documents = records
	case TableBibliothequeGroup:
		if d.Bibliotheque == nil {
			d.Bibliotheque = &Bibliotheque{}
		}
		d.Bibliotheque.Groups = records
	}
}
