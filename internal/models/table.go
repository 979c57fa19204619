package models

// TableKind имя таблицы (вида данных), которую синхронизирует движок
type TableKind string

// Известные таблицы приложения
const (
	TableDocuments         TableKind = "documents"
	TableExigences         TableKind = "exigences"
	TableMembres           TableKind = "membres"
	TableBibliotheque      TableKind = "bibliotheque"
	TableBibliothequeGroup TableKind = "bibliotheque_groups"
	TableCollaboration     TableKind = "collaboration"
	TablePilotageDocuments TableKind = "pilotageDocuments"
	TableRaci              TableKind = "raci"
	TableGlobal            TableKind = "global"
)

// KnownTables lists the tables with a dedicated load/sync endpoint.
func KnownTables() []TableKind {
	return []TableKind{
		TableDocuments,
		TableExigences,
		TableMembres,
		TableBibliotheque,
		TableCollaboration,
		TablePilotageDocuments,
		TableRaci,
	}
}

// String returns the table name.
func (t TableKind) String() string {
	return string(t)
}
