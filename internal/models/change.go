package model

const (
	TableTasks     = "tasks"
	TableSuppliers = "suppliers"
)

type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
)

// Change signals that a row of a watched table changed. It carries no row
// data; receivers treat their cache as stale and refetch.
type Change struct {
	Table  string     `json:"table"`
	Type   ChangeType `json:"type"`
	ID     string     `json:"id,omitempty"`
	UserID string     `json:"user_id,omitempty"`
}
