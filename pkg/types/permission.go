package types

// Action is an operation subject to permission checks.
type Action string

const (
	ActionView   Action = "view"
	ActionEdit   Action = "edit"
	ActionAdd    Action = "add"
	ActionDelete Action = "delete"
	ActionExport Action = "export"
	ActionBulk   Action = "bulk"
)

// Wildcard grants an action to every role.
const Wildcard = "*"

// PermissionConfig lists, per action, the roles allowed to perform it.
// OwnOnly restricts an action to records whose OwnerField equals the
// acting user's ID.
type PermissionConfig struct {
	Enabled    bool                `json:"enabled" yaml:"enabled"`
	Rules      map[Action][]string `json:"rules" yaml:"rules"`
	OwnOnly    []Action            `json:"own_only,omitempty" yaml:"own_only"`
	OwnerField string              `json:"owner_field,omitempty" yaml:"owner_field"`
}

// DefaultOwnerField is used when PermissionConfig.OwnerField is empty.
const DefaultOwnerField = "owner_id"

// User identifies the acting user for permission checks.
type User struct {
	ID    string
	Roles []string
}
