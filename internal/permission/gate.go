// Package permission decides whether a user may perform an action,
// optionally on a specific record.
package permission

import "github.com/mesh-intelligence/datagrid/pkg/types"

// Gate is a compiled PermissionConfig. Role allow-lists are held as sets so
// the per-row checks made while building a view stay cheap.
type Gate struct {
	enabled    bool
	allow      map[types.Action]map[string]struct{}
	wildcard   map[types.Action]bool
	ownOnly    map[types.Action]bool
	ownerField string
}

// New compiles cfg into a Gate.
func New(cfg types.PermissionConfig) *Gate {
	g := &Gate{
		enabled:    cfg.Enabled,
		allow:      make(map[types.Action]map[string]struct{}, len(cfg.Rules)),
		wildcard:   make(map[types.Action]bool),
		ownOnly:    make(map[types.Action]bool, len(cfg.OwnOnly)),
		ownerField: cfg.OwnerField,
	}
	if g.ownerField == "" {
		g.ownerField = types.DefaultOwnerField
	}
	for action, roles := range cfg.Rules {
		set := make(map[string]struct{}, len(roles))
		for _, r := range roles {
			if r == types.Wildcard {
				g.wildcard[action] = true
			}
			set[r] = struct{}{}
		}
		g.allow[action] = set
	}
	for _, a := range cfg.OwnOnly {
		g.ownOnly[a] = true
	}
	return g
}

// Enabled reports whether checks are active at all.
func (g *Gate) Enabled() bool { return g.enabled }

// OwnOnly reports whether action is restricted to the user's own records.
func (g *Gate) OwnOnly(action types.Action) bool { return g.enabled && g.ownOnly[action] }

// Allowed reports whether user may perform action. rec may be nil when the
// action does not target a record. When the gate is disabled everything is
// allowed. An action without a rule is open to every role, so only the
// actions a host names are restricted.
func (g *Gate) Allowed(action types.Action, user types.User, rec types.Record) bool {
	if !g.enabled {
		return true
	}
	if _, ruled := g.allow[action]; ruled && !g.wildcard[action] && !g.hasRole(action, user.Roles) {
		return false
	}
	if g.ownOnly[action] {
		if rec == nil || user.ID == "" {
			return false
		}
		owner, ok := rec[g.ownerField]
		if !ok || owner.IsNull() {
			return false
		}
		return owner.Text() == user.ID
	}
	return true
}

func (g *Gate) hasRole(action types.Action, roles []string) bool {
	set := g.allow[action]
	for _, r := range roles {
		if _, ok := set[r]; ok {
			return true
		}
	}
	return false
}

// Allowed is the one-shot form of Gate.Allowed for callers that do not
// keep a compiled gate.
func Allowed(action types.Action, user types.User, rec types.Record, cfg types.PermissionConfig) bool {
	return New(cfg).Allowed(action, user, rec)
}
