package ffg

import "ffg-go/internal/model"

// Gate decides whether the current actor may perform action on a file.
type Gate interface {
	CheckAccess(fileID string, action model.Action) bool
}

// Actor identifies who is operating the store and which role they hold.
type Actor struct {
	Name   string
	RoleID string
}

// DefaultActor is the single local user, holding the administrator role.
var DefaultActor = Actor{Name: "local", RoleID: RoleAdmin}

// AccessGate resolves the actor to a role from a static table and answers
// from that role's permissions. Unknown roles and unknown actions are
// denied. fileID is accepted for per-file rules but not consulted: roles
// apply to the whole tree.
type AccessGate struct {
	roles map[string]model.Role
	order []string
	actor Actor
}

var _ Gate = (*AccessGate)(nil)

// NewAccessGate creates a gate over roles for actor.
func NewAccessGate(roles []model.Role, actor Actor) *AccessGate {
	g := &AccessGate{roles: make(map[string]model.Role, len(roles)), actor: actor}
	for _, r := range roles {
		if _, dup := g.roles[r.ID]; !dup {
			g.order = append(g.order, r.ID)
		}
		g.roles[r.ID] = r
	}
	return g
}

// CheckAccess reports whether the actor's role grants action.
func (g *AccessGate) CheckAccess(fileID string, action model.Action) bool {
	role, ok := g.roles[g.actor.RoleID]
	if !ok {
		return false
	}
	return role.Allows(action)
}

// Actor returns the actor the gate evaluates.
func (g *AccessGate) Actor() Actor { return g.actor }

// Roles returns the role table in registration order.
func (g *AccessGate) Roles() []model.Role {
	out := make([]model.Role, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.roles[id])
	}
	return out
}
