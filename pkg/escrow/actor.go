package escrow

import "github.com/chris/order-escrow/pkg/escrowerr"

// Role is what an actor may do.
type Role string

const (
	RoleMerchant Role = "merchant"
	RoleAdmin    Role = "admin"
	// RoleSystem is used by internal callers such as the scheduler and the returns workflow.
	RoleSystem Role = "system"
)

// Actor is the caller of an escrow operation.
type Actor struct {
	ID   string
	Role Role
}

// SystemActor returns an actor for an internal caller.
func SystemActor(id string) Actor {
	return Actor{ID: id, Role: RoleSystem}
}

func (a Actor) validate() error {
	if a.ID == "" {
		return escrowerr.Unauthorized("actor is not identified")
	}
	switch a.Role {
	case RoleMerchant, RoleAdmin, RoleSystem:
		return nil
	}
	return escrowerr.Unauthorized("unknown role %q", a.Role)
}

func (a Actor) privileged() bool {
	return a.Role == RoleAdmin || a.Role == RoleSystem
}

// canActFor reports whether the actor may act on a merchant's escrows.
func (a Actor) canActFor(merchantID string) bool {
	return a.privileged() || (a.Role == RoleMerchant && a.ID == merchantID)
}

func (a Actor) requireMerchantOrPrivileged(merchantID string) error {
	if err := a.validate(); err != nil {
		return err
	}
	if !a.canActFor(merchantID) {
		return escrowerr.Unauthorized("actor %s may not act for merchant %s", a.ID, merchantID)
	}
	return nil
}

func (a Actor) requirePrivileged(action string) error {
	if err := a.validate(); err != nil {
		return err
	}
	if !a.privileged() {
		return escrowerr.Unauthorized("only admin or system actors may %s", action)
	}
	return nil
}
