package services

// TransitionPolicy decides whether an order may move between two statuses.
// The rule set is swappable; the default permits everything because staff
// routinely override order states at the register.
type TransitionPolicy interface {
	Allowed(from, to string) bool
}

// PermissivePolicy allows any status change.
type PermissivePolicy struct{}

// Allowed always reports true.
func (PermissivePolicy) Allowed(from, to string) bool { return true }
