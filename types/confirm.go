package types

// Confirmer asks the operator to approve an action that would discard
// data (overwriting a file, deleting records, replacing the collection).
// A false answer with a nil error means the operator declined.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(prompt string) (bool, error)

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(prompt string) (bool, error) {
	return f(prompt)
}

// AlwaysConfirm approves every prompt. Used for --yes and by tests.
var AlwaysConfirm Confirmer = ConfirmFunc(func(string) (bool, error) { return true, nil })

// NeverConfirm declines every prompt.
var NeverConfirm Confirmer = ConfirmFunc(func(string) (bool, error) { return false, nil })
