// Package mask tracks the reveal/mask lifecycle of sensitive values.
//
// The canonical document always holds real values; the ledger only decides
// what a view should paint and guards the real value against being
// overwritten by its own masked display form.
package mask

// Placeholder is the fixed sentinel shown instead of a sensitive value.
// The engine never inspects secret syntax; it only compares entered text
// against this constant and against emptiness.
const Placeholder = "***REDACTED***"

type State int

const (
	Revealed State = iota
	Masked
)

type entry struct {
	real  string
	state State
}

// Ledger tracks, per field reference, whether the field currently shows its
// real value or the placeholder, and shadows the real value while masked.
// A field reference is any stable string the view chooses: a scalar field
// name, or fieldName/entryID for list items.
type Ledger struct {
	entries map[string]*entry
}

func NewLedger() *Ledger {
	return &Ledger{entries: map[string]*entry{}}
}

// Register starts tracking a field. An initially empty value is never
// masked: there is nothing to hide, and masking it would suggest a secret
// exists. Re-registering an already tracked reference is a no-op so view
// remounts cannot clobber ledger state.
func (l *Ledger) Register(ref, initialReal string) {
	if _, ok := l.entries[ref]; ok {
		return
	}
	e := &entry{real: initialReal}
	if initialReal != "" {
		e.state = Masked
	}
	l.entries[ref] = e
}

// Reveal switches the field to showing its real value and returns it.
// Revealing an unregistered reference registers it with an empty real
// value; views mount and unmount fields dynamically and the ledger is
// forgiving about the order that happens in.
func (l *Ledger) Reveal(ref string) string {
	e, ok := l.entries[ref]
	if !ok {
		e = &entry{}
		l.entries[ref] = e
	}
	e.state = Revealed
	return e.real
}

// Commit ends an editing scope: the view hands back whatever the user last
// entered, and the ledger decides what becomes canonical.
//
//   - entered == Placeholder: the user never touched the field; the prior
//     real value is retained and never replaced by its own display form.
//   - entered == "": an existing value is cleared outright, no stale shadow.
//   - anything else is adopted as the new real value.
//
// The return value is what the view should now display.
func (l *Ledger) Commit(ref, entered string) string {
	e, ok := l.entries[ref]
	if !ok {
		e = &entry{}
		l.entries[ref] = e
	}
	if entered != Placeholder {
		e.real = entered
	}
	if e.real == "" {
		e.state = Revealed
		return ""
	}
	e.state = Masked
	return Placeholder
}

// CurrentReal returns the canonical value for persistence. Unregistered
// references read as empty.
func (l *Ledger) CurrentReal(ref string) string {
	if e, ok := l.entries[ref]; ok {
		return e.real
	}
	return ""
}

// Display returns what the view should paint right now.
func (l *Ledger) Display(ref string) string {
	e, ok := l.entries[ref]
	if !ok {
		return ""
	}
	if e.state == Masked && e.real != "" {
		return Placeholder
	}
	return e.real
}

// CurrentState reports the field's display state. Unregistered references
// read as Revealed (an empty field has nothing to hide).
func (l *Ledger) CurrentState(ref string) State {
	if e, ok := l.entries[ref]; ok {
		return e.state
	}
	return Revealed
}

// Drop stops tracking a reference, as when its field is removed from the
// document.
func (l *Ledger) Drop(ref string) {
	delete(l.entries, ref)
}
