package diag

// Note adds context to a diagnostic, optionally about another item.
type Note struct {
	Item string
	Msg  string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Item     string // definition path or output unit
	Notes    []Note
}
