package diag

func New(sev Severity, code Code, item, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Item:     item,
		Message:  msg,
	}
}

func NewError(code Code, item, msg string) Diagnostic {
	return New(SevError, code, item, msg)
}

func (d Diagnostic) WithNote(item, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Item: item, Msg: msg})
	return d
}
