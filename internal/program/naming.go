package program

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CamelCase converts `snake_case` or `mixedCase` identifiers to `CamelCase`.
func CamelCase(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '-' || r == ' ' || r == '\''
	})
	// Caser хранит состояние, поэтому создаётся на каждый вызов.
	caser := cases.Title(language.Und, cases.NoLower)
	var b strings.Builder
	for _, part := range parts {
		b.WriteString(caser.String(part))
	}
	return b.String()
}

// SnakeCase converts `CamelCase` identifiers to `snake_case`.
func SnakeCase(s string) string {
	s = strings.TrimPrefix(s, "'")
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && runes[i-1] != '_' && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1]) ||
				(i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ItemName returns the bare name of a definition.
func (p *Program) ItemName(id DefID) string {
	if d, ok := p.Def(id); ok {
		return d.Name()
	}
	return ""
}

// ModuleName is the name of the output module holding a definition:
// every path segment camel-cased and joined with '_'.
func (p *Program) ModuleName(id DefID) string {
	d, ok := p.Def(id)
	if !ok {
		return ""
	}
	segs := strings.Split(d.Path, "::")
	for i := range segs {
		segs[i] = CamelCase(segs[i])
	}
	return strings.Join(segs, "_")
}

// InterfaceName is the module holding the signature-only view of id.
func (p *Program) InterfaceName(id DefID) string {
	return p.ModuleName(id) + "_Interface"
}

// MethodName is the symbol a function definition is exported under.
func (p *Program) MethodName(id DefID) string {
	return SnakeCase(p.ItemName(id))
}

// TypeName is the symbol an associated type is exported under.
func (p *Program) TypeName(id DefID) string {
	return SnakeCase(p.ItemName(id))
}
