package syntax

import "unicode"

// PropertyResolver decides whether a name used in \p{Name} is known. The
// parser never looks inside the property; set construction belongs to the
// compiler.
type PropertyResolver interface {
	Known(name string) bool
}

// PropertyFunc adapts a function to PropertyResolver.
type PropertyFunc func(name string) bool

func (f PropertyFunc) Known(name string) bool { return f(name) }

// UnicodeTables resolves general categories, scripts and properties from the
// standard unicode package, plus "Any".
var UnicodeTables PropertyResolver = PropertyFunc(func(name string) bool {
	if name == "Any" {
		return true
	}
	if _, ok := unicode.Categories[name]; ok {
		return true
	}
	if _, ok := unicode.Scripts[name]; ok {
		return true
	}
	_, ok := unicode.Properties[name]
	return ok
})
