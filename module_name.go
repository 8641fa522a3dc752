package taproot

import (
	"fmt"
	"strings"
	"unicode"
)

// ModuleName is a normalized dotted Python module identifier such as
// "collections.abc". The zero value is invalid; names are constructed only
// through NewModuleName or derived from an existing name, so a ModuleName in
// hand is always well-formed. Equality and hashing follow the normalized
// string form.
type ModuleName struct {
	value string
}

// NewModuleName validates and normalizes name. Empty names, empty components
// ("a..b", trailing or leading dots), and components that are not Python
// identifiers are rejected before they can reach the resolver or its cache.
func NewModuleName(name string) (ModuleName, error) {
	if name == "" {
		return ModuleName{}, fmt.Errorf("module name is empty")
	}
	for _, component := range strings.Split(name, ".") {
		if !isIdentifier(component) {
			return ModuleName{}, fmt.Errorf("module name %q: component %q is not a valid identifier", name, component)
		}
	}
	return ModuleName{value: name}, nil
}

// MustModuleName is NewModuleName for static names known to be valid.
func MustModuleName(name string) ModuleName {
	n, err := NewModuleName(name)
	if err != nil {
		panic(err)
	}
	return n
}

func (n ModuleName) String() string {
	return n.value
}

// Components returns the dotted components in order.
func (n ModuleName) Components() []string {
	return strings.Split(n.value, ".")
}

// Parent returns the name with the final component removed, and false for a
// top-level name.
func (n ModuleName) Parent() (ModuleName, bool) {
	i := strings.LastIndexByte(n.value, '.')
	if i < 0 {
		return ModuleName{}, false
	}
	return ModuleName{value: n.value[:i]}, true
}

// Child returns the name extended by one component.
func (n ModuleName) Child(component string) (ModuleName, error) {
	if !isIdentifier(component) {
		return ModuleName{}, fmt.Errorf("module name component %q is not a valid identifier", component)
	}
	return ModuleName{value: n.value + "." + component}, nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}
