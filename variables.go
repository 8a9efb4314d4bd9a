package sfx_installer

import (
	"sort"
	"strings"
)

type (
	// StringMap is a plain name/value mapping, as found in yaml configuration files.
	StringMap map[string]string
	// Variable is a single shell variable. A nil Value renders as an empty assignment.
	Variable struct {
		Name  string
		Value *string
	}
	// Variables is an insertion-ordered set of shell variables which get assigned at the
	// top of every generated script.
	Variables []Variable
)

// ParseVariable splits a "name[=value]" definition. Without "=" the value is nil.
func ParseVariable(definition string) Variable {
	kv := strings.SplitN(definition, "=", 2)
	v := Variable{Name: kv[0]}
	if len(kv) > 1 {
		value := kv[1]
		v.Value = &value
	}
	return v
}

// ParseVariables parses a list of "name[=value]" definitions. Later definitions of the same
// name replace earlier ones.
func ParseVariables(definitions []string) Variables {
	var vars Variables
	for _, d := range definitions {
		vars = vars.Set(ParseVariable(d))
	}
	return vars
}

// Set adds v, or replaces the value of an existing variable with the same name while
// keeping its position.
func (vars Variables) Set(v Variable) Variables {
	for i := range vars {
		if vars[i].Name == v.Name {
			vars[i].Value = v.Value
			return vars
		}
	}
	return append(vars, v)
}

// Get returns the value of the named variable, and whether it is defined at all.
func (vars Variables) Get(name string) (value string, ok bool) {
	for _, v := range vars {
		if v.Name == name {
			if v.Value != nil {
				value = *v.Value
			}
			return value, true
		}
	}
	return "", false
}

// Assignment renders the variable as a shell assignment.
func (v Variable) Assignment() string {
	if v.Value == nil {
		return v.Name + "="
	}
	return v.Name + "=" + *v.Value
}

// VariablesFromMap converts a StringMap into Variables, sorted by name since maps carry
// no order.
func VariablesFromMap(m StringMap) Variables {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	vars := make(Variables, 0, len(names))
	for _, name := range names {
		value := m[name]
		vars = append(vars, Variable{Name: name, Value: &value})
	}
	return vars
}

// MergeVariables combines several variable lists into a single one. Duplicate names will
// be overridden by the value in the last list which has the name.
func MergeVariables(varLists ...Variables) Variables {
	var merged Variables
	for _, vars := range varLists {
		for _, v := range vars {
			merged = merged.Set(v)
		}
	}
	return merged
}
