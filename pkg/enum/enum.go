package enum

// Entry binds the symbolic key of an enum member to its wire value.
type Entry[E ~string] struct {
	Key   string
	Value E
}

// Set is an ordered, immutable table of enum members.
type Set[E ~string] []Entry[E]

// ValuesOf returns the wire values of the set in declaration order.
func ValuesOf[E ~string](s Set[E]) []E {
	out := make([]E, len(s))
	for i, e := range s {
		out[i] = e.Value
	}
	return out
}

// KeysOf returns the symbolic keys of the set in declaration order.
func KeysOf[E ~string](s Set[E]) []string {
	out := make([]string, len(s))
	for i, e := range s {
		out[i] = e.Key
	}
	return out
}

// Contains reports whether v is a member of the set.
func Contains[E ~string](s Set[E], v E) bool {
	for _, e := range s {
		if e.Value == v {
			return true
		}
	}
	return false
}

// Strings returns the wire values as plain strings, useful for error messages.
func Strings[E ~string](s Set[E]) []string {
	out := make([]string, len(s))
	for i, e := range s {
		out[i] = string(e.Value)
	}
	return out
}
