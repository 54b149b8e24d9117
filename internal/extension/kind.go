package extension

// Kind classifies what an extension targets and which composition entry
// point applies to it.
type Kind uint8

const (
	// KindComponent targets a markup-producing callable.
	KindComponent Kind = iota
	// KindFunction targets a plain callable.
	KindFunction
	// KindValue targets a non-callable exported value.
	KindValue
)

func (k Kind) String() string {
	switch k {
	case KindComponent:
		return "component"
	case KindFunction:
		return "function"
	case KindValue:
		return "value"
	default:
		return "unknown"
	}
}

// ParseKind maps a descriptor's textual kind field back to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "component":
		return KindComponent, true
	case "function":
		return KindFunction, true
	case "value":
		return KindValue, true
	}
	return 0, false
}
