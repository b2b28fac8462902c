package domain

import "strings"

// Plugin is an immutable-by-convention value identifying one plugin file by
// name. It does not own the file; callers use it as a handle for filesystem
// queries performed by the engine package.
type Plugin struct {
	name   string // canonical: .ghost suffix and any trailing \r stripped
	Active bool
}

// NewPlugin strips a trailing ".ghost" (case-insensitive) and any stray
// carriage-return byte, retaining the stripped form as the canonical name.
func NewPlugin(name string) Plugin {
	return Plugin{name: CanonicalPluginName(name)}
}

// CanonicalPluginName applies the same stripping NewPlugin does, without
// constructing a Plugin. Used where only the name is needed.
func CanonicalPluginName(name string) string {
	name = strings.TrimRight(name, "\r")
	if len(name) > 6 && strings.EqualFold(name[len(name)-6:], ".ghost") {
		name = name[:len(name)-6]
	}
	return name
}

// Name returns the canonical (non-ghost, non-CR) filename.
func (p Plugin) Name() string {
	return p.name
}

// Key returns the canonical lowercase form used as the identity key in sets
// and maps throughout the engine; display case is retained only in Name.
func (p Plugin) Key() string {
	return strings.ToLower(p.name)
}

// Equal compares two plugins by case-insensitive name, per the data model's
// equality rule. The activation flag does not participate in equality.
func (p Plugin) Equal(other Plugin) bool {
	return p.Key() == other.Key()
}

// EqualName compares a plugin's canonical name to a raw name, case-insensitively.
func (p Plugin) EqualName(name string) bool {
	return p.Key() == strings.ToLower(CanonicalPluginName(name))
}

// HasPluginExtension reports whether name ends in .esm or .esp, case-insensitively.
func HasPluginExtension(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".esm") || strings.HasSuffix(lower, ".esp")
}
