package watch

// Built-in key bindings. Keys use bubbletea's string representation
// ("a", "enter", …) so the interactive front end can forward KeyMsg
// strings unchanged.
const (
	KeyQuit           = "q"
	KeyRerun          = "enter"
	KeyWatchAll       = "a"
	KeyOnlyChanged    = "o"
	KeyUpdateSnapshot = "u"
	KeyPathPattern    = "p"
	KeyNamePattern    = "t"
	KeyClearFilters   = "c"
	KeyShowUsage      = "w"
)

// ReservedKeys lists every key claimed by a built-in action. Plugins
// must not bind any of these; the registry rejects collisions at load
// time.
func ReservedKeys() []string {
	return []string{
		KeyQuit,
		KeyRerun,
		KeyWatchAll,
		KeyOnlyChanged,
		KeyUpdateSnapshot,
		KeyPathPattern,
		KeyNamePattern,
		KeyClearFilters,
		KeyShowUsage,
	}
}
