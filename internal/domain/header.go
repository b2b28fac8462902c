package domain

// Dialect selects which plugin-header sub-record layout a variant's files
// use. The master bit is bit 0 of the flags word in both dialects; Standard
// additionally requires a valid HEDR sub-record.
type Dialect int

const (
	// DialectClassic is used by G1: header signature "TES3", masters are
	// top-level MAST sub-records.
	DialectClassic Dialect = iota
	// DialectStandard is used by G2-G5: header signature "TES4", masters
	// are MAST sub-records, and a HEDR sub-record must also be present.
	DialectStandard
)

// Header exposes the two capabilities the engine consumes from a parsed
// plugin file header: its master flag and its declared masters list.
type Header interface {
	IsMaster() bool
	Masters() []string
}

// HeaderParser parses a plugin file's header according to a dialect. The
// concrete default implementation lives in package headerfmt; HeaderParser
// is kept here, alongside Dialect, so the engine never imports a concrete
// format package.
type HeaderParser interface {
	Parse(path string, dialect Dialect) (Header, error)
}

// HeaderCache memoizes parsed headers keyed by file identity (path, size,
// mtime), sparing repeat parses of unchanged files. Optional: when a
// GameProfile carries no HeaderCache, the engine parses directly through
// HeaderParser every time.
type HeaderCache interface {
	Lookup(path string, size int64, modTime int64) (Header, bool, error)
	Store(path string, size int64, modTime int64, h Header) error
}
