package domain

import "fmt"

// Variant identifies one of the five supported game title variants.
type Variant string

const (
	G1 Variant = "G1"
	G2 Variant = "G2"
	G3 Variant = "G3"
	G4 Variant = "G4"
	G5 Variant = "G5"
)

func (v Variant) Valid() bool {
	switch v {
	case G1, G2, G3, G4, G5:
		return true
	default:
		return false
	}
}

// Method is a GameProfile's load-order persistence strategy.
type Method int

const (
	// MethodTimestamp derives load order from plugin file mtimes.
	MethodTimestamp Method = iota
	// MethodTextfile reads/writes an explicit load-order manifest.
	MethodTextfile
)

func (m Method) String() string {
	if m == MethodTextfile {
		return "TEXTFILE"
	}
	return "TIMESTAMP"
}

// methodForVariant returns the default load-order method for each variant,
// per §4.2: G3 is TEXTFILE; G5 may be either depending on installation, so
// callers building a G5 profile should override Method explicitly (see
// engine.BuildProfile). All other variants are TIMESTAMP.
func methodForVariant(v Variant) Method {
	if v == G3 {
		return MethodTextfile
	}
	return MethodTimestamp
}

// dialectForVariant returns the header-parser dialect for each variant: G1
// uses the Classic dialect, all later variants use Standard.
func dialectForVariant(v Variant) Dialect {
	if v == G1 {
		return DialectClassic
	}
	return DialectStandard
}

// GameProfile is immutable after construction except for MasterFile, which
// may only be reassigned for TIMESTAMP-method profiles (see SetMasterFile).
type GameProfile struct {
	Variant       Variant
	MasterFile    string // main master filename, e.g. "Morrowind.esm"
	DataDir       string // directory holding plugin files
	ActivePath    string // active-plugins manifest path
	LoadOrderPath string // load-order manifest path; meaningful only for MethodTextfile
	Method        Method
	HeaderDialect Dialect

	Parser HeaderParser // required
	Cache  HeaderCache  // optional; nil disables caching
}

// NewGameProfile constructs a profile with the method/dialect implied by the
// variant. Callers needing G2's conditional manifest location or G5's
// TIMESTAMP/TEXTFILE split should use engine.BuildProfile instead, which
// performs the necessary filesystem probing before calling this.
func NewGameProfile(variant Variant, masterFile, dataDir, activePath, loadOrderPath string) (GameProfile, error) {
	if !variant.Valid() {
		return GameProfile{}, fmt.Errorf("unknown variant %q", variant)
	}
	return GameProfile{
		Variant:       variant,
		MasterFile:    masterFile,
		DataDir:       dataDir,
		ActivePath:    activePath,
		LoadOrderPath: loadOrderPath,
		Method:        methodForVariant(variant),
		HeaderDialect: dialectForVariant(variant),
	}, nil
}

// SetMasterFile reassigns the main master filename. Forbidden for TEXTFILE
// profiles (the engine hard-codes the master); callers must first validate
// that the new master exists and parses before calling this for TIMESTAMP
// profiles — SetMasterFile itself performs no I/O.
func (p *GameProfile) SetMasterFile(name string) error {
	if p.Method == MethodTextfile {
		return fmt.Errorf("cannot reassign main master for a TEXTFILE variant")
	}
	p.MasterFile = name
	return nil
}

// IsUpdateEsmVariant reports whether this profile is the one variant (G3)
// whose Update.esm, when installed, must always be active (invariant 4).
func (p GameProfile) IsUpdateEsmVariant() bool {
	return p.Variant == G3
}

// IsG1 reports whether this profile uses G1's embedded-.ini active manifest
// format rather than the shared plugins.txt line format.
func (p GameProfile) IsG1() bool {
	return p.Variant == G1
}
