package sstv

import "fmt"

/*
 * SSTV Mode Specifications
 *
 * Mode is a closed sum type: the eleven modes below are the only ones
 * this modulator knows how to emit. Each carries its static attributes
 * (resolution, VIS code, per-line color-scan duration, family) as a
 * lookup into modeTable rather than as methods on a type hierarchy —
 * modes are data, not behavior subjects.
 *
 * References:
 *   - Martin Bruchanov OK2MNM (2012, 2019): www.sstv-handbook.com/download/sstv_04.pdf
 *   - JL Barber N7CXI: "Proposal for SSTV Mode Specifications" (Dayton SSTV forum, 2000)
 *   - Dave Jones KB4YZ (1999): "SSTV Modes - Line Timing"
 */

// Family selects which scanline protocol a mode uses.
type Family int

const (
	FamilyMartin Family = iota
	FamilyScottie
	FamilyRobot36
	FamilyRobot72
)

func (f Family) String() string {
	switch f {
	case FamilyMartin:
		return "Martin"
	case FamilyScottie:
		return "Scottie"
	case FamilyRobot36:
		return "Robot36"
	case FamilyRobot72:
		return "Robot72"
	default:
		return "Unknown"
	}
}

// Mode identifies one SSTV mode from the closed set this modulator supports.
type Mode int

const (
	ModeM1 Mode = iota
	ModeM2
	ModeM3
	ModeM4
	ModeS1
	ModeS2
	ModeS3
	ModeS4
	ModeSDX
	ModeR36
	ModeR72
)

// modeSpec holds the static, compile-time-constant attributes of a mode.
// Keeping every literal in this one table (rather than scattered across
// the scanline emitters) is deliberate: the table is the single source
// of truth for resolution, VIS code and scan timing.
type modeSpec struct {
	longName    string
	shortName   string
	width       int
	height      int
	visCode     uint8
	colorScanMs float64
	family      Family
}

var modeTable = map[Mode]modeSpec{
	ModeM1: {"Martin1", "M1", 320, 256, 0b0101100, 146.432, FamilyMartin},
	ModeM2: {"Martin2", "M2", 160, 256, 0b0101000, 73.216, FamilyMartin},
	ModeM3: {"Martin3", "M3", 320, 128, 0b0100100, 146.432, FamilyMartin},
	ModeM4: {"Martin4", "M4", 160, 128, 0b0100000, 73.216, FamilyMartin},

	ModeS1:  {"Scottie1", "S1", 320, 256, 0b0111100, 138.240, FamilyScottie},
	ModeS2:  {"Scottie2", "S2", 160, 256, 0b0111000, 88.064, FamilyScottie},
	ModeS3:  {"Scottie3", "S3", 320, 128, 0b0110100, 138.240, FamilyScottie},
	ModeS4:  {"Scottie4", "S4", 160, 128, 0b0110000, 88.064, FamilyScottie},
	ModeSDX: {"ScottieDX", "SDX", 320, 256, 0b1001100, 345.600, FamilyScottie},

	// color_scan_ms plays no role for the Robot families; their luma/chroma
	// scan durations are inlined constants per §4.3.3/§4.3.4, not derived
	// from this field (see Open Question 3 in DESIGN.md).
	ModeR36: {"Robot36", "R36", 320, 240, 0b0001000, 0, FamilyRobot36},
	ModeR72: {"Robot72", "R72", 320, 240, 0b0001100, 0, FamilyRobot72},
}

// modeOrder lists modes in canonical catalogue order, used by AllModes
// and ParseMode.
var modeOrder = []Mode{
	ModeM1, ModeM2, ModeM3, ModeM4,
	ModeS1, ModeS2, ModeS3, ModeS4, ModeSDX,
	ModeR36, ModeR72,
}

func (m Mode) spec() modeSpec {
	s, ok := modeTable[m]
	if !ok {
		panic(fmt.Sprintf("sstv: unknown mode %d", int(m)))
	}
	return s
}

// Resolution returns the mode's canonical (width, height) in pixels.
func (m Mode) Resolution() (int, int) {
	s := m.spec()
	return s.width, s.height
}

// VISCode returns the mode's 7-bit VIS data code.
//
// ScottieDX's historical literal is 0b1001100, whose most significant
// (7th) bit is set; only the low 7 bits are ever transmitted, so the
// mask leaves every table value unchanged (Open Question 1).
func (m Mode) VISCode() uint8 {
	return m.spec().visCode & 0x7F
}

// ColorScanMs returns the per-line color-channel scan duration in
// milliseconds. For Robot modes this is unused; see modeTable's comment.
func (m Mode) ColorScanMs() float64 {
	return m.spec().colorScanMs
}

// Family reports which scanline protocol the mode uses.
func (m Mode) Family() Family {
	return m.spec().family
}

// ShortName returns the mode's abbreviated name, e.g. "M1".
func (m Mode) ShortName() string {
	return m.spec().shortName
}

// LongName returns the mode's full name, e.g. "Martin1".
func (m Mode) LongName() string {
	return m.spec().longName
}

func (m Mode) String() string {
	return m.ShortName()
}

// AllModes returns every supported mode in catalogue order.
func AllModes() []Mode {
	out := make([]Mode, len(modeOrder))
	copy(out, modeOrder)
	return out
}

// ParseMode resolves a mode name in either short ("M1") or long
// ("Martin1") form. Matching is exact and case-sensitive.
func ParseMode(name string) (Mode, error) {
	for _, m := range modeOrder {
		s := m.spec()
		if name == s.shortName || name == s.longName {
			return m, nil
		}
	}
	return 0, fmt.Errorf("sstv: unknown mode %q", name)
}
