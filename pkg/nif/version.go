package nif

import (
	"regexp"
	"strconv"
	"strings"
)

// Known file version milestones. Every version-gated field in Header.Get
// and Header.Put is keyed off one of these constants so the two paths can
// never drift apart (see header.go).
const (
	V3_1       uint32 = 0x03010000
	V5_0_0_1   uint32 = 0x05000001
	V5_0_0_6   uint32 = 0x05000006
	V10_0_0_0  uint32 = 0x0A000000
	V10_0_1_8  uint32 = 0x0A000108
	V20_0_0_3  uint32 = 0x14000003
	V20_0_0_4  uint32 = 0x14000004
	V20_0_0_5  uint32 = 0x14000005
	V20_1_0_1  uint32 = 0x14010001
	V20_1_0_3  uint32 = 0x14010003
	V20_2_0_5  uint32 = 0x14020005
	V20_2_0_7  uint32 = 0x14020007
	V30_0_0_2  uint32 = 0x1E000002
	NPOS              = ^uint32(0)
	nifStringIndexLimit = uint32(0x10000)
)

// ToFile packs four dotted version components A.B.C.D into the u32 the file
// format stores, one byte per component with A in the most significant
// byte, e.g. ToFile(20,2,0,7) == V20_2_0_7.
func ToFile(a, b, c, d uint8) uint32 {
	return uint32(a)<<24 | uint32(b)<<16 | uint32(c)<<8 | uint32(d)
}

// fileParts reverses ToFile for rendering the version string.
func fileParts(file uint32) (a, b, c, d uint8) {
	return uint8(file >> 24), uint8(file >> 16), uint8(file >> 8), uint8(file)
}

// bethesdaVersions is the known set of (file, user) pairs that enable the
// Bethesda header branch (creator/export-info/stream fields). The set is
// data-driven: it reflects which Bethesda titles shipped which
// file/user/stream stamps. Treat additions to it as a fact update rather
// than a logic change.
var bethesdaVersions = map[[2]uint32]bool{
	{V20_0_0_4, 10}: true, // Oblivion
	{V20_0_0_4, 11}: true,
	{V20_0_0_5, 11}: true,
	{V20_2_0_7, 11}: true, // Fallout 3 / New Vegas
	{V20_2_0_7, 12}: true, // Skyrim LE/SE, Fallout 4/76
}

// Version encodes the file/user/stream/NDS version quadruple carried in a
// NIF header.
type Version struct {
	file   uint32
	user   uint32
	stream uint32
	nds    uint32
}

// NewVersion builds a Version from a packed file version.
func NewVersion(file uint32) Version {
	v := Version{}
	v.SetFile(file)
	return v
}

func (v *Version) SetFile(file uint32)     { v.file = file }
func (v *Version) SetUser(user uint32)     { v.user = user }
func (v *Version) SetStream(stream uint32) { v.stream = stream }
func (v *Version) SetNDS(nds uint32)       { v.nds = nds }

func (v Version) File() uint32   { return v.file }
func (v Version) User() uint32   { return v.user }
func (v Version) Stream() uint32 { return v.stream }
func (v Version) NDS() uint32    { return v.nds }

// IsBethesda reports whether this (file, user) combination enables the
// Bethesda-branch header fields.
func (v Version) IsBethesda() bool {
	return bethesdaVersions[[2]uint32{v.file, v.user}]
}

const (
	familyNetImmerse = "NetImmerse File Format"
	familyGamebryo   = "Gamebryo File Format"
	familyNDS        = "NDSNIF....@....@...."
	verstringInfix   = ", Version "
)

// String renders the version the way the file's first line stores it:
// "<family>, Version A.B[.C.D]". The four-component form applies to every
// file above 3.1 regardless of family; only 3.1 and older render "A.B".
func (v Version) String() string {
	family := v.family()

	var num string
	if v.file > V3_1 {
		a, b, c, d := fileParts(v.file)
		num = strconv.Itoa(int(a)) + "." + strconv.Itoa(int(b)) + "." +
			strconv.Itoa(int(c)) + "." + strconv.Itoa(int(d))
	} else {
		a, b, _, _ := fileParts(v.file)
		num = strconv.Itoa(int(a)) + "." + strconv.Itoa(int(b))
	}

	return family + verstringInfix + num
}

func (v Version) family() string {
	switch {
	case v.nds != 0:
		return familyNDS
	case v.file < V10_0_0_0:
		return familyNetImmerse
	default:
		return familyGamebryo
	}
}

var versionNumberRe = regexp.MustCompile(`25[0-5]|2[0-4][0-9]|1[0-9][0-9]|[1-9]?[0-9]`)

// parseVersionLine recognizes the header's first line and extracts the
// four A.B.C.D components of the file version embedded in its version
// string, packed with ToFile. valid is false (with
// no further bytes meaningfully consumed) if none of the three known
// family prefixes match.
func parseVersionLine(line string) (file uint32, isNDS bool, valid bool) {
	switch {
	case strings.Contains(line, familyNetImmerse):
	case strings.Contains(line, familyGamebryo):
	case strings.Contains(line, familyNDS):
		isNDS = true
	default:
		return 0, false, false
	}

	idx := strings.Index(line, verstringInfix)
	if idx < 0 {
		return 0, isNDS, true
	}
	rest := line[idx+len(verstringInfix):]

	matches := versionNumberRe.FindAllString(rest, -1)
	var parts [4]uint8
	for i := 0; i < len(matches) && i < 4; i++ {
		n, err := strconv.Atoi(matches[i])
		if err != nil || n < 0 || n > 255 {
			continue
		}
		parts[i] = uint8(n)
	}

	return ToFile(parts[0], parts[1], parts[2], parts[3]), isNDS, true
}
