package diag

import "fmt"

type Code uint16

const (
	UnknownCode Code = 0

	// Загрузка программы
	LoadInfo           Code = 1000
	LoadInvalidProgram Code = 1001
	LoadUnknownDef     Code = 1002
	LoadBadType        Code = 1003
	LoadBadManifest    Code = 1004

	// Клоны
	CloneInfo                 Code = 2000
	CloneCyclicDependency     Code = 2001
	CloneUnresolvedProjection Code = 2002
	CloneInternal             Code = 2003
	CloneNotCloneable         Code = 2004
	CloneLateProjection       Code = 2005

	IOReadError  Code = 4001
	IOWriteError Code = 4002
	IOCacheError Code = 4003

	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var codeDescription = map[Code]string{
	UnknownCode:               "Unknown error",
	LoadInfo:                  "Program information",
	LoadInvalidProgram:        "Invalid program description",
	LoadUnknownDef:            "Unknown definition",
	LoadBadType:               "Malformed type expression",
	LoadBadManifest:           "Invalid project manifest",
	CloneInfo:                 "Clone information",
	CloneCyclicDependency:     "Cyclic clone dependency",
	CloneUnresolvedProjection: "Unresolved associated type projection",
	CloneInternal:             "Inconsistent dependency table",
	CloneNotCloneable:         "Definition cannot be cloned",
	CloneLateProjection:       "Associated type bound after emission",
	IOReadError:               "I/O read error",
	IOWriteError:              "I/O write error",
	IOCacheError:              "Cache error",
	ObsInfo:                   "Observability information",
	ObsTimings:                "Pipeline timings",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LOD%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("CLN%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
