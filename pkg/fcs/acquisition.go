package fcs

import "strings"

// Vendor keywords written by BD FACSDiva and compatible software.
const (
	KeyCreator        = "CREATOR"
	KeyExperimentName = "EXPERIMENT NAME"
	KeyPlateName      = "PLATE NAME"
	KeyWellID         = "WELL ID"
	KeyTubeName       = "TUBE NAME"
	KeyIndexSorted    = "INDEX SORTING SORTED LOCATION COUNT"
)

// ContainerKind tells whether a sample was acquired from a plate or a tube.
type ContainerKind string

const (
	ContainerTray     ContainerKind = "TRAY"
	ContainerSpecimen ContainerKind = "SPECIMEN"
)

// Acquisition summarizes where and how a file was recorded.
type Acquisition struct {
	Experiment  string        `json:"experiment"`
	Container   ContainerKind `json:"container"`
	Specimen    string        `json:"specimen,omitempty"`
	Tray        string        `json:"tray,omitempty"`
	Tube        string        `json:"tube,omitempty"`
	Owner       string        `json:"owner,omitempty"`
	Hardware    string        `json:"hardware,omitempty"`
	Software    string        `json:"software,omitempty"`
	Date        string        `json:"date,omitempty"`
	DataFile    string        `json:"data_file,omitempty"`
	IndexSorted bool          `json:"index_sorted"`
}

// Acquisition extracts the acquisition summary from the keyword table.
// Missing keywords leave the matching fields empty.
func (f *File) Acquisition() Acquisition {
	kw := f.Keywords
	a := Acquisition{
		Experiment: kw.Value(KeyExperimentName),
		Container:  ContainerSpecimen,
		Specimen:   kw.Value(KeySrc),
		Owner:      kw.Value(KeyOp),
		Hardware:   kw.Value(KeyCyt),
		Software:   kw.Value(KeyCreator),
		Date:       kw.Value(KeyDate),
		DataFile:   kw.Value(KeyFil),
	}
	if a.Experiment == "" {
		a.Experiment = "UNKNOWN"
	}
	if tray, ok := kw.Get(KeyPlateName); ok {
		a.Container = ContainerTray
		a.Tray = tray
		a.Tube = kw.Value(KeyWellID)
	} else {
		a.Tube = kw.Value(KeyTubeName)
	}
	if n, ok := kw.Int(KeyIndexSorted); ok {
		a.IndexSorted = n > 0
	} else {
		a.IndexSorted = strings.TrimSpace(kw.Value(KeyIndexSorted)) != ""
	}
	return a
}
