package api

import (
	"math"

	"github.com/scu-obit/fcskit/pkg/fcs"
	"github.com/scu-obit/fcskit/pkg/hyperlog"
)

type ResponseError struct {
	Message string `json:"message,omitempty"`
	Type    string `json:"type,omitempty"`
	Code    string `json:"code,omitempty"`
	Param   string `json:"param,omitempty"`
}

type FileSummary struct {
	ID            string          `json:"id"`
	Object        string          `json:"object"`
	Name          string          `json:"name,omitempty"`
	CreatedAt     int64           `json:"created_at"`
	Compression   string          `json:"compression"`
	Version       string          `json:"version"`
	Events        int             `json:"events"`
	DecodedEvents int             `json:"decoded_events"`
	HasData       bool            `json:"has_data"`
	KeywordCount  int             `json:"keyword_count"`
	Parameters    []ParameterInfo `json:"parameters"`
	Warnings      []WarningInfo   `json:"warnings"`
	Acquisition   fcs.Acquisition `json:"acquisition"`
}

type ParameterInfo struct {
	Index         int      `json:"index"`
	Name          string   `json:"name"`
	Label         string   `json:"label,omitempty"`
	Bits          int      `json:"bits"`
	Range         int64    `json:"range"`
	Amplification string   `json:"amplification"`
	Gain          float64  `json:"gain"`
	Voltage       *float64 `json:"voltage,omitempty"`
	Display       string   `json:"display,omitempty"`
	Min           *float64 `json:"min,omitempty"`
	Max           *float64 `json:"max,omitempty"`
}

type WarningInfo struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

type KeywordEntry struct {
	Key      string `json:"key"`
	Value    string `json:"value"`
	Standard bool   `json:"standard"`
}

type KeywordList struct {
	Object string         `json:"object"`
	FileID string         `json:"file_id"`
	Data   []KeywordEntry `json:"data"`
}

type ColumnResponse struct {
	Object    string        `json:"object"`
	FileID    string        `json:"file_id"`
	Parameter ParameterInfo `json:"parameter"`
	Total     int           `json:"total"`
	Count     int           `json:"count"`
	Sampled   bool          `json:"sampled"`
	Values    []float64     `json:"values"`
}

type DeleteFileResp struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

// ParamOverrides carries optional transform parameters. Nil fields are
// estimated from the data.
type ParamOverrides struct {
	T *float64 `json:"t,omitempty"`
	W *float64 `json:"w,omitempty"`
	M *float64 `json:"m,omitempty"`
	A *float64 `json:"a,omitempty"`
}

func (o ParamOverrides) complete() bool {
	return o.T != nil && o.W != nil && o.M != nil && o.A != nil
}

type ColumnHyperlogReq struct {
	ParamOverrides
	Bins    *int `json:"bins,omitempty"`
	Inverse bool `json:"inverse,omitempty"`
	Limit   int  `json:"limit,omitempty"`
	Sampled bool `json:"sampled,omitempty"`
}

type HyperlogReq struct {
	ParamOverrides
	Values  []float64 `json:"values"`
	Bins    *int      `json:"bins,omitempty"`
	Inverse bool      `json:"inverse,omitempty"`
}

type HyperlogResp struct {
	Object    string          `json:"object"`
	FileID    string          `json:"file_id,omitempty"`
	Parameter *ParameterInfo  `json:"parameter,omitempty"`
	Params    hyperlog.Params `json:"params"`
	Estimated bool            `json:"estimated"`
	Inverse   bool            `json:"inverse"`
	Count     int             `json:"count"`
	Values    []float64       `json:"values"`
}

func summarize(rec *FileRecord) FileSummary {
	f := rec.File
	sum := FileSummary{
		ID:           rec.ID,
		Object:       "fcs.file",
		Name:         rec.Name,
		CreatedAt:    rec.CreatedAt.Unix(),
		Compression:  rec.Compression.String(),
		Version:      f.Header.Version,
		Events:       f.NumEvents(),
		HasData:      f.Events != nil,
		KeywordCount: f.Keywords.Len(),
		Parameters:   make([]ParameterInfo, len(f.Parameters)),
		Warnings:     make([]WarningInfo, len(f.Warnings)),
		Acquisition:  f.Acquisition(),
	}
	if f.Events != nil {
		sum.DecodedEvents = f.Events.Rows()
	}
	for i, p := range f.Parameters {
		sum.Parameters[i] = parameterInfo(f, p)
	}
	for i, w := range f.Warnings {
		sum.Warnings[i] = WarningInfo{Code: string(w.Code), Detail: w.Message}
	}
	return sum
}

func parameterInfo(f *fcs.File, p fcs.Parameter) ParameterInfo {
	info := ParameterInfo{
		Index:         p.Index,
		Name:          p.ShortName,
		Label:         p.Label,
		Bits:          p.Bits,
		Range:         p.Range,
		Amplification: p.Amplification.String(),
		Gain:          p.Gain,
		Display:       p.Display,
	}
	if !math.IsNaN(p.Voltage) {
		v := p.Voltage
		info.Voltage = &v
	}
	if f.Events != nil && f.Events.Rows() > 0 {
		lo, hi := f.Events.ColumnBounds(p.Index - 1)
		if !math.IsNaN(lo) {
			info.Min, info.Max = &lo, &hi
		}
	}
	return info
}

func keywordList(rec *FileRecord) KeywordList {
	entries := rec.File.Keywords.Entries()
	out := KeywordList{
		Object: "list",
		FileID: rec.ID,
		Data:   make([]KeywordEntry, len(entries)),
	}
	for i, kw := range entries {
		out.Data[i] = KeywordEntry{Key: kw.Key, Value: kw.Value, Standard: fcs.IsStandard(kw.Key)}
	}
	return out
}
