package export

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/gravsim/internal/storage"
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Track struct {
	Label  string  `json:"label"`
	Mass   float64 `json:"mass,omitempty"`
	Points []Point `json:"points"`
}

type ExportData struct {
	ID       string             `json:"id"`
	System   string             `json:"system"`
	Step     float64            `json:"step"`
	EndTime  string             `json:"end_time"`
	Steps    int                `json:"steps"`
	Duration float64            `json:"duration"`
	Status   string             `json:"status"`
	Error    string             `json:"error,omitempty"`
	Times    []float64          `json:"times"`
	Bodies   []Track            `json:"bodies"`
	Metrics  map[string]float64 `json:"metrics"`
}

func NewExportData(meta *storage.RunMetadata, rec *storage.Recording) ExportData {
	data := ExportData{
		ID:       meta.ID,
		System:   meta.System,
		Step:     meta.Step,
		EndTime:  meta.EndTime,
		Steps:    meta.Steps,
		Duration: meta.Duration,
		Status:   meta.Status,
		Error:    meta.Error,
		Times:    rec.Times,
		Bodies:   make([]Track, len(rec.Labels)),
		Metrics:  meta.Metrics,
	}

	for i, label := range rec.Labels {
		tr := Track{Label: label, Points: make([]Point, rec.Len())}
		if i < len(meta.Bodies) {
			tr.Mass = meta.Bodies[i].Mass
		}
		for k, p := range rec.Track(i) {
			tr.Points[k] = Point{X: p.X, Y: p.Y}
		}
		data.Bodies[i] = tr
	}
	return data
}

// WriteJSON writes an indented JSON document of the run to w.
func WriteJSON(w io.Writer, meta *storage.RunMetadata, rec *storage.Recording) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExportData(meta, rec))
}

func ExportJSON(path string, meta *storage.RunMetadata, rec *storage.Recording) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteJSON(file, meta, rec)
}
