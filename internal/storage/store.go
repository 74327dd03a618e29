package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	metadataFile  = "metadata.json"
	positionsFile = "positions.csv"
)

type Store struct {
	baseDir string
	log     logrus.FieldLogger
}

func New(baseDir string) *Store {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &Store{baseDir: baseDir, log: l}
}

func (s *Store) WithLogger(l logrus.FieldLogger) *Store {
	s.log = l
	return s
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type BodyMetadata struct {
	Label string  `json:"label"`
	Mass  float64 `json:"mass"`
	Color string  `json:"color,omitempty"`
}

// RunMetadata describes a recorded run. EndTime is kept as text so that an
// unbounded run survives JSON.
type RunMetadata struct {
	ID        string             `json:"id"`
	System    string             `json:"system"`
	Timestamp time.Time          `json:"timestamp"`
	Step      float64            `json:"step"`
	EndTime   string             `json:"end_time"`
	Steps     int                `json:"steps"`
	Duration  float64            `json:"duration"`
	Status    string             `json:"status"`
	Error     string             `json:"error,omitempty"`
	Bodies    []BodyMetadata     `json:"bodies"`
	Metrics   map[string]float64 `json:"metrics"`
}

// NewRunID returns a fresh identifier for a run of the named system. The
// name is reduced to a single path element; an empty one becomes "system".
func NewRunID(system string) string {
	return fmt.Sprintf("%s-%s", runName(system), uuid.NewString()[:8])
}

func runName(system string) string {
	name := filepath.Base(filepath.Clean(strings.TrimSpace(system)))
	switch name {
	case ".", "..", string(filepath.Separator), "":
		return "system"
	}
	return name
}

// validID reports whether id names a directory directly under the store.
func validID(id string) bool {
	return id != "." && id != ".." && filepath.Base(id) == id && !strings.ContainsAny(id, `/\`)
}

// Save writes meta and rec under a new run directory and returns its ID.
// A non-empty meta.ID is used as is.
func (s *Store) Save(meta RunMetadata, rec *Recording) (string, error) {
	if meta.ID == "" {
		meta.ID = NewRunID(meta.System)
	}
	if !validID(meta.ID) {
		return "", fmt.Errorf("storage: invalid run id %q", meta.ID)
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := writePositions(filepath.Join(runDir, positionsFile), rec); err != nil {
		return "", err
	}

	s.log.WithFields(logrus.Fields{
		"run":     meta.ID,
		"samples": rec.Len(),
		"dir":     runDir,
	}).Info("run saved")

	return meta.ID, nil
}

func writePositions(path string, rec *Recording) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := []string{"time"}
	for i := range rec.Labels {
		header = append(header, fmt.Sprintf("x%d", i), fmt.Sprintf("y%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for k, t := range rec.Times {
		row := make([]string, 0, 1+2*len(rec.Positions[k]))
		row = append(row, strconv.FormatFloat(t, 'g', -1, 64))
		for _, p := range rec.Positions[k] {
			row = append(row,
				strconv.FormatFloat(p.X, 'g', -1, 64),
				strconv.FormatFloat(p.Y, 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns all readable runs, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			s.log.WithError(err).WithField("dir", entry.Name()).Debug("skipping unreadable run")
			continue
		}

		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	if !validID(runID) {
		return nil, fmt.Errorf("storage: invalid run id %q", runID)
	}
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: %s: %w", runID, err)
	}

	return &meta, nil
}

// LoadPositions reads the trajectory of a run. Labels come from the
// metadata when it lists the bodies.
func (s *Store) LoadPositions(runID string) (*Recording, error) {
	if !validID(runID) {
		return nil, fmt.Errorf("storage: invalid run id %q", runID)
	}
	file, err := os.Open(filepath.Join(s.baseDir, runID, positionsFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("storage: %s: %w", runID, err)
	}

	rec := &Recording{}
	if len(records) == 0 {
		return rec, nil
	}

	n := (len(records[0]) - 1) / 2
	rec.Labels = make([]string, n)
	if meta, err := s.Load(runID); err == nil && len(meta.Bodies) == n {
		for i, b := range meta.Bodies {
			rec.Labels[i] = b.Label
		}
	}

	for line, record := range records[1:] {
		vals := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("storage: %s line %d: %w", runID, line+2, err)
			}
			vals[j] = v
		}

		pos := make([]r2.Vec, n)
		for i := range pos {
			pos[i] = r2.Vec{X: vals[1+2*i], Y: vals[2+2*i]}
		}
		rec.Times = append(rec.Times, vals[0])
		rec.Positions = append(rec.Positions, pos)
	}

	return rec, nil
}
