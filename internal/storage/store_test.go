package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/sim"
)

func sampleRecording() *Recording {
	return &Recording{
		Labels: []string{"sun", "earth"},
		Times:  []float64{0, 86400},
		Positions: [][]r2.Vec{
			{{X: 0, Y: 0}, {X: 1.496e11, Y: 0}},
			{{X: 0.5, Y: -0.25}, {X: 1.4959e11, Y: 2.573e9}},
		},
	}
}

func sampleMeta() RunMetadata {
	return RunMetadata{
		System:  "test",
		Step:    86400,
		EndTime: "inf",
		Steps:   1,
		Status:  "stopped",
		Bodies: []BodyMetadata{
			{Label: "sun", Mass: 1.9885e30},
			{Label: "earth", Mass: 5.97237e24},
		},
		Metrics: map[string]float64{"energy_drift": 1.5e-6},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(sampleMeta(), sampleRecording())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if !strings.HasPrefix(runID, "test-") || len(runID) != len("test-")+8 {
		t.Errorf("unexpected run id %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if meta.System != "test" {
		t.Errorf("expected system 'test', got '%s'", meta.System)
	}
	if meta.EndTime != "inf" {
		t.Errorf("expected end time inf, got %q", meta.EndTime)
	}
	if meta.Metrics["energy_drift"] != 1.5e-6 {
		t.Errorf("expected drift 1.5e-6, got %g", meta.Metrics["energy_drift"])
	}

	rec, err := st.LoadPositions(runID)
	if err != nil {
		t.Fatalf("load positions failed: %v", err)
	}

	want := sampleRecording()
	if rec.Len() != want.Len() {
		t.Fatalf("expected %d samples, got %d", want.Len(), rec.Len())
	}
	for k := range want.Times {
		if rec.Times[k] != want.Times[k] {
			t.Errorf("time %d = %v, want %v", k, rec.Times[k], want.Times[k])
		}
		for i := range want.Positions[k] {
			if rec.Positions[k][i] != want.Positions[k][i] {
				t.Errorf("sample %d body %d = %v, want %v", k, i, rec.Positions[k][i], want.Positions[k][i])
			}
		}
	}
	if rec.Labels[1] != "earth" {
		t.Errorf("labels = %v", rec.Labels)
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	older := sampleMeta()
	older.Timestamp = time.Now().Add(-time.Hour)
	if _, err := st.Save(older, sampleRecording()); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	newer, err := st.Save(sampleMeta(), sampleRecording())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if err := os.MkdirAll(filepath.Join(tmpDir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != newer {
		t.Errorf("expected newest run first, got %s", runs[0].ID)
	}
}

func TestStoreList_MissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "absent")).List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected empty list, got %v, %v", runs, err)
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(sampleMeta(), sampleRecording())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(tmpDir, runID)
	if _, err := os.Stat(filepath.Join(runDir, "metadata.json")); os.IsNotExist(err) {
		t.Error("metadata.json not created")
	}

	data, err := os.ReadFile(filepath.Join(runDir, "positions.csv"))
	if err != nil {
		t.Fatalf("positions.csv not readable: %v", err)
	}
	header := strings.SplitN(string(data), "\n", 2)[0]
	if header != "time,x0,y0,x1,y1" {
		t.Errorf("header = %q", header)
	}
}

func TestStoreLoadPositions_Corrupt(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	runDir := filepath.Join(tmpDir, "bad")
	if err := os.MkdirAll(runDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(runDir, "positions.csv"), []byte("time,x0,y0\n0,abc,1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := st.LoadPositions("bad"); err == nil {
		t.Error("expected parse error")
	}
}

func TestRecorder(t *testing.T) {
	cfg := sim.Config{Step: 1, EndTime: 10, Bodies: []*physics.Body{
		physics.NewBody("a", r2.Vec{X: -1}, r2.Vec{}, 1),
		physics.NewBody("b", r2.Vec{X: 1}, r2.Vec{}, 1),
	}}

	rec := NewRecorder(3)
	rec.Start(cfg.Bodies)

	engine, err := sim.New(cfg, sim.WithObserver(rec))
	if err != nil {
		t.Fatal(err)
	}
	for {
		if _, err := engine.Next(); err != nil {
			break
		}
	}

	got := rec.Recording()
	wantTimes := []float64{0, 3, 6, 9}
	if got.Len() != len(wantTimes) {
		t.Fatalf("samples = %v, want %v", got.Times, wantTimes)
	}
	for i, w := range wantTimes {
		if got.Times[i] != w {
			t.Errorf("time %d = %v, want %v", i, got.Times[i], w)
		}
	}

	track := got.Track(1)
	if len(track) != 4 || track[0] != (r2.Vec{X: 1}) {
		t.Errorf("track = %v", track)
	}
	if got.Labels[0] != "a" {
		t.Errorf("labels = %v", got.Labels)
	}
}

func TestNewRunID_Sanitised(t *testing.T) {
	tests := []struct {
		system string
		prefix string
	}{
		{"solar", "solar-"},
		{"../escape", "escape-"},
		{"a/b/c", "c-"},
		{"", "system-"},
		{"  ", "system-"},
		{"..", "system-"},
		{"/", "system-"},
	}
	for _, tt := range tests {
		id := NewRunID(tt.system)
		if !strings.HasPrefix(id, tt.prefix) || len(id) != len(tt.prefix)+8 {
			t.Errorf("NewRunID(%q) = %q, want prefix %q", tt.system, id, tt.prefix)
		}
	}
}

func TestStoreSave_StaysInBaseDir(t *testing.T) {
	root := t.TempDir()
	base := filepath.Join(root, "data")
	st := New(base)

	meta := sampleMeta()
	meta.System = "../outside"
	runID, err := st.Save(meta, sampleRecording())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(base, runID, "metadata.json")); err != nil {
		t.Errorf("run not stored under the data dir: %v", err)
	}
	if entries, _ := os.ReadDir(root); len(entries) != 1 {
		t.Errorf("expected only the data dir under %s, got %d entries", root, len(entries))
	}

	loaded, err := st.Load(runID)
	if err != nil || loaded.System != "../outside" {
		t.Errorf("system name not preserved: %v, %v", loaded, err)
	}

	bad := sampleMeta()
	bad.ID = "../escape"
	if _, err := st.Save(bad, sampleRecording()); err == nil {
		t.Error("expected error for an id outside the store")
	}
	if _, err := st.Load("../data"); err == nil {
		t.Error("expected error loading an id outside the store")
	}
}
