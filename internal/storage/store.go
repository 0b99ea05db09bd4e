package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/san-kum/dampsim/internal/config"
	"github.com/san-kum/dampsim/internal/dynamo"
	"github.com/san-kum/dampsim/internal/metrics"
)

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
)

var csvHeader = []string{"time", "x", "v", "a", "pe", "ke", "total", "loss"}

type Store struct {
	baseDir string
	logger  *zap.Logger
}

func New(baseDir string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{baseDir: baseDir, logger: logger}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID               string         `json:"id"`
	Timestamp        time.Time      `json:"timestamp"`
	Config           *config.Config `json:"config"`
	Samples          int            `json:"samples"`
	Dt               float64        `json:"dt"`
	Regime           string         `json:"regime"`
	NaturalFrequency float64        `json:"natural_frequency"`
	DampingRatio     float64        `json:"damping_ratio"`
	Diverged         bool           `json:"diverged"`
	Energy           metrics.Budget `json:"energy"`
}

// Run is everything a finished integration produced.
type Run struct {
	Meta       RunMetadata
	Trajectory *dynamo.Trajectory
	Energy     *dynamo.EnergySeries
}

func newRunID(now time.Time) string {
	return fmt.Sprintf("run_%s_%s", now.Format("20060102-150405"), uuid.NewString()[:8])
}

// Save writes metadata.json and trajectory.csv under a fresh run directory
// and returns the run id. It fills in the ID, Timestamp and Samples fields
// of run.Meta. A failed save leaves no run directory behind.
func (s *Store) Save(run *Run) (id string, err error) {
	now := time.Now()
	run.Meta.ID = newRunID(now)
	run.Meta.Timestamp = now
	run.Meta.Samples = run.Trajectory.Len()
	run.Meta.Energy = finiteBudget(run.Meta.Energy)

	runDir := filepath.Join(s.baseDir, run.Meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			os.RemoveAll(runDir)
		}
	}()

	if err := writeJSONFile(filepath.Join(runDir, metadataFile), run.Meta); err != nil {
		return "", fmt.Errorf("write metadata: %w", err)
	}

	csvFile, err := os.Create(filepath.Join(runDir, trajectoryFile))
	if err != nil {
		return "", err
	}
	if err := WriteCSV(csvFile, run.Trajectory, run.Energy); err != nil {
		csvFile.Close()
		return "", fmt.Errorf("write trajectory: %w", err)
	}
	if err := csvFile.Close(); err != nil {
		return "", fmt.Errorf("write trajectory: %w", err)
	}

	s.logger.Debug("run saved",
		zap.String("id", run.Meta.ID),
		zap.String("dir", runDir),
		zap.Int("samples", run.Meta.Samples))

	return run.Meta.ID, nil
}

// finiteBudget zeroes values JSON cannot carry; Diverged records why.
func finiteBudget(b metrics.Budget) metrics.Budget {
	for _, v := range []*float64{&b.Initial, &b.Final, &b.Dissipated, &b.Spread, &b.MaxResidual, &b.RelResidual} {
		if !dynamo.IsFinite(*v) {
			*v = 0
		}
	}
	return b
}

func writeJSONFile(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteCSV writes one row per sample. Floats use the shortest exact
// representation so a reload reproduces the arrays bit for bit.
func WriteCSV(w io.Writer, tr *dynamo.Trajectory, e *dynamo.EnergySeries) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	row := make([]string, len(csvHeader))
	for i := 0; i < tr.Len(); i++ {
		values := [...]float64{tr.T[i], tr.X[i], tr.V[i], tr.A[i],
			e.Potential[i], e.Kinetic[i], e.Total[i], e.Loss[i]}
		for j, v := range values {
			row[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

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
			s.logger.Debug("skipping run directory", zap.String("dir", entry.Name()), zap.Error(err))
			continue
		}

		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})

	return runs, nil
}

// ErrInvalidRunID is returned for ids that do not name a single directory
// inside the store.
var ErrInvalidRunID = errors.New("invalid run id")

func checkRunID(runID string) error {
	if runID == "" || runID == "." || runID == ".." || filepath.Base(runID) != runID {
		return fmt.Errorf("%w: %q", ErrInvalidRunID, runID)
	}
	return nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	if err := checkRunID(runID); err != nil {
		return nil, err
	}
	metaPath := filepath.Join(s.baseDir, runID, metadataFile)
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadRun reads a stored run back into memory.
func (s *Store) LoadRun(runID string) (*Run, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(s.baseDir, runID, trajectoryFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	tr, e, err := ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", runID, err)
	}
	tr.Dt = meta.Dt

	return &Run{Meta: *meta, Trajectory: tr, Energy: e}, nil
}

// ReadCSV parses the output of WriteCSV.
func ReadCSV(r io.Reader) (*dynamo.Trajectory, *dynamo.EnergySeries, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("missing header")
	}

	n := len(records) - 1
	tr := &dynamo.Trajectory{
		T: make([]float64, n),
		X: make([]float64, n),
		V: make([]float64, n),
		A: make([]float64, n),
	}
	e := &dynamo.EnergySeries{
		Potential: make([]float64, n),
		Kinetic:   make([]float64, n),
		Total:     make([]float64, n),
		Loss:      make([]float64, n),
	}
	columns := [...][]float64{tr.T, tr.X, tr.V, tr.A, e.Potential, e.Kinetic, e.Total, e.Loss}

	for i, record := range records[1:] {
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("row %d column %s: %w", i+1, csvHeader[j], err)
			}
			columns[j][i] = v
		}
	}

	return tr, e, nil
}
