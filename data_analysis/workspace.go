package data_analysis

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/kaireichart/flight-visualizer/events"
	"github.com/kaireichart/flight-visualizer/playback"
	"github.com/kaireichart/flight-visualizer/telemetry"
)

// Pipeline results reported to a Recorder
const (
	ResultOK          = "ok"
	ResultSchemaError = "schema_error"
	ResultAllMissing  = "all_missing"
	ResultDomainError = "domain_error"
	ResultReadError   = "read_error"
)

// Recorder observes pipeline runs, e.g. for metrics
type Recorder interface {
	ObservePipeline(result string, duration time.Duration, samples int)
}

// WorkspaceConfig holds the settings a Workspace starts with
type WorkspaceConfig struct {
	Params          Params
	PressureColumns []string
	PhaseThreshold  float64
	Recorder        Recorder
	OnState         func(playback.State) // called with the engine locked
}

// Status is the user-facing summary of the workspace
type Status struct {
	Message string `json:"message"`
	Error   bool   `json:"error"`
	Source  string `json:"source,omitempty"`
	Samples int    `json:"samples"`
	Params  Params `json:"params"`
	State   string `json:"state"`
	Cursor  int    `json:"cursor"`
}

// Workspace is the application state: the loaded table, the smoothing
// parameters, the processed dataset and the playback engine showing it.
type Workspace struct {
	mu     sync.Mutex
	engine *playback.Engine
	cfg    WorkspaceConfig

	table   *telemetry.Table
	params  Params
	dataset *Dataset
	message string
	failed  bool
}

// NewWorkspace creates an empty workspace driving engine
func NewWorkspace(engine *playback.Engine, cfg WorkspaceConfig) *Workspace {
	if len(cfg.PressureColumns) == 0 {
		cfg.PressureColumns = telemetry.DefaultPressureColumns
	}
	if cfg.PhaseThreshold <= 0 {
		cfg.PhaseThreshold = DefaultPhaseThreshold
	}

	ws := &Workspace{
		engine:  engine,
		cfg:     cfg,
		params:  cfg.Params.Normalized(),
		message: "No file loaded",
	}
	engine.OnStateChange(ws.stateChanged)
	engine.OnFinish(ws.finished)
	return ws
}

// Load reads a data file and replaces the current dataset with the processed
// result. name is the file name shown to the user. On error the previous
// dataset stays installed and the error becomes the status message.
func (ws *Workspace) Load(path, name string) error {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	table, err := telemetry.ReadTable(path, telemetry.ReadOptions{PressureColumns: ws.cfg.PressureColumns})
	if err != nil {
		err = fmt.Errorf("failed to read %s: %w", name, err)
		ws.failLocked(name, err, 0)
		return err
	}
	if name != "" {
		table.Source = name
	}

	if err := ws.processLocked(table, ws.params); err != nil {
		return err
	}
	ws.table = table
	ws.message = fmt.Sprintf("Loaded %s (%d rows)", table.Source, ws.dataset.Len())

	log.Printf("Loaded %s (%d rows)", table.Source, ws.dataset.Len())
	events.LogEvent(events.Event{
		Type:   events.FileLoaded,
		Source: table.Source,
		Detail: fmt.Sprintf("%d rows", ws.dataset.Len()),
	})
	return nil
}

// Apply stores new smoothing parameters and reprocesses the loaded table, if any
func (ws *Workspace) Apply(p Params) error {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	p = p.Normalized()
	if ws.table == nil {
		ws.params = p
		return nil
	}

	if err := ws.processLocked(ws.table, p); err != nil {
		return err
	}
	ws.message = fmt.Sprintf("Loaded %s (%d rows)", ws.table.Source, ws.dataset.Len())

	log.Printf("Reprocessed %s with median=%d mean=%d filter=%v", ws.table.Source, p.MedianWindow, p.MeanWindow, p.PolynomialFilter)
	events.LogEvent(events.Event{
		Type:   events.ParamsApplied,
		Source: ws.table.Source,
		Detail: fmt.Sprintf("median=%d mean=%d filter=%v", p.MedianWindow, p.MeanWindow, p.PolynomialFilter),
	})
	return nil
}

// processLocked runs the pipeline and installs the result together with the
// new params. Nothing changes when the pipeline fails.
func (ws *Workspace) processLocked(table *telemetry.Table, p Params) error {
	start := time.Now()
	ds, err := Process(table, p,
		WithPressureColumns(ws.cfg.PressureColumns...),
		WithPhaseThreshold(ws.cfg.PhaseThreshold))
	if err != nil {
		ws.failLocked(table.Source, err, time.Since(start))
		return err
	}
	ws.observe(ResultOK, time.Since(start), ds.Len())

	ws.params = ds.Params
	ws.dataset = ds
	ws.failed = false
	ws.engine.Load(ds)
	return nil
}

func (ws *Workspace) failLocked(source string, err error, elapsed time.Duration) {
	ws.observe(classifyError(err), elapsed, 0)
	ws.message = err.Error()
	ws.failed = true

	log.Printf("Failed to load %s: %v", source, err)
	events.LogEvent(events.Event{Type: events.LoadFailed, Source: source, Detail: err.Error()})
}

func (ws *Workspace) observe(result string, elapsed time.Duration, samples int) {
	if ws.cfg.Recorder != nil {
		ws.cfg.Recorder.ObservePipeline(result, elapsed, samples)
	}
}

// Start plays the current dataset from the beginning. It returns false when
// nothing is loaded.
func (ws *Workspace) Start() bool {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if !ws.engine.Start() {
		return false
	}
	events.LogEvent(events.Event{
		Type:   events.PlaybackStarted,
		Source: ws.dataset.Source,
		Detail: fmt.Sprintf("%d frames", ws.dataset.Len()),
	})
	return true
}

// Stop halts playback, leaving the last frame on screen
func (ws *Workspace) Stop() {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	// Playback may have finished on its own since the caller looked
	if !ws.engine.Stop() {
		return
	}

	events.LogEvent(events.Event{
		Type:   events.PlaybackStopped,
		Source: ws.dataset.Source,
		Detail: fmt.Sprintf("at sample %d", ws.engine.Cursor()),
	})
}

// Dataset returns the installed dataset, nil before the first successful load
func (ws *Workspace) Dataset() *Dataset {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.dataset
}

// Params returns the current smoothing parameters
func (ws *Workspace) Params() Params {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.params
}

// Status returns the status line and a summary of the workspace
func (ws *Workspace) Status() Status {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	status := Status{
		Message: ws.message,
		Error:   ws.failed,
		Params:  ws.params,
		State:   ws.engine.State().String(),
		Cursor:  ws.engine.Cursor(),
	}
	if ws.dataset != nil {
		status.Source = ws.dataset.Source
		status.Samples = ws.dataset.Len()
	}
	return status
}

// Current returns the frame currently on screen
func (ws *Workspace) Current() (playback.Frame, bool) {
	return ws.engine.Current()
}

// finished runs with the engine locked, so it must not take ws.mu
func (ws *Workspace) finished(frames int) {
	events.LogEvent(events.Event{
		Type:   events.PlaybackFinished,
		Source: "playback",
		Detail: fmt.Sprintf("%d frames", frames),
	})
}

func (ws *Workspace) stateChanged(s playback.State) {
	if ws.cfg.OnState != nil {
		ws.cfg.OnState(s)
	}
}

// classifyError maps a pipeline error to a Recorder result label
func classifyError(err error) string {
	var schemaErr *telemetry.SchemaError
	var missingErr *telemetry.AllMissingError
	var domainErr *DomainError

	switch {
	case err == nil:
		return ResultOK
	case errors.As(err, &schemaErr):
		return ResultSchemaError
	case errors.As(err, &missingErr):
		return ResultAllMissing
	case errors.As(err, &domainErr):
		return ResultDomainError
	default:
		return ResultReadError
	}
}
