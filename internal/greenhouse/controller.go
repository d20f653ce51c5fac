package greenhouse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/i474232898/greenhouse-dashboard/internal/selector"
)

// State is the phase of the dashboard view.
type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateEmpty   State = "empty"
)

var (
	// ErrIndexOutOfRange is returned by Select for an index outside the file list.
	ErrIndexOutOfRange = errors.New("selection index out of range")
	// ErrSuperseded is returned when a newer selection or reload replaced the
	// one that produced the result; the result was not applied.
	ErrSuperseded = errors.New("superseded by a newer request")
)

// ControllerOptions tunes how presentation state is derived.
type ControllerOptions struct {
	LabelDensity int
	DateLayout   string
}

// View is a snapshot of the controller, safe to hand to other goroutines.
type View struct {
	State         State             `json:"state"`
	Loading       bool              `json:"loading"`
	Files         []FileDescriptor  `json:"files"`
	SelectedIndex int               `json:"selectedIndex"`
	Series        ChartSeries       `json:"series"`
	Presentation  PresentationState `json:"presentation"`
}

// SelectedFile returns the descriptor of the selected file.
func (v View) SelectedFile() (FileDescriptor, bool) {
	if v.SelectedIndex < 0 || v.SelectedIndex >= len(v.Files) {
		return FileDescriptor{}, false
	}
	return v.Files[v.SelectedIndex], true
}

// Controller owns the file selection and the chart built for it.
//
// Every record fetch is tagged with a generation number taken when it is
// dispatched; its result is applied only if no newer fetch was dispatched in
// the meantime. Dispatching a fetch also cancels the previous one.
type Controller struct {
	source Loader
	opts   ControllerOptions

	mu           sync.Mutex
	state        State
	loading      bool
	files        *selector.List[FileDescriptor]
	series       ChartSeries
	presentation PresentationState
	generation   uint64
	listGen      uint64
	cancel       context.CancelFunc
}

// NewController creates a controller in the loading state.
func NewController(source Loader, opts ControllerOptions) *Controller {
	if opts.LabelDensity <= 0 {
		opts.LabelDensity = DefaultLabelDensity
	}
	if opts.DateLayout == "" {
		opts.DateLayout = DefaultDateLayout
	}
	return &Controller{
		source:  source,
		opts:    opts,
		state:   StateLoading,
		loading: true,
		files:   selector.New[FileDescriptor](nil, fileLabel),
		series:  BuildChartSeries(nil),
	}
}

func fileLabel(f FileDescriptor) string {
	return f.DisplayDate
}

type recordFetch struct {
	ctx        context.Context
	cancel     context.CancelFunc
	generation uint64
	file       FileDescriptor
}

// Load fetches the file list and, when it is not empty, selects the first
// file and loads its records. A failed or empty list leaves the view empty.
func (c *Controller) Load(ctx context.Context) error {
	return c.reload(ctx, false)
}

// Refresh re-fetches the file list, keeps the selected file when it is still
// listed and reloads its records. A failed refresh keeps the current view.
func (c *Controller) Refresh(ctx context.Context) error {
	return c.reload(ctx, true)
}

func (c *Controller) reload(ctx context.Context, keepSelection bool) error {
	c.mu.Lock()
	c.listGen++
	listGen := c.listGen
	c.loading = true
	c.mu.Unlock()

	names, err := c.source.ListFiles(ctx)

	c.mu.Lock()
	if listGen != c.listGen {
		c.mu.Unlock()
		return ErrSuperseded
	}
	if err != nil {
		slog.Error("load file list failed", "error", err)
		if keepSelection && c.files.Len() > 0 {
			c.loading = false
		} else {
			c.resetLocked(nil)
		}
		c.mu.Unlock()
		return err
	}

	previous := ""
	if keepSelection {
		if f, ok := c.files.Selected(); ok {
			previous = f.FileName
		}
	}

	files := DescribeFiles(names, c.opts.DateLayout)
	if len(files) == 0 {
		slog.Info("gateway has no daily files")
		c.resetLocked(files)
		c.mu.Unlock()
		return nil
	}

	c.files = selector.New(files, fileLabel)
	index := 0
	for _, f := range files {
		if f.FileName == previous {
			index = f.Index
			break
		}
	}
	fetch, err := c.beginFetchLocked(ctx, index)
	c.mu.Unlock()
	if err != nil {
		return err
	}
	return c.finishFetch(fetch)
}

// Select switches to the file at index and loads its records.
func (c *Controller) Select(ctx context.Context, index int) error {
	c.mu.Lock()
	fetch, err := c.beginFetchLocked(ctx, index)
	c.mu.Unlock()
	if err != nil {
		return err
	}
	return c.finishFetch(fetch)
}

// View returns a copy of the current state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return View{
		State:         c.state,
		Loading:       c.loading,
		Files:         c.files.Items(),
		SelectedIndex: c.files.SelectedIndex(),
		Series:        c.series.Clone(),
		Presentation:  c.presentation,
	}
}

// resetLocked drops the selection and any in-flight fetch and enters the
// empty state with the given file list.
func (c *Controller) resetLocked(files []FileDescriptor) {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.generation++
	c.files = selector.New(files, fileLabel)
	c.state = StateEmpty
	c.loading = false
	c.series = BuildChartSeries(nil)
	c.presentation = PresentationState{}
}

func (c *Controller) beginFetchLocked(ctx context.Context, index int) (recordFetch, error) {
	if err := c.files.Select(index); err != nil {
		return recordFetch{}, fmt.Errorf("%w: %w", ErrIndexOutOfRange, err)
	}
	file, _ := c.files.Selected()

	if c.cancel != nil {
		c.cancel()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.generation++
	c.loading = true
	c.state = StateReady

	return recordFetch{
		ctx:        fetchCtx,
		cancel:     cancel,
		generation: c.generation,
		file:       file,
	}, nil
}

func (c *Controller) finishFetch(f recordFetch) error {
	defer f.cancel()
	readings, err := c.source.LoadRecords(f.ctx, f.file.FileName)

	c.mu.Lock()
	defer c.mu.Unlock()

	if f.generation != c.generation {
		slog.Debug("discarding stale records", "file", f.file.FileName, "generation", f.generation)
		return ErrSuperseded
	}
	c.cancel = nil
	c.loading = false

	if err != nil {
		slog.Error("load records failed", "file", f.file.FileName, "error", err)
		c.state = StateEmpty
		c.series = BuildChartSeries(nil)
		c.presentation = Present(f.file.FileName, c.series, c.opts.LabelDensity, c.opts.DateLayout)
		return err
	}

	c.series = BuildChartSeries(readings)
	c.presentation = Present(f.file.FileName, c.series, c.opts.LabelDensity, c.opts.DateLayout)
	if c.series.Len() == 0 {
		slog.Info("daily file has no records", "file", f.file.FileName)
		c.state = StateEmpty
		return nil
	}
	c.state = StateReady
	return nil
}
