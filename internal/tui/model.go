package tui

import (
	"context"
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/gridsum/internal/config"
	apperrors "github.com/agbru/gridsum/internal/errors"
	"github.com/agbru/gridsum/internal/format"
	"github.com/agbru/gridsum/internal/grid"
	"github.com/agbru/gridsum/internal/orchestration"
	"github.com/agbru/gridsum/internal/sysmon"
)

// Layout constants for the dashboard.
const (
	headerHeight            = 1
	footerHeight            = 1
	minBodyHeight           = 8
	PartitionsPanelWidthPct = 60
	tickInterval            = 500 * time.Millisecond
)

// ExecutionState holds the execution-related fields of a TUI session.
type ExecutionState struct {
	ctx        context.Context
	cancel     context.CancelFunc
	generation uint64
	done       bool
	exitCode   int
}

// LayoutManager holds terminal dimensions and derives panel sizes.
type LayoutManager struct {
	width  int
	height int
}

func (l LayoutManager) bodyHeight() int {
	return max(l.height-headerHeight-footerHeight, minBodyHeight)
}

func (l LayoutManager) partitionsWidth() int {
	return l.width * PartitionsPanelWidthPct / 100
}

func (l LayoutManager) metricsWidth() int {
	return l.width - l.partitionsWidth()
}

// Model is the root bubbletea model for the dashboard.
type Model struct {
	header     HeaderModel
	partitions PartitionsModel
	metrics    MetricsModel
	footer     FooterModel

	keymap KeyMap

	ExecutionState
	LayoutManager

	parentCtx context.Context
	reducer   *orchestration.Reducer
	grid      grid.Grid
	config    config.AppConfig
	ref       *programRef
	paused    bool
}

// NewModel creates the dashboard for one grid. cfg.Workers must already be
// resolved.
func NewModel(parentCtx context.Context, r *orchestration.Reducer, g grid.Grid, cfg config.AppConfig, version string) Model {
	ctx, cancel := context.WithCancel(parentCtx)
	keys := DefaultKeyMap()
	return Model{
		header:     NewHeaderModel(version, g.Rows(), g.Cols(), cfg.Workers),
		partitions: NewPartitionsModel(cfg.Workers),
		metrics:    NewMetricsModel(),
		footer:     NewFooterModel(keys),
		keymap:     keys,
		ExecutionState: ExecutionState{
			ctx:      ctx,
			cancel:   cancel,
			exitCode: apperrors.ExitSuccess,
		},
		parentCtx: parentCtx,
		reducer:   r,
		grid:      g,
		config:    cfg,
		ref:       &programRef{},
	}
}

// Init starts sampling, the reduction and the context watcher.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		startReductionCmd(m.ref, m.ctx, m.reducer, m.grid, m.config, m.generation),
		watchContextCmd(m.ctx, m.generation),
	)
}

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layoutPanels()
		return m, nil

	case ProgressMsg:
		if msg.Generation == m.generation && !m.paused {
			m.partitions.Update(msg.PartitionIndex, msg.Value)
			m.metrics.UpdateProgress(msg.AverageProgress, msg.ETA)
		}
		return m, nil

	case ProgressDoneMsg:
		return m, nil

	case FinalResultMsg:
		if msg.Generation != m.generation {
			return m, nil
		}
		m.partitions.SetResult(msg.Result.Partials)
		m.metrics.SetSum(format.FormatSum(msg.Result.Sum))
		return m, nil

	case ErrorMsg:
		if msg.Generation != m.generation {
			return m, nil
		}
		m.metrics.SetError(msg.Err)
		m.footer.SetError(true)
		return m, nil

	case ReductionCompleteMsg:
		if msg.Generation != m.generation {
			return m, nil
		}
		m.done = true
		m.exitCode = msg.ExitCode
		m.header.SetDone()
		m.footer.SetDone(true)
		return m, nil

	case ContextCancelledMsg:
		if msg.Generation != m.generation {
			return m, nil
		}
		m.done = true
		m.header.SetDone()
		m.footer.SetDone(true)
		return m, tea.Quit

	case TickMsg:
		if m.done || m.paused {
			return m, tickCmd()
		}
		return m, tea.Batch(sampleMemStatsCmd(), sampleSysStatsCmd(), tickCmd())

	case MemStatsMsg:
		m.metrics.UpdateMemStats(msg)
		return m, nil

	case SysStatsMsg:
		m.metrics.UpdateSysStats(msg)
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Pause):
		m.paused = !m.paused
		m.footer.SetPaused(m.paused)
		return m, nil

	case key.Matches(msg, m.keymap.Rerun):
		if m.cancel != nil {
			m.cancel()
		}
		m.generation++
		m.ctx, m.cancel = context.WithCancel(m.parentCtx)

		m.header.Reset()
		m.partitions.Reset()
		m.metrics = NewMetricsModel()
		m.footer.SetDone(false)
		m.footer.SetError(false)
		m.footer.SetPaused(false)
		m.layoutPanels()
		m.done = false
		m.paused = false
		m.exitCode = apperrors.ExitSuccess

		return m, tea.Batch(
			startReductionCmd(m.ref, m.ctx, m.reducer, m.grid, m.config, m.generation),
			watchContextCmd(m.ctx, m.generation),
		)

	case key.Matches(msg, m.keymap.Up):
		m.partitions.ScrollUp()
	case key.Matches(msg, m.keymap.Down):
		m.partitions.ScrollDown()
	}
	return m, nil
}

// View renders the entire dashboard.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, m.partitions.View(), m.metrics.View())
	return lipgloss.JoinVertical(lipgloss.Left, m.header.View(), body, m.footer.View())
}

func (m *Model) layoutPanels() {
	m.header.SetWidth(m.width)
	m.footer.SetWidth(m.width)
	m.partitions.SetSize(m.partitionsWidth(), m.bodyHeight())
	m.metrics.SetSize(m.metricsWidth(), m.bodyHeight())
}

// ExitCode returns the exit code of the last finished run.
func (m Model) ExitCode() int { return m.exitCode }

// Run is the public entry point for the TUI mode. It runs the dashboard
// until the user quits or ctx is cancelled and returns the exit code.
func Run(ctx context.Context, r *orchestration.Reducer, g grid.Grid, cfg config.AppConfig, version string) int {
	initTUIStyles()

	model := NewModel(ctx, r, g, cfg, version)
	defer model.cancel()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	model.ref.SetProgram(p)

	finalModel, err := p.Run()
	if err != nil {
		if ctx.Err() != nil {
			return apperrors.ExitErrorCanceled
		}
		return apperrors.ExitErrorGeneric
	}
	if m, ok := finalModel.(Model); ok {
		m.cancel()
		return m.exitCode
	}
	return apperrors.ExitSuccess
}

// startReductionCmd runs one reduction under the configured timeout and
// reports through the bridge.
func startReductionCmd(ref *programRef, ctx context.Context, r *orchestration.Reducer, g grid.Grid, cfg config.AppConfig, gen uint64) tea.Cmd {
	return func() tea.Msg {
		reporter := &TUIProgressReporter{ref: ref, generation: gen}
		presenter := &TUIResultPresenter{ref: ref, generation: gen}

		runCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()

		res, err := orchestration.ExecuteReduction(runCtx, r, g, cfg.Workers, reporter, io.Discard)
		if err != nil {
			err = apperrors.WrapTimeout(err, "sum", cfg.Timeout)
			return ReductionCompleteMsg{ExitCode: presenter.HandleError(err, res.Duration, io.Discard), Generation: gen}
		}
		presenter.PresentResult(res, orchestration.PresentationOptions{Details: cfg.Details, Verbose: cfg.Verbose}, io.Discard)
		return ReductionCompleteMsg{ExitCode: apperrors.ExitSuccess, Generation: gen}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func sampleMemStatsCmd() tea.Cmd {
	return func() tea.Msg {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		return MemStatsMsg{
			Alloc:        ms.Alloc,
			HeapSys:      ms.HeapSys,
			NumGC:        ms.NumGC,
			PauseTotalNs: ms.PauseTotalNs,
			NumGoroutine: runtime.NumGoroutine(),
		}
	}
}

func sampleSysStatsCmd() tea.Cmd {
	return func() tea.Msg {
		s := sysmon.Sample()
		return SysStatsMsg{CPUPercent: s.CPUPercent, MemPercent: s.MemPercent}
	}
}

// watchContextCmd waits for the run context to end.
func watchContextCmd(ctx context.Context, gen uint64) tea.Cmd {
	return func() tea.Msg {
		<-ctx.Done()
		return ContextCancelledMsg{Err: ctx.Err(), Generation: gen}
	}
}
