package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/covplay/internal/config"
	"github.com/san-kum/covplay/internal/coverage"
	"github.com/san-kum/covplay/internal/export"
	"github.com/san-kum/covplay/internal/logging"
	"github.com/san-kum/covplay/internal/logs"
	"github.com/san-kum/covplay/internal/metrics"
	"github.com/san-kum/covplay/internal/playback"
	"github.com/san-kum/covplay/internal/raster"
	"github.com/san-kum/covplay/internal/report"
	"github.com/san-kum/covplay/internal/storage"
	"github.com/san-kum/covplay/internal/synth"
	"github.com/san-kum/covplay/internal/tui"
	"github.com/san-kum/covplay/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	verbose    bool

	visitedPath string
	mapPath     string
	runID       string
	xLen        int
	yLen        int
	substeps    int
	frameRate   int
	theme       string
	cellSize    int

	output    string
	framesDir string
	plain     bool
	once      bool
	frame     int
	trail     bool
	plotPath  string
	htmlPath  string
	runName   string
	jsonOut   bool

	steps   int
	seed    int64
	outDir  string
	numRuns int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "covplay",
		Short:         "coverage-run playback renderer",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if !verbose {
				logging.SetLogger(nil)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".covplay", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "diagnostic logging")

	playCmd := &cobra.Command{
		Use:   "play",
		Short: "play a run in the terminal",
		RunE:  playRun,
	}
	addRunFlags(playCmd)
	playCmd.Flags().StringVar(&runID, "run", "", "stored run id")
	playCmd.Flags().StringVarP(&output, "output", "o", "", "also save the animation as a GIF")
	playCmd.Flags().BoolVar(&plain, "plain", false, "plain ANSI output instead of the interactive player")
	playCmd.Flags().BoolVar(&once, "once", false, "exit after the last frame")

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "render a run to an animated GIF",
		RunE:  renderRun,
	}
	addRunFlags(renderCmd)
	renderCmd.Flags().StringVar(&runID, "run", "", "stored run id")
	renderCmd.Flags().StringVarP(&output, "output", "o", "", "GIF output path")
	renderCmd.Flags().StringVar(&framesDir, "frames-dir", "", "also write one PNG per frame")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "render one frame to SVG or PNG",
		RunE:  snapshotRun,
	}
	addRunFlags(snapshotCmd)
	snapshotCmd.Flags().StringVar(&runID, "run", "", "stored run id")
	snapshotCmd.Flags().IntVar(&frame, "frame", 0, "frame index")
	snapshotCmd.Flags().StringVarP(&output, "output", "o", "frame.svg", "output path (.svg or .png)")
	snapshotCmd.Flags().BoolVar(&trail, "trail", false, "draw the visited path (svg only)")

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "coverage statistics for a run",
		RunE:  statsRun,
	}
	addRunFlags(statsCmd)
	statsCmd.Flags().StringVar(&runID, "run", "", "stored run id")
	statsCmd.Flags().StringVar(&plotPath, "plot", "", "save coverage plot (png)")
	statsCmd.Flags().StringVar(&htmlPath, "html", "", "save coverage report (html)")

	importCmd := &cobra.Command{
		Use:   "import",
		Short: "store a pair of logs as a run",
		RunE:  importRun,
	}
	addRunFlags(importCmd)
	importCmd.Flags().StringVar(&runName, "name", "", "run name (default: log directory)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}
	listCmd.Flags().BoolVar(&jsonOut, "json", false, "print as json")

	synthCmd := &cobra.Command{
		Use:   "synth",
		Short: "generate a synthetic run",
		RunE:  synthRun,
	}
	synthCmd.Flags().IntVar(&xLen, "x-len", 10, "grid width")
	synthCmd.Flags().IntVar(&yLen, "y-len", 10, "grid height")
	synthCmd.Flags().IntVar(&steps, "steps", 100, "timesteps")
	synthCmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	synthCmd.Flags().StringVar(&outDir, "out-dir", "synth", "output directory")
	synthCmd.Flags().IntVar(&numRuns, "runs", 1, "summarize this many seeds instead of writing logs")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tGRID\tSUBSTEPS\tFPS\tTHEME")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%dx%d\t%d\t%d\t%s\n",
					name, p.Grid.XLen, p.Grid.YLen, p.Playback.Substeps, p.Playback.FrameRate, p.Render.Theme)
			}
			return w.Flush()
		},
	}

	rootCmd.AddCommand(playCmd, renderCmd, snapshotCmd, statsCmd, importCmd, listCmd, synthCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&visitedPath, "visited", "", "visited-path log")
	cmd.Flags().StringVar(&mapPath, "map", "", "map-dynamics log")
	cmd.Flags().IntVar(&xLen, "x-len", 0, "grid width")
	cmd.Flags().IntVar(&yLen, "y-len", 0, "grid height")
	cmd.Flags().IntVar(&substeps, "substeps", config.DefaultSubsteps, "frames per timestep")
	cmd.Flags().IntVar(&frameRate, "fps", config.DefaultFrameRate, "frame rate")
	cmd.Flags().StringVar(&theme, "theme", config.DefaultTheme, "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")
	cmd.Flags().IntVar(&cellSize, "cell-size", config.DefaultCellSize, "pixels per cell (gif/png/svg)")
}

// loadConfig merges the config file, preset and flags, in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg.Apply(p)
	}

	flags := cmd.Flags()
	if flags.Changed("visited") {
		cfg.Logs.Visited = visitedPath
	}
	if flags.Changed("map") {
		cfg.Logs.Map = mapPath
	}
	if flags.Changed("x-len") {
		cfg.Grid.XLen = xLen
	}
	if flags.Changed("y-len") {
		cfg.Grid.YLen = yLen
	}
	if flags.Changed("substeps") {
		cfg.Playback.Substeps = substeps
	}
	if flags.Changed("fps") {
		cfg.Playback.FrameRate = frameRate
	}
	if flags.Changed("theme") {
		cfg.Render.Theme = theme
	}
	if flags.Changed("cell-size") {
		cfg.Render.CellSize = cellSize
	}
	if flags.Lookup("output") != nil && flags.Changed("output") {
		cfg.Output = output
	}
	return cfg, nil
}

// loadRun resolves the run named by --run, or the log pair from the config
// and flags. A stored run keeps its recorded grid unless the grid flags are
// set.
func loadRun(cmd *cobra.Command) (*coverage.Run, *config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	var run *coverage.Run
	if runID != "" {
		st := storage.New(dataDir)
		stored, meta, err := st.LoadRun(runID)
		if err != nil {
			return nil, nil, err
		}
		if !cmd.Flags().Changed("x-len") {
			cfg.Grid.XLen = meta.Grid.XLen
		}
		if !cmd.Flags().Changed("y-len") {
			cfg.Grid.YLen = meta.Grid.YLen
		}
		run = stored
	} else {
		if cfg.Logs.Visited == "" || cfg.Logs.Map == "" {
			return nil, nil, fmt.Errorf("%w: need --visited and --map, or --run", coverage.ErrInvalidConfig)
		}
		visited, err := logs.LoadVisited(cfg.Logs.Visited)
		if err != nil {
			return nil, nil, err
		}
		dyn, err := logs.LoadMap(cfg.Logs.Map)
		if err != nil {
			return nil, nil, err
		}
		run = &coverage.Run{Visited: visited, Map: dyn}
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	run.Grid = cfg.Grid
	return run, cfg, nil
}

func newDriver(run *coverage.Run, cfg *config.Config) (*playback.Driver, error) {
	return playback.New(run.Visited, run.Map, run.Grid,
		playback.WithSubsteps(cfg.Playback.Substeps),
		playback.WithFrameRate(cfg.Playback.FrameRate),
	)
}

func rasterOptions(cfg *config.Config) raster.Options {
	return raster.Options{
		CellSize:    cfg.Render.CellSize,
		AgentRadius: cfg.Render.AgentRadius,
		Theme:       viz.GetTheme(cfg.Render.Theme),
	}
}

func interruptContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func playRun(cmd *cobra.Command, args []string) error {
	run, cfg, err := loadRun(cmd)
	if err != nil {
		return err
	}
	d, err := newDriver(run, cfg)
	if err != nil {
		return err
	}

	ctx, cancel := interruptContext()
	defer cancel()

	if cfg.Output != "" {
		fmt.Printf("rendering %d frames to %s...\n", d.Frames(), cfg.Output)
		if err := raster.WriteGIF(ctx, d, rasterOptions(cfg), cfg.Output, ""); err != nil {
			return err
		}
	}

	if plain {
		r := tui.NewLiveRenderer(os.Stdout, d.Interval())
		r.Start()
		defer r.Stop()
		return d.Run(ctx, r, r.OnFrame)
	}

	series, err := metrics.Collect(ctx, run.Visited, run.Map, run.Grid)
	if err != nil {
		return err
	}
	m, err := newPlayer(d, cfg, series, once)
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(viz.Model); ok && fm.Err() != nil {
		return fm.Err()
	}
	return nil
}

// newPlayer builds the interactive player for d. With once set the program
// quits after the last frame instead of waiting for a key.
func newPlayer(d *playback.Driver, cfg *config.Config, series *metrics.Series, once bool) (viz.Model, error) {
	m, err := viz.NewModel(d, viz.GetTheme(cfg.Render.Theme), series)
	if err != nil {
		return viz.Model{}, err
	}
	return m.QuitAtEnd(once), nil
}

func renderRun(cmd *cobra.Command, args []string) error {
	run, cfg, err := loadRun(cmd)
	if err != nil {
		return err
	}
	if cfg.Output == "" {
		return fmt.Errorf("%w: --output is required", coverage.ErrInvalidConfig)
	}
	d, err := newDriver(run, cfg)
	if err != nil {
		return err
	}

	ctx, cancel := interruptContext()
	defer cancel()

	fmt.Printf("rendering %d frames (%d timesteps x %d substeps) at %d fps...\n",
		d.Frames(), d.Timesteps(), d.Substeps(), d.FrameRate())
	if err := raster.WriteGIF(ctx, d, rasterOptions(cfg), cfg.Output, framesDir); err != nil {
		return err
	}
	fmt.Printf("saved: %s\n", cfg.Output)
	if framesDir != "" {
		fmt.Printf("frames: %s\n", framesDir)
	}
	return nil
}

func snapshotRun(cmd *cobra.Command, args []string) error {
	run, cfg, err := loadRun(cmd)
	if err != nil {
		return err
	}
	d, err := newDriver(run, cfg)
	if err != nil {
		return err
	}

	path := output
	if strings.EqualFold(filepath.Ext(path), ".png") {
		err = raster.SnapshotPNG(d, rasterOptions(cfg), frame, path)
	} else {
		svg := export.NewSVG(viz.GetTheme(cfg.Render.Theme), float64(cfg.Render.CellSize))
		svg.AgentRadius = cfg.Render.AgentRadius
		svg.Trail = trail
		err = export.Snapshot(d, svg, frame, path)
	}
	if err != nil {
		return err
	}
	fmt.Printf("saved: %s (frame %d, %s)\n", path, frame, playback.Label(d.State().Timestep))
	return nil
}

func statsRun(cmd *cobra.Command, args []string) error {
	run, cfg, err := loadRun(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := interruptContext()
	defer cancel()

	series, err := metrics.Collect(ctx, run.Visited, run.Map, run.Grid)
	if err != nil {
		return err
	}
	sum := metrics.Summarize(series)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "grid\t%dx%d\n", run.Grid.XLen, run.Grid.YLen)
	fmt.Fprintf(w, "timesteps\t%d\n", sum.Timesteps)
	fmt.Fprintf(w, "final coverage\t%.1f%%\n", sum.FinalCoverage*100)
	fmt.Fprintf(w, "occupied\t%.2f ± %.2f (max %.0f)\n", sum.MeanOccupied, sum.StdOccupied, sum.MaxOccupied)
	fmt.Fprintf(w, "covered occupied\tmax %.0f\n", sum.MaxCoveredOcc)
	fmt.Fprintf(w, "time to 50%%\t%s\n", timestepOrNever(sum.TimeTo50))
	fmt.Fprintf(w, "time to 90%%\t%s\n", timestepOrNever(sum.TimeTo90))
	if err := w.Flush(); err != nil {
		return err
	}

	if series.Len() > 1 {
		cov := series.Values("coverage")
		pct := make([]float64, len(cov))
		for i, v := range cov {
			pct[i] = v * 100
		}
		fmt.Println()
		fmt.Println(asciigraph.Plot(pct,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("coverage % vs timestep"),
		))
		fmt.Println()
		fmt.Println(asciigraph.Plot(series.Values("occupied"),
			asciigraph.Height(6),
			asciigraph.Width(80),
			asciigraph.Caption("occupied cells vs timestep"),
		))
	}

	if plotPath != "" {
		if err := report.SavePlot(plotPath, series, run.Grid.Size()); err != nil {
			return err
		}
		fmt.Printf("plot: %s\n", plotPath)
	}
	if htmlPath != "" {
		title := runID
		if title == "" {
			title = filepath.Base(filepath.Dir(cfg.Logs.Visited))
		}
		if err := report.SaveHTML(htmlPath, title, series, sum); err != nil {
			return err
		}
		fmt.Printf("report: %s\n", htmlPath)
	}
	return nil
}

func timestepOrNever(t int) string {
	if t < 0 {
		return "never"
	}
	return fmt.Sprintf("t=%d", t)
}

func importRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Logs.Visited == "" || cfg.Logs.Map == "" {
		return fmt.Errorf("%w: need --visited and --map", coverage.ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	id, err := st.Import(runName, cfg.Grid, cfg.Logs.Visited, cfg.Logs.Map)
	if err != nil {
		return err
	}
	meta, err := st.Load(id)
	if err != nil {
		return err
	}

	fmt.Printf("run id: %s\n", id)
	fmt.Printf("timesteps: %d\n", meta.Timesteps)
	fmt.Println("\nmetrics:")
	for _, name := range []string{"final_coverage", "mean_occupied", "max_occupied", "max_covered_occupied", "time_to_50", "time_to_90"} {
		fmt.Printf("  %s: %.4f\n", name, meta.Metrics[name])
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if jsonOut {
		return storage.WriteJSON(os.Stdout, runs)
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tGRID\tSTEPS\tCOVERAGE")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%dx%d\t%d\t%.1f%%\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Grid.XLen, run.Grid.YLen,
			run.Timesteps,
			run.Metrics["final_coverage"]*100,
		)
	}
	return w.Flush()
}

func synthRun(cmd *cobra.Command, args []string) error {
	cfg := synth.DefaultConfig()
	cfg.Grid = coverage.Grid{XLen: xLen, YLen: yLen}
	cfg.Steps = steps
	cfg.Seed = seed

	if numRuns > 1 {
		return synthEnsemble(cfg)
	}

	run, err := synth.New(cfg).Generate()
	if err != nil {
		return err
	}
	vPath, mPath, err := synth.WriteRun(outDir, run)
	if err != nil {
		return err
	}

	fmt.Printf("visited: %s\n", vPath)
	fmt.Printf("map: %s\n", mPath)
	fmt.Printf("play with: covplay play --visited %s --map %s --x-len %d --y-len %d\n", vPath, mPath, xLen, yLen)
	return nil
}

func synthEnsemble(cfg synth.Config) error {
	ctx, cancel := interruptContext()
	defer cancel()

	summaries, err := synth.NewEnsemble(cfg, numRuns, cfg.Seed).Run(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tCOVERAGE\tMEAN OCC\tT50\tT90")
	for i, sum := range summaries {
		fmt.Fprintf(w, "%d\t%.1f%%\t%.2f\t%s\t%s\n",
			cfg.Seed+int64(i),
			sum.FinalCoverage*100,
			sum.MeanOccupied,
			timestepOrNever(sum.TimeTo50),
			timestepOrNever(sum.TimeTo90),
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nmean final coverage: %.1f%% over %d runs\n", synth.MeanFinalCoverage(summaries)*100, len(summaries))
	return nil
}
