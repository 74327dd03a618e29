package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/gravsim/internal/analysis"
	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/export"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/sim"
	"github.com/san-kum/gravsim/internal/storage"
	"github.com/san-kum/gravsim/internal/viz"
)

var (
	dataDir    string
	configFile string
	step       float64
	endTime    string
	verbose    bool
	stride     int
	record     bool
	theme      string
	outPath    string
	svgSize    int
	svgCanvas  bool
	plotWidth  int
	plotHeight int
	sweepSteps []float64
	perturb    float64

	log = logrus.New()
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "gravsim",
		Short:        "2-D gravitational n-body simulator",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
			if verbose {
				log.SetLevel(logrus.DebugLevel)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".gravsim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	addSystemFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVar(&configFile, "config", "", "system file path (yaml)")
		cmd.Flags().Float64Var(&step, "step", config.DefaultStep, "time step in seconds")
		cmd.Flags().StringVar(&endTime, "end", "", "end time in seconds, or inf")
	}

	runCmd := &cobra.Command{
		Use:   "run [system]",
		Short: "run a system to its end time and record it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addSystemFlags(runCmd)
	runCmd.Flags().IntVar(&stride, "stride", 1, "record every n-th step")

	liveCmd := &cobra.Command{
		Use:   "live [system]",
		Short: "watch a system in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addSystemFlags(liveCmd)
	liveCmd.Flags().BoolVar(&record, "record", false, "save the run when the view closes")
	liveCmd.Flags().IntVar(&stride, "stride", 1, "record every n-th step")
	liveCmd.Flags().StringVar(&theme, "theme", "space", "colour theme ("+strings.Join(viz.ThemeNames(), ", ")+")")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot recorded trajectories",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotWidth, "width", 60, "plot width in cells")
	plotCmd.Flags().IntVar(&plotHeight, "height", 30, "plot height in cells")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export trajectories to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default <run_id>.svg)")
	exportSVGCmd.Flags().IntVar(&svgSize, "size", 800, "image size in pixels")
	exportSVGCmd.Flags().BoolVar(&svgCanvas, "canvas", false, "render the terminal plot's dot canvas instead of paths")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets [name]",
		Short: "list presets, or print one as a system file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showPresets,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [system]",
		Short: "compare step sizes on the same system",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addSystemFlags(sweepCmd)
	sweepCmd.Flags().Float64SliceVar(&sweepSteps, "steps", []float64{3600, 21600, 86400}, "step sizes to compare")

	chaosCmd := &cobra.Command{
		Use:   "chaos [system]",
		Short: "estimate how fast nearby trajectories separate",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runChaos,
	}
	addSystemFlags(chaosCmd)
	chaosCmd.Flags().Float64Var(&perturb, "perturb", 1e3, "initial displacement of the last body in metres")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportSVGCmd, exportJSONCmd, presetsCmd, sweepCmd, chaosCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadSystem resolves the system from --config, a preset name or a YAML
// path, then applies flags the user set explicitly.
func loadSystem(cmd *cobra.Command, args []string) (*config.System, error) {
	var sys *config.System
	switch {
	case configFile != "":
		s, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		sys = s
	case len(args) == 1:
		if s := config.GetPreset(args[0]); s != nil {
			sys = s
		} else if _, err := os.Stat(args[0]); err == nil {
			s, err := config.Load(args[0])
			if err != nil {
				return nil, fmt.Errorf("failed to load config: %w", err)
			}
			sys = s
		} else {
			return nil, fmt.Errorf("unknown system %q (presets: %v)", args[0], config.ListPresets())
		}
	default:
		sys = config.GetPreset("solar")
	}

	if cmd.Flags().Changed("step") {
		sys.Step = step
	}
	if cmd.Flags().Changed("end") {
		e, err := config.ParseEndTime(endTime)
		if err != nil {
			return nil, err
		}
		sys.EndTime = e
	}

	log.WithFields(logrus.Fields{
		"system": sys.Name,
		"bodies": len(sys.Bodies),
		"step":   sys.Step,
		"end":    sys.EndTime.String(),
	}).Debug("system loaded")

	return sys, nil
}

// A body further than escapeFactor times the initial spread from the centre
// of mass counts as escaped.
const escapeFactor = 10

type session struct {
	sys      *config.System
	engine   *sim.Engine
	recorder *storage.Recorder
	metrics  metrics.Set
}

func newSession(sys *config.System) (*session, error) {
	cfg, err := sys.EngineConfig()
	if err != nil {
		return nil, err
	}

	s := &session{
		sys:      sys,
		recorder: storage.NewRecorder(stride),
		metrics: metrics.Set{
			metrics.NewEnergyDrift(physics.NewForceField()),
			metrics.NewMomentumDrift(),
			metrics.NewAngularMomentumDrift(),
			metrics.NewBoundStability(escapeFactor),
		},
	}
	s.recorder.Start(cfg.Bodies)
	s.metrics.Start(cfg.Bodies)

	s.engine, err = sim.New(cfg,
		sim.WithLogger(log),
		sim.WithObserver(s.recorder),
		sim.WithObserver(s.metrics),
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *session) save(status string, runErr error) (string, error) {
	st := storage.New(dataDir).WithLogger(log)
	if err := st.Init(); err != nil {
		return "", err
	}

	meta := storage.RunMetadata{
		System:   s.sys.Name,
		Step:     s.sys.Step,
		EndTime:  s.sys.EndTime.String(),
		Steps:    s.engine.Steps(),
		Duration: s.engine.Time(),
		Status:   status,
		Metrics:  s.metrics.Values(),
	}
	if runErr != nil {
		meta.Error = runErr.Error()
	}
	labels := s.sys.Labels()
	for i, b := range s.sys.Bodies {
		meta.Bodies = append(meta.Bodies, storage.BodyMetadata{
			Label: labels[i],
			Mass:  b.Mass,
			Color: b.Color,
		})
	}

	rec := s.recorder.Recording()
	rec.Labels = labels
	return st.Save(meta, rec)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	sys, err := loadSystem(cmd, args)
	if err != nil {
		return err
	}
	if sys.EndTime.Unbounded() {
		return fmt.Errorf("system %q has no end time; pass --end or use live", sys.Name)
	}

	s, err := newSession(sys)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	runErr := s.engine.Run(ctx, func(sim.Snapshot) bool { return true })
	elapsed := time.Since(start)

	status := "completed"
	switch {
	case errors.Is(runErr, context.Canceled):
		status = "interrupted"
	case runErr != nil:
		status = "failed"
	}

	log.WithFields(logrus.Fields{
		"steps":   s.engine.Steps(),
		"elapsed": elapsed.Round(time.Millisecond),
		"status":  status,
	}).Info("run finished")

	runID, err := s.save(status, runErr)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", runID)
	fmt.Printf("simulated: %s in %d steps\n", viz.FormatDuration(s.engine.Time()), s.engine.Steps())
	printMetrics(s.metrics)
	printSeries(s.metrics)

	if status == "failed" {
		return runErr
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	sys, err := loadSystem(cmd, args)
	if err != nil {
		return err
	}

	s, err := newSession(sys)
	if err != nil {
		return err
	}

	viz.SetTheme(theme)

	// the alt screen owns the terminal while the view is up
	log.SetLevel(logrus.WarnLevel)
	final, err := viz.Run(viz.NewModel(s.engine, sys.Name, sys.Labels()))
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
	if err != nil {
		return err
	}

	if final.Err() != nil {
		fmt.Fprintf(os.Stderr, "simulation stopped: %v\n", final.Err())
	}

	if record {
		status := "stopped"
		switch {
		case final.Err() != nil:
			status = "failed"
		case final.Done():
			status = "completed"
		}
		runID, err := s.save(status, final.Err())
		if err != nil {
			return err
		}
		fmt.Printf("run: %s\n", runID)
	}
	return nil
}

func printMetrics(set metrics.Set) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, m := range set {
		fmt.Fprintf(w, "%s\t%.3e\n", m.Name(), m.Value())
	}
	w.Flush()
}

func printSeries(set metrics.Set) {
	for _, m := range set {
		if e, ok := m.(*metrics.EnergyDrift); ok {
			fmt.Printf("energy: %s\n", e.Summary())
		}
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir).WithLogger(log)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSYSTEM\tTIME\tBODIES\tSTEP\tSIMULATED\tSTATUS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%gs\t%s\t%s\n",
			run.ID,
			run.System,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			len(run.Bodies),
			run.Step,
			viz.FormatDuration(run.Duration),
			run.Status,
		)
	}

	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, *storage.Recording, error) {
	st := storage.New(dataDir).WithLogger(log)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	rec, err := st.LoadPositions(runID)
	if err != nil {
		return nil, nil, err
	}
	if rec.Len() == 0 {
		return nil, nil, fmt.Errorf("no data to plot")
	}
	return meta, rec, nil
}

func displayFor(meta *storage.RunMetadata) sim.Display {
	d := sim.Display{}
	for _, b := range meta.Bodies {
		d.PointColors = append(d.PointColors, b.Color)
	}
	return d
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, rec, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("system: %s\n", meta.System)
	fmt.Printf("samples: %d over %s\n\n", rec.Len(), viz.FormatDuration(meta.Duration))

	fmt.Println(viz.PlotTrajectories(rec, displayFor(meta), plotWidth, plotHeight))

	maxPlots := 3
	for i := 1; i < len(rec.Labels) && i <= maxPlots; i++ {
		fmt.Println(viz.SeparationChart(rec, 0, i, plotWidth, 8))
		fmt.Println()
	}

	if rec.Len() < 2 {
		return nil
	}
	dt := rec.Times[1] - rec.Times[0]
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "BODY\tPERIOD ABOUT %s\n", rec.Labels[0])
	for i := 1; i < len(rec.Labels); i++ {
		sep := make([]float64, rec.Len())
		for k, p := range rec.Positions {
			sep[k] = r2.Norm(r2.Sub(p[i], p[0]))
		}
		period := "-"
		if T, err := analysis.Period(sep, dt); err == nil {
			period = viz.FormatDuration(T)
		}
		fmt.Fprintf(w, "%s\t%s\n", rec.Labels[i], period)
	}
	return w.Flush()
}

func exportSVG(cmd *cobra.Command, args []string) error {
	meta, rec, err := loadRun(args[0])
	if err != nil {
		return err
	}

	path := outPath
	if path == "" {
		path = meta.ID + ".svg"
	}
	var svg string
	if svgCanvas {
		// 4 px per sub-pixel; a cell is 2x4 sub-pixels
		svg = export.TrajectoryCanvasSVG(rec, displayFor(meta), max(svgSize/8, 1), max(svgSize/16, 1), 4)
	} else {
		svg = export.TrajectoriesToSVG(rec, displayFor(meta), svgSize)
	}
	if svg == "" {
		return fmt.Errorf("run %s has too few samples for a trajectory", meta.ID)
	}
	if err := export.WriteSVG(path, svg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, rec, err := loadRun(args[0])
	if err != nil {
		return err
	}

	if outPath == "" {
		return export.WriteJSON(os.Stdout, meta, rec)
	}
	if err := export.ExportJSON(outPath, meta, rec); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outPath)
	return nil
}

func showPresets(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		sys := config.GetPreset(args[0])
		if sys == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
		}
		data, err := yaml.Marshal(sys)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tBODIES\tSTEP\tEND")
	for _, name := range config.ListPresets() {
		sys := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t%gs\t%s\n", name, strings.Join(sys.Labels(), ","), sys.Step, sys.EndTime)
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	sys, err := loadSystem(cmd, args)
	if err != nil {
		return err
	}
	if sys.EndTime.Unbounded() {
		return fmt.Errorf("system %q has no end time; pass --end", sys.Name)
	}
	if len(sweepSteps) == 0 {
		return fmt.Errorf("no step sizes given")
	}

	cfgs := make([]sim.Config, len(sweepSteps))
	for i, h := range sweepSteps {
		cfg, err := sys.EngineConfig()
		if err != nil {
			return err
		}
		cfg.Step = h
		cfgs[i] = cfg
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := sim.NewEnsemble(cfgs, sim.WithLogger(log)).Run(ctx)
	if err != nil {
		return err
	}

	// the smallest successful step is the reference solution
	ref := sim.Reference(results)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tSTEPS\tENERGY DRIFT\tMAX OFFSET\tERROR")
	for _, r := range results {
		errText := "-"
		if r.Err != nil {
			errText = r.Err.Error()
		}
		fmt.Fprintf(w, "%gs\t%d\t%.3e\t%s\t%s\n",
			r.Config.Step, r.Steps, r.EnergyDrift, offsetText(r, results, ref), errText)
	}
	return w.Flush()
}

func runChaos(cmd *cobra.Command, args []string) error {
	sys, err := loadSystem(cmd, args)
	if err != nil {
		return err
	}
	cfg, err := sys.EngineConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := analysis.Divergence(ctx, cfg, perturb, sim.WithLogger(log))
	if err != nil {
		return err
	}
	if len(res.Times) < 2 {
		return fmt.Errorf("not enough steps to fit")
	}

	fmt.Println(asciigraph.Plot(res.LogSeparation,
		asciigraph.Height(10), asciigraph.Width(60),
		asciigraph.Caption("ln(separation / perturbation)")))
	fmt.Printf("\nexponent: %.3e 1/s\n", res.Exponent)
	if res.Exponent > 0 {
		fmt.Printf("e-folding time: %s\n", viz.FormatDuration(1/res.Exponent))
	}
	return nil
}

func offsetText(r sim.Result, results []sim.Result, ref int) string {
	if ref < 0 {
		return "-"
	}
	d, ok := sim.MaxOffset(r, results[ref])
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%.3e m", d)
}
