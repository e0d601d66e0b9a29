package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ayusman/holoscan/internal/app"
	"github.com/ayusman/holoscan/internal/config"
	"github.com/ayusman/holoscan/internal/logging"
	"github.com/ayusman/holoscan/internal/metrics"
	"github.com/ayusman/holoscan/internal/overlay"
	"github.com/ayusman/holoscan/internal/plugin"
	"github.com/ayusman/holoscan/internal/scan"
	"github.com/ayusman/holoscan/internal/server"
	"github.com/ayusman/holoscan/internal/store"
	"github.com/ayusman/holoscan/internal/tray"
)

var version = "dev"

func main() {
	// A missing .env is normal.
	_ = config.Load()

	if err := newRootCmd(config.FromEnv()).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(svc config.Service) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "holoscan",
		Short: "Hold-to-scan hand scanner with a scripted reveal",
		Long: `Holoscan watches the camera for an open hand. Holding it still for the
hold duration completes the scan, plays the line sequence and then waits
for a tap to start the reveal video.

Examples:
  holoscan
  holoscan --addr :9090 --camera 1
  holoscan --pose-source browser --hold 3s`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), svc)
		},
	}

	f := cmd.Flags()
	f.StringVar(&svc.Addr, "addr", svc.Addr, "HTTP listen address")
	f.StringVar(&svc.DBPath, "db", svc.DBPath, "sqlite database path")
	f.IntVar(&svc.CameraID, "camera", svc.CameraID, "camera device id")
	f.StringVar(&svc.PluginDir, "plugins", svc.PluginDir, "plugin directory")
	f.StringVar(&svc.StaticDir, "static", svc.StaticDir, "directory of UI files to serve")
	f.StringVar(&svc.LogLevel, "log-level", svc.LogLevel, "debug, info, warn or error")
	f.BoolVar(&svc.Tray, "tray", svc.Tray, "show the system tray menu")
	f.StringVar(&svc.PoseSource, "pose-source", svc.PoseSource, "camera or browser")
	f.Float64Var(&svc.MotionThreshold, "motion-threshold", svc.MotionThreshold, "percent of changed pixels that counts as motion")
	f.StringVar(&svc.RevealURL, "reveal-url", svc.RevealURL, "reveal video URL")
	f.Float64Var(&svc.DriftThreshold, "drift", svc.DriftThreshold, "mean landmark drift below which the hand is still")
	f.DurationVar(&svc.HoldDuration, "hold", svc.HoldDuration, "stable time needed to complete a scan")
	f.DurationVar(&svc.TransitionDelay, "transition-delay", svc.TransitionDelay, "delay between scan completion and the sequence")
	f.DurationVar(&svc.LineEntrance, "line-entrance", svc.LineEntrance, "entrance animation length of each line")
	f.DurationVar(&svc.SequenceWindow, "sequence-window", svc.SequenceWindow, "time from sequence start to reveal")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("holoscan", version)
		},
	})
	return cmd
}

// sessionRef lets the hub be built before the session it controls.
type sessionRef struct {
	*scan.Session
}

func run(parent context.Context, svc config.Service) error {
	logging.Init(svc.LogLevel)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(filepath.Dir(svc.DBPath), 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	st, err := store.New(svc.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	scanCfg := svc.Scan()
	if data, err := json.Marshal(scanCfg); err == nil {
		if err := st.Settings().Set(store.SettingScanConfig, string(data)); err != nil {
			log.Warn().Err(err).Msg("save scan config")
		}
	}

	revealURL := func() string {
		if v, err := st.Settings().Get(store.SettingRevealURL); err == nil && v != "" {
			return v
		}
		return svc.RevealURL
	}

	m := metrics.New()
	skeleton := overlay.NewSkeleton(overlay.NeonStyle())
	feed := server.NewFrameFeed()

	ref := &sessionRef{}
	hubOpts := []server.HubOption{
		server.WithRevealURL(revealURL),
		server.WithClientCount(m.SetClients),
	}
	if svc.PoseSource == config.SourceBrowser {
		hubOpts = append(hubOpts, server.WithClientPoses())
	}
	hub := server.NewHub(ref, hubOpts...)

	pluginMgr := plugin.NewManager(svc.PluginDir)
	if err := pluginMgr.Discover(); err != nil {
		log.Warn().Err(err).Str("dir", svc.PluginDir).Msg("plugin discovery failed")
	}
	dispatcher := plugin.NewDispatcher(pluginMgr, plugin.NewExecutor(plugin.DefaultTimeout))

	journal := app.NewJournal(st)

	var tr *tray.Tray
	hooks := []scan.Hooks{
		hub.Hooks(),
		journal.Hooks(),
		m.Hooks(),
		app.PluginHooks(dispatcher, revealURL),
	}
	if svc.Tray {
		tr = tray.New()
		hooks = append(hooks, tr.Hooks())
	}

	sess, err := scan.NewSession(scanCfg, scan.Chain(hooks...),
		scan.WithRenderer(overlay.Multi{skeleton, hub}))
	if err != nil {
		return err
	}
	ref.Session = sess

	// The pose source starts first: if it cannot, the session never runs.
	var pipeline *app.App
	if svc.PoseSource != config.SourceBrowser {
		pipeline = app.New(app.Config{
			CameraID:        svc.CameraID,
			MotionThreshold: svc.MotionThreshold,
		}, sess,
			app.WithSkeleton(skeleton),
			app.WithFeed(feed),
			app.WithMetrics(m),
		)
		if err := pipeline.Start(ctx); err != nil {
			log.Error().Err(err).Msg("cannot start scanning")
			return err
		}
	}

	journalDone := make(chan struct{})
	go func() {
		journal.Run()
		close(journalDone)
	}()
	go dispatcher.Run(ctx)
	go sess.Run(ctx)

	srv := server.New(server.Config{
		StaticDir: svc.StaticDir,
		Session:   sess,
		Store:     st,
		Hub:       hub,
		Feed:      feed,
		Metrics:   m,
		RevealURL: revealURL,
	})

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- srv.ListenAndServe(ctx, svc.Addr)
		stop()
	}()

	log.Info().
		Str("addr", svc.Addr).
		Str("pose_source", svc.PoseSource).
		Dur("hold", scanCfg.HoldDuration).
		Msg("holoscan running")

	if tr != nil {
		tr.OnRestart(func() { sess.Reset() })
		tr.OnOpen(func() { openBrowser(localURL(svc.Addr)) })
		tr.OnQuit(stop)
		go func() {
			<-ctx.Done()
			tr.Quit()
		}()
		tr.Run()
	}

	<-ctx.Done()
	log.Info().Msg("shutting down")

	err = <-srvErr
	if pipeline != nil {
		pipeline.Stop()
	}
	<-sess.Done()
	journal.Close()
	<-journalDone
	return err
}

func localURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Warn().Err(err).Str("url", url).Msg("open browser")
	}
}
