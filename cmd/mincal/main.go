package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"mincal/internal/capture"
	"mincal/internal/config"
	"mincal/internal/ics"
	applog "mincal/internal/log"
	"mincal/internal/prefs"
	"mincal/internal/schedule"
	"mincal/internal/term"
	"mincal/internal/web"
	"mincal/internal/widget"
)

const version = "0.3.0"

type flagConfig struct {
	configPath string
	listen     string
	once       bool
	capture    bool
	debug      bool
}

func main() {
	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		applog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	applog.SetLevel(applog.ParseLevel(conf.LogLevel))
	if flags.debug {
		applog.SetLevel(applog.LevelDebug)
	}

	applog.Info("mincal starting", "version", version)
	applog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Location().String(),
		"locale", conf.Locale,
		"refresh", conf.RefreshCron,
		"widget", fmt.Sprintf("%dx%d %s", conf.Widget.Width, conf.Widget.Height, conf.Widget.Orientation),
		"ics_count", len(conf.EnabledICS()),
		"calendar_access", conf.CalendarAccess,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, conf, flags); err != nil {
		applog.Error("mincal failed", err)
		os.Exit(1)
	}
	applog.Info("mincal exiting")
}

func run(ctx context.Context, conf *config.Config, flags flagConfig) error {
	store, err := prefs.Open(conf.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	loc := conf.Location()
	clock := widget.SystemClock{Loc: loc}
	locale := widget.NewLocale(conf.Locale)

	provider := ics.NewProvider(ics.NewFetcher(filepath.Join(conf.CacheDir, "ics"), nil), ics.ProviderConfig{
		Sources:        ics.SourcesFromConfig(conf),
		CalendarAccess: conf.CalendarAccess,
		Parse:          ics.ParseOptions{Location: loc, SelfEmails: conf.SelfEmails},
	})

	redrawer := schedule.NewRedrawer(widget.Env{
		Clock:           clock,
		Source:          provider,
		Preferences:     store,
		Locale:          locale,
		AccentSupported: conf.AccentSupported,
	}, widget.Size{
		Width:       conf.Widget.Width,
		Height:      conf.Widget.Height,
		Orientation: widget.ParseOrientation(conf.Widget.Orientation),
	}, nil)

	if flags.once {
		w := redrawer.Redraw(ctx, schedule.TriggerStartup)
		fmt.Println(term.NewRenderer(os.Stdout).Render(w))
		fmt.Println(term.Summary(w))
		return nil
	}

	server, err := web.NewServer(web.Options{
		Config:   conf,
		Redrawer: redrawer,
		Prefs:    store,
		Events:   provider,
		Clock:    clock,
		Locale:   locale,
	})
	if err != nil {
		return err
	}

	if flags.capture {
		return runCapture(ctx, conf, server, redrawer)
	}

	scheduler, err := schedule.NewScheduler(redrawer, conf.RefreshCron, loc)
	if err != nil {
		return err
	}
	go redrawer.Redraw(ctx, schedule.TriggerStartup)
	scheduler.Start()
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		scheduler.Stop(stopCtx)
	}()

	return server.ListenAndServe(ctx)
}

// runCapture serves the widget page just long enough for headless Chromium
// to screenshot it.
func runCapture(ctx context.Context, conf *config.Config, server *web.Server, redrawer *schedule.Redrawer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- server.ListenAndServe(ctx) }()

	host := conf.Listen
	if strings.HasPrefix(host, ":") {
		host = "127.0.0.1" + host
	}
	base := url.URL{Scheme: "http", Host: host}
	if conf.BasicAuth != nil {
		base.User = url.UserPassword(conf.BasicAuth.Username, conf.BasicAuth.Password)
	}
	if err := waitHealthy(ctx, base.String()+"/health"); err != nil {
		return err
	}

	redrawer.Redraw(ctx, schedule.TriggerManual)
	size := redrawer.Size()
	width, height := size.Width, size.Height
	if size.Orientation == widget.Landscape {
		width, height = height, width
	}

	err := capture.WidgetPNG(ctx, capture.Options{
		URL:        base.String() + "/widget",
		OutputPath: conf.Capture.Output,
		Width:      width,
		Height:     height,
		Scale:      conf.Capture.Scale,
		Timeout:    conf.CaptureTimeout(),
	})
	cancel()
	if serveErr := <-errCh; err == nil {
		err = serveErr
	}
	return err
}

func waitHealthy(ctx context.Context, u string) error {
	client := &http.Client{Timeout: time.Second}
	deadline := time.Now().Add(10 * time.Second)
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		if resp, err := client.Do(req); err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("server at %s not healthy", u)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "config.yaml", "Path to config file (created with defaults if missing)")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Render the widget once to the terminal and exit")
	flag.BoolVar(&cfg.capture, "capture", false, "Write a PNG of the widget via headless Chromium and exit")
	flag.BoolVar(&cfg.debug, "debug", false, "Enable debug logging")

	flag.Parse()

	return cfg
}
