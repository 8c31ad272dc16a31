package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/laptimer/internal/audio"
	"github.com/banshee-data/laptimer/internal/config"
	"github.com/banshee-data/laptimer/internal/display"
	"github.com/banshee-data/laptimer/internal/monitoring"
	"github.com/banshee-data/laptimer/internal/race"
	"github.com/banshee-data/laptimer/internal/serialmux"
	"github.com/banshee-data/laptimer/internal/version"
)

var (
	configPath  = flag.String("config", "", "Path to a timer config JSON file (defaults built in)")
	port        = flag.String("port", "", "Serial port to use, overrides the config file (ignored in dev mode)")
	devMode     = flag.Bool("dev", false, "Run against a simulated gate controller")
	showVersion = flag.Bool("version", false, "Print version information and exit")
)

var errSerialClosed = errors.New("serial port closed")

// Main
func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := monitoring.NewAsyncLogger(log.Default(), cfg.GetLogBuffer())
	monitoring.SetLogger(logger.Logf)
	defer logger.Close()

	log.Printf("%s starting", version.String())

	var gate serialmux.SerialMuxInterface
	if cfg.GetDevMode() {
		gate = serialmux.NewMockSerialMux(serialmux.DefaultMockScript())
		log.Printf("using simulated gate controller")
	} else {
		gate, err = serialmux.NewRealSerialMux(cfg.GetSerialPort(), cfg.GetSerialOptions())
		if err != nil {
			log.Fatalf("failed to create gate port: %v", err)
		}
		log.Printf("opened gate controller on %s", cfg.GetSerialPort())
	}
	defer gate.Close()

	if err := gate.Initialize(); err != nil {
		log.Fatalf("failed to initialize device: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, gate, race.Options{}, cfg.GetTickInterval()); err != nil {
		log.Printf("laptimer stopped: %v", err)
		logger.Close()
		os.Exit(1)
	}
	log.Print("laptimer stopped")
}

// loadConfig reads the config file if one was given and applies flag
// overrides on top.
func loadConfig() (*config.TimerConfig, error) {
	cfg := config.DefaultTimerConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadTimerConfig(*configPath); err != nil {
			return nil, err
		}
	}
	if *port != "" {
		cfg.SerialPort = port
	}
	if *devMode {
		cfg.DevMode = devMode
	}
	return cfg, nil
}

// run wires the race controller to the gate and blocks until ctx is done or
// one of the routines fails. Display and Audio in opts default to the gate;
// buttons always come from the gate.
func run(ctx context.Context, gate serialmux.SerialMuxInterface, opts race.Options, tick time.Duration) error {
	latch := &race.ButtonLatch{}
	if opts.Display == nil {
		opts.Display = display.NewSerial(gate)
	}
	if opts.Audio == nil {
		opts.Audio = audio.NewSerial(gate)
	}
	opts.Buttons = latch
	if opts.OnStateChange == nil {
		opts.OnStateChange = func(from, to race.State) {
			monitoring.Logf("race state %s -> %s", from, to)
		}
	}
	ctrl := race.NewController(opts)

	g, ctx := errgroup.WithContext(ctx)

	// run the monitor routine to manage IO on the serial port
	g.Go(func() error {
		err := gate.Monitor(ctx)
		log.Print("monitor routine terminated")
		switch {
		case errors.Is(err, context.Canceled):
			return nil
		case err != nil:
			return fmt.Errorf("failed to monitor serial port: %w", err)
		case ctx.Err() == nil:
			return errSerialClosed
		}
		return nil
	})

	// feed device lines to the edge detector and button latch
	g.Go(func() error {
		err := serialmux.Route(ctx, gate, race.DeviceInputs{Edges: ctrl.Edges(), Buttons: latch})
		log.Print("route routine terminated")
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		err := ctrl.Run(ctx, tick)
		log.Print("control loop terminated")
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	return g.Wait()
}
