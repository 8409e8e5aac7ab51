// geometry_control runs the geometric controller for one vehicle.  Sensor
// samples and setpoints arrive over the /input websocket, or from a scripted
// scenario; telemetry is broadcast on /status and optionally logged to csv.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/antonellabarisic/mmuav-gazebo/control"
	"github.com/antonellabarisic/mmuav-gazebo/ctlweb"
	"github.com/antonellabarisic/mmuav-gazebo/sim"
)

// outputLogger reports the commands at debug level.
type outputLogger struct {
	log *zap.Logger
}

func (o outputLogger) Send(out *control.Output) {
	o.log.Debug("GeometryControl: Output",
		zap.Float64("thrust", out.Thrust),
		zap.Float64s("rotors", out.Rotors[:]),
		zap.Float64s("masses", out.Masses[:]),
		zap.Float64s("payload", out.Payload[:]))
}

func main() {
	var (
		configFile  = flag.String("config", "", "yaml file with vehicle, controller and gains settings")
		rate        = flag.Float64("rate", 0, "control rate, Hz (overrides config)")
		name        = flag.String("name", "", "vehicle name (overrides config)")
		mass        = flag.Bool("mass", false, "control attitude with the moving masses")
		manipulator = flag.Bool("manipulator", false, "control attitude with the manipulator payload")
		addr        = flag.String("addr", fmt.Sprintf(":%d", ctlweb.Port), "address for the websocket endpoints")
		scenario    = flag.String("scenario", "", "replay a scenario: a yaml file or \"hover\", \"yaw\", \"square\"")
		noise       = flag.Float64("noise", 0, "std dev of the position noise added to a scenario, m")
		csvFile     = flag.String("csv", "", "log the telemetry to this csv file")
		debug       = flag.Bool("debug", false, "log every output at debug level")
	)
	flag.Parse()

	zcfg := zap.NewProductionConfig()
	if *debug {
		zcfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	log, err := zcfg.Build()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(log, options{
		configFile: *configFile, rate: *rate, name: *name,
		mass: *mass, manipulator: *manipulator,
		addr: *addr, scenario: *scenario, noise: *noise, csvFile: *csvFile, debug: *debug,
	}); err != nil && err != context.Canceled {
		log.Fatal("GeometryControl: Stopped", zap.Error(err))
	}
}

type options struct {
	configFile, name, addr, scenario, csvFile string
	rate, noise                               float64
	mass, manipulator, debug                  bool
}

func loadSituation(name string) (*sim.Situation, error) {
	if s, err := sim.Scenario(name); err == nil {
		return s, nil
	}
	return sim.LoadSituation(name)
}

func run(log *zap.Logger, o options) (err error) {
	cfg := control.DefaultConfig()
	if o.configFile != "" {
		if cfg, err = control.LoadConfig(o.configFile); err != nil {
			return err
		}
	}
	if o.rate > 0 {
		cfg.Controller.Rate = o.rate
	}
	if o.name != "" {
		cfg.Controller.Name = o.name
	}
	cfg.Controller.MassControl = cfg.Controller.MassControl || o.mass
	cfg.Controller.ManipulatorControl = cfg.Controller.ManipulatorControl || o.manipulator

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	room := ctlweb.NewRoom(log)
	go room.Run(ctx)
	opts := []control.LoopOption{control.WithStatusSink(room)}
	if o.debug {
		opts = append(opts, control.WithOutputSink(outputLogger{log}))
	}
	if o.csvFile != "" {
		sl, err := control.NewStatusLogger(o.csvFile, control.DefaultLogMap())
		if err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, sl.Close()) }()
		opts = append(opts, control.WithStatusSink(sl))
	}

	loop, err := control.NewLoop(cfg, log, opts...)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/status", room)
	mux.Handle("/input", ctlweb.NewInput(loop, log))
	srv := &http.Server{Addr: o.addr, Handler: mux}
	go func() {
		log.Info("CtlWeb: Starting web server", zap.String("addr", o.addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("CtlWeb: ListenAndServe failed", zap.Error(err))
			stop()
		}
	}()
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		err = multierr.Append(err, srv.Shutdown(sctx))
	}()

	if o.scenario != "" {
		s, err := loadSituation(o.scenario)
		if err != nil {
			return err
		}
		go func() {
			err := sim.Feed(ctx, loop, s, cfg.Controller.Rate, sim.Noise{Position: o.noise, Seed: uint64(time.Now().UnixNano())}, log)
			if err != nil && err != context.Canceled {
				log.Error("Sim: Scenario stopped", zap.Error(err))
			}
		}()
	}

	return loop.Run(ctx)
}
