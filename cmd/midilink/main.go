package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"github.com/leandrodaf/midilink/internal/controller"
	"github.com/leandrodaf/midilink/internal/input"
	"github.com/leandrodaf/midilink/internal/logger"
	"github.com/leandrodaf/midilink/internal/player"
	"github.com/leandrodaf/midilink/internal/relay"
	"github.com/leandrodaf/midilink/internal/status"
	"github.com/leandrodaf/midilink/sdk/contracts"
	"github.com/leandrodaf/midilink/sdk/midilink"
)

const usage = `usage:
  midilink play  [-mode local|network] [-server URL] [-room NAME] [-device N | -in NAME] [-out PORT] [-tui]
  midilink serve [-addr :8080]
  midilink devices`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	defer gomidi.CloseDriver()

	var err error
	switch os.Args[1] {
	case "play":
		err = runPlay(os.Args[2:])
	case "serve":
		err = runServe(os.Args[2:])
	case "devices":
		err = runDevices(os.Args[2:])
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(level, file string, quiet bool) contracts.Logger {
	log := logger.NewZapLogger()
	if quiet && file == "" {
		level = "error"
	}
	log.SetLevel(contracts.ParseLogLevel(level))
	if file != "" {
		log.SetDestination(contracts.FileLog, file)
	}
	return log
}

func runPlay(args []string) error {
	fs := flagSet("play")
	mode := fs.String("mode", string(contracts.LocalMode), "transport: local or network")
	server := fs.String("server", "ws://localhost:8080", "relay URL")
	room := fs.String("room", "lobby", "room to join")
	device := fs.Int("device", -1, "input device index (see 'midilink devices'); -1 disables input")
	in := fs.String("in", "", "input port name (substring match, portable backend); overrides -device")
	out := fs.String("out", "", "MIDI output port name to play notes on (substring match)")
	channel := fs.Uint("channel", 0, "MIDI output channel (0-15)")
	keepAlive := fs.Duration("keepalive", 5*time.Second, "keep-alive probe interval")
	reconnect := fs.Bool("reconnect", true, "reconnect after connection errors")
	tui := fs.Bool("tui", false, "show the status display")
	level := fs.String("log-level", "info", "debug, info, warn or error")
	logFile := fs.String("log-file", "", "write logs to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	log := newLogger(*level, *logFile, *tui)

	engine, closeEngine, err := openEngine(*out, uint8(*channel), log)
	if err != nil {
		return err
	}
	defer closeEngine()

	opts := []contracts.Option{
		contracts.WithLogger(log),
		contracts.WithLogLevel(contracts.ParseLogLevel(*level)),
		contracts.WithMode(contracts.TransportMode(*mode)),
		contracts.WithServerURL(*server),
		contracts.WithRoom(*room),
		contracts.WithKeepAliveInterval(*keepAlive),
		contracts.WithPlayer(midilink.NewPlayer(engine, log)),
		contracts.WithMIDIEventFilter(input.DefaultFilter),
		contracts.WithInputPort(*in),
	}
	transport, err := midilink.NewTransport(opts...)
	if err != nil {
		return err
	}

	var ctrlOpts []controller.Option
	if *reconnect {
		ctrlOpts = append(ctrlOpts, controller.WithReconnect(time.Second, 30*time.Second))
	}
	ctrl := controller.New(transport, log, ctrlOpts...)
	ctrl.Start()
	defer ctrl.Close()

	if *in != "" {
		*device = -1
	}
	if *device >= 0 || *in != "" {
		client, err := midilink.NewInputClient(opts...)
		if err != nil {
			log.Warn("MIDI input unavailable", log.Field().Error("error", err))
		} else {
			bridge := input.NewBridge(client, transport, &input.DefaultFilter, log)
			if err := bridge.Start(*device); err != nil {
				log.Warn("MIDI input unavailable", log.Field().Error("error", err))
			} else {
				defer bridge.Stop()
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *tui {
		endpoint := "local"
		if n, ok := transport.(interface{ Endpoint() string }); ok {
			endpoint = n.Endpoint()
		}
		p := tea.NewProgram(status.NewModel(ctrl.Updates(), ctrl.State(), endpoint), tea.WithContext(ctx))
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case st, ok := <-ctrl.Updates():
			if !ok {
				return nil
			}
			log.Info("Status", log.Field().String("status", string(st.Status)),
				log.Field().Duration("latency", st.Latency))
		}
	}
}

func openEngine(name string, channel uint8, log contracts.Logger) (contracts.Engine, func(), error) {
	if name == "" {
		return player.LogEngine{Logger: log}, func() {}, nil
	}
	for _, port := range gomidi.GetOutPorts() {
		if strings.Contains(strings.ToLower(port.String()), strings.ToLower(name)) {
			engine, err := player.NewPortEngine(port, channel, log)
			if err != nil {
				return nil, nil, fmt.Errorf("open output %q: %w", port.String(), err)
			}
			log.Info("Playing on MIDI output", log.Field().String("port", port.String()))
			return engine, func() { _ = engine.Close() }, nil
		}
	}
	return nil, nil, fmt.Errorf("no MIDI output port matches %q", name)
}

func runServe(args []string) error {
	fs := flagSet("serve")
	addr := fs.String("addr", ":8080", "listen address")
	level := fs.String("log-level", "info", "debug, info, warn or error")
	logFile := fs.String("log-file", "", "write logs to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	log := newLogger(*level, *logFile, false)
	hub := relay.NewHub(log)
	srv := &http.Server{Addr: *addr, Handler: hub, ReadHeaderTimeout: 10 * time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errs := make(chan error, 1)
	go func() {
		log.Info("Relay listening", log.Field().String("addr", *addr))
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = hub.Close()
	return srv.Shutdown(shutdownCtx)
}

func runDevices(args []string) error {
	fs := flagSet("devices")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := midilink.NewInputClient(contracts.WithLogger(logger.NewNopLogger()))
	if err != nil {
		return err
	}
	devices, err := client.ListDevices()
	if err != nil {
		return err
	}
	for i, d := range devices {
		fmt.Printf("%d\t%s\n", i, d)
	}
	for _, port := range gomidi.GetOutPorts() {
		fmt.Printf("out\t%s\n", port.String())
	}
	return nil
}
