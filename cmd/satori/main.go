/*
DESCRIPTION
  satori tracks the dominant moving object of a sequence of still images or of
  an online MJPEG source, and writes annotated frames and trajectory plots.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// satori is a motion tracking command.
//
// In batch mode (the default) every argument is an image file:
//
//	satori -out frames/ img0.png img1.png img2.png
//
// In online mode a device is read until it ends or the process is
// interrupted. SIGUSR1 selects a new target:
//
//	satori -input v4l -path /dev/video0 -out frames/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"strings"
	"syscall"

	"github.com/coreos/go-systemd/daemon"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/satori/config"
	"github.com/ausocean/satori/device"
	"github.com/ausocean/satori/device/capture"
	"github.com/ausocean/satori/device/dir"
	"github.com/ausocean/satori/device/file"
	"github.com/ausocean/satori/device/raspistill"
	"github.com/ausocean/satori/device/webcam"
	"github.com/ausocean/satori/report"
	"github.com/ausocean/satori/session"
	"github.com/ausocean/utils/logging"
)

// Current software version.
const version = "v0.1.0"

// Logging configuration.
const (
	logMaxSize   = 500 // MB
	logMaxBackup = 10
	logMaxAge    = 28 // days
	logVerbosity = logging.Info
	logSuppress  = true
)

// Misc constants.
const (
	pkg         = "satori: "
	profilePath = "satori.prof"
	fileFPS     = 25
)

// This is set to true if the 'profile' build tag is provided on build.
var canProfile = false

// vars collects repeated -set Key=Value flags.
type vars map[string]string

func (v vars) String() string { return fmt.Sprint(map[string]string(v)) }

func (v vars) Set(s string) error {
	k, val, ok := strings.Cut(s, "=")
	if !ok {
		return fmt.Errorf("expected Key=Value, got %q", s)
	}
	v[k] = val
	return nil
}

func main() {
	var (
		showVersion = flag.Bool("version", false, "show version")
		input       = flag.String("input", "files", "input: files, file, v4l, capture, dir or raspistill")
		path        = flag.String("path", "", "input path; meaning depends on -input")
		out         = flag.String("out", "", "directory annotated frames are written to")
		plots       = flag.String("plot", "", "directory trajectory and area plots are written to")
		autoReset   = flag.Bool("autoreset", true, "select a target automatically when motion is found")
		verbose     = flag.Bool("v", false, "report progress per image pair")
		loop        = flag.Bool("loop", false, "restart file input at end of file")
		logPath     = flag.String("log", "satori.log", "log file path")
		logLevel    = flag.String("logging", "Info", "log level: Debug, Info, Warning, Error or Fatal")
	)
	set := vars{}
	flag.Var(set, "set", "set a configuration variable as Key=Value; may be repeated")
	flag.Parse()
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Create lumberjack logger to handle logging to file.
	fileLog := &lumberjack.Logger{
		Filename:   *logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	log := logging.New(logVerbosity, io.MultiWriter(fileLog, os.Stderr), logSuppress)
	log.Info("starting satori", "version", version)

	// If satori has been built with the profile tag, then we'll start a CPU profile.
	if canProfile {
		profile(log)
		defer pprof.StopCPUProfile()
		log.Info("profiling started")
	}

	cfg := config.Config{Logger: log}
	cfg.Update(map[string]string{
		config.KeyInput:      *input,
		config.KeyInputPath:  *path,
		config.KeyOutputPath: *out,
		config.KeyAutoReset:  fmt.Sprint(*autoReset),
		config.KeyVerbose:    fmt.Sprint(*verbose),
		config.KeyLoop:       fmt.Sprint(*loop),
		config.KeyLogging:    *logLevel,
	})
	cfg.Update(set)
	err := cfg.Validate()
	if err != nil {
		log.Fatal(pkg+"invalid config", "error", err.Error())
	}
	log.SetLevel(cfg.LogLevel)

	if cfg.Input == config.InputFiles {
		err = batch(cfg, flag.Args(), *plots)
	} else {
		err = online(cfg, *plots)
	}
	if err != nil {
		log.Fatal(pkg+"tracking failed", "error", err.Error())
	}
	log.Info("finished")
}

// batch tracks the images at paths and writes their annotations.
func batch(cfg config.Config, paths []string, plots string) error {
	if cfg.FileFPS == 0 {
		cfg.FileFPS = fileFPS
	}
	s, err := session.New(cfg)
	if err != nil {
		return fmt.Errorf("could not create session: %w", err)
	}
	defer s.Close()

	for _, p := range paths {
		err := s.Add(p)
		if err != nil {
			cfg.Logger.Warning(pkg+"skipping image", "path", p, "error", err.Error())
		}
	}

	err = s.Run()
	if errors.Is(err, session.ErrNoImages) {
		fmt.Fprintln(os.Stderr, "No images")
		return nil
	}
	if err != nil {
		return err
	}

	if cfg.OutputPath != "" {
		err = s.Animate(cfg.OutputPath)
		if err != nil {
			return err
		}
	}
	return writePlots(cfg.Logger, plots, s.Samples())
}

// online tracks frames from the configured device until it ends or the
// process receives SIGINT or SIGTERM.
func online(cfg config.Config, plots string) error {
	var src device.Source
	switch cfg.Input {
	case config.InputFile:
		if cfg.FileFPS == 0 {
			cfg.FileFPS = fileFPS
		}
		src = file.New(cfg.Logger)
	case config.InputV4L:
		src = webcam.New(cfg.Logger)
	case config.InputCapture:
		src = capture.New(cfg.Logger)
	case config.InputDir:
		src = dir.New(cfg.Logger)
	case config.InputRaspistill:
		src = raspistill.New(cfg.Logger)
	default:
		return fmt.Errorf("unsupported input: %d", cfg.Input)
	}

	err := src.Set(cfg)
	var me device.MultiError
	switch {
	case errors.As(err, &me):
		cfg.Logger.Warning(pkg+"errors from configuring input device", "errors", err.Error())
	case err != nil:
		return fmt.Errorf("could not configure %s: %w", src.Name(), err)
	}

	s, err := session.New(cfg)
	if err != nil {
		return fmt.Errorf("could not create session: %w", err)
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	resets := make(chan os.Signal, 1)
	signal.Notify(resets, syscall.SIGUSR1)
	defer signal.Stop(resets)
	go func() {
		for {
			select {
			case <-resets:
				s.Reset()
			case <-ctx.Done():
				return
			}
		}
	}()

	sent, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	if err != nil {
		cfg.Logger.Warning(pkg+"could not notify systemd", "error", err.Error())
	} else if sent {
		cfg.Logger.Debug(pkg + "notified systemd")
	}

	err = s.Stream(ctx, src)
	if err != nil {
		return err
	}
	return writePlots(cfg.Logger, plots, s.Samples())
}

// writePlots writes trajectory and area plots of samples to dir, if dir is
// not empty.
func writePlots(l logging.Logger, dir string, samples []report.Sample) error {
	if dir == "" {
		return nil
	}
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return fmt.Errorf("could not create plot directory: %w", err)
	}
	err = report.Trajectory(filepath.Join(dir, "trajectory.png"), samples)
	switch {
	case errors.Is(err, report.ErrNoSamples):
		l.Info(pkg + "no target tracked, skipping trajectory plot")
	case err != nil:
		return err
	}
	err = report.Areas(filepath.Join(dir, "areas.png"), samples)
	if err != nil && !errors.Is(err, report.ErrNoSamples) {
		return err
	}
	return nil
}

func profile(l logging.Logger) {
	f, err := os.Create(profilePath)
	if err != nil {
		l.Fatal(pkg+"could not create CPU profile", "error", err.Error())
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		l.Fatal(pkg+"could not start CPU profile", "error", err.Error())
	}
}
