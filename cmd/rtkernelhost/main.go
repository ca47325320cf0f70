// Command rtkernelhost is the minimal host process from SPEC_FULL.md's
// CLI HOST section: it loads KernelConfig, wires a zerolog-backed
// logiface logger, loads the two example components, and drives the
// kernel with a TaskTimer. Deliberately thin - its only flags are
// --config and --period.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joeycumines/izerolog"
	"github.com/joeycumines/logiface"
	"github.com/rs/zerolog"

	"github.com/roman-aguilera/rtkernel/dataobj"
	"github.com/roman-aguilera/rtkernel/event"
	"github.com/roman-aguilera/rtkernel/examples/controller"
	"github.com/roman-aguilera/rtkernel/examples/generator"
	"github.com/roman-aguilera/rtkernel/internal/rtlog"
	"github.com/roman-aguilera/rtkernel/kernel"
	"github.com/roman-aguilera/rtkernel/property/config"
	"github.com/roman-aguilera/rtkernel/property/propext"
	"github.com/roman-aguilera/rtkernel/schedule"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code per spec §6: 0 on clean shutdown,
// 1 on any component or extension startup failure.
func run() int {
	configPath := flag.String("config", "", "path to a YAML KernelConfig file (optional)")
	period := flag.Duration("period", 20*time.Millisecond, "kernel step period")
	flag.Parse()

	cfg, err := config.LoadKernelConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "rtkernelhost: load config:", err)
		return 1
	}

	zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	typed := logiface.New[*izerolog.Event](izerolog.WithZerolog(zl))
	log := rtlog.New[*izerolog.Event](typed)

	events := event.NewService(log)
	k := kernel.New(cfg, events, log)
	k.AddExtension(propext.New(cfg, log))

	gen := generator.New("generator", 1.0, 0.5, 0)
	ctrl := controller.New("controller", 0.5)

	if _, err := dataobj.Register[float64](k.SetPoint, "v", 0); err != nil {
		log.Error("rtkernelhost: register setpoint", "error", err)
		return 1
	}
	if err := gen.Bind(k.SetPoint); err != nil {
		log.Error("rtkernelhost: bind generator", "error", err)
		return 1
	}
	if err := ctrl.Bind(k.SetPoint, k.Output); err != nil {
		log.Error("rtkernelhost: bind controller", "error", err)
		return 1
	}

	if err := k.AddComponent(gen); err != nil {
		log.Error("rtkernelhost: add generator", "error", err)
		return 1
	}
	if err := k.AddComponent(ctrl); err != nil {
		log.Error("rtkernelhost: add controller", "error", err)
		return 1
	}

	timer := schedule.NewTaskTimer(minDuration(*period, cfg.SchedulerTickFloor))
	task := schedule.NewTask("kernel", *period, schedule.Hard, k)
	timer.Add(task)

	go timer.Run()

	if !task.Start() {
		log.Error("rtkernelhost: kernel startup failed", "task", task.Name())
		timer.Shutdown()
		return 1
	}

	log.Debug("rtkernelhost: running", "period", period.String())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	task.Stop()
	timer.Shutdown()
	return 0
}

func minDuration(a, b time.Duration) time.Duration {
	if b <= 0 {
		return a
	}
	if a < b {
		return a
	}
	return b
}
