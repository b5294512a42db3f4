// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/taskfleet/scheduler/internal/config"
	"github.com/taskfleet/scheduler/internal/coordination"
	"github.com/taskfleet/scheduler/internal/fleet"
	"github.com/taskfleet/scheduler/internal/httpapi"
	"github.com/taskfleet/scheduler/internal/logger"
)

// runCmd brings up the Registry, wires the (optional) etcd mirror and
// the introspection HTTP server, then blocks until SIGINT/SIGTERM,
// draining through Lifecycle.Shutdown. Task registration itself is the
// embedding application's job (spec.md §1: discovery/DI is out of
// scope) — this command registers and starts only the built-in demo
// heartbeat (see registerDemoTasks).
func runCmd() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the scheduler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cfgPath)
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "config file (default is ./scheduler.yaml)")
	return cmd
}

func run(ctx context.Context, cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("configuration load failed: %w", err)
	}

	log := logger.NewLogger(logger.NewLoggerArgs{Debug: cfg.Debug, Format: cfg.LogFormat})
	log.Info("scheduler starting", "basePackage", cfg.BasePackage, "etcdEnabled", cfg.Etcd.Enable)

	onTaskError := func(e *fleet.TaskExecutionError) {
		log.Errorf("task %s failed in %s: %v", e.TaskID, e.Stage, e.Err)
	}
	registry := fleet.NewRegistry(nil, nil, onTaskError)

	if err := registerDemoTasks(registry, log); err != nil {
		return fmt.Errorf("demo task registration: %w", err)
	}

	var etcdClient *clientv3.Client
	var etcdMirror *coordination.EtcdMirror
	if cfg.Etcd.Enable {
		etcdClient, err = clientv3.New(clientv3.Config{
			Endpoints:   cfg.Etcd.Endpoints,
			DialTimeout: 5 * time.Second,
		})
		if err != nil {
			return fmt.Errorf("etcd client: %w", err)
		}
		defer etcdClient.Close()

		etcdMirror = coordination.NewEtcdMirror(etcdClient, cfg.Etcd.Root, registry, log)
		registry.SetMirror(etcdMirror)
		go etcdMirror.Run(ctx)
		log.Info("coordination mirror enabled", "root", cfg.Etcd.Root, "endpoints", cfg.Etcd.Endpoints)
	}

	metrics := coordination.NewMetricsBridge(registry)
	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpapi.NewRouter(registry, metrics),
	}
	go func() {
		log.Info("introspection API listening", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("introspection API stopped: %v", err)
		}
	}()

	lifecycle := fleet.NewLifecycle(registry, cfg.ShutdownTimeout, func(report fleet.ShutdownReport) {
		log.Info("shutdown complete", "elapsed", report.Elapsed, "timedOut", report.TimedOut, "leaked", report.LeakedTaskID)
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout+5*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)
	if etcdMirror != nil {
		etcdMirror.Stop()
	}
	lifecycle.Shutdown(shutdownCtx)
	return nil
}

// registerDemoTasks registers and starts the one descriptor this binary
// ships out of the box: a single-replica heartbeat that logs a line on
// a cron tick, exercising the same RegisterDescriptor/StartGroup path an
// embedding application's own descriptors would go through (spec.md §6,
// §1: discovery/DI of the embedder's own descriptors stays out of
// scope, but the binary needs something real running to introspect).
func registerDemoTasks(registry *fleet.Registry, log logger.Logger) error {
	const group = "heartbeat"
	descriptor := fleet.Descriptor{
		Group:          group,
		StaticCron:     "@every 30s",
		StaticParallel: 1,
		Defined:        true,
		Hooks: fleet.Hooks{
			Execute: func() error {
				log.Info("heartbeat tick")
				return nil
			},
		},
	}

	_, err := registry.RegisterDescriptor(descriptor, 1, "", nil, fleet.NewCronSchedule)
	if err != nil {
		return err
	}
	registry.StartGroup(group)
	return nil
}
