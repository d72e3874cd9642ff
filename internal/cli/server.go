package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"todo-tracker/internal/controller"
	"todo-tracker/internal/queue"
	"todo-tracker/internal/routes"
	"todo-tracker/internal/worker"
	"todo-tracker/pkg/logger"
)

func (a *App) server(ctx context.Context, args []string) error {
	httpCfg := a.cfg.HTTP
	consume := a.cfg.Sync.Consume
	fs := newFlagSet("server")
	fs.IntVar(&httpCfg.Port, "port", httpCfg.Port, "Listen port")
	fs.StringVar(&httpCfg.Host, "host", httpCfg.Host, "Listen host")
	fs.BoolVar(&consume, "consume", consume, "Apply inbox commands while serving")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}

	h, err := controller.New(a.store, Version)
	if err != nil {
		return err
	}
	ln, err := net.Listen("tcp", httpCfg.Addr())
	if err != nil {
		return err
	}

	server := &http.Server{
		Handler:      routes.Router(routes.Table(h)),
		ReadTimeout:  httpCfg.ReadTimeout,
		WriteTimeout: httpCfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	if consume && a.cfg.Sync.KafkaEnabled() {
		if err := queue.EnsureTopic(ctx, a.cfg.Sync); err != nil {
			ln.Close()
			return err
		}
		consumer := worker.NewConsumer(a.cfg.Sync, a.store)
		defer consumer.Close()
		g.Go(func() error {
			return consumer.Run(gctx)
		})
	}

	g.Go(func() error {
		logger.Info(ctx, "HTTP server listening", "addr", ln.Addr().String())
		a.success("HTTP server listening on http://localhost:%s", port(ln))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info(ctx, "Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	logger.Info(ctx, "Server stopped")
	return err
}

func port(ln net.Listener) string {
	if addr, ok := ln.Addr().(*net.TCPAddr); ok {
		return strconv.Itoa(addr.Port)
	}
	return ln.Addr().String()
}
