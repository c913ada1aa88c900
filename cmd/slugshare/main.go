package main

import (
	"context"
	"errors"
	"fmt"
	stdlog "log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"github.com/atinyakov/slugshare/internal/app/server"
	grpcserver "github.com/atinyakov/slugshare/internal/app/server/grpc"
	"github.com/atinyakov/slugshare/internal/app/service"
	"github.com/atinyakov/slugshare/internal/blob"
	"github.com/atinyakov/slugshare/internal/config"
	"github.com/atinyakov/slugshare/internal/logger"
	"github.com/atinyakov/slugshare/internal/repository"
	"github.com/atinyakov/slugshare/internal/storage"
	"github.com/atinyakov/slugshare/internal/worker"

	_ "net/http/pprof"
)

var buildVersion string
var buildDate string
var buildCommit string

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		stdlog.Fatalf("slugshare: %v", err)
	}
}

func printBuildInfo() {
	fmt.Printf("Build version: %s\n", orNA(buildVersion))
	fmt.Printf("Build date: %s\n", orNA(buildDate))
	fmt.Printf("Build commit: %s\n", orNA(buildCommit))
}

func orNA(v string) string {
	if v == "" {
		return "N/A"
	}
	return v
}

// openRegistry picks PostgreSQL, then the JSON file, then memory.
func openRegistry(ctx context.Context, options *config.Options, log *zap.Logger) (storage.Registry, error) {
	switch {
	case options.DatabaseDSN != "":
		log.Info("using db")
		db, err := repository.InitDB(ctx, options.DatabaseDSN, log)
		if err != nil {
			return nil, err
		}
		return repository.CreateSlugRepository(db, log), nil

	case options.FilePath != "":
		log.Info("using file", zap.String("filePath", options.FilePath))
		return storage.NewFileStorage(options.FilePath, log)

	default:
		log.Info("using in memory storage")
		return storage.CreateMemoryStorage()
	}
}

func run() error {
	printBuildInfo()

	options, err := config.Parse()
	if err != nil {
		return err
	}
	if options.JWTSecret == "" {
		return errors.New("a jwt secret is required (-j or JWT_SECRET)")
	}

	log := logger.New()
	if err := log.Init(options.LogLevel); err != nil {
		return err
	}
	defer log.Sync()
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if options.EnablePprof {
		go func() {
			zapLogger.Info("Starting pprof server", zap.String("addr", "localhost:6060"))
			if err := http.ListenAndServe("localhost:6060", nil); err != nil {
				zapLogger.Error("pprof server error", zap.Error(err))
			}
		}()
	}

	registry, err := openRegistry(ctx, options, zapLogger)
	if err != nil {
		return err
	}
	defer registry.Close()

	blobs, err := blob.NewDiskStore(options.BlobDir, options.ResultHostname, log.Named("blob"))
	if err != nil {
		return err
	}

	reaper := worker.NewBlobReaper(log.Named("reaper"), registry, blobs, 10*time.Second)
	reaperCtx, stopReaper := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		reaper.FlushBlobs(reaperCtx)
	}()

	auth := service.NewAuth(options.JWTSecret)
	svc := service.NewSlugService(registry, blobs, reaper.GetInChannel(), zapLogger)

	r := server.Init(svc, auth, server.Options{
		TrustedSubnet:  options.TrustedSubnet,
		MaxUploadBytes: options.MaxUploadBytes,
		Files:          blobs.Handler(),
	}, zapLogger)

	var grpcSrv *grpcserver.Server
	if options.GRPCPort > 0 {
		grpcSrv = grpcserver.New(svc, auth, options.TrustedSubnet, log.Named("grpc"), options.GRPCPort)
		go func() {
			if err := grpcSrv.Start(); err != nil {
				zapLogger.Error("gRPC server stopped", zap.Error(err))
				stop()
			}
		}()
	}

	httpSrv := &http.Server{
		Addr:              options.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if options.EnableHTTPS {
			manager := &autocert.Manager{
				Cache:      autocert.DirCache("cache-dir"),
				Prompt:     autocert.AcceptTOS,
				HostPolicy: autocert.HostWhitelist(hostOf(options.ResultHostname)),
			}
			httpSrv.Addr = ":443"
			httpSrv.TLSConfig = manager.TLSConfig()
			zapLogger.Info("Server is running with TLS", zap.String("hostname", hostOf(options.ResultHostname)))
			serveErr <- httpSrv.ListenAndServeTLS("", "")
			return
		}

		zapLogger.Info("Server is running", zap.String("hostname", options.Port))
		serveErr <- httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		zapLogger.Info("shutting down")
	case err = <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if shutdownErr := httpSrv.Shutdown(shutdownCtx); shutdownErr != nil {
		zapLogger.Error("http shutdown", zap.Error(shutdownErr))
	}
	if grpcSrv != nil {
		grpcSrv.GracefulStop()
	}

	stopReaper()
	wg.Wait()

	return err
}

func hostOf(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Hostname() == "" {
		return baseURL
	}
	return u.Hostname()
}
