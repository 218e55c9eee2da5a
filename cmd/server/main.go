package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/baditaflorin/go_asm_preprocess/internal/adapters/logger"
	"github.com/baditaflorin/go_asm_preprocess/pkg/preprocess"
	"github.com/baditaflorin/l"
	"github.com/valyala/fasthttp"
)

// Default configuration
const (
	DefaultPort           = 8080
	DefaultReadTimeout    = 30 * time.Second
	DefaultWriteTimeout   = 30 * time.Second
	DefaultMaxRequestSize = 10 * 1024 * 1024 // 10MB
	DefaultConcurrency    = 0                // 0 means use GOMAXPROCS
)

func main() {
	port := flag.Int("port", DefaultPort, "HTTP server port")
	readTimeout := flag.Duration("read-timeout", DefaultReadTimeout, "HTTP read timeout")
	writeTimeout := flag.Duration("write-timeout", DefaultWriteTimeout, "HTTP write timeout")
	maxRequestSize := flag.Int("max-request-size", DefaultMaxRequestSize, "Maximum request size in bytes")
	concurrency := flag.Int("concurrency", DefaultConcurrency, "Maximum number of concurrent requests (0 = GOMAXPROCS)")
	warmUp := flag.Bool("warm-up", true, "Perform system warm-up on startup")
	logFile := flag.String("log-file", "", "Log file path (empty = stdout)")
	flag.Parse()

	lg, err := createLogger(*logFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Close()

	lg.Info("Starting preprocessing HTTP server",
		"port", *port,
		"read_timeout", *readTimeout,
		"write_timeout", *writeTimeout,
		"max_request_size", *maxRequestSize,
		"concurrency", *concurrency,
	)

	pre, err := preprocess.New(
		preprocess.WithLogger(lg),
		preprocess.WithFastNormalizer(),
		preprocess.WithWarmUp(*warmUp),
	)
	if err != nil {
		lg.Error("Failed to initialize preprocessor", "error", err)
		os.Exit(1)
	}
	lg.Info("Preprocessor initialized", "warm_up", pre.Warmed(), "cpus", runtime.NumCPU())

	h := newHandler(pre, lg)
	server := &fasthttp.Server{
		Handler:               h.serve,
		ReadTimeout:           *readTimeout,
		WriteTimeout:          *writeTimeout,
		MaxRequestBodySize:    *maxRequestSize,
		Concurrency:           *concurrency,
		DisableKeepalive:      false,
		TCPKeepalive:          true,
		TCPKeepalivePeriod:    3 * time.Minute,
		MaxIdleWorkerDuration: 10 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		lg.Info("Shutting down server...")
		if err := server.Shutdown(); err != nil {
			lg.Error("Error during server shutdown", "error", err)
		}
		close(idleConnsClosed)
	}()

	addr := fmt.Sprintf(":%d", *port)
	lg.Info("Server listening", "address", addr)
	if err := server.ListenAndServe(addr); err != nil {
		lg.Error("Server error", "error", err)
	}

	<-idleConnsClosed
	lg.Info("Server stopped")
}

// createLogger creates and configures a JSON logger
func createLogger(logFile string) (l.Logger, error) {
	var output io.Writer = os.Stdout
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		output = file
	}

	cfg := logger.DefaultConfig(output)
	cfg.JsonFormat = true
	cfg.MaxFileSize = 100 * 1024 * 1024 // 100MB

	lg, err := l.NewStandardFactory().CreateLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return lg, nil
}
