// Command itchbook reconstructs a NASDAQ TotalView-ITCH 5.0 limit order
// book for one symbol from a historical capture file, emitting a CSV of
// top-of-book snapshots and optionally broadcasting them live over
// websocket and Kafka.
package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"itchbook/internal/book"
	"itchbook/internal/broadcast"
	"itchbook/internal/capture"
	"itchbook/internal/config"
	"itchbook/internal/emit"
	"itchbook/internal/errs"
	"itchbook/internal/logging"
	"itchbook/internal/pipeline"
	"itchbook/internal/replay"
	"itchbook/internal/runstats"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// ---------------- Config ----------------

	cfg, err := config.Parse(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	// ---------------- Logging ----------------

	log, err := logging.New(cfg.Verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	defer log.Sync()

	// ---------------- Byte source ----------------

	src, err := capture.Open(cfg.File)
	if err != nil {
		log.Error("open capture", zap.Error(err))
		return exitCode(err)
	}
	defer src.Close()

	// ---------------- Output sink ----------------

	out, err := os.Create(cfg.Output)
	if err != nil {
		log.Error("create output", zap.Error(&errs.IoError{Op: "create " + cfg.Output, Err: err}))
		return 1
	}
	defer out.Close()

	csvSink, err := emit.NewCSVSink(out, cfg.Depth)
	if err != nil {
		log.Error("init csv sink", zap.Error(err))
		return 1
	}

	// ---------------- Optional broadcaster ----------------

	var bc *broadcast.Broadcaster
	var clock *replay.Clock
	bcDone := make(chan struct{})
	if cfg.Websocket {
		bc = broadcast.New(log, cfg.QueueSize)
		clock = replay.New(cfg.CatchupThreshold)

		if len(cfg.KafkaBrokers) > 0 {
			sink, err := broadcast.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic, log)
			if err != nil {
				log.Error("kafka sink init", zap.Error(err))
				return 1
			}
			defer sink.Close()
			bc.Add(sink)
		}

		ws := broadcast.NewWSServer(bc, log, cfg.SubscriberBuffer, cfg.SendDeadline)
		mux := http.NewServeMux()
		mux.Handle("/", ws)
		server := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Port), Handler: mux}
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("websocket server", zap.Error(err))
			}
		}()
		defer server.Close()

		go func() {
			bc.Run(func(snap emit.Snapshot) { clock.WaitUntil(snap.TimestampNs) })
			close(bcDone)
		}()
		defer func() {
			bc.Close()
			<-bcDone
		}()
	}

	// ---------------- Engine ----------------

	engine := book.New()
	start := time.Now()

	snapshots, unknownTags, perr := pipeline.Run(src.Bytes(), cfg.Symbol, engine, cfg.Depth, func(snap emit.Snapshot) error {
		if err := csvSink.Write(snap); err != nil {
			return err
		}
		if bc != nil {
			bc.Queue() <- snap
		}
		return nil
	})

	if err := csvSink.Flush(); err != nil {
		log.Error("flush csv", zap.Error(err))
		if perr == nil {
			perr = err
		}
	}

	runstats.Report(log, engine.Stats, int64(src.Len()), unknownTags, snapshots, time.Since(start))

	if perr != nil {
		log.Error("parse failed", zap.Error(perr))
		return exitCode(perr)
	}
	return 0
}

// exitCode maps an error kind to the exit codes in spec.md §6: 1 for I/O
// errors, 2 for everything else fatal (malformed input or config).
func exitCode(err error) int {
	var ioErr *errs.IoError
	if errors.As(err, &ioErr) {
		return 1
	}
	return 2
}
