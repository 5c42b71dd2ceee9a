package main

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"github.com/Le-Stef/ferrumdb/internal/cluster"
	"github.com/Le-Stef/ferrumdb/internal/config"
	"github.com/Le-Stef/ferrumdb/internal/metrics"
	"github.com/Le-Stef/ferrumdb/internal/server"
	"github.com/Le-Stef/ferrumdb/internal/shard"
	"github.com/Le-Stef/ferrumdb/internal/siphash"
)

func main() {
	log := newLogger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	syncPolicy, err := cfg.SyncPolicy()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid sync policy")
	}

	if err := os.MkdirAll(cfg.AOFDir, 0o755); err != nil {
		log.Fatal().Err(err).Msg("failed to create AOF directory")
	}

	numShards := cfg.ShardCount()
	log.Info().Int("shards", numShards).Str("sync_policy", syncPolicy.String()).Msg("FerrumDB starting")

	metricsReg := metrics.NewRegistry()

	shards := make([]*shard.Shard, numShards)
	for i := 0; i < numShards; i++ {
		s, err := shard.New(shard.Config{
			ID:                 i,
			AOFPath:            shard.AOFPathForShard(cfg.AOFDir, i),
			SyncPolicy:         syncPolicy,
			InboxCapacity:      cfg.InboxCapacity,
			ActiveExpireSample: cfg.ActiveExpireSampleSize,
			ActiveExpireEvery:  cfg.ActiveExpireEvery,
			Log:                log,
			Metrics:            metricsReg,
		})
		if err != nil {
			log.Fatal().Err(err).Int("shard_id", i).Msg("failed to initialize shard")
		}
		go s.Run()
		shards[i] = s
	}

	routeKey, err := randomRouteKey()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to generate shard routing key")
	}
	mgr := cluster.NewManager(shards, routeKey)

	ln, err := server.Listen(cfg.Bind, mgr, log)
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.Bind).Msg("failed to bind listener")
	}
	log.Info().Str("addr", ln.Addr().String()).Msg("accepting connections")

	go func() {
		if err := ln.Serve(); err != nil {
			log.Error().Err(err).Msg("listener stopped")
		}
	}()

	metricsSrv := metrics.NewServer(cfg.MetricsBind, metricsReg.Gatherer, log)
	go func() {
		if err := metricsSrv.Serve(); err != nil {
			log.Error().Err(err).Msg("metrics endpoint stopped")
		}
	}()

	waitForShutdownSignal()
	log.Info().Msg("shutting down")

	if err := ln.Close(); err != nil {
		log.Warn().Err(err).Msg("error closing listener")
	}
	if err := metricsSrv.Shutdown(context.Background()); err != nil {
		log.Warn().Err(err).Msg("error closing metrics endpoint")
	}
	if err := mgr.Shutdown(); err != nil {
		log.Error().Err(err).Msg("error during shard shutdown")
		os.Exit(1)
	}
}

func newLogger() zerolog.Logger {
	writer := &lumberjack.Logger{
		Filename:   "ferrumdb.log",
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     28,
	}
	return zerolog.New(zerolog.MultiLevelWriter(os.Stderr, writer)).With().Timestamp().Logger()
}

func randomRouteKey() (siphash.Key, error) {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return siphash.Key{}, err
	}
	return siphash.Key{
		K0: binary.LittleEndian.Uint64(buf[0:8]),
		K1: binary.LittleEndian.Uint64(buf[8:16]),
	}, nil
}

func waitForShutdownSignal() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
}
