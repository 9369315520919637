package di

import (
	"context"
	"fmt"
	"time"

	"IPOWatch/internal/domain/models"
	"IPOWatch/internal/domain/repository"
	"IPOWatch/internal/handler/api"
	internalrepo "IPOWatch/internal/repository"
	"IPOWatch/internal/service/ratelimit"
	"IPOWatch/internal/service/serverchan"
	"IPOWatch/internal/service/tushare"
	"IPOWatch/internal/services/ipo"
	"IPOWatch/internal/usecase"
	"IPOWatch/pkg/cache"
	pkgch "IPOWatch/pkg/clickhouse"
	"IPOWatch/pkg/config"
	xhttp "IPOWatch/pkg/http"
	pkgkafka "IPOWatch/pkg/kafka"
	applogger "IPOWatch/pkg/logger"
	"IPOWatch/pkg/metrics"
	"IPOWatch/pkg/server"
)

// connectTimeout bounds start-up connections to optional backends.
const connectTimeout = 10 * time.Second

// Sinks is the set of enabled aggregate mirrors.
type Sinks []repository.AggregateSink

// ProvideLogger builds the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: logger: %w", models.ErrConfig, err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideProvider creates the TuShare new_share client.
func ProvideProvider(cfg *config.Config) repository.Provider {
	return tushare.New(cfg.TuShare.Token,
		tushare.WithBaseURL(cfg.TuShare.BaseURL),
		tushare.WithFields(cfg.TuShare.Fields),
		tushare.WithTimeout(cfg.TuShare.Timeout),
		tushare.WithRateLimit(ratelimit.New(cfg.TuShare.CallsPerMinute, 1)),
	)
}

// ProvidePusher returns nil when no send key is configured; the notifier
// then skips with a warning.
func ProvidePusher(cfg *config.Config) repository.Pusher {
	c := serverchan.New(cfg.Push.SendKey, cfg.Push.BaseURL, cfg.Push.Timeout)
	if !c.Configured() {
		return nil
	}
	return c
}

// ProvideResultStore creates the CSV output store.
func ProvideResultStore(cfg *config.Config) repository.ResultStore {
	return internalrepo.NewCSVStore(cfg.Output.RawPath, cfg.Output.MonthlyPath)
}

// ProvideCache picks Redis when enabled, otherwise an in-process cache.
func ProvideCache(cfg *config.Config, l *applogger.Logger) (cache.Service, func(), error) {
	if !cfg.Redis.Enabled {
		mc := cache.NewMemoryCache(cache.WithMemoryMaxSize(64), cache.WithMemoryCleanup(time.Minute))
		return mc, func() { _ = mc.Close() }, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	rc, err := cache.NewRedisCache(ctx,
		cache.WithRedisAddr(cfg.Redis.Host, cfg.Redis.Port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		return nil, nil, err
	}
	l.Info("redis connected", applogger.String("host", cfg.Redis.Host), applogger.Int("port", cfg.Redis.Port))
	return rc, func() {
		if err := rc.Close(); err != nil {
			l.Warn("redis close error", applogger.Error(err))
		}
	}, nil
}

// ProvideSnapshotStore keeps the last pass and the pass lease in the cache.
func ProvideSnapshotStore(c cache.Service, cfg *config.Config) repository.SnapshotStore {
	return internalrepo.NewCacheSnapshotStore(c, cfg.Redis.LockTTL)
}

// ProvideSinks connects the enabled mirrors. A mirror that cannot connect
// fails start-up; once running, mirror errors only warn.
func ProvideSinks(cfg *config.Config, l *applogger.Logger) (Sinks, func(), error) {
	var sinks Sinks
	cleanup := func() {
		for _, s := range sinks {
			if err := s.Close(); err != nil {
				l.Warn("sink close error", applogger.String("sink", s.Name()), applogger.Error(err))
			}
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if cfg.ClickHouse.Enabled {
		ch, err := pkgch.NewClient(ctx,
			pkgch.WithHost(cfg.ClickHouse.Host),
			pkgch.WithPort(cfg.ClickHouse.Port),
			pkgch.WithDatabase(cfg.ClickHouse.Database),
			pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
			pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
			pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
			pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("clickhouse client: %w", err)
		}
		sink, err := internalrepo.NewCHMonthlySink(ctx, ch)
		if err != nil {
			_ = ch.Close()
			return nil, nil, fmt.Errorf("clickhouse schema: %w", err)
		}
		sinks = append(sinks, sink)
		l.Info("clickhouse mirror ready", applogger.String("database", cfg.ClickHouse.Database))
	}

	if cfg.Kafka.Enabled {
		producer, err := pkgkafka.NewProducer(
			pkgkafka.WithBrokers(cfg.Kafka.Brokers),
			pkgkafka.WithCompression(cfg.Kafka.Compression),
			pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
			pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
			pkgkafka.WithWriteTimeout(cfg.Kafka.WriteTimeout),
			pkgkafka.WithHashByKey(true),
		)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("kafka producer: %w", err)
		}
		sinks = append(sinks, internalrepo.NewKafkaMonthlyPublisher(producer, cfg.Kafka.Topic))
		l.Info("kafka mirror ready", applogger.Strings("brokers", cfg.Kafka.Brokers), applogger.String("topic", cfg.Kafka.Topic))
	}

	return sinks, cleanup, nil
}

// ProvideNotifier uses the fixed default thresholds.
func ProvideNotifier(p repository.Pusher) *usecase.Notifier {
	return usecase.NewNotifier(p, ipo.DefaultThresholds())
}

// ProvidePipeline assembles one monitoring pass.
func ProvidePipeline(
	cfg *config.Config,
	provider repository.Provider,
	store repository.ResultStore,
	notifier *usecase.Notifier,
	m repository.Metrics,
	l *applogger.Logger,
	sinks Sinks,
	snapshots repository.SnapshotStore,
) *usecase.Pipeline {
	return usecase.NewPipeline(provider, store, notifier, m, l.With(applogger.String("component", "pipeline")),
		usecase.WithWindow(models.Window{Start: cfg.Window.Start, End: cfg.Window.End}),
		usecase.WithSinks(sinks...),
		usecase.WithSnapshots(snapshots),
		usecase.WithThresholds(ipo.DefaultThresholds()),
	)
}

// ProvideScheduler validates the schedule settings.
func ProvideScheduler(cfg *config.Config, p *usecase.Pipeline, l *applogger.Logger) (*usecase.Scheduler, error) {
	spec, err := usecase.ParseSchedule(cfg.Schedule.Mode, cfg.Schedule.IntervalHours, cfg.Schedule.At, cfg.Schedule.RunOnStart)
	if err != nil {
		return nil, err
	}
	return usecase.NewScheduler(p, spec, l.With(applogger.String("component", "scheduler"))), nil
}

// ProvideHTTPServer builds the status server; it is started only when
// server.enabled is set.
func ProvideHTTPServer(cfg *config.Config, snapshots repository.SnapshotStore, l *applogger.Logger) *xhttp.Server {
	h := api.NewIPOEchoHandler(l, usecase.NewStatusReader(snapshots))
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	return xhttp.NewServer(h,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(metricsPath),
		xhttp.WithLogger(l.With(applogger.String("component", "http"))),
	)
}

// ProvideApp creates the application.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	p *usecase.Pipeline,
	s *usecase.Scheduler,
	srv *xhttp.Server,
) *server.App {
	return server.New(cfg, l, p, s, srv)
}
