package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"whatsapp-recruiting-funnel/internal/config"
	"whatsapp-recruiting-funnel/internal/domain/ports/adapter"
	"whatsapp-recruiting-funnel/internal/infra/changefeed"
	"whatsapp-recruiting-funnel/internal/infra/db/docrepo"
	pg "whatsapp-recruiting-funnel/internal/infra/db/postgres"
	httpserver "whatsapp-recruiting-funnel/internal/infra/http"
	"whatsapp-recruiting-funnel/internal/infra/i18n"
	"whatsapp-recruiting-funnel/internal/infra/logging"
	"whatsapp-recruiting-funnel/internal/infra/metrics"
	red "whatsapp-recruiting-funnel/internal/infra/redis"
	"whatsapp-recruiting-funnel/internal/infra/sched"
	"whatsapp-recruiting-funnel/internal/infra/security"
	"whatsapp-recruiting-funnel/internal/infra/tasks"
	"whatsapp-recruiting-funnel/internal/infra/worker"
	"whatsapp-recruiting-funnel/internal/messaging"
	"whatsapp-recruiting-funnel/internal/payload"
	"whatsapp-recruiting-funnel/internal/usecase"
)

func serveCmd(g *globalFlags) *cobra.Command {
	var observerWorkers int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP ingress, funnel workers and change feed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(g.configPath, g.dev)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, observerWorkers)
		},
	}
	cmd.Flags().IntVar(&observerWorkers, "observer-workers", 8, "in-process change handlers when kafka is disabled")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, observerWorkers int) error {
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] enabled")
	}

	// ---- Redis: lock, rate limit, task queue ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer redisClient.Close()
	asynqClient := asynq.NewClient(tasks.RedisOpt(&cfg.Redis))
	defer asynqClient.Close()
	queue := tasks.NewQueue(asynqClient, cfg.Asynq, logger)

	// ---- Change feed ----
	observer := usecase.NewObserverUseCase(queue, cfg.Funnel.OptInDelay, logger)
	group, gctx := errgroup.WithContext(ctx)
	var runners []func(context.Context) error

	var publisher adapter.ChangePublisher
	if cfg.Kafka.Enabled() {
		kw := changefeed.NewWriter(cfg.Kafka)
		defer kw.Close()
		publisher = changefeed.NewKafkaPublisher(kw)
		consumer := changefeed.NewKafkaConsumer(changefeed.NewReader(cfg.Kafka), observer.HandleChange, logger)
		runners = append(runners, consumer.Run)
	} else {
		pool := worker.NewPool(observerWorkers, logger)
		pool.Start(gctx)
		defer pool.Stop()
		bus := changefeed.NewBus(pool, logger)
		bus.Subscribe(observer.HandleChange)
		publisher = bus
	}

	// ---- Storage ----
	raw, pgPool, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	if pgPool != nil {
		defer pgPool.Close()
		stats := sched.NewStatsWorker(15*time.Second, func() { pg.ReportPoolStats(pgPool) }, logger)
		runners = append(runners, stats.Run)
	}
	store := changefeed.NewObservedStore(raw, publisher, logger, observedCollections...)
	convRepo := docrepo.NewConversationRepo(store)
	jobRepo := docrepo.NewJobRepo(store)
	appRepo := docrepo.NewApplicationRepo(store)

	// ---- Messaging ----
	reg := payload.NewDefaultRegistry()
	facade := messaging.New(reg,
		messaging.WithTypingSpeed(cfg.Funnel.TypingSpeed),
		messaging.WithPlaceholder(cfg.Funnel.Placeholder),
	)
	messaging.InitGlobal(facade)
	primary, mirrors, closers, err := buildMessaging(cfg, reg, logger)
	if err != nil {
		return err
	}
	for _, c := range closers {
		defer func(c closer) { _ = c() }(c)
	}
	sender := messaging.NewSender(&messaging.Fanout{Primary: primary, Mirrors: mirrors, Log: logger}, facade, "whatsapp", logger)

	translator, err := i18n.NewTranslator(i18n.LocalesFS, cfg.Funnel.Locale)
	if err != nil {
		return err
	}
	links, err := security.NewInterviewTokens(cfg.Funnel.InterviewBaseURL, cfg.Funnel.InterviewTokenSecret, cfg.Funnel.InterviewTokenTTL)
	if err != nil {
		return err
	}
	generator, err := buildGenerator(ctx, cfg.AI, logger)
	if err != nil {
		return err
	}

	// ---- Use cases ----
	convUC := usecase.NewConversationUseCase(convRepo, jobRepo, logger, cfg.Runtime.Dev)
	jobUC := usecase.NewJobUseCase(jobRepo, logger)
	matchUC := usecase.NewMatchUseCase(appRepo, jobRepo, red.NewLocker(redisClient), cfg.Redis.LockTTL, logger)
	optInUC := usecase.NewOptInUseCase(usecase.OptInDeps{
		Conversations: convRepo,
		Jobs:          jobRepo,
		Applications:  appRepo,
		Interviews:    generator,
		Links:         links,
		Sender:        sender,
		Messages:      facade,
		Translator:    translator,
		Location:      loadLocation(cfg.Funnel.Timezone),
	}, logger)
	rankingUC := usecase.NewRankingUseCase(jobRepo, appRepo, logger)

	// ---- Runners ----
	taskServer := tasks.NewServer(tasks.RedisOpt(&cfg.Redis), cfg.Asynq, logger)
	taskServer.Register(matchUC, optInUC, rankingUC)

	httpSrv := httpserver.NewServer(cfg.HTTP.Addr, httpserver.Deps{
		Conversations: convUC,
		Jobs:          jobUC,
		Registry:      reg,
		Limiter:       red.NewRateLimiter(redisClient),
		Tokens:        links,
		TypingSpeed:   cfg.Funnel.TypingSpeed,
		InboundLimit:  cfg.HTTP.InboundLimit,
		InboundWindow: cfg.HTTP.InboundWindow,
		Dev:           cfg.Runtime.Dev,
	}, logger)

	sweeper := sched.NewJobClosureWorker(cfg.Funnel.ClosureSweepInterval, jobUC, logger)

	runners = append(runners, httpSrv.Run, taskServer.Run, sweeper.Run)
	for _, run := range runners {
		group.Go(func() error { return run(gctx) })
	}

	logger.Info().Str("store", cfg.Store.Driver).Bool("kafka", cfg.Kafka.Enabled()).Msg("recruiter started")
	err = group.Wait()
	return shutdownErr(logger, err)
}

func shutdownErr(logger *zerolog.Logger, err error) error {
	if err == nil || errors.Is(err, context.Canceled) {
		logger.Info().Msg("recruiter stopped")
		return nil
	}
	return err
}
