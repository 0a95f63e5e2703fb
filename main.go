package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appauth "github.com/kursant77/ajabo-f69de2d8/internal/application/auth"
	appcatalog "github.com/kursant77/ajabo-f69de2d8/internal/application/catalog"
	appInventory "github.com/kursant77/ajabo-f69de2d8/internal/application/inventory"
	appnotification "github.com/kursant77/ajabo-f69de2d8/internal/application/notification"
	appOrder "github.com/kursant77/ajabo-f69de2d8/internal/application/order"
	appPayment "github.com/kursant77/ajabo-f69de2d8/internal/application/payment"
	appsettings "github.com/kursant77/ajabo-f69de2d8/internal/application/settings"
	appstats "github.com/kursant77/ajabo-f69de2d8/internal/application/stats"
	"github.com/kursant77/ajabo-f69de2d8/internal/config"
	"github.com/kursant77/ajabo-f69de2d8/internal/domain/payment"
	"github.com/kursant77/ajabo-f69de2d8/internal/infrastructure/amqprelay"
	"github.com/kursant77/ajabo-f69de2d8/internal/infrastructure/id"
	"github.com/kursant77/ajabo-f69de2d8/internal/infrastructure/notify"
	infraobs "github.com/kursant77/ajabo-f69de2d8/internal/infrastructure/observability"
	"github.com/kursant77/ajabo-f69de2d8/internal/infrastructure/observability/oteltrace"
	"github.com/kursant77/ajabo-f69de2d8/internal/infrastructure/observability/prometrics"
	"github.com/kursant77/ajabo-f69de2d8/internal/infrastructure/observability/sentryreport"
	"github.com/kursant77/ajabo-f69de2d8/internal/infrastructure/observability/zaplogger"
	"github.com/kursant77/ajabo-f69de2d8/internal/infrastructure/outbox"
	"github.com/kursant77/ajabo-f69de2d8/internal/infrastructure/storage"
	"github.com/kursant77/ajabo-f69de2d8/internal/observability"
	httppresentation "github.com/kursant77/ajabo-f69de2d8/internal/presentation/http"
	telegrampresentation "github.com/kursant77/ajabo-f69de2d8/internal/presentation/telegram"
	workerpresentation "github.com/kursant77/ajabo-f69de2d8/internal/presentation/worker"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := run(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	baseLogger, err := zaplogger.New(
		zaplogger.Options{Level: cfg.Log.Level, File: cfg.Log.File},
		observability.F("service", cfg.Service.Name),
		observability.F("env", cfg.Service.Env),
	)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger.Zap())

	systemLogger := baseLogger.With(observability.F("component", "main"))

	shutdownTracing, err := oteltrace.Setup(ctx, oteltrace.Options{
		ServiceName: cfg.Service.Name,
		Environment: cfg.Service.Env,
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		Insecure:    cfg.Telemetry.OTLPInsecure,
		SampleRatio: cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}

	registry := prometrics.New("ajabo", "")
	counters, histograms := prometrics.Instruments(registry)
	tel := infraobs.New(oteltrace.New(cfg.Service.Name), baseLogger, counters, histograms)

	reporter, flushReports, err := sentryreport.New(sentryreport.Options{
		DSN:         cfg.Telemetry.SentryDSN,
		Environment: cfg.Service.Env,
		Release:     cfg.Service.Name,
	})
	if err != nil {
		return fmt.Errorf("sentry: %w", err)
	}
	defer flushReports(2 * time.Second)

	st, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer st.close()
	systemLogger.Info("storage_ready", observability.F("backend", st.backend))

	limiter, closeLimiter := newLimiter(ctx, cfg, tel, systemLogger)
	defer closeLimiter()

	loc := cfg.Location()
	idGenerator := id.NewUUIDGenerator()
	merchants := cfg.Payment.Merchants()
	resolver := payment.NewResolver(merchants)
	links := payment.NewGenerator(merchants, cfg.Service.PublicBaseURL)

	// In-memory event bus carries order events to the side-effect workers
	bus := outbox.NewBus(tel)

	settingsService := appsettings.NewService(st.settings, resolver)
	updateStatus := appOrder.NewUpdateStatusUseCase(st.orders, bus, tel)
	createOrder := appOrder.NewCreateOrderUseCase(appOrder.CreateOrderDeps{
		Repo:        st.orders,
		Products:    st.catalog,
		Settings:    settingsService,
		Resolver:    resolver,
		Links:       links,
		Limiter:     limiter,
		IDGenerator: idGenerator,
		Publisher:   bus,
	}, tel)
	sweep := appOrder.NewExpirySweepUseCase(st.orders, bus, cfg.Payment.TTL, tel)

	deduct := appInventory.NewDeductStockUseCase(st.inventory, st.catalog, bus, tel)
	appInventory.NewWorker(workerpresentation.Observe(bus, "inventory"), deduct, reporter, tel).Start()

	relay, notifier, bot, err := newNotifiers(cfg, systemLogger)
	if err != nil {
		return err
	}
	if notifier != nil {
		notifyCustomer := appnotification.NewNotifyUseCase(notifier, st.profiles, tel)
		appnotification.NewWorker(workerpresentation.Observe(bus, "notification"), notifyCustomer, reporter, tel).Start()
	} else {
		systemLogger.Warn("customer_notifications_disabled")
	}

	board := appOrder.NewBoard(st.orders, sweep, tel)
	board.Start(workerpresentation.Observe(bus, "board"))

	if cfg.AMQP.URL != "" {
		amqp, err := amqprelay.Dial(cfg.AMQP.URL, cfg.AMQP.Exchange, tel)
		if err != nil {
			return fmt.Errorf("amqp: %w", err)
		}
		defer func() { _ = amqp.Close() }()
		amqp.Start(workerpresentation.Observe(bus, "amqp"))
	}

	bus.Start(ctx)

	if err := board.Load(ctx); err != nil {
		systemLogger.Warn("order_board_load_failed", observability.F("error", err))
	}
	go board.Run(ctx, cfg.Payment.SweepInterval)

	if bot != nil && cfg.Notify.BotPolling {
		go telegrampresentation.NewBot(bot.Bot(), st.profiles, cfg.Service.PublicBaseURL, tel).Run(ctx)
	}

	images, err := storage.NewLocalImageStore(cfg.Uploads.Dir, cfg.Uploads.PublicURL, cfg.Uploads.MaxWidth)
	if err != nil {
		return fmt.Errorf("uploads: %w", err)
	}

	var authService *appauth.Service
	accounts, err := cfg.Auth.Accounts()
	if err != nil {
		return fmt.Errorf("staff accounts: %w", err)
	}
	if len(accounts) > 0 {
		if authService, err = appauth.NewService(accounts, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL); err != nil {
			return err
		}
	} else {
		systemLogger.Warn("staff_auth_disabled")
	}

	handler := httppresentation.NewHandler(httppresentation.Deps{
		CreateOrder:    createOrder,
		UpdateStatus:   updateStatus,
		ConfirmPayment: appPayment.NewConfirmPaymentUseCase(st.orders, updateStatus, tel),
		PaymentLink:    appPayment.NewPaymentLinkUseCase(st.orders, links, tel),
		Orders:         appOrder.NewService(st.orders, loc),
		Board:          board,
		Warehouse:      appInventory.NewWarehouseService(st.inventory, idGenerator),
		Catalog:        appcatalog.NewService(st.catalog, images, idGenerator),
		Settings:       settingsService,
		Stats:          appstats.NewService(st.orders, loc),
		Auth:           authService,
		Relay:          relay,
		Profiles:       st.profiles,
		APIKey:         cfg.Notify.WebhookAPIKey,
		Metrics:        registry.Handler(),
		Uploads:        http.StripPrefix("/uploads/", http.FileServer(http.Dir(images.Dir()))),
	}, baseLogger, tel)

	server := &http.Server{
		Addr:              cfg.Service.HTTPAddr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	server.RegisterOnShutdown(handler.CloseStreams)

	go func() {
		systemLogger.Info("http_server_start",
			observability.F("addr", server.Addr),
		)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			systemLogger.Error("http_server_error",
				observability.F("error", err),
			)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Service.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		systemLogger.Error("http_server_shutdown_error",
			observability.F("error", err),
		)
	} else {
		systemLogger.Info("http_server_stopped")
	}

	bus.Stop(shutdownCtx)
	if err := shutdownTracing(shutdownCtx); err != nil {
		systemLogger.Warn("tracer_shutdown_error", observability.F("error", err))
	}
	return nil
}

// newNotifiers builds the relay (Telegram) and the sender the notification worker uses.
// A configured webhook wins for the worker, matching a deployment where the bot runs elsewhere.
func newNotifiers(cfg *config.Config, logger observability.Logger) (relay, worker appnotification.Sender, bot *notify.TelegramSender, err error) {
	if cfg.Notify.TelegramBotToken != "" {
		bot, err = notify.NewTelegramSender(notify.TelegramOptions{
			Token:     cfg.Notify.TelegramBotToken,
			PerSecond: cfg.Notify.TelegramRate,
		})
		if err != nil {
			return nil, nil, nil, fmt.Errorf("telegram: %w", err)
		}
		relay, worker = bot, bot
		logger.Info("telegram_sender_ready")
	}
	if cfg.Notify.WebhookURL != "" {
		worker = notify.NewWebhookSender(cfg.Notify.WebhookURL, cfg.Notify.WebhookAPIKey, cfg.Notify.WebhookTimeout)
		logger.Info("webhook_sender_ready", observability.F("url", cfg.Notify.WebhookURL))
	}
	return relay, worker, bot, nil
}
