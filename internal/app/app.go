package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"heic-converter/internal/broker"
	kafka_impl "heic-converter/internal/broker/kafka"
	"heic-converter/internal/config"
	convert_h "heic-converter/internal/http-server/handler/convert"
	"heic-converter/internal/http-server/router"
	postgres_repo "heic-converter/internal/repository/conversion/db/postgres"
	conversion_uc "heic-converter/internal/usecase/conversion"
	"heic-converter/internal/usecase/processor"

	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/zlog"
)

type App struct {
	cfg        *config.Config
	server     *http.Server
	logger     *zlog.Zerolog
	conversion *conversion_uc.ConversionUsecase
	journal    *postgres_repo.ConversionsRepository
	producer   broker.ConversionPublisher
}

func NewApp(cfg *config.Config, logger *zlog.Zerolog) (*App, error) {
	retries := cfg.DefaultRetryStrategy()

	opts := []conversion_uc.Option{conversion_uc.WithTrackTimeout(cfg.Converter.TrackTimeout)}
	a := &App{
		cfg:    cfg,
		logger: logger,
	}

	if cfg.DB.Enabled {
		dbOpts := &dbpg.Options{
			MaxOpenConns:    cfg.DB.MaxOpenConns,
			MaxIdleConns:    cfg.DB.MaxIdleConns,
			ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
		}

		db, err := dbpg.New(cfg.DBDSN(), []string{}, dbOpts)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		a.journal = postgres_repo.NewConversionsRepository(db, retries)
		opts = append(opts, conversion_uc.WithJournal(a.journal))
		logger.Info().Str("host", cfg.DB.Host).Str("database", cfg.DB.Name).Msg("Conversion journal enabled")
	}

	if cfg.Kafka.Enabled {
		producer := kafka_impl.NewProducerClient(cfg)
		a.producer = producer
		opts = append(opts, conversion_uc.WithEvents(producer))
		logger.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("Conversion events enabled")
	}

	imageProcessor := processor.NewImageProcessor(logger)

	a.conversion = conversion_uc.NewConversionUsecase(imageProcessor, logger, opts...)

	convertHandler := convert_h.NewConvertHandler(a.conversion, logger, cfg.Converter.MaxUploadSize)

	h := &router.Handler{
		ConvertHandler: convertHandler,
	}

	mux := router.SetupRouter(h)

	a.server = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return a, nil
}

func (a *App) Run() error {
	a.logger.Info().Str("addr", a.server.Addr).Msg("Starting server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go a.handleSignals(cancel)

	serverErr := make(chan error, 1)
	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		a.logger.Error().Err(err).Msg("Server error")
		a.close()
		return err
	case <-ctx.Done():
		a.logger.Info().Msg("Shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.logger.Error().Err(err).Msg("Server shutdown failed")
		}

		a.close()

		a.logger.Info().Msg("Server stopped gracefully")
		return nil
	}
}

func (a *App) close() {
	a.conversion.Wait()

	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close database")
		}
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close kafka producer")
		}
	}
}

func (a *App) handleSignals(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	a.logger.Info().Str("signal", sig.String()).Msg("Received signal")
	cancel()
}
