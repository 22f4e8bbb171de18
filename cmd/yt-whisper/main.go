package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/snarg/yt-whisper/internal/acquire"
	"github.com/snarg/yt-whisper/internal/api"
	"github.com/snarg/yt-whisper/internal/audio"
	"github.com/snarg/yt-whisper/internal/config"
	"github.com/snarg/yt-whisper/internal/pipeline"
	"github.com/snarg/yt-whisper/internal/transcribe"
)

var version = "dev"

func main() {
	startTime := time.Now()

	var overrides config.Overrides
	flag.StringVar(&overrides.EnvFile, "env-file", "", "path to .env file (default .env)")
	flag.StringVar(&overrides.HTTPAddr, "listen", "", "HTTP listen address (overrides HTTP_ADDR and PORT)")
	flag.StringVar(&overrides.LogLevel, "log-level", "", "log level (overrides LOG_LEVEL)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		os.Stdout.WriteString(version + "\n")
		return
	}

	// Config
	cfg, err := config.Load(overrides)
	if err != nil {
		early := zerolog.New(os.Stderr).With().Timestamp().Logger()
		early.Fatal().Err(err).Msg("failed to load config")
	}

	// Logger
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stdout).With().Timestamp().Logger().Level(level)
	log.Info().Str("version", version).Msg("yt-whisper starting")

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Acquisition
	acqLog := log.With().Str("component", "acquire").Logger()
	profile := &acquire.Profile{
		UserAgent:      cfg.UserAgent,
		AcceptLanguage: cfg.AcceptLanguage,
		Referer:        cfg.Referer,
	}
	switch {
	case cfg.CookieFile != "":
		fc, err := acquire.WatchCookieFile(cfg.CookieFile, acqLog)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.CookieFile).Msg("failed to load cookie file")
		}
		defer fc.Close()
		profile.Cookies = fc
	case cfg.Cookie != "":
		profile.Cookies = acquire.StaticCookie(cfg.Cookie)
	default:
		log.Warn().Msg("no YT_COOKIE or YT_COOKIE_FILE set, upstream may reject requests")
	}
	acquirer := acquire.NewDefault(acquire.NewYouTubeSource(profile), cfg.DownloadBufferSize, acqLog)

	// Transcription
	tcfg := transcribe.Config{
		Provider: cfg.TranscribeProvider,
		APIKey:   cfg.OpenAIAPIKey,
		BaseURL:  cfg.OpenAIBaseURL,
		Model:    cfg.WhisperModel,
		Language: cfg.WhisperLanguage,
		Timeout:  cfg.WhisperTimeout,
	}
	if cfg.TranscribeProvider == "whisper" {
		tcfg.BaseURL = cfg.WhisperURL
	}
	provider, err := transcribe.New(tcfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create transcription provider")
	}
	log.Info().
		Str("provider", provider.Name()).
		Str("model", provider.Model()).
		Strs("strategies", acquirer.Strategies()).
		Msg("pipeline configured")

	// Pipeline
	pipeLog := log.With().Str("component", "pipeline").Logger()
	scratch := audio.NewScratch(cfg.ScratchDirectory(), pipeLog)
	p := pipeline.New(acquirer, provider, scratch, pipeLog)

	// HTTP Server
	httpLog := log.With().Str("component", "http").Logger()
	info := api.HealthInfo{
		Provider:   provider.Name(),
		Model:      provider.Model(),
		Strategies: acquirer.Strategies(),
		HasCookie:  profile.HasCookie,
	}
	srv := api.NewServer(cfg, p, info, version, startTime, httpLog)

	// Start HTTP server in background
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	// Wait for shutdown signal or server error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("http server error")
		}
	}

	// Transcriptions can run for minutes; give in-flight requests time to finish.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown error")
	}

	log.Info().Msg("yt-whisper stopped")
}
