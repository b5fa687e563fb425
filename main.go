package main

import (
	"context"
	"log"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/metric"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// OBS connection is best-effort: without it the bridge still runs and
	// logs every event.
	var surface ControlSurface
	obsClient := NewOBSClient(cfg.OBS.Host, cfg.OBS.Port, cfg.OBS.Password)
	if err := obsClient.Connect(); err != nil {
		log.Printf("obs: %v (running without OBS)", err)
	} else {
		log.Println("connected to OBS websocket")
		surface = obsClient
		defer obsClient.Close()
		for _, name := range sceneInventory(surface, &cfg) {
			log.Printf("scene %q not found in OBS", name)
		}
	}

	// Optional OTel export
	var otelLogger otellog.Logger
	if cfg.Export.Enabled {
		logExporter, err := otlploggrpc.New(ctx, otlploggrpc.WithInsecure())
		if err != nil {
			log.Fatalf("log exporter: %v", err)
		}
		loggerProvider := sdklog.NewLoggerProvider(
			sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)),
		)
		defer loggerProvider.Shutdown(ctx)
		otelLogger = loggerProvider.Logger(cfg.OTel.ServiceName)
	}

	var meter metric.Meter
	if cfg.Metrics.Enabled {
		metricExporter, err := otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithInsecure())
		if err != nil {
			log.Fatalf("metric exporter: %v", err)
		}
		meterProvider := sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(cfg.Metrics.Interval))),
		)
		defer meterProvider.Shutdown(ctx)
		meter = meterProvider.Meter(cfg.OTel.ServiceName)
	}

	// Core pipeline
	names := NewNameTable()
	router := NewRouter(cfg.Actions, surface)

	var ticker *Ticker
	if cfg.Ticker.Enabled {
		ticker = NewTicker(cfg.Ticker, surface)
	}

	var channels []Channel
	if cfg.Discord.Enabled {
		dc, err := NewDiscordChannel(cfg.Discord.BotToken, cfg.Discord.ChannelID, &cfg)
		if err != nil {
			log.Fatalf("discord: %v", err)
		}
		channels = append(channels, dc)
	}

	bridge := NewBridge(&cfg, router, ticker, channels)

	var otelSub *OTelSubscriber
	if otelLogger != nil || meter != nil {
		otelSub = NewOTelSubscriber(otelLogger, meter, &cfg)
	}

	// Ingestion source
	var source Source
	switch cfg.Source.Strategy {
	case "protocol":
		client := NewAPClient(cfg.Archipelago, names)
		client.Subscribe(bridge)
		if otelSub != nil {
			client.Subscribe(otelSub)
		}
		source = client
	case "subprocess":
		parser := NewLineParser()
		parser.Subscribe(bridge)
		if otelSub != nil {
			parser.Subscribe(otelSub)
		}
		sub := NewSubprocessSource(cfg.Source, cfg.Archipelago)
		sub.Subscribe(parser)
		source = sub
	case "logfile":
		parser := NewLineParser()
		parser.Subscribe(bridge)
		if otelSub != nil {
			parser.Subscribe(otelSub)
		}
		tailer := NewLogTailer(cfg.Source.LogFile)
		tailer.Subscribe(parser)
		source = tailer
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		bridge.Run(ctx)
	}()

	for _, ch := range channels {
		wg.Add(1)
		go func(c Channel) {
			defer wg.Done()
			if err := c.Start(ctx); err != nil {
				log.Printf("channel %s: %v", c.Name(), err)
			}
		}(ch)
	}

	log.Printf("archipelago-obs-bridge started (source=%s, obs=%v, ticker=%v, channels=%d)",
		cfg.Source.Strategy, surface != nil, cfg.Ticker.Enabled, len(channels))

	if err := source.Run(ctx); err != nil {
		log.Printf("ingestion ended: %v", err)
		router.Route(Event{Type: EventDisconnected, Text: "Lost connection to Archipelago server", Time: time.Now()})
	}

	cancel()
	wg.Wait()
	log.Println("shutting down")
}

// sceneInventory logs the OBS scene collection at startup and returns the
// configured scene names missing from it.
func sceneInventory(surface ControlSurface, cfg *Config) []string {
	scenes, err := surface.SceneList()
	if err != nil {
		log.Printf("list scenes: %v", err)
		return nil
	}
	current, err := surface.CurrentScene()
	if err != nil {
		log.Printf("current scene: %v", err)
		return nil
	}
	log.Printf("obs scenes: %v (current %q)", scenes, current)

	var names []string
	if cfg.Ticker.Enabled {
		names = append(names, cfg.Ticker.SceneName)
		if cfg.Ticker.Celebration.Enabled {
			names = append(names, cfg.Ticker.Celebration.SceneName, cfg.Ticker.Celebration.MainScene)
		}
	}
	for _, action := range cfg.Actions {
		if action.Type == "scene_switch" {
			names = append(names, action.SceneName)
		}
	}

	var missing []string
	seen := map[string]bool{}
	for _, name := range names {
		if name == "" || seen[name] || contains(scenes, name) {
			continue
		}
		seen[name] = true
		missing = append(missing, name)
	}
	return missing
}
