// Package serve runs the HTTP host for annotator sessions.
package serve

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"

	"github.com/tphakala/callscope/internal/api"
	"github.com/tphakala/callscope/internal/buildinfo"
	"github.com/tphakala/callscope/internal/conf"
	"github.com/tphakala/callscope/internal/errors"
	"github.com/tphakala/callscope/internal/logger"
	"github.com/tphakala/callscope/internal/mqtt"
	"github.com/tphakala/callscope/internal/observability"
	"github.com/tphakala/callscope/internal/session"
)

const sentryFlushTimeout = 2 * time.Second

// Command creates the serve command.
func Command(settings *conf.Settings) *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve annotator sessions over HTTP",
		Long:  "Start the HTTP API with SSE and websocket channels, and optionally forward expand requests over MQTT.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("host") {
				settings.WebServer.Host = host
			}
			if cmd.Flags().Changed("port") {
				settings.WebServer.Port = port
			}
			return Run(cmd.Context(), settings)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Address to bind to")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on")

	return cmd
}

// Run serves until ctx ends.
func Run(ctx context.Context, settings *conf.Settings) error {
	log := logger.Global().Module("serve")
	info := buildinfo.Current()
	log.Info("starting callscope",
		logger.String("version", info.GetVersion()),
		logger.String("build_date", info.GetBuildDate()))

	if settings.Telemetry.Enabled && settings.Telemetry.DSN != "" {
		if err := initSentry(settings, info.GetVersion()); err != nil {
			log.Warn("telemetry disabled", logger.Error(err))
		} else {
			defer sentry.Flush(sentryFlushTimeout)
		}
	}

	m, err := observability.NewMetrics()
	if err != nil {
		return err
	}

	opts := []session.Option{session.WithMetrics(m.Annotator)}
	if settings.MQTT.Enabled {
		pub, stop, err := startPublisher(ctx, settings, m, log)
		if err != nil {
			return err
		}
		defer stop()
		opts = append(opts, session.WithSink(pub.Sink))
	}

	manager, err := session.NewManager(session.ConfigFromSettings(settings), opts...)
	if err != nil {
		return err
	}
	defer manager.Close()

	server, err := api.NewServer(api.ConfigFromSettings(settings), manager, api.WithMetrics(m))
	if err != nil {
		return err
	}
	return server.Start(ctx)
}

func initSentry(settings *conf.Settings, release string) error {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         settings.Telemetry.DSN,
		Environment: settings.Telemetry.Environment,
		Release:     "callscope@" + release,
	})
	if err != nil {
		return fmt.Errorf("sentry init: %w", err)
	}
	errors.SetTelemetryReporter(errors.NewSentryReporter(true))
	return nil
}

// startPublisher connects the MQTT client and starts the publish worker. A broker that is
// down at startup is not fatal; the client keeps retrying in the background.
func startPublisher(ctx context.Context, settings *conf.Settings, m *observability.Metrics, log logger.Logger) (*mqtt.Publisher, func(), error) {
	client, err := mqtt.NewClient(mqtt.ConfigFromSettings(settings), m.MQTT)
	if err != nil {
		return nil, nil, err
	}
	if err := client.Connect(ctx); err != nil {
		log.Warn("mqtt broker not reachable, retrying in background",
			logger.String("broker", settings.MQTT.Broker),
			logger.Error(err))
	}

	pub := mqtt.NewPublisher(client, mqtt.PublisherConfig{
		Topic:     settings.MQTT.Topic,
		AllEvents: settings.MQTT.AllEvents,
	}, m.MQTT)
	// The worker outlives ctx so Stop can flush what was queued before shutdown.
	pub.Start(context.WithoutCancel(ctx))

	return pub, func() {
		pub.Stop()
		client.Disconnect()
	}, nil
}
