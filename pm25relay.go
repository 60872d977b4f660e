package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/version"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/alepar/pm25relay/airquality"
	"github.com/alepar/pm25relay/airquality/linenotify"
	"github.com/alepar/pm25relay/airquality/serialline"
	"github.com/alepar/pm25relay/airquality/thingspeak"
)

const programName = "pm25relay"

type options struct {
	port        string
	baud        int
	readTimeout time.Duration
	interval    time.Duration

	thingSpeakURL    string
	thingSpeakAPIKey string
	lineURL          string
	lineToken        string
	httpTimeout      time.Duration

	listenAddr string
	logLevel   string
	logFile    string
}

func init() {
	//logging
	formatter := &log.TextFormatter{
		FullTimestamp: true,
	}
	log.SetFormatter(formatter)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:          programName,
		Short:        "Relay PM2.5 readings from a serial sensor to ThingSpeak and LINE Notify",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.port, "port", serialline.DefaultPort, "serial device the sensor is attached to")
	flags.IntVar(&opts.baud, "baud", serialline.DefaultBaud, "serial baud rate")
	flags.DurationVar(&opts.readTimeout, "read-timeout", serialline.DefaultReadTimeout, "serial read timeout")
	flags.DurationVar(&opts.interval, "interval", airquality.DefaultInterval, "sleep after every read attempt")
	flags.StringVar(&opts.thingSpeakURL, "thingspeak-url", thingspeak.DefaultURL, "ThingSpeak update endpoint")
	flags.StringVar(&opts.thingSpeakAPIKey, "thingspeak-api-key", "", "ThingSpeak channel write key")
	flags.StringVar(&opts.lineURL, "line-url", linenotify.DefaultURL, "LINE Notify endpoint")
	flags.StringVar(&opts.lineToken, "line-token", "", "LINE Notify access token")
	flags.DurationVar(&opts.httpTimeout, "http-timeout", 10*time.Second, "timeout of each outbound HTTP call")
	flags.StringVar(&opts.listenAddr, "listen-address", "", "address to expose /metrics on, disabled when empty")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flags.StringVar(&opts.logFile, "log-file", "", "write logs to this rotated file instead of stderr")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Print(programName))
		},
	})

	return cmd
}

func run(opts *options) error {
	if err := setupLogging(opts.logLevel, opts.logFile); err != nil {
		return err
	}

	if opts.listenAddr != "" {
		go serveMetrics(opts.listenAddr)
	}

	reader, err := serialline.Open(serialline.Config{
		Port:        opts.port,
		Baud:        opts.baud,
		ReadTimeout: opts.readTimeout,
	})
	if err != nil {
		log.Fatalf("failed to open sensor: %s", err)
	}
	log.Infof("Connected to %s at %d baud.", opts.port, opts.baud)

	// runs until the process is killed; the port is never closed
	newRelay(reader, opts).Run(context.Background())
	return nil
}

func newRelay(source airquality.LineSource, opts *options) *airquality.Relay {
	return &airquality.Relay{
		Source: source,
		Notifiers: []airquality.Notifier{
			thingspeak.New(opts.thingSpeakURL, opts.thingSpeakAPIKey, opts.httpTimeout),
			linenotify.New(opts.lineURL, opts.lineToken, opts.httpTimeout),
		},
		Interval: opts.interval,
		Observer: &metricsObserver{port: opts.port},
	}
}

func setupLogging(level, file string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetLevel(lvl)

	if file != "" {
		log.SetOutput(&lumberjack.Logger{
			Filename:   file,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		})
	}
	return nil
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	// Expose the registered metrics via HTTP.
	mux.Handle("/metrics", promhttp.HandlerFor(
		prometheus.DefaultGatherer,
		promhttp.HandlerOpts{
			// Opt into OpenMetrics to support exemplars.
			EnableOpenMetrics: true,
		},
	))
	log.Infof("serving metrics on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Errorf("metrics listener stopped: %s", err)
	}
}
