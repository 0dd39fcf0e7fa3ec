package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/ampwatch/internal/config"
	"github.com/muurk/ampwatch/internal/discovery"
	"github.com/muurk/ampwatch/internal/logging"
	"github.com/muurk/ampwatch/internal/metrics"
	"github.com/muurk/ampwatch/internal/pipeline"
	"github.com/muurk/ampwatch/internal/publish"
	"github.com/muurk/ampwatch/internal/report"
	"github.com/muurk/ampwatch/internal/server"
	"github.com/muurk/ampwatch/internal/store"
	"github.com/muurk/ampwatch/internal/version"
)

// Decode command flags
var (
	outputFormat string
	validOnly    bool
	colorMode    string
	lineVoltage  float64
	dbPath       string
	mqttBroker   string
	listenAddr   string
	advertise    bool
)

// decodeCmd decodes captures from stdin or files
var decodeCmd = &cobra.Command{
	Use:   "decode [file...]",
	Short: "Decode captures and print readings",
	Long: `Decode receiver captures and print one line per reading.

Lines are read from the given files in order, or from stdin when no file is
given. Frames with an invalid checksum are never printed. A reading identical
to the previously printed one is suppressed.

Readings can additionally be stored (--db), published to an MQTT broker
(--mqtt-broker) and served over HTTP with a WebSocket live feed (--listen).
A summary is written to stderr when the input ends.`,
	Example: `  # Decode a live capture
  rtl_433 -f 868.3M -s 1024k -R 0 -X 'n=ampwatch,m=FSK_PCM,s=16,l=16,r=1000' -F csv | ampwatch

  # Decode saved captures as JSON, valid checksums only
  ampwatch decode --format json --valid-only capture-*.log

  # Keep a history and serve the live feed on port 8080, advertised over mDNS
  ampwatch decode --db readings.db --listen :8080 --advertise

  # Publish to MQTT
  ampwatch decode --mqtt-broker tcp://localhost:1883`,
	RunE: runDecode,
}

func init() {
	addDecodeFlags(decodeCmd)
	rootCmd.AddCommand(decodeCmd)
}

// addDecodeFlags registers the flags of decode and the root command
func addDecodeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&outputFormat, "format", config.FormatText, "Output format (text, json, detailed)")
	cmd.Flags().BoolVar(&validOnly, "valid-only", false, "Print only readings whose checksum matched exactly")
	cmd.Flags().StringVar(&colorMode, "color", config.ColorAuto, "Colour the checksum result (auto, always, never)")
	addOutputFlags(cmd)
}

// addOutputFlags registers the flags for the sinks and services shared with monitor
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&lineVoltage, "volts", 0, "Line voltage for kWh and kW (default from config, 239)")
	cmd.Flags().StringVar(&dbPath, "db", "", "Store valid readings in this SQLite database")
	cmd.Flags().StringVar(&mqttBroker, "mqtt-broker", "", "Publish valid readings to this MQTT broker (e.g. tcp://localhost:1883)")
	cmd.Flags().StringVar(&listenAddr, "listen", "", "Serve the HTTP API and live feed on this address (e.g. :8080)")
	cmd.Flags().BoolVar(&advertise, "advertise", false, "Advertise the live feed over mDNS (requires --listen)")
}

// applyDecodeFlags copies explicitly set flags over the loaded configuration
func applyDecodeFlags(cmd *cobra.Command, c *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("format") {
		c.Output.Format = outputFormat
	}
	if flags.Changed("valid-only") {
		c.Output.ValidOnly = validOnly
	}
	if flags.Changed("color") {
		c.Output.Color = colorMode
	}
	if flags.Changed("volts") {
		c.LineVoltage = lineVoltage
	}
	if flags.Changed("db") {
		c.Store.Path = dbPath
	}
	if flags.Changed("mqtt-broker") {
		c.MQTT.Broker = mqttBroker
	}
	if flags.Changed("listen") {
		c.Server.Listen = listenAddr
	}
	if flags.Changed("advertise") {
		c.Server.Advertise = advertise
	}

	if c.Server.Advertise && c.Server.Listen == "" {
		return fmt.Errorf("--advertise requires --listen")
	}
	return c.Validate()
}

func runDecode(cmd *cobra.Command, args []string) error {
	if err := applyDecodeFlags(cmd, cfg); err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	out, err := openOutputs(ctx, cfg)
	if err != nil {
		return err
	}
	defer out.Close()

	printer := report.NewPrinter(os.Stdout, report.PrinterOptions{
		Format:    cfg.Output.Format,
		ValidOnly: cfg.Output.ValidOnly,
		Volts:     cfg.LineVoltage,
		Color:     report.ColorEnabled(cfg.Output.Color, os.Stdout),
	})

	proc := &pipeline.Processor{
		Sinks:     append([]pipeline.Sink{printer}, out.sinks...),
		Observer:  out.observers,
		MinLength: cfg.Capture.MinLength,
		MaxLength: cfg.Capture.MaxLength,
	}

	serveErr := out.serve(ctx)

	stats, err := decodeInputs(ctx, proc, args)
	fmt.Fprintln(os.Stderr, stats.Summary())

	if stopErr := out.stop(serveErr); stopErr != nil && err == nil {
		err = stopErr
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// decodeInputs runs proc over every file in order, or over stdin when there are none
func decodeInputs(ctx context.Context, proc *pipeline.Processor, files []string) (pipeline.Stats, error) {
	if len(files) == 0 {
		return proc.Run(ctx, os.Stdin)
	}

	var total pipeline.Stats
	for _, name := range files {
		f, err := os.Open(name)
		if err != nil {
			return total, fmt.Errorf("failed to open capture: %w", err)
		}
		logging.Info("Decoding capture file", zap.String("file", name))

		stats, err := proc.Run(ctx, f)
		f.Close()
		total.Merge(stats)
		if err != nil {
			return total, fmt.Errorf("%s: %w", name, err)
		}
	}
	return total, nil
}

// openInput opens a single capture file, or stdin for "" and "-"
func openInput(name string) (io.ReadCloser, string, error) {
	if name == "" || name == "-" {
		return io.NopCloser(os.Stdin), "stdin", nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open capture: %w", err)
	}
	return f, name, nil
}

// outputs holds the sinks and services configured besides the printer
type outputs struct {
	sinks     []pipeline.Sink
	observers pipeline.Observers
	srv       *server.Server
	closers   []func()

	cancelServe context.CancelFunc
}

// openOutputs opens the store, connects to MQTT and binds the HTTP server as configured.
// On error everything already opened is closed.
func openOutputs(ctx context.Context, c *config.Config) (out *outputs, err error) {
	out = &outputs{}
	defer func() {
		if err != nil {
			out.Close()
			out = nil
		}
	}()

	var history server.History
	if c.Store.Path != "" {
		st, err := store.Open(c.Store.Path)
		if err != nil {
			return out, err
		}
		out.sinks = append(out.sinks, st)
		out.closers = append(out.closers, func() { _ = st.Close() })
		history = st
	}

	if c.MQTT.Broker != "" {
		pub, err := publish.New(publish.Options{
			Broker:      c.MQTT.Broker,
			ClientID:    c.MQTT.ClientID,
			Username:    c.MQTT.Username,
			Password:    c.MQTT.Password,
			TopicPrefix: c.MQTT.TopicPrefix,
			QoS:         byte(c.MQTT.QoS),
			Retain:      c.MQTT.Retain,
			MinInterval: c.MQTT.MinInterval,
			Volts:       c.LineVoltage,
		})
		if err != nil {
			return out, err
		}
		if err := pub.Connect(ctx); err != nil {
			return out, fmt.Errorf("failed to connect to MQTT broker %s: %w", c.MQTT.Broker, err)
		}
		out.sinks = append(out.sinks, pub)
		out.closers = append(out.closers, pub.Close)
	}

	if c.Server.Listen != "" {
		reg := metrics.NewRegistry()
		out.observers = append(out.observers, metrics.NewDecoderMetrics(reg))

		hub := server.NewHub(c.LineVoltage)
		out.sinks = append(out.sinks, hub)

		srv := server.New(server.Config{
			Listen:          c.Server.Listen,
			ReadTimeout:     c.Server.ReadTimeout,
			ShutdownTimeout: c.Server.ShutdownTimeout,
		}, hub, history, metrics.Handler(reg))

		addr, err := srv.Listen()
		if err != nil {
			return out, err
		}
		out.srv = srv

		if c.Server.Advertise {
			tcp, ok := addr.(*net.TCPAddr)
			if !ok {
				return out, fmt.Errorf("cannot advertise non-TCP address %s", addr)
			}
			ad, err := discovery.Advertise(c.Server.Instance, tcp.Port, []string{
				"version=" + version.UserAgent(),
				"path=" + discovery.DefaultFeedPath,
			})
			if err != nil {
				return out, err
			}
			out.closers = append(out.closers, ad.Shutdown)
		}
	}

	return out, nil
}

// serve starts the HTTP server, if any, in the background.
// The returned channel yields its result after stop.
func (o *outputs) serve(ctx context.Context) <-chan error {
	errc := make(chan error, 1)
	if o.srv == nil {
		errc <- nil
		return errc
	}

	ctx, o.cancelServe = context.WithCancel(ctx)
	go func() {
		errc <- o.srv.Serve(ctx)
	}()
	return errc
}

// stop shuts the HTTP server down and waits for it
func (o *outputs) stop(errc <-chan error) error {
	if o.cancelServe != nil {
		o.cancelServe()
	}
	if err := <-errc; err != nil {
		return fmt.Errorf("HTTP server failed: %w", err)
	}
	return nil
}

// Close releases the outputs in reverse order of opening
func (o *outputs) Close() {
	for i := len(o.closers) - 1; i >= 0; i-- {
		o.closers[i]()
	}
	o.closers = nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logging.Info("Received signal, stopping", zap.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
