package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/muurk/ampwatch/internal/client"
	"github.com/muurk/ampwatch/internal/config"
	"github.com/muurk/ampwatch/internal/discovery"
	"github.com/muurk/ampwatch/internal/frame"
	"github.com/muurk/ampwatch/internal/logging"
	"github.com/muurk/ampwatch/internal/pipeline"
	"github.com/muurk/ampwatch/internal/report"
	"github.com/muurk/ampwatch/internal/store"
	"github.com/muurk/ampwatch/internal/ui"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Command flags
var (
	frameFormat   string
	crcExpect     string
	historyLimit  int
	historySender string
	historyJSON   bool
	historyRemote string
	scanTimeout   int
	forceInit     bool
)

func init() {
	rootCmd.AddCommand(frameCmd)
	rootCmd.AddCommand(crcCmd)
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(configCmd)

	frameCmd.Flags().StringVar(&frameFormat, "format", config.FormatDetailed, "Output format (detailed, text, json)")
	frameCmd.Flags().Float64Var(&lineVoltage, "volts", 0, "Line voltage for kWh and kW (default from config, 239)")

	crcCmd.Flags().StringVar(&crcExpect, "expect", "", "Received checksum (4 hex digits) to classify against")

	addOutputFlags(monitorCmd)

	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of readings to show")
	historyCmd.Flags().StringVar(&historySender, "sender", "", "Only show readings from this sender id")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Print readings as JSON")
	historyCmd.Flags().StringVar(&historyRemote, "remote", "", "Read from a running instance's HTTP API instead (e.g. http://pi.local:8080)")
	historyCmd.Flags().StringVar(&dbPath, "db", "", "Reading database (default store.path, or readings.db in the config directory)")

	scanCmd.Flags().IntVar(&scanTimeout, "timeout", 5, "Scan timeout in seconds")

	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
}

// frameCmd decodes a single frame
var frameCmd = &cobra.Command{
	Use:   "frame <nibbles>",
	Short: "Decode a single frame",
	Long: `Resynchronize and decode one frame given as hex nibbles, and show every field.

The nibbles may start with any amount of preamble, exactly as the receiver
captured them. The command fails if the frame cannot be decoded.`,
	Example: `  ampwatch frame 34751a2b3c4d800d010003e8000000fa0000bf740
  ampwatch frame --format json aaaaa8d1d46...`,
	Args: cobra.ExactArgs(1),
	RunE: runFrame,
}

func runFrame(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("volts") {
		cfg.LineVoltage = lineVoltage
	}

	raw := strings.TrimSpace(args[0])
	rec, err := frame.Parse(raw)
	if err != nil {
		logging.LogFrame(0, raw, err)
		return fmt.Errorf("failed to decode frame: %w", err)
	}

	switch strings.ToLower(frameFormat) {
	case config.FormatText:
		fmt.Println(report.Text(rec, cfg.LineVoltage))
	case config.FormatJSON:
		data, err := report.JSON(pipeline.Reading{Record: rec}, cfg.LineVoltage)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	case config.FormatDetailed:
		fmt.Print(report.Detailed(rec, cfg.LineVoltage))
	default:
		return fmt.Errorf("unknown format %q (want detailed, text or json)", frameFormat)
	}
	return nil
}

// crcCmd computes the frame checksum of arbitrary bytes
var crcCmd = &cobra.Command{
	Use:   "crc <hex>...",
	Short: "Compute the CRC-16/SPI-FUJITSU of hex bytes",
	Long: `Compute the checksum used by the frames over the given hex bytes.

Arguments are joined, so bytes may be separated by spaces. With --expect the
received checksum is classified as valid, shifted left, shifted right or invalid.`,
	Example: `  # Checksum of the payload of a frame (nibbles 8..35)
  ampwatch crc 3c4d800d010003e8000000fa0000

  # Classify a received checksum
  ampwatch crc 3c4d800d010003e8000000fa0000 --expect 7ee8`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCRC,
}

func runCRC(cmd *cobra.Command, args []string) error {
	input := strings.Join(strings.Fields(strings.Join(args, " ")), "")
	data, err := hex.DecodeString(input)
	if err != nil {
		return fmt.Errorf("invalid hex input: %w", err)
	}
	logging.LogRawBytes("CRC input", data)

	computed := frame.Checksum(data)
	if crcExpect == "" {
		fmt.Printf("%04x\n", computed)
		return nil
	}

	received, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(crcExpect), "0x"), 16, 16)
	if err != nil {
		return fmt.Errorf("invalid --expect value %q: %w", crcExpect, err)
	}
	result := frame.ClassifyCRC(computed, uint16(received))
	fmt.Printf("computed %04x received %04x: %s\n", computed, received, result)
	return nil
}

// monitorCmd shows the live terminal monitor
var monitorCmd = &cobra.Command{
	Use:   "monitor [file]",
	Short: "Show readings in a live terminal monitor",
	Long: `Decode captures from a file or stdin and show them in a full screen monitor.

The monitor shows line counters, the latest reading of every sender and a table
of recent frames. It stays open after the input ends; press q to quit. The same
storage, MQTT and HTTP options as decode are available.`,
	Example: `  rtl_433 ... | ampwatch monitor
  ampwatch monitor capture.log --volts 230`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMonitor,
}

func runMonitor(cmd *cobra.Command, args []string) error {
	if err := applyDecodeFlags(cmd, cfg); err != nil {
		return err
	}

	name := ""
	if len(args) == 1 {
		name = args[0]
	}
	in, source, err := openInput(name)
	if err != nil {
		return err
	}
	defer in.Close()

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	out, err := openOutputs(ctx, cfg)
	if err != nil {
		return err
	}
	defer out.Close()

	proc := &pipeline.Processor{
		Sinks:     out.sinks,
		Observer:  out.observers,
		MinLength: cfg.Capture.MinLength,
		MaxLength: cfg.Capture.MaxLength,
	}

	// Keyboard input must not compete with the capture for stdin
	var teaOpts []tea.ProgramOption
	if source == "stdin" {
		teaOpts = append(teaOpts, tea.WithInputTTY())
	}

	serveErr := out.serve(ctx)

	stats, err := ui.RunMonitor(ctx, proc, in, ui.MonitorOptions{
		Command: strings.TrimSpace(cmd.CommandPath() + " " + strings.Join(args, " ")),
		Source:  source,
		Volts:   cfg.LineVoltage,
		Names:   cfg.SenderName,
	}, teaOpts...)

	width, _ := ui.GetTerminalSize()
	fmt.Println(ui.RenderSummary(stats, width))

	if stopErr := out.stop(serveErr); stopErr != nil && err == nil {
		err = stopErr
	}
	return err
}

// historyCmd lists stored readings
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show stored readings",
	Long: `List the most recent readings kept by decode --db, newest first.

Only readings with a valid checksum are stored.`,
	Example: `  ampwatch history --limit 50
  ampwatch history --sender 3c4d --json

  # Readings stored by another host running decode --db --listen
  ampwatch history --remote http://pi.local:8080`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	if historyLimit <= 0 {
		return fmt.Errorf("--limit must be positive")
	}

	var (
		entries []store.Entry
		source  string
		total   = -1
		err     error
	)
	if historyRemote != "" {
		entries, err = remoteHistory(cmd.Context())
		source = historyRemote
	} else {
		entries, total, source, err = localHistory(cmd.Context())
	}
	if err != nil {
		return err
	}

	if historyJSON {
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if len(entries) == 0 {
		fmt.Println("No readings stored.")
		return nil
	}

	if total >= 0 {
		fmt.Printf("%s of %s readings in %s\n\n", humanize.Comma(int64(len(entries))), humanize.Comma(int64(total)), source)
	} else {
		fmt.Printf("%s readings from %s\n\n", humanize.Comma(int64(len(entries))), source)
	}
	fmt.Printf("%-26s %-14s %10s %10s %9s %4s  %s\n", "DATE", "SENDER", "TOTAL AH", "TOTAL KWH", "CURRENT A", "BAT", "STORED")
	for _, e := range entries {
		fmt.Printf("%-26s %-14s %10.2f %10.3f %9.2f %4s  %s\n",
			e.Date,
			cfg.SenderName(e.SenderID),
			e.TotalAh,
			e.TotalAh*cfg.LineVoltage/1000,
			e.CurrentA,
			e.Battery,
			humanize.Time(e.StoredAt),
		)
	}
	return nil
}

// localHistory reads the SQLite store, returning the entries and the stored total
func localHistory(ctx context.Context) ([]store.Entry, int, string, error) {
	path := cfg.Store.Path
	if dbPath != "" {
		path = dbPath
	}
	if path == "" {
		var err error
		if path, err = config.DefaultStorePath(); err != nil {
			return nil, 0, "", err
		}
	}
	if _, err := os.Stat(path); err != nil {
		return nil, 0, "", fmt.Errorf("no reading history at %s (run decode with --db first)", path)
	}

	st, err := store.Open(path)
	if err != nil {
		return nil, 0, "", err
	}
	defer st.Close()

	var entries []store.Entry
	if historySender != "" {
		entries, err = st.RecentBySender(ctx, strings.ToLower(historySender), historyLimit)
	} else {
		entries, err = st.Recent(ctx, historyLimit)
	}
	if err != nil {
		return nil, 0, "", err
	}

	total, err := st.Count(ctx)
	if err != nil {
		return nil, 0, "", err
	}
	return entries, total, path, nil
}

// remoteHistory reads /readings of another instance. The sender filter is applied
// locally, so fewer than --limit readings may be shown.
func remoteHistory(ctx context.Context) ([]store.Entry, error) {
	entries, err := client.NewClient(historyRemote).Readings(ctx, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to read history from %s: %w", historyRemote, err)
	}
	if historySender == "" {
		return entries, nil
	}

	filtered := entries[:0]
	for _, e := range entries {
		if strings.EqualFold(e.SenderID, historySender) {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

// scanCmd discovers advertised live feeds
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for ampwatch live feeds on the network",
	Long: `Scan for ampwatch instances started with --listen --advertise, using mDNS/DNS-SD.

Every instance found is listed with its HTTP and WebSocket addresses.`,
	Example: `  # Scan for 5 seconds (default)
  ampwatch scan

  # Longer scan for slow networks
  ampwatch scan --timeout 15`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	fmt.Printf("Scanning for ampwatch feeds (timeout: %ds)...\n\n", scanTimeout)

	scanner := discovery.NewScanner()
	scanner.Timeout = time.Duration(scanTimeout) * time.Second

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	instances, err := scanner.Scan(ctx)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(instances) == 0 {
		fmt.Println("No feeds found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Start the decoder with --listen and --advertise")
		fmt.Println("  - Check that both hosts are on the same network segment")
		fmt.Println("  - Allow mDNS (UDP port 5353) through the firewall")
		fmt.Println("  - Try increasing --timeout")
		return nil
	}

	fmt.Printf("Found %d feed(s):\n\n", len(instances))
	for i, inst := range instances {
		fmt.Printf("%d. %s\n", i+1, inst.Name)
		fmt.Printf("   Host:    %s\n", inst.Hostname)
		fmt.Printf("   HTTP:    %s\n", inst.BaseURL())
		fmt.Printf("   Feed:    %s\n", inst.FeedURL())
		if v := inst.GetMetadata("version"); v != "" {
			fmt.Printf("   Version: %s\n", v)
		}
		printFeedHealth(ctx, inst)
		fmt.Println()
	}
	return nil
}

// printFeedHealth queries /healthz of a discovered instance
func printFeedHealth(ctx context.Context, inst *discovery.Instance) {
	c := client.NewClient(inst.BaseURL())
	c.SetTimeout(2 * time.Second)
	c.SetRetry(0, 0)

	h, err := c.Health(ctx)
	if err != nil {
		fmt.Printf("   Status:  unreachable (%v)\n", err)
		return
	}
	fmt.Printf("   Status:  %s, %d live client(s)\n", h.Status, h.Clients)
}

// configCmd groups the configuration file commands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:               "init",
	Short:             "Write the default configuration file",
	Args:              cobra.NoArgs,
	PersistentPreRunE: initLoggingOnly,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configFilePath()
		if err != nil {
			return err
		}
		if err := config.WriteDefault(path, forceInit); err != nil {
			return err
		}
		fmt.Printf("Wrote default configuration to %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration after applying the file and AMPWATCH_* environment
variables. Credentials are masked.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := yaml.Marshal(cfg.Redacted())
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		fmt.Print(string(data))
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:               "path",
	Short:             "Print the configuration file location",
	Args:              cobra.NoArgs,
	PersistentPreRunE: initLoggingOnly,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configFilePath()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

func configFilePath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.GetConfigPath()
}
