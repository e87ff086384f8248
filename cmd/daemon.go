package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/omrisk/internal/cli"
	"github.com/theirongolddev/omrisk/internal/config"
	"github.com/theirongolddev/omrisk/internal/daemon"
	"github.com/theirongolddev/omrisk/internal/store"
)

type daemonRuntimeState struct {
	PID        int       `json:"pid"`
	Addr       string    `json:"addr"`
	StartedAt  time.Time `json:"started_at"`
	ConfigPath string    `json:"config_path"`
}

var (
	flagDaemonAddr         string
	flagDaemonSchedule     string
	flagDaemonDetach       bool
	flagDaemonStateFile    string
	flagDaemonLogFile      string
	flagDaemonEventsBuffer int
	flagDaemonChild        bool
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Re-score assumptions in the background and serve results over HTTP/SSE",
	RunE:  runDaemon,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon process and latest risk",
	RunE:  runDaemonStatus,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running daemon",
	RunE:  runDaemonStop,
}

func init() {
	runDir := filepath.Dir(store.DefaultPath())
	defaults := config.DefaultFile().Daemon

	daemonCmd.PersistentFlags().StringVar(&flagDaemonAddr, "addr", defaults.Addr, "HTTP listen address")
	daemonCmd.PersistentFlags().StringVar(&flagDaemonStateFile, "state-file", filepath.Join(runDir, "omriskd.json"), "Runtime state file (pid and address)")
	daemonCmd.Flags().StringVar(&flagDaemonSchedule, "schedule", defaults.Schedule, `Re-score schedule (cron spec or "@every 1h"; "" disables)`)
	daemonCmd.Flags().StringVar(&flagDaemonLogFile, "log-file", filepath.Join(runDir, "omriskd.log"), "Log file path for detached mode")
	daemonCmd.Flags().IntVar(&flagDaemonEventsBuffer, "events-buffer", defaults.EventsBuffer, "Max in-memory events retained")

	daemonCmd.Flags().BoolVar(&flagDaemonDetach, "detach", false, "Run daemon as a background process")
	daemonCmd.Flags().BoolVar(&flagDaemonChild, "child", false, "Internal: mark detached child process")
	_ = daemonCmd.Flags().MarkHidden("child")

	daemonCmd.AddCommand(daemonStatusCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	if flagDaemonDetach && flagDaemonChild {
		return errors.New("invalid daemon launch mode")
	}
	if flagDaemonDetach {
		return startDaemonDetached()
	}
	return runDaemonForeground(cmd)
}

func startDaemonDetached() error {
	if err := claimRuntime(flagDaemonStateFile); err != nil {
		return err
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	args := append(filterDetachArg(os.Args[1:]), "--child")

	if err := os.MkdirAll(filepath.Dir(flagDaemonLogFile), 0o750); err != nil {
		return fmt.Errorf("create daemon log directory: %w", err)
	}

	//nolint:gosec // daemon log path is configured by the local user
	logf, err := os.OpenFile(flagDaemonLogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open daemon log file: %w", err)
	}
	defer func() { _ = logf.Close() }()

	child := exec.Command(exe, args...) //nolint:gosec // exe/args come from current process invocation
	child.Stdout = logf
	child.Stderr = logf
	child.Env = os.Environ()

	if err := child.Start(); err != nil {
		return fmt.Errorf("start detached daemon: %w", err)
	}

	fmt.Printf("  Started daemon (pid %d)\n", child.Process.Pid)
	fmt.Printf("  State: %s\n", flagDaemonStateFile)
	fmt.Printf("  API: http://%s/v1/status\n", flagDaemonAddr)
	fmt.Printf("  Log: %s\n", flagDaemonLogFile)
	return nil
}

// daemonConfig resolves daemon settings: flags win when set, then the
// assumptions file, then built-in defaults.
func daemonConfig(cmd *cobra.Command, file config.File) daemon.Config {
	cfg := daemon.Config{
		ConfigPath:   flagConfig,
		Addr:         flagDaemonAddr,
		Schedule:     flagDaemonSchedule,
		EventsBuffer: flagDaemonEventsBuffer,
	}
	if !cmd.Flags().Changed("addr") && file.Daemon.Addr != "" {
		cfg.Addr = file.Daemon.Addr
	}
	if !cmd.Flags().Changed("schedule") && file.Daemon.Schedule != "" {
		cfg.Schedule = file.Daemon.Schedule
	}
	if !cmd.Flags().Changed("events-buffer") && file.Daemon.EventsBuffer > 0 {
		cfg.EventsBuffer = file.Daemon.EventsBuffer
	}
	cfg.NSims, cfg.Seed = overrides(cmd)
	return cfg
}

func runDaemonForeground(cmd *cobra.Command) error {
	if err := claimRuntime(flagDaemonStateFile); err != nil {
		return err
	}

	// A broken file is not fatal here; the service reports it and keeps
	// watching for a fix.
	file, err := config.Load(flagConfig)
	if err != nil {
		logger.Warn().Err(err).Msg("assumptions unreadable, daemon settings from flags")
	}
	cfg := daemonConfig(cmd, file)

	if !flagNoStore {
		db, err := store.Open(flagDB)
		if err != nil {
			logger.Warn().Err(err).Msg("run history unavailable")
		} else {
			defer func() { _ = db.Close() }()
			cfg.Store = db
		}
	}

	err = writeRuntime(flagDaemonStateFile, daemonRuntimeState{
		PID:        os.Getpid(),
		Addr:       cfg.Addr,
		StartedAt:  time.Now(),
		ConfigPath: flagConfig,
	})
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(flagDaemonStateFile) }()

	svc := daemon.New(cfg, logger)

	fmt.Printf("  omrisk daemon listening on http://%s\n", cfg.Addr)
	if cfg.Schedule != "" {
		fmt.Printf("  Re-scoring %s on %q\n", flagConfig, cfg.Schedule)
	} else {
		fmt.Printf("  Re-scoring %s on change only\n", flagConfig)
	}
	fmt.Printf("  Stop with: omrisk daemon stop --state-file %s\n", flagDaemonStateFile)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runDaemonStatus(_ *cobra.Command, _ []string) error {
	st, err := readRuntime(flagDaemonStateFile)
	switch {
	case errors.Is(err, os.ErrNotExist):
		fmt.Println("  Daemon: not running")
		return nil
	case err != nil:
		return err
	case !processAlive(st.PID):
		fmt.Printf("  Daemon: stale state file (pid %d not alive)\n", st.PID)
		return nil
	}

	fmt.Printf("  Daemon PID: %d (up %s)\n", st.PID, time.Since(st.StartedAt).Round(time.Second))
	fmt.Printf("  Address: http://%s\n", st.Addr)
	fmt.Printf("  Assumptions: %s\n", st.ConfigPath)

	status, err := fetchStatus(st.Addr)
	if err != nil {
		fmt.Printf("  API status: %v\n", err)
		return nil
	}
	printDaemonStatus(status)
	return nil
}

func fetchStatus(addr string) (daemon.Status, error) {
	var st daemon.Status
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + addr + "/v1/status") //nolint:noctx // short status check
	if err != nil {
		return st, fmt.Errorf("unreachable (%w)", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return st, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return st, fmt.Errorf("malformed response (%w)", err)
	}
	return st, nil
}

func printDaemonStatus(st daemon.Status) {
	if st.LastRunAt.IsZero() {
		fmt.Printf("  Last run: pending\n")
	} else {
		fmt.Printf("  Last run: %s\n", st.LastRunAt.Local().Format(time.RFC3339))
	}
	fmt.Printf("  Run count: %d\n", st.RunCount)
	if st.Schedule != "" {
		fmt.Printf("  Schedule: %s\n", st.Schedule)
	}
	if st.Summary.RunID != "" {
		fmt.Printf("  Budget: %s\n", cli.FormatCost(st.Summary.Budget))
		fmt.Printf("  P(over budget): %s\n", cli.FormatPercent(st.Summary.ProbOverBudget))
		fmt.Printf("  Expected overrun: %s\n", cli.FormatCost(st.Summary.ExpectedOverrun))
		if st.Summary.TopDriver != "" {
			fmt.Printf("  Top driver: %s (%s of variance)\n", st.Summary.TopDriver, cli.FormatPercent(st.Summary.TopDriverShare))
		}
	}
	if st.LastError != "" {
		fmt.Printf("  Last error: %s\n", st.LastError)
	}
}

func runDaemonStop(_ *cobra.Command, _ []string) error {
	st, err := readRuntime(flagDaemonStateFile)
	if err != nil || !processAlive(st.PID) {
		return errors.New("daemon is not running")
	}

	proc, err := os.FindProcess(st.PID)
	if err != nil {
		return fmt.Errorf("find daemon process: %w", err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal daemon process: %w", err)
	}

	if !waitForExit(st.PID, 8*time.Second) {
		return fmt.Errorf("daemon (pid %d) did not exit in time", st.PID)
	}
	_ = os.Remove(flagDaemonStateFile)
	fmt.Printf("  Stopped daemon (pid %d)\n", st.PID)
	return nil
}

func waitForExit(pid int, timeout time.Duration) bool {
	tick := time.NewTicker(150 * time.Millisecond)
	defer tick.Stop()
	deadline := time.After(timeout)
	for {
		if !processAlive(pid) {
			return true
		}
		select {
		case <-tick.C:
		case <-deadline:
			return false
		}
	}
}

func filterDetachArg(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if a != "--detach" && !strings.HasPrefix(a, "--detach=") {
			out = append(out, a)
		}
	}
	return out
}

// claimRuntime fails when a live daemon owns the state file and clears a
// stale one.
func claimRuntime(path string) error {
	st, err := readRuntime(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil
	case err == nil && processAlive(st.PID):
		return fmt.Errorf("daemon already running (pid %d)", st.PID)
	}
	_ = os.Remove(path)
	return nil
}

func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}

func writeRuntime(path string, st daemonRuntimeState) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create daemon directory: %w", err)
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write daemon state: %w", err)
	}
	return nil
}

func readRuntime(path string) (daemonRuntimeState, error) {
	var st daemonRuntimeState
	data, err := os.ReadFile(path) //nolint:gosec // state path is configured by the local user
	if err != nil {
		return st, err
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return st, fmt.Errorf("parsing %s: %w", path, err)
	}
	return st, nil
}
