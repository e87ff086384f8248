package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/omrisk/internal/config"
	"github.com/theirongolddev/omrisk/internal/model"
	"github.com/theirongolddev/omrisk/internal/pipeline"
	"github.com/theirongolddev/omrisk/internal/store"
)

func TestSetupValuesRoundTrip(t *testing.T) {
	def := config.DefaultFile()
	vals := newSetupValues(def)
	assert.Equal(t, "3", vals.Buffer)
	assert.Equal(t, "20", *vals.Vols["maintenance"])

	got, err := vals.apply(def)
	require.NoError(t, err)
	assert.Equal(t, def.Simulation, got.Simulation)
	assert.InDelta(t, def.Budget.BufferPct, got.Budget.BufferPct, 1e-12)
	for c, v := range def.AnnualVolPct {
		assert.InDelta(t, v, got.AnnualVolPct[c], 1e-12, c)
	}
	assert.Equal(t, def.AnnualMean, got.AnnualMean)
}

func TestSetupValuesApplyRejectsBadInput(t *testing.T) {
	def := config.DefaultFile()

	vals := newSetupValues(def)
	vals.Sims = "many"
	_, err := vals.apply(def)
	assert.ErrorContains(t, err, "simulations")

	vals = newSetupValues(def)
	vals.Sims = "0"
	_, err = vals.apply(def)
	var cerr *config.ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, config.RuleNSims, cerr.Rule)

	vals = newSetupValues(def)
	bad := "-5"
	vals.Means["labor"] = &bad
	_, err = vals.apply(def)
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, config.RuleAnnualMean, cerr.Rule)
}

func TestParsePct(t *testing.T) {
	p, err := parsePct(" 12.5% ")
	require.NoError(t, err)
	assert.InDelta(t, 0.125, p, 1e-12)

	_, err = parsePct("abc")
	assert.Error(t, err)
	assert.Error(t, validateNumber("x"))
	assert.NoError(t, validateNumber("4%"))
}

func TestAssumptionsTable(t *testing.T) {
	a := config.DefaultFile().CostModel().Assumptions()
	tbl := assumptionsTable(a)
	require.Len(t, tbl.Rows, len(a.Categories)+5)
	assert.Equal(t, []string{"labor", "$5,400,000", "5.0%"}, tbl.Rows[0])
	assert.Equal(t, "$9,800,000", tbl.Rows[len(a.Categories)+1][1])
}

func TestOrDefault(t *testing.T) {
	assert.Equal(t, "x", orDefault("x", "y"))
	assert.Equal(t, "y", orDefault("", "y"))
}

func TestFilterDetachArg(t *testing.T) {
	got := filterDetachArg([]string{"daemon", "--detach", "--addr", "x", "--detach=true"})
	assert.Equal(t, []string{"daemon", "--addr", "x"}, got)
}

func TestDaemonConfigPrecedence(t *testing.T) {
	newCmd := func() *cobra.Command {
		c := &cobra.Command{Use: "daemon"}
		c.Flags().StringVar(&flagDaemonAddr, "addr", "127.0.0.1:8790", "")
		c.Flags().StringVar(&flagDaemonSchedule, "schedule", "@every 1h", "")
		c.Flags().IntVar(&flagDaemonEventsBuffer, "events-buffer", 200, "")
		return c
	}

	file := config.DefaultFile()
	file.Daemon = config.DaemonConfig{Addr: "0.0.0.0:9000", Schedule: "0 6 * * *", EventsBuffer: 50}

	cfg := daemonConfig(newCmd(), file)
	assert.Equal(t, "0.0.0.0:9000", cfg.Addr)
	assert.Equal(t, "0 6 * * *", cfg.Schedule)
	assert.Equal(t, 50, cfg.EventsBuffer)
	assert.Nil(t, cfg.NSims)

	c := newCmd()
	require.NoError(t, c.Flags().Set("addr", "127.0.0.1:1"))
	require.NoError(t, c.Flags().Set("schedule", ""))
	cfg = daemonConfig(c, file)
	assert.Equal(t, "127.0.0.1:1", cfg.Addr)
	assert.Empty(t, cfg.Schedule)
	assert.Equal(t, 50, cfg.EventsBuffer)
}

func TestResolveRunID(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := model.NewCostModelConfig(
		map[string]float64{"labor": 1_000_000},
		map[string]float64{"labor": 0.1},
		100, 1, 0.03,
	)
	var ids []string
	for range 2 {
		res, err := pipeline.Run(cfg, pipeline.Options{Logger: zerolog.Nop()})
		require.NoError(t, err)
		require.NoError(t, db.SaveRun(res))
		ids = append(ids, res.RunID.String())
	}

	got, err := resolveRunID(db, ids[0])
	require.NoError(t, err)
	assert.Equal(t, ids[0], got)

	if ids[0][:8] != ids[1][:8] {
		got, err = resolveRunID(db, ids[1][:8])
		require.NoError(t, err)
		assert.Equal(t, ids[1], got)
	}

	_, err = resolveRunID(db, "")
	assert.ErrorContains(t, err, "ambiguous")

	_, err = resolveRunID(db, "zzzz")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestHistoryDeleteByPrefix(t *testing.T) {
	flagDB = filepath.Join(t.TempDir(), "runs.db")
	db, err := store.Open(flagDB)
	require.NoError(t, err)

	cfg := model.NewCostModelConfig(
		map[string]float64{"labor": 1_000_000},
		map[string]float64{"labor": 0.1},
		100, 1, 0.03,
	)
	res, err := pipeline.Run(cfg, pipeline.Options{Logger: zerolog.Nop()})
	require.NoError(t, err)
	require.NoError(t, db.SaveRun(res))
	require.NoError(t, db.Close())

	id := res.RunID.String()
	require.NoError(t, runHistoryDelete(historyDeleteCmd, []string{id[:8]}))

	db, err = store.Open(flagDB)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	n, err := db.RunCount()
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.ErrorIs(t, runHistoryDelete(historyDeleteCmd, []string{id}), store.ErrNotFound)
}

func TestRuntimeStateClaim(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run", "omriskd.json")
	require.NoError(t, claimRuntime(path))

	live := daemonRuntimeState{PID: os.Getpid(), Addr: "127.0.0.1:8790", StartedAt: time.Now()}
	require.NoError(t, writeRuntime(path, live))
	got, err := readRuntime(path)
	require.NoError(t, err)
	assert.Equal(t, live.PID, got.PID)
	assert.Equal(t, live.Addr, got.Addr)
	assert.ErrorContains(t, claimRuntime(path), "already running")

	require.NoError(t, writeRuntime(path, daemonRuntimeState{PID: 0}))
	require.NoError(t, claimRuntime(path))
	_, err = os.Stat(path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
