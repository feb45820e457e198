package operations

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/cascade-models/netbreak/launch"
	"github.com/cascade-models/netbreak/model"
	"github.com/cascade-models/netbreak/sim"
	"github.com/cascade-models/netbreak/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
)

const testSweepConfig = `gammas: [-0.5, 0.2]
replicates: 2
parameters:
  n: 12
  k: 3
  psi: 0.25
  p: 0.5
  timesteps: 20
  stats_window: 5
  fitness_trials: 10
`

func runApp(args ...string) error {
	app := cli.NewApp()
	app.Commands = []cli.Command{Launch(), Sweep(), Simulate(), Summarize()}
	return app.Run(append([]string{"netbreak"}, args...))
}

func writeSweepConfig(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "sweep.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testSweepConfig), 0644))
	return path
}

func behaviorExists(output string, gamma float64, rep int) bool {
	key := model.OutputKey(model.BehaviorData, gamma, "behavior", rep, model.FileJSON)
	_, err := os.Stat(filepath.Join(output, filepath.FromSlash(key)))
	return err == nil
}

func TestSimulateCommand(t *testing.T) {
	config := writeSweepConfig(t)
	output := t.TempDir()

	require.NoError(t, runApp("simulate", "--config", config, "--gamma", "0.2", "--replicate", "4", "--output", output))
	assert.True(t, behaviorExists(output, 0.2, 4))

	assert.Error(t, runApp("simulate", "--config", config, "--output", output))
	assert.Error(t, runApp("simulate", "--config", config, "--gamma", "2", "--output", output))
	assert.Error(t, runApp("simulate", "--config", filepath.Join(output, "missing.yaml"), "--gamma", "0.2"))
}

func TestSweepAndSummarizeCommands(t *testing.T) {
	config := writeSweepConfig(t)
	output := t.TempDir()

	require.NoError(t, runApp("sweep", "--config", config, "--workers", "2", "--output", output, "--", "-1"))
	for rep := 0; rep < 2; rep++ {
		assert.True(t, behaviorExists(output, 0.2, rep))
		assert.False(t, behaviorExists(output, -0.5, rep))
	}

	summaryFile := filepath.Join(t.TempDir(), "summary.json")
	require.NoError(t, runApp("summarize", "--gamma", "0.2", "--output", output, "--file", summaryFile))

	data, err := os.ReadFile(summaryFile)
	require.NoError(t, err)
	summaries := []sim.ReplicateSummary{}
	require.NoError(t, json.Unmarshal(data, &summaries))
	require.Len(t, summaries, 2)
	for i, s := range summaries {
		assert.Equal(t, i, s.Replicate)
		assert.Equal(t, 12, s.Individuals)
		assert.True(t, s.MeanAccuracy > 0 && s.MeanAccuracy <= 1)
	}

	yamlFile := filepath.Join(t.TempDir(), "summary.yaml")
	require.NoError(t, runApp("summarize", "--gamma", "0.2", "--output", output, "--file", yamlFile))
	fromYAML := []sim.ReplicateSummary{}
	require.NoError(t, util.ReadFileYAML(yamlFile, &fromYAML))
	assert.Equal(t, summaries, fromYAML)

	assert.Error(t, runApp("sweep", "--config", config, "--output", output, "--", "5"))
	assert.Error(t, runApp("sweep", "--config", config, "--output", output, "first"))
	assert.Error(t, runApp("summarize", "--output", output))
}

func TestResolveProfile(t *testing.T) {
	dir := t.TempDir()

	var profile *launch.Profile
	var err error
	require.NoError(t, runTestCommand(launchFlags(), []string{"--profile", "short", "--dir", dir, "--cores", "4", "--time", "30", "--", "-2"}, func(c *cli.Context) error {
		profile, err = resolveProfile(c)
		return nil
	}))
	require.NoError(t, err)
	assert.Equal(t, dir, profile.Directory)
	assert.Equal(t, 4, profile.CoresPerTask)
	assert.Equal(t, "30", profile.TimeLimit)
	assert.Equal(t, "-2", profile.Arg)
	exe, err := os.Executable()
	require.NoError(t, err)
	assert.Equal(t, []string{exe, "sweep", "--", "-2"}, profile.Args())

	require.NoError(t, runTestCommand(launchFlags(), []string{}, func(c *cli.Context) error {
		profile, err = resolveProfile(c)
		return nil
	}))
	require.NoError(t, err)
	assert.Equal(t, launch.FullProfile, profile.Name)
	assert.Equal(t, "-1", profile.Arg)

	require.NoError(t, runTestCommand(launchFlags(), []string{"--profile", "weekly"}, func(c *cli.Context) error {
		profile, err = resolveProfile(c)
		return nil
	}))
	assert.Error(t, err)
}

func TestLaunchCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`name: test
nodes: 1
tasks: 1
cores_per_task: 2
time_limit: "1"
directory: `+dir+`
command: [/bin/sh, -c, 'printf "%s" "$2" > arg.txt', sh, "--"]
`), 0644))

	require.NoError(t, runApp("launch", "--profile", path, "--", "-1"))
	data, err := os.ReadFile(filepath.Join(dir, "arg.txt"))
	require.NoError(t, err)
	assert.Equal(t, "-1", string(data))

	assert.Error(t, runApp("launch", "--profile", path, "--", "x"))
}
