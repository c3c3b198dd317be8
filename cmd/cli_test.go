package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const logHeader = "ip,date,time,zone,cik,accession,extention,code,size,idx,norefer,noagent,find,crawler,browser"

var logRecords = []string{
	"101.81.133.jja,2017-06-30,00:00:00,0.0,1608552.0,0001047469-17-004337,-index.htm,200.0,80251.0,1.0,0.0,0.0,9.0,0.0,",
	"107.23.85.jfd,2017-06-30,00:00:00,0.0,1027281.0,0000898430-02-001167,-index.htm,200.0,2825.0,1.0,0.0,0.0,10.0,0.0,",
	"107.23.85.jfd,2017-06-30,00:00:00,0.0,1136894.0,0000905148-07-003827,-index.htm,200.0,3021.0,1.0,0.0,0.0,10.0,0.0,",
	"106.120.173.jie,2017-06-30,00:00:01,0.0,1258052.0,0001410368-10-000001,.txt,200.0,6283.0,0.0,0.0,0.0,10.0,0.0,",
	"107.178.195.aag,2017-06-30,00:00:01,0.0,1111111.0,0001410368-10-000002,-index.htm,200.0,1234.0,1.0,0.0,0.0,10.0,0.0,",
	"108.91.91.hbc,2017-06-30,00:00:01,0.0,1165002.0,0001165002-16-000129,-index.htm,200.0,9999.0,1.0,0.0,0.0,10.0,0.0,",
	"106.120.173.jie,2017-06-30,00:00:02,0.0,1258052.0,0001410368-10-000001,.txt,200.0,6283.0,0.0,0.0,0.0,10.0,0.0,",
	"107.178.195.aag,2017-06-30,00:00:02,0.0,1111111.0,0001410368-10-000002,-index.htm,200.0,1234.0,1.0,0.0,0.0,10.0,0.0,",
	"107.23.85.jfd,2017-06-30,00:00:03,0.0,1027281.0,0000898430-02-001167,-index.htm,200.0,2825.0,1.0,0.0,0.0,10.0,0.0,",
	"108.91.91.hbc,2017-06-30,00:00:04,0.0,1165002.0,0001165002-16-000129,-index.htm,200.0,9999.0,1.0,0.0,0.0,10.0,0.0,",
}

const expectedSessions = `101.81.133.jja,2017-06-30 00:00:00,2017-06-30 00:00:00,1,1
107.23.85.jfd,2017-06-30 00:00:00,2017-06-30 00:00:00,1,2
108.91.91.hbc,2017-06-30 00:00:01,2017-06-30 00:00:01,1,1
106.120.173.jie,2017-06-30 00:00:01,2017-06-30 00:00:02,2,2
107.178.195.aag,2017-06-30 00:00:01,2017-06-30 00:00:02,2,2
107.23.85.jfd,2017-06-30 00:00:03,2017-06-30 00:00:03,1,1
108.91.91.hbc,2017-06-30 00:00:04,2017-06-30 00:00:04,1,1
`

func TestRunWritesSessionsFile(t *testing.T) {
	home := t.TempDir()
	dir := t.TempDir()
	inputPath := writeLogFixture(t, dir)
	thresholdPath := filepath.Join(dir, "inactivity_period.txt")
	require.NoError(t, os.WriteFile(thresholdPath, []byte("2\n"), 0o644))
	outputPath := filepath.Join(dir, "output", "sessionization.txt")

	_, _, err := executeCLI(t, home,
		"run",
		"--input", inputPath,
		"--inactivity-file", thresholdPath,
		"--output", outputPath,
	)
	require.NoError(t, err)

	data, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Equal(t, expectedSessions, string(data))
}

func TestRunWritesSessionsToStdout(t *testing.T) {
	home := t.TempDir()
	inputPath := writeLogFixture(t, t.TempDir())

	stdout, _, err := executeCLI(t, home, "run", "-i", inputPath, "--inactivity", "2", "--quiet")
	require.NoError(t, err)
	assert.Equal(t, expectedSessions, stdout)
}

func TestRunReadsSettingsFromConfigFile(t *testing.T) {
	home := t.TempDir()
	inputPath := writeLogFixture(t, t.TempDir())
	writeConfigFixture(t, home, "[inactivity]\nseconds = 2\n\n[input]\npath = \""+filepath.ToSlash(inputPath)+"\"\n")

	stdout, _, err := executeCLI(t, home, "run", "--quiet")
	require.NoError(t, err)
	assert.Equal(t, expectedSessions, stdout)
}

func TestRunWithLargeThresholdDrainsByStart(t *testing.T) {
	home := t.TempDir()
	inputPath := writeLogFixture(t, t.TempDir())

	stdout, _, err := executeCLI(t, home, "run", "-i", inputPath, "--inactivity", "86400", "--quiet")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "101.81.133.jja,2017-06-30 00:00:00,2017-06-30 00:00:00,1,1", lines[0])
	assert.Equal(t, "107.23.85.jfd,2017-06-30 00:00:00,2017-06-30 00:00:03,4,3", lines[1])
	assert.Equal(t, "106.120.173.jie,2017-06-30 00:00:01,2017-06-30 00:00:02,2,2", lines[2])
	assert.Equal(t, "107.178.195.aag,2017-06-30 00:00:01,2017-06-30 00:00:02,2,2", lines[3])
	assert.Equal(t, "108.91.91.hbc,2017-06-30 00:00:01,2017-06-30 00:00:04,4,2", lines[4])
}

func TestRunRejectsOutOfRangeThreshold(t *testing.T) {
	home := t.TempDir()
	inputPath := writeLogFixture(t, t.TempDir())

	_, _, err := executeCLI(t, home, "run", "-i", inputPath, "--inactivity", "86401", "--quiet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inactivity threshold out of range")
}

func TestRunRejectsInvalidThresholdBeforeFallingBackToFile(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		env     string
		wantMsg string
	}{
		{name: "explicit zero flag", args: []string{"--inactivity", "0"}, wantMsg: "inactivity threshold out of range"},
		{name: "non numeric env", env: "abc", wantMsg: "parse inactivity.seconds \"abc\""},
		{name: "zero env", env: "0", wantMsg: "inactivity threshold out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := t.TempDir()
			dir := t.TempDir()
			inputPath := writeLogFixture(t, dir)
			thresholdPath := filepath.Join(dir, "inactivity_period.txt")
			require.NoError(t, os.WriteFile(thresholdPath, []byte("2\n"), 0o644))
			if tt.env != "" {
				t.Setenv("SESSIONIZE_INACTIVITY_SECONDS", tt.env)
			}

			args := append([]string{"run", "-i", inputPath, "--inactivity-file", thresholdPath, "--quiet"}, tt.args...)
			stdout, _, err := executeCLI(t, home, args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.Empty(t, stdout)
		})
	}
}

func TestRunRequiresThreshold(t *testing.T) {
	home := t.TempDir()
	inputPath := writeLogFixture(t, t.TempDir())

	_, _, err := executeCLI(t, home, "run", "-i", inputPath, "--quiet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inactivity threshold is not configured")
}

func TestRunRequiresInput(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "run", "--inactivity", "2", "--quiet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input path is not configured")
}

func TestRunFailsOnMalformedRecord(t *testing.T) {
	home := t.TempDir()
	inputPath := filepath.Join(t.TempDir(), "log.csv")
	require.NoError(t, os.WriteFile(inputPath, []byte(logHeader+"\n"+logRecords[0]+"\n,2017-06-30,00:00:01,0.0,1.0,2,-index.htm,200.0,1.0,1.0,0.0,0.0,9.0,0.0,\n"), 0o644))

	_, _, err := executeCLI(t, home, "run", "-i", inputPath, "--inactivity", "2", "--quiet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3: empty client id")
}

func TestRunSummaryJSONOutput(t *testing.T) {
	home := t.TempDir()
	dir := t.TempDir()
	inputPath := writeLogFixture(t, dir)
	outputPath := filepath.Join(dir, "sessionization.txt")

	stdout, _, err := executeCLI(t, home, "run", "-i", inputPath, "-o", outputPath, "--inactivity", "2", "--json", "--quiet")
	require.NoError(t, err)
	require.True(t, json.Valid([]byte(stdout)))

	var reports []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &reports))
	require.Len(t, reports, 1)
	assert.EqualValues(t, 10, reports[0]["Events"])
	assert.EqualValues(t, 7, reports[0]["Sessions"])
	assert.EqualValues(t, 3, reports[0]["ClosedExpired"])
	assert.EqualValues(t, 4, reports[0]["ClosedAtEnd"])
	assert.EqualValues(t, 5, reports[0]["PeakOpenSessions"])
}

func TestRunThenReportListAndShow(t *testing.T) {
	home := t.TempDir()
	dir := t.TempDir()
	inputPath := writeLogFixture(t, dir)
	outputPath := filepath.Join(dir, "sessionization.txt")

	_, _, err := executeCLI(t, home, "run", "-i", inputPath, "-o", outputPath, "--inactivity", "2")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "report", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "runs: 1")
	assert.Contains(t, stdout, "events: 10  sessions: 7")
	assert.Contains(t, stdout, "3 inactive / 4 end of input")

	stdout, _, err = executeCLI(t, home, "report", "list", "--json")
	require.NoError(t, err)
	var reports []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &reports))
	require.Len(t, reports, 1)
	runID, ok := reports[0]["ID"].(string)
	require.True(t, ok)
	require.NotEmpty(t, runID)

	stdout, _, err = executeCLI(t, home, "report", "show", runID)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Run "+runID)
}

func TestRunNoReportSkipsHistory(t *testing.T) {
	home := t.TempDir()
	inputPath := writeLogFixture(t, t.TempDir())

	_, _, err := executeCLI(t, home, "run", "-i", inputPath, "--inactivity", "2", "--no-report", "--quiet")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "report", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No runs recorded.")
}

func TestReportShowUnknownRun(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "report", "show", "does-not-exist")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run report not found: does-not-exist")
}

func TestConfigShowYAMLReflectsEnvironment(t *testing.T) {
	home := t.TempDir()
	t.Setenv("SESSIONIZE_INACTIVITY_SECONDS", "45")

	stdout, _, err := executeCLI(t, home, "config", "show", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, stdout, "seconds: 45")
	assert.Contains(t, stdout, "level: warn")
}

func TestConfigShowTOMLDefault(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "[reports]")
	assert.Contains(t, stdout, "reports.toml")
}

func TestRejectsUnknownLogLevel(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "config", "show", "--log-level", "chatty")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse log level")
}

func TestVersionPrintsVersion(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", stdout)
}

func TestUnknownCommand(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "sessions")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command \"sessions\"")
}

func executeCLI(t *testing.T, home string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", home)

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeLogFixture(t *testing.T, dir string) string {
	t.Helper()

	path := filepath.Join(dir, "log.csv")
	content := logHeader + "\n" + strings.Join(logRecords, "\n") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeConfigFixture(t *testing.T, home, content string) {
	t.Helper()

	configDir := filepath.Join(home, ".sessionize")
	require.NoError(t, os.MkdirAll(configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(content), 0o644))
}
