package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softwarewrighter/hybrid-vid/internal/domain"
)

func execute(t *testing.T, root *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writePipeline(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestListBlocks_Audio(t *testing.T) {
	stdout, _, err := execute(t, NewAudioRootCmd("test"), "list-blocks", "--json")
	require.NoError(t, err)

	var specs []domain.BlockSpec
	require.NoError(t, json.Unmarshal([]byte(stdout), &specs))
	require.Len(t, specs, 1)
	assert.Equal(t, domain.BlockID("normalize_audio"), specs[0].ID)
	assert.Equal(t, "Normalize Audio", specs[0].Name)
}

func TestListBlocks_VideoTable(t *testing.T) {
	stdout, _, err := execute(t, NewVideoRootCmd("test"), "list-blocks")
	require.NoError(t, err)

	assert.Contains(t, stdout, "ID")
	assert.Contains(t, stdout, "concat_clips")
	assert.Contains(t, stdout, "upload_video")
	assert.Contains(t, stdout, "render_package")
	assert.Contains(t, stdout, "a(video/mp4),b(video/mp4)")
}

func TestNormalize(t *testing.T) {
	stdout, _, err := execute(t, NewAudioRootCmd("test"), "normalize", "raw.wav", "clean.wav", "--json")
	require.NoError(t, err)

	var out artifactOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, artifactOutput{
		Block: "normalize",
		Port:  "out",
		Path:  "clean.wav",
		Meta:  map[string]string{"source": "raw.wav"},
	}, out)
}

func TestNormalize_RejectsNegativeConcurrency(t *testing.T) {
	_, _, err := execute(t, NewAudioRootCmd("test"), "normalize", "a.wav", "b.wav", "--concurrency", "-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--concurrency")
}

func TestNormalize_InvalidTarget(t *testing.T) {
	_, _, err := execute(t, NewAudioRootCmd("test"), "normalize", "a.wav", "b.wav", "--target-lufs", "3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create block normalize")
}

func TestConcat(t *testing.T) {
	stdout, _, err := execute(t, NewVideoRootCmd("test"), "concat", "a.mp4", "b.mp4", "joined.mp4", "--concurrency", "2")
	require.NoError(t, err)

	assert.Contains(t, stdout, "BLOCK")
	assert.Contains(t, stdout, "concat")
	assert.Contains(t, stdout, "joined.mp4")
}

func TestConcat_WrongArgCount(t *testing.T) {
	_, _, err := execute(t, NewVideoRootCmd("test"), "concat", "a.mp4", "b.mp4")
	assert.Error(t, err)
}

const cliAudioPipeline = `
version: "1.0.0"
metadata:
  name: voice
blocks:
  - id: raw
    type: source
    params:
      path: raw.wav
  - id: norm
    type: normalize_audio
edges:
  - from_block: raw
    from_port: out
    to_block: norm
    to_port: in
`

func TestRun_Pipeline(t *testing.T) {
	path := writePipeline(t, cliAudioPipeline)

	stdout, _, err := execute(t, NewAudioRootCmd("test"), "run", path, "--json")
	require.NoError(t, err)

	var report reportOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, []domain.BlockID{"raw", "norm"}, report.Order)
	assert.Empty(t, report.Failures)
	assert.Contains(t, report.Results, artifactOutput{Block: "norm", Port: "out", Path: "raw.wav"})
}

func TestRun_TableSummary(t *testing.T) {
	path := writePipeline(t, cliAudioPipeline)

	stdout, stderr, err := execute(t, NewAudioRootCmd("test"), "run", path)
	require.NoError(t, err)

	assert.Contains(t, stdout, "norm")
	assert.Contains(t, stderr, "2 succeeded, 0 failed")
}

const cliVideoPipeline = `
version: "1.0.0"
metadata:
  name: episode
blocks:
  - id: intro
    type: source
    params:
      path: intro.mp4
      mime: video/mp4
  - id: body
    type: source
    params:
      path: body.mp4
      mime: video/mp4
  - id: joined
    type: concat_clips
  - id: publish
    type: upload_video
    params:
      title: Episode 1
edges:
  - {from_block: intro, from_port: out, to_block: joined, to_port: a}
  - {from_block: body, from_port: out, to_block: joined, to_port: b}
  - {from_block: joined, from_port: out, to_block: publish, to_port: in}
`

func TestRun_ReportsFailures(t *testing.T) {
	path := writePipeline(t, cliVideoPipeline)

	stdout, _, err := execute(t, NewVideoRootCmd("test"), "run", path, "--json")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBlocksFailed)
	assert.Contains(t, err.Error(), "publish")

	var report reportOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Contains(t, report.Failures, "publish")
	assert.Contains(t, report.Results, artifactOutput{Block: "joined", Port: "out", Path: "intro.mp4"})
}

func TestRun_StopOnErrorFlagOverridesFile(t *testing.T) {
	path := writePipeline(t, cliVideoPipeline)

	stdout, _, err := execute(t, NewVideoRootCmd("test"), "run", path, "--json", "--stop-on-error")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBlockFailed)
	assert.Empty(t, stdout, "an aborted run prints no report")
}

func TestRun_MissingFile(t *testing.T) {
	_, _, err := execute(t, NewAudioRootCmd("test"), "run", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestMetricsFlag(t *testing.T) {
	_, stderr, err := execute(t, NewAudioRootCmd("test"), "normalize", "a.wav", "b.wav", "--metrics")
	require.NoError(t, err)

	assert.Contains(t, stderr, "hv_pipeline_runs_total")
	assert.Contains(t, stderr, `hv_block_runs_total{block="normalize",status="success"} 1`)
}

func TestOutput_Table(t *testing.T) {
	var buf bytes.Buffer
	o := NewOutput(false, &buf, &buf)

	require.NoError(t, o.Table([]string{"ID", "NAME"}, [][]string{{"a", "first"}}))

	assert.Equal(t, "ID  NAME\n--  ----\na   first\n", buf.String())
}
