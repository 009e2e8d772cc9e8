package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/softwarewrighter/hybrid-vid/infrastructure/blocks"
	"github.com/softwarewrighter/hybrid-vid/internal/application"
	"github.com/softwarewrighter/hybrid-vid/internal/domain"
)

// Config carries the flags shared by every command of a binary.
type Config struct {
	JSON      bool
	MaxRate   float64
	ChannelID string
	Metrics   bool
	Logger    *slog.Logger
}

// sampleParams are the parameters list-blocks uses to instantiate each
// block type it describes.
var sampleParams = map[string]map[string]any{
	blocks.TypeNormalizeAudio: {},
	blocks.TypeConcatClips:    {},
	blocks.TypeUploadVideo:    {"title": "untitled"},
	blocks.TypeRenderPackage:  {},
}

// runFlags are the execution flags shared by normalize, concat and run.
type runFlags struct {
	stopOnError bool
	concurrency int
}

func (f *runFlags) bind(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.stopOnError, "stop-on-error", false, "abort at the first failing block")
	cmd.Flags().IntVar(&f.concurrency, "concurrency", 1, "maximum blocks running at once")
}

func (f *runFlags) options() domain.ExecutionOptions {
	return domain.ExecutionOptions{StopOnError: f.stopOnError, Concurrency: f.concurrency}
}

func (f *runFlags) validate() error {
	if f.concurrency < 0 {
		return fmt.Errorf("--concurrency must not be negative, got %d", f.concurrency)
	}
	return nil
}

func newEnv(cfg *Config) (*Env, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return NewEnv(logger, EnvOptions{MaxRate: cfg.MaxRate, ChannelID: cfg.ChannelID})
}

func output(cmd *cobra.Command, cfg *Config) *Output {
	return NewOutput(cfg.JSON, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// finish dumps collected metrics when requested.
func finish(cmd *cobra.Command, cfg *Config, env *Env) error {
	if !cfg.Metrics {
		return nil
	}
	return env.WriteMetrics(cmd.ErrOrStderr())
}

// NewListBlocksCmd creates the list-blocks command, which describes the
// given block types.
func NewListBlocksCmd(cfg *Config, types []string) *cobra.Command {
	return &cobra.Command{
		Use:   "list-blocks",
		Short: "Describe the available blocks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := newEnv(cfg)
			if err != nil {
				return err
			}

			for _, t := range types {
				block, err := env.Registry.CreateBlock(t, domain.BlockID(t), sampleParams[t])
				if err != nil {
					return err
				}
				env.Engine.Register(domain.BlockID(t), block)
			}

			listings := env.Engine.List()
			specs := make([]domain.BlockSpec, 0, len(listings))
			rows := make([][]string, 0, len(listings))
			for _, l := range listings {
				specs = append(specs, l.Spec)
				rows = append(rows, []string{
					string(l.Spec.ID),
					l.Spec.Name,
					formatPorts(l.Spec.Inputs),
					formatPorts(l.Spec.Outputs),
				})
			}

			return output(cmd, cfg).Print([]string{"ID", "NAME", "INPUTS", "OUTPUTS"}, rows, specs)
		},
	}
}

// NewNormalizeCmd creates the normalize command.
func NewNormalizeCmd(cfg *Config) *cobra.Command {
	var flags runFlags
	var targetLUFS float64

	cmd := &cobra.Command{
		Use:   "normalize <in> <out>",
		Short: "Normalize the loudness of an audio file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.validate(); err != nil {
				return err
			}
			in, out := args[0], args[1]

			env, err := newEnv(cfg)
			if err != nil {
				return err
			}

			if err := registerBlocks(env, []blockDef{
				{id: "input", typ: blocks.TypeSource, params: map[string]any{"path": in, "mime": blocks.MIMEAudioWAV}},
				{id: "normalize", typ: blocks.TypeNormalizeAudio, params: map[string]any{"target_lufs": targetLUFS}},
			}); err != nil {
				return err
			}

			spec := domain.GraphSpec{
				Blocks: []domain.BlockID{"input", "normalize"},
				Edges: []domain.Edge{
					{FromBlock: "input", FromPort: blocks.PortOut, ToBlock: "normalize", ToPort: blocks.PortIn},
				},
			}

			report, err := env.Engine.RunWithReport(cmd.Context(), spec, flags.options())
			if err != nil {
				return err
			}
			if err := failureError(report); err != nil {
				return err
			}

			result := report.Results["normalize"][blocks.PortOut]
			if err := printOutput(cmd, cfg, "normalize", result, out, in); err != nil {
				return err
			}
			return finish(cmd, cfg, env)
		},
	}
	flags.bind(cmd)
	cmd.Flags().Float64Var(&targetLUFS, "target-lufs", blocks.DefaultTargetLUFS, "integrated loudness target")
	return cmd
}

// NewConcatCmd creates the concat command.
func NewConcatCmd(cfg *Config) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "concat <a> <b> <out>",
		Short: "Concatenate two video clips",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.validate(); err != nil {
				return err
			}
			a, b, out := args[0], args[1], args[2]

			env, err := newEnv(cfg)
			if err != nil {
				return err
			}

			if err := registerBlocks(env, []blockDef{
				{id: "clip_a", typ: blocks.TypeSource, params: map[string]any{"path": a, "mime": blocks.MIMEVideoMP4}},
				{id: "clip_b", typ: blocks.TypeSource, params: map[string]any{"path": b, "mime": blocks.MIMEVideoMP4}},
				{id: "concat", typ: blocks.TypeConcatClips},
			}); err != nil {
				return err
			}

			spec := domain.GraphSpec{
				Blocks: []domain.BlockID{"clip_a", "clip_b", "concat"},
				Edges: []domain.Edge{
					{FromBlock: "clip_a", FromPort: blocks.PortOut, ToBlock: "concat", ToPort: blocks.PortA},
					{FromBlock: "clip_b", FromPort: blocks.PortOut, ToBlock: "concat", ToPort: blocks.PortB},
				},
			}

			report, err := env.Engine.RunWithReport(cmd.Context(), spec, flags.options())
			if err != nil {
				return err
			}
			if err := failureError(report); err != nil {
				return err
			}

			result := report.Results["concat"][blocks.PortOut]
			if err := printOutput(cmd, cfg, "concat", result, out, a+","+b); err != nil {
				return err
			}
			return finish(cmd, cfg, env)
		},
	}
	flags.bind(cmd)
	return cmd
}

// NewRunCmd creates the run command, which executes a pipeline file.
func NewRunCmd(cfg *Config) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run <pipeline.yaml>",
		Short: "Run a pipeline definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.validate(); err != nil {
				return err
			}

			env, err := newEnv(cfg)
			if err != nil {
				return err
			}

			pipeline, err := env.Loader.LoadFromFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			pipeline.Install(env.Engine)

			opts := pipeline.Options
			if cmd.Flags().Changed("stop-on-error") {
				opts.StopOnError = flags.stopOnError
			}
			if cmd.Flags().Changed("concurrency") {
				opts.Concurrency = flags.concurrency
			}

			report, err := env.Engine.RunWithReport(cmd.Context(), pipeline.Spec, opts)
			if err != nil {
				return err
			}

			o := output(cmd, cfg)
			if err := printReport(o, report); err != nil {
				return err
			}
			if err := finish(cmd, cfg, env); err != nil {
				return err
			}
			return failureError(report)
		},
	}
	flags.bind(cmd)
	return cmd
}

type blockDef struct {
	id     domain.BlockID
	typ    string
	params map[string]any
}

func registerBlocks(env *Env, defs []blockDef) error {
	for _, d := range defs {
		block, err := env.Registry.CreateBlock(d.typ, d.id, d.params)
		if err != nil {
			return err
		}
		env.Engine.Register(d.id, block)
	}
	return nil
}

// ErrBlocksFailed is returned when a run completes with failed blocks.
var ErrBlocksFailed = errors.New("blocks failed")

// failureError summarizes the failures of a report, or returns nil.
func failureError(report *application.RunReport) error {
	if len(report.Failures) == 0 {
		return nil
	}
	ids := make([]string, 0, len(report.Failures))
	for id := range report.Failures {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)

	msgs := make([]string, 0, len(ids))
	for _, id := range ids {
		msgs = append(msgs, fmt.Sprintf("%s: %v", id, report.Failures[domain.BlockID(id)]))
	}
	return fmt.Errorf("%w: %s", ErrBlocksFailed, strings.Join(msgs, "; "))
}

type artifactOutput struct {
	Block string            `json:"block"`
	Port  string            `json:"port"`
	Path  string            `json:"path"`
	Meta  map[string]string `json:"meta,omitempty"`
}

// printOutput reports result as written to dest.
func printOutput(cmd *cobra.Command, cfg *Config, block string, result domain.Artifact, dest, source string) error {
	meta := make(map[string]string, len(result.Meta)+1)
	for k, v := range result.Meta {
		meta[k] = v
	}
	meta["source"] = source

	data := artifactOutput{Block: block, Port: string(result.Port), Path: dest, Meta: meta}
	rows := [][]string{{block, string(result.Port), dest}}
	return output(cmd, cfg).Print([]string{"BLOCK", "PORT", "PATH"}, rows, data)
}

type reportOutput struct {
	RunID    string            `json:"run_id"`
	Order    []domain.BlockID  `json:"order"`
	Results  []artifactOutput  `json:"results"`
	Failures map[string]string `json:"failures,omitempty"`
	Duration string            `json:"duration"`
}

func printReport(o *Output, report *application.RunReport) error {
	data := reportOutput{
		RunID:    report.RunID,
		Order:    report.Order,
		Duration: report.Duration.String(),
	}
	var rows [][]string

	for _, id := range report.Order {
		outputs, ok := report.Results[id]
		if !ok {
			continue
		}
		ports := make([]string, 0, len(outputs))
		for port := range outputs {
			ports = append(ports, string(port))
		}
		sort.Strings(ports)
		for _, port := range ports {
			a := outputs[domain.PortID(port)]
			data.Results = append(data.Results, artifactOutput{
				Block: string(id),
				Port:  port,
				Path:  a.Path,
				Meta:  a.Meta,
			})
			rows = append(rows, []string{string(id), port, a.Path})
		}
	}

	if len(report.Failures) > 0 {
		data.Failures = make(map[string]string, len(report.Failures))
		for id, err := range report.Failures {
			data.Failures[string(id)] = err.Error()
		}
	}

	if err := o.Print([]string{"BLOCK", "PORT", "PATH"}, rows, data); err != nil {
		return err
	}
	if !o.jsonMode {
		o.Success(fmt.Sprintf("run %s: %d succeeded, %d failed in %s",
			report.RunID, len(report.Results), len(report.Failures), report.Duration))
	}
	return nil
}

func formatPorts(ports []domain.Port) string {
	if len(ports) == 0 {
		return "-"
	}
	parts := make([]string, len(ports))
	for i, p := range ports {
		parts[i] = fmt.Sprintf("%s(%s)", p.ID, p.MIME)
	}
	return strings.Join(parts, ",")
}

