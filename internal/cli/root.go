package cli

import (
	"github.com/spf13/cobra"

	"github.com/softwarewrighter/hybrid-vid/infrastructure/blocks"
	"github.com/softwarewrighter/hybrid-vid/internal/telemetry"
)

// AudioBlockTypes are the block types hv-audio-cli describes.
var AudioBlockTypes = []string{blocks.TypeNormalizeAudio}

// VideoBlockTypes are the block types hv-video-cli describes.
var VideoBlockTypes = []string{
	blocks.TypeConcatClips,
	blocks.TypeUploadVideo,
	blocks.TypeRenderPackage,
}

// NewAudioRootCmd creates the hv-audio-cli root command.
func NewAudioRootCmd(version string) *cobra.Command {
	cfg := &Config{}
	root := newRootCmd("hv-audio-cli", "Audio blocks for hybrid video pipelines", version, cfg)
	root.AddCommand(
		NewListBlocksCmd(cfg, AudioBlockTypes),
		NewNormalizeCmd(cfg),
		NewRunCmd(cfg),
	)
	return root
}

// NewVideoRootCmd creates the hv-video-cli root command.
func NewVideoRootCmd(version string) *cobra.Command {
	cfg := &Config{}
	root := newRootCmd("hv-video-cli", "Video blocks for hybrid video pipelines", version, cfg)
	root.PersistentFlags().StringVar(&cfg.ChannelID, "channel-id", "", "destination channel for upload_video blocks")
	root.AddCommand(
		NewListBlocksCmd(cfg, VideoBlockTypes),
		NewConcatCmd(cfg),
		NewRunCmd(cfg),
	)
	return root
}

func newRootCmd(use, short, version string, cfg *Config) *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           use,
		Short:         short,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if cfg.Logger != nil {
				return
			}
			opts := telemetry.OptionsFromEnv()
			if logLevel != "" {
				opts.Level = logLevel
			}
			cfg.Logger = telemetry.NewLogger(cmd.ErrOrStderr(), opts)
		},
	}

	root.PersistentFlags().BoolVar(&cfg.JSON, "json", false, "Output in JSON format")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (default from LOG_LEVEL)")
	root.PersistentFlags().Float64Var(&cfg.MaxRate, "max-rate", 0, "maximum block runs per second, 0 for unlimited")
	root.PersistentFlags().BoolVar(&cfg.Metrics, "metrics", false, "print collected metrics to stderr after the run")

	return root
}
