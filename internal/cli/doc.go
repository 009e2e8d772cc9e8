// Package cli implements the hv-audio-cli and hv-video-cli commands.
//
// # Overview
//
// Each binary is a thin cobra tree over the pipeline engine. Commands build
// a fresh Env per invocation: an Engine wrapped in the logging, tracing,
// metrics and optional rate-limit middleware, the default block registry and
// a PipelineLoader.
//
// # Commands
//
//   - list-blocks: instantiate the binary's block types and print their
//     descriptors
//   - normalize <in> <out> (audio): run source -> normalize_audio
//   - concat <a> <b> <out> (video): run two sources -> concat_clips
//   - run <pipeline.yaml>: load, validate and execute a pipeline file
//
// # Output
//
// Data goes to stdout as a table, or as JSON with --json. Messages, logs
// and --metrics dumps go to stderr, so output can be piped:
//
//	hv-video-cli run pipeline.yaml --json | jq .results
//
// A run that completes with failed blocks exits non-zero with an error
// wrapping ErrBlocksFailed after printing the surviving results.
package cli
