package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"recast/internal/config"
	"recast/internal/queue"
)

// requestFlags builds a queue request from a profile plus explicit overrides.
type requestFlags struct {
	profile     string
	languages   string
	videoParams string
	audioParams string
}

func (f *requestFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.profile, "profile", "p", "", "Transcoding profile to take parameters from")
	cmd.Flags().StringVar(&f.languages, "languages", "", "Comma-separated audio languages to keep")
	cmd.Flags().StringVar(&f.videoParams, "video-params", "", "Encoder parameters for the primary video stream")
	cmd.Flags().StringVar(&f.audioParams, "audio-params", "", "Encoder parameters for kept audio streams")
}

func (f *requestFlags) request(cmd *cobra.Command, cfg *config.Config, source string) (queue.Request, error) {
	req := queue.Request{Path: source}
	if name := strings.TrimSpace(f.profile); name != "" {
		profile, ok := cfg.Profile(name)
		if !ok {
			return queue.Request{}, fmt.Errorf("unknown profile %q (configured: %s)", name, strings.Join(cfg.ProfileNames(), ", "))
		}
		req.Languages = profile.Languages
		req.VideoParams = profile.VideoParams
		req.AudioParams = profile.AudioParams
	}
	flags := cmd.Flags()
	if flags.Changed("languages") {
		req.Languages = f.languages
	}
	if flags.Changed("video-params") {
		req.VideoParams = f.videoParams
	}
	if flags.Changed("audio-params") {
		req.AudioParams = f.audioParams
	}
	return req, nil
}
