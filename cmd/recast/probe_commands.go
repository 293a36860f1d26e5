package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"recast/internal/encoding"
	"recast/internal/language"
	"recast/internal/media/ffprobe"
)

func newProbeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "probe <file>",
		Short: "List the streams ffprobe reports for a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			source, err := resolveSourceFile(args[0])
			if err != nil {
				return err
			}
			result, err := ffprobe.Inspect(cmd.Context(), cfg.FFprobeBinary(), source)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n", source)
			fmt.Fprintf(out, "  container: %s  duration: %s  size: %s\n",
				dashIfEmpty(result.Format.FormatName),
				time.Duration(result.DurationSeconds()*float64(time.Second)).Round(time.Second).String(),
				humanize.IBytes(uint64(max(result.SizeBytes(), 0))),
			)
			fmt.Fprint(out, renderTable(streamColumns, buildStreamRows(result.Streams)))
			return nil
		},
	}
}

var streamColumns = []column{
	{title: "Index", right: true},
	{title: "Type"},
	{title: "Codec"},
	{title: "Language"},
	{title: "Details"},
	{title: "Flags"},
}

func buildStreamRows(streams []ffprobe.Stream) [][]string {
	rows := make([][]string, 0, len(streams))
	for _, stream := range streams {
		var details string
		switch stream.Kind() {
		case ffprobe.CodecTypeVideo:
			if stream.Width > 0 {
				details = fmt.Sprintf("%dx%d", stream.Width, stream.Height)
			}
		case ffprobe.CodecTypeAudio:
			if stream.Channels > 0 {
				details = fmt.Sprintf("%d ch", stream.Channels)
			}
		}
		if title := strings.TrimSpace(stream.Tags.Title); title != "" {
			details = strings.TrimSpace(details + " " + strconv.Quote(title))
		}
		rows = append(rows, []string{
			strconv.Itoa(stream.Index),
			stream.Kind(),
			dashIfEmpty(stream.CodecName),
			dashIfEmpty(language.Label(stream.Language())),
			dashIfEmpty(details),
			dashIfEmpty(streamFlags(stream)),
		})
	}
	return rows
}

func streamFlags(stream ffprobe.Stream) string {
	var flags []string
	if stream.Disposition.Default == 1 {
		flags = append(flags, "default")
	}
	if stream.Disposition.Forced == 1 {
		flags = append(flags, "forced")
	}
	if stream.Disposition.HearingImpaired == 1 {
		flags = append(flags, "sdh")
	}
	if stream.Disposition.AttachedPic == 1 {
		flags = append(flags, "cover")
	}
	return strings.Join(flags, ",")
}

func newCommandPreviewCommand(ctx *commandContext) *cobra.Command {
	var reqFlags requestFlags

	cmd := &cobra.Command{
		Use:   "command <file>",
		Short: "Print the ffmpeg command a request would run, without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			source, err := resolveSourceFile(args[0])
			if err != nil {
				return err
			}
			req, err := reqFlags.request(cmd, cfg, source)
			if err != nil {
				return err
			}

			result, err := ffprobe.Inspect(cmd.Context(), cfg.FFprobeBinary(), source)
			if err != nil {
				return err
			}
			plan := encoding.BuildPlan(req, result)
			argv := encoding.BuildCommand(encoding.Options{
				Binary:  cfg.FFmpegBinary(),
				HWAccel: cfg.Transcoding.HWAccel,
			}, req, plan, filepath.Join(cfg.Paths.TempDir, encoding.OutputName(source)))

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# streams %s\n", plan.Summary())
			fmt.Fprintf(out, "# final output %s\n", encoding.OutputPath(source))
			if plan.LanguageFallback {
				fmt.Fprintf(out, "# no audio matched %q; keeping every audio stream\n", req.Languages)
			}
			fmt.Fprintln(out, encoding.FormatCommand(argv))
			return nil
		},
	}

	reqFlags.register(cmd)
	return cmd
}
