package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"artbot/internal/common/fsutil"
	"artbot/internal/pipeline"
)

// runGenerate draws prompt once and writes the PNG to out, or to the
// timestamped artifact name in the working directory.
func runGenerate(ctx context.Context, s settings, prompt, out string, stdout io.Writer) error {
	if err := s.cfg.Validate(false); err != nil {
		return err
	}
	art, err := newPipeline(s).Run(ctx, pipeline.Command{Prompt: prompt})
	if err != nil {
		return err
	}
	if out == "" {
		out = art.Filename
	}
	path, err := fsutil.ExpandHome(out)
	if err != nil {
		return err
	}
	if err := fsutil.EnsureParentDir(path); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, art.PNG, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	s.log.Info().Str("path", path).Int("bytes", len(art.PNG)).Dur("backend", art.Elapsed).Msg("art written")
	fmt.Fprintln(stdout, path)
	return nil
}
