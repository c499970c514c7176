package cli

// This file contains the affected command: given changed paths, compute the
// minimal set of spec files that need reloading.

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/urfave/cli/v2"

	"github.com/specgo/specgo/depgraph"
)

func (a *App) affected(ctx *cli.Context) error {
	changed := ctx.Args().Slice()
	if len(changed) == 0 {
		return fmt.Errorf("no changed paths specified")
	}

	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return err
	}

	manifestPath := cfg.Manifest
	if override := ctx.String("manifest"); override != "" {
		manifestPath = override
	}

	manifest, err := depgraph.LoadManifest(manifestPath)
	if err != nil {
		return err
	}
	graph := manifest.BuildGraph()

	relevant := filterPatterns(changed, cfg.Patterns)
	if dropped := len(changed) - len(relevant); dropped > 0 {
		a.logger.Debug().Int("ignored", dropped).Msg("Dropped paths outside configured patterns")
	}

	specs := graph.AffectedSpecs(relevant)
	a.logger.Debug().
		Int("changed", len(relevant)).
		Int("affected", len(specs)).
		Msg("Computed affected specs")

	for _, s := range specs {
		fmt.Println(s)
	}
	return nil
}

// filterPatterns keeps the paths matching at least one doublestar pattern.
// An empty pattern list keeps everything.
func filterPatterns(paths, patterns []string) []string {
	if len(patterns) == 0 {
		return paths
	}
	var kept []string
	for _, p := range paths {
		for _, pattern := range patterns {
			if ok, err := doublestar.PathMatch(pattern, p); err == nil && ok {
				kept = append(kept, p)
				break
			}
		}
	}
	return kept
}
