package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/layerscape/pkg/pipeline"
	"github.com/matzehuels/layerscape/pkg/scene"
	"github.com/matzehuels/layerscape/pkg/source"
)

type layoutFlags struct {
	output    string
	noCache   bool
	refresh   bool
	maxDepth  float64
	neuronCap int
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var flags layoutFlags

	cmd := &cobra.Command{
		Use:   "layout <model|url|file|->",
		Short: "Build a scene document for an architecture",
		Long: `Build a scene document for an architecture.

The argument is a model name from the [models] table, an http(s) URL serving
a layer list, a local JSON/YAML file, or "-" to read from stdin. The scene
document holds every layer's geometry, placement and bounds.

Fetched payloads and built scenes are cached; use --refresh to rebuild.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("max-depth") {
				c.cfg.Layout.MaxDepth = flags.maxDepth
			}
			if cmd.Flags().Changed("neuron-cap") {
				c.cfg.Layout.NeuronCap = flags.neuronCap
			}
			if err := c.cfg.Validate(); err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", `output file, "-" for stdout (default: <name>.scene.json)`)
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "ignore cached results")
	cmd.Flags().Float64Var(&flags.maxDepth, "max-depth", 0, "depth budget along the stacking axis (0 disables compression)")
	cmd.Flags().IntVar(&flags.neuronCap, "neuron-cap", 0, "maximum markers drawn per dense layer")

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, ref string, flags layoutFlags) error {
	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinner(ctx, "Building layout...")
	spinner.Start()

	result, err := runner.Execute(ctx, pipeline.Options{Ref: ref, Refresh: flags.refresh, Stdin: os.Stdin})
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	data, err := scene.MarshalDocument(result.Document)
	if err != nil {
		return err
	}
	if flags.output == "-" {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}

	path := flags.output
	if path == "" {
		path = defaultScenePath(ref, result.Document.Name)
	}
	if err := scene.WriteDocumentFile(result.Document, path); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}

	printSuccess("Layout complete")
	printFile(path)
	printSceneStats(result.Document, result.CacheInfo.SceneHit)
	printDiagnostics(result.Document)
	printNewline()
	printNextStep("Inspect", appName+" inspect "+ref)
	return nil
}

// defaultScenePath derives "<name>.scene.json" from the document name or
// the reference.
func defaultScenePath(ref, name string) string {
	base := name
	if base == "" && ref != "-" && !source.IsURL(ref) {
		base = strings.TrimSuffix(filepath.Base(ref), filepath.Ext(ref))
	}
	if base == "" {
		base = "scene"
	}
	return base + ".scene.json"
}
