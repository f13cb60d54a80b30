package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/layerscape/pkg/arch"
	"github.com/matzehuels/layerscape/pkg/interact"
	"github.com/matzehuels/layerscape/pkg/pipeline"
	"github.com/matzehuels/layerscape/pkg/scene"
	"github.com/matzehuels/layerscape/pkg/viewer"
)

// inspectCommand opens the interactive inspector.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		plain   bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "inspect <model|url|file|->",
		Short: "Browse an architecture layer by layer",
		Long: `Browse an architecture layer by layer.

Moving the cursor hovers a layer the way a pointer would in the 3D view;
enter opens the inspector with the layer's type, index, output shape and
activation. With --plain the layer table is printed instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd.Context(), args[0], plain, noCache)
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print the layer table and exit")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runInspect(ctx context.Context, ref string, plain, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinner(ctx, "Loading architecture...")
	spinner.Start()
	a, err := runner.Load(ctx, pipeline.Options{Ref: ref, Stdin: os.Stdin})
	if err != nil {
		spinner.StopWithError("Load failed")
		return err
	}
	spinner.Stop()

	panel := &interact.Panel{}
	ctrl := interact.NewController(c.cfg.Styles(), panel, c.Logger)
	v := viewer.New(ctrl, c.Logger, c.cfg.LayoutOptions()...)
	s := v.LoadArchitecture(a)
	defer v.Clear()

	if plain {
		fmt.Println(newTable(
			[]string{"#", "Kind", "Name", "Shape", "Activation", "Params", ""},
			describeLayers(a),
		).Render())
		printSceneStats(scene.Export(s), false)
		printDiagnostics(scene.Export(s))
		return nil
	}

	_, err = tea.NewProgram(NewInspectorModel(v, panel), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// describeLayers returns one table row per layer for `inspect --plain`.
func describeLayers(a *arch.Architecture) [][]string {
	rows := make([][]string, 0, a.Len())
	for i, l := range a.Layers {
		terminal := ""
		if a.IsTerminal(i) {
			terminal = "output"
		}
		act := l.ActivationName()
		if act == "" {
			act = "—"
		}
		rows = append(rows, []string{
			fmt.Sprint(l.Index), l.Kind, l.Name, l.Shape.String(), act, fmt.Sprint(l.ParamCount), terminal,
		})
	}
	return rows
}
