package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/layerscape/pkg/arch"
	"github.com/matzehuels/layerscape/pkg/source"
)

// fetchCommand downloads a payload without laying it out.
func (c *CLI) fetchCommand() *cobra.Command {
	var (
		output  string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "fetch <model|url>",
		Short: "Download an architecture payload",
		Long: `Download an architecture payload, validate it and write it as JSON.

The normalized payload goes to --output (stdout by default), so it can be
edited and fed back to 'layout' as a file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			return c.runFetch(ctx, args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "overall timeout")

	return cmd
}

func (c *CLI) runFetch(ctx context.Context, ref, output string) error {
	endpoint, err := c.endpoint(ref)
	if err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	fetcher := source.NewFetcher(source.WithLogger(c.Logger))
	res := <-fetcher.FetchAsync(ctx, endpoint)
	if res.Err != nil {
		return res.Err
	}
	prog.done(fmt.Sprintf("Fetched %s", res.Architecture))

	data, err := arch.Marshal(res.Architecture)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if output == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	printSuccess("Fetched %d layers", res.Architecture.Len())
	printFile(output)
	return nil
}

// pingCommand checks that a model service answers.
func (c *CLI) pingCommand() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "ping [model|url]...",
		Short: "Check that model services are reachable",
		Long:  `Check that model services are reachable. Without arguments every configured model is checked.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			refs := args
			if len(refs) == 0 {
				refs = c.cfg.ModelNames()
			}
			fetcher := source.NewFetcher(source.WithLogger(c.Logger))

			failed := 0
			for _, ref := range refs {
				endpoint, err := c.endpoint(ref)
				if err == nil {
					ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
					err = fetcher.Ping(ctx, endpoint)
					cancel()
				}
				if err != nil {
					failed++
					printError("%s %s", ref, StyleDim.Render(err.Error()))
					continue
				}
				printSuccess("%s %s", ref, StyleDim.Render(endpoint))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d services unreachable", failed, len(refs))
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "per-service timeout")
	return cmd
}

// endpoint resolves a model name or URL to an endpoint.
func (c *CLI) endpoint(ref string) (string, error) {
	if source.IsURL(ref) {
		return ref, nil
	}
	return source.ResolveModel(c.cfg.Models, ref)
}
