package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/layerscape/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the scene cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached payloads and scenes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.cfg.Cache.Backend != "file" {
				printInfo("Cache backend %q is not cleared from the CLI", c.cfg.Cache.Backend)
				return nil
			}
			cc, err := cache.NewFileCache(c.cfg.Cache.Dir)
			if err != nil {
				return err
			}
			fc := cc.(*cache.FileCache)
			if err := fc.Clear(); err != nil {
				return err
			}
			printSuccess("Cache cleared")
			printDetail("Directory: %s", fc.Dir())
			return nil
		},
	}
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := c.cfg.Cache.Dir
			if dir == "" {
				dir = cache.DefaultDir()
			}
			fmt.Println(dir)
			return nil
		},
	}
}
