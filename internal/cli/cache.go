package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/specdiff/pkg/cache"
	"github.com/matzehuels/specdiff/pkg/config"
	"github.com/matzehuels/specdiff/pkg/errors"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the fact cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached fact sets",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch c.Config.Cache.Backend {
			case config.BackendFile:
			case config.BackendMongo:
				mc, err := c.newMongoCache(cmd.Context())
				if err != nil {
					return err
				}
				defer mc.Close()
				count, err := mc.Clear(cmd.Context())
				if err != nil {
					return errors.Wrap(errors.ErrCodeCache, err, "clear mongo cache")
				}
				printSuccess("Cleared %d cached entries", count)
				return nil
			default:
				return errors.New(errors.ErrCodeUnsupported, "cache clear only supports the file and mongo backends (configured: %s)", c.Config.Cache.Backend)
			}
			dir, err := c.cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}

			if _, err := os.Stat(dir); os.IsNotExist(err) {
				printInfo("Cache is empty")
				return nil
			}

			fc, err := cache.NewFileCache(dir)
			if err != nil {
				return err
			}
			count, err := fc.Clear()
			if err != nil {
				return err
			}

			printSuccess("Cleared %d cached entries", count)
			printDetail("Directory: %s", dir)
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache location",
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := c.Config.Cache
			switch cc.Backend {
			case config.BackendRedis:
				fmt.Printf("redis://%s/%d\n", cc.RedisAddr, cc.RedisDB)
				return nil
			case config.BackendMongo:
				db, coll := cc.MongoDatabase, cc.MongoCollection
				if db == "" {
					db = cache.DefaultMongoDatabase
				}
				if coll == "" {
					coll = cache.DefaultMongoCollection
				}
				fmt.Printf("%s (%s.%s)\n", cc.MongoURI, db, coll)
				return nil
			case config.BackendNone:
				printInfo("Caching is disabled")
				return nil
			}
			dir, err := c.cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Println(dir)
			return nil
		},
	}
}
