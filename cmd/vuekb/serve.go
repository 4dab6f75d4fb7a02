package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/vuekb/vuekb/pkg/index"
	"github.com/vuekb/vuekb/pkg/logger"
	"github.com/vuekb/vuekb/pkg/presenter"
	"github.com/vuekb/vuekb/pkg/skills"
	"github.com/vuekb/vuekb/pkg/webui"
)

// ServeConfig holds configuration for the serve command
type ServeConfig struct {
	Host  string
	Port  int
	Watch bool
}

// NewServeConfig returns default serve configuration
func NewServeConfig() *ServeConfig {
	return &ServeConfig{
		Host: "localhost",
		Port: 4173,
	}
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the corpus over HTTP",
	Long: `Start a local web server exposing the reference corpus as rendered
HTML pages and a JSON API. With --watch, local article directories are
watched for changes and the corpus reloads automatically.

Examples:
  vuekb serve
  vuekb serve --port 8080
  vuekb serve --watch`,
	Run: func(cmd *cobra.Command, args []string) {
		config := NewServeConfig()
		config.Host, _ = cmd.Flags().GetString("host")
		config.Port, _ = cmd.Flags().GetInt("port")
		config.Watch, _ = cmd.Flags().GetBool("watch")
		serveCorpusCmd(cmd, config)
	},
}

func init() {
	defaults := NewServeConfig()
	serveCmd.Flags().String("host", defaults.Host, "Host interface to bind to")
	serveCmd.Flags().IntP("port", "p", defaults.Port, "Port to listen on")
	serveCmd.Flags().Bool("watch", false, "Reload the corpus when local article files change")
	rootCmd.AddCommand(withTracing(serveCmd))
}

func serveCorpusCmd(cmd *cobra.Command, config *ServeConfig) {
	ctx := cmd.Context()
	log := logger.G(ctx)

	shutdownTracing, err := initTracing(ctx)
	if err != nil {
		log.WithError(err).Warn("failed to initialize tracing")
	} else {
		defer shutdownTracing(ctx)
	}

	discovery, err := skills.NewDiscovery()
	if err != nil {
		presenter.Error(err, "Failed to initialize discovery")
		os.Exit(1)
	}

	ix, err := index.OpenDefault(ctx)
	if err != nil {
		log.WithError(err).Warn("search index unavailable, /api/search will be disabled")
		ix = nil
	} else {
		defer ix.Close()
		corpus, err := discovery.DiscoverSkills()
		if err != nil {
			presenter.Error(err, "Failed to discover corpus")
			os.Exit(1)
		}
		if err := ix.Rebuild(ctx, corpus); err != nil {
			presenter.Error(err, "Failed to build search index")
			os.Exit(1)
		}
	}

	server, err := webui.NewServer(discovery, ix, &webui.ServerConfig{
		Host: config.Host,
		Port: config.Port,
	})
	if err != nil {
		presenter.Error(err, "Failed to create server")
		os.Exit(1)
	}

	if config.Watch {
		dirs := discovery.SkillDirs()
		go func() {
			if err := server.Watch(ctx, dirs); err != nil {
				log.WithError(err).Error("file watcher stopped")
			}
		}()
	}

	if err := server.Start(ctx); err != nil {
		presenter.Error(err, "Server failed")
		os.Exit(1)
	}
}
