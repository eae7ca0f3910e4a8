package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/eringen/blogindex"
	"github.com/eringen/blogindex/views"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	cfgFile   string
	staticDir string
	verbose   bool

	siteConfig blogindex.SiteConfig
	logger     *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "blogindex",
	Short: "A blog built from markdown files and a SQLite CMS",
	Long: `blogindex merges markdown posts and CMS posts into one paginated blog,
with a related-posts list on every article. It can serve the site, build it
into static files, or import posts from an RSS or Atom feed.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if logger, err = newLogger(verbose); err != nil {
			return err
		}
		return initializeConfig()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./blogindex.yaml)")
	rootCmd.PersistentFlags().StringVar(&staticDir, "static", "public", "directory of static files served under /public")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.DisableStacktrace = true
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		cfg.DisableStacktrace = false
	}
	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return l, nil
}

func initializeConfig() error {
	cfg, err := loadConfig(cfgFile, logger)
	if err != nil {
		return err
	}
	siteConfig = cfg
	return nil
}

// loadConfig reads file (or ./blogindex.yaml when file is empty) layered over
// defaults and BLOGINDEX_* environment variables.
func loadConfig(file string, log *zap.Logger) (blogindex.SiteConfig, error) {
	var cfg blogindex.SiteConfig
	v := viper.New()

	v.SetDefault("name", "Blog")
	v.SetDefault("url", "http://localhost:3000")
	v.SetDefault("description", "")
	v.SetDefault("author", "")
	v.SetDefault("addr", ":3000")
	v.SetDefault("database_path", "data/blog.db")
	v.SetDefault("content_dir", "content/posts")
	v.SetDefault("images_dir", "content/images")
	v.SetDefault("thumbs_dir", "data/thumbs")
	v.SetDefault("per_page", 10)
	v.SetDefault("admin_password", "")
	v.SetDefault("session_secret", "")
	v.SetDefault("cookie_secure", false)
	v.SetDefault("post_cache_ttl", "5m")

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("blogindex")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("BLOGINDEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || file != "" {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Debug("no config file found, using defaults and environment")
	} else {
		log.Info("using config file", zap.String("path", v.ConfigFileUsed()))
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("unable to decode config: %w", err)
	}
	return cfg, nil
}

// newApp builds the app from the loaded config with the default views.
func newApp() *blogindex.App {
	return blogindex.New(siteConfig, views.New(siteConfig),
		blogindex.WithLogger(logger),
		blogindex.WithStaticDir(staticDir),
	)
}
