// file: cmd/root.go
// version: 1.0.0
// guid: 7d1f4b2a-9c6e-4a05-b3d8-1e2f5a8c0d47

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rero/rero-invenio-thumbnails/internal/cache"
	"github.com/rero/rero-invenio-thumbnails/internal/config"
	"github.com/rero/rero-invenio-thumbnails/internal/provider"
	"github.com/rero/rero-invenio-thumbnails/internal/server"
	"github.com/rero/rero-invenio-thumbnails/internal/thumbnail"
)

var cfgFile string
var filesDir string
var cacheType string
var cacheDir string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rero-invenio-thumbnails",
	Short: "Resolve and serve book cover thumbnails by ISBN",
	Long: `rero-invenio-thumbnails resolves book cover images from a configurable
chain of sources (local files, Open Library, BNF, DNB, Google Books, Amazon)
and serves them over HTTP with dimension-aware caching.`,
}

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the thumbnail HTTP server",
	Long:  `Start the HTTP server exposing thumbnail URL resolution and image delivery.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, err := server.NewServer()
		if err != nil {
			return err
		}

		cfg := server.ServerConfig{
			Addr:         config.AppConfig.ListenAddr,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		if addr := cmd.Flag("addr").Value.String(); addr != "" {
			cfg.Addr = addr
		}
		if rt := cmd.Flag("read-timeout").Value.String(); rt != "" {
			if d, err := time.ParseDuration(rt); err == nil {
				cfg.ReadTimeout = d
			}
		}
		if wt := cmd.Flag("write-timeout").Value.String(); wt != "" {
			if d, err := time.ParseDuration(wt); err == nil {
				cfg.WriteTimeout = d
			}
		}

		fmt.Printf("Using cache: %s\n", config.AppConfig.CacheType)
		fmt.Printf("Provider chain: %v\n", config.AppConfig.Providers)

		return srv.Start(cfg)
	},
}

// resolveCmd represents the resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve <isbn>",
	Short: "Resolve a single ISBN to a cover image URL",
	Long:  `Walk the configured provider chain once and print the resolved cover URL.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := cache.New(
			config.AppConfig.CacheType,
			config.AppConfig.CacheDir,
			time.Duration(config.AppConfig.CacheExpire)*time.Second,
		)
		if err != nil {
			return fmt.Errorf("failed to initialize cache: %w", err)
		}
		defer backend.Close()

		resolver := thumbnail.NewResolverFromConfig(backend)
		useCache := cmd.Flag("cached").Value.String() != "false"

		url, providerName, err := resolver.ResolveURL(args[0], useCache)
		if err != nil {
			return err
		}
		if url == "" {
			return fmt.Errorf("no thumbnail found for isbn %s", args[0])
		}

		fmt.Printf("%s (provider: %s)\n", url, providerName)
		return nil
	},
}

// providersCmd represents the providers command
var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List registered thumbnail providers",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Registered providers:")
		for _, name := range provider.Names() {
			marker := " "
			for _, configured := range config.AppConfig.Providers {
				if configured == name {
					marker = "*"
					break
				}
			}
			fmt.Printf("  %s %s\n", marker, name)
		}
		fmt.Println("(* = in the configured chain)")
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.rero-invenio-thumbnails.yaml)")
	rootCmd.PersistentFlags().StringVar(&filesDir, "files-dir", "", "local directory searched for cover files")
	rootCmd.PersistentFlags().StringVar(&cacheType, "cache-type", "", "cache backend: memory, filesystem or pebble")
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "directory for persistent cache backends")

	viper.BindPFlag("files_dir", rootCmd.PersistentFlags().Lookup("files-dir"))
	viper.BindPFlag("cache_type", rootCmd.PersistentFlags().Lookup("cache-type"))
	viper.BindPFlag("cache_dir", rootCmd.PersistentFlags().Lookup("cache-dir"))

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(providersCmd)

	serveCmd.Flags().String("addr", "", "listen address (overrides configuration)")
	serveCmd.Flags().String("read-timeout", "15s", "read timeout (e.g. 15s, 1m)")
	serveCmd.Flags().String("write-timeout", "30s", "write timeout (e.g. 30s, 1m)")

	resolveCmd.Flags().Bool("cached", true, "consult and populate the URL cache")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".rero-invenio-thumbnails")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}

	config.InitConfig()
}
