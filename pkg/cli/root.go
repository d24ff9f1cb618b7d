package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/modelscout/modelscout/pkg/config"
	"github.com/modelscout/modelscout/pkg/gateway"
	"github.com/modelscout/modelscout/pkg/infra/logger"
	"github.com/modelscout/modelscout/pkg/infra/provider/openrouter"
	"github.com/modelscout/modelscout/pkg/infra/store"
	"github.com/modelscout/modelscout/pkg/registry"
	"github.com/modelscout/modelscout/pkg/unit"
	"github.com/modelscout/modelscout/pkg/unit/catalog"
)

var (
	cliVersion   = "dev"
	cliBuildDate = "unknown"
	cliGitCommit = "unknown"
)

type RootCommand struct {
	cmd       *cobra.Command
	cfg       *config.Config
	gateway   *gateway.Gateway
	registry  *unit.Registry
	blobs     store.BlobStore
	opts      *OutputOptions
	formatStr string
}

func NewRootCommand() *RootCommand {
	root := &RootCommand{
		opts: NewOutputOptions(),
	}

	cmd := &cobra.Command{
		Use:   "modelscout",
		Short: "modelscout - find the right AI model for the job",
		Long: `modelscout recommends AI models from the OpenRouter catalog.

Describe a task in natural language with hard constraints and soft
preferences, and get a ranked shortlist back. The same units are
exposed as MCP tools for agent use and as CLI commands for humans.`,
		PersistentPreRunE: root.persistentPreRunE,
	}

	pflags := cmd.PersistentFlags()

	pflags.StringVarP(&root.formatStr, "output", "o", "table", "Output format (table, json, yaml)")
	pflags.BoolVarP(&root.opts.Quiet, "quiet", "q", false, "Suppress output")
	pflags.String("config", "", "Config file path (default: ~/.modelscout/config.toml)")

	viper.BindPFlag("output", pflags.Lookup("output"))
	viper.BindPFlag("quiet", pflags.Lookup("quiet"))
	viper.BindPFlag("config", pflags.Lookup("config"))

	root.cmd = cmd

	root.addSubCommands()

	return root
}

func (r *RootCommand) persistentPreRunE(cmd *cobra.Command, args []string) error {
	r.opts.Format = OutputFormat(r.formatStr)

	cfgPath := viper.GetString("config")
	var err error
	r.cfg, err = config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logCfg := logger.Config{
		Level:  r.cfg.Logging.Level,
		Format: r.cfg.Logging.Format,
	}
	if r.cfg.Logging.File != "" {
		if f, err := os.OpenFile(r.cfg.Logging.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
			logCfg.Output = f
		}
	}
	logger.Init(logCfg)

	r.blobs = r.openBlobStore()

	client := catalog.NewCachedProvider(openrouter.NewClient(r.cfg.Provider.APIKey,
		openrouter.WithBaseURL(r.cfg.Provider.BaseURL),
		openrouter.WithEmbedRate(r.cfg.Provider.EmbedRate, 1),
	))

	cache := catalog.NewCache(millis(r.cfg.Catalog.TTLMS), r.blobs)
	embedCache := catalog.NewEmbeddingCache(millis(r.cfg.Catalog.EmbeddingTTLMS), r.blobs)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cache.Hydrate(ctx)
	embedCache.Hydrate(ctx)

	r.registry = unit.NewRegistry()
	if err := registry.RegisterAll(r.registry,
		registry.WithCache(cache),
		registry.WithEmbeddingCache(embedCache),
		registry.WithClient(client),
		registry.WithEmbeddingModel(r.cfg.Provider.EmbeddingModel),
	); err != nil {
		return fmt.Errorf("register units: %w", err)
	}

	r.gateway = gateway.NewGateway(r.registry, gateway.WithTimeout(r.cfg.Gateway.RequestTimeoutD))

	return nil
}

// openBlobStore builds the durable cache backend. Failures degrade to
// no persistence rather than aborting the command.
func (r *RootCommand) openBlobStore() store.BlobStore {
	log := logger.Component("cli")

	switch r.cfg.Store.Backend {
	case "sqlite":
		dbPath := filepath.Join(r.cfg.Store.Path, "modelscout.db")
		blobs, err := store.NewSQLiteStore(dbPath)
		if err != nil {
			log.Warn("open sqlite store failed, continuing without durable cache", "path", dbPath, "error", err)
			return nil
		}
		return blobs
	default:
		blobs, err := store.NewFileStore(r.cfg.Store.Path)
		if err != nil {
			log.Warn("open file store failed, continuing without durable cache", "path", r.cfg.Store.Path, "error", err)
			return nil
		}
		return blobs
	}
}

func (r *RootCommand) addSubCommands() {
	r.cmd.AddCommand(NewVersionCommand(r))
	r.cmd.AddCommand(NewExecCommand(r))
	r.cmd.AddCommand(NewMCPCommand(r))
	r.cmd.AddCommand(NewCatalogCommand(r))
	r.cmd.AddCommand(NewModelCommand(r))
	r.cmd.AddCommand(NewRecommendCommand(r))
}

func (r *RootCommand) Command() *cobra.Command {
	return r.cmd
}

func (r *RootCommand) Gateway() *gateway.Gateway {
	return r.gateway
}

func (r *RootCommand) Registry() *unit.Registry {
	return r.registry
}

func (r *RootCommand) Config() *config.Config {
	return r.cfg
}

func (r *RootCommand) OutputOptions() *OutputOptions {
	return r.opts
}

func (r *RootCommand) SetOutputWriter(w interface{ Write([]byte) (int, error) }) {
	r.opts.Writer = w
}

func (r *RootCommand) Execute() error {
	return r.cmd.Execute()
}

func (r *RootCommand) ExecuteContext(ctx context.Context) error {
	return r.cmd.ExecuteContext(ctx)
}

func Execute() {
	root := NewRootCommand()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func SetVersion(version, buildDate, gitCommit string) {
	cliVersion = version
	cliBuildDate = buildDate
	cliGitCommit = gitCommit
}

func GetVersion() string {
	return cliVersion
}

func GetBuildDate() string {
	return cliBuildDate
}

func GetGitCommit() string {
	return cliGitCommit
}

func millis(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
