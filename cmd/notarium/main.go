package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/notarium/core/internal/cache"
	"github.com/notarium/core/internal/config"
	"github.com/notarium/core/internal/facade"
	"github.com/notarium/core/internal/storage"
	"github.com/notarium/core/pkg/log"
	"github.com/notarium/core/pkg/types"
)

var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "notarium",
	Short:   "Notarium - a local-first note storage engine",
	Long:    `Notarium is an embeddable local storage engine for notebooks, notes, tags, and saved searches, backed by a single SQLite file.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("notarium version %s\nCommit: %s\n", Version, Commit))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().String("config", "", "Path to a config file")
	rootCmd.PersistentFlags().String("storage-path", "", "Override storage.path")
	rootCmd.PersistentFlags().Bool("start-from-scratch", false, "Override storage.startFromScratch")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(notebookCmd)
	rootCmd.AddCommand(tagCmd)
	rootCmd.AddCommand(searchCmd)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")
	log.Init(log.Config{Level: log.Level(logLevel), JSONOutput: logJSON})
}

// openEngine loads config, opens the storage engine, builds the four
// per-entity-type caches, and wires both into the façade every
// subcommand drives.
func openEngine(cmd *cobra.Command) (*storage.Engine, *facade.Facade, error) {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if path, _ := cmd.Flags().GetString("storage-path"); path != "" {
		cfg.Storage.Path = path
	}
	if start, _ := cmd.Flags().GetBool("start-from-scratch"); start {
		cfg.Storage.StartFromScratch = true
	}
	if cfg.Storage.Path == "" {
		return nil, nil, fmt.Errorf("storage.path is required (set --storage-path or NOTARIUM_STORAGE_PATH)")
	}

	engine, err := storage.Open(cfg.Storage.Path, cfg.Storage.StartFromScratch, log.WithComponent("storage"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open storage: %w", err)
	}

	caches, err := cache.New(cfg.Cache.NoteCapacity, cfg.Cache.NotebookCapacity, cfg.Cache.TagCapacity, cfg.Cache.SavedSearchCapacity)
	if err != nil {
		engine.Close()
		return nil, nil, fmt.Errorf("failed to build caches: %w", err)
	}

	f := facade.New(engine, caches, log.WithComponent("facade"))
	return engine, f, nil
}

func newToken() facade.Token {
	return facade.Token(uuid.NewString())
}

// awaitCompletion drains the façade's completion stream for the
// matching token; a CLI invocation only ever has one request in
// flight at a time, so simple matching suffices.
func awaitCompletion(f *facade.Facade, token facade.Token) facade.Completion {
	for c := range f.Completions() {
		if c.Token == token {
			return c
		}
	}
	return facade.Completion{Token: token, Err: fmt.Errorf("façade closed before completion arrived")}
}

var notebookCmd = &cobra.Command{
	Use:   "notebook",
	Short: "Manage notebooks",
}

var notebookListCmd = &cobra.Command{
	Use:   "list",
	Short: "List personal notebooks",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, f, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer engine.Close()
		defer f.Close()

		token := newToken()
		f.ListNotebooks(token, types.NotebookOrderByName, types.ListOptions{})
		c := awaitCompletion(f, token)
		if c.Err != nil {
			return c.Err
		}
		notebooks := c.Result.([]*types.Notebook)
		if len(notebooks) == 0 {
			fmt.Println("No notebooks found")
			return nil
		}
		fmt.Printf("%-36s %-30s %-10s %s\n", "LOCAL ID", "NAME", "DEFAULT", "STACK")
		for _, n := range notebooks {
			fmt.Printf("%-36s %-30s %-10v %s\n", n.LocalID, n.Name, n.IsDefault, n.Stack)
		}
		return nil
	},
}

var notebookAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Create a new notebook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, f, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer engine.Close()
		defer f.Close()

		n := &types.Notebook{LocalID: uuid.NewString(), Name: args[0], IsLocal: true, IsDirty: true}
		token := newToken()
		f.AddNotebook(token, n)
		c := awaitCompletion(f, token)
		if c.Err != nil {
			return c.Err
		}
		fmt.Printf("✓ Notebook created: %s (%s)\n", n.Name, n.LocalID)
		return nil
	},
}

func init() {
	notebookCmd.AddCommand(notebookListCmd)
	notebookCmd.AddCommand(notebookAddCmd)
}

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Manage tags",
}

var tagListCmd = &cobra.Command{
	Use:   "list",
	Short: "List personal tags",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, f, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer engine.Close()
		defer f.Close()

		token := newToken()
		f.ListTags(token, types.TagOrderByName, types.ListOptions{})
		c := awaitCompletion(f, token)
		if c.Err != nil {
			return c.Err
		}
		tags := c.Result.([]*types.Tag)
		if len(tags) == 0 {
			fmt.Println("No tags found")
			return nil
		}
		fmt.Printf("%-36s %-30s %s\n", "LOCAL ID", "NAME", "PARENT")
		for _, t := range tags {
			fmt.Printf("%-36s %-30s %s\n", t.LocalID, t.Name, t.ParentLocalID)
		}
		return nil
	},
}

func init() {
	tagCmd.AddCommand(tagListCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Manage saved searches",
}

var searchListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved searches",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, f, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer engine.Close()
		defer f.Close()

		token := newToken()
		f.ListSavedSearches(token, types.SavedSearchOrderByName, types.ListOptions{})
		c := awaitCompletion(f, token)
		if c.Err != nil {
			return c.Err
		}
		searches := c.Result.([]*types.SavedSearch)
		if len(searches) == 0 {
			fmt.Println("No saved searches found")
			return nil
		}
		fmt.Printf("%-36s %-30s %s\n", "LOCAL ID", "NAME", "QUERY")
		for _, s := range searches {
			fmt.Printf("%-36s %-30s %s\n", s.LocalID, s.Name, s.Query)
		}
		return nil
	},
}

func init() {
	searchCmd.AddCommand(searchListCmd)
}
