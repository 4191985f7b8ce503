// Package config loads the recognized configuration options via
// viper: a storage.path/storage.startFromScratch pair, per-entity LRU
// cache capacities, and per-model listing page sizes.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config is the fully-resolved, typed view of the recognized
// configuration options.
type Config struct {
	Storage StorageConfig
	Cache   CacheConfig
	Model   ModelConfig
}

type StorageConfig struct {
	Path              string
	StartFromScratch  bool
}

type CacheConfig struct {
	NoteCapacity        int
	NotebookCapacity    int
	TagCapacity         int
	SavedSearchCapacity int
}

type ModelConfig struct {
	NotebookListPageSize    int
	TagListPageSize         int
	SavedSearchListPageSize int
	NoteListPageSize        int
	FavoritesListPageSize   int
}

// defaults sets every recognized key up front so viper.Get* never
// silently zero-values an option the user never set.
func defaults() map[string]interface{} {
	return map[string]interface{}{
		"storage.path":                           "",
		"storage.startFromScratch":               false,
		"cache.noteCapacity":                      512,
		"cache.notebookCapacity":                  256,
		"cache.tagCapacity":                       256,
		"cache.savedSearchCapacity":               64,
		"model.notebookListPageSize":              50,
		"model.tagListPageSize":                   50,
		"model.savedSearchListPageSize":            50,
		"model.noteListPageSize":                  50,
		"model.favorites.listPageSize":            50,
	}
}

// Load builds a Config from environment variables (prefixed
// NOTARIUM_, with "." mapped to "_"), an optional config file, and the
// defaults above, in viper's usual override order.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults() {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix("notarium")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	return &Config{
		Storage: StorageConfig{
			Path:             v.GetString("storage.path"),
			StartFromScratch: v.GetBool("storage.startFromScratch"),
		},
		Cache: CacheConfig{
			NoteCapacity:        v.GetInt("cache.noteCapacity"),
			NotebookCapacity:    v.GetInt("cache.notebookCapacity"),
			TagCapacity:         v.GetInt("cache.tagCapacity"),
			SavedSearchCapacity: v.GetInt("cache.savedSearchCapacity"),
		},
		Model: ModelConfig{
			NotebookListPageSize:    v.GetInt("model.notebookListPageSize"),
			TagListPageSize:         v.GetInt("model.tagListPageSize"),
			SavedSearchListPageSize: v.GetInt("model.savedSearchListPageSize"),
			NoteListPageSize:        v.GetInt("model.noteListPageSize"),
			FavoritesListPageSize:   v.GetInt("model.favorites.listPageSize"),
		},
	}, nil
}
