package command

import (
	"fmt"
	"strings"

	"github.com/grufelous/bakker/internal/cli"
	"github.com/grufelous/bakker/internal/config"
	"github.com/grufelous/bakker/internal/fs"
	"github.com/grufelous/bakker/internal/logging"
	"github.com/grufelous/bakker/internal/storage"
)

// storageFor resolves the storage backend for one invocation. An explicit
// --path flag wins; otherwise the configured default storage and its backup
// directory are consulted, with guidance printed when they are absent.
func storageFor(ctx *cli.Context) (*storage.FileSystemStorage, error) {
	osfs := fs.NewOSFS()
	cfg, err := config.Open(osfs)
	if err != nil {
		return nil, err
	}

	root, ok := ctx.Flag("path")
	if !ok {
		choice, defined := cfg.Get(config.DefaultStorageKey)
		if !defined {
			return nil, fmt.Errorf("no default storage is defined\n\nSet default storage with:\n\tbakker config set %s <storage>\nAvailable storages: %s",
				config.DefaultStorageKey, strings.Join(config.DefaultStorageChoices, ", "))
		}
		if !validStorageChoice(choice) {
			return nil, fmt.Errorf("default storage choice is not available: %s\n\nSet default storage with:\n\tbakker config set %s <storage>\nAvailable storages: %s",
				choice, config.DefaultStorageKey, strings.Join(config.DefaultStorageChoices, ", "))
		}
		root, defined = cfg.Get(config.StorageFileSystemPath)
		if !defined {
			return nil, fmt.Errorf("no default backup folder defined\n\nSet default backup directory with:\n\tbakker config set %s <path>",
				config.StorageFileSystemPath)
		}
	}

	storageFS := fs.FS(osfs)
	if mode, defined := cfg.Get(config.StorageFileSystemCompress); defined {
		if mode != "gzip" {
			return nil, fmt.Errorf("unsupported storage compression %q, supported: gzip", mode)
		}
		storageFS = fs.NewCompressedFS(osfs)
	}

	st := storage.NewFileSystemStorage(storageFS, root)
	st.Log = logging.Component("storage")
	return st, nil
}

func validStorageChoice(choice string) bool {
	for _, c := range config.DefaultStorageChoices {
		if choice == c {
			return true
		}
	}
	return false
}
