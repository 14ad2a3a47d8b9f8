package confstore

import (
	"errors"

	"github.com/spf13/viper"
)

const (
	// ConfigFilenameKey is the Viper key naming either the local configuration
	// file path or the blob path, depending on whether a connection string
	// is also present.
	ConfigFilenameKey = "configFilename"

	// StorageConnectionStringKey is the Viper key naming the remote blob
	// store connection string.  When present and non-empty, the source is
	// a Blob rather than a File.
	StorageConnectionStringKey = "storageConnectionString"
)

var (
	ErrorNoConfigFilename = errors.New("A configFilename setting is required")
)

// FromViper produces a Source from a Viper instance.  Callers typically pass
// a sub-Viper scoped to whatever key their application stores these settings under.
func FromViper(v *viper.Viper) (Source, error) {
	if v == nil {
		return nil, ErrorNoConfigFilename
	}

	filename := v.GetString(ConfigFilenameKey)
	if len(filename) == 0 {
		return nil, ErrorNoConfigFilename
	}

	if connectionString := v.GetString(StorageConnectionStringKey); len(connectionString) > 0 {
		return &Blob{
			ConnectionString: connectionString,
			Path:             filename,
		}, nil
	}

	return &File{Path: filename}, nil
}
