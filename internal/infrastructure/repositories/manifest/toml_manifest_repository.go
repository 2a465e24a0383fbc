package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/cargobump/internal/domain/entities"
	"github.com/rios0rios0/cargobump/internal/domain/repositories"
)

const (
	versionKey      = "version"
	defaultFileMode = 0o644
)

// TOMLManifestRepository reads and writes TOML manifests such as Cargo.toml.
type TOMLManifestRepository struct {
	fs afero.Fs
}

var _ repositories.ManifestRepository = (*TOMLManifestRepository)(nil)

// NewTOMLManifestRepository creates a repository backed by the given filesystem.
func NewTOMLManifestRepository(fs afero.Fs) *TOMLManifestRepository {
	return &TOMLManifestRepository{fs: fs}
}

// Load reads the manifest at path and locates the version field under table.
func (it *TOMLManifestRepository) Load(path string, table []string) (repositories.ManifestDocument, error) {
	info, err := it.fs.Stat(path)
	if err != nil {
		return nil, classifyReadError(path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", entities.ErrManifestUnreadable, path)
	}

	data, err := afero.ReadFile(it.fs, path)
	if err != nil {
		return nil, classifyReadError(path, err)
	}

	meta, err := toml.Decode(string(data), &map[string]any{})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", entities.ErrInvalidDocument, path, err) //nolint:errorlint // parser detail only
	}

	doc := &Document{
		path:  path,
		table: slices.Clone(table),
		data:  data,
		mode:  info.Mode().Perm(),
	}

	fieldPath := doc.fieldPath()
	if meta.IsDefined(fieldPath...) && meta.Type(fieldPath...) != "String" {
		doc.missing = fmt.Sprintf("%s is a %s, not a string", strings.Join(fieldPath, "."), meta.Type(fieldPath...))
	}

	if locateErr := doc.locate(); locateErr != nil {
		return nil, locateErr
	}

	logger.Debugf("[manifest] Loaded %s (%d bytes)", path, len(data))
	return doc, nil
}

// Save overwrites path with the document's bytes, keeping the file mode the
// document was loaded with.
func (it *TOMLManifestRepository) Save(doc repositories.ManifestDocument, path string) error {
	mode := os.FileMode(defaultFileMode)
	if d, ok := doc.(*Document); ok && d.mode != 0 {
		mode = d.mode
	}

	if err := afero.WriteFile(it.fs, path, doc.Bytes(), mode); err != nil {
		return fmt.Errorf("%w: %s: %w", entities.ErrManifestUnwritable, path, err)
	}

	logger.Debugf("[manifest] Saved %s", path)
	return nil
}

func classifyReadError(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", entities.ErrManifestNotFound, path)
	}
	return fmt.Errorf("%w: %s: %w", entities.ErrManifestUnreadable, path, err)
}
