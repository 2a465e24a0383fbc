package repositories

import (
	"github.com/rios0rios0/cargobump/internal/domain/entities"
)

// ManifestDocument is a loaded manifest whose version field can be read and
// replaced without disturbing any other byte of the file.
type ManifestDocument interface {
	// Path returns the file the document was loaded from.
	Path() string

	// Bytes returns the current contents of the document.
	Bytes() []byte

	// CurrentVersion parses the version field. It fails with
	// entities.ErrMissingVersionField when the field is absent or is not a
	// plain single-line string.
	CurrentVersion() (entities.Version, error)

	// SetVersion replaces the version value in place, keeping its quoting.
	SetVersion(version entities.Version) error
}

// ManifestRepository loads and saves manifest documents.
type ManifestRepository interface {
	// Load reads the manifest at path, looking for the version field under
	// the given table (e.g. ["package"] or ["workspace", "package"]).
	Load(path string, table []string) (ManifestDocument, error)

	// Save overwrites path with the document's contents.
	Save(doc ManifestDocument, path string) error
}
