//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/rios0rios0/cargobump/internal/domain/entities"
	"github.com/rios0rios0/cargobump/internal/domain/repositories"
)

// SpyManifestRepository implements repositories.ManifestRepository as a
// configurable spy.
type SpyManifestRepository struct {
	// --- Load ---
	Document  *StubManifestDocument
	LoadErr   error
	LoadPaths []string
	LoadTable []string

	// --- Save ---
	SaveErr   error
	SaveCalls []SaveCall
}

// SaveCall records a single invocation of Save.
type SaveCall struct {
	Path  string
	Bytes []byte
}

var _ repositories.ManifestRepository = (*SpyManifestRepository)(nil)

func (m *SpyManifestRepository) Load(path string, table []string) (repositories.ManifestDocument, error) {
	m.LoadPaths = append(m.LoadPaths, path)
	m.LoadTable = table
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return m.Document, nil
}

func (m *SpyManifestRepository) Save(doc repositories.ManifestDocument, path string) error {
	m.SaveCalls = append(m.SaveCalls, SaveCall{Path: path, Bytes: doc.Bytes()})
	return m.SaveErr
}

// StubManifestDocument implements repositories.ManifestDocument over an
// in-memory version value.
type StubManifestDocument struct {
	DocPath       string
	Version       entities.Version
	VersionErr    error
	SetVersionErr error
	SetVersions   []entities.Version
}

var _ repositories.ManifestDocument = (*StubManifestDocument)(nil)

// NewStubManifestDocument creates a document holding the given version.
func NewStubManifestDocument(version string) *StubManifestDocument {
	return &StubManifestDocument{
		DocPath: "Cargo.toml",
		Version: entities.MustParseVersion(version),
	}
}

func (d *StubManifestDocument) Path() string { return d.DocPath }

func (d *StubManifestDocument) Bytes() []byte {
	return []byte("[package]\nversion = \"" + d.Version.String() + "\"\n")
}

func (d *StubManifestDocument) CurrentVersion() (entities.Version, error) {
	return d.Version, d.VersionErr
}

func (d *StubManifestDocument) SetVersion(version entities.Version) error {
	d.SetVersions = append(d.SetVersions, version)
	if d.SetVersionErr != nil {
		return d.SetVersionErr
	}
	d.Version = version
	return nil
}
