package manifest

import (
	"bytes"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2/unstable"

	"github.com/rios0rios0/cargobump/internal/domain/entities"
	"github.com/rios0rios0/cargobump/internal/domain/repositories"
)

// Document is a TOML manifest held as raw bytes plus the location of the
// version value token inside them. Edits splice the token and leave every
// other byte alone.
type Document struct {
	path  string
	table []string
	data  []byte
	mode  os.FileMode

	token   *valueToken
	missing string
}

// valueToken is the byte range of a single-line string value, delimiters
// included.
type valueToken struct {
	offset int
	length int
	quote  byte
	text   string
}

var _ repositories.ManifestDocument = (*Document)(nil)

func (d *Document) Path() string { return d.path }

func (d *Document) Bytes() []byte { return slices.Clone(d.data) }

// CurrentVersion parses the located version string.
func (d *Document) CurrentVersion() (entities.Version, error) {
	raw, err := d.rawValue()
	if err != nil {
		return entities.Version{}, err
	}
	return entities.ParseVersion(raw)
}

// SetVersion replaces the text between the quote delimiters.
func (d *Document) SetVersion(version entities.Version) error {
	if _, err := d.rawValue(); err != nil {
		return err
	}

	start := d.token.offset + 1
	end := d.token.offset + d.token.length - 1

	var buf bytes.Buffer
	buf.Grow(len(d.data) + len(version.String()))
	buf.Write(d.data[:start])
	buf.WriteString(version.String())
	buf.Write(d.data[end:])

	d.data = buf.Bytes()
	return d.locate()
}

func (d *Document) fieldPath() []string {
	return append(slices.Clone(d.table), versionKey)
}

func (d *Document) rawValue() (string, error) {
	if d.token == nil {
		reason := d.missing
		if reason == "" {
			reason = "no " + strings.Join(d.fieldPath(), ".") + " key"
		}
		return "", fmt.Errorf("%w: %s: %s", entities.ErrMissingVersionField, d.path, reason)
	}
	return d.token.text, nil
}

// locate walks the top-level expressions and records the version token. A
// key can match through a table header ([package] version = ...) or a dotted
// key (package.version = ...).
func (d *Document) locate() error {
	d.token = nil
	want := d.fieldPath()

	var parser unstable.Parser
	parser.Reset(d.data)

	var current []string
	inArrayTable := false
	for parser.NextExpression() {
		expr := parser.Expression()
		switch expr.Kind {
		case unstable.Table:
			current = keyParts(expr.Key())
			inArrayTable = false
		case unstable.ArrayTable:
			current = keyParts(expr.Key())
			inArrayTable = true
		case unstable.KeyValue:
			if inArrayTable {
				continue
			}
			full := append(slices.Clone(current), keyParts(expr.Key())...)
			if !slices.Equal(full, want) {
				continue
			}
			d.acceptValue(expr.Value())
		default:
		}
	}

	if err := parser.Error(); err != nil {
		return fmt.Errorf("%w: %s: %v", entities.ErrInvalidDocument, d.path, err) //nolint:errorlint // parser detail only
	}
	return nil
}

// acceptValue records value as the version token when it is a plain
// single-line string. Inline tables, workspace inheritance and multi-line
// strings are left unrecognized.
func (d *Document) acceptValue(value *unstable.Node) {
	if value == nil || value.Kind != unstable.String {
		d.missing = "version is not a plain string"
		return
	}

	offset, length := int(value.Raw.Offset), int(value.Raw.Length)
	if length < 2 || offset+length > len(d.data) {
		d.missing = "version token has no source range"
		return
	}

	raw := d.data[offset : offset+length]
	quote := raw[0]
	if (quote != '"' && quote != '\'') || raw[length-1] != quote {
		d.missing = "version uses unsupported quoting"
		return
	}
	if bytes.HasPrefix(raw, []byte{quote, quote, quote}) {
		d.missing = "version is a multi-line string"
		return
	}

	d.token = &valueToken{offset: offset, length: length, quote: quote, text: string(value.Data)}
	d.missing = ""
}

func keyParts(it unstable.Iterator) []string {
	var parts []string
	for it.Next() {
		parts = append(parts, string(it.Node().Data))
	}
	return parts
}
