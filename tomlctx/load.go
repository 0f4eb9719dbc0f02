package tomlctx

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
)

// Document is a decoded TOML file.
type Document struct {
	Table

	// Digest is the xxh3 hash of the source bytes.
	Digest uint64
}

// Path returns the label the document was loaded with.
func (d Document) Path() string { return d.Context.Label() }

// DigestString returns Digest formatted in base 36.
func (d Document) DigestString() string {
	return strconv.FormatUint(d.Digest, 36)
}

// Load reads and decodes the TOML file at path. The returned document
// is labeled with path.
func Load(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, ErrReadFile.Wrap(err).With(slog.String("path", path))
	}
	defer f.Close()

	ra := readahead.NewReader(f)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return Document{}, ErrReadFile.Wrap(err).With(slog.String("path", path))
	}

	return Parse(path, data)
}

// Parse decodes data as a TOML document labeled with label.
func Parse(label string, data []byte) (Document, error) {
	var m map[string]any

	if _, err := toml.Decode(string(data), &m); err != nil {
		e := ErrParse.Wrap(err).With(slog.String("path", label))

		var pe toml.ParseError
		if errors.As(err, &pe) {
			e = e.With(slog.Int("line", pe.Position.Line))
		}

		return Document{}, e
	}

	if m == nil {
		m = map[string]any{}
	}

	return Document{
		Table:  Table{Context: Root(label), Map: m},
		Digest: xxh3.Hash(data),
	}, nil
}
