package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"io"
	"os"
	"strings"

	crerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/riskibarqy/matchday-streams/internal/domain/stream"
)

//go:embed streams.yaml
var defaultCatalog []byte

type fileCatalog struct {
	EmbedBaseURL string            `yaml:"embed_base_url" validate:"required,url"`
	Aliases      map[string]string `yaml:"aliases" validate:"dive,keys,required,endkeys,required"`
	Streams      []fileEntry       `yaml:"streams" validate:"dive"`
}

type fileEntry struct {
	Home     string `yaml:"home" validate:"required"`
	Away     string `yaml:"away" validate:"required"`
	Provider string `yaml:"provider" validate:"required,oneof=alpha bravo charlie delta echo foxtrot"`
	ID       int64  `yaml:"id" validate:"gt=0"`
}

var validate = validator.New()

// Load reads the catalog at path. An empty path loads the built-in catalog.
func Load(path string) (stream.Catalog, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Default()
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return stream.Catalog{}, crerr.Wrapf(err, "read stream catalog %q", path)
	}

	catalog, err := Parse(raw)
	if err != nil {
		return stream.Catalog{}, crerr.Wrapf(err, "stream catalog %q", path)
	}
	return catalog, nil
}

func Default() (stream.Catalog, error) {
	catalog, err := Parse(defaultCatalog)
	if err != nil {
		return stream.Catalog{}, crerr.Wrap(err, "built-in stream catalog")
	}
	return catalog, nil
}

// Parse decodes and validates a YAML catalog. Unknown fields are rejected.
func Parse(raw []byte) (stream.Catalog, error) {
	var file fileCatalog
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return stream.Catalog{}, crerr.New("catalog is empty")
		}
		return stream.Catalog{}, crerr.Wrap(err, "decode yaml")
	}

	if err := validate.Struct(file); err != nil {
		return stream.Catalog{}, crerr.Wrap(err, "validate catalog")
	}

	out := stream.Catalog{
		EmbedBaseURL: strings.TrimSpace(file.EmbedBaseURL),
		Aliases:      make(map[string]string, len(file.Aliases)),
		Streams:      make([]stream.Entry, 0, len(file.Streams)),
	}
	for variant, canonical := range file.Aliases {
		out.Aliases[variant] = strings.TrimSpace(canonical)
	}
	for _, item := range file.Streams {
		provider, err := stream.ParseProvider(item.Provider)
		if err != nil {
			return stream.Catalog{}, err
		}
		out.Streams = append(out.Streams, stream.Entry{
			HomeTeam: strings.TrimSpace(item.Home),
			AwayTeam: strings.TrimSpace(item.Away),
			Provider: provider,
			StreamID: item.ID,
		})
	}

	if err := out.Validate(); err != nil {
		return stream.Catalog{}, err
	}
	return out, nil
}
