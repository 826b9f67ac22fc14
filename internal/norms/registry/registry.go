// Package registry supplies normative table definitions to norms.Load.
// Every source lists its tables explicitly; nothing is discovered by
// globbing a directory.
package registry

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mind-engage/mindengage-norms/internal/norms"
	"github.com/mind-engage/mindengage-norms/internal/storage"
)

type Source string

const (
	SourceEmbedded Source = "embedded"
	SourceDir      Source = "dir"
	SourceDB       Source = "db"
)

// ManifestFile is the file a table directory must carry.
const ManifestFile = "manifest.json"

//go:embed tables/*.json
var embedded embed.FS

// manifest lists the embedded tables. The values are illustrative and are
// not published norms; deployments load their own tables from a directory
// or the database.
var manifest = []string{
	"tables/all-ages.json",
	"tables/6-7.json",
	"tables/8-9.json",
	"tables/10-16.json",
}

// Manifest is the on-disk manifest shape.
type Manifest struct {
	Tables []string `json:"tables"`
}

// Embedded returns the built-in definitions in manifest order.
func Embedded() ([]norms.Definition, error) {
	defs := make([]norms.Definition, 0, len(manifest))
	for _, name := range manifest {
		b, err := embedded.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("embedded %s: %w", name, err)
		}
		defs = append(defs, norms.Definition{Source: name, Raw: b})
	}
	return defs, nil
}

// EmbeddedFiles exposes the built-in files by base name, for export.
func EmbeddedFiles() (map[string][]byte, []string, error) {
	files := make(map[string][]byte, len(manifest))
	names := make([]string, 0, len(manifest))
	for _, name := range manifest {
		b, err := embedded.ReadFile(name)
		if err != nil {
			return nil, nil, err
		}
		base := path.Base(name)
		files[base] = b
		names = append(names, base)
	}
	return files, names, nil
}

// Dir reads manifest.json from bs, then every table it lists. JSON and
// YAML files are accepted. A listed file that cannot be read is an error;
// a file that reads but holds a bad definition is left for norms.Load to
// skip and report.
func Dir(bs storage.BlobStore) ([]norms.Definition, error) {
	raw, err := readAll(bs, ManifestFile)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if len(m.Tables) == 0 {
		return nil, errors.New("manifest lists no tables")
	}

	defs := make([]norms.Definition, 0, len(m.Tables))
	for _, name := range m.Tables {
		b, err := readAll(bs, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		b, err = FileJSON(name, b)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		defs = append(defs, norms.Definition{Source: name, Raw: b})
	}
	return defs, nil
}

func readAll(bs storage.BlobStore, key string) ([]byte, error) {
	rc, err := bs.Get(key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// FileJSON returns the JSON form of a table file, converting by extension.
func FileJSON(name string, b []byte) ([]byte, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		return yamlToJSON(b)
	}
	return b, nil
}

// yamlToJSON re-encodes a YAML document so that unquoted integer keys
// (raw sums) become JSON object keys.
func yamlToJSON(b []byte) ([]byte, error) {
	var v any
	if err := yaml.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return json.Marshal(stringKeys(v))
}

func stringKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = stringKeys(e)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[fmt.Sprint(k)] = stringKeys(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = stringKeys(e)
		}
		return out
	default:
		return v
	}
}

// DB reads norm_tables ordered by position.
func DB(ctx context.Context, db *sql.DB) ([]norms.Definition, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, definition FROM norm_tables ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("query norm_tables: %w", err)
	}
	defer rows.Close()

	var defs []norms.Definition
	for rows.Next() {
		var id, def string
		if err := rows.Scan(&id, &def); err != nil {
			return nil, err
		}
		defs = append(defs, norms.Definition{Source: "norm_tables/" + id, Raw: []byte(def)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(defs) == 0 {
		return nil, errors.New("norm_tables is empty")
	}
	return defs, nil
}

// Save upserts one definition into norm_tables. The row id is the
// definition's own id.
func Save(ctx context.Context, db *sql.DB, position int, raw []byte) (string, error) {
	var head struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return "", fmt.Errorf("parse definition: %w", err)
	}
	id := strings.TrimSpace(head.ID)
	if id == "" {
		return "", errors.New("definition has no id")
	}
	_, err := db.ExecContext(ctx, `INSERT INTO norm_tables (id, position, definition, updated_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (id) DO UPDATE SET position=EXCLUDED.position, definition=EXCLUDED.definition, updated_at=EXCLUDED.updated_at`,
		id, position, string(raw), time.Now().Unix())
	if err != nil {
		return "", err
	}
	return id, nil
}

// Load picks a source and returns its definitions.
func Load(ctx context.Context, src Source, bs storage.BlobStore, db *sql.DB) ([]norms.Definition, error) {
	switch src {
	case "", SourceEmbedded:
		return Embedded()
	case SourceDir:
		if bs == nil {
			return nil, errors.New("dir source needs a blob store")
		}
		return Dir(bs)
	case SourceDB:
		if db == nil {
			return nil, errors.New("db source needs a database")
		}
		return DB(ctx, db)
	default:
		return nil, fmt.Errorf("unknown norms source %q", src)
	}
}
