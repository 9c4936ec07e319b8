// Package embedding is the (optional) Embedding Matcher (spec.md §4.10):
// when a model is available, it produces dense vector embeddings of
// identifiers and ranks by cosine distance to a query embedding via an
// on-disk sqlite-vec ANN index, keyed by identifier hash + model
// identifier.
//
// Grounded directly on theRebelliousNerd-codenerd's
// internal/store/vector_store.go: initVecIndex's "CREATE VIRTUAL TABLE
// ... USING vec0(embedding float[n], ...)" statement,
// embedded_store.go's encodeFloat32SliceToBlob little-endian vector
// encoding, vectorRecallVec's "vec_distance_cosine(embedding, ?) ORDER BY
// dist ASC" query shape, and init_vec.go's vec.Auto() extension
// registration. Uses github.com/mattn/go-sqlite3 (the cgo driver
// sqlite-vec's extension loading requires) rather than modernc.org/sqlite,
// matching codenerd's own driver choice for its vec0 path.
package embedding

import (
	"bytes"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/binary"
	"fmt"
	"sort"

	vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
)

func init() {
	vec.Auto()
}

// Model produces a dense embedding for one piece of text. Swappable so
// tests and callers can supply a deterministic fake without a real model.
type Model interface {
	Name() string
	Dimensions() int
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Match is one scored identifier.
type Match struct {
	Identifier string
	Score      float64 // cosine similarity, 1 - distance
}

// Matcher is the optional embedding-backed matcher. Per spec.md §4.10, a
// Matcher that fails to load its model (or whose sqlite-vec index fails
// to initialize) marks itself Disabled and returns empty results from
// Rank rather than erroring — the rest of the system must keep
// functioning without it.
type Matcher struct {
	model    Model
	db       *sql.DB
	disabled bool
}

// Open loads (or creates) the on-disk embedding index at dbPath for
// model. If model is nil, the database can't be opened, or the vec0
// virtual table can't be created, the returned Matcher is Disabled.
func Open(dbPath string, model Model) *Matcher {
	if model == nil {
		return &Matcher{disabled: true}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return &Matcher{disabled: true}
	}

	cacheStmt := `CREATE TABLE IF NOT EXISTS embedding_identifiers (
		identifier_hash BLOB NOT NULL,
		model_id TEXT NOT NULL,
		identifier TEXT NOT NULL,
		PRIMARY KEY (identifier_hash, model_id)
	)`
	if _, err := db.Exec(cacheStmt); err != nil {
		db.Close()
		return &Matcher{disabled: true}
	}

	vecStmt := fmt.Sprintf(
		"CREATE VIRTUAL TABLE IF NOT EXISTS vec_identifiers USING vec0(embedding float[%d], identifier_hash BLOB, model_id TEXT)",
		model.Dimensions(),
	)
	if _, err := db.Exec(vecStmt); err != nil {
		db.Close()
		return &Matcher{disabled: true}
	}

	return &Matcher{model: model, db: db}
}

// Disabled reports whether the matcher is inoperative (no model, or the
// on-disk index failed to open/initialize).
func (m *Matcher) Disabled() bool {
	return m.disabled
}

// Close releases the on-disk index handle.
func (m *Matcher) Close() error {
	if m.db == nil {
		return nil
	}
	return m.db.Close()
}

func identifierKey(identifier string) []byte {
	sum := sha256.Sum256([]byte(identifier))
	return sum[:]
}

// Index embeds and caches every identifier not already present for this
// model. Per-identifier embedding failures are skipped, not fatal to the
// whole run.
func (m *Matcher) Index(ctx context.Context, identifiers []string) error {
	if m.disabled {
		return nil
	}
	modelID := m.model.Name()

	for _, id := range identifiers {
		key := identifierKey(id)
		var exists int
		err := m.db.QueryRowContext(ctx,
			`SELECT 1 FROM embedding_identifiers WHERE identifier_hash = ? AND model_id = ?`,
			key, modelID).Scan(&exists)
		if err == nil {
			continue // already cached
		}
		if err != sql.ErrNoRows {
			continue
		}

		embedded, embedErr := m.model.Embed(ctx, id)
		if embedErr != nil {
			continue
		}
		blob := encodeFloat32(embedded)

		if _, err := m.db.ExecContext(ctx,
			`INSERT INTO vec_identifiers (embedding, identifier_hash, model_id) VALUES (?, ?, ?)`,
			blob, key, modelID); err != nil {
			continue
		}
		_, _ = m.db.ExecContext(ctx,
			`INSERT OR REPLACE INTO embedding_identifiers (identifier_hash, model_id, identifier) VALUES (?, ?, ?)`,
			key, modelID, id)
	}
	return nil
}

// Rank embeds query and finds its nearest neighbors among indexed
// identifiers via sqlite-vec's vec_distance_cosine, the same query shape
// as theRebelliousNerd-codenerd's vectorRecallVec. Returns nil (not an
// error) when disabled.
func (m *Matcher) Rank(ctx context.Context, query string, threshold float64, topK int) []Match {
	if m.disabled {
		return nil
	}
	qvec, err := m.model.Embed(ctx, query)
	if err != nil {
		return nil
	}
	qblob := encodeFloat32(qvec)
	if topK <= 0 {
		topK = 50
	}

	rows, err := m.db.QueryContext(ctx, `
		SELECT ei.identifier, vec_distance_cosine(vi.embedding, ?) AS dist
		FROM vec_identifiers vi
		JOIN embedding_identifiers ei
		  ON ei.identifier_hash = vi.identifier_hash AND ei.model_id = vi.model_id
		WHERE vi.model_id = ?
		ORDER BY dist ASC
		LIMIT ?`, qblob, m.model.Name(), topK)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var out []Match
	for rows.Next() {
		var id string
		var dist float64
		if err := rows.Scan(&id, &dist); err != nil {
			continue
		}
		score := 1 - dist
		if score >= threshold {
			out = append(out, Match{Identifier: id, Score: score})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Identifier < out[j].Identifier
	})
	return out
}

// encodeFloat32 encodes a vector as the little-endian blob sqlite-vec's
// vec0 columns expect, matching theRebelliousNerd-codenerd's
// encodeFloat32SliceToBlob.
func encodeFloat32(v []float32) []byte {
	buf := &bytes.Buffer{}
	_ = binary.Write(buf, binary.LittleEndian, v)
	return buf.Bytes()
}
