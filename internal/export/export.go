// Package export moves a whole dashboard between stores as JSONL: a header
// line followed by one record per stored key.
package export

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/alfredjeanlab/dashka/internal/store"
)

// FormatVersion is written in the header and required on import.
const FormatVersion = "1"

const (
	typeHeader = "header"
	typeEntry  = "entry"
)

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version    string    `json:"version"`
	Type       string    `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	EntryCount int       `json:"entry_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// rawRecord is a record whose payload has not been decoded yet.
type rawRecord struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// entry is the payload of an entry record. Value is the stored JSON text.
type entry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ExportJSONL writes every stored entry to w, ordered by key.
func ExportJSONL(ctx context.Context, s store.Store, w io.Writer) error {
	entries, err := s.List(ctx, "")
	if err != nil {
		return fmt.Errorf("list entries: %w", err)
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:    FormatVersion,
		Type:       typeHeader,
		Timestamp:  time.Now().UTC(),
		EntryCount: len(entries),
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	for _, e := range entries {
		if err := enc.Encode(record{Type: typeEntry, Data: entry{Key: e.Key, Value: string(e.Value)}}); err != nil {
			return fmt.Errorf("encode entry %s: %w", e.Key, err)
		}
	}

	return nil
}

// ImportOptions controls ImportJSONL.
type ImportOptions struct {
	// Replace deletes stored keys that the snapshot does not contain.
	Replace bool
}

// ImportJSONL reads a snapshot written by ExportJSONL and writes all of it in
// one store transaction. It returns the number of entries written. Nothing is
// written if any line is invalid.
func ImportJSONL(ctx context.Context, s store.Store, r io.Reader, opts ImportOptions) (int, error) {
	entries, err := readSnapshot(r)
	if err != nil {
		return 0, err
	}

	err = s.RunInTransaction(ctx, func(tx store.Store) error {
		if opts.Replace {
			keep := make(map[string]bool, len(entries))
			for _, e := range entries {
				keep[e.Key] = true
			}
			existing, err := tx.List(ctx, "")
			if err != nil {
				return fmt.Errorf("list entries: %w", err)
			}
			for _, e := range existing {
				if keep[e.Key] {
					continue
				}
				if err := tx.Delete(ctx, e.Key); err != nil {
					return err
				}
			}
		}
		for _, e := range entries {
			if err := tx.Set(ctx, e.Key, []byte(e.Value)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("import: %w", err)
	}
	return len(entries), nil
}

// readSnapshot parses and checks every line before anything is written.
func readSnapshot(r io.Reader) ([]entry, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var (
		entries   []entry
		sawHeader bool
		want      int
		line      int
	)
	for sc.Scan() {
		line++
		raw := sc.Bytes()
		if len(raw) == 0 {
			continue
		}
		if !sawHeader {
			var h header
			if err := json.Unmarshal(raw, &h); err != nil || h.Type != typeHeader {
				return nil, fmt.Errorf("line %d: expected snapshot header", line)
			}
			if h.Version != FormatVersion {
				return nil, fmt.Errorf("line %d: unsupported snapshot version %q", line, h.Version)
			}
			sawHeader, want = true, h.EntryCount
			continue
		}

		var rec rawRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if rec.Type != typeEntry {
			return nil, fmt.Errorf("line %d: unknown record type %q", line, rec.Type)
		}
		var e entry
		if err := json.Unmarshal(rec.Data, &e); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if e.Key == "" {
			return nil, fmt.Errorf("line %d: entry without key", line)
		}
		if !json.Valid([]byte(e.Value)) {
			return nil, fmt.Errorf("line %d: value of %s is not JSON", line, e.Key)
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	if !sawHeader {
		return nil, errors.New("empty snapshot")
	}
	if len(entries) != want {
		return nil, fmt.Errorf("snapshot header promises %d entries, found %d", want, len(entries))
	}
	return entries, nil
}
