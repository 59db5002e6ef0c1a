// Save, Load, List, and Delete over the patch tables.
package sqlite

import (
	"database/sql"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/terrapatch/pkg/patch"
)

// Save writes the slots of p resolved by sel under id, replacing any
// previously stored versions of those slots and leaving the rest of the
// stored patch untouched. With an empty id a new UUID v7 is generated;
// the ID actually used is returned. A selector resolving to nothing is a
// complete no-op.
func (b *Backend) Save(id string, p *patch.Patch, sel patch.Selector) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return "", patch.ErrStoreDetached
	}
	refs := sel.ResolvePresent(p)
	if len(refs) == 0 {
		return id, nil
	}
	if id == "" {
		id = generateUUID()
	}
	now := time.Now().UTC().Format(timeFormat)

	tx, err := b.db.Begin()
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRow("SELECT 1 FROM patches WHERE patch_id = ?", id).Scan(&exists)
	if err != nil && err != sql.ErrNoRows {
		return "", fmt.Errorf("checking patch existence: %w", err)
	}
	if exists {
		if _, err := tx.Exec("UPDATE patches SET updated_at = ? WHERE patch_id = ?", now, id); err != nil {
			return "", fmt.Errorf("updating patch row: %w", err)
		}
	} else {
		if _, err := tx.Exec(
			"INSERT INTO patches (patch_id, created_at, updated_at) VALUES (?, ?, ?)",
			id, now, now,
		); err != nil {
			return "", fmt.Errorf("inserting patch row: %w", err)
		}
	}

	for _, ref := range refs {
		switch ref.Type {
		case patch.BBox:
			if err := saveBBox(tx, id, p.BBox()); err != nil {
				return "", err
			}
		case patch.Timestamps:
			if err := saveTimestamps(tx, id, p.Timestamps()); err != nil {
				return "", err
			}
		case patch.Meta:
			if err := saveMeta(tx, id, p.Meta()); err != nil {
				return "", err
			}
		default:
			payload, err := p.Get(ref.Type, ref.Name)
			if err != nil {
				return "", err
			}
			if err := saveFeature(tx, id, ref.Type, ref.TargetName(), payload); err != nil {
				return "", err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing patch: %w", err)
	}
	b.log.Debug("saved patch", zap.String("id", id), zap.Int("slots", len(refs)))
	return id, nil
}

func saveBBox(tx *sql.Tx, id string, bbox *patch.BoundingBox) error {
	var minX, minY, maxX, maxY sql.NullFloat64
	var crs sql.NullInt64
	if bbox != nil {
		minX = sql.NullFloat64{Float64: bbox.Bound.Min[0], Valid: true}
		minY = sql.NullFloat64{Float64: bbox.Bound.Min[1], Valid: true}
		maxX = sql.NullFloat64{Float64: bbox.Bound.Max[0], Valid: true}
		maxY = sql.NullFloat64{Float64: bbox.Bound.Max[1], Valid: true}
		crs = sql.NullInt64{Int64: int64(bbox.CRS), Valid: true}
	}
	_, err := tx.Exec(
		"UPDATE patches SET min_x = ?, min_y = ?, max_x = ?, max_y = ?, crs = ? WHERE patch_id = ?",
		minX, minY, maxX, maxY, crs, id,
	)
	if err != nil {
		return fmt.Errorf("persisting bbox: %w", err)
	}
	return nil
}

func saveTimestamps(tx *sql.Tx, id string, ts []time.Time) error {
	if _, err := tx.Exec("DELETE FROM patch_timestamps WHERE patch_id = ?", id); err != nil {
		return fmt.Errorf("clearing timestamps: %w", err)
	}
	for i, t := range ts {
		if _, err := tx.Exec(
			"INSERT INTO patch_timestamps (patch_id, ordinal, taken_at) VALUES (?, ?, ?)",
			id, i, t.UTC().Format(timeFormat),
		); err != nil {
			return fmt.Errorf("persisting timestamp %d: %w", i, err)
		}
	}
	return nil
}

func saveMeta(tx *sql.Tx, id string, meta map[string]any) error {
	if _, err := tx.Exec("DELETE FROM patch_meta WHERE patch_id = ?", id); err != nil {
		return fmt.Errorf("clearing metadata: %w", err)
	}
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		value, err := encodeMetaValue(meta[k])
		if err != nil {
			return err
		}
		if _, err := tx.Exec(
			"INSERT INTO patch_meta (patch_id, key, value) VALUES (?, ?, ?)",
			id, k, value,
		); err != nil {
			return fmt.Errorf("persisting metadata key %q: %w", k, err)
		}
	}
	return nil
}

// saveFeature upserts one feature row. A name already stored under the
// patch keeps its ordinal so partial saves never reorder what Load
// hydrates; a new name goes after the highest stored ordinal of its
// type.
func saveFeature(tx *sql.Tx, id string, ftype patch.FeatureType, name string, payload patch.Payload) error {
	kind, shape, blob, err := encodePayload(payload)
	if err != nil {
		return fmt.Errorf("encoding %s/%s: %w", ftype, name, err)
	}

	var ordinal int
	err = tx.QueryRow(
		"SELECT ordinal FROM features WHERE patch_id = ? AND feature_type = ? AND name = ?",
		id, ftype.String(), name,
	).Scan(&ordinal)
	if err == sql.ErrNoRows {
		var max sql.NullInt64
		if err := tx.QueryRow(
			"SELECT MAX(ordinal) FROM features WHERE patch_id = ? AND feature_type = ?",
			id, ftype.String(),
		).Scan(&max); err != nil {
			return fmt.Errorf("placing feature %s/%s: %w", ftype, name, err)
		}
		if max.Valid {
			ordinal = int(max.Int64) + 1
		}
	} else if err != nil {
		return fmt.Errorf("placing feature %s/%s: %w", ftype, name, err)
	}

	if _, err := tx.Exec(
		"DELETE FROM features WHERE patch_id = ? AND feature_type = ? AND name = ?",
		id, ftype.String(), name,
	); err != nil {
		return fmt.Errorf("clearing feature %s/%s: %w", ftype, name, err)
	}
	if _, err := tx.Exec(
		"INSERT INTO features (patch_id, feature_type, name, payload_kind, shape, payload, ordinal) VALUES (?, ?, ?, ?, ?, ?, ?)",
		id, ftype.String(), name, kind, shape, blob, ordinal,
	); err != nil {
		return fmt.Errorf("persisting feature %s/%s: %w", ftype, name, err)
	}
	return nil
}

// Load returns a patch populated with the stored slots of id resolved by
// sel. An unknown id yields an empty patch, not an error.
func (b *Backend) Load(id string, sel patch.Selector) (*patch.Patch, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, patch.ErrStoreDetached
	}
	if id == "" {
		return nil, patch.ErrInvalidID
	}

	var exists bool
	err := b.db.QueryRow("SELECT 1 FROM patches WHERE patch_id = ?", id).Scan(&exists)
	if err == sql.ErrNoRows {
		return patch.New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("checking patch existence: %w", err)
	}

	stored, err := b.loadPatch(id)
	if err != nil {
		return nil, err
	}

	out := patch.New()
	for _, ref := range sel.ResolvePresent(stored) {
		switch ref.Type {
		case patch.BBox:
			out.SetBBox(stored.BBox())
		case patch.Timestamps:
			if err := out.SetTimestamps(stored.Timestamps()); err != nil {
				return nil, err
			}
		case patch.Meta:
			for k, v := range stored.Meta() {
				out.SetMetaValue(k, v)
			}
		default:
			payload, err := stored.Get(ref.Type, ref.Name)
			if err != nil {
				return nil, err
			}
			if err := out.Set(ref.Type, ref.TargetName(), payload); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// loadPatch hydrates the complete stored patch. The caller must hold at
// least a read lock.
func (b *Backend) loadPatch(id string) (*patch.Patch, error) {
	p := patch.New()

	var minX, minY, maxX, maxY sql.NullFloat64
	var crs sql.NullInt64
	err := b.db.QueryRow(
		"SELECT min_x, min_y, max_x, max_y, crs FROM patches WHERE patch_id = ?", id,
	).Scan(&minX, &minY, &maxX, &maxY, &crs)
	if err != nil {
		return nil, fmt.Errorf("loading patch row: %w", err)
	}
	if minX.Valid {
		p.SetBBox(patch.NewBoundingBox(minX.Float64, minY.Float64, maxX.Float64, maxY.Float64, int(crs.Int64)))
	}

	rows, err := b.db.Query(
		"SELECT taken_at FROM patch_timestamps WHERE patch_id = ? ORDER BY ordinal", id,
	)
	if err != nil {
		return nil, fmt.Errorf("loading timestamps: %w", err)
	}
	var ts []time.Time
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning timestamp: %w", err)
		}
		t, err := time.Parse(timeFormat, raw)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("parsing timestamp %q: %w", raw, err)
		}
		ts = append(ts, t)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := p.SetTimestamps(ts); err != nil {
		return nil, err
	}

	rows, err = b.db.Query(
		"SELECT feature_type, name, payload_kind, shape, payload FROM features WHERE patch_id = ? ORDER BY feature_type, ordinal",
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("loading features: %w", err)
	}
	for rows.Next() {
		var typeName, name, kind, shape string
		var blob []byte
		if err := rows.Scan(&typeName, &name, &kind, &shape, &blob); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning feature: %w", err)
		}
		ftype, err := patch.ParseFeatureType(typeName)
		if err != nil {
			rows.Close()
			return nil, err
		}
		payload, err := decodePayload(kind, shape, blob)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("decoding %s/%s: %w", typeName, name, err)
		}
		if err := p.Set(ftype, name, payload); err != nil {
			rows.Close()
			return nil, err
		}
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	rows, err = b.db.Query("SELECT key, value FROM patch_meta WHERE patch_id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("loading metadata: %w", err)
	}
	for rows.Next() {
		var key, raw string
		if err := rows.Scan(&key, &raw); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning metadata: %w", err)
		}
		value, err := decodeMetaValue(raw)
		if err != nil {
			rows.Close()
			return nil, err
		}
		p.SetMetaValue(key, value)
	}
	return p, rows.Close()
}

// List returns the IDs of every stored patch in creation order.
func (b *Backend) List() ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, patch.ErrStoreDetached
	}
	rows, err := b.db.Query("SELECT patch_id FROM patches ORDER BY created_at, patch_id")
	if err != nil {
		return nil, fmt.Errorf("listing patches: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning patch id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Delete removes a stored patch and all of its rows. Returns
// ErrPatchNotFound for an unknown id.
func (b *Backend) Delete(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return patch.ErrStoreDetached
	}
	if id == "" {
		return patch.ErrInvalidID
	}

	var exists bool
	err := b.db.QueryRow("SELECT 1 FROM patches WHERE patch_id = ?", id).Scan(&exists)
	if err == sql.ErrNoRows {
		return patch.ErrPatchNotFound
	}
	if err != nil {
		return fmt.Errorf("checking patch existence: %w", err)
	}

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"features", "patch_timestamps", "patch_meta", "patches"} {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE patch_id = ?", id); err != nil {
			return fmt.Errorf("deleting from %s: %w", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete: %w", err)
	}
	b.log.Debug("deleted patch", zap.String("id", id))
	return nil
}
