// Schema DDL for the SQLite patch store.
package sqlite

const (
	createPatches = `CREATE TABLE IF NOT EXISTS patches (
    patch_id TEXT PRIMARY KEY,
    min_x REAL,
    min_y REAL,
    max_x REAL,
    max_y REAL,
    crs INTEGER,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createFeatures = `CREATE TABLE IF NOT EXISTS features (
    patch_id TEXT NOT NULL,
    feature_type TEXT NOT NULL,
    name TEXT NOT NULL,
    payload_kind TEXT NOT NULL,
    shape TEXT,
    payload BLOB NOT NULL,
    ordinal INTEGER NOT NULL,
    PRIMARY KEY (patch_id, feature_type, name),
    FOREIGN KEY (patch_id) REFERENCES patches(patch_id)
);`

	createPatchTimestamps = `CREATE TABLE IF NOT EXISTS patch_timestamps (
    patch_id TEXT NOT NULL,
    ordinal INTEGER NOT NULL,
    taken_at TEXT NOT NULL,
    PRIMARY KEY (patch_id, ordinal),
    FOREIGN KEY (patch_id) REFERENCES patches(patch_id)
);`

	createPatchMeta = `CREATE TABLE IF NOT EXISTS patch_meta (
    patch_id TEXT NOT NULL,
    key TEXT NOT NULL,
    value TEXT NOT NULL,
    PRIMARY KEY (patch_id, key),
    FOREIGN KEY (patch_id) REFERENCES patches(patch_id)
);`
)

const (
	idxFeaturesPatch   = `CREATE INDEX IF NOT EXISTS idx_features_patch ON features(patch_id);`
	idxFeaturesType    = `CREATE INDEX IF NOT EXISTS idx_features_type ON features(patch_id, feature_type);`
	idxTimestampsPatch = `CREATE INDEX IF NOT EXISTS idx_patch_timestamps_patch ON patch_timestamps(patch_id);`
	idxMetaPatch       = `CREATE INDEX IF NOT EXISTS idx_patch_meta_patch ON patch_meta(patch_id);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createPatches,
	createFeatures,
	createPatchTimestamps,
	createPatchMeta,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxFeaturesPatch,
	idxFeaturesType,
	idxTimestampsPatch,
	idxMetaPatch,
}
