package sqlstore

// Schema DDL shared by both dialects. The %s verb receives the dialect's
// auto-increment primary key column type.
const (
	createEntities = `CREATE TABLE IF NOT EXISTS entities (
    id TEXT PRIMARY KEY,
    main TEXT NOT NULL,
    meta TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createCollectionItems = `CREATE TABLE IF NOT EXISTS collection_items (
    position %s,
    collection_id TEXT NOT NULL,
    object_id TEXT NOT NULL,
    UNIQUE (collection_id, object_id)
);`

	createQueueItems = `CREATE TABLE IF NOT EXISTS queue_items (
    seq %s,
    id TEXT NOT NULL,
    event TEXT NOT NULL,
    data TEXT NOT NULL,
    attempts INTEGER NOT NULL,
    created_at TEXT NOT NULL
);`
)

// Index DDL for common queries.
const (
	idxCollectionItems = `CREATE INDEX IF NOT EXISTS idx_collection_items_collection ON collection_items(collection_id, position);`
)

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxCollectionItems,
}
