package sqlite

// Schema DDL. The data column holds the record's JSON object; seq keeps
// insertion order so Load returns records in the order they were added.
const (
	createRecords = `CREATE TABLE records (
    id TEXT PRIMARY KEY,
    seq INTEGER NOT NULL,
    data TEXT NOT NULL
);`

	createRecordsSeqIndex = `CREATE INDEX idx_records_seq ON records(seq);`
)

var schemaStatements = []string{createRecords, createRecordsSeqIndex}
