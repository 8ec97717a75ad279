package childrecords

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
)

// Kind selects which child-record index a load consults.
type Kind string

const (
	KindComments    Kind = "comments"
	KindTimeEntries Kind = "time_entries"
)

// fileColumn maps each kind to the index-table column holding the
// shard file path.
var fileColumn = map[Kind]string{
	KindComments:    "file",
	KindTimeEntries: "file",
}

// RawRecord is one decoded child record (comment or time entry).
type RawRecord map[string]any

// Loader locates and loads a ticket's child records from sharded JSON
// files. Shard parses are cached per path so repeated lookups within a
// batch do not re-read the file; EvictAll bounds memory at batch
// boundaries.
type Loader struct {
	index  map[Kind]map[string]string // kind -> ticket id -> shard path
	logger *zap.Logger

	mu     sync.Mutex
	shards map[string]map[string]json.RawMessage
}

// NewLoader builds a loader from the two index tables. A missing or
// malformed index degrades to an empty index for that kind; lookups
// then normalize to not-found.
func NewLoader(commentsIndexFile, timeEntriesIndexFile string, logger *zap.Logger) *Loader {
	l := &Loader{
		index: map[Kind]map[string]string{
			KindComments:    {},
			KindTimeEntries: {},
		},
		logger: logger,
		shards: make(map[string]map[string]json.RawMessage),
	}
	l.loadIndex(KindComments, commentsIndexFile)
	l.loadIndex(KindTimeEntries, timeEntriesIndexFile)
	return l
}

func (l *Loader) loadIndex(kind Kind, path string) {
	file, err := os.Open(path)
	if err != nil {
		l.logger.Warn("failed to open child-record index", zap.String("kind", string(kind)), zap.String("file", path), zap.Error(err))
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		l.logger.Warn("failed to read child-record index header", zap.String("kind", string(kind)), zap.Error(err))
		return
	}

	col := map[string]int{}
	for i, name := range header {
		col[name] = i
	}
	ticketCol, ok := col["ticket_id"]
	if !ok {
		l.logger.Warn("child-record index missing ticket_id column", zap.String("kind", string(kind)))
		return
	}
	pathCol, ok := col[fileColumn[kind]]
	if !ok {
		l.logger.Warn("child-record index missing file column", zap.String("kind", string(kind)))
		return
	}

	count := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			l.logger.Warn("skipping bad index row", zap.String("kind", string(kind)), zap.Error(err))
			continue
		}
		if ticketCol >= len(record) || pathCol >= len(record) {
			continue
		}
		l.index[kind][record[ticketCol]] = record[pathCol]
		count++
	}
	l.logger.Info("loaded child-record index",
		zap.String("kind", string(kind)),
		zap.String("file", path),
		zap.Int("records", count))
}

// Load returns the child records for ticketID. The second return is
// false when the ticket has no index entry, the shard file is missing
// or malformed, or the ticket's key is absent from the shard. All of
// those normalize to the same not-found signal; callers substitute the
// canonical default record.
func (l *Loader) Load(kind Kind, ticketID string) ([]RawRecord, bool) {
	shardPath, ok := l.index[kind][ticketID]
	if !ok || shardPath == "" {
		return nil, false
	}

	shard, err := l.shard(shardPath)
	if err != nil {
		l.logger.Warn("failed to load shard",
			zap.String("kind", string(kind)),
			zap.String("file", shardPath),
			zap.Error(err))
		return nil, false
	}

	payload, ok := shard[ticketID]
	if !ok {
		l.logger.Debug("ticket not present in shard",
			zap.String("kind", string(kind)),
			zap.String("ticket_id", ticketID),
			zap.String("file", shardPath))
		return nil, false
	}

	records, err := decodeRecords(payload)
	if err != nil {
		l.logger.Warn("malformed child-record payload",
			zap.String("kind", string(kind)),
			zap.String("ticket_id", ticketID),
			zap.Error(err))
		return nil, false
	}
	return records, true
}

// shard returns the parsed shard for path, reading and caching it on
// first use.
func (l *Loader) shard(path string) (map[string]json.RawMessage, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if cached, ok := l.shards[path]; ok {
		return cached, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var parsed map[string]json.RawMessage
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("invalid shard JSON: %w", err)
	}
	l.shards[path] = parsed
	return parsed, nil
}

// EvictAll drops every cached shard parse. The batch scheduler calls
// this at batch boundaries to bound memory.
func (l *Loader) EvictAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.shards = make(map[string]map[string]json.RawMessage)
}

// decodeRecords accepts either a single child record or a list of them.
func decodeRecords(payload json.RawMessage) ([]RawRecord, error) {
	var list []RawRecord
	if err := json.Unmarshal(payload, &list); err == nil {
		return list, nil
	}
	var single RawRecord
	if err := json.Unmarshal(payload, &single); err == nil {
		return []RawRecord{single}, nil
	}
	return nil, errors.New("payload is neither an object nor a list of objects")
}
