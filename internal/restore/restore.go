// Package restore rebuilds a ledger store from the latest snapshot plus
// a replay of the changelog tail.
package restore

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/segmentio/kafka-go"

	"minipos/internal/changelog"
	"minipos/internal/ledger"
	"minipos/internal/manifest"
	"minipos/internal/model"
	"minipos/internal/poserr"
)

type Restorer struct {
	target          ledger.Store
	manifestReader  manifest.Reader
	snapshotBaseDir string
}

func NewRestorer(target ledger.Store, mr manifest.Reader, snapshotBaseDir string) *Restorer {
	return &Restorer{
		target:          target,
		manifestReader:  mr,
		snapshotBaseDir: snapshotBaseDir,
	}
}

type FilesystemReader struct {
	baseDir string
}

func NewFilesystemReader(baseDir string) *FilesystemReader {
	return &FilesystemReader{baseDir: baseDir}
}

func (r *FilesystemReader) ReadLatest() (manifest.Manifest, error) {
	file := filepath.Join(r.baseDir, "manifest.latest.json")
	data, err := os.ReadFile(file)
	if err != nil {
		return manifest.Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	var m manifest.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return manifest.Manifest{}, fmt.Errorf("unmarshal manifest: %w", err)
	}
	return m, nil
}

// KafkaReader reads the latest manifest record from a compacted topic.
type KafkaReader struct {
	brokers []string
	topic   string
	key     []byte
}

func NewKafkaReader(brokers []string, topic string, key string) *KafkaReader {
	return &KafkaReader{brokers: brokers, topic: topic, key: []byte(key)}
}

func (k *KafkaReader) ReadLatest() (manifest.Manifest, error) {
	// Read from the beginning and keep the last record seen for the key
	// (fine for small compacted topics).
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:   k.brokers,
		Topic:     k.topic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  10e6,
	})
	defer r.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var last manifest.Manifest
	for {
		m, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			return manifest.Manifest{}, fmt.Errorf("read kafka: %w", err)
		}
		if string(m.Key) != string(k.key) {
			continue
		}
		var man manifest.Manifest
		if err := json.Unmarshal(m.Value, &man); err != nil {
			return manifest.Manifest{}, fmt.Errorf("unmarshal kafka manifest: %w", err)
		}
		last = man
	}
	if last.SnapshotID == "" {
		return manifest.Manifest{}, fmt.Errorf("no manifest found for key")
	}
	return last, nil
}

type RestoreResult struct {
	Applied int
	Skipped int
	Error   error
}

// RestoreFromSnapshot loads the ledger dump of the given snapshot into
// the target store. A missing snapshot is skipped, not fatal; rows
// already present in the target are skipped.
func (r *Restorer) RestoreFromSnapshot(snapshotID string) error {
	if snapshotID == "" {
		return nil
	}
	path := filepath.Join(r.snapshotBaseDir, snapshotID, "ledger.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("restore: snapshot not found at %s, skipping", path)
			return nil
		}
		return fmt.Errorf("read snapshot: %w", err)
	}
	var sales []model.Sale
	if err := json.Unmarshal(data, &sales); err != nil {
		return fmt.Errorf("unmarshal snapshot: %w", err)
	}
	loaded := 0
	for _, s := range sales {
		if err := r.target.Append(s); err != nil {
			if errors.Is(err, poserr.ErrDuplicateKey) {
				continue
			}
			return fmt.Errorf("append %s: %w", s.Reference, err)
		}
		loaded++
	}
	log.Printf("restore: loaded %d sales from snapshot %s", loaded, snapshotID)
	return nil
}

// apply replays a single changelog event against the target store.
// Events already reflected in the store (duplicate appends, edits or
// deletes of absent references) are skipped rather than fatal, so a
// replay over an offset overlap stays idempotent.
func (r *Restorer) apply(e changelog.Event) (bool, error) {
	switch e.Op {
	case changelog.OpAppend:
		if e.Sale == nil {
			return false, fmt.Errorf("append event %s without sale", e.Reference)
		}
		err := r.target.Append(*e.Sale)
		if errors.Is(err, poserr.ErrDuplicateKey) {
			return false, nil
		}
		return err == nil, err
	case changelog.OpUpdate:
		if e.Patch == nil {
			return false, fmt.Errorf("update event %s without patch", e.Reference)
		}
		err := r.target.UpdateByReference(e.Reference, *e.Patch)
		if errors.Is(err, poserr.ErrNotFound) {
			return false, nil
		}
		return err == nil, err
	case changelog.OpDelete:
		err := r.target.DeleteByReference(e.Reference)
		if errors.Is(err, poserr.ErrNotFound) {
			return false, nil
		}
		return err == nil, err
	}
	return false, fmt.Errorf("unknown op %q", e.Op)
}

// ReplayChangelog replays the JSONL changelog file, skipping the first
// fromOffset lines.
func (r *Restorer) ReplayChangelog(changelogPath string, fromOffset int64) RestoreResult {
	file, err := os.Open(changelogPath)
	if err != nil {
		return RestoreResult{Error: fmt.Errorf("open changelog: %w", err)}
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	applied, skipped := 0, 0
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		if int64(lineNum) <= fromOffset {
			continue
		}

		var e changelog.Event
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			return RestoreResult{Error: fmt.Errorf("unmarshal line %d: %w", lineNum, err)}
		}
		ok, err := r.apply(e)
		if err != nil {
			return RestoreResult{Error: fmt.Errorf("apply line %d: %w", lineNum, err)}
		}
		if ok {
			applied++
		} else {
			skipped++
		}
	}

	if err := scanner.Err(); err != nil {
		return RestoreResult{Error: fmt.Errorf("scan changelog: %w", err)}
	}

	return RestoreResult{Applied: applied, Skipped: skipped}
}

// ReplayChangelogKafka consumes events from a Kafka topic (partition 0)
// and applies them. fromOffset is interpreted as message index.
func (r *Restorer) ReplayChangelogKafka(brokers []string, topic string, fromOffset int64) RestoreResult {
	rd := kafka.NewReader(kafka.ReaderConfig{
		Brokers:   brokers,
		Topic:     topic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  10e6,
	})
	defer rd.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	applied, skipped := 0, 0
	idx := int64(0)
	for {
		m, err := rd.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			return RestoreResult{Applied: applied, Skipped: skipped, Error: fmt.Errorf("read kafka: %w", err)}
		}
		idx++
		if idx <= fromOffset {
			continue
		}
		var e changelog.Event
		if err := json.Unmarshal(m.Value, &e); err != nil {
			return RestoreResult{Applied: applied, Skipped: skipped, Error: fmt.Errorf("unmarshal event: %w", err)}
		}
		ok, err := r.apply(e)
		if err != nil {
			return RestoreResult{Applied: applied, Skipped: skipped, Error: fmt.Errorf("apply: %w", err)}
		}
		if ok {
			applied++
		} else {
			skipped++
		}
	}
	return RestoreResult{Applied: applied, Skipped: skipped}
}

// RestoreAndReplay reads the latest manifest, restores its snapshot and
// replays the file changelog from the recorded offset.
func (r *Restorer) RestoreAndReplay(changelogPath string) (RestoreResult, error) {
	m, err := r.manifestReader.ReadLatest()
	if err != nil {
		return RestoreResult{}, fmt.Errorf("read manifest: %w", err)
	}
	if err := r.RestoreFromSnapshot(m.SnapshotID); err != nil {
		return RestoreResult{}, fmt.Errorf("restore snapshot: %w", err)
	}
	result := r.ReplayChangelog(changelogPath, m.LastChangelogOffset)
	return result, result.Error
}
