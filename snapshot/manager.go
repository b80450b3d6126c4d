package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wingrune/objectmap"
	"github.com/wingrune/objectmap/blobstore"
	"github.com/wingrune/objectmap/codec"
	"github.com/wingrune/objectmap/resource"
)

// ErrNotFound reports a missing snapshot: no CURRENT pointer has been
// committed yet, or the named manifest does not exist in the store.
var ErrNotFound = errors.New("snapshot not found")

const (
	// CurrentFileName is the blob holding the name of the most recently
	// committed manifest. Stores with conditional writes (see
	// blobstore/s3.DDBCommitStore) turn updating it into an atomic commit.
	CurrentFileName = "CURRENT"

	manifestPrefix = "MANIFEST-"
	snapshotDir    = "snapshots"

	// ManifestVersion is the manifest schema version.
	ManifestVersion = 1
)

// Manifest describes one committed snapshot.
type Manifest struct {
	Version     int       `json:"version"`
	ID          string    `json:"id"`
	Name        string    `json:"name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	Path        string    `json:"path"`
	Count       int       `json:"count"`
	Codec       string    `json:"codec"`
	Compression string    `json:"compression"`
	Size        int64     `json:"size"`
}

// FileName returns the blob name the manifest is stored under.
func (m *Manifest) FileName() string {
	return manifestPrefix + m.ID + ".json"
}

// Manager persists serialized collections as snapshots on a blob store.
//
// Each Save writes an immutable snapshot blob under snapshots/, then a
// manifest describing it, and finally repoints CURRENT at the new
// manifest. Readers that follow CURRENT never observe a half-written
// snapshot; at worst a failed save leaves an orphaned blob that no
// manifest references.
type Manager struct {
	store       blobstore.BlobStore
	codec       codec.Codec
	compression Compression
	rc          *resource.Controller
	logger      *objectmap.Logger

	mu sync.Mutex // serializes manifest and CURRENT updates
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithCodec selects the payload codec. Defaults to codec.Default.
func WithCodec(c codec.Codec) ManagerOption {
	return func(m *Manager) { m.codec = c }
}

// WithCompression selects the payload compression. Defaults to zstd.
func WithCompression(c Compression) ManagerOption {
	return func(m *Manager) { m.compression = c }
}

// WithController bounds the memory, concurrency and IO throughput of
// snapshot operations. Without one, operations run unconstrained.
func WithController(rc *resource.Controller) ManagerOption {
	return func(m *Manager) { m.rc = rc }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *objectmap.Logger) ManagerOption {
	return func(m *Manager) { m.logger = logger }
}

// NewManager returns a Manager over store.
func NewManager(store blobstore.BlobStore, optFns ...ManagerOption) *Manager {
	m := &Manager{
		store:       store,
		codec:       codec.Default,
		compression: CompressionZstd,
		logger:      objectmap.NoopLogger(),
	}
	for _, fn := range optFns {
		fn(m)
	}
	if m.codec == nil {
		m.codec = codec.Default
	}
	if m.logger == nil {
		m.logger = objectmap.NoopLogger()
	}
	return m
}

// Save encodes objs as a snapshot, uploads it, and commits it by writing
// the manifest and repointing CURRENT. The returned manifest identifies
// the snapshot for Load and Delete.
func (m *Manager) Save(ctx context.Context, name string, objs []objectmap.StoredObject) (*Manifest, error) {
	data, err := Encode(objs, m.codec, m.compression)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	path := fmt.Sprintf("%s/%s.snap", snapshotDir, id)
	if err := m.writeBlob(ctx, path, data); err != nil {
		return nil, fmt.Errorf("write snapshot %s: %w", path, err)
	}

	man := &Manifest{
		Version:     ManifestVersion,
		ID:          id,
		Name:        name,
		CreatedAt:   time.Now().UTC(),
		Path:        path,
		Count:       len(objs),
		Codec:       m.codec.Name(),
		Compression: m.compression.String(),
		Size:        int64(len(data)),
	}
	encoded, err := json.Marshal(man)
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.Put(ctx, man.FileName(), encoded); err != nil {
		return nil, fmt.Errorf("write manifest %s: %w", man.FileName(), err)
	}
	if err := m.store.Put(ctx, CurrentFileName, []byte(man.FileName())); err != nil {
		return nil, fmt.Errorf("update %s: %w", CurrentFileName, err)
	}

	m.logger.Info("snapshot saved",
		"id", id,
		"name", name,
		"objects", len(objs),
		"bytes", len(data),
		"codec", man.Codec,
		"compression", man.Compression,
	)
	return man, nil
}

// Load reads the snapshot committed under the named manifest.
func (m *Manager) Load(ctx context.Context, manifestName string) ([]objectmap.StoredObject, *Manifest, error) {
	man, err := m.readManifest(ctx, manifestName)
	if err != nil {
		return nil, nil, err
	}

	data, err := m.readBlob(ctx, man.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("read snapshot %s: %w", man.Path, err)
	}
	objs, err := Decode(data)
	if err != nil {
		return nil, nil, fmt.Errorf("decode snapshot %s: %w", man.Path, err)
	}

	m.logger.Debug("snapshot loaded",
		"id", man.ID,
		"objects", len(objs),
	)
	return objs, man, nil
}

// Latest resolves CURRENT to its manifest. ErrNotFound means no snapshot
// has been committed yet.
func (m *Manager) Latest(ctx context.Context) (*Manifest, error) {
	data, err := m.readBlob(ctx, CurrentFileName)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read %s: %w", CurrentFileName, err)
	}
	name := strings.TrimSpace(string(data))
	if name == "" {
		return nil, ErrNotFound
	}
	return m.readManifest(ctx, name)
}

// LoadLatest loads the snapshot CURRENT points at.
func (m *Manager) LoadLatest(ctx context.Context) ([]objectmap.StoredObject, *Manifest, error) {
	man, err := m.Latest(ctx)
	if err != nil {
		return nil, nil, err
	}
	return m.Load(ctx, man.FileName())
}

// LoadMany loads several snapshots concurrently. Fan-out is bounded by
// the controller's background-worker limit when one is configured.
// Results align with manifestNames.
func (m *Manager) LoadMany(ctx context.Context, manifestNames []string) ([][]objectmap.StoredObject, error) {
	results := make([][]objectmap.StoredObject, len(manifestNames))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range manifestNames {
		g.Go(func() error {
			if err := m.rc.AcquireBackground(gctx); err != nil {
				return err
			}
			defer m.rc.ReleaseBackground()

			objs, _, err := m.Load(gctx, name)
			if err != nil {
				return err
			}
			results[i] = objs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// List returns every readable manifest, oldest first. Unreadable or
// corrupt manifests are skipped so one torn write cannot hide the rest.
func (m *Manager) List(ctx context.Context) ([]*Manifest, error) {
	names, err := m.store.List(ctx, manifestPrefix)
	if err != nil {
		return nil, err
	}

	manifests := make([]*Manifest, 0, len(names))
	for _, name := range names {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		man, err := m.readManifest(ctx, name)
		if err != nil {
			m.logger.Warn("skipping manifest",
				"name", name,
				"error", err,
			)
			continue
		}
		manifests = append(manifests, man)
	}
	sort.Slice(manifests, func(i, j int) bool {
		return manifests[i].CreatedAt.Before(manifests[j].CreatedAt)
	})
	return manifests, nil
}

// Delete removes a snapshot and its manifest. Deleting the manifest
// CURRENT points at leaves the pointer dangling; commit a newer snapshot
// before pruning the one it references.
func (m *Manager) Delete(ctx context.Context, manifestName string) error {
	man, err := m.readManifest(ctx, manifestName)
	if err != nil {
		return err
	}
	if err := m.store.Delete(ctx, man.Path); err != nil {
		return fmt.Errorf("delete snapshot %s: %w", man.Path, err)
	}
	if err := m.store.Delete(ctx, manifestName); err != nil {
		return fmt.Errorf("delete manifest %s: %w", manifestName, err)
	}
	return nil
}

// SaveList serializes list and saves the result as a snapshot. Field
// warnings from serialization are returned alongside the manifest; the
// snapshot still contains the degraded records.
func (m *Manager) SaveList(ctx context.Context, name string, list *objectmap.MapObjectList) (*Manifest, []objectmap.FieldWarning, error) {
	objs, warnings, err := list.ToSerializable()
	if err != nil {
		return nil, warnings, err
	}
	man, err := m.Save(ctx, name, objs)
	if err != nil {
		return nil, warnings, err
	}
	return man, warnings, nil
}

// LoadList loads the named snapshot into a fresh collection. Options are
// passed through to the new list.
func (m *Manager) LoadList(ctx context.Context, manifestName string, optFns ...objectmap.Option) (*objectmap.MapObjectList, []objectmap.FieldWarning, error) {
	objs, _, err := m.Load(ctx, manifestName)
	if err != nil {
		return nil, nil, err
	}
	return listFromStored(objs, optFns)
}

// LoadLatestList loads the snapshot CURRENT points at into a fresh
// collection.
func (m *Manager) LoadLatestList(ctx context.Context, optFns ...objectmap.Option) (*objectmap.MapObjectList, []objectmap.FieldWarning, error) {
	objs, _, err := m.LoadLatest(ctx)
	if err != nil {
		return nil, nil, err
	}
	return listFromStored(objs, optFns)
}

func listFromStored(objs []objectmap.StoredObject, optFns []objectmap.Option) (*objectmap.MapObjectList, []objectmap.FieldWarning, error) {
	list := objectmap.NewMapObjectList(optFns...)
	warnings, err := list.LoadSerializable(objs)
	if err != nil {
		return nil, warnings, err
	}
	return list, warnings, nil
}

// writeBlob streams data to a new blob through the IO limiter. A failed
// write deletes the partial blob best-effort before reporting the error.
func (m *Manager) writeBlob(ctx context.Context, path string, data []byte) error {
	w, err := m.store.Create(ctx, path)
	if err != nil {
		return err
	}
	lw := resource.NewRateLimitedWriter(ctx, w, m.rc)
	if _, err := lw.Write(data); err != nil {
		_ = w.Close()
		_ = m.store.Delete(ctx, path)
		return err
	}
	return w.Close()
}

// readBlob reads a whole blob, reserving its size with the controller for
// the duration of the read.
func (m *Manager) readBlob(ctx context.Context, path string) ([]byte, error) {
	b, err := m.store.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	size := b.Size()
	if size == 0 {
		return nil, nil
	}
	if err := m.rc.AcquireMemory(ctx, size); err != nil {
		return nil, err
	}
	defer m.rc.ReleaseMemory(size)

	rc, err := b.ReadRange(ctx, 0, size)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	buf := make([]byte, size)
	if _, err := io.ReadFull(resource.NewRateLimitedReader(ctx, rc, m.rc), buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// readManifest fetches and parses one manifest, mapping a missing blob to
// ErrNotFound.
func (m *Manager) readManifest(ctx context.Context, name string) (*Manifest, error) {
	data, err := m.readBlob(ctx, name)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, fmt.Errorf("manifest %s: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("read manifest %s: %w", name, err)
	}
	var man Manifest
	if err := json.Unmarshal(data, &man); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", name, err)
	}
	return &man, nil
}
