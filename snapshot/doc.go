// Package snapshot persists serialized object collections to a blob store
// as framed, checksummed, optionally compressed snapshot files, with a
// CURRENT pointer naming the most recently committed manifest.
//
// Usage:
//
//	store := blobstore.NewLocalStore("/var/lib/objectmap")
//	mgr := snapshot.NewManager(store,
//		snapshot.WithCompression(snapshot.CompressionZstd),
//	)
//
//	manifest, warnings, err := mgr.SaveList(ctx, "kitchen-scan", list)
//	// ...
//	list, warnings, err := mgr.LoadLatestList(ctx)
//
// Snapshot files are self-describing: codec and compression are recorded
// in the header, so any Manager can read any snapshot regardless of its
// own configuration. Commits are ordered by the CURRENT pointer; on
// stores with conditional writes (blobstore/s3.DDBCommitStore) concurrent
// saves resolve to a single winner instead of a torn pointer.
package snapshot
