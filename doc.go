// Package tablekit provides the low-level storage substrate of a table
// engine: bounds-checked memory segments, a binary row codec, schema
// projection, spill channels and record iteration.
//
// # Quick Start
//
//	rt, _ := tablekit.New(
//	    tablekit.WithSpillDirs("/fast/nvme/spill"),
//	    tablekit.WithOffHeapLimit(1 << 30),
//	)
//	defer rt.Close()
//
//	seg, _ := rt.AllocateSegment(64 << 10)
//
//	id := rt.Channels().NewID()
//	w, _ := rt.Channels().NewWriter(id)
//	w.WriteBlock(ctx, seg, 4096)
//	w.Close()
//
// # Layers
//
//   - memory: heap and off-heap segments with explicit free and strict
//     bounds checks
//   - row: null-bitmap + fixed-slot + variable-region binary rows,
//     including the compact timestamp codec
//   - projection: column pruning and schema-evolution remapping
//   - disk: ordered spill channels with sync and async writers and
//     per-block compression
//   - iterate: lazy record iteration, channel readers, k-way merge
//   - format: the pluggable file-format adapter boundary
//   - blobstore: offloading sealed spills to object storage (local,
//     S3, MinIO)
//
// Off-heap memory and spill IO throughput are governed by a resource
// controller shared across the runtime.
package tablekit
