// Package iterate provides lazy, finite, forward-only record iteration
// over in-memory buffers and spill channels.
//
// An Iterator yields binary rows until Next returns a nil row; it is not
// restartable, a fresh iterator must be requested to re-scan. Channel
// iterators decode length-prefixed rows out of spill blocks and, when the
// read schema differs from the written one, remap each row through a
// compiled projection; an identity mapping passes rows through untouched.
// Merge combines sorted iterators into one ordered stream for external
// merge sort.
package iterate
