// Package staging manages the per-run work directories where archives are
// extracted, patched, and repacked.
//
// Every run gets a fresh NMSMC_<run id> directory holding a file lock for its
// whole lifetime. CleanStale removes old directories but skips any whose lock
// is still held, so cleanup never races an active build.
package staging
