// Package build drives a parsed plan through extraction, patching, and
// repackaging.
//
// Runner walks containers and their source archives in plan order. For each
// archive it asks the Extractor for the listed documents, the Compiler for
// their text trees, then replays every edit through the selector and upsert
// packages before saving the trees back. Once a container's archives are
// done, its extra files are copied into the work directory, the trees are
// compiled back to binary form, and the Packer writes the output archive.
//
// Query misses are logged and counted; every other failure stops the run.
// The Summary returned by Run is valid even when Run fails, so callers can
// record partial progress.
package build
