package build

import "context"

// Extractor pulls documents out of a source archive into destDir.
type Extractor interface {
	Extract(ctx context.Context, archive, destDir string, ids []string) error
}

// Compiler converts documents between their binary and text tree forms.
// Both directions run inside workDir.
type Compiler interface {
	Decompile(ctx context.Context, workDir string, ids []string) error
	Compile(ctx context.Context, workDir string, trees []string) error
}

// Packer writes an output archive from files relative to sourceDir.
type Packer interface {
	Pack(ctx context.Context, output, sourceDir string, files []string) error
}
