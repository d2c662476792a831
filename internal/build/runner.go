package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"nmsmc/internal/definition"
	"nmsmc/internal/exml"
	"nmsmc/internal/fileutil"
	"nmsmc/internal/logging"
	"nmsmc/internal/selector"
	"nmsmc/internal/services"
	"nmsmc/internal/upsert"
)

// Runner executes plans against the external collaborators.
type Runner struct {
	extractor Extractor
	compiler  Compiler
	packer    Packer
	logger    *slog.Logger
	diff      io.Writer
	colorize  bool
	indent    int
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger used for progress and miss reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithDiff writes a line diff of every patched tree to w.
func WithDiff(w io.Writer, colorize bool) Option {
	return func(r *Runner) {
		r.diff = w
		r.colorize = colorize
	}
}

// WithIndent re-indents saved trees with the given number of spaces.
func WithIndent(spaces int) Option {
	return func(r *Runner) {
		if spaces >= 0 {
			r.indent = spaces
		}
	}
}

// NewRunner constructs a Runner around its collaborators.
func NewRunner(extractor Extractor, compiler Compiler, packer Packer, opts ...Option) *Runner {
	r := &Runner{
		extractor: extractor,
		compiler:  compiler,
		packer:    packer,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.NewComponentLogger(r.logger, "build")
	return r
}

// Run processes every container of plan inside workDir. The summary reflects
// the work completed so far even when an error is returned.
func (r *Runner) Run(ctx context.Context, plan *definition.Plan, workDir string) (Summary, error) {
	var summary Summary
	if plan == nil {
		return summary, nil
	}
	if r.extractor == nil || r.compiler == nil || r.packer == nil {
		return summary, services.Wrap(services.ErrConfiguration, "build", "", "runner is missing a collaborator", nil)
	}

	for _, container := range plan.Containers {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Containers = append(summary.Containers, ContainerSummary{
			Output:     container.Output,
			ExtraFiles: len(container.ExtraFiles),
		})
		cs := &summary.Containers[len(summary.Containers)-1]
		if err := r.runContainer(services.WithContainer(ctx, container.Output), container, workDir, cs); err != nil {
			return summary, err
		}
	}
	return summary, nil
}

func (r *Runner) runContainer(ctx context.Context, container *definition.Container, workDir string, cs *ContainerSummary) error {
	logger := logging.WithContext(ctx, r.logger)
	started := time.Now()

	for _, archive := range container.Archives {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.runArchive(services.WithArchive(ctx, archive.Source), archive, workDir, cs); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	extras, err := stageExtraFiles(container, workDir)
	if err != nil {
		return err
	}

	ids := container.DocumentIDs()
	if len(ids) > 0 {
		logger.Debug("compiling trees", logging.Int("documents", len(ids)))
		if err := r.compiler.Compile(services.WithStage(ctx, "compile"), workDir, exml.TreeNames(ids)); err != nil {
			return services.Wrap(services.ErrExternalTool, "compile", container.Output, "compile patched trees", err)
		}
	}

	files := make([]string, 0, len(ids)+len(extras))
	files = append(files, ids...)
	files = append(files, extras...)
	if err := r.packer.Pack(services.WithStage(ctx, "pack"), container.Output, workDir, files); err != nil {
		return services.Wrap(services.ErrExternalTool, "pack", container.Output, "write output archive", err)
	}
	cs.Packed = true

	logger.Info("output archive written",
		logging.String("output", container.Output),
		logging.Int("documents", cs.Documents),
		logging.Int("created", cs.Created),
		logging.Int("updated", cs.Updated),
		logging.Int("misses", cs.Misses),
		logging.Int("extra_files", len(extras)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}

func (r *Runner) runArchive(ctx context.Context, archive *definition.Archive, workDir string, cs *ContainerSummary) error {
	logger := logging.WithContext(ctx, r.logger)
	cs.Archives++

	ids := archive.DocumentIDs()
	if len(ids) == 0 {
		logger.Debug("source archive lists no documents; skipping extraction")
		return nil
	}

	logger.Info("extracting documents", logging.String("archive", archive.Source), logging.Int("documents", len(ids)))
	if err := r.extractor.Extract(services.WithStage(ctx, "extract"), archive.Source, workDir, ids); err != nil {
		return services.Wrap(services.ErrExternalTool, "extract", archive.Source, "extract documents", err)
	}
	if err := r.compiler.Decompile(services.WithStage(ctx, "decompile"), workDir, ids); err != nil {
		return services.Wrap(services.ErrExternalTool, "decompile", archive.Source, "decompile documents", err)
	}

	for _, doc := range archive.Documents {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.patchDocument(services.WithDocument(ctx, doc.ID), doc, workDir, cs); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) patchDocument(ctx context.Context, doc *definition.Document, workDir string, cs *ContainerSummary) error {
	logger := logging.WithContext(ctx, r.logger)
	path := filepath.Join(workDir, exml.TreeName(doc.ID))
	tree, err := exml.Load(path)
	if err != nil {
		return fmt.Errorf("patch %s: %w", doc.ID, err)
	}
	cs.Documents++

	var before string
	if r.diff != nil {
		if before, err = exml.Render(tree); err != nil {
			return fmt.Errorf("patch %s: %w", doc.ID, err)
		}
	}

	var query selector.Query
	for _, edit := range doc.Edits {
		cs.Edits++
		q, err := query.Change(edit.Selector)
		if err != nil {
			return services.Wrap(services.ErrValidation, "patch", doc.ID, "translate selector", err)
		}
		for _, assignment := range edit.Assignments {
			cs.Assignments++
			res, err := upsert.Apply(tree, q, assignment)
			if err != nil {
				if !errors.Is(err, upsert.ErrNoMatch) && !errors.Is(err, upsert.ErrInvalidQuery) {
					return fmt.Errorf("patch %s: %w", doc.ID, err)
				}
				cs.Misses++
				logging.WarnWithContext(logger, "assignment not applied", "assignment_miss",
					logging.String("selector", edit.Selector),
					logging.String("query", q.String()),
					logging.String("assignment", assignment.String()),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "compare the selector with the decompiled document"),
					logging.String(logging.FieldImpact, "the document is saved without this assignment"),
				)
				continue
			}
			cs.Created += res.Created
			cs.Updated += res.Updated
		}
	}

	if err := exml.Save(tree, path, r.indent); err != nil {
		return fmt.Errorf("patch %s: %w", doc.ID, err)
	}
	logger.Debug("document patched", logging.String("tree", path), logging.Int("edits", len(doc.Edits)))

	if r.diff != nil {
		after, err := exml.Render(tree)
		if err != nil {
			return fmt.Errorf("patch %s: %w", doc.ID, err)
		}
		if err := writeDiff(r.diff, doc.ID, before, after, r.colorize); err != nil {
			return fmt.Errorf("write diff for %s: %w", doc.ID, err)
		}
	}
	return nil
}

// stageExtraFiles copies a container's extra files into workDir under their
// declared relative names and returns those names in declared order.
func stageExtraFiles(container *definition.Container, workDir string) ([]string, error) {
	names := make([]string, 0, len(container.ExtraFiles))
	for _, extra := range container.ExtraFiles {
		name := filepath.Clean(extra)
		if !fileutil.IsLocalPath(name) {
			return nil, services.Wrap(services.ErrValidation, "stage", extra, "extra files must be relative paths without ..", nil)
		}
		if err := fileutil.CopyFile(extra, filepath.Join(workDir, name)); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, services.Wrap(services.ErrNotFound, "stage", extra, "copy extra file", err)
			}
			return nil, fmt.Errorf("stage %s: %w", extra, err)
		}
		names = append(names, filepath.ToSlash(name))
	}
	return names, nil
}
