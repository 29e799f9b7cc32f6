package phazer

import (
	"github.com/arthur-debert/phazer/pkg/errors"
)

// Builder assembles a Phazer from a required target path and an
// optional non-default commit strategy, set in either order.
//
//	p, err := phazer.NewBuilder().
//		Strategy(phazer.RenameWithRetry).
//		Target("names.zip").
//		Build()
type Builder struct {
	targetPath string
	hasTarget  bool
	strategy   CommitStrategy
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Target sets the target path.
func (b *Builder) Target(path string) *Builder {
	b.targetPath = path
	b.hasTarget = true
	return b
}

// Strategy sets the commit strategy. When never called, SimpleRename
// is used.
func (b *Builder) Strategy(s CommitStrategy) *Builder {
	b.strategy = s
	return b
}

// Build constructs the engine through the same path as New. It fails
// only when no target path was ever set.
func (b *Builder) Build() (*Phazer, error) {
	if !b.hasTarget {
		return nil, errors.New(errors.ErrTargetUnset, "builder requires a target path")
	}
	strategy := b.strategy
	if strategy == nil {
		strategy = SimpleRename
	}
	return newPhazer(b.targetPath, strategy), nil
}
