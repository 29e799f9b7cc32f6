package phazer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/arthur-debert/phazer/pkg/errors"
	"github.com/arthur-debert/phazer/pkg/logging"
)

// workingMark is the fixed marker embedded in every working filename.
// The full scheme is "{ext}.phazer-working-{pid}-{serial}" so working
// files are recognizable, unique within a process, and with
// overwhelming probability unique across processes.
const workingMark = "phazer-working"

// nextSerial is the process-wide counter that keeps working paths
// unique. It never needs teardown; process exit reclaims it.
var nextSerial atomic.Uint64

// Engine lifecycle states. A commit claims the engine by moving it from
// live to committing before touching the filesystem, so a concurrent
// Commit or Writer on the same engine gets a usage error instead of
// racing the rename.
const (
	stateLive int32 = iota
	stateCommitting
	stateSpent
)

// Phazer manages the transition of a private working file to its
// target file. One Phazer is constructed per target path.
//
// A Phazer must be finished exactly one way: a successful Commit, or a
// Close. Deferring Close right after construction is the intended
// pattern; Close is a no-op after a successful commit.
type Phazer struct {
	workingPath string
	targetPath  string
	strategy    CommitStrategy
	serial      uint64

	fileCreated atomic.Bool
	openWriters atomic.Int32
	state       atomic.Int32
}

// New creates a Phazer for the given target file with the default
// SimpleRename commit strategy. New is infallible; nothing touches the
// filesystem until the first Writer is requested.
//
// Ideally the full target path is specified so changes to the working
// directory cannot cause problems; filepath.Abs is helpful.
func New(targetPath string) *Phazer {
	return newPhazer(targetPath, SimpleRename)
}

func newPhazer(targetPath string, strategy CommitStrategy) *Phazer {
	serial := nextSerial.Add(1) - 1
	workingPath := deriveWorkingPath(targetPath, os.Getpid(), serial)

	logger := logging.GetLogger("phazer")
	logger.Trace().
		Str("target", targetPath).
		Str("working", workingPath).
		Uint64("serial", serial).
		Msg("Engine created")

	return &Phazer{
		workingPath: workingPath,
		targetPath:  targetPath,
		strategy:    strategy,
		serial:      serial,
	}
}

// deriveWorkingPath replaces the target's extension with
// "{ext}.phazer-working-{pid}-{serial}", or appends
// "phazer-working-{pid}-{serial}" as the extension when the target has
// none. A leading-dot name such as ".bashrc" counts as having no
// extension.
func deriveWorkingPath(targetPath string, pid int, serial uint64) string {
	dir := filepath.Dir(targetPath)
	base := filepath.Base(targetPath)

	stem := base
	ext := ""
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		stem = base[:i]
		ext = base[i+1:]
	}

	suffix := fmt.Sprintf("%s-%d-%d", workingMark, pid, serial)
	workingExt := suffix
	if ext != "" {
		workingExt = ext + "." + suffix
	}

	return filepath.Join(dir, stem+"."+workingExt)
}

// Writer opens the working file for read / write access and returns a
// handle over it. The first writer requested from an engine creates the
// working file, truncating any leftover from a previous process; every
// later writer reopens the existing working file without truncation, so
// an engine can be reopened for incremental edits before commit.
//
// The engine refuses to commit while any writer remains open. Callers
// should not write through two handles of one engine concurrently;
// nothing arbitrates simultaneous writes to the same file.
//
// Filesystem errors from the open are returned unwrapped.
func (p *Phazer) Writer() (*Writer, error) {
	// Register before checking state. A concurrent commit either sees
	// this writer in its open-writer check, or has already left the
	// live state and is seen here. Either way one side backs off.
	p.openWriters.Add(1)
	if p.state.Load() != stateLive {
		p.openWriters.Add(-1)
		return nil, errors.Newf(errors.ErrConsumed,
			"engine for %q already committed or closed", p.targetPath)
	}

	flag := os.O_RDWR
	if p.firstWriter() {
		flag |= os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(p.workingPath, flag, 0644)
	if err != nil {
		p.openWriters.Add(-1)
		return nil, err
	}

	return &Writer{file: f, engine: p}, nil
}

// WriteFrom streams r into the working file through a single writer,
// checking ctx between chunks so a cancelled transfer stops promptly
// without ever touching the target. It returns the number of bytes
// written to the working file.
func (p *Phazer) WriteFrom(ctx context.Context, r io.Reader) (int64, error) {
	w, err := p.Writer()
	if err != nil {
		return 0, err
	}
	defer func() { _ = w.Close() }()

	var total int64
	buf := make([]byte, 32*1024)
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		n, rerr := r.Read(buf)
		if n > 0 {
			wn, werr := w.Write(buf[:n])
			total += int64(wn)
			if werr != nil {
				return total, werr
			}
			if wn < n {
				return total, io.ErrShortWrite
			}
		}
		if rerr == io.EOF {
			return total, nil
		}
		if rerr != nil {
			return total, rerr
		}
	}
}

// Commit transitions the working file to the target file and consumes
// the engine. If no working file was ever created, Commit succeeds
// immediately without touching the target.
//
// On strategy failure the raw filesystem error is returned, the
// still-present working file is removed, and the engine is spent; the
// only recourse is a fresh engine. Use CommitRecoverable when external
// remediation and a retry on the same working file are needed.
func (p *Phazer) Commit() error {
	if err := p.beginCommit(); err != nil {
		return err
	}
	if !p.fileCreated.Load() {
		p.state.Store(stateSpent)
		return nil
	}

	if err := p.strategy.Commit(p); err != nil {
		p.state.Store(stateSpent)
		p.removeWorkingFile()
		return err
	}

	p.state.Store(stateSpent)
	logger := logging.GetLogger("phazer")
	logger.Debug().
		Str("target", p.targetPath).
		Msg("Committed")
	return nil
}

// CommitRecoverable is Commit for callers that can fix an external
// obstruction. On failure the engine stays live and the working file
// stays intact and byte-identical, so the caller can, say, clear a
// read-only attribute on the target or remove a stale file that blocks
// the rename, then commit the very same engine again.
func (p *Phazer) CommitRecoverable() error {
	if err := p.beginCommit(); err != nil {
		return err
	}
	if !p.fileCreated.Load() {
		p.state.Store(stateSpent)
		return nil
	}

	if err := p.strategy.Commit(p); err != nil {
		p.state.Store(stateLive)
		return err
	}

	p.state.Store(stateSpent)
	return nil
}

// beginCommit claims the engine for a commit, rejecting misuse. The
// errors it returns are usage errors, never filesystem errors, and
// leave the engine fully usable. Only one caller can hold the claim at
// a time; a concurrent Commit on the same engine sees it as consumed.
func (p *Phazer) beginCommit() error {
	if !p.state.CompareAndSwap(stateLive, stateCommitting) {
		return errors.Newf(errors.ErrConsumed,
			"engine for %q already committed or closed", p.targetPath)
	}
	if n := p.openWriters.Load(); n != 0 {
		p.state.Store(stateLive)
		return errors.Newf(errors.ErrWriterOpen,
			"cannot commit %q with %d open writer(s)", p.targetPath, n)
	}
	return nil
}

// Close abandons the engine: any uncommitted working file is removed,
// best effort, and the target path is left exactly as it was. Close is
// idempotent and a no-op after a successful commit, so it is safe (and
// intended) to defer unconditionally.
func (p *Phazer) Close() error {
	if p.state.Swap(stateSpent) != stateLive {
		return nil
	}
	p.removeWorkingFile()
	return nil
}

func (p *Phazer) removeWorkingFile() {
	if err := os.Remove(p.workingPath); err != nil && !os.IsNotExist(err) {
		logger := logging.GetLogger("phazer")
		logger.Trace().
			Err(err).
			Str("working", p.workingPath).
			Msg("Failed to remove working file")
	}
}

// firstWriter reports whether the caller is creating the first writer
// for this engine. It returns true exactly once.
func (p *Phazer) firstWriter() bool {
	return !p.fileCreated.Swap(true)
}

// WorkingPath returns the private staging path derived for this engine.
func (p *Phazer) WorkingPath() string {
	return p.workingPath
}

// TargetPath returns the final, externally visible path.
func (p *Phazer) TargetPath() string {
	return p.targetPath
}

// Jitter returns the engine's serial number, used by retrying
// strategies to desynchronize backoff across racing engines.
func (p *Phazer) Jitter() int {
	return int(p.serial)
}
