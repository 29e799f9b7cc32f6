package phazer

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/arthur-debert/phazer/pkg/logging"
)

// CommitDetails exposes the read-only facts a commit strategy may
// consult: the working path, the target path, and the per-engine
// jitter used to desynchronize retry timing across racing engines. It
// is implemented by *Phazer.
type CommitDetails interface {
	WorkingPath() string
	TargetPath() string
	Jitter() int
}

// CommitStrategy transitions one working file to its target file.
// Implementations must be stateless and safe for concurrent reuse
// across many engines.
type CommitStrategy interface {
	Commit(details CommitDetails) error
}

// SimpleRename is the default commit strategy: a single os.Rename of
// the working file onto the target.
//
// On POSIX filesystems rename onto an existing path is atomic, so with
// several engines racing for one target exactly one rename is
// serialized last and its content wins; the others still succeed at
// the filesystem level but are overwritten. On filesystems that refuse
// to replace an open or read-only destination the rename fails with a
// permission error, which this strategy returns without retrying.
var SimpleRename CommitStrategy = simpleRenameStrategy{}

// RenameWithRetry handles platforms where renaming onto a contended or
// momentarily locked target fails transiently. It retries a rename
// that failed with a permission error up to seven times, sleeping
// (11 + 3*jitter) * tries milliseconds between attempts with the
// jitter clamped to 0..15. Any other error kind is returned
// immediately. Worst-case cumulative sleep is 1568 ms.
var RenameWithRetry CommitStrategy = renameWithRetryStrategy{}

type simpleRenameStrategy struct{}

func (simpleRenameStrategy) Commit(details CommitDetails) error {
	return os.Rename(details.WorkingPath(), details.TargetPath())
}

// maxRenameTries bounds the retry strategy. With ten goroutines
// contending for one target, seven tries has been a good threshold.
const maxRenameTries = 7

type renameWithRetryStrategy struct{}

func (renameWithRetryStrategy) Commit(details CommitDetails) error {
	logger := logging.GetLogger("phazer.retry")

	jitter := details.Jitter() & 0xF
	baseSleep := time.Duration(11+3*jitter) * time.Millisecond

	tries := 0
	for {
		tries++
		err := os.Rename(details.WorkingPath(), details.TargetPath())
		if err == nil {
			return nil
		}
		if !errors.Is(err, fs.ErrPermission) {
			return err
		}
		if tries >= maxRenameTries {
			return err
		}

		sleep := baseSleep * time.Duration(tries)
		logger.Trace().
			Str("target", details.TargetPath()).
			Int("tries", tries).
			Dur("sleep", sleep).
			Msg("Target contended, retrying rename")
		time.Sleep(sleep)
	}
}
