// Package phazer provides atomic publish semantics for a single file:
// content is built in a private working file and only becomes visible
// at its final path in one indivisible step.
//
// A consumer of the target path never observes a partial or corrupt
// version of it, and an interrupted write (crash, panic, cancelled
// download) never corrupts or erases a pre-existing version. Either the
// whole new file is published or the old one is left untouched.
//
// One Phazer is constructed per target file. The engine derives a
// uniquely named working path next to the target, hands out writers
// over that working file, and on Commit renames the working file onto
// the target. Cleanup of an uncommitted working file is guaranteed by
// Close, which callers should defer immediately after construction:
//
//	p := phazer.New("names.zip")
//	defer p.Close()
//
//	w, err := p.Writer()
//	if err != nil {
//		return err
//	}
//	if _, err := w.Write(data); err != nil {
//		w.Close()
//		return err
//	}
//	if err := w.Close(); err != nil {
//		return err
//	}
//	return p.Commit()
//
// The transition from working file to target file is pluggable through
// the CommitStrategy interface. SimpleRename, the default, performs one
// atomic rename; RenameWithRetry retries a contended rename with
// bounded backoff for filesystems that refuse to replace an open or
// read-only target.
package phazer
