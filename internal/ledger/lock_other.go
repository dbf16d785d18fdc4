//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package ledger

import (
	"errors"
	"os"
)

var errLockUnsupported = errors.New("file ledger locking is not supported on this platform; set DATABASE_URL")

func lockFile(*os.File) error {
	return errLockUnsupported
}

func unlockFile(*os.File) error {
	return nil
}
