package pluginlifecycle

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// minCloneSpace is the floor of free disk space required before a clone
// is attempted. Repositories can be large; failing early beats a
// half-written checkout on a full disk.
const minCloneSpace = 256 << 20 // 256 MiB

// statFunc is swappable in tests.
var statFunc = unix.Statfs

func checkDiskSpace(cloneRoot string) error {
	statDir := cloneRoot
	if _, err := os.Stat(statDir); os.IsNotExist(err) {
		statDir = filepath.Dir(statDir)
	}

	var stat unix.Statfs_t
	if err := statFunc(statDir, &stat); err != nil {
		return fmt.Errorf("cannot check disk space for %s: %w", statDir, err)
	}

	available := int64(stat.Bavail) * int64(stat.Bsize)
	if available < minCloneSpace {
		return fmt.Errorf("insufficient disk space in %s: %d bytes available, need %d", statDir, available, int64(minCloneSpace))
	}
	return nil
}
