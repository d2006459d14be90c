//go:build unix

package bake

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// checkWritable reports whether dir is an existing directory the process
// may create files in.
func checkWritable(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return unix.Access(dir, unix.W_OK|unix.X_OK)
}
