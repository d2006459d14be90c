//go:build !unix

package bake

import (
	"fmt"
	"os"
)

// checkWritable reports whether dir is an existing directory the process
// may create files in. Without access(2) the only reliable test is to
// create a file.
func checkWritable(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	f, err := os.CreateTemp(dir, ".texbake-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
