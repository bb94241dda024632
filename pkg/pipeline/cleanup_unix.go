//go:build !windows

package pipeline

import "os"

// scheduleDeletion unlinks the file immediately. POSIX systems allow
// deleting a file while another process holds it open; the directory entry
// goes away now and the storage is reclaimed once all handles close.
func scheduleDeletion(path string) error {
	return os.Remove(path)
}
