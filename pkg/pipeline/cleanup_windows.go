//go:build windows

package pipeline

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// scheduleDeletion arranges for the file to be deleted when its last open
// handle closes. Windows refuses to unlink a file that another component
// holds open, so the file is reopened with FILE_FLAG_DELETE_ON_CLOSE and the
// handle released immediately; the delete disposition fires once the
// analyzer's own handle closes.
func scheduleDeletion(path string) error {
	name, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return fmt.Errorf("encode path: %w", err)
	}
	h, err := windows.CreateFile(
		name,
		0,
		windows.FILE_SHARE_DELETE|windows.FILE_SHARE_READ,
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_FLAG_DELETE_ON_CLOSE,
		0,
	)
	if err != nil {
		return fmt.Errorf("open with delete-on-close: %w", err)
	}
	if err := windows.CloseHandle(h); err != nil {
		return fmt.Errorf("close handle: %w", err)
	}
	return nil
}
