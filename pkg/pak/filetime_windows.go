//go:build windows

package pak

import (
	"time"

	"golang.org/x/sys/windows"
)

// creationTime reads the filesystem creation time for path, which the
// original packer stores as an entry's FileTime in preference to the
// modification time.
func creationTime(path string) (time.Time, error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return time.Time{}, err
	}
	h, err := windows.CreateFile(p, windows.GENERIC_READ, windows.FILE_SHARE_READ,
		nil, windows.OPEN_EXISTING, windows.FILE_FLAG_BACKUP_SEMANTICS, 0)
	if err != nil {
		return time.Time{}, err
	}
	defer windows.CloseHandle(h)

	var info windows.ByHandleFileInformation
	if err := windows.GetFileInformationByHandle(h, &info); err != nil {
		return time.Time{}, err
	}
	ft := FileTime(uint64(info.CreationTime.HighDateTime)<<32 | uint64(info.CreationTime.LowDateTime))
	return ft.ToTime(), nil
}

// setCreationTime restores path's filesystem creation time from an
// extracted entry's FileTime, mirroring the original tool's Windows-only
// restore step. On extraction elsewhere this is a deliberate no-op.
func setCreationTime(path string, ft FileTime) error {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return err
	}
	h, err := windows.CreateFile(p, windows.FILE_WRITE_ATTRIBUTES, windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE,
		nil, windows.OPEN_EXISTING, windows.FILE_FLAG_BACKUP_SEMANTICS, 0)
	if err != nil {
		return err
	}
	defer windows.CloseHandle(h)

	raw := uint64(ft)
	winTime := windows.Filetime{
		LowDateTime:  uint32(raw),
		HighDateTime: uint32(raw >> 32),
	}
	return windows.SetFileTime(h, &winTime, nil, nil)
}
