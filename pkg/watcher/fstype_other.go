//go:build !linux

package watcher

// DetectFilesystemType is only implemented on Linux. Elsewhere the watcher
// relies on fsnotify and falls back to polling when it cannot subscribe.
func DetectFilesystemType(path string) FilesystemType {
	return FSTypeUnknown
}
