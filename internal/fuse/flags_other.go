//go:build !linux

package fuse

// Value of RENAME_NOREPLACE on Linux; the kernel bridge passes it through
// unchanged on other platforms.
const renameNoReplace = 0x1
