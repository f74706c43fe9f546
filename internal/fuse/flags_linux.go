package fuse

import "golang.org/x/sys/unix"

const renameNoReplace = unix.RENAME_NOREPLACE
