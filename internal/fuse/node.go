package fuse

import (
	"context"
	"syscall"
	"time"

	"github.com/S1riyS/sqlfs/internal/fspath"
	"github.com/S1riyS/sqlfs/internal/models"
	"github.com/S1riyS/sqlfs/internal/security"
	"github.com/S1riyS/sqlfs/internal/service"
	gofuse "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

const blockSize = 4096

// node is a file or directory. Its storage key is derived from its place
// in the inode tree, so renames done by the kernel bridge carry over.
type node struct {
	gofuse.Inode
	options *Options
}

var (
	_ gofuse.InodeEmbedder = (*node)(nil)
	_ gofuse.NodeLookuper  = (*node)(nil)
	_ gofuse.NodeGetattrer = (*node)(nil)
	_ gofuse.NodeSetattrer = (*node)(nil)
	_ gofuse.NodeReaddirer = (*node)(nil)
	_ gofuse.NodeCreater   = (*node)(nil)
	_ gofuse.NodeMkdirer   = (*node)(nil)
	_ gofuse.NodeUnlinker  = (*node)(nil)
	_ gofuse.NodeRmdirer   = (*node)(nil)
	_ gofuse.NodeRenamer   = (*node)(nil)
	_ gofuse.NodeOpener    = (*node)(nil)
	_ gofuse.NodeReader    = (*node)(nil)
	_ gofuse.NodeWriter    = (*node)(nil)
	_ gofuse.NodeFlusher   = (*node)(nil)
	_ gofuse.NodeStatfser  = (*node)(nil)
)

func (n *node) svc() service.FileSystemService {
	return n.options.Service
}

func (n *node) ctx(ctx context.Context) context.Context {
	return requestContext(ctx, n.options)
}

// key is the driver path of this node.
func (n *node) key() string {
	return pathOf(n.Path(nil))
}

func (n *node) childKey(name string) string {
	return fspath.Root + fspath.Join(fspath.Normalize(n.key()), name)
}

func (n *node) newChild(ctx context.Context, fi *models.FileInformation) *gofuse.Inode {
	mode := uint32(syscall.S_IFREG)
	if fi.Attributes&models.AttributeDirectory != 0 {
		mode = syscall.S_IFDIR
	}
	return n.NewInode(ctx, &node{options: n.options}, gofuse.StableAttr{Mode: mode})
}

func (n *node) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*gofuse.Inode, syscall.Errno) {
	fi, status := n.svc().GetFileInformation(n.ctx(ctx), n.childKey(name))
	if !status.IsSuccess() {
		return nil, status.Errno()
	}
	fillAttr(&out.Attr, &fi, n.options.Security)
	return n.newChild(ctx, &fi), 0
}

func (n *node) Getattr(ctx context.Context, _ gofuse.FileHandle, out *fuse.AttrOut) syscall.Errno {
	fi, status := n.svc().GetFileInformation(n.ctx(ctx), n.key())
	if !status.IsSuccess() {
		return status.Errno()
	}
	fillAttr(&out.Attr, &fi, n.options.Security)
	return 0
}

// Setattr applies size and time changes. Ownership and permission
// changes are accepted and dropped like any security update.
func (n *node) Setattr(ctx context.Context, fh gofuse.FileHandle, in *fuse.SetAttrIn, out *fuse.AttrOut) syscall.Errno {
	ctx = n.ctx(ctx)
	key := n.key()

	if size, ok := in.GetSize(); ok {
		if status := n.svc().SetEndOfFile(ctx, key, int64(size)); !status.IsSuccess() {
			return status.Errno()
		}
	}

	var access, modify *time.Time
	if atime, ok := in.GetATime(); ok {
		access = &atime
	}
	if mtime, ok := in.GetMTime(); ok {
		modify = &mtime
	}
	if access != nil || modify != nil {
		if status := n.svc().SetFileTime(ctx, key, nil, access, modify); !status.IsSuccess() {
			return status.Errno()
		}
	}

	return n.Getattr(ctx, fh, out)
}

func (n *node) Readdir(ctx context.Context) (gofuse.DirStream, syscall.Errno) {
	dir := fspath.Normalize(n.key())
	files, status := n.svc().FindFiles(n.ctx(ctx), fspath.Root+fspath.Join(dir, ""))
	if !status.IsSuccess() {
		return nil, status.Errno()
	}
	return gofuse.NewListDirStream(dirEntries(dir, files)), 0
}

func (n *node) Create(ctx context.Context, name string, flags uint32, mode uint32, out *fuse.EntryOut) (*gofuse.Inode, gofuse.FileHandle, uint32, syscall.Errno) {
	ctx = n.ctx(ctx)
	key := n.childKey(name)

	info := &models.OpenInfo{}
	access := models.AccessGenericRead | models.AccessWriteData
	status := n.svc().CreateFile(ctx, key, access, createMode(flags), models.AttributeNormal, info)
	if !status.IsSuccess() {
		return nil, nil, 0, status.Errno()
	}
	defer n.svc().CloseFile(ctx, key, info)

	fi := info.Context.Information()
	fillAttr(&out.Attr, &fi, n.options.Security)
	return n.newChild(ctx, &fi), nil, fuse.FOPEN_DIRECT_IO, 0
}

func (n *node) Mkdir(ctx context.Context, name string, mode uint32, out *fuse.EntryOut) (*gofuse.Inode, syscall.Errno) {
	ctx = n.ctx(ctx)
	key := n.childKey(name)

	info := &models.OpenInfo{IsDirectory: true}
	status := n.svc().CreateFile(ctx, key, 0, models.ModeCreateNew, models.AttributeDirectory, info)
	if !status.IsSuccess() {
		return nil, status.Errno()
	}
	defer n.svc().CloseFile(ctx, key, info)

	fi := info.Context.Information()
	fillAttr(&out.Attr, &fi, n.options.Security)
	return n.newChild(ctx, &fi), 0
}

func (n *node) Unlink(ctx context.Context, name string) syscall.Errno {
	return n.svc().DeleteFile(n.ctx(ctx), n.childKey(name)).Errno()
}

func (n *node) Rmdir(ctx context.Context, name string) syscall.Errno {
	return n.svc().DeleteDirectory(n.ctx(ctx), n.childKey(name)).Errno()
}

func (n *node) Rename(ctx context.Context, name string, newParent gofuse.InodeEmbedder, newName string, flags uint32) syscall.Errno {
	parentKey := fspath.Normalize(pathOf(newParent.EmbeddedInode().Path(nil)))
	newKey := fspath.Root + fspath.Join(parentKey, newName)
	replace := flags&renameNoReplace == 0

	return n.svc().MoveFile(n.ctx(ctx), n.childKey(name), newKey, replace).Errno()
}

// Open truncates on O_TRUNC. Other flags need no storage work.
func (n *node) Open(ctx context.Context, flags uint32) (gofuse.FileHandle, uint32, syscall.Errno) {
	if flags&syscall.O_TRUNC != 0 {
		ctx = n.ctx(ctx)
		key := n.key()
		info := &models.OpenInfo{}
		status := n.svc().CreateFile(ctx, key, models.AccessWriteData, models.ModeTruncate, models.AttributeNormal, info)
		if !status.IsSuccess() {
			return nil, 0, status.Errno()
		}
		n.svc().CloseFile(ctx, key, info)
	}
	return nil, fuse.FOPEN_DIRECT_IO, 0
}

func (n *node) Read(ctx context.Context, _ gofuse.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	read, status := n.svc().ReadFile(n.ctx(ctx), n.key(), dest, off)
	if !status.IsSuccess() {
		return nil, status.Errno()
	}
	return fuse.ReadResultData(dest[:read]), 0
}

func (n *node) Write(ctx context.Context, _ gofuse.FileHandle, data []byte, off int64) (uint32, syscall.Errno) {
	written, status := n.svc().WriteFile(n.ctx(ctx), n.key(), data, off)
	if !status.IsSuccess() {
		return 0, status.Errno()
	}
	return uint32(written), 0
}

func (n *node) Flush(ctx context.Context, _ gofuse.FileHandle) syscall.Errno {
	return n.svc().FlushFileBuffers(n.ctx(ctx), n.key()).Errno()
}

func (n *node) Statfs(ctx context.Context, out *fuse.StatfsOut) syscall.Errno {
	space, status := n.svc().GetDiskFreeSpace(n.ctx(ctx))
	if !status.IsSuccess() {
		return status.Errno()
	}
	fillStatfs(out, space)
	return 0
}

// pathOf converts a slash separated inode path into a driver path.
func pathOf(rel string) string {
	if rel == "" || rel == "." {
		return fspath.Root
	}
	return fspath.Root + fspath.FromSlash(rel)
}

// createMode maps open(2) creation flags to a creation disposition.
func createMode(flags uint32) models.FileMode {
	if flags&syscall.O_EXCL != 0 {
		return models.ModeCreateNew
	}
	return models.ModeCreate
}

// dirEntries keeps the immediate children of dir. Deeper keys are left
// out, so entries orphaned by a directory delete stay unreachable.
func dirEntries(dir string, files []models.FileInformation) []fuse.DirEntry {
	var entries []fuse.DirEntry
	for _, fi := range files {
		child := fspath.Child(dir, fi.FileName)
		if child == "" || fspath.Join(dir, child) != fi.FileName {
			continue
		}

		mode := uint32(syscall.S_IFREG)
		if fi.Attributes&models.AttributeDirectory != 0 {
			mode = syscall.S_IFDIR
		}
		entries = append(entries, fuse.DirEntry{Name: child, Mode: mode})
	}
	return entries
}

func fillAttr(out *fuse.Attr, fi *models.FileInformation, sec *security.Descriptor) {
	isDirectory := fi.Attributes&models.AttributeDirectory != 0

	out.Mode = syscall.S_IFREG | sec.FileMode(false)
	out.Nlink = 1
	if isDirectory {
		out.Mode = syscall.S_IFDIR | sec.FileMode(true)
		out.Nlink = 2
	}

	out.Size = uint64(fi.Length)
	out.Blocks = (out.Size + 511) / 512
	out.Blksize = blockSize
	out.Uid = sec.UID
	out.Gid = sec.GID

	access, modify, change := fi.LastAccessTime, fi.LastWriteTime, fi.CreationTime
	out.SetTimes(&access, &modify, &change)
}

func fillStatfs(out *fuse.StatfsOut, space models.DiskSpace) {
	out.Bsize = blockSize
	out.Frsize = blockSize
	out.NameLen = service.MaxComponentLength
	out.Blocks = uint64(space.TotalBytes) / blockSize
	out.Bfree = uint64(space.TotalFreeBytes) / blockSize
	out.Bavail = uint64(space.FreeBytesAvailable) / blockSize
}
