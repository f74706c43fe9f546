package models

import "time"

type FileMode uint32

const (
	ModeCreateNew    FileMode = 1
	ModeCreate       FileMode = 2
	ModeOpen         FileMode = 3
	ModeOpenOrCreate FileMode = 4
	ModeTruncate     FileMode = 5
	ModeAppend       FileMode = 6
)

func (m FileMode) String() string {
	switch m {
	case ModeCreateNew:
		return "CreateNew"
	case ModeCreate:
		return "Create"
	case ModeOpen:
		return "Open"
	case ModeOpenOrCreate:
		return "OpenOrCreate"
	case ModeTruncate:
		return "Truncate"
	case ModeAppend:
		return "Append"
	default:
		return "Unknown"
	}
}

type FileAccess uint32

const (
	AccessReadData    FileAccess = 0x0001
	AccessWriteData   FileAccess = 0x0002
	AccessAppendData  FileAccess = 0x0004
	AccessDelete      FileAccess = 0x00010000
	AccessSynchronize FileAccess = 0x00100000
	AccessGenericRead FileAccess = 0x80000000
)

func (a FileAccess) Has(bits FileAccess) bool {
	return a&bits == bits
}

type FileAttributes uint32

const (
	AttributeReadOnly  FileAttributes = 0x01
	AttributeHidden    FileAttributes = 0x02
	AttributeDirectory FileAttributes = 0x10
	AttributeArchive   FileAttributes = 0x20
	AttributeNormal    FileAttributes = 0x80
)

// OpenInfo is the per-handle state a driver carries between calls.
type OpenInfo struct {
	IsDirectory bool
	Context     *File
}

type FileInformation struct {
	FileName       string
	Attributes     FileAttributes
	CreationTime   time.Time
	LastAccessTime time.Time
	LastWriteTime  time.Time
	Length         int64
}

// Information projects a stored file into a listing entry.
func (f *File) Information() FileInformation {
	attrs := AttributeNormal
	if f.IsDirectory() {
		attrs = AttributeDirectory
	}
	return FileInformation{
		FileName:       f.Name,
		Attributes:     attrs,
		CreationTime:   f.CreationTime,
		LastAccessTime: f.AccessTime,
		LastWriteTime:  f.LastModifyTime,
		Length:         f.Length(),
	}
}

type VolumeFeatures uint32

const (
	FeatureCaseSensitiveSearch   VolumeFeatures = 0x00000001
	FeatureCasePreservedNames    VolumeFeatures = 0x00000002
	FeatureUnicodeOnDisk         VolumeFeatures = 0x00000004
	FeaturePersistentAcls        VolumeFeatures = 0x00000008
	FeatureSupportsRemoteStorage VolumeFeatures = 0x00000100
)

type VolumeInformation struct {
	VolumeLabel        string
	SerialNumber       uint32
	MaxComponentLength uint32
	Features           VolumeFeatures
	FileSystemName     string
}

type DiskSpace struct {
	FreeBytesAvailable int64
	TotalBytes         int64
	TotalFreeBytes     int64
}
