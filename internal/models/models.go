package models

import "time"

type Flags uint8

const (
	FlagDirectory Flags = 1 << 0
	FlagLocked    Flags = 1 << 1 // reserved, not enforced
)

// File is one stored entry. Directories are files with FlagDirectory set.
type File struct {
	Name           string
	CreationTime   time.Time
	LastModifyTime time.Time
	AccessTime     time.Time
	Flags          Flags
	Data           []byte
}

// Length is derived from Data and never persisted.
func (f *File) Length() int64 {
	return int64(len(f.Data))
}

func (f *File) IsDirectory() bool {
	return f.Flags&FlagDirectory != 0
}

func (f *File) SetDirectory(isDirectory bool) {
	if isDirectory {
		f.Flags |= FlagDirectory
	} else {
		f.Flags &^= FlagDirectory
	}
}

func (f *File) IsLocked() bool {
	return f.Flags&FlagLocked != 0
}

func (f *File) SetLocked(locked bool) {
	if locked {
		f.Flags |= FlagLocked
	} else {
		f.Flags &^= FlagLocked
	}
}

// SetData replaces the content. A nil slice is stored as empty.
func (f *File) SetData(data []byte) {
	if data == nil {
		data = []byte{}
	}
	f.Data = data
}

func (f *File) Clone() *File {
	if f == nil {
		return nil
	}
	c := *f
	c.Data = append([]byte{}, f.Data...)
	return &c
}

// Row is a generic keyed storage row.
type Row map[string]any

type FileFactory interface {
	Blank(name string) *File
	FromContent(name string, data []byte) *File
	FromRow(row Row) *File
}
