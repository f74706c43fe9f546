// Package memory is an in-process repository.FileRepository.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/S1riyS/sqlfs/internal/fspath"
	"github.com/S1riyS/sqlfs/internal/models"
	"github.com/S1riyS/sqlfs/internal/repository"
)

type FileRepository struct {
	mu    sync.RWMutex
	files map[string]*models.File
}

var (
	_ repository.FileRepository = (*FileRepository)(nil)
	_ repository.TableManager   = (*FileRepository)(nil)
)

func NewFileRepository() *FileRepository {
	return &FileRepository{files: make(map[string]*models.File)}
}

func (r *FileRepository) CreateTable(context.Context) error {
	return nil
}

func (r *FileRepository) DropTable(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.files = make(map[string]*models.File)
	return nil
}

func (r *FileRepository) Lookup(_ context.Context, name string) (*models.File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.files[name].Clone(), nil
}

func (r *FileRepository) FindByPrefix(_ context.Context, prefix, pattern string) ([]*models.File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	prefix = fspath.LiteralPrefix(prefix)

	var out []*models.File
	for name, f := range r.files {
		if name >= prefix && strings.HasPrefix(name, prefix) && fspath.Match(pattern, name) {
			out = append(out, f.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *FileRepository) Insert(_ context.Context, file *models.File, replace bool) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.files[file.Name]; ok && !replace {
		return 0, nil
	}
	r.files[file.Name] = stored(file)
	return 1, nil
}

func (r *FileRepository) Save(_ context.Context, file *models.File) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.files[file.Name]; !ok {
		return 0, nil
	}
	r.files[file.Name] = stored(file)
	return 1, nil
}

func (r *FileRepository) Delete(_ context.Context, name string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.files[name]; !ok {
		return 0, nil
	}
	delete(r.files, name)
	return 1, nil
}

func (r *FileRepository) Rename(_ context.Context, oldName, newName string, replace bool) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.files[oldName]
	if !ok {
		return 0, nil
	}
	if _, exists := r.files[newName]; exists && (!replace || oldName == newName) {
		return 0, nil
	}
	delete(r.files, oldName)
	f.Name = newName
	r.files[newName] = f
	return 1, nil
}

func (r *FileRepository) PatchFlags(_ context.Context, name string, flags models.Flags) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.files[name]
	if !ok {
		return 0, nil
	}
	f.Flags = flags
	return 1, nil
}

func (r *FileRepository) PatchTimes(_ context.Context, name string, creation, access, modify *time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.files[name]
	if !ok {
		return 0, nil
	}
	if creation != nil {
		f.CreationTime = *creation
	}
	if access != nil {
		f.AccessTime = *access
	}
	if modify != nil {
		f.LastModifyTime = *modify
	}
	return 1, nil
}

// Len reports the number of stored files.
func (r *FileRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.files)
}

func stored(f *models.File) *models.File {
	c := f.Clone()
	if c.Data == nil {
		c.Data = []byte{}
	}
	return c
}
