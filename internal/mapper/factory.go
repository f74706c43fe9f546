package mapper

import (
	"time"

	"github.com/S1riyS/sqlfs/internal/models"
)

// Factory is the default models.FileFactory.
type Factory struct {
	mapper *FileMapper
	now    func() time.Time
}

var _ models.FileFactory = (*Factory)(nil)

// NewFactory returns a factory stamping new files with now. A nil clock
// uses time.Now.
func NewFactory(m *FileMapper, now func() time.Time) *Factory {
	if now == nil {
		now = time.Now
	}
	return &Factory{mapper: m, now: now}
}

func (f *Factory) Blank(name string) *models.File {
	ts := f.now().UTC()
	return &models.File{
		Name:           name,
		CreationTime:   ts,
		LastModifyTime: ts,
		AccessTime:     ts,
		Data:           []byte{},
	}
}

func (f *Factory) FromContent(name string, data []byte) *models.File {
	file := f.Blank(name)
	file.SetData(append([]byte{}, data...))
	return file
}

func (f *Factory) FromRow(row models.Row) *models.File {
	return f.mapper.Load(row)
}
