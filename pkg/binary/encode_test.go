package binary

import (
	"bytes"
	"encoding/binary"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/S1riyS/sqlfs/internal/models"
	"github.com/S1riyS/sqlfs/internal/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readString(t *testing.T, r *bytes.Reader) string {
	t.Helper()
	var n uint16
	require.NoError(t, binary.Read(r, order, &n))
	b := make([]byte, n)
	_, err := r.Read(b)
	if n > 0 {
		require.NoError(t, err)
	}
	return string(b)
}

func TestEncodeFileInformation(t *testing.T) {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	fi := &models.FileInformation{
		FileName:     `dir\a.txt`,
		Attributes:   models.AttributeNormal,
		CreationTime: created,
		Length:       42,
	}

	data, err := EncodeFileInformation(fi)
	require.NoError(t, err)

	r := bytes.NewReader(data)
	assert.Equal(t, `dir\a.txt`, readString(t, r))

	var attrs uint32
	require.NoError(t, binary.Read(r, order, &attrs))
	assert.Equal(t, uint32(models.AttributeNormal), attrs)

	times := make([]int64, 3)
	require.NoError(t, binary.Read(r, order, times))
	assert.Equal(t, []int64{created.UnixNano(), 0, 0}, times)

	var length int64
	require.NoError(t, binary.Read(r, order, &length))
	assert.Equal(t, int64(42), length)
	assert.Zero(t, r.Len())
}

func TestEncodeFileInformationList(t *testing.T) {
	data, err := EncodeFileInformationList([]models.FileInformation{{FileName: "a"}, {FileName: "b"}})
	require.NoError(t, err)

	r := bytes.NewReader(data)
	var count uint32
	require.NoError(t, binary.Read(r, order, &count))
	assert.Equal(t, uint32(2), count)
	assert.Equal(t, "a", readString(t, r))

	empty, err := EncodeFileInformationList(nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0}, empty)
}

func TestEncodeVolumeInformation(t *testing.T) {
	data, err := EncodeVolumeInformation(&models.VolumeInformation{
		VolumeLabel:        "VOL",
		SerialNumber:       7,
		MaxComponentLength: 256,
		Features:           models.FeatureCaseSensitiveSearch,
		FileSystemName:     "SQLFS",
	})
	require.NoError(t, err)

	r := bytes.NewReader(data)
	assert.Equal(t, "VOL", readString(t, r))
	fields := make([]uint32, 3)
	require.NoError(t, binary.Read(r, order, fields))
	assert.Equal(t, []uint32{7, 256, 1}, fields)
	assert.Equal(t, "SQLFS", readString(t, r))
}

func TestEncodeDiskSpaceAndSecurity(t *testing.T) {
	data, err := EncodeDiskSpace(&models.DiskSpace{FreeBytesAvailable: 1, TotalBytes: 2, TotalFreeBytes: 3})
	require.NoError(t, err)
	assert.Len(t, data, 24)

	data, err = EncodeSecurityDescriptor(&security.Descriptor{Kind: security.KindFile, Mode: 0o644, UID: 1000, GID: 100})
	require.NoError(t, err)

	r := bytes.NewReader(data)
	var kind int16
	require.NoError(t, binary.Read(r, order, &kind))
	assert.Equal(t, int16(security.KindFile), kind)
	owner := make([]uint32, 3)
	require.NoError(t, binary.Read(r, order, owner))
	assert.Equal(t, []uint32{0o644, 1000, 100}, owner)
}

func TestWriteResponse(t *testing.T) {
	rec := httptest.NewRecorder()

	require.NoError(t, WriteInt64Response(rec, 0xC0000034, 9))

	body := rec.Body.Bytes()
	require.Len(t, body, 16)
	assert.Equal(t, uint64(0xC0000034), order.Uint64(body[:8]))
	assert.Equal(t, uint64(9), order.Uint64(body[8:]))
	assert.Equal(t, "16", rec.Header().Get("Content-Length"))
}
