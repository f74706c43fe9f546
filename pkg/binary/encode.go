package binary

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/S1riyS/sqlfs/internal/models"
	"github.com/S1riyS/sqlfs/internal/security"
)

var order = binary.LittleEndian

func EncodeFileInformation(fi *models.FileInformation) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := writeFileInformation(buf, fi); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeFileInformationList writes a uint32 entry count followed by the
// entries.
func EncodeFileInformationList(files []models.FileInformation) ([]byte, error) {
	buf := new(bytes.Buffer)

	if err := binary.Write(buf, order, uint32(len(files))); err != nil {
		return nil, fmt.Errorf("failed to encode count: %w", err)
	}
	for i := range files {
		if err := writeFileInformation(buf, &files[i]); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}

	return buf.Bytes(), nil
}

func writeFileInformation(buf *bytes.Buffer, fi *models.FileInformation) error {
	// name (uint16 length + bytes)
	if err := writeString(buf, fi.FileName); err != nil {
		return fmt.Errorf("failed to encode name: %w", err)
	}

	// attributes (uint32, 4 bytes)
	if err := binary.Write(buf, order, uint32(fi.Attributes)); err != nil {
		return fmt.Errorf("failed to encode attributes: %w", err)
	}

	// creation, access, write times (int64 unix nanoseconds, 8 bytes each)
	for _, ts := range []time.Time{fi.CreationTime, fi.LastAccessTime, fi.LastWriteTime} {
		if err := binary.Write(buf, order, unixNano(ts)); err != nil {
			return fmt.Errorf("failed to encode time: %w", err)
		}
	}

	// length (int64, 8 bytes)
	if err := binary.Write(buf, order, fi.Length); err != nil {
		return fmt.Errorf("failed to encode length: %w", err)
	}

	return nil
}

func EncodeVolumeInformation(vol *models.VolumeInformation) ([]byte, error) {
	buf := new(bytes.Buffer)

	if err := writeString(buf, vol.VolumeLabel); err != nil {
		return nil, fmt.Errorf("failed to encode label: %w", err)
	}

	fields := []uint32{vol.SerialNumber, vol.MaxComponentLength, uint32(vol.Features)}
	if err := binary.Write(buf, order, fields); err != nil {
		return nil, fmt.Errorf("failed to encode volume fields: %w", err)
	}

	if err := writeString(buf, vol.FileSystemName); err != nil {
		return nil, fmt.Errorf("failed to encode file system name: %w", err)
	}

	return buf.Bytes(), nil
}

// EncodeDiskSpace writes free available, total and total free bytes as
// int64 values.
func EncodeDiskSpace(space *models.DiskSpace) ([]byte, error) {
	buf := new(bytes.Buffer)
	fields := []int64{space.FreeBytesAvailable, space.TotalBytes, space.TotalFreeBytes}
	if err := binary.Write(buf, order, fields); err != nil {
		return nil, fmt.Errorf("failed to encode disk space: %w", err)
	}
	return buf.Bytes(), nil
}

func EncodeSecurityDescriptor(d *security.Descriptor) ([]byte, error) {
	buf := new(bytes.Buffer)

	// kind (int16, 2 bytes)
	if err := binary.Write(buf, order, int16(d.Kind)); err != nil {
		return nil, fmt.Errorf("failed to encode kind: %w", err)
	}

	// mode, uid, gid (uint32, 4 bytes each)
	if err := binary.Write(buf, order, []uint32{d.Mode, d.UID, d.GID}); err != nil {
		return nil, fmt.Errorf("failed to encode owner: %w", err)
	}

	return buf.Bytes(), nil
}

func writeString(buf *bytes.Buffer, s string) error {
	if len(s) > math.MaxUint16 {
		return fmt.Errorf("string of %d bytes is too long", len(s))
	}
	if err := binary.Write(buf, order, uint16(len(s))); err != nil {
		return err
	}
	_, err := buf.WriteString(s)
	return err
}

func unixNano(ts time.Time) int64 {
	if ts.IsZero() {
		return 0
	}
	return ts.UnixNano()
}

func WriteResponse(w http.ResponseWriter, code int64, data []byte) error {
	response := new(bytes.Buffer)

	// Status code (int64, 8 bytes)
	if err := binary.Write(response, order, code); err != nil {
		return fmt.Errorf("failed to write response code: %w", err)
	}

	if data != nil {
		if _, err := response.Write(data); err != nil {
			return fmt.Errorf("failed to write response data: %w", err)
		}
	}

	body := response.Bytes()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(body)))
	w.Header().Set("Connection", "close")
	w.WriteHeader(http.StatusOK)

	_, err := w.Write(body)
	return err
}

func WriteInt64Response(w http.ResponseWriter, code int64, value int64) error {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, order, value); err != nil {
		return err
	}
	return WriteResponse(w, code, buf.Bytes())
}
