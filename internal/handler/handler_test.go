package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/S1riyS/sqlfs/internal/mapper"
	"github.com/S1riyS/sqlfs/internal/pkg/kerrors"
	"github.com/S1riyS/sqlfs/internal/repository/memory"
	"github.com/S1riyS/sqlfs/internal/service"
	"github.com/S1riyS/sqlfs/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type HandlerSuite struct {
	suite.Suite
	mux *http.ServeMux
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	clock := func() time.Time { return time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC) }
	factory := mapper.NewFactory(mapper.NewFileMapper(mapper.NewFileSchema()), clock)
	svc := service.NewFileSystemService(memory.NewFileRepository(), factory, service.Options{
		VolumeLabel: "HTTP",
		TotalSpace:  2048,
		FreeSpace:   1024,
		Clock:       clock,
	})

	s.mux = http.NewServeMux()
	NewHandler(svc).RegisterRoutes(s.mux)
}

// call issues a GET and splits the response into status and payload.
func (s *HandlerSuite) call(endpoint string, query url.Values) (kerrors.Status, []byte) {
	req := httptest.NewRequest(http.MethodGet, endpoint+"?"+query.Encode(), nil)
	ctx := logging.MakeContextWithLogger(req.Context(), slog.New(slog.DiscardHandler))
	rec := httptest.NewRecorder()

	s.mux.ServeHTTP(rec, req.WithContext(ctx))

	s.Require().Equal(http.StatusOK, rec.Code)
	body := rec.Body.Bytes()
	s.Require().GreaterOrEqual(len(body), 8)
	return kerrors.Status(binary.LittleEndian.Uint64(body[:8])), body[8:]
}

func (s *HandlerSuite) create(path string) {
	status, _ := s.call("/api/create_file", url.Values{"path": {path}, "mode": {"1"}})
	s.Require().Equal(kerrors.StatusSuccess, status)
}

func (s *HandlerSuite) TestWriteThenRead() {
	s.create(`\notes.txt`)

	status, payload := s.call("/api/write", url.Values{
		"path":   {`\notes.txt`},
		"offset": {"0"},
		"data":   {base64.StdEncoding.EncodeToString([]byte("hello world"))},
	})
	s.Require().Equal(kerrors.StatusSuccess, status)
	s.Equal(uint64(11), binary.LittleEndian.Uint64(payload))

	status, payload = s.call("/api/read", url.Values{"path": {`\notes.txt`}, "len": {"5"}, "offset": {"6"}})
	s.Require().Equal(kerrors.StatusSuccess, status)
	s.Equal([]byte("world"), payload)
}

func (s *HandlerSuite) TestCreateNewTwice() {
	s.create(`\a`)

	status, payload := s.call("/api/create_file", url.Values{"path": {`\a`}, "mode": {"1"}})
	s.Equal(kerrors.StatusFileExists, status)
	s.Empty(payload)
}

func (s *HandlerSuite) TestDirectoryListing() {
	status, _ := s.call("/api/create_file", url.Values{"path": {`\docs`}, "mode": {"1"}, "directory": {"true"}})
	s.Require().Equal(kerrors.StatusSuccess, status)
	s.create(`\docs\one`)
	s.create(`\docs\two`)

	status, payload := s.call("/api/find_files", url.Values{"path": {`\docs\`}, "pattern": {"*"}})
	s.Require().Equal(kerrors.StatusSuccess, status)
	s.Equal(uint32(2), binary.LittleEndian.Uint32(payload))
}

func (s *HandlerSuite) TestMoveAndDelete() {
	s.create(`\old`)

	status, _ := s.call("/api/move", url.Values{"path": {`\old`}, "new_path": {`\new`}})
	s.Require().Equal(kerrors.StatusSuccess, status)

	status, _ = s.call("/api/file_information", url.Values{"path": {`\old`}})
	s.Equal(kerrors.StatusFileNotFound, status)

	status, _ = s.call("/api/delete_file", url.Values{"path": {`\new`}})
	s.Equal(kerrors.StatusSuccess, status)

	status, _ = s.call("/api/file_information", url.Values{"path": {`\new`}})
	s.Equal(kerrors.StatusFileNotFound, status)
}

func (s *HandlerSuite) TestSetEndOfFile() {
	s.create(`\f`)

	status, _ := s.call("/api/set_end_of_file", url.Values{"path": {`\f`}, "length": {"4"}})
	s.Require().Equal(kerrors.StatusSuccess, status)

	status, payload := s.call("/api/read", url.Values{"path": {`\f`}, "len": {"10"}, "offset": {"0"}})
	s.Require().Equal(kerrors.StatusSuccess, status)
	s.Equal([]byte{0, 0, 0, 0}, payload)
}

func (s *HandlerSuite) TestVolumeEndpoints() {
	status, payload := s.call("/api/disk_free_space", nil)
	s.Require().Equal(kerrors.StatusSuccess, status)
	fields := make([]int64, 3)
	s.Require().NoError(binary.Read(bytes.NewReader(payload), binary.LittleEndian, fields))
	s.Equal([]int64{1024, 2048, 1024}, fields)

	status, payload = s.call("/api/volume_information", nil)
	s.Require().Equal(kerrors.StatusSuccess, status)
	s.NotEmpty(payload)

	status, payload = s.call("/api/security", url.Values{"path": {`\`}})
	s.Require().Equal(kerrors.StatusSuccess, status)
	s.Len(payload, 14)
}

func (s *HandlerSuite) TestInvalidParameters() {
	cases := []struct {
		endpoint string
		query    url.Values
	}{
		{"/api/read", url.Values{"path": {`\f`}, "len": {"x"}, "offset": {"0"}}},
		{"/api/read", url.Values{"path": {`\f`}, "len": {"-1"}, "offset": {"0"}}},
		{"/api/write", url.Values{"path": {`\f`}, "offset": {"0"}, "data": {"%%%"}}},
		{"/api/create_file", url.Values{"path": {`\f`}}},
		{"/api/move", url.Values{"path": {`\f`}}},
		{"/api/set_time", url.Values{"path": {`\f`}, "access": {"yesterday"}}},
		{"/api/file_information", url.Values{}},
	}

	for _, tc := range cases {
		status, payload := s.call(tc.endpoint, tc.query)
		s.Equal(kerrors.StatusInvalidParameter, status, tc.endpoint)
		s.Empty(payload)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	mux := http.NewServeMux()
	NewHandler(nil).RegisterRoutes(mux)

	req := httptest.NewRequest(http.MethodPost, "/api/read", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req.WithContext(logging.MakeContextWithLogger(context.Background(), slog.New(slog.DiscardHandler))))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealthCheck(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHandler(nil).HandleHealthCheck(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","service":"sqlfs"}`, rec.Body.String())
}
