package handler

import (
	"net/http"
)

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// System endpoints
	mux.HandleFunc("/health", h.HandleHealthCheck)

	// Files
	mux.HandleFunc("/api/create_file", h.HandleCreateFile)
	mux.HandleFunc("/api/read", h.HandleRead)
	mux.HandleFunc("/api/write", h.HandleWrite)
	mux.HandleFunc("/api/flush", h.HandleFlush)
	mux.HandleFunc("/api/file_information", h.HandleFileInformation)
	mux.HandleFunc("/api/set_attributes", h.HandleSetAttributes)
	mux.HandleFunc("/api/set_time", h.HandleSetTime)
	mux.HandleFunc("/api/set_end_of_file", h.HandleSetEndOfFile)
	mux.HandleFunc("/api/set_allocation_size", h.HandleSetAllocationSize)
	mux.HandleFunc("/api/security", h.HandleSecurity)
	mux.HandleFunc("/api/find_streams", h.HandleFindStreams)

	// Namespace
	mux.HandleFunc("/api/find_files", h.HandleFindFiles)
	mux.HandleFunc("/api/delete_file", h.HandleDeleteFile)
	mux.HandleFunc("/api/delete_directory", h.HandleDeleteDirectory)
	mux.HandleFunc("/api/move", h.HandleMove)

	// Volume
	mux.HandleFunc("/api/disk_free_space", h.HandleDiskFreeSpace)
	mux.HandleFunc("/api/volume_information", h.HandleVolumeInformation)
}
