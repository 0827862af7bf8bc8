package models

import "time"

// FileSnapshot is a point-in-time view of one cached file's metadata
type FileSnapshot struct {
	ID         UID       `json:"id"`
	Path       string    `json:"path"`
	Size       int       `json:"size"`
	Generation uint64    `json:"generation"`
	RefCount   int       `json:"ref_count"`
	Hash       string    `json:"hash"`
	LoadedAt   time.Time `json:"loaded_at"`
	ModTime    time.Time `json:"mod_time"`
}
