package domain

import "time"

// BuildInfo records the source state an artifact was last built from.
type BuildInfo struct {
	Artifact      string    `json:"artifact,omitzero"`
	Transform     string    `json:"transform,omitzero"`
	SourceHash    string    `json:"source_hash,omitzero"`
	SourceModTime time.Time `json:"source_mod_time,omitzero"`
	Size          int       `json:"size,omitzero"`
	Timestamp     time.Time `json:"timestamp,omitzero"`
}
