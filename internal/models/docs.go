package models

import "time"

// FileRecord is one input file for a generation request. Immutable once
// submitted; identified by path within a single request.
type FileRecord struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Segment is a bounded-size slice of one oversized file. Segments of a file
// are documented independently and reassembled by ascending Index.
type Segment struct {
	Path    string
	Content string
	Index   int
}

// FileDoc is the generated documentation for a single input file.
type FileDoc struct {
	Filename      string `json:"filename"`
	Documentation string `json:"documentation"`
}

// GenerationResult is the response of a blocking generate call.
type GenerationResult struct {
	ArtifactID    string `json:"artifactId"`
	Documentation string `json:"documentation"`
}

// RefinementResult is the response of a refine call. Diff is empty when the
// feedback produced no content change.
type RefinementResult struct {
	Explanation string `json:"explanation"`
	UpdatedDocs string `json:"updatedDocs"`
	Diff        string `json:"diff,omitempty"`
}

// RepoCoordinates identifies where an accepted document is published.
type RepoCoordinates struct {
	Owner    string `json:"owner"`
	Repo     string `json:"repo"`
	Branch   string `json:"branch"`
	FilePath string `json:"filePath"`
	Token    string `json:"-"`
}

// BranchInfo describes a local branch of a repository on disk.
type BranchInfo struct {
	Name           string    `json:"name"`
	LastCommitDate time.Time `json:"lastCommitDate"`
}

// PublishResult confirms an accepted document was pushed to the host.
type PublishResult struct {
	Message   string `json:"message"`
	CommitSHA string `json:"commitSha,omitempty"`
}
