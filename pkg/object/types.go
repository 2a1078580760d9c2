package object

// Hash is a 64-character hex-encoded SHA-256 digest.
type Hash string

// ObjectType identifies the kind of object stored.
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeTree   ObjectType = "tree"
	TypeCommit ObjectType = "commit"
)

// Blob holds raw file data.
type Blob struct {
	Data []byte
}

// TreeEntry is a single tracked file in a tree snapshot.
type TreeEntry struct {
	Path     string // repo-relative, forward slashes
	BlobHash Hash
}

// TreeObj is a full tracked-file snapshot: a flat mapping from path to blob
// hash, kept sorted by path so serialization is deterministic and identical
// snapshots collapse to one object.
type TreeObj struct {
	Entries []TreeEntry // sorted by Path
}

// CommitObj represents a commit pointing at a tree snapshot with metadata.
// A commit has zero parents (root), one parent (normal), or two (merge).
type CommitObj struct {
	TreeHash  Hash
	Parents   []Hash
	Author    string
	Timestamp int64
	Message   string
	Signature string // optional ssh signature over the signing payload
}
