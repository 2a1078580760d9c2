package object

import (
	"errors"
	"testing"
)

func TestStoreWriteIsIdempotent(t *testing.T) {
	s := NewStore(t.TempDir())

	h1, err := s.Write(TypeBlob, []byte("hello"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	h2, err := s.Write(TypeBlob, []byte("hello"))
	if err != nil {
		t.Fatalf("Write again: %v", err)
	}
	if h1 != h2 {
		t.Fatalf("same content produced different hashes: %s vs %s", h1, h2)
	}
}

func TestStoreDistinctContentDistinctIds(t *testing.T) {
	s := NewStore(t.TempDir())

	h1, err := s.Write(TypeBlob, []byte("one"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	h2, err := s.Write(TypeBlob, []byte("two"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if h1 == h2 {
		t.Fatal("different content collapsed to one hash")
	}
}

func TestStoreTypeIsPartOfIdentity(t *testing.T) {
	s := NewStore(t.TempDir())

	asBlob, err := s.Write(TypeBlob, []byte("x"))
	if err != nil {
		t.Fatalf("Write blob: %v", err)
	}
	asTree, err := s.Write(TypeTree, []byte("x"))
	if err != nil {
		t.Fatalf("Write tree: %v", err)
	}
	if asBlob == asTree {
		t.Fatal("same bytes under different types collapsed to one hash")
	}
}

func TestStoreReadRoundtrip(t *testing.T) {
	s := NewStore(t.TempDir())

	content := []byte("some file content\nwith two lines\n")
	h, err := s.Write(TypeBlob, content)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	objType, got, err := s.Read(h)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if objType != TypeBlob {
		t.Fatalf("type = %q, want %q", objType, TypeBlob)
	}
	if string(got) != string(content) {
		t.Fatalf("content = %q, want %q", got, content)
	}
}

func TestStoreReadMissing(t *testing.T) {
	s := NewStore(t.TempDir())

	_, _, err := s.Read(HashBytes([]byte("never stored")))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestCommitHashDeterministic(t *testing.T) {
	base := &CommitObj{
		TreeHash:  HashObject(TypeTree, nil),
		Parents:   []Hash{HashBytes([]byte("p1"))},
		Author:    "alice",
		Timestamp: 1700000000,
		Message:   "change things",
	}

	same := *base
	if HashObject(TypeCommit, MarshalCommit(base)) != HashObject(TypeCommit, MarshalCommit(&same)) {
		t.Fatal("identical commits hashed differently")
	}

	// Any single field change must change the id.
	variants := []func(c *CommitObj){
		func(c *CommitObj) { c.TreeHash = HashBytes([]byte("other tree")) },
		func(c *CommitObj) { c.Parents = nil },
		func(c *CommitObj) { c.Parents = append(c.Parents, HashBytes([]byte("p2"))) },
		func(c *CommitObj) { c.Author = "bob" },
		func(c *CommitObj) { c.Timestamp++ },
		func(c *CommitObj) { c.Message = "change things!" },
		func(c *CommitObj) { c.Signature = "sshsig-v1:x:y:z" },
	}
	baseHash := HashObject(TypeCommit, MarshalCommit(base))
	for i, mutate := range variants {
		c := *base
		c.Parents = append([]Hash{}, base.Parents...)
		mutate(&c)
		if HashObject(TypeCommit, MarshalCommit(&c)) == baseHash {
			t.Fatalf("variant %d did not change the commit hash", i)
		}
	}
}

func TestCommitRoundtrip(t *testing.T) {
	c := &CommitObj{
		TreeHash:  HashObject(TypeTree, nil),
		Parents:   []Hash{HashBytes([]byte("a")), HashBytes([]byte("b"))},
		Author:    "alice <alice@example.com>",
		Timestamp: 1700000123,
		Message:   "merge feature\n\nwith a body",
		Signature: "sshsig-v1:ssh-ed25519:pub:sig",
	}

	got, err := UnmarshalCommit(MarshalCommit(c))
	if err != nil {
		t.Fatalf("UnmarshalCommit: %v", err)
	}
	if got.TreeHash != c.TreeHash || got.Author != c.Author ||
		got.Timestamp != c.Timestamp || got.Message != c.Message ||
		got.Signature != c.Signature {
		t.Fatalf("roundtrip mismatch: %+v vs %+v", got, c)
	}
	if len(got.Parents) != 2 || got.Parents[0] != c.Parents[0] || got.Parents[1] != c.Parents[1] {
		t.Fatalf("parents = %v, want %v", got.Parents, c.Parents)
	}
}

func TestTreeSerializationIsOrderIndependent(t *testing.T) {
	e1 := TreeEntry{Path: "a.txt", BlobHash: HashBytes([]byte("a"))}
	e2 := TreeEntry{Path: "dir/b.txt", BlobHash: HashBytes([]byte("b"))}

	forward := MarshalTree(&TreeObj{Entries: []TreeEntry{e1, e2}})
	backward := MarshalTree(&TreeObj{Entries: []TreeEntry{e2, e1}})
	if string(forward) != string(backward) {
		t.Fatal("entry order leaked into tree serialization")
	}
}

func TestTreeRoundtripWithSpacesInPath(t *testing.T) {
	tr := &TreeObj{Entries: []TreeEntry{
		{Path: "docs/read me.txt", BlobHash: HashBytes([]byte("x"))},
	}}

	got, err := UnmarshalTree(MarshalTree(tr))
	if err != nil {
		t.Fatalf("UnmarshalTree: %v", err)
	}
	if len(got.Entries) != 1 || got.Entries[0].Path != "docs/read me.txt" {
		t.Fatalf("entries = %+v", got.Entries)
	}
}

func TestCommitSigningPayloadExcludesSignature(t *testing.T) {
	c := &CommitObj{
		TreeHash:  HashObject(TypeTree, nil),
		Author:    "alice",
		Timestamp: 1,
		Message:   "m",
	}
	unsigned := CommitSigningPayload(c)

	c.Signature = "sshsig-v1:f:p:s"
	if string(CommitSigningPayload(c)) != string(unsigned) {
		t.Fatal("signing payload changed after attaching the signature")
	}
}
