package pak

import "testing"

func TestSafeJoinRejectsTraversal(t *testing.T) {
	cases := []string{
		"../escape.txt",
		"a/../../escape.txt",
		"/absolute/path.txt",
	}
	for _, c := range cases {
		if _, err := safeJoin("/dest", c); err == nil {
			t.Errorf("safeJoin(%q) succeeded, want error", c)
		}
	}
}

func TestSafeJoinAllowsNormalPaths(t *testing.T) {
	cases := []string{
		"data/file.txt",
		"a/b/c.bin",
		"file.txt",
	}
	for _, c := range cases {
		got, err := safeJoin("/dest", c)
		if err != nil {
			t.Errorf("safeJoin(%q) failed: %v", c, err)
		}
		if got == "" {
			t.Errorf("safeJoin(%q) returned empty path", c)
		}
	}
}

func TestOpenRejectsShortArchive(t *testing.T) {
	if _, err := Open(fakeReaderAt{data: []byte{1, 2, 3}}, 3); !IsKind(err, ErrTruncated) {
		t.Errorf("want ErrTruncated, got %v", err)
	}
}

func TestOpenRejectsBadMagic(t *testing.T) {
	data := make([]byte, HeaderSize)
	copy(data, []byte("NOPE"))
	if _, err := Open(fakeReaderAt{data: data}, int64(len(data))); !IsKind(err, ErrNotPak) {
		t.Errorf("want ErrNotPak, got %v", err)
	}
}
