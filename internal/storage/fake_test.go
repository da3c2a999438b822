package storage

import (
	"errors"
	"fmt"
	"os"
	"syscall"
	"testing"
)

func TestFakeMkdirAllRecordsParents(t *testing.T) {
	f := NewFake()
	if err := f.MkdirAll("/data/a/b"); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	for _, d := range []string{"/data/a/b", "/data/a", "/data"} {
		if !f.Dirs[d] {
			t.Errorf("Dirs[%q] = false, want true", d)
		}
	}
	if len(f.Calls) != 1 || f.Calls[0].Method != "MkdirAll" {
		t.Errorf("Calls = %+v", f.Calls)
	}
}

func TestFakeMkdirAllOverFile(t *testing.T) {
	f := NewFake()
	f.Files["/data/x"] = []byte("file")
	err := f.MkdirAll("/data/x")
	if !errors.Is(err, syscall.ENOTDIR) {
		t.Errorf("err = %v, want ENOTDIR", err)
	}
}

func TestFakeWriteNeedsParent(t *testing.T) {
	f := NewFake()
	if err := f.Write("/data/f.txt", []byte("x")); !os.IsNotExist(err) {
		t.Errorf("Write without parent = %v", err)
	}
	f.Dirs["/data"] = true
	if err := f.Write("/data/f.txt", []byte("x")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if string(f.Files["/data/f.txt"]) != "x" {
		t.Errorf("Files = %v", f.Files)
	}
}

func TestFakeReadDirNames(t *testing.T) {
	f := NewFake()
	f.Dirs["/data"] = true
	f.Dirs["/data/sub"] = true
	f.Files["/data/a.txt"] = nil
	f.Files["/data/sub/deep.txt"] = nil

	names, err := f.ReadDirNames("/data")
	if err != nil {
		t.Fatalf("ReadDirNames: %v", err)
	}
	if len(names) != 2 || names[0] != "a.txt" || names[1] != "sub" {
		t.Errorf("names = %v", names)
	}
}

func TestFakeErrorInjection(t *testing.T) {
	f := NewFake()
	injected := fmt.Errorf("disk on fire")
	f.Errors["/data/f"] = injected
	if _, err := f.Read("/data/f"); !errors.Is(err, injected) {
		t.Errorf("Read error = %v, want %v", err, injected)
	}
	if _, err := f.Stat("/data/f"); !errors.Is(err, injected) {
		t.Errorf("Stat error = %v, want %v", err, injected)
	}
}

func TestFakeRemoveNonEmptyDir(t *testing.T) {
	f := NewFake()
	f.Dirs["/data"] = true
	f.Files["/data/a"] = nil
	if err := f.Remove("/data"); err == nil {
		t.Error("expected error removing non-empty dir")
	}
}
