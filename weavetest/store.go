package weavetest

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/iov-one/feeledger/store/iavl"
	"github.com/iov-one/feeledger/weave"
)

// CommitKVStore returns the goleveldb backed iavl store the daemon runs on,
// living in a temporary directory. Call cleanup once the test is done.
func CommitKVStore(t testing.TB) (db weave.CommitKVStore, cleanup func()) {
	t.Helper()
	dir, err := ioutil.TempDir("", "feeledger-")
	if err != nil {
		t.Fatalf("cannot create a temporary directory: %s", err)
	}
	db, err = iavl.NewCommitStore(dir, "ledger")
	if err != nil {
		os.RemoveAll(dir)
		t.Fatalf("cannot create commit store: %s", err)
	}
	return db, func() { os.RemoveAll(dir) }
}
