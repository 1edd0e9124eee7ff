package weave

// release is bumped on every tagged build of the ledger.
const release = "v0.1.0-dev"

// GitCommit is set at build time with
// -ldflags "-X github.com/iov-one/feeledger/weave.GitCommit=<sha>".
var GitCommit = ""

// Version is what "feeledgerd version" prints.
func Version() string {
	if GitCommit == "" {
		return release
	}
	return release + " " + GitCommit
}
