package app

import (
	"github.com/iov-one/feeledger/errors"
	"github.com/iov-one/feeledger/weave"
)

// ledgerState keeps two scratch pads over the committed tree. Deliver
// writes land in deliver until the block commits. Check runs against its
// own pad, which is thrown away at every commit.
type ledgerState struct {
	committed weave.CommitKVStore
	deliver   weave.KVCacheWrap
	check     weave.KVCacheWrap
}

func openLedgerState(db weave.CommitKVStore) (*ledgerState, error) {
	if err := db.LoadLatestVersion(); err != nil {
		return nil, errors.Wrap(err, "load latest version")
	}
	s := &ledgerState{committed: db}
	s.reset()
	return s, nil
}

func (s *ledgerState) reset() {
	s.deliver = s.committed.CacheWrap()
	s.check = s.committed.CacheWrap()
}

func (s *ledgerState) latest() (weave.CommitID, error) {
	return s.committed.LatestVersion()
}

// commit flushes the deliver pad and persists a new version.
func (s *ledgerState) commit() (weave.CommitID, error) {
	if err := s.deliver.Write(); err != nil {
		return weave.CommitID{}, errors.Wrap(err, "flush deliver cache")
	}
	s.check.Discard()
	id, err := s.committed.Commit()
	if err != nil {
		return id, err
	}
	s.reset()
	return id, nil
}

// The chain id lives under a reserved prefix no extension uses.
var chainIDKey = []byte("_wv:chainID")

func loadChainID(db weave.ReadOnlyKVStore) (string, error) {
	raw, err := db.Get(chainIDKey)
	if err != nil {
		return "", errors.Wrap(err, "load chain id")
	}
	return string(raw), nil
}

// saveChainID writes the chain id once. It is immutable afterwards.
func saveChainID(db weave.KVStore, chainID string) error {
	if !weave.IsValidChainID(chainID) {
		return errors.Wrapf(errors.ErrInput, "chain id: %v", chainID)
	}
	switch exists, err := db.Has(chainIDKey); {
	case err != nil:
		return errors.Wrap(err, "load chain id")
	case exists:
		return errors.Wrap(errors.ErrImmutable, "chain id is set at genesis")
	}
	return errors.Wrap(db.Set(chainIDKey, []byte(chainID)), "save chain id")
}
