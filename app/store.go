package app

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/iov-one/feeledger/errors"
	"github.com/iov-one/feeledger/weave"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

// StoreApp serves the ABCI calls that do not run transactions: chain
// setup, block boundaries, commits and queries. BaseApp embeds it and adds
// CheckTx and DeliverTx.
//
// Every ABCI call holds mu, so state transitions are totally ordered. Calls
// that take no user input panic on storage failures since the node cannot
// continue from them.
type StoreApp struct {
	mu     sync.Mutex
	logger log.Logger
	name   string

	state   *ledgerState
	init    weave.Initializer
	queries weave.QueryRouter

	// chainID is empty until InitChain stored it.
	chainID string
	// baseCtx lives as long as the app, blockCtx is rebuilt by BeginBlock.
	baseCtx  weave.Context
	blockCtx weave.Context
}

// NewStoreApp loads the latest committed version of db. It panics when the
// stored state cannot be read.
func NewStoreApp(name string, db weave.CommitKVStore, queries weave.QueryRouter, ctx weave.Context) *StoreApp {
	state, err := openLedgerState(db)
	if err != nil {
		panic(err)
	}
	s := &StoreApp{name: name, state: state, queries: queries, baseCtx: ctx}
	s.WithLogger(log.NewNopLogger())

	if s.chainID, err = loadChainID(state.deliver); err != nil {
		panic(err)
	}
	if s.chainID != "" {
		s.baseCtx = weave.WithChainID(s.baseCtx, s.chainID)
	}
	id, err := state.latest()
	if err != nil {
		panic(err)
	}
	s.blockCtx = weave.WithHeight(s.baseCtx, id.Version)
	return s
}

// WithInit sets the initializer that InitChain runs over the genesis state.
func (s *StoreApp) WithInit(init weave.Initializer) *StoreApp {
	s.init = init
	return s
}

// WithLogger sets the logger of the app and of every context it hands out.
func (s *StoreApp) WithLogger(logger log.Logger) *StoreApp {
	s.logger = logger
	s.baseCtx = weave.WithLogger(s.baseCtx, logger)
	if s.blockCtx != nil {
		s.blockCtx = weave.WithLogger(s.blockCtx, logger)
	}
	return s
}

func (s *StoreApp) GetChainID() string                   { return s.chainID }
func (s *StoreApp) BlockContext() weave.Context          { return s.blockCtx }
func (s *StoreApp) DeliverStore() weave.CacheableKVStore { return s.state.deliver }
func (s *StoreApp) CheckStore() weave.CacheableKVStore   { return s.state.check }

// Info reports the last committed height and app hash.
func (s *StoreApp) Info(abci.RequestInfo) abci.ResponseInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.state.latest()
	if err != nil {
		panic(err)
	}
	s.logger.Info("Info synced", "height", id.Version, "hash", fmt.Sprintf("%X", id.Hash))
	return abci.ResponseInfo{
		Data:             s.name,
		LastBlockHeight:  id.Version,
		LastBlockAppHash: id.Hash,
	}
}

func (s *StoreApp) SetOption(abci.RequestSetOption) abci.ResponseSetOption {
	return abci.ResponseSetOption{Log: "Not Implemented"}
}

// InitChain stores the chain id and loads the genesis app state. It runs
// once per chain and panics on any failure.
func (s *StoreApp) InitChain(req abci.RequestInitChain) abci.ResponseInitChain {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.genesis(req.ChainId, req.AppStateBytes); err != nil {
		panic(err)
	}
	return abci.ResponseInitChain{}
}

func (s *StoreApp) genesis(chainID string, appState []byte) error {
	if s.chainID != "" {
		return errors.Wrapf(errors.ErrState, "app state previously loaded for chain: %s", s.chainID)
	}
	if len(appState) == 0 {
		return errors.Wrap(errors.ErrState, "app_state not set in genesis.json, please initialize application before launching the blockchain")
	}
	var opts weave.Options
	if err := json.Unmarshal(appState, &opts); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := saveChainID(s.state.deliver, chainID); err != nil {
		return err
	}
	s.chainID = chainID
	s.baseCtx = weave.WithChainID(s.baseCtx, chainID)
	s.blockCtx = weave.WithChainID(s.blockCtx, chainID)

	if s.init == nil {
		return nil
	}
	ctx := weave.WithLogInfo(s.baseCtx, "call", "init_chain")
	return s.init.FromGenesis(ctx, opts, s.state.deliver)
}

// BeginBlock rebuilds the block context from the header.
func (s *StoreApp) BeginBlock(req abci.RequestBeginBlock) abci.ResponseBeginBlock {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := req.Header
	ctx := weave.WithHeader(s.baseCtx, h)
	ctx = weave.WithHeight(ctx, h.GetHeight())
	s.blockCtx = weave.WithBlockTime(ctx, h.GetTime())
	return abci.ResponseBeginBlock{}
}

// EndBlock leaves the validator set unchanged.
func (s *StoreApp) EndBlock(abci.RequestEndBlock) abci.ResponseEndBlock {
	return abci.ResponseEndBlock{}
}

func (s *StoreApp) Commit() abci.ResponseCommit {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.state.commit()
	if err != nil {
		panic(err)
	}
	s.logger.Debug("Commit synced", "height", id.Version, "hash", fmt.Sprintf("%X", id.Hash))
	return abci.ResponseCommit{Data: id.Hash}
}

// Query runs a registered query against the last committed state. The path
// is "/<route>" with an optional "?<mod>" suffix, for example "/auth?prefix".
// The requested height is ignored. Key and Value of the response hold
// ResultSets of equal length.
func (s *StoreApp) Query(req abci.RequestQuery) abci.ResponseQuery {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, mod := splitPath(req.Path)
	h := s.queries.Handler(path)
	if h == nil {
		return queryError(errors.Wrapf(errors.ErrNotFound, "unexpected query path: %v", req.Path))
	}
	id, err := s.state.latest()
	if err != nil {
		return queryError(err)
	}

	// Uncommitted deliver writes stay invisible.
	db := s.state.committed.CacheWrap()
	defer db.Discard()
	models, err := h.Query(db, mod, req.Data)
	if err != nil {
		return queryError(err)
	}

	res := abci.ResponseQuery{Height: id.Version}
	if res.Key, err = ResultsFromKeys(models).Marshal(); err != nil {
		return queryError(err)
	}
	if res.Value, err = ResultsFromValues(models).Marshal(); err != nil {
		return queryError(err)
	}
	return res
}

// splitPath cuts the query modifier following "?" off the route.
func splitPath(full string) (path, mod string) {
	if i := strings.IndexByte(full, '?'); i >= 0 {
		return full[:i], full[i+1:]
	}
	return full, ""
}

func queryError(err error) abci.ResponseQuery {
	code, log := errors.ABCIInfo(err, false)
	return abci.ResponseQuery{Code: code, Log: log}
}
