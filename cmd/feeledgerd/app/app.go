/*
Package feeledgerd links together all the various components
to construct the feeledgerd app.
*/
package feeledgerd

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/iov-one/feeledger/app"
	"github.com/iov-one/feeledger/errors"
	"github.com/iov-one/feeledger/store/iavl"
	"github.com/iov-one/feeledger/weave"
	"github.com/iov-one/feeledger/x"
	"github.com/iov-one/feeledger/x/feetoken"
	"github.com/iov-one/feeledger/x/proxy"
	"github.com/iov-one/feeledger/x/sigs"
	"github.com/iov-one/feeledger/x/utils"
)

// Authenticator returns the typical authentication,
// just using public key signatures
func Authenticator() x.Authenticator {
	return x.ChainAuth(sigs.Authenticate{})
}

// Chain returns a chain of decorators, to handle authentication,
// logging, and recovery
func Chain() app.Decorators {
	return app.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		utils.NewActionTagger(),
		// on CheckTx, bad tx don't affect state
		utils.NewSavepoint().OnCheck(),
		sigs.NewDecorator(),
		// on DeliverTx, a failing message still bumps the signer sequence
		utils.NewSavepoint().OnDeliver(),
	)
}

// Controller returns a proxy controller knowing every token
// implementation version this binary ships.
func Controller(authFn x.Authenticator) *proxy.Controller {
	return proxy.NewController(proxy.NewCodebase(
		feetoken.NewToken(authFn),
	))
}

// Router returns a default router, dispatching to the proxy and
// sequence handlers.
func Router(authFn x.Authenticator, ctrl *proxy.Controller) *app.Router {
	r := app.NewRouter()
	sigs.RegisterRoutes(r, authFn)
	proxy.RegisterRoutes(r, authFn, ctrl)
	return r
}

// QueryRouter returns a default query router,
// allowing access to "/auth", "/proxy/implementation", "/proxy/code"
// and "/proxy/view"
func QueryRouter(ctrl *proxy.Controller) weave.QueryRouter {
	r := weave.NewQueryRouter()
	sigs.RegisterQuery(r)
	proxy.RegisterQuery(r, ctrl)
	return r
}

// Stack wires up a standard router with a standard decorator
// chain. This can be passed into BaseApp.
func Stack(authFn x.Authenticator, ctrl *proxy.Controller) weave.Handler {
	return Chain().WithHandler(Router(authFn, ctrl))
}

// Application constructs a basic ABCI application with
// the given arguments.
func Application(name string, h weave.Handler, tx weave.TxDecoder,
	ctrl *proxy.Controller, dbPath string, debug bool) (app.BaseApp, error) {

	kv, err := CommitKVStore(dbPath)
	if err != nil {
		return app.BaseApp{}, err
	}
	store := app.NewStoreApp(name, kv, QueryRouter(ctrl), context.Background())
	store.WithInit(app.ChainInitializers(
		proxy.NewInitializer(ctrl),
	))
	return app.NewBaseApp(store, tx, h, debug), nil
}

// CommitKVStore returns an initialized KVStore that persists
// the data to the named path.
func CommitKVStore(dbPath string) (weave.CommitKVStore, error) {
	// memory backed case, just for testing
	if dbPath == "" {
		return iavl.NewMemCommitStore(), nil
	}

	path, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "invalid database name: %s", dbPath)
	}

	// some callers add a ".db" suffix, which the backend appends itself
	path = strings.TrimSuffix(path, filepath.Ext(path))

	dir := filepath.Dir(path)
	name := filepath.Base(path)
	return iavl.NewCommitStore(dir, name)
}
