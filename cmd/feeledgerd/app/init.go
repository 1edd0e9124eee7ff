package feeledgerd

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/iov-one/feeledger/codec"
	"github.com/iov-one/feeledger/crypto"
	"github.com/iov-one/feeledger/errors"
	"github.com/iov-one/feeledger/weave"
	"github.com/iov-one/feeledger/x/feetoken"
	"github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

// DefaultFeeValue is the percentage charged by a freshly generated ledger.
const DefaultFeeValue = 5

// GenInitOptions produces genesis options deploying the token code and
// constructing one ledger proxy owned by a single account, to use for
// dev mode.
//
// Arguments are: [symbol [owner-address]]. Without an owner a new key is
// generated and printed.
func GenInitOptions(args []string) (json.RawMessage, error) {
	symbol := "FEE"
	if len(args) > 0 {
		symbol = args[0]
	}

	var owner weave.Address
	if len(args) > 1 {
		addr, err := weave.ParseAddress(args[1])
		if err != nil {
			return nil, errors.Wrap(err, "owner")
		}
		owner = addr
	} else {
		addr, keys, err := GenerateKey()
		if err != nil {
			return nil, err
		}
		owner = addr
		fmt.Println(keys)
	}

	initMsg := &feetoken.InitializeMsg{
		Name:         symbol + " Ledger",
		Symbol:       symbol,
		Owner:        owner,
		FeeRecipient: owner,
		FeeValue:     DefaultFeeValue,
	}
	if err := initMsg.Validate(); err != nil {
		return nil, err
	}
	rawInit, err := codec.MarshalJSON(weave.Msg(initMsg))
	if err != nil {
		return nil, err
	}

	opts := map[string]interface{}{
		"proxy": map[string]interface{}{
			"code": []string{feetoken.CodeV1},
			"instances": []interface{}{
				map[string]interface{}{
					"deployer":       owner,
					"implementation": feetoken.CodeV1,
					"init":           json.RawMessage(rawInit),
				},
			},
		},
	}
	return json.MarshalIndent(opts, "", "  ")
}

// GenerateApp is used to create a stub for server/start.go command
func GenerateApp(home string, logger log.Logger, debug bool) (types.Application, error) {
	// db goes in a subdir, but "" -> "" for memdb
	var dbPath string
	if home != "" {
		dbPath = filepath.Join(home, "feeledger.db")
	}

	authFn := Authenticator()
	ctrl := Controller(authFn)
	application, err := Application("feeledgerd", Stack(authFn, ctrl), TxDecoder, ctrl, dbPath, debug)
	if err != nil {
		return nil, err
	}
	application.WithLogger(logger)
	return application, nil
}

type output struct {
	Pubkey *crypto.PublicKey  `json:"pub_key"`
	Secret *crypto.PrivateKey `json:"secret"`
}

// GenerateKey returns the address of a new public key,
// along with a json representation of the keys.
func GenerateKey() (weave.Address, string, error) {
	privKey := crypto.GenPrivKeyEd25519()
	pubKey := privKey.PublicKey()

	out := output{Pubkey: pubKey, Secret: privKey}
	keys, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, "", err
	}
	return pubKey.Address(), string(keys), nil
}
