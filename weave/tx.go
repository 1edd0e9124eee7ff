package weave

import (
	"reflect"
	"regexp"

	"github.com/iov-one/feeledger/errors"
)

// Msg is one requested state transition. It carries no authentication,
// the enclosing Tx does.
type Msg interface {
	// Path routes the message to its handler. It has the form
	// "<extension>/<action>", for example "feetoken/transfer".
	Path() string
	// Validate checks the message on its own, without reading state.
	Validate() error
}

// Tx is what a client submits: a message plus whatever the decorators
// need, such as signatures.
type Tx interface {
	GetMsg() (Msg, error)
}

// TxDecoder parses the raw bytes of CheckTx and DeliverTx.
type TxDecoder func(raw []byte) (Tx, error)

var pathFormat = regexp.MustCompile(`^[a-zA-Z0-9_]+/[a-zA-Z0-9_]+$`)

// IsValidPath reports whether path has the "<extension>/<action>" form.
func IsValidPath(path string) bool {
	return pathFormat.MatchString(path)
}

// GetPath is the route of the tx message, or "(missing)" for log lines of
// a tx without one.
func GetPath(tx Tx) string {
	if msg, err := tx.GetMsg(); err == nil && msg != nil {
		return msg.Path()
	}
	return "(missing)"
}

// LoadMsg copies the tx message into dst, which must point to a value of
// the message type, and validates it.
func LoadMsg(tx Tx, dst interface{}) error {
	msg, err := tx.GetMsg()
	if err != nil {
		return errors.Wrap(err, "cannot get transaction message")
	}
	if err := assignMsg(msg, dst); err != nil {
		return err
	}
	return errors.Wrap(msg.Validate(), "invalid message")
}

func assignMsg(msg Msg, dst interface{}) error {
	if msg == nil {
		return errors.Wrap(errors.ErrMsg, "no message")
	}
	target := reflect.ValueOf(dst)
	if target.Kind() != reflect.Ptr || target.IsNil() {
		return errors.Wrapf(errors.ErrType, "destination must be a non nil pointer, got %T", dst)
	}
	val := reflect.ValueOf(msg)
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return errors.Wrap(errors.ErrMsg, "nil message")
		}
		val = val.Elem()
	}
	if want := target.Elem().Type(); val.Type() != want {
		return errors.Wrapf(errors.ErrType, "want %s message, got %T", want, msg)
	}
	target.Elem().Set(val)
	return nil
}
