package driver

import (
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/you-not-fish/kaleido/internal/syntax"
)

// Backend defines and executes units. Errors it returns abort only the
// unit at hand.
type Backend interface {
	DeclareOrDefine(u syntax.Unit) error
	ExecuteAnonymous(fn *syntax.FuncDecl) (float64, error)
}

// ErrTooManyErrors stops a run once Config.MaxErrors units have failed.
var ErrTooManyErrors = errors.New("too many errors")

// Config controls a Driver.
type Config struct {
	MaxErrors int                // stop after this many failed units; 0 means never
	Log       logrus.FieldLogger // discards if nil
}

// Driver runs units from a source through a backend, accumulating
// declarations in its Session.
type Driver struct {
	sess    *Session
	backend Backend
	rep     Reporter
	log     logrus.FieldLogger
	max     int

	errors int // failed units in the current Run
	units  int // units processed in the current Run
}

// New returns a driver. The session, backend and reporter are required.
func New(sess *Session, backend Backend, rep Reporter, cfg Config) *Driver {
	d := &Driver{
		sess:    sess,
		backend: backend,
		rep:     rep,
		log:     cfg.Log,
		max:     cfg.MaxErrors,
	}
	if d.log == nil {
		l := logrus.New()
		l.Out = io.Discard
		d.log = l
	}
	return d
}

// Session returns the driver's session.
func (d *Driver) Session() *Session { return d.sess }

// Errors returns the number of units that failed in the last Run.
func (d *Driver) Errors() int { return d.errors }

// Units returns the number of units processed in the last Run.
func (d *Driver) Units() int { return d.units }

// Run processes every unit in src. Failing units are reported and skipped.
// It returns nil at the end of input, the wrapped error if reading fails,
// or ErrTooManyErrors once the error limit is reached.
func (d *Driver) Run(filename string, src io.Reader) error {
	d.errors, d.units = 0, 0
	p := syntax.NewParser(filename, src, d.sess.Ops)
	log := d.log.WithField("file", filename)

	for {
		u, err := p.ParseUnit()
		if err != nil {
			d.fail(err)
			if p.ReadErr() != nil {
				return err
			}
			if d.limitReached() {
				return ErrTooManyErrors
			}
			p.Sync()
			continue
		}
		if u == nil {
			log.WithFields(logrus.Fields{"units": d.units, "errors": d.errors}).Debug("end of input")
			return nil
		}
		d.units++
		d.handle(u, log)
		if d.limitReached() {
			return ErrTooManyErrors
		}
	}
}

func (d *Driver) handle(u syntax.Unit, log logrus.FieldLogger) {
	switch u := u.(type) {
	case *syntax.FuncDecl, *syntax.ExternDecl:
		proto := syntax.PrototypeOf(u)
		fields := logrus.Fields{"unit": kindOf(u), "name": proto.Name, "arity": proto.Arity()}
		if proto.IsOperator() {
			fields["op"] = proto.Op
			if proto.Kind == syntax.BinaryProto {
				fields["prec"] = proto.Prec
			}
		}
		if fd, ok := u.(*syntax.FuncDecl); ok {
			fields["calls"] = syntax.Calls(fd.Body)
		}
		fresh := d.sess.Register(proto)
		log.WithFields(fields).WithField("new", fresh).Debug("registered prototype")

		if err := d.backend.DeclareOrDefine(u); err != nil {
			d.fail(err)
			return
		}
		d.rep.Declared(u)

	case *syntax.TopLevelExpr:
		v, err := d.backend.ExecuteAnonymous(u.Fn)
		if err != nil {
			d.fail(err)
			return
		}
		log.WithFields(logrus.Fields{"unit": kindOf(u), "pos": u.Pos().String()}).Debug("executed")
		d.rep.Result(u.Pos(), v)

	default:
		d.fail(fmt.Errorf("%s: unexpected unit %T", u.Pos(), u))
	}
}

func (d *Driver) fail(err error) {
	d.errors++
	d.log.WithError(err).Debug("unit failed")
	d.rep.Error(err)
}

func (d *Driver) limitReached() bool {
	return d.max > 0 && d.errors >= d.max
}

func kindOf(u syntax.Unit) string {
	switch u.(type) {
	case *syntax.FuncDecl:
		return "def"
	case *syntax.ExternDecl:
		return "extern"
	case *syntax.TopLevelExpr:
		return "expr"
	}
	return "unknown"
}
