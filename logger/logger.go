package logger

import (
	"go.uber.org/zap"
)

// L is the process-wide logger. Defaults to a no-op logger so tests and
// helper binaries work without calling Init.
var L *zap.SugaredLogger = zap.NewNop().Sugar()

func Init(debug bool) error {
	var (
		l   *zap.Logger
		err error
	)
	if debug {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return err
	}
	L = l.Sugar()
	return nil
}

func Sync() {
	_ = L.Sync()
}
