package starlark

import (
	"fmt"
	"log/slog"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Evaluator runs configuration scripts. It is safe for concurrent use.
type Evaluator struct {
	pool        *ThreadPool
	predeclared starlark.StringDict
	logger      *slog.Logger
}

// NewEvaluator creates an evaluator with the given predeclared globals.
// Output of print() is sent to logger at debug level.
func NewEvaluator(predeclared starlark.StringDict, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Evaluator{
		pool:        NewThreadPool(0, 0),
		predeclared: predeclared,
		logger:      logger,
	}
}

// EvalConfig executes src and returns the dict bound to the config global.
func (e *Evaluator) EvalConfig(filename string, src []byte) (map[string]any, error) {
	thread := e.pool.Get(filename, func(msg string) {
		e.logger.Debug("starlark print", slog.String("file", filename), slog.String("msg", msg))
	})
	defer e.pool.Put(thread)

	globals, err := starlark.ExecFileOptions(&syntax.FileOptions{}, thread, filename, src, e.predeclared)
	if err != nil {
		return nil, &EvalError{File: filename, Err: err}
	}

	value, ok := globals[ConfigGlobal]
	if !ok {
		return nil, &EvalError{File: filename, Err: fmt.Errorf("script does not assign %q", ConfigGlobal)}
	}
	dict, ok := value.(*starlark.Dict)
	if !ok {
		return nil, &EvalError{File: filename, Err: fmt.Errorf("%q must be a dict, got %s", ConfigGlobal, value.Type())}
	}

	out, err := ToGo(dict)
	if err != nil {
		return nil, &EvalError{File: filename, Err: err}
	}
	return out.(map[string]any), nil
}

// EvalError represents a failure to evaluate a configuration script.
type EvalError struct {
	File string
	Err  error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

func (e *EvalError) Unwrap() error {
	return e.Err
}
