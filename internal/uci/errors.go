package uci

import (
	"errors"
	"fmt"
)

var (
	// ErrEngineSpawn is returned by Start when the executable cannot be run.
	ErrEngineSpawn = errors.New("engine spawn failed")
	// ErrEngineIO wraps any read or write failure. A session that returned it
	// once returns it for every later call.
	ErrEngineIO = errors.New("engine i/o failed")
	// ErrUnknownOption matches every *UnknownOptionError.
	ErrUnknownOption = errors.New("unknown engine option")
)

// UnknownOptionError reports an option the engine answered with text instead
// of silently accepting it.
type UnknownOptionError struct {
	Name  string
	Reply string
}

func (e *UnknownOptionError) Error() string {
	if e.Reply == "" {
		return fmt.Sprintf("unknown engine option %q", e.Name)
	}
	return fmt.Sprintf("unknown engine option %q: %s", e.Name, e.Reply)
}

func (e *UnknownOptionError) Is(target error) bool {
	return target == ErrUnknownOption
}
