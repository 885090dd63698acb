package app

import "go.uber.org/zap"

// Policy says what happens to an error at a call site.
type Policy int

const (
	// SurfaceToUser returns the error to the caller.
	SurfaceToUser Policy = iota
	// BestEffort logs the error at debug level and drops it.
	BestEffort
)

func (p Policy) String() string {
	if p == BestEffort {
		return "best_effort"
	}
	return "surface_to_user"
}

func (a *App) handle(p Policy, op string, err error) error {
	if err == nil {
		return nil
	}
	if p == BestEffort {
		a.logger.Debug("ignored failure", zap.String("op", op), zap.Error(err))
		return nil
	}
	return err
}
