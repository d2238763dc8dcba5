package app

// Op names an asynchronous operation.
type Op string

const (
	OpScan   Op = "scan"
	OpSearch Op = "search"
	OpImport Op = "import"
)

// Status is the lifecycle of an asynchronous operation.
type Status string

const (
	StatusIdle    Status = "IDLE"
	StatusLoading Status = "LOADING"
	StatusSuccess Status = "SUCCESS"
	StatusError   Status = "ERROR"
)

// Status reports the state of op and the error of its last failed run.
func (a *App) Status(op Op) (Status, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	st, ok := a.ops[op]
	if !ok {
		return StatusIdle, nil
	}
	return st, a.lastErr[op]
}

// begin moves op to LOADING, refusing a second concurrent run.
func (a *App) begin(op Op) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ops[op] == StatusLoading {
		return ErrBusy
	}
	a.ops[op] = StatusLoading
	delete(a.lastErr, op)
	return nil
}

// loading reports whether any operation is in flight. Callers hold a.mu.
func (a *App) loading() bool {
	for _, st := range a.ops {
		if st == StatusLoading {
			return true
		}
	}
	return false
}

// fail settles op as ERROR. Callers hold a.mu.
func (a *App) fail(op Op, err error) {
	a.ops[op] = StatusError
	a.lastErr[op] = err
}

// settle finishes op without touching the state.
func (a *App) settle(op Op, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		a.fail(op, err)
		return
	}
	a.ops[op] = StatusSuccess
}
