package provision

import (
	"context"
	"sync"
)

type runCall struct {
	Command string
	Args    []string
}

// fakeRunner records every command and fails the ones listed in failOn
type fakeRunner struct {
	mu     sync.Mutex
	calls  []runCall
	failOn map[int]error
}

func (f *fakeRunner) Run(_ context.Context, command string, args ...string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, runCall{Command: command, Args: args})
	if err, ok := f.failOn[len(f.calls)-1]; ok {
		return []byte("ERROR 1045 (28000): Access denied"), err
	}
	return nil, nil
}

// fakeInstaller stands in for the framework; onNewSite mimics its side effects
type fakeInstaller struct {
	params    []NewSiteParams
	err       error
	onNewSite func(params NewSiteParams)
}

func (f *fakeInstaller) NewSite(_ context.Context, params NewSiteParams) error {
	f.params = append(f.params, params)
	if f.err != nil {
		return f.err
	}
	if f.onNewSite != nil {
		f.onNewSite(params)
	}
	return nil
}
