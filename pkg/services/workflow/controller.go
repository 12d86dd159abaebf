package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var ErrNotRunning = errors.New("scheduled refresh not running")

type Controller interface {
	Start(ctx context.Context, interval time.Duration) error
	Cancel(ctx context.Context) error
}

type DefaultController struct {
	refresher Refresher

	mu         sync.Mutex
	cancelFunc context.CancelFunc
	runner     *Runner
}

func NewController(refresher Refresher) *DefaultController {
	return &DefaultController{refresher: refresher}
}

// Start launches a Runner in the background. A non-positive interval
// leaves scheduling disabled.
func (ctrl *DefaultController) Start(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return nil
	}

	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()

	if ctrl.runner != nil {
		return fmt.Errorf("scheduled refresh already running")
	}

	ctx, cancel := context.WithCancel(ctx)
	runner := NewRunner(ctrl.refresher, RunnerConfig{Interval: interval})
	ctrl.cancelFunc = cancel
	ctrl.runner = runner

	go runner.Run(ctx)
	return nil
}

func (ctrl *DefaultController) Cancel(_ context.Context) error {
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()

	if ctrl.runner == nil {
		return ErrNotRunning
	}
	ctrl.cancelFunc()
	<-ctrl.runner.Done()

	ctrl.runner = nil
	ctrl.cancelFunc = nil
	return nil
}

// Progress returns the running runner's progress channel, or nil.
func (ctrl *DefaultController) Progress() <-chan RunnerProgress {
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()

	if ctrl.runner == nil {
		return nil
	}
	return ctrl.runner.Progress()
}
