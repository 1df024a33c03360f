package engine

import (
	"runtime"
	"sync"

	"github.com/moqsien/processes/logger"
	"github.com/panjf2000/ants/v2"

	"github.com/moqsien/sxnet/balancer"
	"github.com/moqsien/sxnet/eloop"
	"github.com/moqsien/sxnet/iface"
	"github.com/moqsien/sxnet/poll"
	"github.com/moqsien/sxnet/utils/errs"
)

type Engine struct {
	Ln        iface.IListener
	Balancer  iface.IBalancer
	MainLoop  *eloop.Eloop
	Handler   iface.IEventHandler
	Options   *iface.Options
	Pool      *ants.Pool
	IsClosing bool
	subLoops  []*eloop.Eloop
	lock      sync.Mutex
	wg        sync.WaitGroup
	once      sync.Once
}

// LoopStats is a snapshot of one sub loop.
type LoopStats struct {
	Index int   `json:"index"`
	Conns int32 `json:"conns"`
	Tasks int   `json:"tasks"`
}

func New() *Engine {
	return &Engine{}
}

func normalize(opts *iface.Options) *iface.Options {
	if opts == nil {
		opts = &iface.Options{}
	}
	if opts.NumOfLoops <= 0 {
		opts.NumOfLoops = runtime.NumCPU()
	}
	if opts.ReadBuffer <= 0 {
		opts.ReadBuffer = iface.DefaultReadBuffer
	}
	return opts
}

func shutdownTask(_ iface.PollTaskArg) error {
	return errs.ErrEngineShutdown
}

func (that *Engine) setup() (err error) {
	if that.Options.TaskPoolSize > 0 {
		if that.Pool, err = ants.NewPool(that.Options.TaskPoolSize); err != nil {
			return err
		}
	}
	that.Balancer = balancer.New(that.Options.LoadBalancer)

	var p *poll.Poller
	if !that.Ln.IsUDP() {
		for i := 0; i < that.Options.NumOfLoops; i++ {
			if p, err = poll.New(that.Pool); err != nil {
				return err
			}
			loop := eloop.New(i, that.Ln, p, that.Handler, that.Balancer, that.Options)
			that.subLoops = append(that.subLoops, loop)
			that.Balancer.Register(loop)
		}
	}
	if p, err = poll.New(that.Pool); err != nil {
		return err
	}
	that.MainLoop = eloop.New(-1, that.Ln, p, that.Handler, that.Balancer, that.Options)
	return nil
}

func (that *Engine) release() {
	for _, loop := range that.subLoops {
		if err := loop.Poller.Close(); err != nil {
			logger.Warningf("failed to close poller of loop %d: %v", loop.Index, err)
		}
	}
	if that.MainLoop != nil {
		_ = that.MainLoop.Poller.Close()
	}
	if that.Pool != nil {
		that.Pool.Release()
	}
}

// Serve runs the event loops on ln and blocks until Stop is called or the
// main loop fails to accept.
func (that *Engine) Serve(handler iface.IEventHandler, ln iface.IListener, opts *iface.Options) (err error) {
	that.lock.Lock()
	if that.IsClosing {
		that.lock.Unlock()
		return errs.ErrEngineShutdown
	}
	that.Ln, that.Handler, that.Options = ln, handler, normalize(opts)
	if err = that.setup(); err != nil {
		that.lock.Unlock()
		that.release()
		return err
	}
	that.lock.Unlock()
	defer that.release()

	for _, loop := range that.subLoops {
		that.wg.Add(1)
		go func(l *eloop.Eloop) {
			defer that.wg.Done()
			if e := l.ActivateSubLoop(that.Options.LockOSThread); e != nil && e != errs.ErrEngineShutdown {
				logger.Errorf("event loop %d stopped: %v", l.Index, e)
			}
		}(loop)
	}
	logger.Println("engine is serving on", ln.Addr(), "with", len(that.subLoops), "loops")

	err = that.MainLoop.ActivateMainLoop(that.Options.LockOSThread)
	_ = that.Stop()
	that.wg.Wait()
	if e := ln.Close(); e != nil {
		logger.Warningf("failed to close listener: %v", e)
	}
	if err == errs.ErrEngineShutdown {
		err = nil
	}
	return
}

// Stop asks every loop to shut down, Serve closes the listener and returns
// once all loops have exited.
func (that *Engine) Stop() (err error) {
	that.once.Do(func() {
		that.lock.Lock()
		defer that.lock.Unlock()
		that.IsClosing = true
		for _, loop := range that.subLoops {
			if e := loop.Poller.AddPriorTask(shutdownTask, nil); e != nil {
				logger.Warningf("failed to stop loop %d: %v", loop.Index, e)
			}
		}
		if that.MainLoop != nil {
			err = that.MainLoop.Poller.AddPriorTask(shutdownTask, nil)
		}
	})
	return
}

// Stats reports the number of connections of each sub loop.
func (that *Engine) Stats() (stats []LoopStats) {
	that.lock.Lock()
	defer that.lock.Unlock()
	stats = make([]LoopStats, 0, len(that.subLoops))
	for _, loop := range that.subLoops {
		stats = append(stats, LoopStats{Index: loop.Index, Conns: loop.GetConnCount(), Tasks: loop.Poller.Pending()})
	}
	return
}
