/*
Poller provides an encapsulation of methods provided by package sys which is a generalization of syscalls from different platforms.
*/
package poll

import (
	"sync/atomic"

	"github.com/moqsien/processes/logger"
	"github.com/panjf2000/ants/v2"

	"github.com/moqsien/sxnet/iface"
	"github.com/moqsien/sxnet/sys"
	"github.com/moqsien/sxnet/utils"
	"github.com/moqsien/sxnet/utils/errs"
	"github.com/moqsien/sxnet/utils/queue"
)

type Poller struct {
	pollFd     int             // poll file descriptor
	pollEvFd   int             // poll event file descriptor
	priorTasks queue.TaskQueue // tasks with priority
	tasks      queue.TaskQueue // tasks
	toTrigger  int32           // atomic number to trigger tasks
	Pool       *ants.Pool      // goroutine pool for blocking work, optional
}

func (that *Poller) GetFd() int {
	return that.pollFd
}

func (that *Poller) GetPollEvFd() int {
	return that.pollEvFd
}

func New(pool ...*ants.Pool) (p *Poller, err error) {
	p = new(Poller)
	p.pollFd, p.pollEvFd, err = sys.CreatePoll()
	if err != nil {
		p = nil
		return
	}
	p.priorTasks = queue.NewQueue()
	p.tasks = queue.NewQueue()
	if len(pool) > 0 {
		p.Pool = pool[0]
	}
	return
}

func (that *Poller) trigger() (err error) {
	if atomic.CompareAndSwapInt32(&that.toTrigger, 0, 1) {
		err = sys.Trigger(that.pollFd, that.pollEvFd)
	}
	return
}

// AddTask queues f to run on the poller's goroutine.
func (that *Poller) AddTask(f iface.PollTaskFunc, arg iface.PollTaskArg) (err error) {
	task := GetTask()
	task.Go, task.Arg = f, arg
	that.tasks.Enqueue(task)
	return that.trigger()
}

// AddPriorTask queues f ahead of every normal task.
func (that *Poller) AddPriorTask(f iface.PollTaskFunc, arg iface.PollTaskArg) (err error) {
	task := GetTask()
	task.Go, task.Arg = f, arg
	that.priorTasks.Enqueue(task)
	return that.trigger()
}

// Pending is the number of queued tasks.
func (that *Poller) Pending() int {
	return that.priorTasks.Len() + that.tasks.Len()
}

// Submit runs blocking work outside the poller, work hands results back with AddTask.
func (that *Poller) Submit(work func()) error {
	if that.Pool == nil {
		go work()
		return nil
	}
	return that.Pool.Submit(work)
}

func (that *Poller) runTask(task *PollTask) (err error) {
	switch err = task.Go(task.Arg); err {
	case nil:
	case errs.ErrEngineShutdown, errs.ErrAcceptSocket:
	default:
		logger.Warningf("error occurs in user-defined function, %v", err)
		err = nil
	}
	PutTask(task)
	return
}

func (that *Poller) runTasks() error {
	for t := that.priorTasks.Dequeue(); t != nil; t = that.priorTasks.Dequeue() {
		if err := that.runTask(t.(*PollTask)); err != nil {
			return err
		}
	}

	for i := 0; i < iface.MaxTasks; i++ {
		t := that.tasks.Dequeue()
		if t == nil {
			break
		}
		if err := that.runTask(t.(*PollTask)); err != nil {
			return err
		}
	}

	atomic.StoreInt32(&that.toTrigger, 0)
	if !that.tasks.IsEmpty() || !that.priorTasks.IsEmpty() {
		return that.trigger()
	}
	return nil
}

// Start blocks in the wait loop until a callback or task returns a fatal error.
func (that *Poller) Start(callback iface.IPollCallback) error {
	return sys.WaitPoll(that.pollFd, that.pollEvFd, callback.Callback, that.runTasks, doWaitCallbackErr)
}

func doWaitCallbackErr(err error) error {
	switch err {
	case nil:
		return nil
	case errs.ErrAcceptSocket, errs.ErrEngineShutdown:
		return err
	default:
		logger.Warningf("Error occurs in eventloop: %v", err)
		return nil
	}
}

func (that *Poller) Close() error {
	if err := utils.SysError("pollfd_close", sys.CloseFd(that.pollFd)); err != nil {
		return err
	}
	if that.pollFd != that.pollEvFd {
		return utils.SysError("pollEvFd_close", sys.CloseFd(that.pollEvFd))
	}
	return nil
}

func (that *Poller) AddReadWrite(fd iface.IFd) error {
	return sys.AddReadWrite(that.pollFd, fd.GetFd())
}

func (that *Poller) AddRead(fd iface.IFd) error {
	return sys.AddRead(that.pollFd, fd.GetFd())
}

func (that *Poller) AddWrite(fd iface.IFd) error {
	return sys.AddWrite(that.pollFd, fd.GetFd())
}

func (that *Poller) ModReadWrite(fd iface.IFd) error {
	return sys.ModReadWrite(that.pollFd, fd.GetFd())
}

func (that *Poller) ModRead(fd iface.IFd) error {
	return sys.ModRead(that.pollFd, fd.GetFd())
}

func (that *Poller) ModWrite(fd iface.IFd) error {
	return sys.ModWrite(that.pollFd, fd.GetFd())
}

func (that *Poller) RemoveFd(fd iface.IFd) error {
	return sys.UnRegister(that.pollFd, fd.GetFd())
}
