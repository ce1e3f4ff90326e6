package encryption

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

type poolTask struct {
	ctx  context.Context
	job  Job
	done chan poolResult
}

type poolResult struct {
	result *Result
	err    error
}

// Pool limits how many encryption jobs run at once so slow jobs do not hold
// up unrelated work. It is itself a Gateway.
//
// A job that a worker has picked up always runs to completion; the caller's
// context only matters while the job is still waiting for a free worker.
type Pool struct {
	next    Gateway
	workers int
	tasks   chan poolTask
	logger  *zap.Logger

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewPool создаёт пул из workers обработчиков поверх next
func NewPool(next Gateway, workers int, logger *zap.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{
		next:     next,
		workers:  workers,
		tasks:    make(chan poolTask),
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start запускает обработчиков; пул останавливается по Stop или отмене ctx
func (p *Pool) Start(ctx context.Context) {
	p.logger.Info("Starting encryption pool", zap.Int("workers", p.workers))

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.runWorker(i)
	}

	go func() {
		select {
		case <-ctx.Done():
			p.closeStop()
		case <-p.stopChan:
		}
	}()
}

// Stop останавливает пул и ждёт завершения запущенных задач
func (p *Pool) Stop() {
	p.logger.Info("Stopping encryption pool")
	p.closeStop()
	p.wg.Wait()
}

func (p *Pool) closeStop() {
	p.stopOnce.Do(func() { close(p.stopChan) })
}

func (p *Pool) runWorker(id int) {
	defer p.wg.Done()

	for {
		select {
		case task := <-p.tasks:
			result, err := p.next.Encrypt(task.ctx, task.job)
			task.done <- poolResult{result: result, err: err}
		case <-p.stopChan:
			p.logger.Debug("Encryption worker stopped", zap.Int("worker", id))
			return
		}
	}
}

// Encrypt ждёт свободного обработчика и возвращает результат задачи
func (p *Pool) Encrypt(ctx context.Context, job Job) (*Result, error) {
	task := poolTask{
		// Запущенная задача не отменяется вместе с запросом
		ctx:  context.WithoutCancel(ctx),
		job:  job,
		done: make(chan poolResult, 1),
	}

	select {
	case p.tasks <- task:
	case <-ctx.Done():
		return nil, &Failure{ExitCode: -1, Err: fmt.Errorf("job %s not started: %w", job.ID, ctx.Err())}
	case <-p.stopChan:
		return nil, &Failure{ExitCode: -1, Err: ErrPoolStopped}
	}

	res := <-task.done
	return res.result, res.err
}
