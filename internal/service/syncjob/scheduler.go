package syncjob

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kapu/handheld-deals-go/internal/constants"
)

// Job: 스케줄러가 실행하는 잡 단위. 모든 잡은 명시적 now를 받는다.
type Job interface {
	Run(ctx context.Context, now time.Time) error
}

// JobName: 잡 식별자 (수동 트리거 API에서도 사용)
type JobName string

const (
	JobDeals     JobName = "deals"
	JobEstimator JobName = "estimator"
	JobStaleness JobName = "staleness"
	JobMetadata  JobName = "metadata"
	JobCompat    JobName = "compat"
)

type scheduledJob struct {
	name     JobName
	job      Job
	interval time.Duration
	ticker   *time.Ticker
}

// Scheduler: 동기화 잡들을 각자의 주기로 실행하는 스케줄러.
// 잡 실행이 끝날 때마다 모니터링 하트비트를 보낸다.
type Scheduler struct {
	jobs      []*scheduledJob
	heartbeat *Heartbeat
	logger    *slog.Logger
	stopCh    chan struct{}
	wg        sync.WaitGroup
	runMu     sync.Mutex // 동일 잡의 동시 실행 방지
	running   map[JobName]bool
}

// NewScheduler: 동기화 스케줄러를 생성한다.
func NewScheduler(heartbeat *Heartbeat, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		heartbeat: heartbeat,
		logger:    logger,
		stopCh:    make(chan struct{}),
		running:   make(map[JobName]bool),
	}
}

// Register: 잡을 주기와 함께 등록한다. Start 이전에 호출해야 한다.
func (s *Scheduler) Register(name JobName, job Job, interval time.Duration) {
	s.jobs = append(s.jobs, &scheduledJob{name: name, job: job, interval: interval})
}

// Start: 등록된 잡마다 티커 루프를 시작한다.
func (s *Scheduler) Start(ctx context.Context) {
	for _, sj := range s.jobs {
		sj.ticker = time.NewTicker(sj.interval)
		s.wg.Add(1)

		go func(sj *scheduledJob) {
			defer s.wg.Done()
			for {
				select {
				case <-sj.ticker.C:
					s.runJob(ctx, sj.name, sj.job)
				case <-s.stopCh:
					return
				case <-ctx.Done():
					return
				}
			}
		}(sj)

		s.logger.Info("sync_job_scheduled",
			slog.String("job", string(sj.name)),
			slog.Duration("interval", sj.interval))
	}
}

// Stop: 모든 티커 루프를 정지하고 종료를 기다린다.
func (s *Scheduler) Stop() {
	close(s.stopCh)
	for _, sj := range s.jobs {
		if sj.ticker != nil {
			sj.ticker.Stop()
		}
	}
	s.wg.Wait()
	s.logger.Info("sync_scheduler_stopped")
}

// Trigger: 잡을 즉시 실행한다. (관리자 수동 트리거)
func (s *Scheduler) Trigger(ctx context.Context, name JobName) error {
	for _, sj := range s.jobs {
		if sj.name == name {
			return s.runJob(ctx, sj.name, sj.job)
		}
	}
	return fmt.Errorf("unknown sync job: %s", name)
}

// JobNames: 등록된 잡 이름 목록
func (s *Scheduler) JobNames() []JobName {
	names := make([]JobName, 0, len(s.jobs))
	for _, sj := range s.jobs {
		names = append(names, sj.name)
	}
	return names
}

func (s *Scheduler) runJob(ctx context.Context, name JobName, job Job) error {
	s.runMu.Lock()
	if s.running[name] {
		s.runMu.Unlock()
		s.logger.Warn("sync_job_already_running", slog.String("job", string(name)))
		return fmt.Errorf("job %s is already running", name)
	}
	s.running[name] = true
	s.runMu.Unlock()

	defer func() {
		s.runMu.Lock()
		s.running[name] = false
		s.runMu.Unlock()
	}()

	runCtx, cancel := context.WithTimeout(ctx, constants.RequestTimeout.SyncJob)
	defer cancel()

	now := time.Now().UTC()
	s.logger.Info("sync_job_started", slog.String("job", string(name)))

	err := job.Run(runCtx, now)
	if err != nil {
		s.logger.Error("sync_job_failed",
			slog.String("job", string(name)),
			slog.Any("error", err))
	}

	if s.heartbeat != nil {
		s.heartbeat.Ping(runCtx, string(name))
	}
	return err
}
