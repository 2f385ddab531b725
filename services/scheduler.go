package services

import (
	"sync"
	"time"

	"github.com/acornsoft/pocha-backend/utils"
)

// Scheduler runs the background jobs on fixed intervals. Each job carries its
// own non-reentrant guard so an overrunning cycle (a slow bank fetch) is
// skipped, never run concurrently with itself.
type Scheduler struct {
	reconciler *PaymentReconciler
	waitlist   *WaitlistService

	syncInterval  time.Duration
	sweepInterval time.Duration

	reconcileMu sync.Mutex
	sweepMu     sync.Mutex

	stop chan struct{}
	wg   sync.WaitGroup
}

func NewScheduler(reconciler *PaymentReconciler, waitlist *WaitlistService, syncInterval time.Duration) *Scheduler {
	return &Scheduler{
		reconciler:    reconciler,
		waitlist:      waitlist,
		syncInterval:  syncInterval,
		sweepInterval: time.Minute,
		stop:          make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(2)
	go s.loop(s.syncInterval, s.runReconcile)
	go s.loop(s.sweepInterval, s.runSweep)
	utils.InfoLogger.Printf("scheduler started (bank sync %v, waitlist sweep %v)", s.syncInterval, s.sweepInterval)
}

func (s *Scheduler) Stop() {
	close(s.stop)
	s.wg.Wait()
}

func (s *Scheduler) loop(interval time.Duration, job func()) {
	defer s.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			job()
		case <-s.stop:
			return
		}
	}
}

func (s *Scheduler) runReconcile() {
	if !s.reconcileMu.TryLock() {
		utils.InfoLogger.Println("payment reconciliation still running, skipping tick")
		return
	}
	defer s.reconcileMu.Unlock()

	// upstream failures stay inside the job; next tick retries
	if err := s.reconciler.Run(); err != nil {
		utils.ErrorLogger.Printf("payment reconciliation failed: %v", err)
	}
}

func (s *Scheduler) runSweep() {
	if !s.sweepMu.TryLock() {
		return
	}
	defer s.sweepMu.Unlock()

	if err := s.waitlist.SweepExpired(); err != nil {
		utils.ErrorLogger.Printf("waitlist sweep failed: %v", err)
	}
}
