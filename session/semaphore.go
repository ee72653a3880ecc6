package session

// semaphore is a channel-based counting semaphore bounding the number
// of jobs executing concurrently. Adapted from the channel-based
// Semaphore used to bound concurrent Kafka/bot dispatch work; here it
// bounds concurrent job-runner workers instead of message handlers.
// A capacity of 0 means unbounded: Acquire/Release become no-ops and
// callers run every job in its own goroutine.
type semaphore struct {
	ch chan struct{}
}

func newSemaphore(capacity int) *semaphore {
	if capacity <= 0 {
		return &semaphore{}
	}
	return &semaphore{ch: make(chan struct{}, capacity)}
}

func (s *semaphore) acquire() {
	if s.ch != nil {
		s.ch <- struct{}{}
	}
}

func (s *semaphore) release() {
	if s.ch != nil {
		<-s.ch
	}
}
