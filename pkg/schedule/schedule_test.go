package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	logrusTest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const interval = 10 * time.Second

type runRecorder struct {
	clock clockwork.FakeClock
	runs  chan time.Time

	// work is how long each run takes.
	work time.Duration
}

func (r *runRecorder) run(context.Context) {
	r.runs <- r.clock.Now()
	if r.work > 0 {
		r.clock.Advance(r.work)
	}
}

func startScheduler(t *testing.T, work time.Duration) (*runRecorder, context.CancelFunc, chan error) {
	return startSchedulerEvery(t, interval, work)
}

func startSchedulerEvery(t *testing.T, every, work time.Duration) (*runRecorder, context.CancelFunc, chan error) {
	clock := clockwork.NewFakeClock()
	recorder := &runRecorder{clock: clock, runs: make(chan time.Time, 10), work: work}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- New(clock, every).Run(ctx, recorder.run)
	}()
	t.Cleanup(cancel)
	return recorder, cancel, done
}

func TestRunFiresImmediatelyThenEveryInterval(t *testing.T) {
	recorder, cancel, done := startScheduler(t, 0)
	start := recorder.clock.Now()

	assert.Equal(t, start, <-recorder.runs)

	for i := 1; i <= 3; i++ {
		recorder.clock.BlockUntil(1)
		recorder.clock.Advance(interval)
		assert.Equal(t, start.Add(time.Duration(i)*interval), <-recorder.runs)
	}

	recorder.clock.BlockUntil(1)
	cancel()
	assert.Equal(t, context.Canceled, <-done)
}

func TestRunNotFiredBeforeInterval(t *testing.T) {
	recorder, _, _ := startScheduler(t, 0)
	<-recorder.runs

	recorder.clock.BlockUntil(1)
	recorder.clock.Advance(interval - time.Second)
	select {
	case <-recorder.runs:
		t.Fatal("ran before the interval elapsed")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRunSkipsOverrunBoundaries(t *testing.T) {
	hook := logrusTest.NewGlobal()
	defer hook.Reset()

	// The first run takes two and a half intervals, so the boundaries at 1x
	// and 2x are skipped and the next run happens at 3x.
	recorder, cancel, _ := startScheduler(t, interval*5/2)
	start := <-recorder.runs

	recorder.clock.BlockUntil(1)
	recorder.work = 0

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, int64(2), entry.Data["skipped"])

	recorder.clock.Advance(interval / 2)
	assert.Equal(t, start.Add(3*interval), <-recorder.runs)
	cancel()
}

func TestRunStopsWhenRunCancels(t *testing.T) {
	clock := clockwork.NewFakeClock()
	ctx, cancel := context.WithCancel(context.Background())

	var runs int
	err := New(clock, interval).Run(ctx, func(context.Context) {
		runs++
		cancel()
	})
	assert.Equal(t, context.Canceled, err)
	assert.Equal(t, 1, runs)
}

func TestNewRaisesShortIntervals(t *testing.T) {
	hook := logrusTest.NewGlobal()
	defer hook.Reset()

	for _, short := range []time.Duration{0, -time.Minute, time.Millisecond} {
		s := New(clockwork.NewFakeClock(), short)
		assert.Equal(t, MinInterval, s.interval, "interval %v", short)

		entry := hook.LastEntry()
		require.NotNil(t, entry)
		assert.Equal(t, logrus.WarnLevel, entry.Level)
	}

	hook.Reset()
	assert.Equal(t, interval, New(clockwork.NewFakeClock(), interval).interval)
	assert.Empty(t, hook.AllEntries())
}

func TestRunZeroIntervalOverrun(t *testing.T) {
	// Each run outlasts the raised interval, which exercises the skip
	// arithmetic with a zero configured interval.
	recorder, cancel, done := startSchedulerEvery(t, 0, 5*time.Second/2)
	start := <-recorder.runs

	recorder.clock.BlockUntil(1)
	recorder.work = 0
	recorder.clock.Advance(MinInterval / 2)
	assert.Equal(t, start.Add(3*MinInterval), <-recorder.runs)

	recorder.clock.BlockUntil(1)
	cancel()
	assert.Equal(t, context.Canceled, <-done)
}
