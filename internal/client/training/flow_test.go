package training

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/yungbote/pulseboard-backend/internal/client/dashapi"
	"github.com/yungbote/pulseboard-backend/internal/domain/engagement"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// gatedTrainer blocks every call until the test hands it a result.
type gatedTrainer struct {
	mu    sync.Mutex
	calls []engagement.LookbackPeriod
	gates []chan dashapi.TrainResult
	start chan struct{}
}

func newGatedTrainer() *gatedTrainer {
	return &gatedTrainer{start: make(chan struct{}, 16)}
}

func (g *gatedTrainer) TrainEngagementModel(ctx context.Context, lookback engagement.LookbackPeriod) dashapi.TrainResult {
	gate := make(chan dashapi.TrainResult, 1)
	g.mu.Lock()
	g.calls = append(g.calls, lookback)
	g.gates = append(g.gates, gate)
	g.mu.Unlock()
	g.start <- struct{}{}
	return <-gate
}

func (g *gatedTrainer) release(t *testing.T, i int, res dashapi.TrainResult) {
	t.Helper()
	g.mu.Lock()
	defer g.mu.Unlock()
	require.Less(t, i, len(g.gates))
	g.gates[i] <- res
}

func (g *gatedTrainer) awaitCall(t *testing.T) {
	t.Helper()
	select {
	case <-g.start:
	case <-time.After(2 * time.Second):
		t.Fatal("trainer was never called")
	}
}

func model(id string, samples int) *engagement.Model {
	return &engagement.Model{ModelID: id, SampleSize: samples, LookbackPeriod: engagement.Lookback90}
}

func waitSettled(t *testing.T, f *Flow) Snapshot {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	snap, err := f.Wait(ctx)
	require.NoError(t, err)
	return snap
}

func TestSuccessReplacesModel(t *testing.T) {
	tr := newGatedTrainer()
	f := New(tr)
	defer f.Close()

	ok, err := f.Trigger(context.Background(), engagement.Lookback90)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, StatePending, f.Snapshot().State)

	tr.awaitCall(t)
	tr.release(t, 0, dashapi.TrainResult{Kind: dashapi.TrainSuccess, Model: model("m1", 10)})
	snap := waitSettled(t, f)
	assert.Equal(t, StateSuccess, snap.State)
	assert.Equal(t, "m1", snap.Model.ModelID)

	ok, _ = f.Trigger(context.Background(), engagement.Lookback90)
	require.True(t, ok)
	tr.awaitCall(t)
	tr.release(t, 1, dashapi.TrainResult{Kind: dashapi.TrainSuccess, Model: model("m2", 20)})
	snap = waitSettled(t, f)
	if diff := cmp.Diff(model("m2", 20), snap.Model); diff != "" {
		t.Fatalf("displayed model mismatch (-want +got):\n%s", diff)
	}
}

func TestTriggerWhilePendingIsNoop(t *testing.T) {
	tr := newGatedTrainer()
	f := New(tr)
	defer f.Close()

	ok, _ := f.Trigger(context.Background(), engagement.Lookback30)
	require.True(t, ok)
	tr.awaitCall(t)

	ok, err := f.Trigger(context.Background(), engagement.Lookback365)
	require.NoError(t, err)
	assert.False(t, ok)

	tr.release(t, 0, dashapi.TrainResult{Kind: dashapi.TrainEmpty})
	snap := waitSettled(t, f)
	assert.Equal(t, engagement.Lookback30, snap.Lookback)

	tr.mu.Lock()
	defer tr.mu.Unlock()
	assert.Equal(t, []engagement.LookbackPeriod{engagement.Lookback30}, tr.calls)
}

func TestInvalidLookbackRejected(t *testing.T) {
	f := New(newGatedTrainer())
	defer f.Close()
	ok, err := f.Trigger(context.Background(), engagement.LookbackPeriod(60))
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Equal(t, StateIdle, f.Snapshot().State)
}

func TestEmptyClearsDisplayedModel(t *testing.T) {
	tr := newGatedTrainer()
	f := New(tr)
	defer f.Close()

	_, _ = f.Trigger(context.Background(), engagement.Lookback90)
	tr.awaitCall(t)
	tr.release(t, 0, dashapi.TrainResult{Kind: dashapi.TrainSuccess, Model: model("m1", 10)})
	waitSettled(t, f)

	_, _ = f.Trigger(context.Background(), engagement.Lookback30)
	tr.awaitCall(t)
	assert.Equal(t, "m1", f.Snapshot().Model.ModelID, "model stays visible while pending")
	tr.release(t, 1, dashapi.TrainResult{Kind: dashapi.TrainEmpty})
	snap := waitSettled(t, f)
	assert.Equal(t, StateEmpty, snap.State)
	assert.Nil(t, snap.Model)
	assert.NoError(t, snap.Err)
}

func TestSuccessWithoutModelIsEmpty(t *testing.T) {
	tr := newGatedTrainer()
	f := New(tr)
	defer f.Close()

	_, _ = f.Trigger(context.Background(), engagement.Lookback90)
	tr.awaitCall(t)
	tr.release(t, 0, dashapi.TrainResult{Kind: dashapi.TrainSuccess})
	snap := waitSettled(t, f)
	assert.Equal(t, StateEmpty, snap.State)
	assert.Nil(t, snap.Model)
}

func TestZeroResultIsError(t *testing.T) {
	tr := newGatedTrainer()
	f := New(tr)
	defer f.Close()

	_, _ = f.Trigger(context.Background(), engagement.Lookback90)
	tr.awaitCall(t)
	tr.release(t, 0, dashapi.TrainResult{})
	snap := waitSettled(t, f)
	assert.Equal(t, StateError, snap.State)
	assert.Error(t, snap.Err)
}

// serveModel answers the training endpoint with body and returns a client
// for it.
func serveModel(t *testing.T, body string) *dashapi.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			LookbackPeriod int `json:"lookbackPeriod"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 90, req.LookbackPeriod)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	hc := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	return dashapi.New(srv.URL, dashapi.WithHTTPClient(hc))
}

const trainedBody = `{"model":{
	"modelId":"m1","trainedAt":"2024-05-01T12:00:00Z","lookbackPeriod":90,"sampleSize":40,
	"platforms":%s,
	"contentPatterns":{"highEngagement":[{"kind":"contentType","value":"reel"}],"lowEngagement":[{"kind":"contentType","value":"text"}]},
	"timingPatterns":{"bestWindows":[{"dayOfWeek":"tuesday","startHour":18,"endHour":19}],"worstWindows":[{"dayOfWeek":"sunday","startHour":6,"endHour":7}],"timezone":"UTC"},
	"audiencePatterns":{"affinities":[{"platform":"instagram"}]},
	"performanceFactors":[{"factor":"hashtagCount","impact":0.3}]
}}`

func TestTrainedPlatformsDisplayedUniqueInOrder(t *testing.T) {
	cases := []struct {
		name      string
		platforms string
		want      []string
	}{
		{"three platforms", `["instagram","twitter","tiktok"]`, []string{"instagram", "twitter", "tiktok"}},
		{"repeated platform", `["instagram","twitter","instagram","tiktok"]`, []string{"instagram", "twitter", "tiktok"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := New(serveModel(t, fmt.Sprintf(trainedBody, tc.platforms)))
			defer f.Close()

			ok, err := f.Trigger(context.Background(), engagement.Lookback90)
			require.NoError(t, err)
			require.True(t, ok)
			snap := waitSettled(t, f)
			require.Equal(t, StateSuccess, snap.State, "err: %v", snap.Err)
			if diff := cmp.Diff(tc.want, snap.Model.Platforms); diff != "" {
				t.Fatalf("platforms mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNullModelResponseIsEmpty(t *testing.T) {
	f := New(serveModel(t, `{"model":null}`))
	defer f.Close()

	_, _ = f.Trigger(context.Background(), engagement.Lookback90)
	snap := waitSettled(t, f)
	assert.Equal(t, StateEmpty, snap.State)
	assert.Nil(t, snap.Model)
}

func TestIncompleteModelResponseIsError(t *testing.T) {
	f := New(serveModel(t, `{"model":{"modelId":"m1","sampleSize":3}}`))
	defer f.Close()

	_, _ = f.Trigger(context.Background(), engagement.Lookback90)
	snap := waitSettled(t, f)
	assert.Equal(t, StateError, snap.State)
	assert.ErrorIs(t, snap.Err, engagement.ErrIncomplete)
	assert.Nil(t, snap.Model)
}

func TestErrorKeepsPriorModel(t *testing.T) {
	tr := newGatedTrainer()
	f := New(tr)
	defer f.Close()

	_, _ = f.Trigger(context.Background(), engagement.Lookback90)
	tr.awaitCall(t)
	tr.release(t, 0, dashapi.TrainResult{Kind: dashapi.TrainSuccess, Model: model("m1", 10)})
	waitSettled(t, f)

	boom := errors.New("connection reset")
	_, _ = f.Trigger(context.Background(), engagement.Lookback90)
	tr.awaitCall(t)
	tr.release(t, 1, dashapi.TrainResult{Kind: dashapi.TrainFailure, Err: boom})
	snap := waitSettled(t, f)
	assert.Equal(t, StateError, snap.State)
	assert.ErrorIs(t, snap.Err, boom)
	require.NotNil(t, snap.Model)
	assert.Equal(t, "m1", snap.Model.ModelID)

	// error is re-entrant
	ok, _ := f.Trigger(context.Background(), engagement.Lookback90)
	assert.True(t, ok)
	tr.awaitCall(t)
	tr.release(t, 2, dashapi.TrainResult{Kind: dashapi.TrainEmpty})
	waitSettled(t, f)
}

func TestResetDiscardsLateResponse(t *testing.T) {
	tr := newGatedTrainer()
	f := New(tr)
	defer f.Close()

	_, _ = f.Trigger(context.Background(), engagement.Lookback90)
	tr.awaitCall(t)
	f.Reset()
	assert.Equal(t, StateIdle, f.Snapshot().State)

	ok, _ := f.Trigger(context.Background(), engagement.Lookback180)
	require.True(t, ok)
	tr.awaitCall(t)

	// the stale first request resolves after the second was issued
	tr.release(t, 0, dashapi.TrainResult{Kind: dashapi.TrainSuccess, Model: model("stale", 1)})
	assert.Equal(t, StatePending, f.Snapshot().State)

	tr.release(t, 1, dashapi.TrainResult{Kind: dashapi.TrainSuccess, Model: model("fresh", 5)})
	snap := waitSettled(t, f)
	assert.Equal(t, "fresh", snap.Model.ModelID)
	assert.Equal(t, engagement.Lookback180, snap.Lookback)
}

func TestCloseDiscardsResolution(t *testing.T) {
	tr := newGatedTrainer()
	f := New(tr)

	var (
		mu   sync.Mutex
		seen []State
	)
	f.Subscribe(func(s Snapshot) {
		mu.Lock()
		seen = append(seen, s.State)
		mu.Unlock()
	})

	_, _ = f.Trigger(context.Background(), engagement.Lookback90)
	tr.awaitCall(t)
	f.Close()
	tr.release(t, 0, dashapi.TrainResult{Kind: dashapi.TrainSuccess, Model: model("late", 3)})

	_, err := f.Wait(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
	ok, _ := f.Trigger(context.Background(), engagement.Lookback90)
	assert.False(t, ok)

	// Close does not wait; give the trainer goroutine a moment before
	// checking that its result never surfaced.
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, StatePending, f.Snapshot().State)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []State{StatePending}, seen)
}

func TestSubscribersSeeOrderedTransitions(t *testing.T) {
	tr := newGatedTrainer()
	f := New(tr)
	defer f.Close()

	var (
		mu   sync.Mutex
		seen []State
	)
	unsub := f.Subscribe(func(s Snapshot) {
		mu.Lock()
		seen = append(seen, s.State)
		mu.Unlock()
	})

	_, _ = f.Trigger(context.Background(), engagement.Lookback90)
	tr.awaitCall(t)
	tr.release(t, 0, dashapi.TrainResult{Kind: dashapi.TrainFailure, Err: errors.New("500")})
	waitSettled(t, f)

	_, _ = f.Trigger(context.Background(), engagement.Lookback90)
	tr.awaitCall(t)
	tr.release(t, 1, dashapi.TrainResult{Kind: dashapi.TrainSuccess, Model: model("m1", 4)})
	waitSettled(t, f)

	unsub()
	f.Reset()

	mu.Lock()
	defer mu.Unlock()
	want := []State{StatePending, StateError, StatePending, StateSuccess}
	if diff := cmp.Diff(want, seen); diff != "" {
		t.Fatalf("transitions mismatch (-want +got):\n%s", diff)
	}
}

func TestWaitHonoursContext(t *testing.T) {
	tr := newGatedTrainer()
	f := New(tr)
	defer f.Close()

	_, _ = f.Trigger(context.Background(), engagement.Lookback90)
	tr.awaitCall(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := f.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	tr.release(t, 0, dashapi.TrainResult{Kind: dashapi.TrainEmpty})
	waitSettled(t, f)
}
