package engine

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"nightbid/internal/auctionerrors"
	"nightbid/internal/events"
	"nightbid/internal/models"
	"nightbid/internal/repository"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

// fakeClock is a mutable wall-clock source for deadline tests.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(start time.Time) *fakeClock { return &fakeClock{t: start} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// recordingPublisher captures events in publish order.
type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	sessionID string
	eventType string
	payload   any
}

func (p *recordingPublisher) Publish(sessionID, eventType string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{sessionID: sessionID, eventType: eventType, payload: payload})
}

func (p *recordingPublisher) typesFor(sessionID string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, ev := range p.events {
		if ev.sessionID == sessionID {
			out = append(out, ev.eventType)
		}
	}
	return out
}

var testStart = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	engine *Engine
	clock  *fakeClock
	pub    *recordingPublisher
	store  *repository.MemoryStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	clock := newFakeClock(testStart)
	pub := &recordingPublisher{}
	store := repository.NewMemoryStore()
	eng := NewEngine(store, pub, WithClock(clock.Now))
	t.Cleanup(eng.Close)

	return &testEnv{engine: eng, clock: clock, pub: pub, store: store}
}

func (env *testEnv) createSession(t *testing.T) models.Session {
	t.Helper()

	sess, err := env.engine.CreateSession(CreateSessionParams{
		ListingID:    "listing1",
		ParticipantA: ParticipantParams{ParticipantID: "alice", DisplayName: "Alice"},
		ParticipantB: ParticipantParams{ParticipantID: "bob", DisplayName: "Bob"},
		ExpiresAt:    testStart.Add(time.Hour),
	})
	require.NoError(t, err)
	return sess
}

func TestEngine_CreateSession(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	sess := env.createSession(t)

	require.NotEmpty(t, sess.SessionID)
	require.Equal(t, models.StatusActive, sess.Status)
	require.Equal(t, models.MaxRoundsPerParticipant, sess.MaxRounds)
	require.Equal(t, models.MinIncrementPercent, sess.IncrementPct)

	stored, err := env.store.GetSession(sess.SessionID)
	require.NoError(t, err)
	require.Equal(t, sess.SessionID, stored.SessionID)

	t.Run("duplicate_participants_rejected", func(t *testing.T) {
		_, err := env.engine.CreateSession(CreateSessionParams{
			ParticipantA: ParticipantParams{ParticipantID: "x"},
			ParticipantB: ParticipantParams{ParticipantID: "x"},
			ExpiresAt:    testStart.Add(time.Hour),
		})
		require.Error(t, err)
	})

	t.Run("past_deadline_rejected", func(t *testing.T) {
		_, err := env.engine.CreateSession(CreateSessionParams{
			ParticipantA: ParticipantParams{ParticipantID: "a"},
			ParticipantB: ParticipantParams{ParticipantID: "b"},
			ExpiresAt:    testStart.Add(-time.Minute),
		})
		require.Error(t, err)
	})
}

// Mirrors the first behavioral fixture: standing high 3100 owned by bob,
// minimum increment 310.
func TestEngine_PlaceBid_ValidationFixture(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	sess := env.createSession(t)

	res, err := env.engine.PlaceBid(sess.SessionID, "bob", 3100)
	require.NoError(t, err)
	require.True(t, res.Accepted)

	t.Run("exactly_minimum_accepted", func(t *testing.T) {
		res, err := env.engine.PlaceBid(sess.SessionID, "alice", 3410)
		require.NoError(t, err)
		require.True(t, res.Accepted)
		require.Equal(t, int64(3410), res.Bid.Amount)
	})

	t.Run("below_high_rejected_with_both_errors", func(t *testing.T) {
		// High is now 3410 after the previous subtest; rebuild a fresh
		// session to keep the fixture values literal.
		env := newTestEnv(t)
		sess := env.createSession(t)
		_, err := env.engine.PlaceBid(sess.SessionID, "bob", 3100)
		require.NoError(t, err)

		res, err := env.engine.PlaceBid(sess.SessionID, "alice", 3000)
		require.NoError(t, err)
		require.False(t, res.Accepted)
		require.Len(t, res.Validation.Errors, 2)
		require.ErrorIs(t, res.Validation.Errors[0], auctionerrors.ErrBelowCurrentHigh)
		require.ErrorIs(t, res.Validation.Errors[1], auctionerrors.ErrBelowMinimumIncrement)
		require.Equal(t, int64(3410), res.Validation.MinimumNextBid)
		require.Equal(t, int64(6200), res.Validation.MaximumAllowed)

		res, err = env.engine.PlaceBid(sess.SessionID, "alice", 7000)
		require.NoError(t, err)
		require.False(t, res.Accepted)
		require.Len(t, res.Validation.Errors, 1)
		require.ErrorIs(t, res.Validation.Errors[0], auctionerrors.ErrExceedsReasonableCeiling)
	})
}

// Mirrors the proxy cascade fixture: bob holds the high at 3100 with ceiling
// 3500; alice bids 3410 (increment in force 310); the counter-bid is
// min(3410+310, 3500) = 3500.
func TestEngine_PlaceBid_AutoBidCascade(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	sess := env.createSession(t)

	_, err := env.engine.PlaceBid(sess.SessionID, "bob", 3100)
	require.NoError(t, err)
	_, err = env.engine.SetProxyCeiling(sess.SessionID, "bob", 3500)
	require.NoError(t, err)

	res, err := env.engine.PlaceBid(sess.SessionID, "alice", 3410)
	require.NoError(t, err)
	require.True(t, res.Accepted)
	require.NotNil(t, res.AutoBid)
	require.Equal(t, "bob", res.AutoBid.ParticipantID)
	require.Equal(t, int64(3500), res.AutoBid.Amount)
	require.Equal(t, models.OriginSystem, res.AutoBid.Origin)

	snap, err := env.engine.GetSessionSnapshot(sess.SessionID)
	require.NoError(t, err)
	require.Len(t, snap.History, 3)
	require.Equal(t, int64(3500), snap.CurrentHigh().Amount)

	// bid.placed and bid.autobid publish back-to-back, never torn.
	types := env.pub.typesFor(sess.SessionID)
	require.Equal(t, []string{
		events.TypeBidPlaced,
		events.TypeParticipantUpdated,
		events.TypeBidPlaced,
		events.TypeBidAutoBid,
	}, types)
}

// First bid against an empty session: the increment in force is 10% of the
// bid itself. alice bids 3300, bob's ceiling is 3500: min(3300+330, 3500).
func TestEngine_PlaceBid_AutoBidOnFirstBid(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	sess := env.createSession(t)

	_, err := env.engine.SetProxyCeiling(sess.SessionID, "bob", 3500)
	require.NoError(t, err)

	res, err := env.engine.PlaceBid(sess.SessionID, "alice", 3300)
	require.NoError(t, err)
	require.True(t, res.Accepted)
	require.NotNil(t, res.AutoBid)
	require.Equal(t, int64(3500), res.AutoBid.Amount)
}

// Even with both participants holding proxy ceilings, one human bid yields
// at most one synthetic counter-bid.
func TestEngine_PlaceBid_AutoBidNeverCascades(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	sess := env.createSession(t)

	_, err := env.engine.SetProxyCeiling(sess.SessionID, "alice", 9000)
	require.NoError(t, err)
	_, err = env.engine.SetProxyCeiling(sess.SessionID, "bob", 3500)
	require.NoError(t, err)

	res, err := env.engine.PlaceBid(sess.SessionID, "alice", 3300)
	require.NoError(t, err)
	require.True(t, res.Accepted)
	require.NotNil(t, res.AutoBid)

	snap, err := env.engine.GetSessionSnapshot(sess.SessionID)
	require.NoError(t, err)
	require.Len(t, snap.History, 2, "exactly one counter-bid per human bid")

	autoBids := 0
	for _, evType := range env.pub.typesFor(sess.SessionID) {
		if evType == events.TypeBidAutoBid {
			autoBids++
		}
	}
	require.Equal(t, 1, autoBids)
}

func TestEngine_PlaceBid_RoundCap(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	sess := env.createSession(t)

	amounts := []int64{1000, 1100, 1300, 1500, 1700, 1900}
	bidders := []string{"alice", "bob", "alice", "bob", "alice", "bob"}
	for i := range amounts {
		res, err := env.engine.PlaceBid(sess.SessionID, bidders[i], amounts[i])
		require.NoError(t, err)
		require.True(t, res.Accepted, "bid %d should be accepted", i)
	}

	res, err := env.engine.PlaceBid(sess.SessionID, "alice", 2100)
	require.NoError(t, err)
	require.False(t, res.Accepted)
	require.ErrorIs(t, res.Validation.Errors[0], auctionerrors.ErrRoundsExhausted)

	snap, err := env.engine.GetSessionSnapshot(sess.SessionID)
	require.NoError(t, err)
	require.Equal(t, 3, snap.BidCountFor("alice"))
	require.Equal(t, 3, snap.BidCountFor("bob"))
}

func TestEngine_PlaceBid_UnknownSessionAndParticipant(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	sess := env.createSession(t)

	_, err := env.engine.PlaceBid("nope", "alice", 1000)
	require.ErrorIs(t, err, auctionerrors.ErrSessionNotFound)

	_, err = env.engine.PlaceBid(sess.SessionID, "mallory", 1000)
	require.ErrorIs(t, err, auctionerrors.ErrUnknownParticipant)
}

func TestEngine_DeadlineSettlement(t *testing.T) {
	t.Parallel()

	t.Run("with_bid_completes", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		sess := env.createSession(t)

		_, err := env.engine.PlaceBid(sess.SessionID, "alice", 3100)
		require.NoError(t, err)

		env.clock.Advance(2 * time.Hour)

		// A bid arriving after the deadline but before the watcher fires is
		// rejected, and the session settles synchronously.
		res, err := env.engine.PlaceBid(sess.SessionID, "bob", 3500)
		require.NoError(t, err)
		require.False(t, res.Accepted)
		require.ErrorIs(t, res.Validation.Errors[0], auctionerrors.ErrSessionEnded)

		snap, err := env.engine.GetSessionSnapshot(sess.SessionID)
		require.NoError(t, err)
		require.Equal(t, models.StatusCompleted, snap.Status)
		require.True(t, snap.ParticipantByID("alice").Outcome.Won)
		require.Equal(t, int64(775), snap.ParticipantByID("bob").Outcome.Amount)

		types := env.pub.typesFor(sess.SessionID)
		require.Equal(t, events.TypeSessionEnded, types[len(types)-1])
	})

	t.Run("without_bids_expires", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		sess := env.createSession(t)

		env.clock.Advance(2 * time.Hour)

		_, err := env.engine.PlaceBid(sess.SessionID, "alice", 3100)
		require.NoError(t, err)

		snap, err := env.engine.GetSessionSnapshot(sess.SessionID)
		require.NoError(t, err)
		require.Equal(t, models.StatusExpired, snap.Status)
		require.Empty(t, snap.History)
	})
}

func TestEngine_WatcherFiresWithoutTraffic(t *testing.T) {
	t.Parallel()

	pub := &recordingPublisher{}
	store := repository.NewMemoryStore()
	eng := NewEngine(store, pub) // real clock
	t.Cleanup(eng.Close)

	sess, err := eng.CreateSession(CreateSessionParams{
		ListingID:    "listing1",
		ParticipantA: ParticipantParams{ParticipantID: "alice"},
		ParticipantB: ParticipantParams{ParticipantID: "bob"},
		ExpiresAt:    time.Now().Add(50 * time.Millisecond),
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		snap, err := eng.GetSessionSnapshot(sess.SessionID)
		return err == nil && snap.Status == models.StatusExpired
	}, 2*time.Second, 10*time.Millisecond)
}

func TestEngine_Withdraw(t *testing.T) {
	t.Parallel()

	t.Run("before_any_bid", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		sess := env.createSession(t)

		got, err := env.engine.Withdraw(sess.SessionID, "alice")
		require.NoError(t, err)
		require.Equal(t, models.StatusCancelled, got.Status)

		types := env.pub.typesFor(sess.SessionID)
		require.Equal(t, []string{events.TypeParticipantUpdated, events.TypeSessionEnded}, types)
	})

	t.Run("after_being_outbid_rejected", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		sess := env.createSession(t)

		_, err := env.engine.PlaceBid(sess.SessionID, "alice", 1000)
		require.NoError(t, err)
		_, err = env.engine.PlaceBid(sess.SessionID, "bob", 1100)
		require.NoError(t, err)

		_, err = env.engine.Withdraw(sess.SessionID, "alice")
		require.ErrorIs(t, err, auctionerrors.ErrInvalidWithdrawal)
	})

	t.Run("terminal_session_rejected", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		sess := env.createSession(t)

		_, err := env.engine.Withdraw(sess.SessionID, "alice")
		require.NoError(t, err)

		_, err = env.engine.Withdraw(sess.SessionID, "bob")
		require.ErrorIs(t, err, auctionerrors.ErrInvalidWithdrawal)
	})
}

func TestEngine_Finalize(t *testing.T) {
	t.Parallel()

	t.Run("with_high_bid", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		sess := env.createSession(t)

		_, err := env.engine.PlaceBid(sess.SessionID, "alice", 3100)
		require.NoError(t, err)

		got, err := env.engine.Finalize(sess.SessionID)
		require.NoError(t, err)
		require.Equal(t, models.StatusCompleted, got.Status)

		// Bids after finalize are rejected.
		res, err := env.engine.PlaceBid(sess.SessionID, "bob", 3500)
		require.NoError(t, err)
		require.False(t, res.Accepted)
		require.ErrorIs(t, res.Validation.Errors[0], auctionerrors.ErrSessionEnded)

		var ended events.SessionEnded
		for _, ev := range env.pub.events {
			if ev.eventType == events.TypeSessionEnded {
				ended = ev.payload.(events.SessionEnded)
			}
		}
		require.Equal(t, "alice", ended.WinnerID)
		require.Equal(t, "bob", ended.LoserID)
		require.Equal(t, int64(3100), ended.WinningAmount)
		require.Equal(t, int64(775), ended.Compensation)
		require.Equal(t, int64(2325), ended.PlatformShare)
	})

	t.Run("no_bids_rejected", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		sess := env.createSession(t)

		_, err := env.engine.Finalize(sess.SessionID)
		require.ErrorIs(t, err, auctionerrors.ErrNoBids)
	})
}

// Two bidders hammering one session concurrently must never produce a
// history that is not strictly increasing or that exceeds the round cap.
func TestEngine_ConcurrentBidders(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	sess := env.createSession(t)

	var wg sync.WaitGroup
	for _, bidder := range []string{"alice", "bob"} {
		bidder := bidder
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				amount := int64(1000 + i*500)
				_, err := env.engine.PlaceBid(sess.SessionID, bidder, amount)
				require.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	snap, err := env.engine.GetSessionSnapshot(sess.SessionID)
	require.NoError(t, err)

	for i := 1; i < len(snap.History); i++ {
		require.Greater(t, snap.History[i].Amount, snap.History[i-1].Amount,
			"history must be strictly increasing")
	}
	require.LessOrEqual(t, snap.BidCountFor("alice"), models.MaxRoundsPerParticipant)
	require.LessOrEqual(t, snap.BidCountFor("bob"), models.MaxRoundsPerParticipant)
}

// Cross-session operations proceed in parallel without shared state.
func TestEngine_SessionsAreIndependent(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	var sessions []models.Session
	for i := 0; i < 8; i++ {
		sessions = append(sessions, env.createSession(t))
	}

	var wg sync.WaitGroup
	for i := range sessions {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := env.engine.PlaceBid(sessions[i].SessionID, "alice", int64(1000+i))
			require.NoError(t, err)
			require.True(t, res.Accepted)
		}()
	}
	wg.Wait()

	for i := range sessions {
		snap, err := env.engine.GetSessionSnapshot(sessions[i].SessionID)
		require.NoError(t, err)
		require.Len(t, snap.History, 1)
		require.Equal(t, int64(1000+i), snap.CurrentHigh().Amount)
	}
}

// A store failure must not roll back a committed mutation; delivery to
// persistence is write-behind.
func TestEngine_StoreFailureDoesNotBlockCommit(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := repository.NewMockSessionStore(ctrl)
	mockStore.EXPECT().SaveSession(gomock.Any()).Return(errors.New("disk full")).AnyTimes()

	pub := &recordingPublisher{}
	eng := NewEngine(mockStore, pub, WithClock(newFakeClock(testStart).Now))
	t.Cleanup(eng.Close)

	sess, err := eng.CreateSession(CreateSessionParams{
		ListingID:    "listing1",
		ParticipantA: ParticipantParams{ParticipantID: "alice"},
		ParticipantB: ParticipantParams{ParticipantID: "bob"},
		ExpiresAt:    testStart.Add(time.Hour),
	})
	require.NoError(t, err)

	res, err := eng.PlaceBid(sess.SessionID, "alice", 3100)
	require.NoError(t, err)
	require.True(t, res.Accepted)

	snap, err := eng.GetSessionSnapshot(sess.SessionID)
	require.NoError(t, err)
	require.Len(t, snap.History, 1)
	require.Equal(t, []string{events.TypeBidPlaced}, pub.typesFor(sess.SessionID))
}

// Exercises the generated publisher mock with strict ordering.
func TestEngine_PublishOrderWithMock(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPub := events.NewMockPublisher(ctrl)
	store := repository.NewMemoryStore()
	eng := NewEngine(store, mockPub, WithClock(newFakeClock(testStart).Now))
	t.Cleanup(eng.Close)

	gomock.InOrder(
		mockPub.EXPECT().Publish(gomock.Any(), events.TypeParticipantUpdated, gomock.Any()),
		mockPub.EXPECT().Publish(gomock.Any(), events.TypeBidPlaced, gomock.Any()),
		mockPub.EXPECT().Publish(gomock.Any(), events.TypeBidAutoBid, gomock.Any()),
	)

	sess, err := eng.CreateSession(CreateSessionParams{
		ListingID:    "listing1",
		ParticipantA: ParticipantParams{ParticipantID: "alice"},
		ParticipantB: ParticipantParams{ParticipantID: "bob"},
		ExpiresAt:    testStart.Add(time.Hour),
	})
	require.NoError(t, err)

	_, err = eng.SetProxyCeiling(sess.SessionID, "bob", 3500)
	require.NoError(t, err)
	_, err = eng.PlaceBid(sess.SessionID, "alice", 3300)
	require.NoError(t, err)
}

func TestEngine_LoadActiveSessions(t *testing.T) {
	t.Parallel()

	store := repository.NewMemoryStore()
	clock := newFakeClock(testStart)
	pub := &recordingPublisher{}

	first := NewEngine(store, pub, WithClock(clock.Now))
	sess, err := first.CreateSession(CreateSessionParams{
		ListingID:    "listing1",
		ParticipantA: ParticipantParams{ParticipantID: "alice"},
		ParticipantB: ParticipantParams{ParticipantID: "bob"},
		ExpiresAt:    testStart.Add(time.Hour),
	})
	require.NoError(t, err)
	_, err = first.PlaceBid(sess.SessionID, "alice", 3100)
	require.NoError(t, err)
	first.Close()

	second := NewEngine(store, pub, WithClock(clock.Now))
	t.Cleanup(second.Close)
	require.NoError(t, second.LoadActiveSessions())

	snap, err := second.GetSessionSnapshot(sess.SessionID)
	require.NoError(t, err)
	require.Len(t, snap.History, 1)

	res, err := second.PlaceBid(sess.SessionID, "bob", 3500)
	require.NoError(t, err)
	require.True(t, res.Accepted)
}

func BenchmarkEngine_PlaceBid(b *testing.B) {
	pub := &recordingPublisher{}
	store := repository.NewMemoryStore()
	clock := newFakeClock(testStart)
	eng := NewEngine(store, pub, WithClock(clock.Now))
	defer eng.Close()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sess, err := eng.CreateSession(CreateSessionParams{
			ListingID:    fmt.Sprintf("listing-%d", i),
			ParticipantA: ParticipantParams{ParticipantID: "alice"},
			ParticipantB: ParticipantParams{ParticipantID: "bob"},
			ExpiresAt:    testStart.Add(time.Hour),
		})
		if err != nil {
			b.Fatal(err)
		}
		if _, err := eng.PlaceBid(sess.SessionID, "alice", 3100); err != nil {
			b.Fatal(err)
		}
	}
}
