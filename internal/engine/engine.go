// Package engine is the service-facing orchestrator for bidding sessions.
// It serializes all mutations for a session behind a per-session lock:
// validate, apply, resolve the proxy counter-bid and apply it again inside
// one critical section, then persist and publish after the commit.
// Cross-session operations run fully in parallel.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"nightbid/internal/auctionerrors"
	"nightbid/internal/autobid"
	"nightbid/internal/events"
	"nightbid/internal/models"
	"nightbid/internal/pricing"
	"nightbid/internal/repository"
	"nightbid/internal/session"
	"nightbid/internal/settlement"
	"nightbid/internal/validation"
	"nightbid/utils"
)

// ParticipantParams identifies one party at session creation.
type ParticipantParams struct {
	ParticipantID string
	DisplayName   string
}

// CreateSessionParams describes a new session. Both participants are fixed
// at creation and the deadline is absolute; no action resets it.
type CreateSessionParams struct {
	ListingID    string
	ParticipantA ParticipantParams
	ParticipantB ParticipantParams
	ExpiresAt    time.Time
}

// BidResult is the structured answer to a PlaceBid request. Validation
// failures are carried here, not as Go errors; the error return is reserved
// for lookup failures and invariant violations.
type BidResult struct {
	Accepted   bool
	Bid        *models.Bid
	AutoBid    *models.Bid
	Validation validation.Result
}

// sessionEntry pairs a session with its exclusive lock. The lock is the
// serialization point: every mutation and consistent read goes through it.
type sessionEntry struct {
	mu   sync.Mutex
	sess *models.Session
}

// Engine orchestrates all bidding sessions in the process.
type Engine struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry

	store repository.SessionStore
	pub   events.Publisher
	now   func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the wall-clock source, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an engine backed by the given store and publisher.
func NewEngine(store repository.SessionStore, pub events.Publisher, opts ...Option) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		sessions: make(map[string]*sessionEntry),
		store:    store,
		pub:      pub,
		now:      time.Now,
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Close stops all expiration watchers and waits for them to exit.
func (e *Engine) Close() {
	e.cancel()
	e.wg.Wait()
}

// LoadActiveSessions restores active sessions from the store after a restart
// and re-arms their expiration watchers.
func (e *Engine) LoadActiveSessions() error {
	sessions, err := e.store.ListActiveSessions()
	if err != nil {
		return fmt.Errorf("engine: failed to load active sessions: %w", err)
	}

	for i := range sessions {
		sess := sessions[i]
		entry := &sessionEntry{sess: &sess}

		e.mu.Lock()
		e.sessions[sess.SessionID] = entry
		e.mu.Unlock()

		e.startWatcher(entry)
	}

	utils.Info("engine: restored active sessions", map[string]any{"count": len(sessions)})
	return nil
}

// CreateSession registers a new active session and arms its expiration
// watcher.
func (e *Engine) CreateSession(params CreateSessionParams) (models.Session, error) {
	if params.ParticipantA.ParticipantID == "" || params.ParticipantB.ParticipantID == "" ||
		params.ParticipantA.ParticipantID == params.ParticipantB.ParticipantID {
		return models.Session{}, fmt.Errorf("engine: create session: %w", auctionerrors.ErrUnknownParticipant)
	}
	now := e.now()
	if !params.ExpiresAt.After(now) {
		return models.Session{}, fmt.Errorf("engine: create session: deadline %s is not in the future: %w",
			params.ExpiresAt.Format(time.RFC3339), auctionerrors.ErrSessionEnded)
	}

	sess := &models.Session{
		SessionID: utils.GenerateID(),
		ListingID: params.ListingID,
		Participants: [2]models.Participant{
			{ParticipantID: params.ParticipantA.ParticipantID, DisplayName: params.ParticipantA.DisplayName},
			{ParticipantID: params.ParticipantB.ParticipantID, DisplayName: params.ParticipantB.DisplayName},
		},
		Status:       models.StatusActive,
		MaxRounds:    models.MaxRoundsPerParticipant,
		IncrementPct: models.MinIncrementPercent,
		CreatedAt:    now,
		ExpiresAt:    params.ExpiresAt,
	}

	entry := &sessionEntry{sess: sess}
	e.mu.Lock()
	e.sessions[sess.SessionID] = entry
	e.mu.Unlock()

	e.persist(sess)
	e.startWatcher(entry)

	utils.Info("engine: session created", map[string]any{
		"session_id": sess.SessionID,
		"listing_id": sess.ListingID,
		"expires_at": sess.ExpiresAt.Format(time.RFC3339),
	})
	return sess.Clone(), nil
}

// PlaceBid validates and applies a human bid, resolving at most one proxy
// counter-bid for the opponent. Both bids commit as one atomic unit; the
// corresponding events publish back-to-back after the commit.
func (e *Engine) PlaceBid(sessionID, bidderID string, amount int64) (BidResult, error) {
	entry, err := e.entry(sessionID)
	if err != nil {
		return BidResult{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := e.now()
	e.settleIfPastDeadlineLocked(entry, now)

	sess := entry.sess
	if sess.ParticipantByID(bidderID) == nil {
		return BidResult{}, fmt.Errorf("engine: place bid on session %s: %w", sessionID, auctionerrors.ErrUnknownParticipant)
	}

	res := validation.Validate(sess, amount, bidderID, now)
	if !res.Accepted {
		return BidResult{Validation: res}, nil
	}

	// The increment in force for this bid; the counter-bid reuses it.
	var increment int64
	if high := sess.CurrentHigh(); high != nil {
		increment = pricing.MinimumIncrement(high.Amount)
	} else {
		increment = pricing.MinimumIncrement(amount)
	}

	bid := models.Bid{
		BidID:         utils.GenerateID(),
		SessionID:     sess.SessionID,
		ParticipantID: bidderID,
		Amount:        amount,
		Origin:        models.OriginHuman,
		Round:         sess.BidCountFor(bidderID) + 1,
		CreatedAt:     now,
	}
	if err := session.ApplyBid(sess, bid); err != nil {
		// Validation passed against this same snapshot, so a failure here
		// means the serialization discipline was bypassed.
		utils.Error("engine: invariant violation applying validated bid", map[string]any{
			"session_id": sess.SessionID,
			"bid_id":     bid.BidID,
			"error":      err.Error(),
		})
		return BidResult{}, fmt.Errorf("engine: apply bid on session %s: %w", sessionID, err)
	}

	auto := autobid.Resolve(sess, bid, increment, utils.GenerateID(), now)
	if auto != nil {
		if err := session.ApplyBid(sess, *auto); err != nil {
			utils.Error("engine: invariant violation applying counter-bid", map[string]any{
				"session_id": sess.SessionID,
				"bid_id":     auto.BidID,
				"error":      err.Error(),
			})
			auto = nil
		}
	}

	e.persist(sess)

	snapshot := sess.Clone()
	e.pub.Publish(sess.SessionID, events.TypeBidPlaced, events.BidPlaced{Bid: bid, Session: snapshot})
	if auto != nil {
		e.pub.Publish(sess.SessionID, events.TypeBidAutoBid, events.BidAutoBid{
			Bid:              *auto,
			TriggeredByBidID: bid.BidID,
			Session:          snapshot,
		})
	}

	return BidResult{Accepted: true, Bid: &bid, AutoBid: auto, Validation: res}, nil
}

// SetProxyCeiling records a participant's auto-bid maximum.
func (e *Engine) SetProxyCeiling(sessionID, bidderID string, maxAmount int64) (models.Session, error) {
	entry, err := e.entry(sessionID)
	if err != nil {
		return models.Session{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := e.now()
	e.settleIfPastDeadlineLocked(entry, now)

	sess := entry.sess
	if err := validation.ValidateProxyCeiling(sess, bidderID, maxAmount, now); err != nil {
		return models.Session{}, fmt.Errorf("engine: set proxy ceiling on session %s: %w", sessionID, err)
	}
	if err := session.SetProxyCeiling(sess, bidderID, maxAmount); err != nil {
		return models.Session{}, fmt.Errorf("engine: set proxy ceiling on session %s: %w", sessionID, err)
	}

	e.persist(sess)
	e.pub.Publish(sess.SessionID, events.TypeParticipantUpdated, events.ParticipantUpdated{
		Participant: *sess.ParticipantByID(bidderID),
		ChangeType:  events.ChangeProxyCeilingSet,
	})

	return sess.Clone(), nil
}

// Withdraw cancels a session on behalf of a participant. Only valid while
// the session is active and the participant was never outbid.
func (e *Engine) Withdraw(sessionID, bidderID string) (models.Session, error) {
	entry, err := e.entry(sessionID)
	if err != nil {
		return models.Session{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := e.now()
	e.settleIfPastDeadlineLocked(entry, now)

	sess := entry.sess
	if err := validation.ValidateWithdrawal(sess, bidderID, now); err != nil {
		return models.Session{}, fmt.Errorf("engine: withdraw from session %s: %w", sessionID, err)
	}
	if err := session.Cancel(sess, bidderID, now); err != nil {
		return models.Session{}, fmt.Errorf("engine: withdraw from session %s: %w", sessionID, err)
	}

	e.persist(sess)
	e.pub.Publish(sess.SessionID, events.TypeParticipantUpdated, events.ParticipantUpdated{
		Participant: *sess.ParticipantByID(bidderID),
		ChangeType:  events.ChangeWithdrawn,
	})
	e.publishEnded(sess)

	utils.Info("engine: session cancelled by withdrawal", map[string]any{
		"session_id":     sess.SessionID,
		"participant_id": bidderID,
	})
	return sess.Clone(), nil
}

// Finalize explicitly completes a session using the current high bid as the
// winning bid.
func (e *Engine) Finalize(sessionID string) (models.Session, error) {
	entry, err := e.entry(sessionID)
	if err != nil {
		return models.Session{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := e.now()
	e.settleIfPastDeadlineLocked(entry, now)

	sess := entry.sess
	if sess.Status.IsTerminal() {
		return models.Session{}, fmt.Errorf("engine: finalize session %s: %w", sessionID, auctionerrors.ErrSessionEnded)
	}
	if err := session.Finalize(sess, now); err != nil {
		return models.Session{}, fmt.Errorf("engine: finalize session %s: %w", sessionID, err)
	}

	e.persist(sess)
	e.publishEnded(sess)

	return sess.Clone(), nil
}

// GetSessionSnapshot returns a consistent deep copy of the session.
func (e *Engine) GetSessionSnapshot(sessionID string) (models.Session, error) {
	entry, err := e.entry(sessionID)
	if err != nil {
		return models.Session{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.sess.Clone(), nil
}

func (e *Engine) entry(sessionID string) (*sessionEntry, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	entry, ok := e.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("engine: session %s: %w", sessionID, auctionerrors.ErrSessionNotFound)
	}
	return entry, nil
}

// settleIfPastDeadlineLocked terminates a session whose deadline has passed
// before the watcher fired. Called with the entry lock held, at the start of
// every inbound operation, so a late bid can never slip past the deadline.
func (e *Engine) settleIfPastDeadlineLocked(entry *sessionEntry, now time.Time) {
	sess := entry.sess
	if sess.Status != models.StatusActive || now.Before(sess.ExpiresAt) {
		return
	}

	if err := session.Expire(sess, now); err != nil {
		utils.Error("engine: failed to settle expired session", map[string]any{
			"session_id": sess.SessionID,
			"error":      err.Error(),
		})
		return
	}

	e.persist(sess)
	e.publishEnded(sess)

	utils.Info("engine: session settled at deadline", map[string]any{
		"session_id": sess.SessionID,
		"status":     string(sess.Status),
	})
}

// persist writes the snapshot to the store. Persistence is write-behind:
// a failed save never rolls back a committed mutation.
func (e *Engine) persist(sess *models.Session) {
	if err := e.store.SaveSession(sess.Clone()); err != nil {
		utils.Error("engine: failed to persist session", map[string]any{
			"session_id": sess.SessionID,
			"error":      err.Error(),
		})
	}
}

// publishEnded emits the session.ended event for any terminal transition.
// Winner fields are populated only for completed sessions.
func (e *Engine) publishEnded(sess *models.Session) {
	payload := events.SessionEnded{Session: sess.Clone()}

	if sess.Status == models.StatusCompleted {
		out, err := settlement.DetermineOutcome(sess)
		if err != nil {
			utils.Error("engine: failed to resolve outcome for ended session", map[string]any{
				"session_id": sess.SessionID,
				"error":      err.Error(),
			})
		} else {
			payload.WinnerID = out.Winner.ParticipantID
			payload.LoserID = out.Loser.ParticipantID
			payload.WinningAmount = out.WinningBid.Amount
			payload.Compensation = out.Compensation
			payload.PlatformShare = out.PlatformShare
		}
	}

	e.pub.Publish(sess.SessionID, events.TypeSessionEnded, payload)
}
