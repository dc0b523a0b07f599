package repository

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"nightbid/internal/auctionerrors"
	model "nightbid/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// sessionRow is the persisted shape of a session snapshot. Participant
// columns are flattened since every session has exactly two.
type sessionRow struct {
	SessionID     string `gorm:"primaryKey"`
	ListingID     string `gorm:"index"`
	Status        string `gorm:"index"`
	MaxRounds     int
	IncrementPct  int
	CreatedAt     time.Time
	ExpiresAt     time.Time
	EndedAt       *time.Time
	ParticipantA  string
	DisplayNameA  string
	ProxyCeilingA *int64
	ParticipantB  string
	DisplayNameB  string
	ProxyCeilingB *int64
	WinnerID      string
	WinnerAmount  int64
	LoserAmount   int64
}

func (sessionRow) TableName() string { return "bidding_sessions" }

// bidRow is one history entry; Position preserves arrival order.
type bidRow struct {
	BidID         string `gorm:"primaryKey"`
	SessionID     string `gorm:"index"`
	ParticipantID string
	Amount        int64
	Origin        string
	Round         int
	Position      int
	CreatedAt     time.Time
}

func (bidRow) TableName() string { return "bidding_session_bids" }

// SQLiteStore is a durable SessionStore backed by SQLite through gorm.
type SQLiteStore struct {
	db *gorm.DB
}

// NewSQLiteStore opens (or creates) the database file and migrates the
// schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create DB directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&sessionRow{}, &bidRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// SaveSession upserts the session row and appends any history entries not
// yet persisted. Bids are immutable, so existing rows are never rewritten.
func (s *SQLiteStore) SaveSession(sess model.Session) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(toSessionRow(sess)).Error; err != nil {
			return fmt.Errorf("save session %s: %w", sess.SessionID, err)
		}

		var persisted int64
		if err := tx.Model(&bidRow{}).Where("session_id = ?", sess.SessionID).Count(&persisted).Error; err != nil {
			return fmt.Errorf("count bids for session %s: %w", sess.SessionID, err)
		}

		for i := int(persisted); i < len(sess.History); i++ {
			b := sess.History[i]
			row := bidRow{
				BidID:         b.BidID,
				SessionID:     b.SessionID,
				ParticipantID: b.ParticipantID,
				Amount:        b.Amount,
				Origin:        string(b.Origin),
				Round:         b.Round,
				Position:      i,
				CreatedAt:     b.CreatedAt,
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("save bid %s: %w", b.BidID, err)
			}
		}
		return nil
	})
}

// GetSession loads a session snapshot with its full ordered history.
func (s *SQLiteStore) GetSession(sessionID string) (model.Session, error) {
	var row sessionRow
	err := s.db.First(&row, "session_id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Session{}, fmt.Errorf("get session %s: %w", sessionID, auctionerrors.ErrSessionNotFound)
	}
	if err != nil {
		return model.Session{}, fmt.Errorf("get session %s: %w", sessionID, err)
	}

	var bids []bidRow
	if err := s.db.Where("session_id = ?", sessionID).Order("position asc").Find(&bids).Error; err != nil {
		return model.Session{}, fmt.Errorf("get bids for session %s: %w", sessionID, err)
	}

	return fromRows(row, bids), nil
}

// ListActiveSessions loads every session still in active status.
func (s *SQLiteStore) ListActiveSessions() ([]model.Session, error) {
	var rows []sessionRow
	if err := s.db.Where("status = ?", string(model.StatusActive)).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list active sessions: %w", err)
	}

	sessions := make([]model.Session, 0, len(rows))
	for _, row := range rows {
		var bids []bidRow
		if err := s.db.Where("session_id = ?", row.SessionID).Order("position asc").Find(&bids).Error; err != nil {
			return nil, fmt.Errorf("get bids for session %s: %w", row.SessionID, err)
		}
		sessions = append(sessions, fromRows(row, bids))
	}
	return sessions, nil
}

// DeleteSession removes a session and its history.
func (s *SQLiteStore) DeleteSession(sessionID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("session_id = ?", sessionID).Delete(&sessionRow{})
		if res.Error != nil {
			return fmt.Errorf("delete session %s: %w", sessionID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("delete session %s: %w", sessionID, auctionerrors.ErrSessionNotFound)
		}
		return tx.Where("session_id = ?", sessionID).Delete(&bidRow{}).Error
	})
}

func toSessionRow(sess model.Session) *sessionRow {
	row := &sessionRow{
		SessionID:     sess.SessionID,
		ListingID:     sess.ListingID,
		Status:        string(sess.Status),
		MaxRounds:     sess.MaxRounds,
		IncrementPct:  sess.IncrementPct,
		CreatedAt:     sess.CreatedAt,
		ExpiresAt:     sess.ExpiresAt,
		EndedAt:       sess.EndedAt,
		ParticipantA:  sess.Participants[0].ParticipantID,
		DisplayNameA:  sess.Participants[0].DisplayName,
		ProxyCeilingA: sess.Participants[0].ProxyCeiling,
		ParticipantB:  sess.Participants[1].ParticipantID,
		DisplayNameB:  sess.Participants[1].DisplayName,
		ProxyCeilingB: sess.Participants[1].ProxyCeiling,
	}
	for _, p := range sess.Participants {
		if p.Outcome == nil {
			continue
		}
		if p.Outcome.Won {
			row.WinnerID = p.ParticipantID
			row.WinnerAmount = p.Outcome.Amount
		} else {
			row.LoserAmount = p.Outcome.Amount
		}
	}
	return row
}

func fromRows(row sessionRow, bids []bidRow) model.Session {
	sess := model.Session{
		SessionID: row.SessionID,
		ListingID: row.ListingID,
		Participants: [2]model.Participant{
			{ParticipantID: row.ParticipantA, DisplayName: row.DisplayNameA, ProxyCeiling: row.ProxyCeilingA},
			{ParticipantID: row.ParticipantB, DisplayName: row.DisplayNameB, ProxyCeiling: row.ProxyCeilingB},
		},
		Status:       model.SessionStatus(row.Status),
		MaxRounds:    row.MaxRounds,
		IncrementPct: row.IncrementPct,
		CreatedAt:    row.CreatedAt,
		ExpiresAt:    row.ExpiresAt,
		EndedAt:      row.EndedAt,
	}

	for _, b := range bids {
		sess.History = append(sess.History, model.Bid{
			BidID:         b.BidID,
			SessionID:     b.SessionID,
			ParticipantID: b.ParticipantID,
			Amount:        b.Amount,
			Origin:        model.BidOrigin(b.Origin),
			Round:         b.Round,
			CreatedAt:     b.CreatedAt,
		})
	}
	if n := len(sess.History); n > 0 {
		sess.HighBid = &sess.History[n-1]
		for i := range sess.Participants {
			p := &sess.Participants[i]
			for j := n - 1; j >= 0; j-- {
				if sess.History[j].ParticipantID == p.ParticipantID {
					amount := sess.History[j].Amount
					at := sess.History[j].CreatedAt
					p.CurrentBid = &amount
					p.LastBidAt = &at
					break
				}
			}
		}
	}

	if row.WinnerID != "" {
		for i := range sess.Participants {
			p := &sess.Participants[i]
			if p.ParticipantID == row.WinnerID {
				p.Outcome = &model.Outcome{Won: true, Amount: row.WinnerAmount}
			} else {
				p.Outcome = &model.Outcome{Won: false, Amount: row.LoserAmount}
			}
		}
	}

	return sess
}
