package session

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/minhvo/tiemao-backend/internal/app/model"
)

// TTL is how long a browser session survives without activity.
const TTL = 7 * 24 * time.Hour

// Store persists browser sessions in the sessions table.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// NewToken issues a fresh opaque session token.
func NewToken() string {
	return uuid.NewString()
}

// Load fetches the session payload for a token. Unknown or expired tokens
// yield empty data, so callers always get a usable session.
func (s *Store) Load(token string) (model.SessionData, error) {
	empty := model.SessionData{Cart: model.Cart{}}
	if token == "" {
		return empty, nil
	}

	var row model.Session
	err := s.db.First(&row, "token = ?", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return empty, nil
	}
	if err != nil {
		return empty, err
	}
	if time.Now().After(row.ExpiresAt) {
		return empty, nil
	}

	return row.Decode()
}

// Save upserts the session payload and refreshes its expiry.
func (s *Store) Save(token string, data model.SessionData) error {
	row := model.Session{
		Token:     token,
		ExpiresAt: time.Now().Add(TTL),
		UpdatedAt: time.Now(),
	}
	if err := row.Encode(data); err != nil {
		return err
	}

	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "expires_at", "updated_at"}),
	}).Create(&row).Error
}

// Delete removes a session row.
func (s *Store) Delete(token string) error {
	if token == "" {
		return nil
	}
	return s.db.Delete(&model.Session{}, "token = ?", token).Error
}

// PruneExpired deletes sessions past their expiry and returns the count.
func (s *Store) PruneExpired() (int64, error) {
	res := s.db.Delete(&model.Session{}, "expires_at < ?", time.Now())
	return res.RowsAffected, res.Error
}
