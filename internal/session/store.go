package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// ProfileTTL is the inactivity window after which a stored record is treated
// as absent on read.
const ProfileTTL = 365 * 24 * time.Hour

// MaxHistory bounds the per-conversant utterance history. Oldest entries are
// evicted first.
const MaxHistory = 6

// Clock supplies the current time. Tests inject a fake to control TTL expiry
// without real sleeps.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Context is the short-lived conversational state of one conversant.
type Context struct {
	LastTopic string
	History   []string
}

// EmptyProfile returns the base profile shape every stored profile is merged
// over.
func EmptyProfile() map[string]any {
	return map[string]any{
		"name":       nil,
		"kids":       []any{},
		"visit_date": nil,
		"preferences": map[string]any{
			"likes": []any{},
			"notes": []any{},
		},
		"last_park": "nn",
	}
}

// DeepMerge merges patch into base without mutating either. Nested maps merge
// recursively; every other value, lists included, is replaced wholesale.
// Applying the same patch twice yields the same result as applying it once.
func DeepMerge(base, patch map[string]any) map[string]any {
	merged := make(map[string]any, len(base)+len(patch))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range patch {
		patchMap, patchIsMap := v.(map[string]any)
		baseMap, baseIsMap := merged[k].(map[string]any)
		if patchIsMap && baseIsMap {
			merged[k] = DeepMerge(baseMap, patchMap)
			continue
		}
		merged[k] = v
	}
	return merged
}

// AppendHistory appends an utterance to history, evicting the oldest entries
// beyond MaxHistory.
func AppendHistory(history []string, utterance string) []string {
	history = append(history, utterance)
	if len(history) > MaxHistory {
		history = history[len(history)-MaxHistory:]
	}
	return history
}

// Store persists per-conversant profiles and session context in SQLite.
// Expired records are purged lazily on read.
type Store struct {
	db    *sql.DB
	clock Clock
}

// NewStore creates the store and ensures its schema exists.
func NewStore(db *sql.DB, clock Clock) (*Store, error) {
	if clock == nil {
		clock = SystemClock{}
	}
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS session_context (
		user_id TEXT PRIMARY KEY,
		profile_json TEXT NOT NULL,
		last_topic TEXT,
		history_json TEXT,
		updated_ts INTEGER NOT NULL
	);`)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate session schema: %w", err)
	}
	return &Store{db: db, clock: clock}, nil
}

// GetProfile returns the conversant's profile merged over the empty base, or
// the empty profile when no live record exists. An expired record is deleted
// and read as empty.
func (s *Store) GetProfile(ctx context.Context, userID string) (map[string]any, error) {
	var profileJSON string
	var updatedTS int64

	err := s.db.QueryRowContext(ctx,
		"SELECT profile_json, updated_ts FROM session_context WHERE user_id = ?",
		userID,
	).Scan(&profileJSON, &updatedTS)
	if err == sql.ErrNoRows {
		return EmptyProfile(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}

	if s.expired(updatedTS) {
		if err := s.delete(ctx, userID); err != nil {
			return nil, err
		}
		return EmptyProfile(), nil
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(profileJSON), &data); err != nil {
		data = map[string]any{}
	}
	return DeepMerge(EmptyProfile(), data), nil
}

// UpsertProfile deep-merges patch into the stored profile and returns the
// merged result.
func (s *Store) UpsertProfile(ctx context.Context, userID string, patch map[string]any) (map[string]any, error) {
	current, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	updated := DeepMerge(current, patch)

	payload, err := json.Marshal(updated)
	if err != nil {
		return nil, fmt.Errorf("failed to encode profile: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO session_context (user_id, profile_json, updated_ts)
		 VALUES (?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET
		 profile_json = excluded.profile_json, updated_ts = excluded.updated_ts`,
		userID, string(payload), s.clock.Now().Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert profile: %w", err)
	}
	return updated, nil
}

// GetContext returns the conversant's last topic and bounded history. An
// expired or absent record reads as an empty context.
func (s *Store) GetContext(ctx context.Context, userID string) (Context, error) {
	var lastTopic, historyJSON sql.NullString
	var updatedTS int64

	err := s.db.QueryRowContext(ctx,
		"SELECT last_topic, history_json, updated_ts FROM session_context WHERE user_id = ?",
		userID,
	).Scan(&lastTopic, &historyJSON, &updatedTS)
	if err == sql.ErrNoRows {
		return Context{}, nil
	}
	if err != nil {
		return Context{}, fmt.Errorf("failed to query session context: %w", err)
	}
	if s.expired(updatedTS) {
		if err := s.delete(ctx, userID); err != nil {
			return Context{}, err
		}
		return Context{}, nil
	}

	sc := Context{LastTopic: lastTopic.String}
	if historyJSON.Valid && historyJSON.String != "" {
		if err := json.Unmarshal([]byte(historyJSON.String), &sc.History); err != nil {
			sc.History = nil
		}
	}
	return sc, nil
}

// UpdateContext writes last_topic and/or history for the conversant, creating
// the record from the empty profile when absent. Empty lastTopic leaves the
// stored topic untouched; nil history leaves the stored history untouched. An
// expired record is deleted and recreated rather than refreshed, so stale
// profile data and topics never outlive the TTL.
func (s *Store) UpdateContext(ctx context.Context, userID string, lastTopic string, history []string) error {
	now := s.clock.Now().Unix()

	exists := true
	var updatedTS int64
	err := s.db.QueryRowContext(ctx,
		"SELECT updated_ts FROM session_context WHERE user_id = ?", userID,
	).Scan(&updatedTS)
	if err == sql.ErrNoRows {
		exists = false
	} else if err != nil {
		return fmt.Errorf("failed to query session context: %w", err)
	}
	if exists && s.expired(updatedTS) {
		if err := s.delete(ctx, userID); err != nil {
			return err
		}
		exists = false
	}

	var historyJSON any
	if history != nil {
		encoded, err := json.Marshal(history)
		if err != nil {
			return fmt.Errorf("failed to encode history: %w", err)
		}
		historyJSON = string(encoded)
	}

	if !exists {
		empty, err := json.Marshal(EmptyProfile())
		if err != nil {
			return fmt.Errorf("failed to encode profile: %w", err)
		}
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO session_context (user_id, profile_json, last_topic, history_json, updated_ts)
			 VALUES (?, ?, ?, ?, ?)`,
			userID, string(empty), nullable(lastTopic), historyJSON, now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert session context: %w", err)
		}
		return nil
	}

	query := "UPDATE session_context SET updated_ts = ?"
	args := []any{now}
	if lastTopic != "" {
		query += ", last_topic = ?"
		args = append(args, lastTopic)
	}
	if historyJSON != nil {
		query += ", history_json = ?"
		args = append(args, historyJSON)
	}
	query += " WHERE user_id = ?"
	args = append(args, userID)

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update session context: %w", err)
	}
	return nil
}

// Touch refreshes the record's updated_ts, creating an empty record when
// absent.
func (s *Store) Touch(ctx context.Context, userID string) error {
	return s.UpdateContext(ctx, userID, "", nil)
}

func (s *Store) expired(updatedTS int64) bool {
	return s.clock.Now().Sub(time.Unix(updatedTS, 0)) > ProfileTTL
}

func (s *Store) delete(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM session_context WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("failed to delete session context: %w", err)
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
