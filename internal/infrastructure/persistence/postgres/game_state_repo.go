package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/edusphere/edusphere-gamification/internal/domain/gamification"
	"github.com/edusphere/edusphere-gamification/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GAME STATE REPOSITORY
//
// Point and stat mutations are single UPDATE ... RETURNING statements so two
// awards racing on the same user both land: the database serializes the
// increments, and each caller gets the total as of its own write.
// ══════════════════════════════════════════════════════════════════════════════

// statColumns maps counter names to their columns. Only names present here
// ever reach SQL; the map doubles as an injection guard for the dynamic
// column in IncrementStat.
var statColumns = map[gamification.StatName]string{
	gamification.StatPostsCreated:      "posts_created",
	gamification.StatCommentsPosted:    "comments_posted",
	gamification.StatQuestionsAnswered: "questions_answered",
	gamification.StatCoursesCompleted:  "courses_completed",
	gamification.StatStudyGroupsJoined: "study_groups_joined",
}

// GameStateRepository implements gamification.Repository on PostgreSQL.
type GameStateRepository struct {
	conn *Connection
}

// NewGameStateRepository creates a new repository.
func NewGameStateRepository(conn *Connection) *GameStateRepository {
	return &GameStateRepository{conn: conn}
}

// Create inserts a zero-valued state for a new account.
func (r *GameStateRepository) Create(ctx context.Context, state *gamification.UserGameState) error {
	query := `
		INSERT INTO user_game_state (
			user_id, display_name, role, avatar, points, level,
			posts_created, comments_posted, questions_answered,
			courses_completed, study_groups_joined,
			login_streak, last_login_date, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.conn.Exec(ctx, query,
		state.UserID,
		state.DisplayName,
		string(state.Role),
		state.Avatar,
		int(state.Points),
		int(state.Level),
		state.Stats.PostsCreated,
		state.Stats.CommentsPosted,
		state.Stats.QuestionsAnswered,
		state.Stats.CoursesCompleted,
		state.Stats.StudyGroupsJoined,
		state.Stats.LoginStreak,
		state.Stats.LastLoginDate,
		state.CreatedAt,
		state.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.NewDomainError("gamification", "Create", shared.ErrAlreadyExists,
				fmt.Sprintf("game state for user %s already exists", state.UserID))
		}
		return shared.WrapError("gamification", "Create", shared.ErrExternalService, "failed to insert game state", err)
	}

	return nil
}

// GetByUserID loads the full state including earned badges.
func (r *GameStateRepository) GetByUserID(ctx context.Context, userID string) (*gamification.UserGameState, error) {
	query := `
		SELECT user_id, display_name, role, avatar, points, level,
		       posts_created, comments_posted, questions_answered,
		       courses_completed, study_groups_joined,
		       login_streak, last_login_date, created_at, updated_at
		FROM user_game_state
		WHERE user_id = $1
	`

	var (
		state     gamification.UserGameState
		role      string
		points    int
		level     int
		lastLogin *time.Time
	)

	err := r.conn.QueryRow(ctx, query, userID).Scan(
		&state.UserID,
		&state.DisplayName,
		&role,
		&state.Avatar,
		&points,
		&level,
		&state.Stats.PostsCreated,
		&state.Stats.CommentsPosted,
		&state.Stats.QuestionsAnswered,
		&state.Stats.CoursesCompleted,
		&state.Stats.StudyGroupsJoined,
		&state.Stats.LoginStreak,
		&lastLogin,
		&state.CreatedAt,
		&state.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.NewDomainError("gamification", "GetByUserID", shared.ErrNotFound,
				fmt.Sprintf("no game state for user %s", userID))
		}
		return nil, shared.WrapError("gamification", "GetByUserID", shared.ErrExternalService, "failed to load game state", err)
	}

	state.Role = gamification.Role(role)
	state.Points = gamification.Points(points)
	state.Level = gamification.Level(level)
	state.Stats.LastLoginDate = lastLogin

	badges, err := r.loadBadges(ctx, userID)
	if err != nil {
		return nil, err
	}
	state.Badges = badges

	return &state, nil
}

func (r *GameStateRepository) loadBadges(ctx context.Context, userID string) ([]gamification.Badge, error) {
	query := `
		SELECT badge_id, name, icon, description, earned_at
		FROM user_badges
		WHERE user_id = $1
		ORDER BY earned_at, badge_id
	`

	rows, err := r.conn.Query(ctx, query, userID)
	if err != nil {
		return nil, shared.WrapError("gamification", "GetByUserID", shared.ErrExternalService, "failed to load badges", err)
	}
	defer rows.Close()

	badges := make([]gamification.Badge, 0)
	for rows.Next() {
		var (
			b  gamification.Badge
			id string
		)
		if err := rows.Scan(&id, &b.Name, &b.Icon, &b.Description, &b.EarnedAt); err != nil {
			return nil, shared.WrapError("gamification", "GetByUserID", shared.ErrExternalService, "failed to scan badge", err)
		}
		b.ID = gamification.BadgeID(id)
		badges = append(badges, b)
	}

	return badges, rows.Err()
}

// AddPoints atomically increments the point total and returns the new value.
func (r *GameStateRepository) AddPoints(ctx context.Context, userID string, delta gamification.Delta) (gamification.Points, error) {
	query := `
		UPDATE user_game_state
		SET points = points + $2, updated_at = NOW()
		WHERE user_id = $1
		RETURNING points
	`

	var total int
	err := r.conn.QueryRow(ctx, query, userID, int(delta)).Scan(&total)
	if err != nil {
		if IsNoRows(err) {
			return 0, shared.NewDomainError("gamification", "AddPoints", shared.ErrNotFound,
				fmt.Sprintf("no game state for user %s", userID))
		}
		return 0, shared.WrapError("gamification", "AddPoints", shared.ErrExternalService, "failed to add points", err)
	}

	return gamification.Points(total), nil
}

// SetLevel persists a recomputed level.
func (r *GameStateRepository) SetLevel(ctx context.Context, userID string, level gamification.Level) error {
	query := `
		UPDATE user_game_state
		SET level = $2, updated_at = NOW()
		WHERE user_id = $1
	`

	tag, err := r.conn.Exec(ctx, query, userID, int(level))
	if err != nil {
		return shared.WrapError("gamification", "SetLevel", shared.ErrExternalService, "failed to set level", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.NewDomainError("gamification", "SetLevel", shared.ErrNotFound,
			fmt.Sprintf("no game state for user %s", userID))
	}

	return nil
}

// AppendBadge records an earned badge. The (user_id, badge_id) primary key
// makes the insert a no-op on a repeat grant; RowsAffected tells the two
// cases apart without a prior read.
func (r *GameStateRepository) AppendBadge(ctx context.Context, userID string, badge gamification.Badge) (bool, error) {
	query := `
		INSERT INTO user_badges (user_id, badge_id, name, icon, description, earned_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, badge_id) DO NOTHING
	`

	tag, err := r.conn.Exec(ctx, query,
		userID,
		string(badge.ID),
		badge.Name,
		badge.Icon,
		badge.Description,
		badge.EarnedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return false, shared.NewDomainError("gamification", "AppendBadge", shared.ErrNotFound,
				fmt.Sprintf("no game state for user %s", userID))
		}
		return false, shared.WrapError("gamification", "AppendBadge", shared.ErrExternalService, "failed to append badge", err)
	}

	return tag.RowsAffected() > 0, nil
}

// IncrementStat atomically bumps a named counter and returns its new value.
func (r *GameStateRepository) IncrementStat(ctx context.Context, userID string, stat gamification.StatName, by int) (int, error) {
	column, ok := statColumns[stat]
	if !ok {
		return 0, shared.NewDomainError("gamification", "IncrementStat", shared.ErrValidation,
			fmt.Sprintf("unknown stat %q", string(stat)))
	}

	query := fmt.Sprintf(`
		UPDATE user_game_state
		SET %s = %s + $2, updated_at = NOW()
		WHERE user_id = $1
		RETURNING %s
	`, column, column, column)

	var value int
	err := r.conn.QueryRow(ctx, query, userID, by).Scan(&value)
	if err != nil {
		if IsNoRows(err) {
			return 0, shared.NewDomainError("gamification", "IncrementStat", shared.ErrNotFound,
				fmt.Sprintf("no game state for user %s", userID))
		}
		return 0, shared.WrapError("gamification", "IncrementStat", shared.ErrExternalService, "failed to increment stat", err)
	}

	return value, nil
}

// UpdateStreak persists the login-streak state.
func (r *GameStateRepository) UpdateStreak(ctx context.Context, userID string, streak int, lastLogin time.Time) error {
	query := `
		UPDATE user_game_state
		SET login_streak = $2, last_login_date = $3, updated_at = NOW()
		WHERE user_id = $1
	`

	tag, err := r.conn.Exec(ctx, query, userID, streak, lastLogin)
	if err != nil {
		return shared.WrapError("gamification", "UpdateStreak", shared.ErrExternalService, "failed to update streak", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.NewDomainError("gamification", "UpdateStreak", shared.ErrNotFound,
			fmt.Sprintf("no game state for user %s", userID))
	}

	return nil
}
