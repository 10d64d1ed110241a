package postgres

import (
	"context"

	"github.com/edusphere/edusphere-gamification/internal/domain/notification"
	"github.com/edusphere/edusphere-gamification/internal/domain/shared"
)

// NotificationRepository implements notification.Repository on PostgreSQL.
// The engine only inserts; reading and marking as read belong to the
// notification subsystem.
type NotificationRepository struct {
	conn *Connection
}

// NewNotificationRepository creates a new repository.
func NewNotificationRepository(conn *Connection) *NotificationRepository {
	return &NotificationRepository{conn: conn}
}

// Create inserts a notification record.
func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, type, title, message, icon, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.conn.Exec(ctx, query,
		n.ID,
		n.UserID,
		string(n.Type),
		n.Title,
		n.Message,
		n.Icon,
		n.Read,
		n.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.NewDomainError("notification", "Create", shared.ErrAlreadyExists, "notification id already used")
		}
		return shared.WrapError("notification", "Create", shared.ErrExternalService, "failed to insert notification", err)
	}

	return nil
}
