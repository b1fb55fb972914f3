package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dariomolina/cintelink-challenge/internal/notification"
	pghelper "github.com/dariomolina/cintelink-challenge/pkg/pg"
)

// Postgres is the production Store implementation on pgx. Uniqueness
// invariants are enforced by the schema (unique indexes on tags.name,
// (user_id, tag_id) and (user_id, notification_id)); this layer translates
// SQLSTATE codes into store errors.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a Store backed by the given connection pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (s *Postgres) CreateTag(ctx context.Context, name string) (notification.Tag, error) {
	if name == "" {
		return notification.Tag{}, ErrEmptyTagName
	}

	var tag notification.Tag
	err := s.pool.QueryRow(ctx,
		`INSERT INTO tags (name) VALUES ($1) RETURNING id, name`,
		name,
	).Scan(&tag.ID, &tag.Name)
	if err != nil {
		if pghelper.IsDuplicateKeyError(err) {
			return notification.Tag{}, ErrDuplicateTag
		}
		return notification.Tag{}, fmt.Errorf("create tag: %w", err)
	}
	return tag, nil
}

func (s *Postgres) GetTag(ctx context.Context, id int64) (notification.Tag, error) {
	var tag notification.Tag
	err := s.pool.QueryRow(ctx,
		`SELECT id, name FROM tags WHERE id = $1`,
		id,
	).Scan(&tag.ID, &tag.Name)
	if err != nil {
		if pghelper.IsNotFoundError(err) {
			return notification.Tag{}, ErrTagNotFound
		}
		return notification.Tag{}, fmt.Errorf("get tag: %w", err)
	}
	return tag, nil
}

func (s *Postgres) GetUser(ctx context.Context, id int64) (notification.User, error) {
	var u notification.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, username FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Username)
	if err != nil {
		if pghelper.IsNotFoundError(err) {
			return notification.User{}, ErrUserNotFound
		}
		return notification.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *Postgres) CreateSubscription(ctx context.Context, userID, tagID int64) (notification.Subscription, error) {
	var sub notification.Subscription
	err := s.pool.QueryRow(ctx,
		`INSERT INTO subscriptions (user_id, tag_id)
		 VALUES ($1, $2)
		 RETURNING id, user_id, tag_id, created_at`,
		userID, tagID,
	).Scan(&sub.ID, &sub.UserID, &sub.TagID, &sub.CreatedAt)
	if err != nil {
		switch {
		case pghelper.IsDuplicateKeyError(err):
			return notification.Subscription{}, ErrDuplicateSubscription
		case pghelper.IsForeignKeyViolationError(err):
			// Either the tag or the user reference is dangling; resolve
			// which for a precise error.
			if _, tagErr := s.GetTag(ctx, tagID); tagErr != nil {
				return notification.Subscription{}, ErrTagNotFound
			}
			return notification.Subscription{}, ErrUserNotFound
		default:
			return notification.Subscription{}, fmt.Errorf("create subscription: %w", err)
		}
	}
	return sub, nil
}

func (s *Postgres) DeleteSubscription(ctx context.Context, userID, subID int64) error {
	ct, err := s.pool.Exec(ctx,
		`DELETE FROM subscriptions WHERE id = $1 AND user_id = $2`,
		subID, userID,
	)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

func (s *Postgres) CreateNotification(ctx context.Context, tagID int64, message string) (notification.Notification, []notification.UserNotification, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return notification.Notification{}, nil, fmt.Errorf("begin publish tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var notif notification.Notification
	err = tx.QueryRow(ctx,
		`INSERT INTO notifications (tag_id, message)
		 VALUES ($1, $2)
		 RETURNING id, tag_id, message, timestamp`,
		tagID, message,
	).Scan(&notif.ID, &notif.TagID, &notif.Message, &notif.Timestamp)
	if err != nil {
		if pghelper.IsForeignKeyViolationError(err) {
			return notification.Notification{}, nil, ErrTagNotFound
		}
		return notification.Notification{}, nil, fmt.Errorf("insert notification: %w", err)
	}

	// One delivery record per distinct subscriber in the transaction's
	// snapshot. ON CONFLICT absorbs a race-duplicated subscription row.
	rows, err := tx.Query(ctx,
		`INSERT INTO user_notifications (user_id, notification_id)
		 SELECT DISTINCT user_id, $2 FROM subscriptions WHERE tag_id = $1
		 ON CONFLICT (user_id, notification_id) DO NOTHING
		 RETURNING id, user_id, notification_id, is_read, is_deleted`,
		tagID, notif.ID,
	)
	if err != nil {
		return notification.Notification{}, nil, fmt.Errorf("insert delivery records: %w", err)
	}

	deliveries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (notification.UserNotification, error) {
		var rec notification.UserNotification
		err := row.Scan(&rec.ID, &rec.UserID, &rec.NotificationID, &rec.IsRead, &rec.IsDeleted)
		return rec, err
	})
	if err != nil {
		return notification.Notification{}, nil, fmt.Errorf("scan delivery records: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return notification.Notification{}, nil, fmt.Errorf("commit publish tx: %w", err)
	}

	return notif, deliveries, nil
}

// listFilter renders the WHERE clause shared by list and count.
func listFilter(opts ListOptions) string {
	filter := `WHERE un.user_id = $1`
	if opts.ExcludeDeleted {
		filter += ` AND NOT un.is_deleted`
	}
	if opts.OnlyUnread {
		filter += ` AND NOT un.is_read`
	}
	return filter
}

func (s *Postgres) ListUserNotifications(ctx context.Context, userID int64, opts ListOptions) ([]notification.UserNotificationView, error) {
	query := `SELECT un.id, n.message, un.is_read, n.timestamp
		 FROM user_notifications un
		 JOIN notifications n ON n.id = un.notification_id ` +
		listFilter(opts) + ` ORDER BY un.id`

	args := []any{userID}
	if opts.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
		args = append(args, opts.Limit, opts.Offset)
	} else if opts.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, len(args)+1)
		args = append(args, opts.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list user notifications: %w", err)
	}

	views, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (notification.UserNotificationView, error) {
		var (
			v  notification.UserNotificationView
			ts time.Time
		)
		if err := row.Scan(&v.ID, &v.Message, &v.IsRead, &ts); err != nil {
			return v, err
		}
		v.Timestamp = notification.Timestamp(ts)
		return v, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan user notifications: %w", err)
	}
	return views, nil
}

func (s *Postgres) CountUserNotifications(ctx context.Context, userID int64, opts ListOptions) (int, error) {
	query := `SELECT COUNT(*) FROM user_notifications un ` + listFilter(opts)

	var count int
	if err := s.pool.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count user notifications: %w", err)
	}
	return count, nil
}

func (s *Postgres) MarkRead(ctx context.Context, userID, id int64) error {
	// Scoping the update by user_id enforces ownership: a guessed foreign
	// id affects zero rows, which is not an error.
	_, err := s.pool.Exec(ctx,
		`UPDATE user_notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	return nil
}

func (s *Postgres) MarkDeleted(ctx context.Context, userID, id int64) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE user_notifications SET is_deleted = TRUE WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("mark deleted: %w", err)
	}
	return nil
}

func (s *Postgres) CountUnread(ctx context.Context, userID int64) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM user_notifications
		 WHERE user_id = $1 AND NOT is_read AND NOT is_deleted`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return count, nil
}
