package zombiezen

import (
	"context"
	"fmt"
	"time"

	"github.com/caasmo/accounts/db"
	"github.com/google/uuid"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const userColumns = `id, name, email, password, role, otp_hash, otp_expires, avatar, created, updated`

const nowUTC = `strftime('%Y-%m-%dT%H:%M:%SZ', 'now')`

// newUserFromStmt creates a User struct from a SQLite statement
func newUserFromStmt(stmt *sqlite.Stmt) (*db.User, error) {
	created, err := db.TimeParse(stmt.GetText("created"))
	if err != nil {
		return nil, fmt.Errorf("error parsing created time: %w", err)
	}

	updated, err := db.TimeParse(stmt.GetText("updated"))
	if err != nil {
		return nil, fmt.Errorf("error parsing updated time: %w", err)
	}

	otpExpires, err := db.TimeParse(stmt.GetText("otp_expires"))
	if err != nil {
		return nil, fmt.Errorf("error parsing otp_expires time: %w", err)
	}

	return &db.User{
		ID:         stmt.GetText("id"),
		Name:       stmt.GetText("name"),
		Email:      stmt.GetText("email"),
		Password:   stmt.GetText("password"),
		Role:       db.Role(stmt.GetText("role")),
		OtpHash:    stmt.GetText("otp_hash"),
		OtpExpires: otpExpires,
		Avatar:     stmt.GetText("avatar"),
		Created:    created,
		Updated:    updated,
	}, nil
}

func isUniqueViolation(err error) bool {
	return sqlite.ErrCode(err) == sqlite.ResultConstraintUnique
}

func (d *Db) getUserBy(ctx context.Context, column, value string) (*db.User, error) {
	conn, err := d.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}
	defer d.pool.Put(conn)

	var user *db.User
	err = sqlitex.Execute(conn,
		`SELECT `+userColumns+` FROM users WHERE `+column+` = ? LIMIT 1`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				var err error
				user, err = newUserFromStmt(stmt)
				return err
			},
			Args: []any{value},
		})
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, db.ErrUserNotFound
	}

	return user, nil
}

// GetUserByEmail retrieves a user by its exact email.
// Returns db.ErrUserNotFound when no row matches.
func (d *Db) GetUserByEmail(ctx context.Context, email string) (*db.User, error) {
	return d.getUserBy(ctx, "email", email)
}

func (d *Db) GetUserById(ctx context.Context, id string) (*db.User, error) {
	return d.getUserBy(ctx, "id", id)
}

// CreateUser inserts a new user. An empty ID gets a random UUID and an
// empty role defaults to db.RoleUser.
func (d *Db) CreateUser(ctx context.Context, user db.User) (*db.User, error) {
	conn, err := d.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}
	defer d.pool.Put(conn)

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = db.RoleUser
	}

	var created *db.User
	err = sqlitex.Execute(conn,
		`INSERT INTO users (id, name, email, password, role, avatar)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING `+userColumns,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				var err error
				created, err = newUserFromStmt(stmt)
				return err
			},
			Args: []any{user.ID, user.Name, user.Email, user.Password, string(user.Role), user.Avatar},
		})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, db.ErrEmailConflict
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return created, nil
}

func (d *Db) SetOtp(ctx context.Context, userID string, otpHash string, expires time.Time) error {
	if otpHash == "" || expires.IsZero() {
		return fmt.Errorf("otp hash and expiry must both be set")
	}

	conn, err := d.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`UPDATE users
		SET otp_hash = ?,
			otp_expires = ?,
			updated = (`+nowUTC+`)
		WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []any{otpHash, db.TimeFormatNano(expires), userID},
		})
	if err != nil {
		return fmt.Errorf("failed to set otp: %w", err)
	}
	if conn.Changes() == 0 {
		return db.ErrUserNotFound
	}

	return nil
}

// ResetPassword is a compare-and-swap on otp_hash. If another request
// replaced or cleared the otp in the meantime, or it expired before now, no
// row matches and db.ErrOtpConflict is returned. otp_expires is written by
// SetOtp in a fixed width format, so the text comparison is chronological.
func (d *Db) ResetPassword(ctx context.Context, userID string, expectedOtpHash string, passwordHash string, now time.Time) error {
	if expectedOtpHash == "" {
		return db.ErrOtpConflict
	}

	conn, err := d.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`UPDATE users
		SET password = ?,
			otp_hash = '',
			otp_expires = '',
			updated = (`+nowUTC+`)
		WHERE id = ? AND otp_hash = ? AND otp_expires >= ?`,
		&sqlitex.ExecOptions{
			Args: []any{passwordHash, userID, expectedOtpHash, db.TimeFormatNano(now)},
		})
	if err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}
	if conn.Changes() == 0 {
		return db.ErrOtpConflict
	}

	return nil
}

func (d *Db) ListUsers(ctx context.Context) ([]*db.User, error) {
	conn, err := d.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}
	defer d.pool.Put(conn)

	users := make([]*db.User, 0)
	err = sqlitex.Execute(conn,
		`SELECT `+userColumns+` FROM users ORDER BY created, id`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				u, err := newUserFromStmt(stmt)
				if err != nil {
					return err
				}
				users = append(users, u)
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}

// UpdateUser keeps the stored value of every column whose patch field is
// nil: a NULL argument falls through COALESCE.
func (d *Db) UpdateUser(ctx context.Context, id string, patch db.UserPatch) (*db.User, error) {
	conn, err := d.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}
	defer d.pool.Put(conn)

	var updated *db.User
	err = sqlitex.Execute(conn,
		`UPDATE users
		SET name = COALESCE(?, name),
			email = COALESCE(?, email),
			password = COALESCE(?, password),
			role = COALESCE(?, role),
			avatar = COALESCE(?, avatar),
			updated = (`+nowUTC+`)
		WHERE id = ?
		RETURNING `+userColumns,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				var err error
				updated, err = newUserFromStmt(stmt)
				return err
			},
			Args: []any{
				optional(patch.Name),
				optional(patch.Email),
				optional(patch.Password),
				optionalRole(patch.Role),
				optional(patch.Avatar),
				id,
			},
		})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, db.ErrEmailConflict
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if updated == nil {
		return nil, db.ErrUserNotFound
	}

	return updated, nil
}

// optional binds NULL for a nil field.
func optional(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func optionalRole(r *db.Role) any {
	if r == nil {
		return nil
	}
	return string(*r)
}

func (d *Db) DeleteUser(ctx context.Context, id string) error {
	conn, err := d.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn, `DELETE FROM users WHERE id = ?`,
		&sqlitex.ExecOptions{Args: []any{id}})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if conn.Changes() == 0 {
		return db.ErrUserNotFound
	}

	return nil
}
