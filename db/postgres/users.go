package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/caasmo/accounts/db"
	"github.com/google/uuid"
)

const userColumns = `id, name, email, password, role, otp_hash, otp_expires, avatar, created, updated`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*db.User, error) {
	var (
		u          db.User
		role       string
		otpHash    sql.NullString
		otpExpires sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &role, &otpHash, &otpExpires, &u.Avatar, &u.Created, &u.Updated)
	if err != nil {
		return nil, err
	}
	u.Role = db.Role(role)
	u.OtpHash = otpHash.String
	if otpExpires.Valid {
		u.OtpExpires = otpExpires.Time.UTC()
	}
	u.Created = u.Created.UTC()
	u.Updated = u.Updated.UTC()
	return &u, nil
}

// lookupErr maps lookup failures on a single row. A malformed uuid can
// never match a row, so it is reported as not found.
func lookupErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) || pgCode(err) == pgInvalidTextEncoding {
		return db.ErrUserNotFound
	}
	if pgCode(err) == pgUniqueViolation {
		return db.ErrEmailConflict
	}
	return fmt.Errorf("db error: %w", err)
}

func (d *Db) GetUserByEmail(ctx context.Context, email string) (*db.User, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	u, err := scanUser(row)
	if err != nil {
		return nil, lookupErr(err)
	}
	return u, nil
}

func (d *Db) GetUserById(ctx context.Context, id string) (*db.User, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, lookupErr(err)
	}
	return u, nil
}

func (d *Db) CreateUser(ctx context.Context, user db.User) (*db.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = db.RoleUser
	}

	row := d.db.QueryRowContext(ctx,
		`INSERT INTO users (id, name, email, password, role, avatar)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+userColumns,
		user.ID, user.Name, user.Email, user.Password, string(user.Role), user.Avatar)
	u, err := scanUser(row)
	if err != nil {
		if pgCode(err) == pgUniqueViolation {
			return nil, db.ErrEmailConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (d *Db) SetOtp(ctx context.Context, userID string, otpHash string, expires time.Time) error {
	if otpHash == "" || expires.IsZero() {
		return fmt.Errorf("otp hash and expiry must both be set")
	}

	res, err := d.db.ExecContext(ctx,
		`UPDATE users SET otp_hash = $1, otp_expires = $2, updated = now()
		 WHERE id = $3`,
		otpHash, expires.UTC(), userID)
	if err != nil {
		if pgCode(err) == pgInvalidTextEncoding {
			return db.ErrUserNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res, db.ErrUserNotFound)
}

// ResetPassword swaps the password only while the row still holds
// expectedOtpHash unexpired at now.
func (d *Db) ResetPassword(ctx context.Context, userID string, expectedOtpHash string, passwordHash string, now time.Time) error {
	if expectedOtpHash == "" {
		return db.ErrOtpConflict
	}

	res, err := d.db.ExecContext(ctx,
		`UPDATE users SET password = $1, otp_hash = NULL, otp_expires = NULL, updated = now()
		 WHERE id = $2 AND otp_hash = $3 AND otp_expires >= $4`,
		passwordHash, userID, expectedOtpHash, now.UTC())
	if err != nil {
		if pgCode(err) == pgInvalidTextEncoding {
			return db.ErrOtpConflict
		}
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res, db.ErrOtpConflict)
}

func (d *Db) ListUsers(ctx context.Context) ([]*db.User, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created, id`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	users := make([]*db.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return users, nil
}

// UpdateUser writes only the fields set in patch. A NULL parameter keeps
// the column through COALESCE.
func (d *Db) UpdateUser(ctx context.Context, id string, patch db.UserPatch) (*db.User, error) {
	var role sql.NullString
	if patch.Role != nil {
		role = sql.NullString{String: string(*patch.Role), Valid: true}
	}
	row := d.db.QueryRowContext(ctx,
		`UPDATE users SET name = COALESCE($1, name), email = COALESCE($2, email),
		 password = COALESCE($3, password), role = COALESCE($4, role),
		 avatar = COALESCE($5, avatar), updated = now()
		 WHERE id = $6
		 RETURNING `+userColumns,
		nullString(patch.Name), nullString(patch.Email), nullString(patch.Password), role, nullString(patch.Avatar), id)
	u, err := scanUser(row)
	if err != nil {
		return nil, lookupErr(err)
	}
	return u, nil
}

func (d *Db) DeleteUser(ctx context.Context, id string) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		if pgCode(err) == pgInvalidTextEncoding {
			return db.ErrUserNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res, db.ErrUserNotFound)
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func expectOne(res sql.Result, none error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return none
	}
	return nil
}
