package storage

import (
	"database/sql"

	"github.com/notarium/core/pkg/codec"
	"github.com/notarium/core/pkg/types"
)

// AddUser inserts a user and its optional sub-records.
func (e *Engine) AddUser(u *types.User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	return e.withTx("storage.AddUser", func(tx *sql.Tx) error {
		res, err := tx.Exec(`
			INSERT INTO users (id, username, email, name, timezone, privilege, creation_timestamp,
				modification_timestamp, deletion_timestamp, active, attributes_blob)
			VALUES (?,?,?,?,?,?,?,?,?,?,?)
		`, u.ID, u.Username, u.Email, u.Name, u.Timezone, int(u.Privilege), u.CreationTimestamp,
			u.ModificationTime, nullInt64Ptr(u.DeletionTimestamp), boolToInt(u.Active),
			codec.EncodeUserAttributes(u.Attributes))
		if err != nil {
			return conflictOrStorageFailure("storage.AddUser", err)
		}
		if u.ID == 0 {
			id, idErr := res.LastInsertId()
			if idErr != nil {
				return types.NewError(types.KindStorageFailure, "storage.AddUser", "failed to read assigned id", idErr)
			}
			u.ID = id
		}
		return writeUserSubRecords(tx, u)
	})
}

func writeUserSubRecords(tx *sql.Tx, u *types.User) error {
	if u.Accounting != nil {
		if _, err := tx.Exec(`INSERT INTO accounting (user_id, blob) VALUES (?,?)`, u.ID, encodeAccounting(u.Accounting)); err != nil {
			return types.NewError(types.KindStorageFailure, "storage.writeUserSubRecords", "accounting insert failed", err)
		}
	}
	if u.PremiumInfo != nil {
		if _, err := tx.Exec(`INSERT INTO premium_info (user_id, blob) VALUES (?,?)`, u.ID, encodePremiumInfo(u.PremiumInfo)); err != nil {
			return types.NewError(types.KindStorageFailure, "storage.writeUserSubRecords", "premium info insert failed", err)
		}
	}
	if u.BusinessUserInfo != nil {
		if _, err := tx.Exec(`INSERT INTO business_user_info (user_id, blob) VALUES (?,?)`, u.ID, encodeBusinessUserInfo(u.BusinessUserInfo)); err != nil {
			return types.NewError(types.KindStorageFailure, "storage.writeUserSubRecords", "business user info insert failed", err)
		}
	}
	return nil
}

// FindUserByID populates a user and its sub-records.
func (e *Engine) FindUserByID(id int64) (*types.User, error) {
	e.mu.Lock()
	row := e.db.QueryRow(`
		SELECT id, username, email, name, timezone, privilege, creation_timestamp,
			modification_timestamp, deletion_timestamp, active, attributes_blob
		FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if blob, ok := readOptionalBlob(e.db, `SELECT blob FROM accounting WHERE user_id = ?`, id); ok {
		u.Accounting = decodeAccounting(blob)
	}
	if blob, ok := readOptionalBlob(e.db, `SELECT blob FROM premium_info WHERE user_id = ?`, id); ok {
		u.PremiumInfo = decodePremiumInfo(blob)
	}
	if blob, ok := readOptionalBlob(e.db, `SELECT blob FROM business_user_info WHERE user_id = ?`, id); ok {
		u.BusinessUserInfo = decodeBusinessUserInfo(blob)
	}
	return u, nil
}

func scanUser(row *sql.Row) (*types.User, error) {
	u := &types.User{}
	var deletion sql.NullInt64
	var active int64
	var privilege int
	var attrBlob []byte
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Name, &u.Timezone, &privilege,
		&u.CreationTimestamp, &u.ModificationTime, &deletion, &active, &attrBlob); err != nil {
		if err == sql.ErrNoRows {
			return nil, types.NewError(types.KindNotFound, "storage.FindUser", "user not found", nil)
		}
		return nil, types.NewError(types.KindStorageFailure, "storage.FindUser", "scan failed", err)
	}
	u.Privilege = types.PrivilegeLevel(privilege)
	u.DeletionTimestamp = int64PtrFromNull(deletion)
	u.Active = intToBool(active)
	attrs, err := codec.DecodeUserAttributes(attrBlob)
	if err != nil {
		return nil, types.NewError(types.KindStorageFailure, "storage.FindUser", "failed to decode attributes", err)
	}
	u.Attributes = attrs
	return u, nil
}

func readOptionalBlob(q queryer, query string, args ...interface{}) ([]byte, bool) {
	var blob []byte
	if err := q.QueryRow(query, args...).Scan(&blob); err != nil {
		return nil, false
	}
	return blob, true
}

// UpdateUser replaces a user row and its sub-records.
func (e *Engine) UpdateUser(u *types.User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	return e.withTx("storage.UpdateUser", func(tx *sql.Tx) error {
		res, err := tx.Exec(`
			UPDATE users SET username=?, email=?, name=?, timezone=?, privilege=?,
				modification_timestamp=?, deletion_timestamp=?, active=?, attributes_blob=?
			WHERE id = ?
		`, u.Username, u.Email, u.Name, u.Timezone, int(u.Privilege), u.ModificationTime,
			nullInt64Ptr(u.DeletionTimestamp), boolToInt(u.Active), codec.EncodeUserAttributes(u.Attributes), u.ID)
		if err != nil {
			return conflictOrStorageFailure("storage.UpdateUser", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return types.NewError(types.KindNotFound, "storage.UpdateUser", "user not found", nil)
		}
		if _, err := tx.Exec(`DELETE FROM accounting WHERE user_id = ?`, u.ID); err != nil {
			return types.NewError(types.KindStorageFailure, "storage.UpdateUser", "failed to clear accounting", err)
		}
		if _, err := tx.Exec(`DELETE FROM premium_info WHERE user_id = ?`, u.ID); err != nil {
			return types.NewError(types.KindStorageFailure, "storage.UpdateUser", "failed to clear premium info", err)
		}
		if _, err := tx.Exec(`DELETE FROM business_user_info WHERE user_id = ?`, u.ID); err != nil {
			return types.NewError(types.KindStorageFailure, "storage.UpdateUser", "failed to clear business user info", err)
		}
		return writeUserSubRecords(tx, u)
	})
}

// DeleteUser soft-deletes a user.
func (e *Engine) DeleteUser(id int64, deletionTimestamp int64) error {
	return e.withTx("storage.DeleteUser", func(tx *sql.Tx) error {
		res, err := tx.Exec(`UPDATE users SET deletion_timestamp = ?, active = 0 WHERE id = ?`, deletionTimestamp, id)
		if err != nil {
			return types.NewError(types.KindStorageFailure, "storage.DeleteUser", "update failed", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return types.NewError(types.KindNotFound, "storage.DeleteUser", "user not found", nil)
		}
		return nil
	})
}

// ExpungeUser hard-removes a user; ON DELETE CASCADE removes its
// Accounting, PremiumInfo, and BusinessUserInfo sub-records.
func (e *Engine) ExpungeUser(id int64) error {
	return e.withTx("storage.ExpungeUser", func(tx *sql.Tx) error {
		res, err := tx.Exec(`DELETE FROM users WHERE id = ?`, id)
		if err != nil {
			return types.NewError(types.KindStorageFailure, "storage.ExpungeUser", "delete failed", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return types.NewError(types.KindNotFound, "storage.ExpungeUser", "user not found", nil)
		}
		return nil
	})
}

// GetUserCount counts users, subject to count flags.
func (e *Engine) GetUserCount(opts types.CountOptions) (int, error) {
	query := `SELECT COUNT(*) FROM users WHERE 1=1`
	var args []interface{}
	query += countActiveClause(opts, &args)

	e.mu.Lock()
	defer e.mu.Unlock()
	row := e.db.QueryRow(query, args...)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, types.NewError(types.KindStorageFailure, "storage.GetUserCount", "count query failed", err)
	}
	return n, nil
}
