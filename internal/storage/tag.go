package storage

import (
	"database/sql"
	"strings"

	"github.com/notarium/core/pkg/pool"
	"github.com/notarium/core/pkg/types"
)

// AddTag inserts a tag, assigning a local id if the caller left it
// empty.
func (e *Engine) AddTag(t *types.Tag) error {
	if t.LocalID == "" {
		t.LocalID = types.NewLocalID()
	}
	if err := t.Validate(); err != nil {
		return err
	}
	return e.withTx("storage.AddTag", func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO tags (local_id, guid, usn, name, name_upper, parent_local_id,
				linked_notebook_guid, deletion_timestamp, active, is_dirty, is_local, is_favorited)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?)
		`, t.LocalID, nullString(t.GUID), t.USN, t.Name, strings.ToUpper(t.Name), t.ParentLocalID,
			t.LinkedNotebookGUID, nullInt64Ptr(t.DeletionTimestamp), boolToInt(t.Active),
			boolToInt(t.IsDirty), boolToInt(t.IsLocal), boolToInt(t.IsFavorited))
		if err != nil {
			return conflictOrStorageFailure("storage.AddTag", err)
		}
		return nil
	})
}

// FindTagByLocalID populates a tag by local id, active or not (soft
// deleted tags remain findable per contract).
func (e *Engine) FindTagByLocalID(localID string) (*types.Tag, error) {
	return e.findTag("local_id = ?", localID)
}

// FindTagByName finds a tag by case-insensitive name within scope.
func (e *Engine) FindTagByName(name string, scope types.Scope) (*types.Tag, error) {
	return e.findTag("name_upper = ? AND linked_notebook_guid = ?", strings.ToUpper(name), scope.LinkedNotebookGUID)
}

func (e *Engine) findTag(where string, args ...interface{}) (*types.Tag, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rows, err := e.db.Query(`
		SELECT local_id, guid, usn, name, parent_local_id, linked_notebook_guid,
			deletion_timestamp, active, is_dirty, is_local, is_favorited
		FROM tags WHERE `+where, args...)
	if err != nil {
		return nil, types.NewError(types.KindStorageFailure, "storage.FindTag", "query failed", err)
	}
	defer rows.Close()

	var t *types.Tag
	for rows.Next() {
		if t != nil {
			return nil, types.NewError(types.KindAmbiguousKey, "storage.FindTag", "more than one tag matched", nil)
		}
		t = &types.Tag{}
		var guid sql.NullString
		var deletion sql.NullInt64
		var active, isDirty, isLocal, isFavorited int64
		if err := rows.Scan(&t.LocalID, &guid, &t.USN, &t.Name, &t.ParentLocalID, &t.LinkedNotebookGUID,
			&deletion, &active, &isDirty, &isLocal, &isFavorited); err != nil {
			return nil, types.NewError(types.KindStorageFailure, "storage.FindTag", "scan failed", err)
		}
		t.GUID = guid.String
		t.DeletionTimestamp = int64PtrFromNull(deletion)
		t.Active = intToBool(active)
		t.IsDirty, t.IsLocal, t.IsFavorited = intToBool(isDirty), intToBool(isLocal), intToBool(isFavorited)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewError(types.KindStorageFailure, "storage.FindTag", "row iteration failed", err)
	}
	if t == nil {
		return nil, types.NewError(types.KindNotFound, "storage.FindTag", "tag not found", nil)
	}
	return t, nil
}

// UpdateTag replaces a tag row.
func (e *Engine) UpdateTag(t *types.Tag) error {
	if err := t.Validate(); err != nil {
		return err
	}
	return e.withTx("storage.UpdateTag", func(tx *sql.Tx) error {
		res, err := tx.Exec(`
			UPDATE tags SET guid=?, usn=?, name=?, name_upper=?, parent_local_id=?,
				linked_notebook_guid=?, deletion_timestamp=?, active=?, is_dirty=?, is_local=?, is_favorited=?
			WHERE local_id = ?
		`, nullString(t.GUID), t.USN, t.Name, strings.ToUpper(t.Name), t.ParentLocalID, t.LinkedNotebookGUID,
			nullInt64Ptr(t.DeletionTimestamp), boolToInt(t.Active), boolToInt(t.IsDirty),
			boolToInt(t.IsLocal), boolToInt(t.IsFavorited), t.LocalID)
		if err != nil {
			return conflictOrStorageFailure("storage.UpdateTag", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return types.NewError(types.KindNotFound, "storage.UpdateTag", "tag not found", nil)
		}
		return nil
	})
}

// DeleteTag soft-deletes a tag: sets DeletionTimestamp/Active=false.
// The row remains findable per contract.
func (e *Engine) DeleteTag(localID string, deletionTimestamp int64) error {
	return e.withTx("storage.DeleteTag", func(tx *sql.Tx) error {
		res, err := tx.Exec(`UPDATE tags SET deletion_timestamp = ?, active = 0 WHERE local_id = ?`,
			deletionTimestamp, localID)
		if err != nil {
			return types.NewError(types.KindStorageFailure, "storage.DeleteTag", "update failed", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return types.NewError(types.KindNotFound, "storage.DeleteTag", "tag not found", nil)
		}
		return nil
	})
}

// ExpungeTag hard-removes a tag and all of its descendants (the forest
// rooted at localID), returning the full set of expunged ids so
// callers can evict them from caches/models in one shot, per the
// expunge-tag-complete cascade the tag model reacts to.
func (e *Engine) ExpungeTag(localID string) (expunged []string, err error) {
	err = e.withTx("storage.ExpungeTag", func(tx *sql.Tx) error {
		ids, terr := descendantTagIDs(tx, localID)
		if terr != nil {
			return terr
		}
		ids = append(ids, localID)
		for _, id := range ids {
			if _, derr := tx.Exec(`DELETE FROM tags WHERE local_id = ?`, id); derr != nil {
				return types.NewError(types.KindStorageFailure, "storage.ExpungeTag", "delete failed", derr)
			}
		}
		expunged = ids
		return nil
	})
	return expunged, err
}

// descendantTagIDs walks the parent_local_id forest breadth-first,
// pooling the per-level string slice since expunge cascades run
// often against shallow personal tag trees.
func descendantTagIDs(tx *sql.Tx, rootLocalID string) ([]string, error) {
	out := pool.GetStringSlice()
	defer pool.PutStringSlice(out)
	frontier := []string{rootLocalID}
	for len(frontier) > 0 {
		next := pool.GetStringSlice()
		for _, parent := range frontier {
			rows, err := tx.Query(`SELECT local_id FROM tags WHERE parent_local_id = ?`, parent)
			if err != nil {
				pool.PutStringSlice(next)
				return nil, types.NewError(types.KindStorageFailure, "storage.descendantTagIDs", "query failed", err)
			}
			for rows.Next() {
				var id string
				if err := rows.Scan(&id); err != nil {
					rows.Close()
					pool.PutStringSlice(next)
					return nil, types.NewError(types.KindStorageFailure, "storage.descendantTagIDs", "scan failed", err)
				}
				next = append(next, id)
			}
			rows.Close()
		}
		out = append(out, next...)
		newFrontier := make([]string, len(next))
		copy(newFrontier, next)
		pool.PutStringSlice(next)
		frontier = newFrontier
	}
	result := make([]string, len(out))
	copy(result, out)
	return result, nil
}

// ListTags returns tags ordered per opts.
func (e *Engine) ListTags(order types.TagOrder, opts types.ListOptions) ([]*types.Tag, error) {
	query := `SELECT local_id FROM tags WHERE active = 1`
	var args []interface{}
	if opts.LinkedNotebookGUID != "" {
		query += ` AND linked_notebook_guid = ?`
		args = append(args, opts.LinkedNotebookGUID)
	}
	query += " ORDER BY " + tagOrderClause(order, opts.Direction)
	query = appendLimitOffset(query, opts, &args)

	e.mu.Lock()
	rows, err := e.db.Query(query, args...)
	e.mu.Unlock()
	if err != nil {
		return nil, types.NewError(types.KindStorageFailure, "storage.ListTags", "query failed", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, types.NewError(types.KindStorageFailure, "storage.ListTags", "scan failed", err)
		}
		ids = append(ids, id)
	}
	rows.Close()

	out := make([]*types.Tag, 0, len(ids))
	for _, id := range ids {
		t, err := e.FindTagByLocalID(id)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func tagOrderClause(order types.TagOrder, dir types.Direction) string {
	switch order {
	case types.TagOrderByUpdateSequenceNumber:
		return "usn " + directionSQL(dir) + ", local_id ASC"
	case types.TagOrderByName:
		return "name_upper " + directionSQL(dir) + ", local_id ASC"
	default:
		return "local_id ASC"
	}
}

// GetTagCount counts tags in scope, subject to count flags.
func (e *Engine) GetTagCount(scope types.Scope, opts types.CountOptions) (int, error) {
	query := `SELECT COUNT(*) FROM tags WHERE linked_notebook_guid = ?`
	args := []interface{}{scope.LinkedNotebookGUID}
	query += countActiveClause(opts, &args)

	e.mu.Lock()
	defer e.mu.Unlock()
	row := e.db.QueryRow(query, args...)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, types.NewError(types.KindStorageFailure, "storage.GetTagCount", "count query failed", err)
	}
	return n, nil
}

// countActiveClause translates CountOptions into an extra WHERE
// fragment over the `active` column, shared by every soft-deletable
// entity (notes, tags, users).
func countActiveClause(opts types.CountOptions, args *[]interface{}) string {
	includeNonDeleted := opts.Includes(types.CountIncludeNonDeleted)
	includeDeleted := opts.Includes(types.CountIncludeDeleted)
	switch {
	case includeNonDeleted && includeDeleted:
		return ""
	case includeDeleted:
		return " AND active = 0"
	default:
		return " AND active = 1"
	}
}
