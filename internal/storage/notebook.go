package storage

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/notarium/core/pkg/types"
)

// AddNotebook inserts a notebook and its optional sub-records in one
// transaction, assigning a local id if the caller left it empty.
func (e *Engine) AddNotebook(n *types.Notebook) error {
	if n.LocalID == "" {
		n.LocalID = types.NewLocalID()
	}
	if err := n.Validate(); err != nil {
		return err
	}

	return e.withTx("storage.AddNotebook", func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO notebooks (local_id, guid, usn, name, name_upper, creation_timestamp,
				modification_timestamp, is_default, is_last_used, stack, linked_notebook_guid,
				is_dirty, is_local, is_favorited, publishing_blob, business_blob)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		`, n.LocalID, nullString(n.GUID), n.USN, n.Name, strings.ToUpper(n.Name),
			n.CreationTimestamp, n.ModificationTimestamp, boolToInt(n.IsDefault), boolToInt(n.IsLastUsed),
			n.Stack, n.LinkedNotebookGUID, boolToInt(n.IsDirty), boolToInt(n.IsLocal), boolToInt(n.IsFavorited),
			encodePublishing(n.Publishing), encodeBusinessNotebook(n.Business))
		if err != nil {
			return conflictOrStorageFailure("storage.AddNotebook", err)
		}
		if err := writeNotebookRestrictions(tx, n.LocalID, n.Restrictions); err != nil {
			return err
		}
		return writeSharedNotebooks(tx, n.LocalID, n.SharedNotebooks)
	})
}

// FindNotebookByLocalID populates a notebook and its sub-records by
// local id.
func (e *Engine) FindNotebookByLocalID(localID string) (*types.Notebook, error) {
	return e.findNotebook("local_id = ?", localID)
}

// FindNotebookByName finds a notebook by case-insensitive name within
// scope; fails AmbiguousKey if more than one row matches the case
// collation (should not happen given the unique index, but guards
// against data imported out of band).
func (e *Engine) FindNotebookByName(name string, scope types.Scope) (*types.Notebook, error) {
	return e.findNotebook("name_upper = ? AND linked_notebook_guid = ?", strings.ToUpper(name), scope.LinkedNotebookGUID)
}

func (e *Engine) findNotebook(where string, args ...interface{}) (*types.Notebook, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rows, err := e.db.Query(`
		SELECT local_id, guid, usn, name, creation_timestamp, modification_timestamp,
			is_default, is_last_used, stack, linked_notebook_guid, is_dirty, is_local,
			is_favorited, publishing_blob, business_blob
		FROM notebooks WHERE `+where, args...)
	if err != nil {
		return nil, types.NewError(types.KindStorageFailure, "storage.FindNotebook", "query failed", err)
	}
	defer rows.Close()

	var n *types.Notebook
	for rows.Next() {
		if n != nil {
			return nil, types.NewError(types.KindAmbiguousKey, "storage.FindNotebook", "more than one notebook matched", nil)
		}
		n = &types.Notebook{}
		var guid sql.NullString
		var publishingBlob, businessBlob []byte
		var isDefault, isLastUsed, isDirty, isLocal, isFavorited int64
		if err := rows.Scan(&n.LocalID, &guid, &n.USN, &n.Name, &n.CreationTimestamp, &n.ModificationTimestamp,
			&isDefault, &isLastUsed, &n.Stack, &n.LinkedNotebookGUID, &isDirty, &isLocal, &isFavorited,
			&publishingBlob, &businessBlob); err != nil {
			return nil, types.NewError(types.KindStorageFailure, "storage.FindNotebook", "scan failed", err)
		}
		n.GUID = guid.String
		n.IsDefault, n.IsLastUsed = intToBool(isDefault), intToBool(isLastUsed)
		n.IsDirty, n.IsLocal, n.IsFavorited = intToBool(isDirty), intToBool(isLocal), intToBool(isFavorited)
		n.Publishing = decodePublishing(publishingBlob)
		n.Business = decodeBusinessNotebook(businessBlob)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewError(types.KindStorageFailure, "storage.FindNotebook", "row iteration failed", err)
	}
	if n == nil {
		return nil, types.NewError(types.KindNotFound, "storage.FindNotebook", "notebook not found", nil)
	}

	restrictions, err := readNotebookRestrictions(e.db, n.LocalID)
	if err != nil {
		return nil, err
	}
	n.Restrictions = restrictions

	shared, err := readSharedNotebooks(e.db, n.LocalID)
	if err != nil {
		return nil, err
	}
	n.SharedNotebooks = shared

	return n, nil
}

// UpdateNotebook replaces a notebook row and its sub-records.
func (e *Engine) UpdateNotebook(n *types.Notebook) error {
	if err := n.Validate(); err != nil {
		return err
	}
	return e.withTx("storage.UpdateNotebook", func(tx *sql.Tx) error {
		res, err := tx.Exec(`
			UPDATE notebooks SET guid=?, usn=?, name=?, name_upper=?, modification_timestamp=?,
				is_default=?, is_last_used=?, stack=?, linked_notebook_guid=?, is_dirty=?,
				is_local=?, is_favorited=?, publishing_blob=?, business_blob=?
			WHERE local_id = ?
		`, nullString(n.GUID), n.USN, n.Name, strings.ToUpper(n.Name), n.ModificationTimestamp,
			boolToInt(n.IsDefault), boolToInt(n.IsLastUsed), n.Stack, n.LinkedNotebookGUID,
			boolToInt(n.IsDirty), boolToInt(n.IsLocal), boolToInt(n.IsFavorited),
			encodePublishing(n.Publishing), encodeBusinessNotebook(n.Business), n.LocalID)
		if err != nil {
			return conflictOrStorageFailure("storage.UpdateNotebook", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return types.NewError(types.KindNotFound, "storage.UpdateNotebook", "notebook not found", nil)
		}
		if _, err := tx.Exec(`DELETE FROM notebook_restrictions WHERE notebook_local_id = ?`, n.LocalID); err != nil {
			return types.NewError(types.KindStorageFailure, "storage.UpdateNotebook", "failed to clear restrictions", err)
		}
		if err := writeNotebookRestrictions(tx, n.LocalID, n.Restrictions); err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM shared_notebooks WHERE notebook_local_id = ?`, n.LocalID); err != nil {
			return types.NewError(types.KindStorageFailure, "storage.UpdateNotebook", "failed to clear shared notebooks", err)
		}
		return writeSharedNotebooks(tx, n.LocalID, n.SharedNotebooks)
	})
}

// ExpungeNotebook hard-removes a notebook; ON DELETE CASCADE removes
// its notes, their resources, and note-tag links. Tags themselves
// survive (they are not FK-owned by a notebook).
func (e *Engine) ExpungeNotebook(localID string) error {
	return e.withTx("storage.ExpungeNotebook", func(tx *sql.Tx) error {
		res, err := tx.Exec(`DELETE FROM notebooks WHERE local_id = ?`, localID)
		if err != nil {
			return types.NewError(types.KindStorageFailure, "storage.ExpungeNotebook", "delete failed", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return types.NewError(types.KindNotFound, "storage.ExpungeNotebook", "notebook not found", nil)
		}
		return nil
	})
}

// ListNotebooks returns notebooks ordered per opts, with local id
// appended as the final sort key for stable pagination.
func (e *Engine) ListNotebooks(order types.NotebookOrder, opts types.ListOptions) ([]*types.Notebook, error) {
	query := `SELECT local_id FROM notebooks WHERE 1=1`
	var args []interface{}
	if opts.LinkedNotebookGUID != "" {
		query += ` AND linked_notebook_guid = ?`
		args = append(args, opts.LinkedNotebookGUID)
	}
	query += " ORDER BY " + notebookOrderClause(order, opts.Direction)
	query = appendLimitOffset(query, opts, &args)

	e.mu.Lock()
	rows, err := e.db.Query(query, args...)
	e.mu.Unlock()
	if err != nil {
		return nil, types.NewError(types.KindStorageFailure, "storage.ListNotebooks", "query failed", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, types.NewError(types.KindStorageFailure, "storage.ListNotebooks", "scan failed", err)
		}
		ids = append(ids, id)
	}

	out := make([]*types.Notebook, 0, len(ids))
	for _, id := range ids {
		n, err := e.FindNotebookByLocalID(id)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func notebookOrderClause(order types.NotebookOrder, dir types.Direction) string {
	col := "local_id"
	switch order {
	case types.NotebookOrderByUpdateSequenceNumber:
		col = "usn"
	case types.NotebookOrderByName:
		col = "name_upper"
	case types.NotebookOrderByCreationTimestamp:
		col = "creation_timestamp"
	case types.NotebookOrderByModificationTimestamp:
		col = "modification_timestamp"
	case types.NotebookOrderNone:
		return "local_id ASC"
	}
	return col + " " + directionSQL(dir) + ", local_id ASC"
}

// GetNotebookCount counts notebooks, optionally scoped to a linked
// notebook. Notebooks have no soft-delete state, so unlike the other
// entity counts this one takes no count flags.
func (e *Engine) GetNotebookCount(scope types.Scope) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	row := e.db.QueryRow(`SELECT COUNT(*) FROM notebooks WHERE linked_notebook_guid = ?`, scope.LinkedNotebookGUID)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, types.NewError(types.KindStorageFailure, "storage.GetNotebookCount", "count query failed", err)
	}
	return n, nil
}

func conflictOrStorageFailure(op string, err error) error {
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") {
		return types.NewError(types.KindConflict, op, "unique constraint violated", err)
	}
	return types.NewError(types.KindStorageFailure, op, "write failed", err)
}

func directionSQL(dir types.Direction) string {
	if dir == types.Descending {
		return "DESC"
	}
	return "ASC"
}

func appendLimitOffset(query string, opts types.ListOptions, args *[]interface{}) string {
	if opts.Limit > 0 {
		query += " LIMIT ?"
		*args = append(*args, opts.Limit)
		if opts.Offset > 0 {
			query += " OFFSET ?"
			*args = append(*args, opts.Offset)
		}
	}
	return query
}

func writeNotebookRestrictions(tx *sql.Tx, notebookLocalID string, r *types.NotebookRestrictions) error {
	if r == nil {
		return nil
	}
	_, err := tx.Exec(`
		INSERT INTO notebook_restrictions (notebook_local_id, no_update_notebook, no_expunge_notebook,
			no_set_default_notebook, no_rename_notebook, no_create_notes, no_update_notes, no_expunge_notes,
			no_share_notes, no_email_notes, no_create_tags, no_update_tags, no_expunge_tags,
			no_set_parent_tag, no_create_shared_notebooks)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
	`, notebookLocalID, boolToInt(r.NoUpdateNotebook), boolToInt(r.NoExpungeNotebook),
		boolToInt(r.NoSetDefaultNotebook), boolToInt(r.NoRenameNotebook), boolToInt(r.NoCreateNotes),
		boolToInt(r.NoUpdateNotes), boolToInt(r.NoExpungeNotes), boolToInt(r.NoShareNotes),
		boolToInt(r.NoEmailNotes), boolToInt(r.NoCreateTags), boolToInt(r.NoUpdateTags),
		boolToInt(r.NoExpungeTags), boolToInt(r.NoSetParentTag), boolToInt(r.NoCreateSharedNotebooks))
	if err != nil {
		return types.NewError(types.KindStorageFailure, "storage.writeNotebookRestrictions", "insert failed", err)
	}
	return nil
}

func readNotebookRestrictions(q queryer, notebookLocalID string) (*types.NotebookRestrictions, error) {
	row := q.QueryRow(`
		SELECT no_update_notebook, no_expunge_notebook, no_set_default_notebook, no_rename_notebook,
			no_create_notes, no_update_notes, no_expunge_notes, no_share_notes, no_email_notes,
			no_create_tags, no_update_tags, no_expunge_tags, no_set_parent_tag, no_create_shared_notebooks
		FROM notebook_restrictions WHERE notebook_local_id = ?`, notebookLocalID)
	var r types.NotebookRestrictions
	var vals [14]int64
	if err := row.Scan(&vals[0], &vals[1], &vals[2], &vals[3], &vals[4], &vals[5], &vals[6], &vals[7],
		&vals[8], &vals[9], &vals[10], &vals[11], &vals[12], &vals[13]); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, types.NewError(types.KindStorageFailure, "storage.readNotebookRestrictions", "query failed", err)
	}
	r.NoUpdateNotebook = intToBool(vals[0])
	r.NoExpungeNotebook = intToBool(vals[1])
	r.NoSetDefaultNotebook = intToBool(vals[2])
	r.NoRenameNotebook = intToBool(vals[3])
	r.NoCreateNotes = intToBool(vals[4])
	r.NoUpdateNotes = intToBool(vals[5])
	r.NoExpungeNotes = intToBool(vals[6])
	r.NoShareNotes = intToBool(vals[7])
	r.NoEmailNotes = intToBool(vals[8])
	r.NoCreateTags = intToBool(vals[9])
	r.NoUpdateTags = intToBool(vals[10])
	r.NoExpungeTags = intToBool(vals[11])
	r.NoSetParentTag = intToBool(vals[12])
	r.NoCreateSharedNotebooks = intToBool(vals[13])
	return &r, nil
}

func writeSharedNotebooks(tx *sql.Tx, notebookLocalID string, shared []types.SharedNotebook) error {
	for _, s := range shared {
		_, err := tx.Exec(`
			INSERT INTO shared_notebooks (notebook_local_id, user_id, notebook_guid, email,
				creation_timestamp, modification_timestamp, share_key, username, privilege,
				allow_preview, recipient_reminder_notify_email, recipient_reminder_notify_in_app)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?)
		`, notebookLocalID, s.UserID, s.NotebookGUID, s.Email, s.CreationTimestamp, s.ModificationTimestamp,
			s.ShareKey, s.Username, s.Privilege, boolToInt(s.AllowPreview),
			boolToInt(s.RecipientReminderNotifyEmail), boolToInt(s.RecipientReminderNotifyInApp))
		if err != nil {
			return types.NewError(types.KindStorageFailure, "storage.writeSharedNotebooks", "insert failed", err)
		}
	}
	return nil
}

func readSharedNotebooks(q queryer, notebookLocalID string) ([]types.SharedNotebook, error) {
	rows, err := q.Query(`
		SELECT id, user_id, notebook_guid, email, creation_timestamp, modification_timestamp,
			share_key, username, privilege, allow_preview, recipient_reminder_notify_email,
			recipient_reminder_notify_in_app
		FROM shared_notebooks WHERE notebook_local_id = ?`, notebookLocalID)
	if err != nil {
		return nil, types.NewError(types.KindStorageFailure, "storage.readSharedNotebooks", "query failed", err)
	}
	defer rows.Close()

	var out []types.SharedNotebook
	for rows.Next() {
		var s types.SharedNotebook
		var allowPreview, notifyEmail, notifyInApp int64
		if err := rows.Scan(&s.ID, &s.UserID, &s.NotebookGUID, &s.Email, &s.CreationTimestamp,
			&s.ModificationTimestamp, &s.ShareKey, &s.Username, &s.Privilege, &allowPreview,
			&notifyEmail, &notifyInApp); err != nil {
			return nil, types.NewError(types.KindStorageFailure, "storage.readSharedNotebooks", "scan failed", err)
		}
		s.AllowPreview = intToBool(allowPreview)
		s.RecipientReminderNotifyEmail = intToBool(notifyEmail)
		s.RecipientReminderNotifyInApp = intToBool(notifyInApp)
		out = append(out, s)
	}
	return out, nil
}

// queryer is satisfied by both *sql.DB and *sql.Tx, letting find
// helpers run against either a live connection or an in-flight
// transaction.
type queryer interface {
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}
