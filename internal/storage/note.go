package storage

import (
	"database/sql"
	"strings"

	"github.com/notarium/core/pkg/codec"
	"github.com/notarium/core/pkg/types"
)

const listOfWordsSeparator = "\x1f"

// AddNote inserts a note, its tag links, and its resources in one
// transaction, assigning a local id if the caller left it empty.
func (e *Engine) AddNote(n *types.Note) error {
	if n.LocalID == "" {
		n.LocalID = types.NewLocalID()
	}
	n.ApplyDerivedProjections()
	if err := n.Validate(); err != nil {
		return err
	}
	return e.withTx("storage.AddNote", func(tx *sql.Tx) error {
		if !notebookExists(tx, n.NotebookLocalID) {
			return types.NewError(types.KindInvalidInput, "storage.AddNote", "notebook does not exist", nil)
		}
		_, err := tx.Exec(`
			INSERT INTO notes (local_id, guid, usn, title, content, plain_text, list_of_words,
				creation_timestamp, modification_timestamp, deletion_timestamp, active,
				notebook_local_id, attributes_blob, thumbnail, is_dirty, is_local, is_favorited)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		`, n.LocalID, nullString(n.GUID), n.USN, n.Title, n.Content, n.PlainText,
			strings.Join(n.ListOfWords, listOfWordsSeparator), n.CreationTimestamp, n.ModificationTimestamp,
			nullInt64Ptr(n.DeletionTimestamp), boolToInt(n.Active), n.NotebookLocalID,
			codec.EncodeNoteAttributes(n.Attributes), n.Thumbnail,
			boolToInt(n.IsDirty), boolToInt(n.IsLocal), boolToInt(n.IsFavorited))
		if err != nil {
			return conflictOrStorageFailure("storage.AddNote", err)
		}
		if err := writeNoteTags(tx, n.LocalID, n.TagLocalIDs); err != nil {
			return err
		}
		return writeResources(tx, n.LocalID, n.Resources)
	})
}

func notebookExists(tx *sql.Tx, localID string) bool {
	var one int
	return tx.QueryRow(`SELECT 1 FROM notebooks WHERE local_id = ?`, localID).Scan(&one) == nil
}

// FindNoteByLocalID populates a note and its tag links and resources.
func (e *Engine) FindNoteByLocalID(localID string) (*types.Note, error) {
	e.mu.Lock()
	row := e.db.QueryRow(`
		SELECT local_id, guid, usn, title, content, plain_text, list_of_words, creation_timestamp,
			modification_timestamp, deletion_timestamp, active, notebook_local_id, attributes_blob,
			thumbnail, is_dirty, is_local, is_favorited
		FROM notes WHERE local_id = ?`, localID)
	n, err := scanNote(row)
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}

	tagIDs, err := e.noteTagIDs(localID)
	if err != nil {
		return nil, err
	}
	n.TagLocalIDs = tagIDs

	resources, err := e.listResourcesForNote(localID)
	if err != nil {
		return nil, err
	}
	n.Resources = resources

	return n, nil
}

func scanNote(row *sql.Row) (*types.Note, error) {
	n := &types.Note{}
	var guid sql.NullString
	var listOfWords string
	var deletion sql.NullInt64
	var attrBlob, thumbnail []byte
	var active, isDirty, isLocal, isFavorited int64
	if err := row.Scan(&n.LocalID, &guid, &n.USN, &n.Title, &n.Content, &n.PlainText, &listOfWords,
		&n.CreationTimestamp, &n.ModificationTimestamp, &deletion, &active, &n.NotebookLocalID,
		&attrBlob, &thumbnail, &isDirty, &isLocal, &isFavorited); err != nil {
		if err == sql.ErrNoRows {
			return nil, types.NewError(types.KindNotFound, "storage.FindNote", "note not found", nil)
		}
		return nil, types.NewError(types.KindStorageFailure, "storage.FindNote", "scan failed", err)
	}
	n.GUID = guid.String
	if listOfWords != "" {
		n.ListOfWords = strings.Split(listOfWords, listOfWordsSeparator)
	}
	n.DeletionTimestamp = int64PtrFromNull(deletion)
	n.Active = intToBool(active)
	n.Thumbnail = thumbnail
	n.IsDirty, n.IsLocal, n.IsFavorited = intToBool(isDirty), intToBool(isLocal), intToBool(isFavorited)
	attrs, err := codec.DecodeNoteAttributes(attrBlob)
	if err != nil {
		return nil, types.NewError(types.KindStorageFailure, "storage.FindNote", "failed to decode attributes", err)
	}
	n.Attributes = attrs
	return n, nil
}

// UpdateNote replaces a note row and its owned sub-records, returning
// the tag list as it stood before the update so callers can diff it
// against n.TagLocalIDs for the noteTagListChanged fan-out event.
func (e *Engine) UpdateNote(n *types.Note) (previousTagLocalIDs []string, err error) {
	n.ApplyDerivedProjections()
	if verr := n.Validate(); verr != nil {
		return nil, verr
	}

	err = e.withTx("storage.UpdateNote", func(tx *sql.Tx) error {
		if !notebookExists(tx, n.NotebookLocalID) {
			return types.NewError(types.KindInvalidInput, "storage.UpdateNote", "notebook does not exist", nil)
		}

		rows, qerr := tx.Query(`SELECT tag_local_id FROM note_tags WHERE note_local_id = ? ORDER BY tag_index ASC`, n.LocalID)
		if qerr != nil {
			return types.NewError(types.KindStorageFailure, "storage.UpdateNote", "failed to read previous tags", qerr)
		}
		for rows.Next() {
			var id string
			if serr := rows.Scan(&id); serr != nil {
				rows.Close()
				return types.NewError(types.KindStorageFailure, "storage.UpdateNote", "scan failed", serr)
			}
			previousTagLocalIDs = append(previousTagLocalIDs, id)
		}
		rows.Close()

		res, err := tx.Exec(`
			UPDATE notes SET guid=?, usn=?, title=?, content=?, plain_text=?, list_of_words=?,
				modification_timestamp=?, deletion_timestamp=?, active=?, notebook_local_id=?,
				attributes_blob=?, thumbnail=?, is_dirty=?, is_local=?, is_favorited=?
			WHERE local_id = ?
		`, nullString(n.GUID), n.USN, n.Title, n.Content, n.PlainText,
			strings.Join(n.ListOfWords, listOfWordsSeparator), n.ModificationTimestamp,
			nullInt64Ptr(n.DeletionTimestamp), boolToInt(n.Active), n.NotebookLocalID,
			codec.EncodeNoteAttributes(n.Attributes), n.Thumbnail,
			boolToInt(n.IsDirty), boolToInt(n.IsLocal), boolToInt(n.IsFavorited), n.LocalID)
		if err != nil {
			return conflictOrStorageFailure("storage.UpdateNote", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return types.NewError(types.KindNotFound, "storage.UpdateNote", "note not found", nil)
		}

		if _, err := tx.Exec(`DELETE FROM note_tags WHERE note_local_id = ?`, n.LocalID); err != nil {
			return types.NewError(types.KindStorageFailure, "storage.UpdateNote", "failed to clear tags", err)
		}
		if err := writeNoteTags(tx, n.LocalID, n.TagLocalIDs); err != nil {
			return err
		}

		if _, err := tx.Exec(`DELETE FROM resources WHERE note_local_id = ?`, n.LocalID); err != nil {
			return types.NewError(types.KindStorageFailure, "storage.UpdateNote", "failed to clear resources", err)
		}
		return writeResources(tx, n.LocalID, n.Resources)
	})
	return previousTagLocalIDs, err
}

// DeleteNote soft-deletes a note.
func (e *Engine) DeleteNote(localID string, deletionTimestamp int64) error {
	return e.withTx("storage.DeleteNote", func(tx *sql.Tx) error {
		res, err := tx.Exec(`UPDATE notes SET deletion_timestamp = ?, active = 0 WHERE local_id = ?`,
			deletionTimestamp, localID)
		if err != nil {
			return types.NewError(types.KindStorageFailure, "storage.DeleteNote", "update failed", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return types.NewError(types.KindNotFound, "storage.DeleteNote", "note not found", nil)
		}
		return nil
	})
}

// ExpungeNote hard-removes a note; ON DELETE CASCADE removes its
// resources and note-tag links.
func (e *Engine) ExpungeNote(localID string) error {
	return e.withTx("storage.ExpungeNote", func(tx *sql.Tx) error {
		res, err := tx.Exec(`DELETE FROM notes WHERE local_id = ?`, localID)
		if err != nil {
			return types.NewError(types.KindStorageFailure, "storage.ExpungeNote", "delete failed", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return types.NewError(types.KindNotFound, "storage.ExpungeNote", "note not found", nil)
		}
		return nil
	})
}

// ListNotes returns notes ordered per opts, optionally filtered to a
// single notebook or a single tag.
func (e *Engine) ListNotes(order types.NoteOrder, opts types.ListOptions) ([]*types.Note, error) {
	query := `SELECT DISTINCT n.local_id FROM notes n`
	var args []interface{}
	if opts.TagLocalID != "" {
		query += ` JOIN note_tags nt ON nt.note_local_id = n.local_id AND nt.tag_local_id = ?`
		args = append(args, opts.TagLocalID)
	}
	query += ` WHERE n.active = 1`
	if opts.NotebookLocalID != "" {
		query += ` AND n.notebook_local_id = ?`
		args = append(args, opts.NotebookLocalID)
	}
	query += " ORDER BY " + noteOrderClause(order, opts.Direction)
	query = appendLimitOffset(query, opts, &args)

	e.mu.Lock()
	rows, err := e.db.Query(query, args...)
	e.mu.Unlock()
	if err != nil {
		return nil, types.NewError(types.KindStorageFailure, "storage.ListNotes", "query failed", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, types.NewError(types.KindStorageFailure, "storage.ListNotes", "scan failed", err)
		}
		ids = append(ids, id)
	}
	rows.Close()

	out := make([]*types.Note, 0, len(ids))
	for _, id := range ids {
		n, err := e.FindNoteByLocalID(id)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func noteOrderClause(order types.NoteOrder, dir types.Direction) string {
	col := "n.local_id"
	switch order {
	case types.NoteOrderByCreationTimestamp:
		col = "n.creation_timestamp"
	case types.NoteOrderByModificationTimestamp:
		col = "n.modification_timestamp"
	case types.NoteOrderByTitle:
		col = "n.title"
	case types.NoteOrderByUpdateSequenceNumber:
		col = "n.usn"
	case types.NoteOrderNone:
		return "n.local_id ASC"
	}
	return col + " " + directionSQL(dir) + ", n.local_id ASC"
}

// GetNoteCount counts notes in a notebook, subject to count flags.
func (e *Engine) GetNoteCount(notebookLocalID string, opts types.CountOptions) (int, error) {
	query := `SELECT COUNT(*) FROM notes WHERE notebook_local_id = ?`
	args := []interface{}{notebookLocalID}
	query += countActiveClause(opts, &args)

	e.mu.Lock()
	defer e.mu.Unlock()
	row := e.db.QueryRow(query, args...)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, types.NewError(types.KindStorageFailure, "storage.GetNoteCount", "count query failed", err)
	}
	return n, nil
}

// LinkTagWithNote inserts a note-tag row at the end of the note's tag
// list, failing if either side does not exist.
func (e *Engine) LinkTagWithNote(noteLocalID, tagLocalID string) error {
	return e.withTx("storage.LinkTagWithNote", func(tx *sql.Tx) error {
		if !noteExists(tx, noteLocalID) {
			return types.NewError(types.KindNotFound, "storage.LinkTagWithNote", "note not found", nil)
		}
		if !tagExists(tx, tagLocalID) {
			return types.NewError(types.KindNotFound, "storage.LinkTagWithNote", "tag not found", nil)
		}
		var nextIndex int
		if err := tx.QueryRow(`SELECT COALESCE(MAX(tag_index), -1) + 1 FROM note_tags WHERE note_local_id = ?`, noteLocalID).Scan(&nextIndex); err != nil {
			return types.NewError(types.KindStorageFailure, "storage.LinkTagWithNote", "failed to compute index", err)
		}
		if _, err := tx.Exec(`INSERT OR IGNORE INTO note_tags (note_local_id, tag_local_id, tag_index) VALUES (?,?,?)`,
			noteLocalID, tagLocalID, nextIndex); err != nil {
			return types.NewError(types.KindStorageFailure, "storage.LinkTagWithNote", "insert failed", err)
		}
		return nil
	})
}

// UnlinkTagWithNote removes a note-tag row.
func (e *Engine) UnlinkTagWithNote(noteLocalID, tagLocalID string) error {
	return e.withTx("storage.UnlinkTagWithNote", func(tx *sql.Tx) error {
		res, err := tx.Exec(`DELETE FROM note_tags WHERE note_local_id = ? AND tag_local_id = ?`, noteLocalID, tagLocalID)
		if err != nil {
			return types.NewError(types.KindStorageFailure, "storage.UnlinkTagWithNote", "delete failed", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return types.NewError(types.KindNotFound, "storage.UnlinkTagWithNote", "note-tag link not found", nil)
		}
		return nil
	})
}

func noteExists(tx *sql.Tx, localID string) bool {
	var one int
	return tx.QueryRow(`SELECT 1 FROM notes WHERE local_id = ?`, localID).Scan(&one) == nil
}

func tagExists(tx *sql.Tx, localID string) bool {
	var one int
	return tx.QueryRow(`SELECT 1 FROM tags WHERE local_id = ?`, localID).Scan(&one) == nil
}

func writeNoteTags(tx *sql.Tx, noteLocalID string, tagLocalIDs []string) error {
	for i, tagID := range tagLocalIDs {
		if _, err := tx.Exec(`INSERT INTO note_tags (note_local_id, tag_local_id, tag_index) VALUES (?,?,?)`,
			noteLocalID, tagID, i); err != nil {
			return types.NewError(types.KindStorageFailure, "storage.writeNoteTags", "insert failed", err)
		}
	}
	return nil
}

func (e *Engine) noteTagIDs(noteLocalID string) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	rows, err := e.db.Query(`SELECT tag_local_id FROM note_tags WHERE note_local_id = ? ORDER BY tag_index ASC`, noteLocalID)
	if err != nil {
		return nil, types.NewError(types.KindStorageFailure, "storage.noteTagIDs", "query failed", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, types.NewError(types.KindStorageFailure, "storage.noteTagIDs", "scan failed", err)
		}
		out = append(out, id)
	}
	return out, nil
}
