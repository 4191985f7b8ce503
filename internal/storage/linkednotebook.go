package storage

import (
	"database/sql"

	"github.com/notarium/core/pkg/types"
)

// AddLinkedNotebook inserts a linked notebook reference.
func (e *Engine) AddLinkedNotebook(l *types.LinkedNotebook) error {
	if err := l.Validate(); err != nil {
		return err
	}
	return e.withTx("storage.AddLinkedNotebook", func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO linked_notebooks (guid, usn, share_name, username, shard_id, share_key, uri,
				note_store_url, web_api_url_prefix, stack, business_id)
			VALUES (?,?,?,?,?,?,?,?,?,?,?)
		`, l.GUID, l.USN, l.ShareName, l.Username, l.ShardID, l.ShareKey, l.URI,
			l.NoteStoreURL, l.WebAPIURLPrefix, l.Stack, l.BusinessID)
		if err != nil {
			return conflictOrStorageFailure("storage.AddLinkedNotebook", err)
		}
		return nil
	})
}

// FindLinkedNotebook populates a linked notebook by guid.
func (e *Engine) FindLinkedNotebook(guid string) (*types.LinkedNotebook, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	row := e.db.QueryRow(`
		SELECT guid, usn, share_name, username, shard_id, share_key, uri,
			note_store_url, web_api_url_prefix, stack, business_id
		FROM linked_notebooks WHERE guid = ?`, guid)
	l := &types.LinkedNotebook{}
	if err := row.Scan(&l.GUID, &l.USN, &l.ShareName, &l.Username, &l.ShardID, &l.ShareKey, &l.URI,
		&l.NoteStoreURL, &l.WebAPIURLPrefix, &l.Stack, &l.BusinessID); err != nil {
		if err == sql.ErrNoRows {
			return nil, types.NewError(types.KindNotFound, "storage.FindLinkedNotebook", "linked notebook not found", nil)
		}
		return nil, types.NewError(types.KindStorageFailure, "storage.FindLinkedNotebook", "scan failed", err)
	}
	return l, nil
}

// UpdateLinkedNotebook replaces a linked notebook row.
func (e *Engine) UpdateLinkedNotebook(l *types.LinkedNotebook) error {
	if err := l.Validate(); err != nil {
		return err
	}
	return e.withTx("storage.UpdateLinkedNotebook", func(tx *sql.Tx) error {
		res, err := tx.Exec(`
			UPDATE linked_notebooks SET usn=?, share_name=?, username=?, shard_id=?, share_key=?,
				uri=?, note_store_url=?, web_api_url_prefix=?, stack=?, business_id=?
			WHERE guid = ?
		`, l.USN, l.ShareName, l.Username, l.ShardID, l.ShareKey, l.URI, l.NoteStoreURL,
			l.WebAPIURLPrefix, l.Stack, l.BusinessID, l.GUID)
		if err != nil {
			return types.NewError(types.KindStorageFailure, "storage.UpdateLinkedNotebook", "update failed", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return types.NewError(types.KindNotFound, "storage.UpdateLinkedNotebook", "linked notebook not found", nil)
		}
		return nil
	})
}

// ExpungeLinkedNotebook hard-removes a linked notebook; ON DELETE
// CASCADE removes its notebooks (and transitively their notes, tags,
// etc. per the notebook cascade).
func (e *Engine) ExpungeLinkedNotebook(guid string) error {
	return e.withTx("storage.ExpungeLinkedNotebook", func(tx *sql.Tx) error {
		res, err := tx.Exec(`DELETE FROM linked_notebooks WHERE guid = ?`, guid)
		if err != nil {
			return types.NewError(types.KindStorageFailure, "storage.ExpungeLinkedNotebook", "delete failed", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return types.NewError(types.KindNotFound, "storage.ExpungeLinkedNotebook", "linked notebook not found", nil)
		}
		return nil
	})
}

// ListLinkedNotebooks returns every linked notebook, guid order.
func (e *Engine) ListLinkedNotebooks() ([]*types.LinkedNotebook, error) {
	e.mu.Lock()
	rows, err := e.db.Query(`
		SELECT guid, usn, share_name, username, shard_id, share_key, uri,
			note_store_url, web_api_url_prefix, stack, business_id
		FROM linked_notebooks ORDER BY guid ASC`)
	e.mu.Unlock()
	if err != nil {
		return nil, types.NewError(types.KindStorageFailure, "storage.ListLinkedNotebooks", "query failed", err)
	}
	defer rows.Close()

	var out []*types.LinkedNotebook
	for rows.Next() {
		l := &types.LinkedNotebook{}
		if err := rows.Scan(&l.GUID, &l.USN, &l.ShareName, &l.Username, &l.ShardID, &l.ShareKey, &l.URI,
			&l.NoteStoreURL, &l.WebAPIURLPrefix, &l.Stack, &l.BusinessID); err != nil {
			return nil, types.NewError(types.KindStorageFailure, "storage.ListLinkedNotebooks", "scan failed", err)
		}
		out = append(out, l)
	}
	return out, nil
}
