package storage

import (
	"database/sql"

	"github.com/notarium/core/pkg/codec"
	"github.com/notarium/core/pkg/types"
)

func writeResources(tx *sql.Tx, noteLocalID string, resources []types.Resource) error {
	for i := range resources {
		r := &resources[i]
		r.NoteLocalID = noteLocalID
		if r.LocalID == "" {
			r.LocalID = types.NewLocalID()
		}
		if err := r.Validate(); err != nil {
			return err
		}
		_, err := tx.Exec(`
			INSERT INTO resources (local_id, guid, usn, note_local_id, mime_type, width, height,
				data_body, data_size, data_hash, recognition_body, recognition_size, recognition_hash,
				alternate_data_body, alternate_data_size, alternate_data_hash, attributes_blob)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		`, r.LocalID, nullString(r.GUID), r.USN, r.NoteLocalID, r.MimeType, r.Width, r.Height,
			r.DataBody, r.DataSize, r.DataHash, r.RecognitionBody, r.RecognitionSize, r.RecognitionHash,
			r.AlternateDataBody, r.AlternateDataSize, r.AlternateDataHash, codec.EncodeResourceAttributes(r.Attributes))
		if err != nil {
			return conflictOrStorageFailure("storage.writeResources", err)
		}
	}
	return nil
}

func scanResource(row *sql.Row) (*types.Resource, error) {
	r := &types.Resource{}
	var guid sql.NullString
	var attrBlob []byte
	if err := row.Scan(&r.LocalID, &guid, &r.USN, &r.NoteLocalID, &r.MimeType, &r.Width, &r.Height,
		&r.DataBody, &r.DataSize, &r.DataHash, &r.RecognitionBody, &r.RecognitionSize, &r.RecognitionHash,
		&r.AlternateDataBody, &r.AlternateDataSize, &r.AlternateDataHash, &attrBlob); err != nil {
		if err == sql.ErrNoRows {
			return nil, types.NewError(types.KindNotFound, "storage.FindResource", "resource not found", nil)
		}
		return nil, types.NewError(types.KindStorageFailure, "storage.FindResource", "scan failed", err)
	}
	r.GUID = guid.String
	attrs, err := codec.DecodeResourceAttributes(attrBlob)
	if err != nil {
		return nil, types.NewError(types.KindStorageFailure, "storage.FindResource", "failed to decode attributes", err)
	}
	r.Attributes = attrs
	return r, nil
}

const resourceColumns = `local_id, guid, usn, note_local_id, mime_type, width, height,
	data_body, data_size, data_hash, recognition_body, recognition_size, recognition_hash,
	alternate_data_body, alternate_data_size, alternate_data_hash, attributes_blob`

// FindResourceByLocalID populates a resource by local id.
func (e *Engine) FindResourceByLocalID(localID string) (*types.Resource, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	row := e.db.QueryRow(`SELECT `+resourceColumns+` FROM resources WHERE local_id = ?`, localID)
	return scanResource(row)
}

func (e *Engine) listResourcesForNote(noteLocalID string) ([]types.Resource, error) {
	e.mu.Lock()
	rows, err := e.db.Query(`SELECT local_id FROM resources WHERE note_local_id = ? ORDER BY local_id ASC`, noteLocalID)
	e.mu.Unlock()
	if err != nil {
		return nil, types.NewError(types.KindStorageFailure, "storage.listResourcesForNote", "query failed", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, types.NewError(types.KindStorageFailure, "storage.listResourcesForNote", "scan failed", err)
		}
		ids = append(ids, id)
	}
	rows.Close()

	out := make([]types.Resource, 0, len(ids))
	for _, id := range ids {
		r, err := e.FindResourceByLocalID(id)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, nil
}

// UpdateResource replaces a single resource row independently of its
// owning note's Update call.
func (e *Engine) UpdateResource(r *types.Resource) error {
	if err := r.Validate(); err != nil {
		return err
	}
	return e.withTx("storage.UpdateResource", func(tx *sql.Tx) error {
		res, err := tx.Exec(`
			UPDATE resources SET guid=?, usn=?, note_local_id=?, mime_type=?, width=?, height=?,
				data_body=?, data_size=?, data_hash=?, recognition_body=?, recognition_size=?,
				recognition_hash=?, alternate_data_body=?, alternate_data_size=?, alternate_data_hash=?,
				attributes_blob=?
			WHERE local_id = ?
		`, nullString(r.GUID), r.USN, r.NoteLocalID, r.MimeType, r.Width, r.Height, r.DataBody,
			r.DataSize, r.DataHash, r.RecognitionBody, r.RecognitionSize, r.RecognitionHash,
			r.AlternateDataBody, r.AlternateDataSize, r.AlternateDataHash,
			codec.EncodeResourceAttributes(r.Attributes), r.LocalID)
		if err != nil {
			return conflictOrStorageFailure("storage.UpdateResource", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return types.NewError(types.KindNotFound, "storage.UpdateResource", "resource not found", nil)
		}
		return nil
	})
}

// ExpungeResource hard-removes a resource.
func (e *Engine) ExpungeResource(localID string) error {
	return e.withTx("storage.ExpungeResource", func(tx *sql.Tx) error {
		res, err := tx.Exec(`DELETE FROM resources WHERE local_id = ?`, localID)
		if err != nil {
			return types.NewError(types.KindStorageFailure, "storage.ExpungeResource", "delete failed", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return types.NewError(types.KindNotFound, "storage.ExpungeResource", "resource not found", nil)
		}
		return nil
	})
}

// GetResourceCount counts resources owned by a note.
func (e *Engine) GetResourceCount(noteLocalID string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	row := e.db.QueryRow(`SELECT COUNT(*) FROM resources WHERE note_local_id = ?`, noteLocalID)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, types.NewError(types.KindStorageFailure, "storage.GetResourceCount", "count query failed", err)
	}
	return n, nil
}
