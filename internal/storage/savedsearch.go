package storage

import (
	"database/sql"
	"strings"

	"github.com/notarium/core/pkg/types"
)

// AddSavedSearch inserts a saved search, assigning a local id if the
// caller left it empty.
func (e *Engine) AddSavedSearch(s *types.SavedSearch) error {
	if s.LocalID == "" {
		s.LocalID = types.NewLocalID()
	}
	if err := s.Validate(); err != nil {
		return err
	}
	return e.withTx("storage.AddSavedSearch", func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO saved_searches (local_id, guid, usn, name, name_upper, query, query_format,
				include_account, include_business_linked_notebooks, include_personal_linked_notebooks,
				is_dirty, is_local, is_favorited)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)
		`, s.LocalID, nullString(s.GUID), s.USN, s.Name, strings.ToUpper(s.Name), s.Query, s.QueryFormat,
			boolToInt(s.IncludeAccount), boolToInt(s.IncludeBusinessLinkedNotebooks),
			boolToInt(s.IncludePersonalLinkedNotebooks), boolToInt(s.IsDirty), boolToInt(s.IsLocal),
			boolToInt(s.IsFavorited))
		if err != nil {
			return conflictOrStorageFailure("storage.AddSavedSearch", err)
		}
		return nil
	})
}

// FindSavedSearchByLocalID populates a saved search by local id.
func (e *Engine) FindSavedSearchByLocalID(localID string) (*types.SavedSearch, error) {
	return e.findSavedSearch("local_id = ?", localID)
}

// FindSavedSearchByName finds a saved search by case-insensitive name,
// unique across the whole account.
func (e *Engine) FindSavedSearchByName(name string) (*types.SavedSearch, error) {
	return e.findSavedSearch("name_upper = ?", strings.ToUpper(name))
}

func (e *Engine) findSavedSearch(where string, args ...interface{}) (*types.SavedSearch, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rows, err := e.db.Query(`
		SELECT local_id, guid, usn, name, query, query_format, include_account,
			include_business_linked_notebooks, include_personal_linked_notebooks,
			is_dirty, is_local, is_favorited
		FROM saved_searches WHERE `+where, args...)
	if err != nil {
		return nil, types.NewError(types.KindStorageFailure, "storage.FindSavedSearch", "query failed", err)
	}
	defer rows.Close()

	var s *types.SavedSearch
	for rows.Next() {
		if s != nil {
			return nil, types.NewError(types.KindAmbiguousKey, "storage.FindSavedSearch", "more than one saved search matched", nil)
		}
		s = &types.SavedSearch{}
		var guid sql.NullString
		var includeAccount, includeBusiness, includePersonal, isDirty, isLocal, isFavorited int64
		if err := rows.Scan(&s.LocalID, &guid, &s.USN, &s.Name, &s.Query, &s.QueryFormat,
			&includeAccount, &includeBusiness, &includePersonal, &isDirty, &isLocal, &isFavorited); err != nil {
			return nil, types.NewError(types.KindStorageFailure, "storage.FindSavedSearch", "scan failed", err)
		}
		s.GUID = guid.String
		s.IncludeAccount = intToBool(includeAccount)
		s.IncludeBusinessLinkedNotebooks = intToBool(includeBusiness)
		s.IncludePersonalLinkedNotebooks = intToBool(includePersonal)
		s.IsDirty, s.IsLocal, s.IsFavorited = intToBool(isDirty), intToBool(isLocal), intToBool(isFavorited)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewError(types.KindStorageFailure, "storage.FindSavedSearch", "row iteration failed", err)
	}
	if s == nil {
		return nil, types.NewError(types.KindNotFound, "storage.FindSavedSearch", "saved search not found", nil)
	}
	return s, nil
}

// UpdateSavedSearch replaces a saved search row.
func (e *Engine) UpdateSavedSearch(s *types.SavedSearch) error {
	if err := s.Validate(); err != nil {
		return err
	}
	return e.withTx("storage.UpdateSavedSearch", func(tx *sql.Tx) error {
		res, err := tx.Exec(`
			UPDATE saved_searches SET guid=?, usn=?, name=?, name_upper=?, query=?, query_format=?,
				include_account=?, include_business_linked_notebooks=?, include_personal_linked_notebooks=?,
				is_dirty=?, is_local=?, is_favorited=?
			WHERE local_id = ?
		`, nullString(s.GUID), s.USN, s.Name, strings.ToUpper(s.Name), s.Query, s.QueryFormat,
			boolToInt(s.IncludeAccount), boolToInt(s.IncludeBusinessLinkedNotebooks),
			boolToInt(s.IncludePersonalLinkedNotebooks), boolToInt(s.IsDirty), boolToInt(s.IsLocal),
			boolToInt(s.IsFavorited), s.LocalID)
		if err != nil {
			return conflictOrStorageFailure("storage.UpdateSavedSearch", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return types.NewError(types.KindNotFound, "storage.UpdateSavedSearch", "saved search not found", nil)
		}
		return nil
	})
}

// ExpungeSavedSearch hard-removes a saved search.
func (e *Engine) ExpungeSavedSearch(localID string) error {
	return e.withTx("storage.ExpungeSavedSearch", func(tx *sql.Tx) error {
		res, err := tx.Exec(`DELETE FROM saved_searches WHERE local_id = ?`, localID)
		if err != nil {
			return types.NewError(types.KindStorageFailure, "storage.ExpungeSavedSearch", "delete failed", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return types.NewError(types.KindNotFound, "storage.ExpungeSavedSearch", "saved search not found", nil)
		}
		return nil
	})
}

// ListSavedSearches returns saved searches ordered per opts.
func (e *Engine) ListSavedSearches(order types.SavedSearchOrder, opts types.ListOptions) ([]*types.SavedSearch, error) {
	query := `SELECT local_id FROM saved_searches ORDER BY ` + savedSearchOrderClause(order, opts.Direction)
	var args []interface{}
	query = appendLimitOffset(query, opts, &args)

	e.mu.Lock()
	rows, err := e.db.Query(query, args...)
	e.mu.Unlock()
	if err != nil {
		return nil, types.NewError(types.KindStorageFailure, "storage.ListSavedSearches", "query failed", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, types.NewError(types.KindStorageFailure, "storage.ListSavedSearches", "scan failed", err)
		}
		ids = append(ids, id)
	}
	rows.Close()

	out := make([]*types.SavedSearch, 0, len(ids))
	for _, id := range ids {
		s, err := e.FindSavedSearchByLocalID(id)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func savedSearchOrderClause(order types.SavedSearchOrder, dir types.Direction) string {
	switch order {
	case types.SavedSearchOrderByUpdateSequenceNumber:
		return "usn " + directionSQL(dir) + ", local_id ASC"
	case types.SavedSearchOrderByName:
		return "name_upper " + directionSQL(dir) + ", local_id ASC"
	default:
		return "local_id ASC"
	}
}

// GetSavedSearchCount counts all saved searches (they have no
// soft-delete state).
func (e *Engine) GetSavedSearchCount() (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	row := e.db.QueryRow(`SELECT COUNT(*) FROM saved_searches`)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, types.NewError(types.KindStorageFailure, "storage.GetSavedSearchCount", "count query failed", err)
	}
	return n, nil
}
