package storage

// schema creates every table the engine owns. Attribute-blob columns
// (attributes_blob) are opaque bytes produced by pkg/codec; the engine
// never looks inside them.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY,
	username TEXT NOT NULL,
	email TEXT NOT NULL,
	name TEXT,
	timezone TEXT,
	privilege INTEGER NOT NULL DEFAULT 0,
	creation_timestamp INTEGER NOT NULL,
	modification_timestamp INTEGER NOT NULL,
	deletion_timestamp INTEGER,
	active INTEGER NOT NULL DEFAULT 1,
	attributes_blob BLOB
);

CREATE TABLE IF NOT EXISTS accounting (
	user_id INTEGER PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
	blob BLOB NOT NULL
);

CREATE TABLE IF NOT EXISTS premium_info (
	user_id INTEGER PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
	blob BLOB NOT NULL
);

CREATE TABLE IF NOT EXISTS business_user_info (
	user_id INTEGER PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
	blob BLOB NOT NULL
);

CREATE TABLE IF NOT EXISTS linked_notebooks (
	guid TEXT PRIMARY KEY,
	usn INTEGER NOT NULL DEFAULT 0,
	share_name TEXT,
	username TEXT,
	shard_id TEXT,
	share_key TEXT,
	uri TEXT,
	note_store_url TEXT,
	web_api_url_prefix TEXT,
	stack TEXT,
	business_id INTEGER
);

CREATE TABLE IF NOT EXISTS notebooks (
	local_id TEXT PRIMARY KEY,
	guid TEXT,
	usn INTEGER NOT NULL DEFAULT 0,
	name TEXT NOT NULL,
	name_upper TEXT NOT NULL,
	creation_timestamp INTEGER NOT NULL,
	modification_timestamp INTEGER NOT NULL,
	is_default INTEGER NOT NULL DEFAULT 0,
	is_last_used INTEGER NOT NULL DEFAULT 0,
	stack TEXT NOT NULL DEFAULT '',
	linked_notebook_guid TEXT NOT NULL DEFAULT '' REFERENCES linked_notebooks(guid) ON DELETE CASCADE,
	is_dirty INTEGER NOT NULL DEFAULT 0,
	is_local INTEGER NOT NULL DEFAULT 1,
	is_favorited INTEGER NOT NULL DEFAULT 0,
	publishing_blob BLOB,
	business_blob BLOB,
	UNIQUE(name_upper, linked_notebook_guid)
);

CREATE INDEX IF NOT EXISTS idx_notebooks_stack ON notebooks(stack, linked_notebook_guid);
CREATE INDEX IF NOT EXISTS idx_notebooks_linked ON notebooks(linked_notebook_guid);

CREATE TABLE IF NOT EXISTS notebook_restrictions (
	notebook_local_id TEXT PRIMARY KEY REFERENCES notebooks(local_id) ON DELETE CASCADE,
	no_update_notebook INTEGER NOT NULL DEFAULT 0,
	no_expunge_notebook INTEGER NOT NULL DEFAULT 0,
	no_set_default_notebook INTEGER NOT NULL DEFAULT 0,
	no_rename_notebook INTEGER NOT NULL DEFAULT 0,
	no_create_notes INTEGER NOT NULL DEFAULT 0,
	no_update_notes INTEGER NOT NULL DEFAULT 0,
	no_expunge_notes INTEGER NOT NULL DEFAULT 0,
	no_share_notes INTEGER NOT NULL DEFAULT 0,
	no_email_notes INTEGER NOT NULL DEFAULT 0,
	no_create_tags INTEGER NOT NULL DEFAULT 0,
	no_update_tags INTEGER NOT NULL DEFAULT 0,
	no_expunge_tags INTEGER NOT NULL DEFAULT 0,
	no_set_parent_tag INTEGER NOT NULL DEFAULT 0,
	no_create_shared_notebooks INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS shared_notebooks (
	id INTEGER PRIMARY KEY,
	notebook_local_id TEXT NOT NULL REFERENCES notebooks(local_id) ON DELETE CASCADE,
	user_id INTEGER,
	notebook_guid TEXT,
	email TEXT,
	creation_timestamp INTEGER,
	modification_timestamp INTEGER,
	share_key TEXT,
	username TEXT,
	privilege INTEGER,
	allow_preview INTEGER NOT NULL DEFAULT 0,
	recipient_reminder_notify_email INTEGER NOT NULL DEFAULT 0,
	recipient_reminder_notify_in_app INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_shared_notebooks_notebook ON shared_notebooks(notebook_local_id);

CREATE TABLE IF NOT EXISTS tags (
	local_id TEXT PRIMARY KEY,
	guid TEXT,
	usn INTEGER NOT NULL DEFAULT 0,
	name TEXT NOT NULL,
	name_upper TEXT NOT NULL,
	parent_local_id TEXT NOT NULL DEFAULT '',
	linked_notebook_guid TEXT NOT NULL DEFAULT '' REFERENCES linked_notebooks(guid) ON DELETE CASCADE,
	deletion_timestamp INTEGER,
	active INTEGER NOT NULL DEFAULT 1,
	is_dirty INTEGER NOT NULL DEFAULT 0,
	is_local INTEGER NOT NULL DEFAULT 1,
	is_favorited INTEGER NOT NULL DEFAULT 0,
	UNIQUE(name_upper, linked_notebook_guid)
);

CREATE INDEX IF NOT EXISTS idx_tags_parent ON tags(parent_local_id);
CREATE INDEX IF NOT EXISTS idx_tags_linked ON tags(linked_notebook_guid);

CREATE TABLE IF NOT EXISTS saved_searches (
	local_id TEXT PRIMARY KEY,
	guid TEXT,
	usn INTEGER NOT NULL DEFAULT 0,
	name TEXT NOT NULL,
	name_upper TEXT NOT NULL UNIQUE,
	query TEXT NOT NULL DEFAULT '',
	query_format INTEGER NOT NULL DEFAULT 0,
	include_account INTEGER NOT NULL DEFAULT 0,
	include_business_linked_notebooks INTEGER NOT NULL DEFAULT 0,
	include_personal_linked_notebooks INTEGER NOT NULL DEFAULT 0,
	is_dirty INTEGER NOT NULL DEFAULT 0,
	is_local INTEGER NOT NULL DEFAULT 1,
	is_favorited INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS notes (
	local_id TEXT PRIMARY KEY,
	guid TEXT,
	usn INTEGER NOT NULL DEFAULT 0,
	title TEXT NOT NULL DEFAULT '',
	content TEXT NOT NULL DEFAULT '',
	plain_text TEXT NOT NULL DEFAULT '',
	list_of_words TEXT NOT NULL DEFAULT '',
	creation_timestamp INTEGER NOT NULL,
	modification_timestamp INTEGER NOT NULL,
	deletion_timestamp INTEGER,
	active INTEGER NOT NULL DEFAULT 1,
	notebook_local_id TEXT NOT NULL REFERENCES notebooks(local_id) ON DELETE CASCADE,
	attributes_blob BLOB,
	thumbnail BLOB,
	is_dirty INTEGER NOT NULL DEFAULT 0,
	is_local INTEGER NOT NULL DEFAULT 1,
	is_favorited INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_notes_notebook ON notes(notebook_local_id);
CREATE INDEX IF NOT EXISTS idx_notes_active ON notes(active);

CREATE TABLE IF NOT EXISTS note_tags (
	note_local_id TEXT NOT NULL REFERENCES notes(local_id) ON DELETE CASCADE,
	tag_local_id TEXT NOT NULL REFERENCES tags(local_id) ON DELETE CASCADE,
	tag_index INTEGER NOT NULL,
	PRIMARY KEY (note_local_id, tag_local_id)
);

CREATE INDEX IF NOT EXISTS idx_note_tags_tag ON note_tags(tag_local_id);

CREATE TABLE IF NOT EXISTS resources (
	local_id TEXT PRIMARY KEY,
	guid TEXT,
	usn INTEGER NOT NULL DEFAULT 0,
	note_local_id TEXT NOT NULL REFERENCES notes(local_id) ON DELETE CASCADE,
	mime_type TEXT,
	width INTEGER NOT NULL DEFAULT 0,
	height INTEGER NOT NULL DEFAULT 0,
	data_body BLOB,
	data_size INTEGER NOT NULL DEFAULT 0,
	data_hash BLOB,
	recognition_body BLOB,
	recognition_size INTEGER NOT NULL DEFAULT 0,
	recognition_hash BLOB,
	alternate_data_body BLOB,
	alternate_data_size INTEGER NOT NULL DEFAULT 0,
	alternate_data_hash BLOB,
	attributes_blob BLOB
);

CREATE INDEX IF NOT EXISTS idx_resources_note ON resources(note_local_id);

CREATE TABLE IF NOT EXISTS schema_meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`
