package sqldb

// Schema shared by both engines, applied idempotently at Open. Statements
// run one at a time because pgx's extended protocol rejects multi-statement
// strings.
//
// Cross-entity references carry no FOREIGN KEY clauses: repositories verify
// referenced rows inside the writing transaction instead. Declared
// constraints would make parent deletes fail, and deleting a workspace must
// succeed while leaving its conversations in place — nothing cascades.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		display_name TEXT NOT NULL,
		email TEXT NOT NULL,
		metadata TEXT NOT NULL DEFAULT '{}',
		CONSTRAINT users_email_key UNIQUE (email)
	)`,
	`CREATE TABLE IF NOT EXISTS workspaces (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		owner_id TEXT NOT NULL,
		metadata TEXT NOT NULL DEFAULT '{}'
	)`,
	`CREATE TABLE IF NOT EXISTS conversations (
		id TEXT PRIMARY KEY,
		topic TEXT NOT NULL,
		workspace_id TEXT NOT NULL,
		metadata TEXT NOT NULL DEFAULT '{}'
	)`,
	`CREATE TABLE IF NOT EXISTS conversation_participants (
		conversation_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		user_id TEXT NOT NULL,
		PRIMARY KEY (conversation_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		content TEXT NOT NULL,
		sender_id TEXT NOT NULL,
		conversation_id TEXT NOT NULL,
		sent_at BIGINT NOT NULL,
		metadata TEXT NOT NULL DEFAULT '{}'
	)`,
	`CREATE INDEX IF NOT EXISTS idx_workspaces_owner ON workspaces (owner_id)`,
	`CREATE INDEX IF NOT EXISTS idx_conversations_workspace ON conversations (workspace_id)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages (conversation_id, sent_at)`,
}

// tableNames feeds constraint-name parsing in the postgres dialect. Longer
// names first so prefixes resolve unambiguously.
var tableNames = []string{
	"conversation_participants",
	"conversations",
	"workspaces",
	"messages",
	"users",
}
