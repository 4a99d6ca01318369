package database

const (
	createMigrationsTable = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ DEFAULT NOW()
		)`
	countMigration  = `SELECT COUNT(*) FROM schema_migrations WHERE name = $1`
	recordMigration = `INSERT INTO schema_migrations (name, applied_at) VALUES ($1, NOW())`
)

// Photo catalog.
const (
	InsertPhoto = `
		INSERT INTO project_photos
			(id, project_id, user_id, file_name, storage_path, category, shooting_date, title, content_hash, mime_type, file_size)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at`

	SelectPhotoByHash = `
		SELECT id FROM project_photos
		WHERE project_id = $1 AND content_hash = $2`

	SelectPhotos = `
		SELECT id, project_id, user_id, file_name, storage_path, category, shooting_date, title,
			content_hash, mime_type, file_size, created_at
		FROM project_photos
		WHERE project_id = $1
		ORDER BY created_at, id`
)

// Export history.
const (
	InsertExport = `
		INSERT INTO export_history
			(id, project_id, user_id, output_format, standard_version, photo_count, skipped_count,
			 file_size, checksum, storage_path, is_valid, error_count, warning_count, processing_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at`

	exportColumns = `
		id, project_id, user_id, output_format, standard_version, photo_count, skipped_count,
		file_size, checksum, storage_path, is_valid, error_count, warning_count, processing_ms, created_at`

	SelectExports = `SELECT` + exportColumns + `
		FROM export_history
		WHERE project_id = $1
		ORDER BY created_at DESC`

	SelectExport = `SELECT` + exportColumns + `
		FROM export_history
		WHERE project_id = $1 AND id = $2`
)
