// Package postgres contains PostgreSQL-backed implementations of the
// application's persistence interfaces. The database is reached through
// the pgx driver registered with database/sql.
package postgres
