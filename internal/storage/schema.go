// Package storage provides durable implementations of livestream.Store.
//
// SQL backends keep one row per stream in a "<prefix>mux_livestreams" table:
//
//	stream_id   varchar(255) primary key
//	playback_id varchar(255) not null
//	is_live     boolean      not null default false
//
// Writes are single-statement upserts, so concurrent deliveries for the same
// stream resolve to whichever write lands last.
package storage

import (
	"fmt"
	"regexp"
)

// BaseTableName is the unprefixed name of the stream table.
const BaseTableName = "mux_livestreams"

var prefixPattern = regexp.MustCompile(`^[A-Za-z0-9_]*$`)

// TableName returns the prefixed table name. The prefix is restricted to
// letters, digits and underscores because it is interpolated into SQL.
func TableName(prefix string) (string, error) {
	if !prefixPattern.MatchString(prefix) {
		return "", fmt.Errorf("invalid table prefix %q", prefix)
	}
	return prefix + BaseTableName, nil
}

func createTableSQL(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
  stream_id   VARCHAR(255) NOT NULL,
  playback_id VARCHAR(255) NOT NULL,
  is_live     BOOLEAN NOT NULL DEFAULT FALSE,
  PRIMARY KEY (stream_id)
);`, table)
}

func dropTableSQL(table string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s;", table)
}
