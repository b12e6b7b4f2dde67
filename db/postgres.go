package db

import (
	"database/sql"
	"errors"
	"time"

	_ "github.com/lib/pq"
)

var ErrMissingDSN = errors.New("database url is not set")

func ConnectPostgres(connStr string) (*sql.DB, error) {
	if connStr == "" {
		return nil, ErrMissingDSN
	}

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(25)
	conn.SetConnMaxLifetime(5 * time.Minute)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}
