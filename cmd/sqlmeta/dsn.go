package main

import (
	"github.com/sadopc/sqlmeta/internal/config"
)

// buildDSN assembles a DSN from individual connection flags. File
// databases fall back to an in-memory database when no file is given.
func buildDSN(adapterName, host string, port int, user, password, database, file string) string {
	sc := config.SavedConnection{
		Adapter:  adapterName,
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		Database: database,
		File:     file,
	}

	switch sc.AdapterName() {
	case "sqlite", "duckdb":
		if file != "" {
			return file
		}
		if database != "" {
			return database
		}
		return ":memory:"
	}
	return sc.BuildDSN()
}
