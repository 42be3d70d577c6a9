// Package database provides SQLite connectivity for Gray Logic Agent.
//
// The agent uses a single on-device SQLite file to back the telemetry
// spool (store-and-forward while the broker is unreachable). The package
// handles connection setup, WAL mode, busy timeouts, and health checks;
// schema ownership lives with the consuming package (see internal/spool).
//
// Usage:
//
//	db, err := database.Open(database.Config{
//	    Path:        cfg.Spool.Path,
//	    WALMode:     cfg.Spool.WALMode,
//	    BusyTimeout: cfg.Spool.BusyTimeout,
//	})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
package database
