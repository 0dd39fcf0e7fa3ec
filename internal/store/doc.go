// Package store persists the history of valid readings to SQLite.
//
// Only readings whose CRC matched exactly are stored. The receiver logs the same
// frame several times, so each row is keyed by the xxh3 hash of the capture date and
// the adjusted frame and repeats are ignored with INSERT OR IGNORE.
//
//	st, err := store.Open(path)
//	if err != nil {
//	    return err
//	}
//	defer st.Close()
//
//	added, err := st.Save(ctx, reading)
//
// The database uses a single connection; Store is safe for concurrent use.
package store
