package zombiezen

import (
	"fmt"
	"io/fs"
	"path"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// ApplyMigrations runs the .sql files of fsys, top level first and then one
// directory deep, each in lexical order, inside one savepoint. A failing file
// leaves the schema untouched. The files run on every start.
func ApplyMigrations(conn *sqlite.Conn, fsys fs.FS) (err error) {
	files, err := fs.Glob(fsys, "*/*.sql")
	if err != nil {
		return err
	}
	top, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return err
	}
	files = append(top, files...)
	if len(files) == 0 {
		return fmt.Errorf("no schema files found")
	}

	release := sqlitex.Save(conn)
	defer release(&err)

	for _, name := range files {
		script, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("read schema %s: %w", name, err)
		}
		if err := sqlitex.ExecuteScript(conn, string(script), nil); err != nil {
			return fmt.Errorf("apply schema %s: %w", path.Base(name), err)
		}
	}
	return nil
}
