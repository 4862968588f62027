// Package rawl is a thin layer over database/sql for models that declare a
// table and its columns and run hand-written SQL templates.
//
// A template uses {0} for the model's column list and {1}..{n} for bind
// values (Select), or {0}..{n-1} for bind values only (Query, Exec). Column
// names are quoted as identifiers; values always go through the driver's
// parameter binding.
//
//	conn, _ := sqlite3.Open("/var/lib/app.db")
//	states, _ := rawl.New(conn, "state", []string{"state_id", "name"})
//	rows, _ := states.Select(ctx, "SELECT {0} FROM state WHERE state_id = {1};", []string{"name"}, 1)
//	fmt.Println(rows[0].Value("name"))
package rawl
