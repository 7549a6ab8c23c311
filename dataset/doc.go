// Package dataset holds the identified record collections that queries run
// against.
//
// A Dataset is immutable once built. The Store publishes datasets through
// copy-on-write snapshots, so concurrent queries read without locking while
// datasets are added or removed.
//
// # Basic Usage
//
//	ds, err := dataset.New("sections", schema.Courses, records)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := dataset.NewStore()
//	if err := store.Add(ds); err != nil {
//	    log.Fatal(err)
//	}
//
// # Persistence
//
// ParquetStore keeps one parquet file per dataset under
// <dir>/<kind>/<id>.parquet:
//
//	ps, err := dataset.NewParquetStore("./data")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := ps.Save(ds); err != nil {
//	    log.Fatal(err)
//	}
//
//	all, err := ps.LoadAll()
//
// The package uses github.com/parquet-go/parquet-go for the underlying
// parquet file operations.
package dataset
