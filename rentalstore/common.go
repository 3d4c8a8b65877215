package rentalstore

import (
	"errors"
)

var ErrEmptyTableNameSupplied = errors.New("empty table name supplied")
var ErrNilDatabaseConnection = errors.New("database connection must not be nil")
var ErrNotFound = errors.New("record not found")
var ErrConcurrencyConflict = errors.New("concurrency error, no rows were affected")
var ErrDuplicateRecord = errors.New("record with the same id already exists")
var ErrBuildingQueryFailed = errors.New("building the query failed")
var ErrQueryingFailed = errors.New("querying the database failed")
var ErrScanningDBRowFailed = errors.New("scanning a database row failed")
var ErrExecutingStatementFailed = errors.New("executing a database statement failed")
var ErrGettingRowsAffectedFailed = errors.New("getting rows affected failed")
var ErrBeginningTxFailed = errors.New("beginning the transaction failed")
var ErrCommittingTxFailed = errors.New("committing the transaction failed")
var ErrConvertingRowFailed = errors.New("converting a database row into a record failed")

// DateLayout is the layout used for all calendar dates stored by the engines.
const DateLayout = "2006-01-02"
