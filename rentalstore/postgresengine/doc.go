// Package postgresengine provides a PostgreSQL implementation of the rental store.
//
// It supports multiple database adapters (pgx.Pool, sql.DB, sqlx.DB) and optional
// replica pools. Reads on the primary are strongly consistent; callers can route
// list and retrieve reads to a replica by marking the context with
// rentalstore.WithEventualConsistency. Transactions always run on the primary.
//
// All write paths of the rental domain run through RunInTx. Row locks
// (SELECT ... FOR UPDATE) on books, borrowings, and payments plus a transaction scoped
// advisory lock per user serialize conflicting transactions, so inventory can never
// become negative and at most one pending payment gate is evaluated at a time per user.
//
// Expected schema (see testutil/postgreshelper for the DDL used by the integration tests):
//
//	books(id uuid pk, title text, author text, cover text, inventory int check >= 0, daily_fee numeric(6,2))
//	borrowings(id uuid pk, borrow_date date, expected_return_date date, actual_return_date date null,
//	           book_id uuid fk books, user_id uuid)
//	payments(id uuid pk, status text, type text, borrowing_id uuid fk borrowings,
//	         session_id text, session_url text, amount numeric(10,2))
//
// Usage:
//
//	store, err := postgresengine.NewStoreFromPGXPool(pool,
//		postgresengine.WithLogger(logger),
//		postgresengine.WithMetrics(metrics),
//	)
//
//	err = store.RunInTx(ctx, func(ctx context.Context, tx rentalstore.Tx) error {
//		book, err := tx.LockBook(ctx, bookID)
//		...
//	})
package postgresengine
