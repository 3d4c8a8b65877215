// Package rentalstore provides core abstractions and types for persisting
// the books, borrowings and payments of a library rental backend.
//
// This package defines the records, filters, transaction contract and common
// error definitions shared by the different store engines (postgresengine, memengine).
//
// Key types:
//   - Book, Borrowing, Payment: the persisted records
//   - BorrowingFilter, PaymentFilter: criteria for list queries
//   - Tx: the operations available inside one all-or-nothing transaction
//
// Common usage pattern:
//
//	filter := rentalstore.BuildBorrowingFilter().
//		OwnedByAnyOf(userID).
//		OnlyActive().
//		Finalize()
//
//	borrowings, err := store.ListBorrowings(ctx, filter)
//	if err != nil {
//		// handle error
//	}
//
//	err = store.RunInTx(ctx, func(ctx context.Context, tx rentalstore.Tx) error {
//		book, err := tx.LockBook(ctx, bookID)
//		if err != nil {
//			return err
//		}
//
//		return tx.SetBookInventory(ctx, book.ID, book.Inventory-1)
//	})
package rentalstore
