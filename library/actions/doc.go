// Package actions is the outer surface of the rental service: an explicit table of operations keyed by
// action name. Each action declares the authorization level it requires, decodes its JSON input,
// runs one observable command or query handler and encodes its JSON output.
//
//	table, err := actions.NewTable(store, gateway, notifier, actions.WithMetrics(metricsCollector))
//	output, err := table.Dispatch(ctx, actions.BorrowingsCreate, caller, []byte(`{"book":"...","expected_return_date":"2025-03-17"}`))
//	status := table.StatusFor(err)
//
// Errors keep the domain taxonomy of the core package; StatusFor maps them to HTTP-like status codes.
package actions
