// Package billing holds the sales documents of the store: bills (which double
// as online orders) and estimates, the non-binding quotations shown to a
// customer before a sale. Both are made of priced lines that snapshot the
// product and the metal-rate breakdown at the time they were priced.
package billing
